package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-outplay/core"
)

const (
	headerClientSecret = "X-CLIENT-SECRET"
	queryClientID      = "client_id"
)

// APIClient is the authenticated-HTTP-call capability for the Outplay API.
// Every call resolves the base URL from the credential, attaches the
// X-CLIENT-SECRET header and client_id query parameter, and decodes the JSON
// response. Any non-2xx response becomes an error carrying the HTTP status
// and the CRM message; callers decide whether that is fatal.
type APIClient struct {
	Adapter core.TransportAdapter
}

func NewAPIClient(adapter core.TransportAdapter) *APIClient {
	if adapter == nil {
		adapter = NewRESTAdapter(nil)
	}
	return &APIClient{Adapter: adapter}
}

func (c *APIClient) CallJSON(ctx context.Context, cred core.Credential, req core.APIRequest) (any, error) {
	if c == nil || c.Adapter == nil {
		return nil, transportError(
			"transport: api client requires a transport adapter",
			goerrors.CategoryInternal,
			http.StatusInternalServerError,
			map[string]any{"path": req.Path},
		)
	}
	if err := cred.Validate(); err != nil {
		return nil, transportWrapError(
			err,
			goerrors.CategoryAuth,
			"transport: credential is not usable",
			http.StatusUnauthorized,
			map[string]any{"path": req.Path},
		)
	}

	path := strings.TrimSpace(req.Path)
	if path == "" {
		return nil, transportError(
			"transport: request path is required",
			goerrors.CategoryBadInput,
			http.StatusBadRequest,
			nil,
		)
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	var body []byte
	if req.Body != nil {
		encoded, err := json.Marshal(req.Body)
		if err != nil {
			return nil, transportWrapError(
				err,
				goerrors.CategoryBadInput,
				"transport: encode request body",
				http.StatusBadRequest,
				map[string]any{"path": path},
			)
		}
		body = encoded
	}

	query := map[string]string{queryClientID: strings.TrimSpace(cred.ClientID)}
	for key, value := range req.Query {
		if strings.TrimSpace(key) == "" {
			continue
		}
		query[key] = value
	}
	headers := map[string]string{headerClientSecret: strings.TrimSpace(cred.ClientSecret)}
	for key, value := range req.Headers {
		if strings.TrimSpace(key) == "" {
			continue
		}
		headers[key] = value
	}

	response, err := c.Adapter.Do(ctx, core.TransportRequest{
		Method:  req.Method,
		URL:     cred.BaseURL() + path,
		Headers: headers,
		Query:   query,
		Body:    body,
	})
	if err != nil {
		return nil, err
	}

	if response.StatusCode < http.StatusOK || response.StatusCode >= http.StatusMultipleChoices {
		return nil, apiStatusError(path, response)
	}

	trimmed := strings.TrimSpace(string(response.Body))
	if trimmed == "" {
		return nil, nil
	}
	var decoded any
	if err := json.Unmarshal(response.Body, &decoded); err != nil {
		return nil, transportWrapError(
			err,
			goerrors.CategoryExternal,
			"transport: decode response body",
			http.StatusBadGateway,
			map[string]any{"path": path, "status_code": response.StatusCode},
		)
	}
	return decoded, nil
}

func apiStatusError(path string, response core.TransportResponse) error {
	message := extractAPIMessage(response.Body)
	if message == "" {
		message = http.StatusText(response.StatusCode)
	}
	category := goerrors.CategoryExternal
	switch {
	case response.StatusCode == http.StatusUnauthorized || response.StatusCode == http.StatusForbidden:
		category = goerrors.CategoryAuth
	case response.StatusCode == http.StatusTooManyRequests:
		category = goerrors.CategoryRateLimit
	case response.StatusCode >= http.StatusBadRequest && response.StatusCode < http.StatusInternalServerError:
		category = goerrors.CategoryBadInput
	}
	return transportError(
		fmt.Sprintf("transport: outplay api returned %d: %s", response.StatusCode, message),
		category,
		response.StatusCode,
		map[string]any{
			"path":        path,
			"status_code": response.StatusCode,
			"body":        strings.TrimSpace(string(response.Body)),
		},
	)
}

// extractAPIMessage pulls a human readable message out of an error payload.
// Outplay error bodies are not uniform; probe the common keys.
func extractAPIMessage(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		return strings.TrimSpace(string(body))
	}
	for _, key := range []string{"message", "Message", "error", "Error"} {
		if raw, ok := payload[key]; ok {
			if value := strings.TrimSpace(fmt.Sprint(raw)); value != "" && value != "<nil>" {
				return value
			}
		}
	}
	return ""
}

var _ core.APICaller = (*APIClient)(nil)
