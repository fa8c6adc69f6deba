// Package account covers the /account endpoint family: credential
// validation and webhook subscription management.
package account

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-outplay/core"
)

const (
	pingPath        = "/account/Ping"
	subscribePath   = "/account/SubscribeWebHook"
	unsubscribePath = "/account/UnsubscribeWebHook"
)

// The CRM expects the subscribing agent to identify itself; the marker also
// shows up in Outplay's own delivery logs.
const subscribeUserAgent = "n8n"

type Client struct {
	API core.APICaller
}

func NewClient(api core.APICaller) (*Client, error) {
	if api == nil {
		return nil, fmt.Errorf("account: api caller is required")
	}
	return &Client{API: api}, nil
}

// Ping issues the connectivity self-test. A successful response means the
// credential's location, client id and client secret are usable.
func (c *Client) Ping(ctx context.Context, cred core.Credential) error {
	if c == nil || c.API == nil {
		return fmt.Errorf("account: client is not configured")
	}
	_, err := c.API.CallJSON(ctx, cred, core.APIRequest{
		Method: http.MethodGet,
		Path:   pingPath,
	})
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryAuth, "account: credential ping failed").
			WithCode(statusOf(err, http.StatusUnauthorized)).
			WithTextCode(core.ServiceErrorCredentialInvalid)
	}
	return nil
}

type SubscribeResult struct {
	// WebhookID is the server-assigned id, empty when the CRM response
	// carried none.
	WebhookID string
	Raw       any
}

// SubscribeWebhook registers targetURL for the given event. Failures are
// fatal for the caller: there is no retry.
func (c *Client) SubscribeWebhook(ctx context.Context, cred core.Credential, targetURL, event string) (SubscribeResult, error) {
	if c == nil || c.API == nil {
		return SubscribeResult{}, fmt.Errorf("account: client is not configured")
	}
	targetURL = strings.TrimSpace(targetURL)
	event = strings.TrimSpace(event)
	if targetURL == "" {
		return SubscribeResult{}, fmt.Errorf("account: webhook target url is required")
	}
	if !core.ValidWebhookEvent(event) {
		return SubscribeResult{}, fmt.Errorf("account: webhook event %q is invalid", event)
	}

	raw, err := c.API.CallJSON(ctx, cred, core.APIRequest{
		Method: http.MethodPost,
		Path:   subscribePath,
		Headers: map[string]string{
			"User-Agent": subscribeUserAgent,
		},
		Body: map[string]any{
			"target_url": targetURL,
			"event":      event,
		},
	})
	if err != nil {
		status := statusOf(err, http.StatusBadGateway)
		return SubscribeResult{}, goerrors.Wrap(
			err,
			goerrors.CategoryExternal,
			fmt.Sprintf("account: failed to subscribe webhook (status: %d): %s", status, messageOf(err)),
		).
			WithCode(status).
			WithTextCode(core.ServiceErrorWebhookSubscribe).
			WithMetadata(map[string]any{"event": event, "target_url": targetURL})
	}
	return SubscribeResult{WebhookID: extractWebhookID(raw), Raw: raw}, nil
}

// UnsubscribeWebhook deregisters targetURL for the given event. The endpoint
// takes its arguments as query parameters, not a JSON body.
func (c *Client) UnsubscribeWebhook(ctx context.Context, cred core.Credential, targetURL, event string) error {
	if c == nil || c.API == nil {
		return fmt.Errorf("account: client is not configured")
	}
	targetURL = strings.TrimSpace(targetURL)
	event = strings.TrimSpace(event)
	if targetURL == "" {
		return fmt.Errorf("account: webhook target url is required")
	}

	_, err := c.API.CallJSON(ctx, cred, core.APIRequest{
		Method: http.MethodPost,
		Path:   unsubscribePath,
		Query: map[string]string{
			"target_url": targetURL,
			"event":      event,
		},
		Headers: map[string]string{
			"Content-Type": "application/x-www-form-urlencoded",
		},
	})
	if err != nil {
		status := statusOf(err, http.StatusBadGateway)
		return goerrors.Wrap(
			err,
			goerrors.CategoryExternal,
			fmt.Sprintf("account: failed to unsubscribe webhook (status: %d): %s", status, messageOf(err)),
		).
			WithCode(status).
			WithTextCode(core.ServiceErrorWebhookUnsubscribe).
			WithMetadata(map[string]any{"event": event, "target_url": targetURL, "body": bodyOf(err)})
	}
	return nil
}

func extractWebhookID(raw any) string {
	payload, ok := raw.(map[string]any)
	if !ok {
		return ""
	}
	for _, key := range []string{"id", "Id", "webhookId"} {
		if value, ok := payload[key]; ok {
			id := strings.TrimSpace(fmt.Sprint(value))
			if id != "" && id != "<nil>" {
				return id
			}
		}
	}
	return ""
}

func statusOf(err error, fallback int) int {
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) && richErr.Code != 0 {
		return richErr.Code
	}
	return fallback
}

func messageOf(err error) string {
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) && strings.TrimSpace(richErr.Message) != "" {
		return richErr.Message
	}
	if err != nil {
		return err.Error()
	}
	return "unknown error"
}

func bodyOf(err error) string {
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) && richErr.Metadata != nil {
		if raw, ok := richErr.Metadata["body"]; ok {
			return strings.TrimSpace(fmt.Sprint(raw))
		}
	}
	return ""
}
