// Package prospect covers the /prospect endpoint family.
package prospect

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-outplay/core"
)

const (
	addPath = "/prospect/add"
	getPath = "/prospect/%s"
)

type Client struct {
	API core.APICaller
}

func NewClient(api core.APICaller) (*Client, error) {
	if api == nil {
		return nil, fmt.Errorf("prospect: api caller is required")
	}
	return &Client{API: api}, nil
}

// SaveInput describes one prospect create-or-update. Email is the upsert key
// on the CRM side.
type SaveInput struct {
	Email     string
	FirstName string
	LastName  string
	// AdditionalFields merge flat into the request body alongside the
	// identity fields.
	AdditionalFields map[string]any
	Tags             []string
	// CustomFields fold into a single "fields" object; entries with a blank
	// name or value are dropped.
	CustomFields []CustomField
}

type CustomField struct {
	Name  string
	Value string
}

func (in SaveInput) Validate() error {
	if strings.TrimSpace(in.Email) == "" {
		return goerrors.New("prospect: email is required", goerrors.CategoryBadInput).
			WithTextCode(core.ServiceErrorBadInput)
	}
	return nil
}

// Save creates or updates the prospect identified by the input email.
func (c *Client) Save(ctx context.Context, cred core.Credential, in SaveInput) (any, error) {
	if c == nil || c.API == nil {
		return nil, fmt.Errorf("prospect: client is not configured")
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}

	result, err := c.API.CallJSON(ctx, cred, core.APIRequest{
		Method: http.MethodPost,
		Path:   addPath,
		Body:   buildSaveBody(in),
	})
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryExternal, "prospect: save failed").
			WithTextCode(core.ServiceErrorAPIFailure).
			WithMetadata(map[string]any{"email": strings.TrimSpace(in.Email)})
	}
	return result, nil
}

// Get fetches one prospect by CRM id.
func (c *Client) Get(ctx context.Context, cred core.Credential, prospectID string) (any, error) {
	if c == nil || c.API == nil {
		return nil, fmt.Errorf("prospect: client is not configured")
	}
	prospectID = strings.TrimSpace(prospectID)
	if prospectID == "" {
		return nil, goerrors.New("prospect: prospect id is required", goerrors.CategoryBadInput).
			WithTextCode(core.ServiceErrorBadInput)
	}

	result, err := c.API.CallJSON(ctx, cred, core.APIRequest{
		Method: http.MethodGet,
		Path:   fmt.Sprintf(getPath, prospectID),
	})
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryExternal, "prospect: get failed").
			WithTextCode(core.ServiceErrorAPIFailure).
			WithMetadata(map[string]any{"prospect_id": prospectID})
	}
	return result, nil
}

// buildSaveBody assembles the create-or-update payload. Tags and custom
// fields are omitted entirely when nothing usable was supplied, so the CRM
// never sees empty collections.
func buildSaveBody(in SaveInput) map[string]any {
	body := map[string]any{
		"emailid":   strings.TrimSpace(in.Email),
		"firstname": in.FirstName,
		"lastname":  in.LastName,
	}
	for key, value := range in.AdditionalFields {
		if strings.TrimSpace(key) == "" {
			continue
		}
		body[key] = value
	}

	tags := make([]string, 0, len(in.Tags))
	for _, tag := range in.Tags {
		if strings.TrimSpace(tag) == "" {
			continue
		}
		tags = append(tags, tag)
	}
	if len(tags) > 0 {
		body["tags"] = tags
	}

	fields := map[string]string{}
	for _, field := range in.CustomFields {
		name := strings.TrimSpace(field.Name)
		if name == "" || strings.TrimSpace(field.Value) == "" {
			continue
		}
		fields[name] = field.Value
	}
	if len(fields) > 0 {
		body["fields"] = fields
	}

	return body
}
