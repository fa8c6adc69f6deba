// Package scheduler covers the /Scheduler endpoint family: meeting type
// discovery, dynamic form field discovery, and lead creation.
package scheduler

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	glog "github.com/goliatone/go-logger/glog"
	"github.com/goliatone/go-outplay/core"
)

const (
	meetingTypesPath = "/Scheduler/GetMeetingType"
	formFieldsPath   = "/Scheduler/GetMeetingFormFields"
	postLeadPath     = "/Scheduler/PostLeadInfo"
)

// leadUtmSource tags every created lead with its origin channel.
const leadUtmSource = "n8n"

type Client struct {
	API    core.APICaller
	Logger core.Logger
}

func NewClient(api core.APICaller, logger core.Logger) (*Client, error) {
	if api == nil {
		return nil, fmt.Errorf("scheduler: api caller is required")
	}
	_, logger = glog.Resolve("scheduler", nil, logger)
	return &Client{API: api, Logger: logger}, nil
}

// MeetingTypeOptions lists meeting types as option items with composite
// "id::slug" values. Discovery failures degrade to an empty list so an
// unreachable CRM never breaks the editing surface.
func (c *Client) MeetingTypeOptions(ctx context.Context, cred core.Credential) []core.OptionItem {
	if c == nil || c.API == nil {
		return []core.OptionItem{}
	}

	raw, err := c.API.CallJSON(ctx, cred, core.APIRequest{
		Method: http.MethodGet,
		Path:   meetingTypesPath,
	})
	if err != nil {
		c.Logger.Error("scheduler: meeting type discovery failed", "error", err)
		return []core.OptionItem{}
	}

	entries, ok := raw.([]any)
	if !ok {
		return []core.OptionItem{}
	}
	options := make([]core.OptionItem, 0, len(entries))
	for _, entry := range entries {
		record, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		options = append(options, core.OptionItem{
			Label: stringField(record, "MeetingType"),
			Value: fmt.Sprintf("%s::%s", stringField(record, "MeetingId"), stringField(record, "Slug")),
		})
	}
	return options
}

// MeetingFormFieldOptions lists the form fields for a meeting type. An empty
// selector short-circuits without a network call: the caller has not picked a
// meeting type yet. Mandatory fields get a " (Required)" label suffix.
func (c *Client) MeetingFormFieldOptions(ctx context.Context, cred core.Credential, rawSelector string) []core.OptionItem {
	if c == nil || c.API == nil {
		return []core.OptionItem{}
	}
	selector := ParseSelector(rawSelector)
	if selector.Empty() {
		return []core.OptionItem{}
	}

	query := map[string]string{}
	if selector.ID != "" {
		query["meetingtypeid"] = selector.ID
	}
	if selector.Slug != "" {
		query["meetingtypeslug"] = selector.Slug
	}

	raw, err := c.API.CallJSON(ctx, cred, core.APIRequest{
		Method: http.MethodGet,
		Path:   formFieldsPath,
		Query:  query,
	})
	if err != nil {
		c.Logger.Error("scheduler: form field discovery failed", "error", err, "selector", rawSelector)
		return []core.OptionItem{}
	}

	payload, ok := raw.(map[string]any)
	if !ok {
		return []core.OptionItem{}
	}
	if success, ok := payload["success"].(bool); ok && !success {
		return []core.OptionItem{}
	}
	data, ok := payload["data"].(map[string]any)
	if !ok {
		return []core.OptionItem{}
	}
	fields, ok := data["fields"].(map[string]any)
	if !ok {
		return []core.OptionItem{}
	}

	identifiers := make([]string, 0, len(fields))
	for identifier := range fields {
		identifiers = append(identifiers, identifier)
	}
	sort.Strings(identifiers)

	options := make([]core.OptionItem, 0, len(identifiers))
	for _, identifier := range identifiers {
		record, ok := fields[identifier].(map[string]any)
		if !ok {
			continue
		}
		label := stringField(record, "fieldname")
		if mandatory, ok := record["ismandatory"].(bool); ok && mandatory {
			label += " (Required)"
		}
		options = append(options, core.OptionItem{Label: label, Value: identifier})
	}
	return options
}

// LeadField is one answered form field on a lead submission.
type LeadField struct {
	Identifier string
	Value      string
}

// CreateLead posts a scheduler lead. Only the slug portion of the selector
// travels on the wire; a bare numeric selector yields a body with no slug at
// all and the CRM decides whether that is acceptable.
func (c *Client) CreateLead(ctx context.Context, cred core.Credential, rawSelector string, fields []LeadField) (any, error) {
	if c == nil || c.API == nil {
		return nil, fmt.Errorf("scheduler: client is not configured")
	}
	rawSelector = strings.TrimSpace(rawSelector)
	if rawSelector == "" {
		return nil, goerrors.New("scheduler: meeting type is required", goerrors.CategoryBadInput).
			WithTextCode(core.ServiceErrorBadInput)
	}

	entries := make([]map[string]string, 0, len(fields))
	for _, field := range fields {
		if strings.TrimSpace(field.Identifier) == "" || strings.TrimSpace(field.Value) == "" {
			continue
		}
		entries = append(entries, map[string]string{
			"fieldIdentifier": field.Identifier,
			"fieldValue":      field.Value,
		})
	}

	body := map[string]any{
		"fields":    entries,
		"UtmSource": leadUtmSource,
	}
	if slug := ParseSelector(rawSelector).Slug; slug != "" {
		body["meetingTypeSlug"] = slug
	}

	result, err := c.API.CallJSON(ctx, cred, core.APIRequest{
		Method: http.MethodPost,
		Path:   postLeadPath,
		Body:   body,
	})
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryExternal, "scheduler: create lead failed").
			WithTextCode(core.ServiceErrorAPIFailure).
			WithMetadata(map[string]any{"meeting_type": rawSelector})
	}
	return result, nil
}

// stringField renders numeric and string JSON values uniformly, since the CRM
// returns MeetingId as a number.
func stringField(record map[string]any, key string) string {
	raw, ok := record[key]
	if !ok || raw == nil {
		return ""
	}
	if value, ok := raw.(string); ok {
		return value
	}
	if value, ok := raw.(float64); ok && value == float64(int64(value)) {
		return fmt.Sprintf("%d", int64(value))
	}
	return strings.TrimSpace(fmt.Sprint(raw))
}
