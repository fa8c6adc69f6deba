package core

import (
	"fmt"
	"strings"
)

// DevBaseURL is the fixed development endpoint used when a credential has no
// location. Empty location is a deliberate fallback, not an error.
const DevBaseURL = "https://dev-api.outplayhq.com/api/v1"

const apiHostPattern = "https://%s-api.outplayhq.com/api/v1"

// Credential identifies one Outplay account. Location is a region code such
// as "US"; it selects the API host. Credentials are immutable once supplied
// and re-read per request, so two credential entries may point at different
// regions.
type Credential struct {
	Location     string `koanf:"location" mapstructure:"location"`
	ClientID     string `koanf:"client_id" mapstructure:"client_id"`
	ClientSecret string `koanf:"client_secret" mapstructure:"client_secret"`
}

// BaseURL derives the API base from the credential location. Resolution is
// cheap string formatting and is recomputed on every call that needs it.
func (c Credential) BaseURL() string {
	location := strings.ToLower(strings.TrimSpace(c.Location))
	if location == "" {
		return DevBaseURL
	}
	return fmt.Sprintf(apiHostPattern, location)
}

func (c Credential) Validate() error {
	if strings.TrimSpace(c.ClientID) == "" {
		return fmt.Errorf("core: credential client id is required")
	}
	if strings.TrimSpace(c.ClientSecret) == "" {
		return fmt.Errorf("core: credential client secret is required")
	}
	return nil
}

// Webhook events Outplay can deliver. The wire value is the stringified
// number, matching what the subscribe endpoint expects.
const (
	EventProspectCreated = "1"
	EventProspectOptOut  = "2"
	EventProspectUpdated = "3"
	EventMailReceived    = "4"
)

func ValidWebhookEvent(event string) bool {
	switch strings.TrimSpace(event) {
	case EventProspectCreated, EventProspectOptOut, EventProspectUpdated, EventMailReceived:
		return true
	}
	return false
}

// NodeRef identifies one node instance inside a workflow. It keys the
// per-node durable webhook state.
type NodeRef struct {
	WorkflowID string
	NodeID     string
}

func (n NodeRef) Key() string {
	workflow := strings.TrimSpace(n.WorkflowID)
	node := strings.TrimSpace(n.NodeID)
	if workflow == "" {
		return node
	}
	return workflow + "::" + node
}

func (n NodeRef) Validate() error {
	if strings.TrimSpace(n.NodeID) == "" {
		return fmt.Errorf("core: node id is required")
	}
	return nil
}

// WebhookSubscription is the only durable state in the system: at most one
// record exists per node, and Event/TargetURL always reflect the last
// successful subscribe call.
type WebhookSubscription struct {
	WebhookID string
	Event     string
	TargetURL string
}

func (s WebhookSubscription) Empty() bool {
	return strings.TrimSpace(s.WebhookID) == "" &&
		strings.TrimSpace(s.Event) == "" &&
		strings.TrimSpace(s.TargetURL) == ""
}

// OptionItem is one entry of a UI option list.
type OptionItem struct {
	Label string
	Value string
}

// TriggerItem is one workflow-triggering event packaged from an inbound
// webhook delivery.
type TriggerItem struct {
	Body    map[string]any
	Headers map[string]string
	Query   map[string]string
}
