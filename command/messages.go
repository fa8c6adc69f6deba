package command

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-outplay/core"
	"github.com/goliatone/go-outplay/prospect"
	"github.com/goliatone/go-outplay/scheduler"
)

const (
	TypeSaveProspect          = "outplay.command.prospect.save"
	TypeCreateLead            = "outplay.command.scheduler.create_lead"
	TypeSubscribeWebhook      = "outplay.command.webhook.subscribe"
	TypeUnsubscribeWebhook    = "outplay.command.webhook.unsubscribe"
	TypeReconcileSubscription = "outplay.command.webhook.reconcile"
)

type SaveProspectMessage struct {
	Credential core.Credential
	Input      prospect.SaveInput
}

func (SaveProspectMessage) Type() string { return TypeSaveProspect }

func (m SaveProspectMessage) Validate() error {
	if err := m.Credential.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(m.Input.Email) == "" {
		return fmt.Errorf("command: prospect email is required")
	}
	return nil
}

type CreateLeadMessage struct {
	Credential  core.Credential
	MeetingType string
	Fields      []scheduler.LeadField
}

func (CreateLeadMessage) Type() string { return TypeCreateLead }

func (m CreateLeadMessage) Validate() error {
	if err := m.Credential.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(m.MeetingType) == "" {
		return fmt.Errorf("command: meeting type is required")
	}
	return nil
}

type SubscribeWebhookMessage struct {
	Credential core.Credential
	Node       core.NodeRef
	Event      string
}

func (SubscribeWebhookMessage) Type() string { return TypeSubscribeWebhook }

func (m SubscribeWebhookMessage) Validate() error {
	if err := m.Credential.Validate(); err != nil {
		return err
	}
	if err := m.Node.Validate(); err != nil {
		return err
	}
	if !core.ValidWebhookEvent(m.Event) {
		return fmt.Errorf("command: webhook event %q is invalid", m.Event)
	}
	return nil
}

type UnsubscribeWebhookMessage struct {
	Credential core.Credential
	Node       core.NodeRef
	// Event is the fallback when the stored record carries none.
	Event string
}

func (UnsubscribeWebhookMessage) Type() string { return TypeUnsubscribeWebhook }

func (m UnsubscribeWebhookMessage) Validate() error {
	if err := m.Credential.Validate(); err != nil {
		return err
	}
	return m.Node.Validate()
}

type ReconcileSubscriptionMessage struct {
	Credential core.Credential
	Node       core.NodeRef
	Event      string
}

func (ReconcileSubscriptionMessage) Type() string { return TypeReconcileSubscription }

func (m ReconcileSubscriptionMessage) Validate() error {
	if err := m.Credential.Validate(); err != nil {
		return err
	}
	if err := m.Node.Validate(); err != nil {
		return err
	}
	if !core.ValidWebhookEvent(m.Event) {
		return fmt.Errorf("command: webhook event %q is invalid", m.Event)
	}
	return nil
}
