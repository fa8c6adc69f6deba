package command

import (
	"context"

	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-outplay/core"
	"github.com/goliatone/go-outplay/prospect"
	"github.com/goliatone/go-outplay/scheduler"
)

// MutatingService is the slice of the facade the command handlers drive.
type MutatingService interface {
	SaveProspect(ctx context.Context, cred core.Credential, in prospect.SaveInput) (any, error)
	CreateLead(ctx context.Context, cred core.Credential, meetingType string, fields []scheduler.LeadField) (any, error)
	SubscribeWebhook(ctx context.Context, cred core.Credential, node core.NodeRef, event string) error
	UnsubscribeWebhook(ctx context.Context, cred core.Credential, node core.NodeRef, event string) error
	ReconcileSubscription(ctx context.Context, cred core.Credential, node core.NodeRef, event string) (bool, error)
}

type SaveProspectCommand struct {
	service MutatingService
}

func NewSaveProspectCommand(service MutatingService) *SaveProspectCommand {
	return &SaveProspectCommand{service: service}
}

func (c *SaveProspectCommand) Execute(ctx context.Context, msg SaveProspectMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: prospect service is required")
	}
	out, err := c.service.SaveProspect(ctx, msg.Credential, msg.Input)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type CreateLeadCommand struct {
	service MutatingService
}

func NewCreateLeadCommand(service MutatingService) *CreateLeadCommand {
	return &CreateLeadCommand{service: service}
}

func (c *CreateLeadCommand) Execute(ctx context.Context, msg CreateLeadMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: scheduler service is required")
	}
	out, err := c.service.CreateLead(ctx, msg.Credential, msg.MeetingType, msg.Fields)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type SubscribeWebhookCommand struct {
	service MutatingService
}

func NewSubscribeWebhookCommand(service MutatingService) *SubscribeWebhookCommand {
	return &SubscribeWebhookCommand{service: service}
}

func (c *SubscribeWebhookCommand) Execute(ctx context.Context, msg SubscribeWebhookMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: webhook service is required")
	}
	return c.service.SubscribeWebhook(ctx, msg.Credential, msg.Node, msg.Event)
}

type UnsubscribeWebhookCommand struct {
	service MutatingService
}

func NewUnsubscribeWebhookCommand(service MutatingService) *UnsubscribeWebhookCommand {
	return &UnsubscribeWebhookCommand{service: service}
}

func (c *UnsubscribeWebhookCommand) Execute(ctx context.Context, msg UnsubscribeWebhookMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: webhook service is required")
	}
	return c.service.UnsubscribeWebhook(ctx, msg.Credential, msg.Node, msg.Event)
}

type ReconcileSubscriptionCommand struct {
	service MutatingService
}

func NewReconcileSubscriptionCommand(service MutatingService) *ReconcileSubscriptionCommand {
	return &ReconcileSubscriptionCommand{service: service}
}

func (c *ReconcileSubscriptionCommand) Execute(ctx context.Context, msg ReconcileSubscriptionMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: webhook service is required")
	}
	created, err := c.service.ReconcileSubscription(ctx, msg.Credential, msg.Node, msg.Event)
	if err != nil {
		return err
	}
	storeResult(ctx, created)
	return nil
}

func storeResult[T any](ctx context.Context, value T) {
	collector := gocmd.ResultFromContext[T](ctx)
	if collector == nil {
		return
	}
	collector.Store(value)
}
