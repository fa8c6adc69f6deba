package command

import gocmd "github.com/goliatone/go-command"

var (
	_ gocmd.Commander[SaveProspectMessage]          = (*SaveProspectCommand)(nil)
	_ gocmd.Commander[CreateLeadMessage]            = (*CreateLeadCommand)(nil)
	_ gocmd.Commander[SubscribeWebhookMessage]      = (*SubscribeWebhookCommand)(nil)
	_ gocmd.Commander[UnsubscribeWebhookMessage]    = (*UnsubscribeWebhookCommand)(nil)
	_ gocmd.Commander[ReconcileSubscriptionMessage] = (*ReconcileSubscriptionCommand)(nil)
)
