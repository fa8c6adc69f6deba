package outplay

import (
	"fmt"

	outplaycommand "github.com/goliatone/go-outplay/command"
	outplayquery "github.com/goliatone/go-outplay/query"
)

// CommandQueryService is the full contract the facade exposes over the
// command and query buses.
type CommandQueryService interface {
	outplaycommand.MutatingService
	outplayquery.ProspectReader
	outplayquery.SchedulerReader
	outplayquery.CredentialProber
}

type Commands struct {
	SaveProspect          *outplaycommand.SaveProspectCommand
	CreateLead            *outplaycommand.CreateLeadCommand
	SubscribeWebhook      *outplaycommand.SubscribeWebhookCommand
	UnsubscribeWebhook    *outplaycommand.UnsubscribeWebhookCommand
	ReconcileSubscription *outplaycommand.ReconcileSubscriptionCommand
}

type Queries struct {
	GetProspect           *outplayquery.GetProspectQuery
	ListMeetingTypes      *outplayquery.ListMeetingTypesQuery
	ListMeetingFormFields *outplayquery.ListMeetingFormFieldsQuery
	PingCredential        *outplayquery.PingCredentialQuery
}

type Facade struct {
	service  CommandQueryService
	commands Commands
	queries  Queries
}

func NewFacade(service CommandQueryService) (*Facade, error) {
	if service == nil {
		return nil, fmt.Errorf("outplay: command/query service is required")
	}

	facade := &Facade{service: service}
	facade.commands = Commands{
		SaveProspect:          outplaycommand.NewSaveProspectCommand(service),
		CreateLead:            outplaycommand.NewCreateLeadCommand(service),
		SubscribeWebhook:      outplaycommand.NewSubscribeWebhookCommand(service),
		UnsubscribeWebhook:    outplaycommand.NewUnsubscribeWebhookCommand(service),
		ReconcileSubscription: outplaycommand.NewReconcileSubscriptionCommand(service),
	}
	facade.queries = Queries{
		GetProspect:           outplayquery.NewGetProspectQuery(service),
		ListMeetingTypes:      outplayquery.NewListMeetingTypesQuery(service),
		ListMeetingFormFields: outplayquery.NewListMeetingFormFieldsQuery(service),
		PingCredential:        outplayquery.NewPingCredentialQuery(service),
	}
	return facade, nil
}

func (f *Facade) Commands() Commands {
	if f == nil {
		return Commands{}
	}
	return f.commands
}

func (f *Facade) Queries() Queries {
	if f == nil {
		return Queries{}
	}
	return f.queries
}

var _ CommandQueryService = (*Service)(nil)
