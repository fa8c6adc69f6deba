package query

import (
	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-outplay/core"
)

var (
	_ gocmd.Querier[GetProspectMessage, any]                         = (*GetProspectQuery)(nil)
	_ gocmd.Querier[ListMeetingTypesMessage, []core.OptionItem]      = (*ListMeetingTypesQuery)(nil)
	_ gocmd.Querier[ListMeetingFormFieldsMessage, []core.OptionItem] = (*ListMeetingFormFieldsQuery)(nil)
	_ gocmd.Querier[PingCredentialMessage, bool]                     = (*PingCredentialQuery)(nil)
)
