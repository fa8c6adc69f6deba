package query

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-outplay/core"
)

const (
	TypeGetProspect           = "outplay.query.prospect.get"
	TypeListMeetingTypes      = "outplay.query.scheduler.meeting_types"
	TypeListMeetingFormFields = "outplay.query.scheduler.form_fields"
	TypePingCredential        = "outplay.query.account.ping"
)

type GetProspectMessage struct {
	Credential core.Credential
	ProspectID string
}

func (GetProspectMessage) Type() string { return TypeGetProspect }

func (m GetProspectMessage) Validate() error {
	if err := m.Credential.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(m.ProspectID) == "" {
		return fmt.Errorf("query: prospect id is required")
	}
	return nil
}

type ListMeetingTypesMessage struct {
	Credential core.Credential
}

func (ListMeetingTypesMessage) Type() string { return TypeListMeetingTypes }

func (m ListMeetingTypesMessage) Validate() error {
	return m.Credential.Validate()
}

type ListMeetingFormFieldsMessage struct {
	Credential core.Credential
	// MeetingType may be "id::slug", a numeric id, a slug, or empty. Empty
	// is valid: the query answers with no options.
	MeetingType string
}

func (ListMeetingFormFieldsMessage) Type() string { return TypeListMeetingFormFields }

func (m ListMeetingFormFieldsMessage) Validate() error {
	return m.Credential.Validate()
}

type PingCredentialMessage struct {
	Credential core.Credential
}

func (PingCredentialMessage) Type() string { return TypePingCredential }

func (m PingCredentialMessage) Validate() error {
	return m.Credential.Validate()
}
