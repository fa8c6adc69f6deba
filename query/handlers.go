package query

import (
	"context"

	"github.com/goliatone/go-outplay/core"
)

type ProspectReader interface {
	GetProspect(ctx context.Context, cred core.Credential, prospectID string) (any, error)
}

type SchedulerReader interface {
	MeetingTypeOptions(ctx context.Context, cred core.Credential) []core.OptionItem
	MeetingFormFieldOptions(ctx context.Context, cred core.Credential, meetingType string) []core.OptionItem
}

type CredentialProber interface {
	PingCredential(ctx context.Context, cred core.Credential) error
}

type GetProspectQuery struct {
	reader ProspectReader
}

func NewGetProspectQuery(reader ProspectReader) *GetProspectQuery {
	return &GetProspectQuery{reader: reader}
}

func (q *GetProspectQuery) Query(ctx context.Context, msg GetProspectMessage) (any, error) {
	if q == nil || q.reader == nil {
		return nil, queryDependencyError("query: prospect reader is required")
	}
	return q.reader.GetProspect(ctx, msg.Credential, msg.ProspectID)
}

type ListMeetingTypesQuery struct {
	reader SchedulerReader
}

func NewListMeetingTypesQuery(reader SchedulerReader) *ListMeetingTypesQuery {
	return &ListMeetingTypesQuery{reader: reader}
}

func (q *ListMeetingTypesQuery) Query(ctx context.Context, msg ListMeetingTypesMessage) ([]core.OptionItem, error) {
	if q == nil || q.reader == nil {
		return nil, queryDependencyError("query: scheduler reader is required")
	}
	return q.reader.MeetingTypeOptions(ctx, msg.Credential), nil
}

type ListMeetingFormFieldsQuery struct {
	reader SchedulerReader
}

func NewListMeetingFormFieldsQuery(reader SchedulerReader) *ListMeetingFormFieldsQuery {
	return &ListMeetingFormFieldsQuery{reader: reader}
}

func (q *ListMeetingFormFieldsQuery) Query(ctx context.Context, msg ListMeetingFormFieldsMessage) ([]core.OptionItem, error) {
	if q == nil || q.reader == nil {
		return nil, queryDependencyError("query: scheduler reader is required")
	}
	return q.reader.MeetingFormFieldOptions(ctx, msg.Credential, msg.MeetingType), nil
}

type PingCredentialQuery struct {
	prober CredentialProber
}

func NewPingCredentialQuery(prober CredentialProber) *PingCredentialQuery {
	return &PingCredentialQuery{prober: prober}
}

func (q *PingCredentialQuery) Query(ctx context.Context, msg PingCredentialMessage) (bool, error) {
	if q == nil || q.prober == nil {
		return false, queryDependencyError("query: credential prober is required")
	}
	if err := q.prober.PingCredential(ctx, msg.Credential); err != nil {
		return false, err
	}
	return true, nil
}
