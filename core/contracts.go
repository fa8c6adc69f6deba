package core

import (
	"context"
	"strings"
	"time"

	glog "github.com/goliatone/go-logger/glog"
)

type Logger = glog.Logger

type LoggerProvider = glog.LoggerProvider

type FieldsLogger = glog.FieldsLogger

// TransportRequest is one fully resolved HTTP call.
type TransportRequest struct {
	Method               string
	URL                  string
	Headers              map[string]string
	Query                map[string]string
	Body                 []byte
	Metadata             map[string]any
	Timeout              time.Duration
	MaxResponseBodyBytes int64
}

type TransportResponse struct {
	StatusCode int
	Headers    map[string]string
	Body       []byte
	Metadata   map[string]any
}

type TransportAdapter interface {
	Kind() string
	Do(ctx context.Context, req TransportRequest) (TransportResponse, error)
}

// APIRequest describes one Outplay API call relative to the credential's
// base URL. Body, when non-nil, is JSON encoded.
type APIRequest struct {
	Method  string
	Path    string
	Query   map[string]string
	Headers map[string]string
	Body    any
}

// APICaller is the authenticated-HTTP-call capability: it resolves the base
// URL from the credential, attaches auth, and returns the parsed JSON body,
// failing on any non-2xx response.
type APICaller interface {
	CallJSON(ctx context.Context, cred Credential, req APIRequest) (any, error)
}

// NodeStateStore is the host's per-node durable key-value storage, used only
// for the webhook subscription record. Load reports found=false when no live
// record exists for the node.
type NodeStateStore interface {
	Load(ctx context.Context, node NodeRef) (WebhookSubscription, bool, error)
	Save(ctx context.Context, node NodeRef, sub WebhookSubscription) error
	Clear(ctx context.Context, node NodeRef) error
}

// WebhookURLResolver provisions the externally reachable callback URL the
// CRM should deliver to for a given node.
type WebhookURLResolver interface {
	ResolveWebhookURL(ctx context.Context, node NodeRef) (string, error)
}

type WebhookURLResolverFunc func(ctx context.Context, node NodeRef) (string, error)

func (fn WebhookURLResolverFunc) ResolveWebhookURL(ctx context.Context, node NodeRef) (string, error) {
	if fn == nil {
		return "", nil
	}
	url, err := fn(ctx, node)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(url), nil
}

// TriggerSink enqueues delivered webhook payloads as workflow-triggering
// events in the host.
type TriggerSink interface {
	Deliver(ctx context.Context, node NodeRef, items []TriggerItem) error
}

type TriggerSinkFunc func(ctx context.Context, node NodeRef, items []TriggerItem) error

func (fn TriggerSinkFunc) Deliver(ctx context.Context, node NodeRef, items []TriggerItem) error {
	if fn == nil {
		return nil
	}
	return fn(ctx, node, items)
}

// InboundRequest is one raw webhook delivery from the CRM.
type InboundRequest struct {
	Headers  map[string]string
	Query    map[string]string
	Body     []byte
	Metadata map[string]any
}

// InboundResult carries the acknowledgement the host should send back and
// the trigger items (if any) that were delivered to the sink.
type InboundResult struct {
	Accepted   bool
	StatusCode int
	Response   string
	Items      []TriggerItem
	Metadata   map[string]any
}
