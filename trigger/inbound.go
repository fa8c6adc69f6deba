package trigger

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	glog "github.com/goliatone/go-logger/glog"
	"github.com/goliatone/go-outplay/core"
)

const (
	responseOK           = "OK"
	responseWrongEvent   = "Ignored - wrong event type"
	deliveryReasonPing   = "ping"
	deliveryReasonEvent  = "event_mismatch"
	deliveryReasonOpaque = "unparsable_body"
)

// InboundProcessor turns raw webhook deliveries into trigger items. The CRM
// is always acknowledged with 200 so it never retries or disables the hook;
// whether a workflow starts is decided here.
type InboundProcessor struct {
	Sink   core.TriggerSink
	Logger core.Logger
}

func NewInboundProcessor(sink core.TriggerSink, logger core.Logger) (*InboundProcessor, error) {
	if sink == nil {
		return nil, fmt.Errorf("trigger: trigger sink is required")
	}
	_, logger = glog.Resolve("trigger", nil, logger)
	return &InboundProcessor{Sink: sink, Logger: logger}, nil
}

// HandleDelivery classifies one delivery against the node's subscribed
// event. Ping and test probes get "OK" with no workflow start; a mismatched
// event is acknowledged but ignored; a match produces exactly one trigger
// item handed to the sink.
func (p *InboundProcessor) HandleDelivery(ctx context.Context, node core.NodeRef, event string, req core.InboundRequest) (core.InboundResult, error) {
	if p == nil || p.Sink == nil {
		return core.InboundResult{}, fmt.Errorf("trigger: inbound processor is not configured")
	}

	body := map[string]any{}
	if trimmed := strings.TrimSpace(string(req.Body)); trimmed != "" {
		if err := json.Unmarshal(req.Body, &body); err != nil {
			p.Logger.Error("trigger: discarding unparsable delivery", "node", node.Key(), "error", err)
			return core.InboundResult{
				Accepted:   true,
				StatusCode: http.StatusOK,
				Response:   responseOK,
				Metadata:   map[string]any{"reason": deliveryReasonOpaque},
			}, nil
		}
	}

	if truthy(body["ping"]) || truthy(body["test"]) {
		p.Logger.Info("trigger: ping delivery acknowledged", "node", node.Key())
		return core.InboundResult{
			Accepted:   true,
			StatusCode: http.StatusOK,
			Response:   responseOK,
			Metadata:   map[string]any{"reason": deliveryReasonPing},
		}, nil
	}

	if raw, ok := body["event"]; ok && raw != nil {
		delivered := strings.TrimSpace(fmt.Sprint(raw))
		if delivered != "" && delivered != strings.TrimSpace(event) {
			return core.InboundResult{
				Accepted:   true,
				StatusCode: http.StatusOK,
				Response:   responseWrongEvent,
				Metadata: map[string]any{
					"reason":          deliveryReasonEvent,
					"delivered_event": delivered,
				},
			}, nil
		}
	}

	item := core.TriggerItem{
		Body:    body,
		Headers: cloneStringMap(req.Headers),
		Query:   cloneStringMap(req.Query),
	}
	if err := p.Sink.Deliver(ctx, node, []core.TriggerItem{item}); err != nil {
		return core.InboundResult{}, goerrors.Wrap(err, goerrors.CategoryInternal, "trigger: deliver workflow items").
			WithTextCode(core.ServiceErrorInternal).
			WithMetadata(map[string]any{"node": node.Key()})
	}

	return core.InboundResult{
		Accepted:   true,
		StatusCode: http.StatusOK,
		Response:   responseOK,
		Items:      []core.TriggerItem{item},
	}, nil
}

// truthy mirrors loose boolean coercion: absent, false, zero, and empty
// string all read as false.
func truthy(value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		return strings.TrimSpace(v) != "" && v != "false" && v != "0"
	case float64:
		return v != 0
	default:
		return true
	}
}

func cloneStringMap(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for key, value := range in {
		out[key] = value
	}
	return out
}
