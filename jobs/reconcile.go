package jobs

import (
	"context"
	"fmt"
	"strings"

	job "github.com/goliatone/go-job"
	"github.com/goliatone/go-outplay/core"
)

// ReconcileInput identifies one subscription to converge.
type ReconcileInput struct {
	Credential core.Credential
	Node       core.NodeRef
	Event      string
}

// ReconcileIdempotencyKey dedupes queued reconciles per node: only one
// reconcile per node is ever in flight.
func ReconcileIdempotencyKey(node core.NodeRef) string {
	return "outplay.reconcile::" + node.Key()
}

// NewReconcileMessage builds the queue message for one reconcile run.
func NewReconcileMessage(in ReconcileInput) (*core.JobExecutionMessage, error) {
	if err := in.Node.Validate(); err != nil {
		return nil, err
	}
	if err := in.Credential.Validate(); err != nil {
		return nil, err
	}
	if !core.ValidWebhookEvent(in.Event) {
		return nil, fmt.Errorf("jobs: webhook event %q is invalid", in.Event)
	}
	return &core.JobExecutionMessage{
		JobID: JobIDReconcileSubscription,
		Parameters: map[string]any{
			"workflow_id":   in.Node.WorkflowID,
			"node_id":       in.Node.NodeID,
			"event":         strings.TrimSpace(in.Event),
			"location":      in.Credential.Location,
			"client_id":     in.Credential.ClientID,
			"client_secret": in.Credential.ClientSecret,
		},
		IdempotencyKey: ReconcileIdempotencyKey(in.Node),
		DedupPolicy:    "replace",
	}, nil
}

// ParseReconcileMessage is the inverse of NewReconcileMessage.
func ParseReconcileMessage(msg *core.JobExecutionMessage) (ReconcileInput, error) {
	if msg == nil {
		return ReconcileInput{}, fmt.Errorf("jobs: execution message is required")
	}
	if msg.JobID != JobIDReconcileSubscription {
		return ReconcileInput{}, fmt.Errorf("jobs: unexpected job id %q", msg.JobID)
	}
	in := ReconcileInput{
		Credential: core.Credential{
			Location:     paramString(msg.Parameters, "location"),
			ClientID:     paramString(msg.Parameters, "client_id"),
			ClientSecret: paramString(msg.Parameters, "client_secret"),
		},
		Node: core.NodeRef{
			WorkflowID: paramString(msg.Parameters, "workflow_id"),
			NodeID:     paramString(msg.Parameters, "node_id"),
		},
		Event: paramString(msg.Parameters, "event"),
	}
	if err := in.Node.Validate(); err != nil {
		return ReconcileInput{}, err
	}
	if !core.ValidWebhookEvent(in.Event) {
		return ReconcileInput{}, fmt.Errorf("jobs: webhook event %q is invalid", in.Event)
	}
	return in, nil
}

func paramString(params map[string]any, key string) string {
	if params == nil {
		return ""
	}
	if v, ok := params[key].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

// SubscriptionReconciler is the manager capability the worker needs.
type SubscriptionReconciler interface {
	EnsureSubscribed(ctx context.Context, cred core.Credential, node core.NodeRef, event string) (bool, error)
}

// ReconcileWorker drains reconcile deliveries and converges each node's
// subscription on its desired event.
type ReconcileWorker struct {
	reconciler SubscriptionReconciler
	logger     core.Logger
	jobLog     job.Logger
}

func NewReconcileWorker(reconciler SubscriptionReconciler, logger core.Logger) (*ReconcileWorker, error) {
	if reconciler == nil {
		return nil, fmt.Errorf("jobs: subscription reconciler is required")
	}
	_, resolved, _, jobLog := ResolveForJob("jobs", nil, logger)
	return &ReconcileWorker{reconciler: reconciler, logger: resolved, jobLog: jobLog}, nil
}

// Handle processes one delivery. Transient failures nack with requeue so a
// later attempt can converge; malformed messages dead-letter.
func (w *ReconcileWorker) Handle(ctx context.Context, delivery core.JobDelivery) error {
	if w == nil || w.reconciler == nil {
		return fmt.Errorf("jobs: reconcile worker is not configured")
	}
	if delivery == nil {
		return fmt.Errorf("jobs: delivery is required")
	}

	in, err := ParseReconcileMessage(delivery.Message())
	if err != nil {
		w.jobLog.Error("jobs: dead-lettering malformed reconcile message", "error", err)
		return delivery.Nack(ctx, core.JobNackOptions{
			DeadLetter: true,
			Reason:     err.Error(),
		})
	}

	created, err := w.reconciler.EnsureSubscribed(ctx, in.Credential, in.Node, in.Event)
	if err != nil {
		w.jobLog.Error("jobs: reconcile attempt failed",
			"node", in.Node.Key(),
			"event", in.Event,
			"error", err,
		)
		return delivery.Nack(ctx, core.JobNackOptions{
			Requeue: true,
			Reason:  err.Error(),
		})
	}

	if created {
		w.logger.Info("jobs: subscription re-created during reconcile",
			"node", in.Node.Key(),
			"event", in.Event,
		)
	}
	return delivery.Ack(ctx)
}
