package jobs

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/goliatone/go-outplay/core"
)

func testCredential() core.Credential {
	return core.Credential{Location: "US", ClientID: "client-1", ClientSecret: "secret-1"}
}

func testNode() core.NodeRef {
	return core.NodeRef{WorkflowID: "wf-1", NodeID: "node-1"}
}

type fakeDelivery struct {
	message *core.JobExecutionMessage
	acked   bool
	nacks   []core.JobNackOptions
}

func (d *fakeDelivery) Message() *core.JobExecutionMessage { return d.message }

func (d *fakeDelivery) Ack(context.Context) error {
	d.acked = true
	return nil
}

func (d *fakeDelivery) Nack(_ context.Context, opts core.JobNackOptions) error {
	d.nacks = append(d.nacks, opts)
	return nil
}

type fakeReconciler struct {
	created bool
	err     error
	calls   []string
}

func (f *fakeReconciler) EnsureSubscribed(_ context.Context, _ core.Credential, node core.NodeRef, event string) (bool, error) {
	f.calls = append(f.calls, node.Key()+"::"+event)
	return f.created, f.err
}

func TestReconcileMessageRoundTrip(t *testing.T) {
	msg, err := NewReconcileMessage(ReconcileInput{
		Credential: testCredential(),
		Node:       testNode(),
		Event:      core.EventProspectUpdated,
	})
	if err != nil {
		t.Fatalf("build reconcile message: %v", err)
	}
	if msg.JobID != JobIDReconcileSubscription {
		t.Fatalf("unexpected job id %q", msg.JobID)
	}
	if msg.IdempotencyKey != "outplay.reconcile::wf-1::node-1" {
		t.Fatalf("unexpected idempotency key %q", msg.IdempotencyKey)
	}

	parsed, err := ParseReconcileMessage(msg)
	if err != nil {
		t.Fatalf("parse reconcile message: %v", err)
	}
	if parsed.Node != testNode() || parsed.Event != core.EventProspectUpdated {
		t.Fatalf("unexpected parsed input: %+v", parsed)
	}
	if parsed.Credential != testCredential() {
		t.Fatalf("unexpected parsed credential: %+v", parsed.Credential)
	}
}

func TestNewReconcileMessageRejectsInvalidEvent(t *testing.T) {
	_, err := NewReconcileMessage(ReconcileInput{
		Credential: testCredential(),
		Node:       testNode(),
		Event:      "9",
	})
	if err == nil {
		t.Fatal("expected invalid event error")
	}
}

func TestReconcileWorkerAcksOnSuccess(t *testing.T) {
	reconciler := &fakeReconciler{created: true}
	worker, err := NewReconcileWorker(reconciler, nil)
	if err != nil {
		t.Fatalf("expected worker, got error: %v", err)
	}

	msg, _ := NewReconcileMessage(ReconcileInput{
		Credential: testCredential(),
		Node:       testNode(),
		Event:      core.EventProspectCreated,
	})
	delivery := &fakeDelivery{message: msg}

	if err := worker.Handle(context.Background(), delivery); err != nil {
		t.Fatalf("handle reconcile: %v", err)
	}
	if !delivery.acked || len(delivery.nacks) != 0 {
		t.Fatalf("expected ack, got acked=%v nacks=%+v", delivery.acked, delivery.nacks)
	}
	if len(reconciler.calls) != 1 || reconciler.calls[0] != "wf-1::node-1::1" {
		t.Fatalf("unexpected reconciler calls: %+v", reconciler.calls)
	}
}

func TestReconcileWorkerRequeuesOnFailure(t *testing.T) {
	reconciler := &fakeReconciler{err: fmt.Errorf("crm unavailable")}
	worker, _ := NewReconcileWorker(reconciler, nil)

	msg, _ := NewReconcileMessage(ReconcileInput{
		Credential: testCredential(),
		Node:       testNode(),
		Event:      core.EventProspectCreated,
	})
	delivery := &fakeDelivery{message: msg}

	if err := worker.Handle(context.Background(), delivery); err != nil {
		t.Fatalf("handle reconcile: %v", err)
	}
	if delivery.acked {
		t.Fatal("failed reconcile must not ack")
	}
	if len(delivery.nacks) != 1 || !delivery.nacks[0].Requeue || delivery.nacks[0].DeadLetter {
		t.Fatalf("expected requeue nack, got %+v", delivery.nacks)
	}
}

func TestReconcileWorkerDeadLettersMalformedMessage(t *testing.T) {
	reconciler := &fakeReconciler{}
	worker, _ := NewReconcileWorker(reconciler, nil)

	delivery := &fakeDelivery{message: &core.JobExecutionMessage{JobID: "other.job"}}
	if err := worker.Handle(context.Background(), delivery); err != nil {
		t.Fatalf("handle malformed message: %v", err)
	}
	if len(delivery.nacks) != 1 || !delivery.nacks[0].DeadLetter {
		t.Fatalf("expected dead-letter nack, got %+v", delivery.nacks)
	}
	if len(reconciler.calls) != 0 {
		t.Fatal("malformed message must not reach the reconciler")
	}
}

func TestRetryPolicyNormalizeAttempt(t *testing.T) {
	policy := RetryPolicy{MaxAttempts: 3, MaxDelay: time.Minute, DeadLetterOnMax: true}

	normalized := policy.NormalizeAttempt(core.JobNackOptions{Delay: 5 * time.Minute, Requeue: true}, 1)
	if normalized.Delay != time.Minute {
		t.Fatalf("expected delay capped at 1m, got %v", normalized.Delay)
	}
	if !normalized.Requeue || normalized.DeadLetter {
		t.Fatalf("expected plain requeue under max attempts, got %+v", normalized)
	}

	normalized = policy.NormalizeAttempt(core.JobNackOptions{Requeue: true}, 3)
	if normalized.Requeue || !normalized.DeadLetter {
		t.Fatalf("expected dead-letter at max attempts, got %+v", normalized)
	}

	normalized = policy.NormalizeAttempt(core.JobNackOptions{Delay: -time.Second}, 1)
	if normalized.Delay != 0 {
		t.Fatalf("expected negative delay clamped to 0, got %v", normalized.Delay)
	}
	if !normalized.Requeue {
		t.Fatalf("neither requeue nor dead-letter must default to requeue, got %+v", normalized)
	}
}
