// Package trigger manages the Outplay webhook lifecycle for trigger nodes:
// one durable subscription per node, plus inbound delivery handling.
package trigger

import (
	"context"
	"fmt"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	glog "github.com/goliatone/go-logger/glog"
	"github.com/goliatone/go-outplay/account"
	"github.com/goliatone/go-outplay/core"
)

// SubscriptionAPI is the slice of the account client the manager needs.
type SubscriptionAPI interface {
	SubscribeWebhook(ctx context.Context, cred core.Credential, targetURL, event string) (account.SubscribeResult, error)
	UnsubscribeWebhook(ctx context.Context, cred core.Credential, targetURL, event string) error
}

// UnsubscribeOutcome reports a best-effort unsubscribe attempt. OK is false
// when the CRM call failed; Reason carries the failure text.
type UnsubscribeOutcome struct {
	OK     bool
	Reason string
}

type ManagerConfig struct {
	Account SubscriptionAPI
	Store   core.NodeStateStore
	URLs    core.WebhookURLResolver
	Logger  core.Logger
	// Now drives the fallback webhook id; tests pin it.
	Now func() time.Time
}

// Manager owns the per-node subscription record. It never holds more than
// one live subscription per node.
type Manager struct {
	api    SubscriptionAPI
	store  core.NodeStateStore
	urls   core.WebhookURLResolver
	logger core.Logger
	now    func() time.Time
}

func NewManager(cfg ManagerConfig) (*Manager, error) {
	if cfg.Account == nil {
		return nil, fmt.Errorf("trigger: subscription api is required")
	}
	if cfg.Store == nil {
		return nil, fmt.Errorf("trigger: node state store is required")
	}
	if cfg.URLs == nil {
		return nil, fmt.Errorf("trigger: webhook url resolver is required")
	}
	_, logger := glog.Resolve("trigger", nil, cfg.Logger)
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Manager{
		api:    cfg.Account,
		store:  cfg.Store,
		urls:   cfg.URLs,
		logger: logger,
		now:    now,
	}, nil
}

// CheckExists reports whether the node already holds a usable subscription
// for the requested event. The CRM has no lookup endpoint, so a stored id is
// trusted as live. When the stored event differs from the requested one the
// stale subscription is removed best-effort and the record cleared; a failed
// removal is logged, never raised, so activation can proceed.
func (m *Manager) CheckExists(ctx context.Context, cred core.Credential, node core.NodeRef, event string) (bool, error) {
	sub, found, err := m.store.Load(ctx, node)
	if err != nil {
		return false, storeError(err, node)
	}
	if !found || strings.TrimSpace(sub.WebhookID) == "" {
		return false, nil
	}

	storedEvent := strings.TrimSpace(sub.Event)
	if storedEvent != "" && storedEvent != strings.TrimSpace(event) {
		outcome := m.unsubscribeStale(ctx, cred, node, sub)
		if !outcome.OK {
			m.logger.Error("trigger: failed to unsubscribe stale event",
				"node", node.Key(),
				"stored_event", storedEvent,
				"requested_event", event,
				"reason", outcome.Reason,
			)
		}
		if err := m.store.Clear(ctx, node); err != nil {
			return false, storeError(err, node)
		}
		return false, nil
	}

	return true, nil
}

// unsubscribeStale removes the previous subscription before a new one is
// created. The local record is cleared regardless of the result: a dangling
// CRM registration is recoverable, a wedged node is not.
func (m *Manager) unsubscribeStale(ctx context.Context, cred core.Credential, node core.NodeRef, sub core.WebhookSubscription) UnsubscribeOutcome {
	targetURL := strings.TrimSpace(sub.TargetURL)
	if targetURL == "" {
		resolved, err := m.urls.ResolveWebhookURL(ctx, node)
		if err != nil {
			return UnsubscribeOutcome{Reason: fmt.Sprintf("resolve webhook url: %v", err)}
		}
		targetURL = resolved
	}
	if targetURL == "" {
		return UnsubscribeOutcome{Reason: "no webhook url available"}
	}
	if err := m.api.UnsubscribeWebhook(ctx, cred, targetURL, sub.Event); err != nil {
		return UnsubscribeOutcome{Reason: err.Error()}
	}
	return UnsubscribeOutcome{OK: true}
}

// Create subscribes the node's callback URL for the event and stores the
// resulting record. A subscribe failure is fatal and leaves no record.
func (m *Manager) Create(ctx context.Context, cred core.Credential, node core.NodeRef, event string) error {
	if err := node.Validate(); err != nil {
		return err
	}
	targetURL, err := m.urls.ResolveWebhookURL(ctx, node)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "trigger: resolve webhook url").
			WithTextCode(core.ServiceErrorInternal).
			WithMetadata(map[string]any{"node": node.Key()})
	}

	result, err := m.api.SubscribeWebhook(ctx, cred, targetURL, event)
	if err != nil {
		return err
	}

	webhookID := result.WebhookID
	if webhookID == "" {
		webhookID = fmt.Sprintf("webhook_%s_%d", strings.TrimSpace(event), m.now().UnixMilli())
	}
	record := core.WebhookSubscription{
		WebhookID: webhookID,
		Event:     strings.TrimSpace(event),
		TargetURL: targetURL,
	}
	if err := m.store.Save(ctx, node, record); err != nil {
		return storeError(err, node)
	}
	return nil
}

// Delete removes the node's subscription. With no URL on record and none
// resolvable the delete is a successful no-op; an unsubscribe failure is
// fatal and keeps the record so a later delete can retry.
func (m *Manager) Delete(ctx context.Context, cred core.Credential, node core.NodeRef, fallbackEvent string) error {
	sub, found, err := m.store.Load(ctx, node)
	if err != nil {
		return storeError(err, node)
	}

	targetURL := strings.TrimSpace(sub.TargetURL)
	if targetURL == "" {
		resolved, resolveErr := m.urls.ResolveWebhookURL(ctx, node)
		if resolveErr == nil {
			targetURL = resolved
		}
	}
	event := strings.TrimSpace(sub.Event)
	if event == "" {
		event = strings.TrimSpace(fallbackEvent)
	}
	if targetURL == "" {
		if found {
			if err := m.store.Clear(ctx, node); err != nil {
				return storeError(err, node)
			}
		}
		return nil
	}

	if err := m.api.UnsubscribeWebhook(ctx, cred, targetURL, event); err != nil {
		return err
	}
	if err := m.store.Clear(ctx, node); err != nil {
		return storeError(err, node)
	}
	return nil
}

// EnsureSubscribed is the reconcile primitive: it re-runs the activation
// sequence so the stored record converges on the requested event.
func (m *Manager) EnsureSubscribed(ctx context.Context, cred core.Credential, node core.NodeRef, event string) (bool, error) {
	exists, err := m.CheckExists(ctx, cred, node, event)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}
	if err := m.Create(ctx, cred, node, event); err != nil {
		return false, err
	}
	return true, nil
}

func storeError(err error, node core.NodeRef) error {
	return goerrors.Wrap(err, goerrors.CategoryInternal, "trigger: node state store failed").
		WithTextCode(core.ServiceErrorStateStore).
		WithMetadata(map[string]any{"node": node.Key()})
}
