// Package sqlstore persists the per-node webhook subscription record. It is
// the SQL-backed implementation of the host's node state storage.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-outplay/core"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type WebhookStateStore struct {
	db   *bun.DB
	repo repository.Repository[*webhookSubscriptionRecord]
}

func NewWebhookStateStore(db *bun.DB) (*WebhookStateStore, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: bun db is required")
	}
	repo := repository.NewRepository[*webhookSubscriptionRecord](db, webhookSubscriptionHandlers())
	if validator, ok := repo.(repository.Validator); ok {
		if err := validator.Validate(); err != nil {
			return nil, fmt.Errorf("sqlstore: invalid webhook subscription repository wiring: %w", err)
		}
	}
	return &WebhookStateStore{db: db, repo: repo}, nil
}

// Load returns the live subscription record for the node, if any.
func (s *WebhookStateStore) Load(ctx context.Context, node core.NodeRef) (core.WebhookSubscription, bool, error) {
	if s == nil || s.repo == nil {
		return core.WebhookSubscription{}, false, fmt.Errorf("sqlstore: webhook state store is not configured")
	}
	record, err := s.findLive(ctx, node.Key())
	if err != nil {
		return core.WebhookSubscription{}, false, err
	}
	if record == nil {
		return core.WebhookSubscription{}, false, nil
	}
	return record.toDomain(), true, nil
}

// Save upserts the node's record; at most one live row exists per node key.
func (s *WebhookStateStore) Save(ctx context.Context, node core.NodeRef, sub core.WebhookSubscription) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("sqlstore: webhook state store is not configured")
	}
	if err := node.Validate(); err != nil {
		return err
	}
	nodeKey := node.Key()
	now := time.Now().UTC()

	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		existing := &webhookSubscriptionRecord{}
		err := tx.NewSelect().
			Model(existing).
			Where("?TableAlias.node_key = ?", nodeKey).
			Where("?TableAlias.deleted_at IS NULL").
			Order("updated_at DESC").
			Limit(1).
			Scan(ctx)
		if err != nil {
			if !isNoRows(err) {
				return err
			}
			record := &webhookSubscriptionRecord{
				ID:        uuid.NewString(),
				NodeKey:   nodeKey,
				WebhookID: strings.TrimSpace(sub.WebhookID),
				Event:     strings.TrimSpace(sub.Event),
				TargetURL: strings.TrimSpace(sub.TargetURL),
				CreatedAt: now,
				UpdatedAt: now,
			}
			_, insertErr := tx.NewInsert().Model(record).Exec(ctx)
			return insertErr
		}

		existing.WebhookID = strings.TrimSpace(sub.WebhookID)
		existing.Event = strings.TrimSpace(sub.Event)
		existing.TargetURL = strings.TrimSpace(sub.TargetURL)
		existing.UpdatedAt = now
		existing.DeletedAt = nil
		_, updateErr := tx.NewUpdate().
			Model(existing).
			Where("id = ?", existing.ID).
			Exec(ctx)
		return updateErr
	})
}

// Clear soft-deletes the node's record. Clearing an absent record is a no-op.
func (s *WebhookStateStore) Clear(ctx context.Context, node core.NodeRef) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("sqlstore: webhook state store is not configured")
	}
	now := time.Now().UTC()
	_, err := s.db.NewUpdate().
		Model((*webhookSubscriptionRecord)(nil)).
		Set("deleted_at = ?", now).
		Set("updated_at = ?", now).
		Where("?TableAlias.node_key = ?", node.Key()).
		Where("?TableAlias.deleted_at IS NULL").
		Exec(ctx)
	return err
}

func (s *WebhookStateStore) findLive(ctx context.Context, nodeKey string) (*webhookSubscriptionRecord, error) {
	records, _, err := s.repo.List(ctx,
		repository.SelectBy("node_key", "=", strings.TrimSpace(nodeKey)),
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.deleted_at IS NULL")
		}),
		repository.OrderBy("updated_at DESC"),
		repository.SelectPaginate(1, 0),
	)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	return records[0], nil
}

func (r *webhookSubscriptionRecord) toDomain() core.WebhookSubscription {
	if r == nil {
		return core.WebhookSubscription{}
	}
	return core.WebhookSubscription{
		WebhookID: r.WebhookID,
		Event:     r.Event,
		TargetURL: r.TargetURL,
	}
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

var _ core.NodeStateStore = (*WebhookStateStore)(nil)
