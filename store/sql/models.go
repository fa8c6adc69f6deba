package sqlstore

import (
	"time"

	"github.com/uptrace/bun"
)

type webhookSubscriptionRecord struct {
	bun.BaseModel `bun:"table:outplay_webhook_subscriptions,alias:ows"`

	ID        string     `bun:"id,pk"`
	NodeKey   string     `bun:"node_key,notnull"`
	WebhookID string     `bun:"webhook_id,notnull"`
	Event     string     `bun:"event,notnull"`
	TargetURL string     `bun:"target_url,notnull"`
	CreatedAt time.Time  `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt time.Time  `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
	DeletedAt *time.Time `bun:"deleted_at,soft_delete"`
}
