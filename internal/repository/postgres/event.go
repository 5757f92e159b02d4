package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ignite/listpilot/internal/domain"
)

// EventRepo implements stats.EventStore against PostgreSQL.
type EventRepo struct{ db *sql.DB }

// NewEventRepo creates a Postgres-backed delivery event store.
func NewEventRepo(db *sql.DB) *EventRepo { return &EventRepo{db: db} }

func (r *EventRepo) Record(ctx context.Context, ev *domain.DeliveryEvent) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO delivery_events (id, event_type, campaign_id, subscriber_id,
		       bounce_type, url, error, occurred_at, created_at)
		VALUES ($1, $2, $3, $4, NULLIF($5,''), NULLIF($6,''), NULLIF($7,''), $8, NOW())
		ON CONFLICT (id) DO NOTHING
	`, ev.ID, ev.Type, ev.CampaignID, ev.SubscriberID,
		string(ev.BounceType), ev.URL, ev.Error, ev.Timestamp)
	if err != nil {
		return fmt.Errorf("record delivery event: %w", err)
	}
	return nil
}

// CountHardBounces counts distinct campaigns that hard-bounced for the
// subscriber. Multiple hard bounces within one campaign count once.
func (r *EventRepo) CountHardBounces(ctx context.Context, subscriberID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(DISTINCT campaign_id)
		FROM delivery_events
		WHERE subscriber_id = $1 AND event_type = 'bounce' AND bounce_type = 'hard'
	`, subscriberID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count hard bounces: %w", err)
	}
	return n, nil
}
