package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/lib/pq"

	"github.com/ignite/listpilot/internal/domain"
	"github.com/ignite/listpilot/internal/service/subscription"
)

// SubscriptionRepo implements subscription.Repository against PostgreSQL.
// The (subscriber_id, list_id) primary key plus a single upsert statement
// gives serialized last-writer-wins semantics per pair: the row-level
// lock on the conflict target prevents interleaved partial updates.
type SubscriptionRepo struct{ db *sql.DB }

// NewSubscriptionRepo creates a Postgres-backed subscription repository.
func NewSubscriptionRepo(db *sql.DB) *SubscriptionRepo { return &SubscriptionRepo{db: db} }

func (r *SubscriptionRepo) Upsert(ctx context.Context, sub *domain.Subscription) (*domain.Subscription, error) {
	meta, err := json.Marshal(sub.Meta)
	if err != nil {
		return nil, fmt.Errorf("marshal meta: %w", err)
	}

	// subscribed_at is stamped on the transition into confirmed,
	// unsubscribed_at on the transition into unsubscribed; both survive
	// later status changes.
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO subscriptions (subscriber_id, list_id, status, meta,
		       subscribed_at, unsubscribed_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4,
		       CASE WHEN $3 = 'confirmed' THEN NOW() END,
		       CASE WHEN $3 = 'unsubscribed' THEN NOW() END,
		       NOW(), NOW())
		ON CONFLICT (subscriber_id, list_id) DO UPDATE SET
		       status = EXCLUDED.status,
		       meta = EXCLUDED.meta,
		       subscribed_at = CASE
		           WHEN EXCLUDED.status = 'confirmed' AND subscriptions.status <> 'confirmed'
		           THEN NOW() ELSE subscriptions.subscribed_at END,
		       unsubscribed_at = CASE
		           WHEN EXCLUDED.status = 'unsubscribed' AND subscriptions.status <> 'unsubscribed'
		           THEN NOW() ELSE subscriptions.unsubscribed_at END,
		       updated_at = NOW()
		RETURNING subscriber_id, list_id, status, meta, subscribed_at, unsubscribed_at, created_at, updated_at
	`, sub.SubscriberID, sub.ListID, sub.Status, meta)
	return scanSubscription(row)
}

func (r *SubscriptionRepo) Get(ctx context.Context, subscriberID, listID string) (*domain.Subscription, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT subscriber_id, list_id, status, meta, subscribed_at, unsubscribed_at, created_at, updated_at
		FROM subscriptions
		WHERE subscriber_id = $1 AND list_id = $2
	`, subscriberID, listID)
	return scanSubscription(row)
}

func (r *SubscriptionRepo) ForSubscriber(ctx context.Context, subscriberID string) ([]domain.Subscription, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT subscriber_id, list_id, status, meta, subscribed_at, unsubscribed_at, created_at, updated_at
		FROM subscriptions
		WHERE subscriber_id = $1
		ORDER BY created_at
	`, subscriberID)
	if err != nil {
		return nil, fmt.Errorf("subscriptions for subscriber: %w", err)
	}
	defer rows.Close()

	var out []domain.Subscription
	for rows.Next() {
		s, err := scanSubscription(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

// EligibleSubscriberIDs joins the ledger against subscriber global status:
// a disabled or blocklisted subscriber is never eligible regardless of
// the pair's subscription status.
func (r *SubscriptionRepo) EligibleSubscriberIDs(ctx context.Context, listID string, mode domain.OptinMode) ([]string, error) {
	q := `
		SELECT s.subscriber_id
		FROM subscriptions s
		JOIN subscribers sub ON sub.id = s.subscriber_id
		WHERE s.list_id = $1
		  AND sub.status = 'enabled'
		  AND s.status = ANY($2)`

	statuses := []string{string(domain.SubConfirmed)}
	if mode == domain.OptinSingle {
		statuses = append(statuses, string(domain.SubUnconfirmed))
	}

	rows, err := r.db.QueryContext(ctx, q, listID, pq.Array(statuses))
	if err != nil {
		return nil, fmt.Errorf("eligible subscribers: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan subscriber id: %w", err)
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// UnconfirmedSubscriberIDs returns enabled subscribers still awaiting
// confirmation on the list. These are the recipients of opt-in campaigns.
func (r *SubscriptionRepo) UnconfirmedSubscriberIDs(ctx context.Context, listID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT s.subscriber_id
		FROM subscriptions s
		JOIN subscribers sub ON sub.id = s.subscriber_id
		WHERE s.list_id = $1
		  AND sub.status = 'enabled'
		  AND s.status = 'unconfirmed'
	`, listID)
	if err != nil {
		return nil, fmt.Errorf("unconfirmed subscribers: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan subscriber id: %w", err)
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func scanSubscription(row rowScanner) (*domain.Subscription, error) {
	s := &domain.Subscription{}
	var meta []byte
	err := row.Scan(&s.SubscriberID, &s.ListID, &s.Status, &meta,
		&s.SubscribedAt, &s.UnsubscribedAt, &s.CreatedAt, &s.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, subscription.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan subscription: %w", err)
	}
	if len(meta) > 0 {
		if err := json.Unmarshal(meta, &s.Meta); err != nil {
			return nil, fmt.Errorf("unmarshal meta: %w", err)
		}
	}
	return s, nil
}
