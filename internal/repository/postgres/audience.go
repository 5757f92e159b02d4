package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// AudienceQueue implements dispatch.Queue against the campaign_audience
// table. ClaimBatch uses FOR UPDATE SKIP LOCKED so concurrent dispatcher
// instances never claim the same row.
type AudienceQueue struct{ db *sql.DB }

// NewAudienceQueue creates a Postgres-backed delivery queue.
func NewAudienceQueue(db *sql.DB) *AudienceQueue { return &AudienceQueue{db: db} }

func (q *AudienceQueue) RunningCampaignIDs(ctx context.Context) ([]string, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT DISTINCT a.campaign_id
		FROM campaign_audience a
		JOIN campaigns c ON c.id = a.campaign_id
		WHERE c.status = 'running' AND a.state = 'pending'
	`)
	if err != nil {
		return nil, fmt.Errorf("running campaigns with work: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan campaign id: %w", err)
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func (q *AudienceQueue) ClaimBatch(ctx context.Context, campaignID string, limit int) ([]string, error) {
	rows, err := q.db.QueryContext(ctx, `
		UPDATE campaign_audience
		SET state = 'inflight', updated_at = NOW()
		WHERE (campaign_id, subscriber_id) IN (
		    SELECT campaign_id, subscriber_id
		    FROM campaign_audience
		    WHERE campaign_id = $1 AND state = 'pending'
		    ORDER BY subscriber_id
		    LIMIT $2
		    FOR UPDATE SKIP LOCKED
		)
		RETURNING subscriber_id
	`, campaignID, limit)
	if err != nil {
		return nil, fmt.Errorf("claim audience batch: %w", err)
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

// ReclaimStale flips in-flight rows older than the cutoff back to
// pending so deliveries abandoned by a crashed dispatcher are retried.
func (q *AudienceQueue) ReclaimStale(ctx context.Context, olderThan time.Duration) (int64, error) {
	res, err := q.db.ExecContext(ctx, `
		UPDATE campaign_audience
		SET state = 'pending', updated_at = NOW()
		WHERE state = 'inflight' AND updated_at < NOW() - $1::interval
	`, fmt.Sprintf("%d seconds", int(olderThan.Seconds())))
	if err != nil {
		return 0, fmt.Errorf("reclaim stale audience rows: %w", err)
	}
	return res.RowsAffected()
}

func (q *AudienceQueue) MarkSent(ctx context.Context, campaignID, subscriberID string) error {
	_, err := q.db.ExecContext(ctx, `
		UPDATE campaign_audience
		SET state = 'sent', updated_at = NOW()
		WHERE campaign_id = $1 AND subscriber_id = $2
	`, campaignID, subscriberID)
	if err != nil {
		return fmt.Errorf("mark audience row sent: %w", err)
	}
	return nil
}

func (q *AudienceQueue) MarkFailed(ctx context.Context, campaignID, subscriberID, reason string) error {
	_, err := q.db.ExecContext(ctx, `
		UPDATE campaign_audience
		SET state = 'failed', reason = $3, updated_at = NOW()
		WHERE campaign_id = $1 AND subscriber_id = $2
	`, campaignID, subscriberID, reason)
	if err != nil {
		return fmt.Errorf("mark audience row failed: %w", err)
	}
	return nil
}
