package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/ignite/listpilot/internal/domain"
	"github.com/ignite/listpilot/internal/service/campaign"
)

// CampaignRepo implements campaign.Repository against PostgreSQL. Status
// transitions are compare-and-set UPDATEs so concurrent transitions of
// the same campaign cannot both win.
type CampaignRepo struct{ db *sql.DB }

// NewCampaignRepo creates a Postgres-backed campaign repository.
func NewCampaignRepo(db *sql.DB) *CampaignRepo { return &CampaignRepo{db: db} }

const campaignCols = `id, name, subject, COALESCE(from_email,''), COALESCE(body,''),
	       content_type, template_id, send_at, status, campaign_type,
	       target_list_ids, segment, COALESCE(last_error,''),
	       started_at, finished_at, created_at, updated_at,
	       to_send, sent, failed, views, unique_views, clicks, unique_clicks, bounces, unsubscribes`

func (r *CampaignRepo) Create(ctx context.Context, c *domain.Campaign) error {
	segment, err := marshalSegment(c.Segment)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO campaigns (id, name, subject, from_email, body, content_type,
		       template_id, status, campaign_type, target_list_ids, segment,
		       created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW(), NOW())
	`, c.ID, c.Name, c.Subject, c.FromEmail, c.Body, c.ContentType,
		c.TemplateID, c.Status, c.Type, pq.Array(c.ListIDs), segment)
	if err != nil {
		return fmt.Errorf("create campaign: %w", err)
	}
	return nil
}

func (r *CampaignRepo) Get(ctx context.Context, id string) (*domain.Campaign, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+campaignCols+` FROM campaigns WHERE id = $1`, id)
	return scanCampaign(row)
}

func (r *CampaignRepo) List(ctx context.Context, f campaign.ListFilter) ([]domain.Campaign, int, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}

	where := ` WHERE 1=1`
	args := []any{}
	idx := 1
	if f.Status != "" {
		where += fmt.Sprintf(" AND status = $%d", idx)
		args = append(args, f.Status)
		idx++
	}
	if f.Search != "" {
		where += fmt.Sprintf(" AND (name ILIKE $%d OR subject ILIKE $%d)", idx, idx)
		args = append(args, "%"+f.Search+"%")
		idx++
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM campaigns`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count campaigns: %w", err)
	}

	q := `SELECT ` + campaignCols + ` FROM campaigns` + where +
		fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", idx, idx+1)
	args = append(args, limit, f.Offset)

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list campaigns: %w", err)
	}
	defer rows.Close()

	var out []domain.Campaign
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *c)
	}
	return out, total, rows.Err()
}

func (r *CampaignRepo) Update(ctx context.Context, id string, u campaign.UpdateFields) error {
	sets := []string{"updated_at = NOW()"}
	args := []any{id}
	idx := 2
	add := func(col string, val any) {
		sets = append(sets, fmt.Sprintf("%s = $%d", col, idx))
		args = append(args, val)
		idx++
	}

	if u.Name != nil {
		add("name", *u.Name)
	}
	if u.Subject != nil {
		add("subject", *u.Subject)
	}
	if u.FromEmail != nil {
		add("from_email", *u.FromEmail)
	}
	if u.Body != nil {
		add("body", *u.Body)
	}
	if u.ContentType != nil {
		add("content_type", *u.ContentType)
	}
	if u.TemplateID != nil {
		add("template_id", *u.TemplateID)
	}
	if u.ListIDs != nil {
		add("target_list_ids", pq.Array(u.ListIDs))
	}
	if u.Segment != nil {
		segment, err := marshalSegment(u.Segment)
		if err != nil {
			return err
		}
		add("segment", segment)
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE campaigns SET `+strings.Join(sets, ", ")+` WHERE id = $1`, args...)
	if err != nil {
		return fmt.Errorf("update campaign: %w", err)
	}
	return requireRow(res, campaign.ErrNotFound)
}

func (r *CampaignRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM campaigns WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete campaign: %w", err)
	}
	return requireRow(res, campaign.ErrNotFound)
}

func (r *CampaignRepo) Transition(ctx context.Context, id string, from, to domain.CampaignStatus) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE campaigns SET status = $3, updated_at = NOW()
		WHERE id = $1 AND status = $2
	`, id, from, to)
	if err != nil {
		return fmt.Errorf("transition campaign: %w", err)
	}
	return r.casOutcome(ctx, res, id)
}

func (r *CampaignRepo) SetSchedule(ctx context.Context, id string, sendAt time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE campaigns SET send_at = $2, updated_at = NOW() WHERE id = $1
	`, id, sendAt)
	if err != nil {
		return fmt.Errorf("set campaign schedule: %w", err)
	}
	return requireRow(res, campaign.ErrNotFound)
}

func (r *CampaignRepo) MarkRunning(ctx context.Context, id string, startedAt time.Time, toSend int) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE campaigns
		SET status = 'running', started_at = $2, to_send = $3, last_error = NULL, updated_at = NOW()
		WHERE id = $1 AND status = 'scheduled'
	`, id, startedAt, toSend)
	if err != nil {
		return fmt.Errorf("mark campaign running: %w", err)
	}
	return r.casOutcome(ctx, res, id)
}

func (r *CampaignRepo) MarkFinished(ctx context.Context, id string, finishedAt time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE campaigns
		SET status = 'finished', finished_at = $2, updated_at = NOW()
		WHERE id = $1 AND status = 'running'
	`, id, finishedAt)
	if err != nil {
		return fmt.Errorf("mark campaign finished: %w", err)
	}
	return r.casOutcome(ctx, res, id)
}

func (r *CampaignRepo) AnnotateError(ctx context.Context, id string, msg string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE campaigns SET last_error = $2, updated_at = NOW() WHERE id = $1
	`, id, msg)
	if err != nil {
		return fmt.Errorf("annotate campaign: %w", err)
	}
	return requireRow(res, campaign.ErrNotFound)
}

func (r *CampaignRepo) SaveAudience(ctx context.Context, campaignID string, subscriberIDs []string) error {
	if len(subscriberIDs) == 0 {
		return nil
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO campaign_audience (campaign_id, subscriber_id, state, updated_at)
		SELECT $1, unnest($2::text[]), 'pending', NOW()
		ON CONFLICT (campaign_id, subscriber_id) DO NOTHING
	`, campaignID, pq.Array(subscriberIDs))
	if err != nil {
		return fmt.Errorf("save audience: %w", err)
	}
	return nil
}

func (r *CampaignRepo) DueScheduled(ctx context.Context, now time.Time, limit int) ([]domain.Campaign, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+campaignCols+`
		FROM campaigns
		WHERE status = 'scheduled' AND send_at IS NOT NULL AND send_at <= $1
		ORDER BY send_at
		LIMIT $2
	`, now, limit)
	if err != nil {
		return nil, fmt.Errorf("due campaigns: %w", err)
	}
	defer rows.Close()

	var out []domain.Campaign
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

// IncrementStats adds the non-zero fields of delta to the campaign's
// counters in one statement.
func (r *CampaignRepo) IncrementStats(ctx context.Context, id string, d domain.CampaignStats) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE campaigns SET
		       sent = sent + $2,
		       failed = failed + $3,
		       views = views + $4,
		       unique_views = unique_views + $5,
		       clicks = clicks + $6,
		       unique_clicks = unique_clicks + $7,
		       bounces = bounces + $8,
		       unsubscribes = unsubscribes + $9,
		       updated_at = NOW()
		WHERE id = $1
	`, id, d.Sent, d.Failed, d.Views, d.UniqueViews, d.Clicks, d.UniqueClicks,
		d.Bounces, d.Unsubscribes)
	if err != nil {
		return fmt.Errorf("increment campaign stats: %w", err)
	}
	return requireRow(res, campaign.ErrNotFound)
}

// casOutcome distinguishes a missing row from a lost compare-and-set.
func (r *CampaignRepo) casOutcome(ctx context.Context, res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	var exists bool
	if err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM campaigns WHERE id = $1)`, id).Scan(&exists); err != nil {
		return fmt.Errorf("check campaign exists: %w", err)
	}
	if !exists {
		return campaign.ErrNotFound
	}
	return campaign.ErrInvalidTransition
}

func marshalSegment(s *domain.Segment) ([]byte, error) {
	if s == nil {
		return nil, nil
	}
	blob, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("marshal segment: %w", err)
	}
	return blob, nil
}

func scanCampaign(row rowScanner) (*domain.Campaign, error) {
	c := &domain.Campaign{}
	var segment []byte
	err := row.Scan(&c.ID, &c.Name, &c.Subject, &c.FromEmail, &c.Body,
		&c.ContentType, &c.TemplateID, &c.SendAt, &c.Status, &c.Type,
		pq.Array(&c.ListIDs), &segment, &c.LastError,
		&c.StartedAt, &c.FinishedAt, &c.CreatedAt, &c.UpdatedAt,
		&c.Stats.ToSend, &c.Stats.Sent, &c.Stats.Failed,
		&c.Stats.Views, &c.Stats.UniqueViews,
		&c.Stats.Clicks, &c.Stats.UniqueClicks,
		&c.Stats.Bounces, &c.Stats.Unsubscribes)
	if err == sql.ErrNoRows {
		return nil, campaign.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan campaign: %w", err)
	}
	if len(segment) > 0 {
		c.Segment = &domain.Segment{}
		if err := json.Unmarshal(segment, c.Segment); err != nil {
			return nil, fmt.Errorf("unmarshal segment: %w", err)
		}
	}
	return c, nil
}
