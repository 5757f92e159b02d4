package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/lib/pq"

	"github.com/ignite/listpilot/internal/domain"
	"github.com/ignite/listpilot/internal/service/subscriber"
)

// SubscriberRepo implements subscriber.Repository against PostgreSQL.
// Email uniqueness is enforced by a unique index on LOWER(email).
type SubscriberRepo struct{ db *sql.DB }

// NewSubscriberRepo creates a Postgres-backed subscriber repository.
func NewSubscriberRepo(db *sql.DB) *SubscriberRepo { return &SubscriberRepo{db: db} }

const subscriberCols = `id, email, COALESCE(name,''), COALESCE(attribs,'{}'::jsonb), status, COALESCE(blocklist_reason,''), created_at, updated_at`

func (r *SubscriberRepo) Create(ctx context.Context, s *domain.Subscriber) error {
	attribs, err := json.Marshal(s.Attribs)
	if err != nil {
		return fmt.Errorf("marshal attribs: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO subscribers (id, email, name, attribs, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
	`, s.ID, s.Email, s.Name, attribs, s.Status)
	if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
		return subscriber.ErrEmailTaken
	}
	if err != nil {
		return fmt.Errorf("create subscriber: %w", err)
	}
	return nil
}

func (r *SubscriberRepo) Get(ctx context.Context, id string) (*domain.Subscriber, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+subscriberCols+` FROM subscribers WHERE id = $1`, id)
	return scanSubscriber(row)
}

func (r *SubscriberRepo) GetByEmail(ctx context.Context, email string) (*domain.Subscriber, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+subscriberCols+` FROM subscribers WHERE LOWER(email) = LOWER($1)`, email)
	return scanSubscriber(row)
}

func (r *SubscriberRepo) SetStatus(ctx context.Context, id string, status domain.SubscriberStatus, reason string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE subscribers
		SET status = $2, blocklist_reason = NULLIF($3,''), updated_at = NOW()
		WHERE id = $1
	`, id, status, reason)
	if err != nil {
		return fmt.Errorf("set subscriber status: %w", err)
	}
	return requireRow(res, subscriber.ErrNotFound)
}

func (r *SubscriberRepo) Update(ctx context.Context, id string, name string, attribs map[string]any) error {
	blob, err := json.Marshal(attribs)
	if err != nil {
		return fmt.Errorf("marshal attribs: %w", err)
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE subscribers
		SET name = $2, attribs = $3, updated_at = NOW()
		WHERE id = $1
	`, id, name, blob)
	if err != nil {
		return fmt.Errorf("update subscriber: %w", err)
	}
	return requireRow(res, subscriber.ErrNotFound)
}

func (r *SubscriberRepo) List(ctx context.Context, f subscriber.ListFilter) ([]domain.Subscriber, int, error) {
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
		where += fmt.Sprintf(" AND (email ILIKE $%d OR name ILIKE $%d)", idx, idx)
		args = append(args, "%"+f.Search+"%")
		idx++
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM subscribers`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count subscribers: %w", err)
	}

	q := `SELECT ` + subscriberCols + ` FROM subscribers` + where +
		fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", idx, idx+1)
	args = append(args, limit, f.Offset)

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list subscribers: %w", err)
	}
	defer rows.Close()

	var out []domain.Subscriber
	for rows.Next() {
		s, err := scanSubscriber(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *s)
	}
	return out, total, rows.Err()
}

func (r *SubscriberRepo) ByIDs(ctx context.Context, ids []string) ([]domain.Subscriber, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+subscriberCols+` FROM subscribers WHERE id = ANY($1)`,
		pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("subscribers by ids: %w", err)
	}
	defer rows.Close()

	var out []domain.Subscriber
	for rows.Next() {
		s, err := scanSubscriber(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSubscriber(row rowScanner) (*domain.Subscriber, error) {
	s := &domain.Subscriber{}
	var attribs []byte
	err := row.Scan(&s.ID, &s.Email, &s.Name, &attribs, &s.Status,
		&s.BlocklistReason, &s.CreatedAt, &s.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, subscriber.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan subscriber: %w", err)
	}
	if len(attribs) > 0 {
		if err := json.Unmarshal(attribs, &s.Attribs); err != nil {
			return nil, fmt.Errorf("unmarshal attribs: %w", err)
		}
	}
	return s, nil
}

func requireRow(res sql.Result, missing error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return missing
	}
	return nil
}
