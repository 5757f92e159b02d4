package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/ignite/listpilot/internal/domain"
	"github.com/ignite/listpilot/internal/service/list"
)

// ListRepo implements list.Repository against PostgreSQL. Deletes are
// logical: the row keeps its identity so orphaned subscriptions stay
// interpretable.
type ListRepo struct{ db *sql.DB }

// NewListRepo creates a Postgres-backed list repository.
func NewListRepo(db *sql.DB) *ListRepo { return &ListRepo{db: db} }

func (r *ListRepo) Create(ctx context.Context, l *domain.List) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO lists (id, name, visibility, optin_mode, tags, owner, deleted, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, FALSE, NOW(), NOW())
	`, l.ID, l.Name, l.Visibility, l.OptinMode, pq.Array(l.Tags), l.Owner)
	if err != nil {
		return fmt.Errorf("create list: %w", err)
	}
	return nil
}

func (r *ListRepo) Get(ctx context.Context, id string) (*domain.List, error) {
	l := &domain.List{}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, visibility, optin_mode, tags, COALESCE(owner,''), deleted, created_at, updated_at
		FROM lists
		WHERE id = $1 AND NOT deleted
	`, id).Scan(&l.ID, &l.Name, &l.Visibility, &l.OptinMode,
		pq.Array(&l.Tags), &l.Owner, &l.Deleted, &l.CreatedAt, &l.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, list.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get list: %w", err)
	}
	return l, nil
}

func (r *ListRepo) List(ctx context.Context, f list.ListFilter) ([]domain.List, int, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}

	where := ` WHERE NOT deleted`
	args := []any{}
	idx := 1
	if f.Visibility != "" {
		where += fmt.Sprintf(" AND visibility = $%d", idx)
		args = append(args, f.Visibility)
		idx++
	}
	if f.Tag != "" {
		where += fmt.Sprintf(" AND $%d = ANY(tags)", idx)
		args = append(args, f.Tag)
		idx++
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM lists`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count lists: %w", err)
	}

	q := `
		SELECT id, name, visibility, optin_mode, tags, COALESCE(owner,''), deleted, created_at, updated_at
		FROM lists` + where +
		fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", idx, idx+1)
	args = append(args, limit, f.Offset)

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list lists: %w", err)
	}
	defer rows.Close()

	var out []domain.List
	for rows.Next() {
		var l domain.List
		if err := rows.Scan(&l.ID, &l.Name, &l.Visibility, &l.OptinMode,
			pq.Array(&l.Tags), &l.Owner, &l.Deleted, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan list: %w", err)
		}
		out = append(out, l)
	}
	return out, total, rows.Err()
}

func (r *ListRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE lists SET deleted = TRUE, updated_at = NOW()
		WHERE id = $1 AND NOT deleted
	`, id)
	if err != nil {
		return fmt.Errorf("delete list: %w", err)
	}
	return requireRow(res, list.ErrNotFound)
}
