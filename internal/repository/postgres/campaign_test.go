package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/ignite/listpilot/internal/domain"
	"github.com/ignite/listpilot/internal/service/campaign"
)

func TestTransitionCompareAndSet(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewCampaignRepo(db)

	// Winner: row was in the expected status.
	mock.ExpectExec(`UPDATE campaigns SET status`).
		WithArgs("c1", "running", "paused").
		WillReturnResult(sqlmock.NewResult(0, 1))
	if err := repo.Transition(context.Background(), "c1", domain.CampaignRunning, domain.CampaignPaused); err != nil {
		t.Fatalf("transition: %v", err)
	}

	// Loser: zero rows, campaign exists in some other status.
	mock.ExpectExec(`UPDATE campaigns SET status`).
		WithArgs("c1", "running", "paused").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("c1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	if err := repo.Transition(context.Background(), "c1", domain.CampaignRunning, domain.CampaignPaused); err != campaign.ErrInvalidTransition {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}

	// Missing row entirely.
	mock.ExpectExec(`UPDATE campaigns SET status`).
		WithArgs("missing", "running", "paused").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	if err := repo.Transition(context.Background(), "missing", domain.CampaignRunning, domain.CampaignPaused); err != campaign.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestMarkRunningFreezesToSend(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewCampaignRepo(db)

	startedAt := time.Now().UTC()
	mock.ExpectExec(`SET status = 'running', started_at = \$2, to_send = \$3`).
		WithArgs("c1", startedAt, 1250).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.MarkRunning(context.Background(), "c1", startedAt, 1250); err != nil {
		t.Fatalf("mark running: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestIncrementStats(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewCampaignRepo(db)

	mock.ExpectExec(`UPDATE campaigns SET`).
		WithArgs("c1", 1, 0, 0, 0, 0, 0, 0, 0).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.IncrementStats(context.Background(), "c1", domain.CampaignStats{Sent: 1}); err != nil {
		t.Fatalf("increment stats: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestSaveAudienceEmptyIsNoOp(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewCampaignRepo(db)

	// No expectations registered: any statement would fail the test.
	if err := repo.SaveAudience(context.Background(), "c1", nil); err != nil {
		t.Fatalf("save empty audience: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
