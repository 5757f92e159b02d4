package worker

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/ignite/listpilot/internal/domain"
	"github.com/ignite/listpilot/internal/targeting"
)

type fakeStarter struct {
	mu      sync.Mutex
	due     []domain.Campaign
	started []string
	err     error
}

func (f *fakeStarter) DueScheduled(_ context.Context, limit int) ([]domain.Campaign, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.due) > limit {
		return f.due[:limit], nil
	}
	return f.due, nil
}

func (f *fakeStarter) Start(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.started = append(f.started, id)
	return nil
}

func setupSchedulerTest(t *testing.T, starter *fakeStarter) *CampaignScheduler {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { redisClient.Close() })

	return NewCampaignScheduler(starter, redisClient, nil, time.Second)
}

func TestSchedulerStartsDueCampaigns(t *testing.T) {
	starter := &fakeStarter{due: []domain.Campaign{
		{ID: "c1", Status: domain.CampaignScheduled},
		{ID: "c2", Status: domain.CampaignScheduled},
	}}
	cs := setupSchedulerTest(t, starter)

	if err := cs.pollOnce(context.Background()); err != nil {
		t.Fatalf("poll: %v", err)
	}
	if len(starter.started) != 2 {
		t.Fatalf("started %d campaigns, want 2", len(starter.started))
	}
}

func TestSchedulerToleratesEmptyAudience(t *testing.T) {
	starter := &fakeStarter{
		due: []domain.Campaign{{ID: "c1"}},
		err: targeting.ErrEmptyAudience,
	}
	cs := setupSchedulerTest(t, starter)

	// An empty audience is not a poll failure.
	if err := cs.pollOnce(context.Background()); err != nil {
		t.Fatalf("poll: %v", err)
	}
}

func TestSchedulerStartStop(t *testing.T) {
	cs := setupSchedulerTest(t, &fakeStarter{})

	if err := cs.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := cs.Start(); err == nil {
		t.Error("second Start() should fail while running")
	}
	cs.Stop()

	// Restart after stop must work.
	if err := cs.Start(); err != nil {
		t.Fatalf("restart: %v", err)
	}
	cs.Stop()
}
