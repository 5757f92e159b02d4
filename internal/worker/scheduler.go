package worker

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ignite/listpilot/internal/domain"
	"github.com/ignite/listpilot/internal/pkg/distlock"
	"github.com/ignite/listpilot/internal/pkg/logger"
	"github.com/ignite/listpilot/internal/targeting"
)

const (
	// DefaultSchedulerPollInterval is how often to check for due campaigns.
	DefaultSchedulerPollInterval = 30 * time.Second

	// schedulerLockTTL bounds how long a dead scheduler instance can
	// hold the cluster-wide poll lock.
	schedulerLockTTL = 2 * time.Minute

	// dueBatchLimit caps how many campaigns one poll starts.
	dueBatchLimit = 50
)

// CampaignStarter is the slice of campaign.Service the scheduler needs.
type CampaignStarter interface {
	DueScheduled(ctx context.Context, limit int) ([]domain.Campaign, error)
	Start(ctx context.Context, id string) error
}

// CampaignScheduler polls for scheduled campaigns whose send time has
// arrived and starts them. Multiple instances may run; a distributed
// lock makes each poll cycle exclusive.
type CampaignScheduler struct {
	campaigns    CampaignStarter
	redisClient  *redis.Client // optional; nil falls back to PG advisory locks
	db           *sql.DB
	workerID     string
	pollInterval time.Duration

	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running bool
	mu      sync.Mutex
}

// NewCampaignScheduler creates a scheduler. Pass a nil redis client to
// use PostgreSQL advisory locks instead.
func NewCampaignScheduler(campaigns CampaignStarter, redisClient *redis.Client, db *sql.DB, pollInterval time.Duration) *CampaignScheduler {
	if pollInterval <= 0 {
		pollInterval = DefaultSchedulerPollInterval
	}
	hostname, _ := os.Hostname()
	return &CampaignScheduler{
		campaigns:    campaigns,
		redisClient:  redisClient,
		db:           db,
		workerID:     fmt.Sprintf("scheduler-%s-%d", hostname, time.Now().UnixNano()%10000),
		pollInterval: pollInterval,
	}
}

// Start begins the polling loop.
func (cs *CampaignScheduler) Start() error {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	if cs.running {
		return fmt.Errorf("scheduler already running")
	}
	cs.running = true
	cs.ctx, cs.cancel = context.WithCancel(context.Background())

	logger.Info("campaign scheduler starting",
		"worker_id", cs.workerID, "poll_interval", cs.pollInterval.String())

	cs.wg.Add(1)
	go cs.loop()
	return nil
}

// Stop halts the loop and waits for the in-flight cycle to finish.
func (cs *CampaignScheduler) Stop() {
	cs.mu.Lock()
	if !cs.running {
		cs.mu.Unlock()
		return
	}
	cs.running = false
	cs.cancel()
	cs.mu.Unlock()
	cs.wg.Wait()
	logger.Info("campaign scheduler stopped", "worker_id", cs.workerID)
}

func (cs *CampaignScheduler) loop() {
	defer cs.wg.Done()
	ticker := time.NewTicker(cs.pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-cs.ctx.Done():
			return
		case <-ticker.C:
			if err := cs.pollOnce(cs.ctx); err != nil {
				logger.Error("scheduler poll", "worker_id", cs.workerID, "error", err.Error())
			}
		}
	}
}

// pollOnce starts every due campaign, holding the cluster lock for the
// duration of the cycle.
func (cs *CampaignScheduler) pollOnce(ctx context.Context) error {
	lock := distlock.NewLock(cs.redisClient, cs.db, "scheduler:poll", schedulerLockTTL)
	ok, err := lock.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire scheduler lock: %w", err)
	}
	if !ok {
		// Another instance owns this cycle.
		return nil
	}
	defer func() {
		if err := lock.Release(ctx); err != nil {
			logger.Warn("release scheduler lock", "error", err.Error())
		}
	}()

	due, err := cs.campaigns.DueScheduled(ctx, dueBatchLimit)
	if err != nil {
		return fmt.Errorf("list due campaigns: %w", err)
	}
	for i := range due {
		c := &due[i]
		err := cs.campaigns.Start(ctx, c.ID)
		switch {
		case err == nil:
			logger.Info("due campaign started", "campaign_id", c.ID, "name", c.Name)
		case errors.Is(err, targeting.ErrEmptyAudience), errors.Is(err, targeting.ErrNoTargetLists):
			// Stays scheduled with the failure annotated; retried next
			// poll in case the audience fills in.
			logger.Warn("due campaign has no audience", "campaign_id", c.ID)
		default:
			logger.Error("start due campaign", "campaign_id", c.ID, "error", err.Error())
		}
	}
	return nil
}
