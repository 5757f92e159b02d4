package stats

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ignite/listpilot/internal/domain"
	"github.com/ignite/listpilot/internal/pkg/logger"
)

// Dedup state outlives any reasonable redelivery window but not the
// Redis instance.
const dedupTTL = 30 * 24 * time.Hour

// EventStore persists delivery events and answers bounce-history queries.
type EventStore interface {
	// Record inserts the event row. Inserting the same ID twice is the
	// caller's bug; the aggregator never does it.
	Record(ctx context.Context, ev *domain.DeliveryEvent) error

	// CountHardBounces returns how many distinct campaigns have produced
	// a hard bounce for the subscriber.
	CountHardBounces(ctx context.Context, subscriberID string) (int, error)
}

// CampaignStore exposes the campaign reads and counter writes the
// aggregator needs.
type CampaignStore interface {
	Get(ctx context.Context, id string) (*domain.Campaign, error)

	// IncrementStats adds the non-zero fields of delta to the campaign's
	// counter block in one atomic statement.
	IncrementStats(ctx context.Context, id string, delta domain.CampaignStats) error
}

// Finisher is asked to close out a campaign after each terminal delivery
// outcome. Satisfied by campaign.Service.
type Finisher interface {
	TryFinish(ctx context.Context, id string) error
}

// LedgerWriter updates subscription state during the bounce cascade.
// Satisfied by subscription.Service.
type LedgerWriter interface {
	Upsert(ctx context.Context, subscriberID, listID string, status domain.SubscriptionStatus, meta map[string]any) (*domain.Subscription, error)
}

// Blocklister flips a subscriber's global status. Satisfied by
// subscriber.Service.
type Blocklister interface {
	SetStatus(ctx context.Context, id string, status domain.SubscriberStatus, reason string) (*domain.Subscriber, error)
}

// Aggregator applies delivery events to campaign stats.
type Aggregator struct {
	rdb           *redis.Client
	events        EventStore
	campaigns     CampaignStore
	finisher      Finisher
	ledger        LedgerWriter
	subscribers   Blocklister
	hardThreshold int
}

// New creates an aggregator. hardThreshold is the number of hard-bounced
// campaigns after which a subscriber is blocklisted; zero disables the
// blocklist step.
func New(rdb *redis.Client, events EventStore, campaigns CampaignStore, finisher Finisher,
	ledger LedgerWriter, subscribers Blocklister, hardThreshold int) *Aggregator {
	return &Aggregator{
		rdb:           rdb,
		events:        events,
		campaigns:     campaigns,
		finisher:      finisher,
		ledger:        ledger,
		subscribers:   subscribers,
		hardThreshold: hardThreshold,
	}
}

// Record applies one delivery event. Replays of an already-applied event
// ID return nil without touching any counter. Counter updates for
// distinct events are independent; no ordering between event types is
// assumed.
func (a *Aggregator) Record(ctx context.Context, ev *domain.DeliveryEvent) error {
	if ev.ID == "" {
		return ErrMissingEventID
	}
	if !ev.Type.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownEventType, ev.Type)
	}
	if ev.CampaignID == "" || ev.SubscriberID == "" {
		return fmt.Errorf("delivery event %s missing campaign or subscriber id", ev.ID)
	}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now().UTC()
	}

	fresh, err := a.rdb.SetNX(ctx, "stats:event:"+ev.ID, 1, dedupTTL).Result()
	if err != nil {
		return fmt.Errorf("event dedup check: %w", err)
	}
	if !fresh {
		logger.Debug("duplicate delivery event ignored", "event_id", ev.ID, "type", string(ev.Type))
		return nil
	}

	// Any failure past the SetNX must release the dedup key, or a
	// producer retry of the same ID would be absorbed as a duplicate and
	// the increment lost for good. The event insert is ON CONFLICT DO
	// NOTHING, so re-applying under the same ID is safe.
	if err := a.events.Record(ctx, ev); err != nil {
		a.releaseDedup(ctx, ev.ID)
		return fmt.Errorf("record event: %w", err)
	}

	delta, err := a.counterDelta(ctx, ev)
	if err != nil {
		a.releaseDedup(ctx, ev.ID)
		return err
	}
	if err := a.campaigns.IncrementStats(ctx, ev.CampaignID, delta); err != nil {
		a.forgetUniqueSignal(ctx, ev, delta)
		a.releaseDedup(ctx, ev.ID)
		return fmt.Errorf("increment stats: %w", err)
	}

	switch ev.Type {
	case domain.EventDispatched, domain.EventFailed:
		if err := a.finisher.TryFinish(ctx, ev.CampaignID); err != nil {
			logger.Error("try finish after delivery outcome",
				"campaign_id", ev.CampaignID, "error", err.Error())
		}
	case domain.EventBounce:
		if ev.BounceType == domain.BounceHard {
			if err := a.cascadeHardBounce(ctx, ev); err != nil {
				logger.Error("hard bounce cascade",
					"campaign_id", ev.CampaignID, "subscriber_id", ev.SubscriberID,
					"error", err.Error())
			}
		}
	}
	return nil
}

// counterDelta maps one event to its stats increment. Views and clicks
// bump a raw counter always and a unique counter only the first time the
// (campaign, subscriber) pair reports that signal.
func (a *Aggregator) counterDelta(ctx context.Context, ev *domain.DeliveryEvent) (domain.CampaignStats, error) {
	var d domain.CampaignStats
	switch ev.Type {
	case domain.EventDispatched:
		d.Sent = 1
	case domain.EventFailed:
		d.Failed = 1
	case domain.EventBounce:
		d.Bounces = 1
	case domain.EventUnsubscribe:
		d.Unsubscribes = 1
	case domain.EventView:
		d.Views = 1
		first, err := a.firstSignal(ctx, "stats:uview:"+ev.CampaignID, ev.SubscriberID)
		if err != nil {
			return d, err
		}
		if first {
			d.UniqueViews = 1
		}
	case domain.EventClick:
		d.Clicks = 1
		first, err := a.firstSignal(ctx, "stats:uclick:"+ev.CampaignID, ev.SubscriberID)
		if err != nil {
			return d, err
		}
		if first {
			d.UniqueClicks = 1
		}
	}
	return d, nil
}

func (a *Aggregator) firstSignal(ctx context.Context, key, member string) (bool, error) {
	added, err := a.rdb.SAdd(ctx, key, member).Result()
	if err != nil {
		return false, fmt.Errorf("unique signal set: %w", err)
	}
	if err := a.rdb.Expire(ctx, key, dedupTTL).Err(); err != nil {
		logger.Warn("set unique signal ttl", "key", key, "error", err.Error())
	}
	return added == 1, nil
}

// releaseDedup drops the SetNX key so the producer can retry under the
// same event ID.
func (a *Aggregator) releaseDedup(ctx context.Context, eventID string) {
	if err := a.rdb.Del(ctx, "stats:event:"+eventID).Err(); err != nil {
		logger.Error("release event dedup key", "event_id", eventID, "error", err.Error())
	}
}

// forgetUniqueSignal undoes a consumed first-signal membership when the
// counter increment it fed never landed, so the retry counts the unique
// again.
func (a *Aggregator) forgetUniqueSignal(ctx context.Context, ev *domain.DeliveryEvent, d domain.CampaignStats) {
	var key string
	switch {
	case d.UniqueViews == 1:
		key = "stats:uview:" + ev.CampaignID
	case d.UniqueClicks == 1:
		key = "stats:uclick:" + ev.CampaignID
	default:
		return
	}
	if err := a.rdb.SRem(ctx, key, ev.SubscriberID).Err(); err != nil {
		logger.Error("release unique signal", "key", key,
			"subscriber_id", ev.SubscriberID, "error", err.Error())
	}
}

// cascadeHardBounce unsubscribes the pair on every list the campaign
// targets, then blocklists the subscriber once enough campaigns have
// hard-bounced for them.
func (a *Aggregator) cascadeHardBounce(ctx context.Context, ev *domain.DeliveryEvent) error {
	c, err := a.campaigns.Get(ctx, ev.CampaignID)
	if err != nil {
		return fmt.Errorf("load campaign: %w", err)
	}
	meta := map[string]any{"reason": "hard_bounce", "campaign_id": ev.CampaignID}
	for _, listID := range c.ListIDs {
		if _, err := a.ledger.Upsert(ctx, ev.SubscriberID, listID, domain.SubUnsubscribed, meta); err != nil {
			return fmt.Errorf("unsubscribe pair (%s,%s): %w", ev.SubscriberID, listID, err)
		}
	}
	logger.Warn("hard bounce unsubscribed pair",
		"subscriber_id", ev.SubscriberID, "campaign_id", ev.CampaignID,
		"lists", len(c.ListIDs))

	if a.hardThreshold <= 0 {
		return nil
	}
	n, err := a.events.CountHardBounces(ctx, ev.SubscriberID)
	if err != nil {
		return fmt.Errorf("count hard bounces: %w", err)
	}
	if n < a.hardThreshold {
		return nil
	}
	reason := fmt.Sprintf("hard bounced on %d campaigns", n)
	if _, err := a.subscribers.SetStatus(ctx, ev.SubscriberID, domain.SubscriberBlocklisted, reason); err != nil {
		return fmt.Errorf("blocklist subscriber: %w", err)
	}
	logger.Warn("subscriber blocklisted", "subscriber_id", ev.SubscriberID, "hard_bounces", n)
	return nil
}
