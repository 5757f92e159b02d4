package targeting

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/ignite/listpilot/internal/domain"
	"github.com/ignite/listpilot/internal/pkg/logger"
	"github.com/ignite/listpilot/internal/service/list"
)

// ListSource supplies list metadata (opt-in mode, deleted flag).
type ListSource interface {
	Get(ctx context.Context, id string) (*domain.List, error)
}

// LedgerSource supplies per-list eligible subscriber IDs.
type LedgerSource interface {
	EligibleSubscriberIDs(ctx context.Context, listID string, mode domain.OptinMode) ([]string, error)

	// UnconfirmedSubscriberIDs returns enabled subscribers whose pair on
	// the list is still unconfirmed. Opt-in campaigns target these.
	UnconfirmedSubscriberIDs(ctx context.Context, listID string) ([]string, error)
}

// SubscriberSource supplies subscriber records for segment evaluation and
// the final global-status check.
type SubscriberSource interface {
	ByIDs(ctx context.Context, ids []string) ([]domain.Subscriber, error)
}

// Resolver computes campaign audiences. It holds no state between calls
// and is safe for concurrent use.
type Resolver struct {
	lists       ListSource
	ledger      LedgerSource
	subscribers SubscriberSource
}

// NewResolver creates a resolver over the given sources.
func NewResolver(lists ListSource, ledger LedgerSource, subscribers SubscriberSource) *Resolver {
	return &Resolver{lists: lists, ledger: ledger, subscribers: subscribers}
}

// Resolve computes the deduplicated, eligible recipient set for a campaign.
// The returned IDs are sorted so audience persistence and batch claiming
// are deterministic. Returns ErrEmptyAudience when no recipient survives.
func (r *Resolver) Resolve(ctx context.Context, c *domain.Campaign) ([]string, error) {
	if len(c.ListIDs) == 0 {
		return nil, ErrNoTargetLists
	}

	// Union across target lists, deduplicated by subscriber id: a
	// subscriber on two targeted lists is emailed once.
	seen := make(map[string]struct{})
	for _, listID := range c.ListIDs {
		l, err := r.lists.Get(ctx, listID)
		if errors.Is(err, list.ErrNotFound) {
			// Deleted or never-existed lists contribute nothing; a
			// campaign can outlive one of its targets.
			logger.Warn("campaign targets missing list", "campaign_id", c.ID, "list_id", listID)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("load list %s: %w", listID, err)
		}
		var ids []string
		if c.Type == domain.CampaignOptin {
			// Opt-in campaigns chase confirmations: they go to the
			// unconfirmed members of double opt-in lists. A single
			// opt-in list has no one waiting to confirm.
			if l.OptinMode != domain.OptinDouble {
				continue
			}
			ids, err = r.ledger.UnconfirmedSubscriberIDs(ctx, l.ID)
		} else {
			ids, err = r.ledger.EligibleSubscriberIDs(ctx, l.ID, l.OptinMode)
		}
		if err != nil {
			return nil, fmt.Errorf("eligible subscribers for list %s: %w", l.ID, err)
		}
		for _, id := range ids {
			seen[id] = struct{}{}
		}
	}

	if len(seen) == 0 {
		return nil, ErrEmptyAudience
	}

	candidates := make([]string, 0, len(seen))
	for id := range seen {
		candidates = append(candidates, id)
	}
	sort.Strings(candidates)

	subs, err := r.subscribers.ByIDs(ctx, candidates)
	if err != nil {
		return nil, fmt.Errorf("load subscribers: %w", err)
	}

	out := make([]string, 0, len(subs))
	for i := range subs {
		sub := &subs[i]
		// The ledger query already joins on enabled status, but a status
		// flip between that read and this one must still be honored.
		if sub.Status != domain.SubscriberEnabled {
			continue
		}
		if c.Segment != nil && !MatchesSegment(sub, c.Segment) {
			continue
		}
		out = append(out, sub.ID)
	}

	if len(out) == 0 {
		return nil, ErrEmptyAudience
	}
	logger.Info("campaign audience resolved", "campaign_id", c.ID, "count", len(out))
	return out, nil
}
