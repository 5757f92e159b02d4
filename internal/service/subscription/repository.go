package subscription

import (
	"context"

	"github.com/ignite/listpilot/internal/domain"
)

// Repository defines the data access contract for the subscription ledger.
type Repository interface {
	// Upsert inserts or updates the row for (sub.SubscriberID, sub.ListID).
	// The write for a given pair is serialized: implementations must
	// guarantee last-writer-wins with no interleaved partial updates.
	// Timestamp rules: subscribed_at is set when the row transitions into
	// confirmed, unsubscribed_at when it transitions into unsubscribed.
	Upsert(ctx context.Context, sub *domain.Subscription) (*domain.Subscription, error)

	// Get returns the ledger row for a pair. Returns ErrNotFound if absent.
	Get(ctx context.Context, subscriberID, listID string) (*domain.Subscription, error)

	// ForSubscriber returns all ledger rows for a subscriber.
	ForSubscriber(ctx context.Context, subscriberID string) ([]domain.Subscription, error)

	// EligibleSubscriberIDs returns the IDs of subscribers eligible for a
	// send on the given list: subscription status satisfying the opt-in
	// mode AND global subscriber status enabled. Rows referencing deleted
	// lists yield nothing.
	EligibleSubscriberIDs(ctx context.Context, listID string, mode domain.OptinMode) ([]string, error)
}
