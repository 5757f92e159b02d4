// Package subscription implements the subscription ledger: the many-to-many
// state between subscribers and lists with per-pair status.
//
// The (subscriber, list) pair is the natural key. Upserts for a given pair
// are serialized by the repository (last writer after lock acquisition
// wins) so concurrent confirm/unsubscribe requests cannot interleave
// partial updates.
package subscription
