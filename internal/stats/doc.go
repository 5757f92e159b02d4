// Package stats folds delivery events into campaign counters.
//
// Each event carries a caller-supplied ID and is applied at most once;
// idempotence and unique view/click tracking are backed by Redis so that
// multiple aggregator instances share one deduplication state. Hard
// bounces additionally cascade into subscription and subscriber state.
package stats
