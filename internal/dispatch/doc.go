// Package dispatch delivers running campaigns to their frozen audiences.
//
// The dispatcher drains the per-campaign audience queue in batches,
// renders each message, hands it to a Sender and reports the outcome as
// a delivery event. Campaign status is re-read before every batch so
// pause and cancel take effect at batch granularity.
package dispatch
