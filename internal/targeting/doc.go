// Package targeting computes a campaign's recipient set at send time.
//
// Resolution is a one-shot operation: the union of eligible subscribers
// across the campaign's target lists, deduplicated, intersected with the
// optional segment filter, minus anyone not globally enabled. The caller
// freezes the resulting count as stats.to_send; membership changes after
// resolution are invisible to the running campaign by design.
package targeting
