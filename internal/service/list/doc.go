// Package list implements the mailing list registry.
//
// Lists are named groupings subscribers can join. Deletion is logical:
// the list row is flagged and subscription ledger rows referencing it
// become orphans filtered out by eligibility queries, never cascaded.
package list
