// Package subscriber implements the subscriber registry.
//
// The registry is the single source of truth for recipient identity and
// global send eligibility. Email uniqueness is case-insensitive across the
// whole registry, and subscribers are never physically deleted: status
// moves to disabled or blocklisted so past campaign history stays intact.
//
// The service layer contains pure business logic and depends on the
// Repository interface defined in repository.go. It never imports
// net/http or database/sql directly.
package subscriber
