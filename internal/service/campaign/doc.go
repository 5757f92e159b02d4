// Package campaign implements campaign lifecycle management.
//
// The service layer owns the state machine (draft, scheduled, running,
// paused, finished, cancelled) and the single point where a campaign's
// audience is resolved and frozen. It depends on repository interfaces
// defined in this package and should never import from api/.
//
// Repository implementations live in repository/postgres/.
package campaign
