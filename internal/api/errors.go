package api

import (
	"errors"
	"net/http"

	"github.com/ignite/listpilot/internal/pkg/httputil"
	"github.com/ignite/listpilot/internal/service/campaign"
	"github.com/ignite/listpilot/internal/service/list"
	"github.com/ignite/listpilot/internal/service/subscriber"
	"github.com/ignite/listpilot/internal/service/subscription"
	"github.com/ignite/listpilot/internal/service/template"
	"github.com/ignite/listpilot/internal/stats"
	"github.com/ignite/listpilot/internal/targeting"
)

// writeServiceError maps service-layer errors onto the HTTP error
// envelope. Unrecognized errors become 500s; callers that know an error
// is a validation failure should use writeValidationError instead.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, subscriber.ErrNotFound),
		errors.Is(err, list.ErrNotFound),
		errors.Is(err, subscription.ErrNotFound),
		errors.Is(err, template.ErrNotFound),
		errors.Is(err, campaign.ErrNotFound):
		httputil.NotFound(w, err.Error())

	case errors.Is(err, subscriber.ErrEmailTaken):
		httputil.Conflict(w, err.Error())

	case errors.Is(err, campaign.ErrInvalidTransition):
		httputil.UnprocessableEntity(w, "invalid_transition", err.Error())

	case errors.Is(err, targeting.ErrEmptyAudience):
		httputil.UnprocessableEntity(w, "empty_audience", err.Error())

	case errors.Is(err, targeting.ErrNoTargetLists),
		errors.Is(err, campaign.ErrNoTargetLists):
		httputil.UnprocessableEntity(w, "no_target_lists", err.Error())

	case errors.Is(err, campaign.ErrNotEditable):
		httputil.UnprocessableEntity(w, "not_editable", err.Error())

	case errors.Is(err, campaign.ErrPastSendAt):
		httputil.BadRequest(w, err.Error())

	case errors.Is(err, stats.ErrMissingEventID),
		errors.Is(err, stats.ErrUnknownEventType):
		httputil.BadRequest(w, err.Error())

	default:
		httputil.InternalError(w, err)
	}
}

// writeValidationError maps errors from create/update paths, where any
// non-sentinel error is a rejected input rather than a server fault.
func writeValidationError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, subscriber.ErrNotFound),
		errors.Is(err, list.ErrNotFound),
		errors.Is(err, subscription.ErrNotFound),
		errors.Is(err, template.ErrNotFound),
		errors.Is(err, campaign.ErrNotFound),
		errors.Is(err, subscriber.ErrEmailTaken),
		errors.Is(err, campaign.ErrInvalidTransition),
		errors.Is(err, campaign.ErrNotEditable),
		errors.Is(err, campaign.ErrNoTargetLists):
		writeServiceError(w, err)
	default:
		httputil.BadRequest(w, err.Error())
	}
}
