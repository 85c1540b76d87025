package controllers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"eventmarket/internal/delivery/http/helpers"
	"eventmarket/internal/delivery/http/middleware"
	"eventmarket/internal/domain"
)

// EventMutationResponse is the data payload for successful create, update, and
// delete calls.
type EventMutationResponse struct {
	Message string        `json:"message"`
	Event   *domain.Event `json:"event,omitempty"`
}

// EventMutationSuccessResponse is the success envelope for event mutations.
type EventMutationSuccessResponse struct {
	Data  EventMutationResponse `json:"data"`
	Error *helpers.APIError     `json:"error"`
}

// GetEventSuccessResponse is the success envelope for GET /events/{slug} (200).
type GetEventSuccessResponse struct {
	Data  *domain.EventWithRelations `json:"data"`
	Error *helpers.APIError          `json:"error"`
}

// UpcomingEventsSuccessResponse is the success envelope for GET /events/upcoming (200).
type UpcomingEventsSuccessResponse struct {
	Data  []*domain.EventWithRelations `json:"data"`
	Error *helpers.APIError            `json:"error"`
}

type EventController struct {
	Logger  *slog.Logger
	Service domain.EventService
}

func NewEventController(logger *slog.Logger, svc domain.EventService) *EventController {
	return &EventController{
		Logger:  logger,
		Service: svc,
	}
}

// writeEventError maps domain errors to HTTP responses. Unrecognized errors are
// logged and reported as a generic 500 so internals never leak to clients.
func (c *EventController) writeEventError(w http.ResponseWriter, r *http.Request, err error) {
	var vErr *domain.ValidationError
	switch {
	case errors.As(err, &vErr):
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, vErr.Error())
	case errors.Is(err, domain.ErrDuplicateSlug):
		helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeConflict, domain.ErrDuplicateSlug.Error())
	case errors.Is(err, domain.ErrInvalidInput):
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeForbidden, "forbidden")
	case errors.Is(err, domain.ErrNotFound):
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "event not found")
	default:
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "Internal server error.")
	}
}

// CreateEvent godoc
// @Summary Create a new event
// @Description Create an event with its ticket tiers. The slug is derived from the title and must be unique. The authenticated user becomes the host.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param event body domain.EventSubmission true "Event data"
// @Success 201 {object} controllers.EventMutationSuccessResponse "data contains the created event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (duplicate slug)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events [post]
func (c *EventController) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var sub domain.EventSubmission
	if !helpers.DecodeAndValidate(w, r, &sub) {
		return
	}
	hostID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	event, err := c.Service.CreateEvent(r.Context(), hostID, sub)
	if err != nil {
		c.writeEventError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, EventMutationResponse{
		Message: fmt.Sprintf("%s is created successfully.", event.Title),
		Event:   event,
	})
}

// UpdateEvent godoc
// @Summary Update an event
// @Description Replaces the event's details and its full ticket set. The slug never changes after creation. Only the host can update.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param slug path string true "Event slug"
// @Param event body domain.EventSubmission true "Event data"
// @Success 200 {object} controllers.EventMutationSuccessResponse "data contains the updated event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not host)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{slug} [put]
func (c *EventController) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")
	if slug == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing slug")
		return
	}
	var sub domain.EventSubmission
	if !helpers.DecodeAndValidate(w, r, &sub) {
		return
	}
	hostID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	event, err := c.Service.UpdateEvent(r.Context(), slug, hostID, sub)
	if err != nil {
		c.writeEventError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, EventMutationResponse{
		Message: fmt.Sprintf("%s is updated successfully.", event.Title),
		Event:   event,
	})
}

// DeleteEvent godoc
// @Summary Delete an event
// @Description Deletes an event, its tickets, and its uploaded images. Only the host can delete; for anyone else the event is reported as not found.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param slug path string true "Event slug"
// @Success 200 {object} controllers.EventMutationSuccessResponse "data contains a status message"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{slug} [delete]
func (c *EventController) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")
	if slug == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing slug")
		return
	}
	hostID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	event, err := c.Service.DeleteEvent(r.Context(), slug, hostID)
	if err != nil {
		c.writeEventError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, EventMutationResponse{
		Message: fmt.Sprintf("%s is deleted successfully.", event.Title),
	})
}

// GetEventBySlug godoc
// @Summary Get an event by slug
// @Description Returns the event with its category, host, and ticket tiers. Public, no authentication required.
// @Tags events
// @Produce json
// @Param slug path string true "Event slug"
// @Success 200 {object} controllers.GetEventSuccessResponse "data contains the event with relations"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{slug} [get]
func (c *EventController) GetEventBySlug(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")
	if slug == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing slug")
		return
	}
	event, err := c.Service.GetEventBySlug(r.Context(), slug)
	if err != nil {
		c.writeEventError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}

// UpcomingEvents godoc
// @Summary List upcoming published events
// @Description Returns the next published events scheduled from today onward, soonest first. Public, no authentication required.
// @Tags events
// @Produce json
// @Param limit query int false "Maximum number of events (default 6)"
// @Success 200 {object} controllers.UpcomingEventsSuccessResponse "data contains upcoming events"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/upcoming [get]
func (c *EventController) UpcomingEvents(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if s := r.URL.Query().Get("limit"); s != "" {
		if v, err := strconv.Atoi(s); err == nil {
			limit = v
		}
	}
	events, err := c.Service.UpcomingPublished(r.Context(), limit)
	if err != nil {
		c.writeEventError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, events)
}
