package controllers

import (
	"log/slog"
	"net/http"
	"strings"

	"eventmarket/internal/delivery/http/helpers"
	"eventmarket/internal/delivery/http/middleware"
	"eventmarket/internal/domain"
)

// HostEventsResponse is the data payload for GET /dashboard/events (200).
type HostEventsResponse struct {
	Events     []*domain.Event        `json:"events"`
	Pagination helpers.PaginationMeta `json:"pagination"`
}

// HostEventsSuccessResponse is the success envelope for GET /dashboard/events (200).
type HostEventsSuccessResponse struct {
	Data  HostEventsResponse `json:"data"`
	Error *helpers.APIError  `json:"error"`
}

// BrowseEventsSuccessResponse is the success envelope for GET /events (200).
type BrowseEventsSuccessResponse struct {
	Data  []*domain.EventWithRelations `json:"data"`
	Error *helpers.APIError            `json:"error"`
}

type ListingController struct {
	Logger  *slog.Logger
	Service domain.ListingService
}

func NewListingController(logger *slog.Logger, svc domain.ListingService) *ListingController {
	return &ListingController{
		Logger:  logger,
		Service: svc,
	}
}

// parseSorts turns a comma-separated "field:dir" query value into sort specs.
// Direction defaults to ascending; anything other than "desc" is ascending.
// Unknown fields are passed through and dropped by the listing service.
func parseSorts(raw string) []domain.SortSpec {
	if raw == "" {
		return nil
	}
	var sorts []domain.SortSpec
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		field, dir, _ := strings.Cut(part, ":")
		sorts = append(sorts, domain.SortSpec{
			Field: field,
			Desc:  strings.EqualFold(dir, "desc"),
		})
	}
	return sorts
}

// HostEvents godoc
// @Summary List the authenticated host's events
// @Description Returns one page of the host's own events, any status, with pagination totals. Sort accepts comma-separated "field:dir" pairs; unknown fields are ignored.
// @Tags dashboard
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number (default 1)"
// @Param page_size query int false "Page size (default 10, max 100)"
// @Param sort query string false "Sort, e.g. schedule:asc,title:desc"
// @Success 200 {object} controllers.HostEventsSuccessResponse "data contains events and pagination"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /dashboard/events [get]
func (c *ListingController) HostEvents(w http.ResponseWriter, r *http.Request) {
	hostID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	params := helpers.ParsePagination(r)
	sorts := parseSorts(r.URL.Query().Get("sort"))

	page, err := c.Service.EventsByHost(r.Context(), hostID, params, sorts)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "Internal server error.")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, HostEventsResponse{
		Events:     page.Data,
		Pagination: helpers.NewPaginationMeta(params.Page, params.PageSize, page.Total),
	})
}

// BrowseEvents godoc
// @Summary Browse events
// @Description Public event listing across all statuses. Keyword matches title, description, and venue case-insensitively; category matches the category slug exactly. Sort accepts "date-asc" or "date-desc"; anything else falls back to newest first.
// @Tags events
// @Produce json
// @Param keyword query string false "Keyword filter"
// @Param category query string false "Category slug filter"
// @Param sort query string false "Sort token: date-asc or date-desc"
// @Success 200 {object} controllers.BrowseEventsSuccessResponse "data contains events with relations"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events [get]
func (c *ListingController) BrowseEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := domain.ListingFilter{
		Keyword:      strings.TrimSpace(q.Get("keyword")),
		CategorySlug: strings.TrimSpace(q.Get("category")),
	}
	events, err := c.Service.BrowsePublic(r.Context(), filter, q.Get("sort"))
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "Internal server error.")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, events)
}
