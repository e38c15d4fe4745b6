package statuspage

import (
	"net/http"
	"strconv"
	"time"

	"github.com/bissquit/uptime-garden/internal/domain"
	"github.com/bissquit/uptime-garden/internal/pkg/ctxlog"
	"github.com/bissquit/uptime-garden/internal/pkg/httputil"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

var errorMappings = []httputil.ErrorMapping{
	{Error: ErrPageNotFound, Status: http.StatusNotFound, Message: "page not found"},
	{Error: ErrComponentNotFound, Status: http.StatusNotFound, Message: "component not found"},
	{Error: ErrInvalidWindow, Status: http.StatusBadRequest},
}

// Handler serves the public report API.
type Handler struct {
	service   *Service
	validator *validator.Validate
}

// NewHandler creates a new report handler.
func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: validator.New(),
	}
}

// RegisterRoutes registers the public page routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/pages/{id}", func(r chi.Router) {
		r.Get("/uptime", h.GetPageUptime)
		r.Get("/components/{componentID}/uptime", h.GetComponentUptime)
		r.Get("/history", h.GetHistory)
	})
}

// UptimeQuery holds the query parameters of uptime requests.
type UptimeQuery struct {
	Days     int    `validate:"omitempty,min=1,max=366"`
	Timezone string `validate:"omitempty,timezone"`
}

// HistoryQuery holds the query parameters of history requests.
type HistoryQuery struct {
	Days     int    `validate:"omitempty,min=1,max=366"`
	Timezone string `validate:"omitempty,timezone"`
	Kind     string `validate:"omitempty,oneof=incident maintenance"`
}

// GetPageUptime handles GET /pages/{id}/uptime.
func (h *Handler) GetPageUptime(w http.ResponseWriter, r *http.Request) {
	pageID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var q UptimeQuery
	if !h.parseUptimeQuery(w, r, &q) {
		return
	}

	ctx := ctxlog.With(r.Context(), "page_id", pageID)
	report, err := h.service.PageUptime(ctx, pageID, ReportOptions{
		Days:     q.Days,
		Location: location(q.Timezone),
	})
	if err != nil {
		httputil.HandleError(ctx, w, err, errorMappings)
		return
	}

	httputil.Success(w, http.StatusOK, report)
}

// GetComponentUptime handles GET /pages/{id}/components/{componentID}/uptime.
func (h *Handler) GetComponentUptime(w http.ResponseWriter, r *http.Request) {
	pageID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	componentID, ok := pathID(w, r, "componentID")
	if !ok {
		return
	}

	var q UptimeQuery
	if !h.parseUptimeQuery(w, r, &q) {
		return
	}

	ctx := ctxlog.With(r.Context(), "page_id", pageID, "component_id", componentID)
	report, err := h.service.ComponentUptime(ctx, pageID, componentID, ReportOptions{
		Days:     q.Days,
		Location: location(q.Timezone),
	})
	if err != nil {
		httputil.HandleError(ctx, w, err, errorMappings)
		return
	}

	httputil.Success(w, http.StatusOK, report)
}

// GetHistory handles GET /pages/{id}/history.
func (h *Handler) GetHistory(w http.ResponseWriter, r *http.Request) {
	pageID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	query := r.URL.Query()
	q := HistoryQuery{
		Timezone: query.Get("tz"),
		Kind:     query.Get("kind"),
	}
	if !parseDays(w, query.Get("days"), &q.Days) {
		return
	}
	if err := h.validator.Struct(q); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	ctx := ctxlog.With(r.Context(), "page_id", pageID)
	report, err := h.service.History(ctx, pageID, HistoryOptions{
		Days:     q.Days,
		Location: location(q.Timezone),
		Kind:     domain.Kind(q.Kind),
	})
	if err != nil {
		httputil.HandleError(ctx, w, err, errorMappings)
		return
	}

	httputil.Success(w, http.StatusOK, report)
}

func (h *Handler) parseUptimeQuery(w http.ResponseWriter, r *http.Request, q *UptimeQuery) bool {
	query := r.URL.Query()
	q.Timezone = query.Get("tz")
	if !parseDays(w, query.Get("days"), &q.Days) {
		return false
	}
	if err := h.validator.Struct(q); err != nil {
		httputil.ValidationError(w, err)
		return false
	}
	return true
}

func pathID(w http.ResponseWriter, r *http.Request, param string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, param), 10, 64)
	if err != nil || id <= 0 {
		httputil.Error(w, http.StatusBadRequest, param+" must be a positive integer")
		return 0, false
	}
	return id, true
}

func parseDays(w http.ResponseWriter, raw string, days *int) bool {
	if raw == "" {
		return true
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed < 1 {
		httputil.Error(w, http.StatusBadRequest, "days must be a positive integer")
		return false
	}
	*days = parsed
	return true
}

// location expects a name already accepted by the timezone validator.
func location(name string) *time.Location {
	if name == "" {
		return nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil
	}
	return loc
}
