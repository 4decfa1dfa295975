package event_store

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/klokku/monthcal/internal/rest"
	"github.com/klokku/monthcal/pkg/calendar"
	"github.com/klokku/monthcal/pkg/dates"
	"github.com/klokku/monthcal/pkg/ical_export"
	"github.com/klokku/monthcal/pkg/recurrence"
	log "github.com/sirupsen/logrus"
)

type Handler struct {
	store *Store
}

type MoveRequest struct {
	Start time.Time `json:"start"`
}

type FiltersDTO struct {
	Query      string              `json:"query"`
	Categories []calendar.Category `json:"categories"`
}

func NewHandler(store *Store) *Handler {
	return &Handler{store: store}
}

// ListEvents godoc
// @Summary List visible events
// @Description Filtered occurrences, optionally limited to the [from, to] window
// @Tags Events
// @Produce json
// @Param from query string false "Window start (RFC3339)"
// @Param to query string false "Window end (RFC3339)"
// @Success 200 {array} calendar.Event
// @Failure 400 {object} rest.ErrorResponse "Invalid date format"
// @Router /api/events [get]
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	fromString := r.URL.Query().Get("from")
	toString := r.URL.Query().Get("to")
	if fromString == "" && toString == "" {
		rest.WriteJSON(w, http.StatusOK, h.store.Visible())
		return
	}

	from, err := time.Parse(time.RFC3339, fromString)
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid from (date) format", "'from' must be in RFC3339 format")
		return
	}
	to, err := time.Parse(time.RFC3339, toString)
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid to (date) format", "'to' must be in RFC3339 format")
		return
	}
	rest.WriteJSON(w, http.StatusOK, h.store.VisibleBetween(from, to))
}

// GetEvent godoc
// @Summary Get an event or occurrence
// @Tags Events
// @Produce json
// @Param id path string true "Event or occurrence ID"
// @Success 200 {object} calendar.Event
// @Failure 404 {object} rest.ErrorResponse "Event not found"
// @Router /api/events/{id} [get]
func (h *Handler) GetEvent(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	event, found := h.store.Lookup(id)
	if !found {
		rest.WriteError(w, http.StatusNotFound, "Event not found", id)
		return
	}
	rest.WriteJSON(w, http.StatusOK, event)
}

// GetEventForm godoc
// @Summary Get the editor form prefilled from an event
// @Tags Events
// @Produce json
// @Param id path string true "Event or occurrence ID"
// @Success 200 {object} calendar.FormInput
// @Failure 404 {object} rest.ErrorResponse "Event not found"
// @Router /api/events/{id}/form [get]
func (h *Handler) GetEventForm(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	event, found := h.store.Lookup(id)
	if !found {
		rest.WriteError(w, http.StatusNotFound, "Event not found", id)
		return
	}
	rest.WriteJSON(w, http.StatusOK, calendar.FormFromEvent(event))
}

// CreateEvent godoc
// @Summary Create an event
// @Tags Events
// @Accept json
// @Produce json
// @Param event body calendar.FormInput true "Event form"
// @Success 201 {object} calendar.Event
// @Failure 400 {object} rest.ErrorResponse "Invalid event"
// @Router /api/events [post]
func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var form calendar.FormInput
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format", err.Error())
		return
	}

	event, err := h.store.Add(r.Context(), form)
	if err != nil {
		writeFormError(w, err)
		return
	}
	log.Debugf("created event %s", event.ID)
	rest.WriteJSON(w, http.StatusCreated, event)
}

// UpdateEvent godoc
// @Summary Update an event
// @Description An occurrence ID updates its whole series
// @Tags Events
// @Accept json
// @Produce json
// @Param id path string true "Event or occurrence ID"
// @Param event body calendar.FormInput true "Event form"
// @Success 200 {object} calendar.Event
// @Failure 400 {object} rest.ErrorResponse "Invalid event"
// @Failure 404 {object} rest.ErrorResponse "Event not found"
// @Router /api/events/{id} [put]
func (h *Handler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var form calendar.FormInput
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format", err.Error())
		return
	}

	event, found, err := h.store.Update(r.Context(), id, form)
	if !found {
		rest.WriteError(w, http.StatusNotFound, "Event not found", id)
		return
	}
	if err != nil {
		writeFormError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, event)
}

// DeleteEvent godoc
// @Summary Delete an event
// @Description An occurrence ID deletes its whole series
// @Tags Events
// @Param id path string true "Event or occurrence ID"
// @Success 204
// @Failure 404 {object} rest.ErrorResponse "Event not found"
// @Router /api/events/{id} [delete]
func (h *Handler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if !h.store.Delete(r.Context(), id) {
		rest.WriteError(w, http.StatusNotFound, "Event not found", id)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// MoveEvent godoc
// @Summary Move an event or occurrence to a new start
// @Tags Events
// @Accept json
// @Produce json
// @Param id path string true "Occurrence ID"
// @Param move body MoveRequest true "New start"
// @Success 200 {object} conflict.Decision
// @Failure 404 {object} rest.ErrorResponse "Event not found"
// @Failure 409 {object} conflict.Decision "Conflicting events"
// @Router /api/events/{id}/move [post]
func (h *Handler) MoveEvent(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var req MoveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format", err.Error())
		return
	}
	if req.Start.IsZero() {
		rest.WriteError(w, http.StatusBadRequest, "Start is required", "'start' must be in RFC3339 format")
		return
	}

	decision, found := h.store.Move(r.Context(), id, req.Start.In(h.store.Location()))
	if !found {
		rest.WriteError(w, http.StatusNotFound, "Event not found", id)
		return
	}
	if !decision.Allowed {
		rest.WriteJSON(w, http.StatusConflict, decision)
		return
	}
	rest.WriteJSON(w, http.StatusOK, decision)
}

// SetFilters godoc
// @Summary Replace the search query and category filter
// @Tags Events
// @Accept json
// @Produce json
// @Param filters body FiltersDTO true "Filters"
// @Success 200 {array} calendar.Event
// @Router /api/filters [put]
func (h *Handler) SetFilters(w http.ResponseWriter, r *http.Request) {
	var filters FiltersDTO
	if err := json.NewDecoder(r.Body).Decode(&filters); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format", err.Error())
		return
	}
	h.store.SetSearchQuery(filters.Query)
	h.store.SetCategories(filters.Categories)
	rest.WriteJSON(w, http.StatusOK, h.store.Visible())
}

// GetFilters godoc
// @Summary Get the active filters
// @Tags Events
// @Produce json
// @Success 200 {object} FiltersDTO
// @Router /api/filters [get]
func (h *Handler) GetFilters(w http.ResponseWriter, r *http.Request) {
	query, categories := h.store.Filters()
	if categories == nil {
		categories = []calendar.Category{}
	}
	rest.WriteJSON(w, http.StatusOK, FiltersDTO{Query: query, Categories: categories})
}

// GetMonth godoc
// @Summary Month grid with visible events per day
// @Tags Calendar
// @Produce json
// @Param date query string false "Any day of the month (YYYY-MM-DD), defaults to today"
// @Success 200 {object} MonthView
// @Failure 400 {object} rest.ErrorResponse "Invalid date format"
// @Router /api/month [get]
func (h *Handler) GetMonth(w http.ResponseWriter, r *http.Request) {
	anchor := h.store.clock.Now()
	if dateString := r.URL.Query().Get("date"); dateString != "" {
		parsed, err := time.ParseInLocation(dates.DateLayout, dateString, h.store.Location())
		if err != nil {
			rest.WriteError(w, http.StatusBadRequest, "Invalid date format", "'date' must be in YYYY-MM-DD format")
			return
		}
		anchor = parsed
	}
	rest.WriteJSON(w, http.StatusOK, h.store.MonthView(anchor))
}

// ExportICal godoc
// @Summary Export base events as iCalendar
// @Tags Calendar
// @Produce text/calendar
// @Success 200 {string} string "VCALENDAR document"
// @Router /api/calendar.ics [get]
func (h *Handler) ExportICal(w http.ResponseWriter, r *http.Request) {
	body := ical_export.Export(h.store.BaseEvents(), h.store.clock.Now())
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="calendar.ics"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(body)); err != nil {
		log.Errorf("failed to write calendar export: %v", err)
	}
}

func writeFormError(w http.ResponseWriter, err error) {
	var configErr *recurrence.ConfigurationError
	switch {
	case errors.As(err, &configErr):
		rest.WriteError(w, http.StatusBadRequest, "Invalid recurrence", configErr.Error())
	case errors.Is(err, calendar.ErrInvalidForm):
		rest.WriteError(w, http.StatusBadRequest, "Invalid event form", err.Error())
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
