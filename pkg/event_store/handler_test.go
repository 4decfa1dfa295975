package event_store

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/klokku/monthcal/internal/rest"
	"github.com/klokku/monthcal/pkg/calendar"
	"github.com/klokku/monthcal/pkg/conflict"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupHandlerTest(t *testing.T) (*Handler, *Store) {
	store, _, _ := setupStore(t)
	return NewHandler(store), store
}

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	body, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(body)
}

func withID(req *http.Request, id string) *http.Request {
	return mux.SetURLVars(req, map[string]string{"id": id})
}

func TestCreateEvent(t *testing.T) {
	handler, store := setupHandlerTest(t)

	req := httptest.NewRequest(http.MethodPost, "/api/events", jsonBody(t, standupForm()))
	w := httptest.NewRecorder()
	handler.CreateEvent(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	var created calendar.Event
	require.NoError(t, json.NewDecoder(w.Body).Decode(&created))
	assert.Equal(t, "Standup", created.Title)
	assert.True(t, created.IsRecurring)
	assert.Len(t, store.Occurrences(), 5)
}

func TestCreateEvent_InvalidRecurrence(t *testing.T) {
	handler, _ := setupHandlerTest(t)
	form := standupForm()
	form.Recurrence.Interval = -1

	req := httptest.NewRequest(http.MethodPost, "/api/events", jsonBody(t, form))
	w := httptest.NewRecorder()
	handler.CreateEvent(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var response rest.ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Equal(t, "Invalid recurrence", response.Error)
}

func TestCreateEvent_InvalidBody(t *testing.T) {
	handler, _ := setupHandlerTest(t)

	req := httptest.NewRequest(http.MethodPost, "/api/events", strings.NewReader("{"))
	w := httptest.NewRecorder()
	handler.CreateEvent(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListEvents(t *testing.T) {
	handler, store := setupHandlerTest(t)
	_, err := store.Add(context.Background(), standupForm())
	require.NoError(t, err)

	t.Run("all visible events", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/events", nil)
		w := httptest.NewRecorder()
		handler.ListEvents(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		var events []calendar.Event
		require.NoError(t, json.NewDecoder(w.Body).Decode(&events))
		assert.Len(t, events, 5)
	})

	t.Run("window", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/events?from=2024-01-02T00:00:00Z&to=2024-01-03T23:59:59Z", nil)
		w := httptest.NewRecorder()
		handler.ListEvents(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		var events []calendar.Event
		require.NoError(t, json.NewDecoder(w.Body).Decode(&events))
		assert.Len(t, events, 2)
	})

	t.Run("invalid from", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/events?from=invalid-date&to=2024-01-03T23:59:59Z", nil)
		w := httptest.NewRecorder()
		handler.ListEvents(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		var response rest.ErrorResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
		assert.Equal(t, "Invalid from (date) format", response.Error)
	})
}

func TestGetEvent(t *testing.T) {
	handler, store := setupHandlerTest(t)
	base, err := store.Add(context.Background(), standupForm())
	require.NoError(t, err)

	w := httptest.NewRecorder()
	handler.GetEvent(w, withID(httptest.NewRequest(http.MethodGet, "/api/events/x", nil), base.ID+"-1"))
	require.Equal(t, http.StatusOK, w.Code)
	var event calendar.Event
	require.NoError(t, json.NewDecoder(w.Body).Decode(&event))
	assert.Equal(t, base.ID, event.OriginalEventID)

	w = httptest.NewRecorder()
	handler.GetEvent(w, withID(httptest.NewRequest(http.MethodGet, "/api/events/x", nil), "missing"))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetEventForm(t *testing.T) {
	handler, store := setupHandlerTest(t)
	base, err := store.Add(context.Background(), standupForm())
	require.NoError(t, err)

	w := httptest.NewRecorder()
	handler.GetEventForm(w, withID(httptest.NewRequest(http.MethodGet, "/api/events/x/form", nil), base.ID))

	require.Equal(t, http.StatusOK, w.Code)
	var form calendar.FormInput
	require.NoError(t, json.NewDecoder(w.Body).Decode(&form))
	assert.Equal(t, standupForm(), form)
}

func TestUpdateEvent(t *testing.T) {
	handler, store := setupHandlerTest(t)
	base, err := store.Add(context.Background(), standupForm())
	require.NoError(t, err)
	form := standupForm()
	form.Title = "Sync"

	w := httptest.NewRecorder()
	handler.UpdateEvent(w, withID(httptest.NewRequest(http.MethodPut, "/api/events/x", jsonBody(t, form)), base.ID+"-4"))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Sync", store.BaseEvents()[0].Title)

	w = httptest.NewRecorder()
	handler.UpdateEvent(w, withID(httptest.NewRequest(http.MethodPut, "/api/events/x", jsonBody(t, form)), "missing"))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteEvent(t *testing.T) {
	handler, store := setupHandlerTest(t)
	base, err := store.Add(context.Background(), standupForm())
	require.NoError(t, err)

	w := httptest.NewRecorder()
	handler.DeleteEvent(w, withID(httptest.NewRequest(http.MethodDelete, "/api/events/x", nil), base.ID+"-0"))
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, store.Occurrences())

	w = httptest.NewRecorder()
	handler.DeleteEvent(w, withID(httptest.NewRequest(http.MethodDelete, "/api/events/x", nil), base.ID))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMoveEvent(t *testing.T) {
	handler, store := setupHandlerTest(t)
	first, err := store.Add(context.Background(), formInput("A", "2024-01-02", "10:00", "11:00"))
	require.NoError(t, err)
	second, err := store.Add(context.Background(), formInput("B", "2024-01-02", "14:00", "15:00"))
	require.NoError(t, err)

	t.Run("conflict", func(t *testing.T) {
		body := jsonBody(t, MoveRequest{Start: at(2, 10, 30)})
		w := httptest.NewRecorder()
		handler.MoveEvent(w, withID(httptest.NewRequest(http.MethodPost, "/api/events/x/move", body), second.ID))

		require.Equal(t, http.StatusConflict, w.Code)
		var decision conflict.Decision
		require.NoError(t, json.NewDecoder(w.Body).Decode(&decision))
		assert.False(t, decision.Allowed)
		require.Len(t, decision.Conflicts, 1)
		assert.Equal(t, first.ID, decision.Conflicts[0].ID)
	})

	t.Run("allowed", func(t *testing.T) {
		body := jsonBody(t, MoveRequest{Start: at(2, 16, 0)})
		w := httptest.NewRecorder()
		handler.MoveEvent(w, withID(httptest.NewRequest(http.MethodPost, "/api/events/x/move", body), second.ID))

		require.Equal(t, http.StatusOK, w.Code)
		moved, _ := store.Lookup(second.ID)
		assert.Equal(t, at(2, 16, 0), moved.StartDate)
	})

	t.Run("missing start", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.MoveEvent(w, withID(httptest.NewRequest(http.MethodPost, "/api/events/x/move", strings.NewReader("{}")), second.ID))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown event", func(t *testing.T) {
		body := jsonBody(t, MoveRequest{Start: at(2, 16, 0)})
		w := httptest.NewRecorder()
		handler.MoveEvent(w, withID(httptest.NewRequest(http.MethodPost, "/api/events/x/move", body), "missing"))

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestFilters(t *testing.T) {
	handler, store := setupHandlerTest(t)
	_, err := store.Add(context.Background(), formInput("Planning", "2024-01-02", "10:00", "11:00"))
	require.NoError(t, err)
	_, err = store.Add(context.Background(), formInput("Retro", "2024-01-02", "14:00", "15:00"))
	require.NoError(t, err)

	w := httptest.NewRecorder()
	handler.SetFilters(w, httptest.NewRequest(http.MethodPut, "/api/filters", jsonBody(t, FiltersDTO{Query: "retro"})))
	require.Equal(t, http.StatusOK, w.Code)
	var visible []calendar.Event
	require.NoError(t, json.NewDecoder(w.Body).Decode(&visible))
	require.Len(t, visible, 1)
	assert.Equal(t, "Retro", visible[0].Title)

	w = httptest.NewRecorder()
	handler.GetFilters(w, httptest.NewRequest(http.MethodGet, "/api/filters", nil))
	var filters FiltersDTO
	require.NoError(t, json.NewDecoder(w.Body).Decode(&filters))
	assert.Equal(t, FiltersDTO{Query: "retro", Categories: []calendar.Category{}}, filters)
}

func TestGetMonth(t *testing.T) {
	handler, _ := setupHandlerTest(t)

	w := httptest.NewRecorder()
	handler.GetMonth(w, httptest.NewRequest(http.MethodGet, "/api/month?date=2015-02-10", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var view MonthView
	require.NoError(t, json.NewDecoder(w.Body).Decode(&view))
	assert.Equal(t, "February 2015", view.Title)
	assert.Len(t, view.Days, 28)

	w = httptest.NewRecorder()
	handler.GetMonth(w, httptest.NewRequest(http.MethodGet, "/api/month", nil))
	require.NoError(t, json.NewDecoder(w.Body).Decode(&view))
	assert.Equal(t, "January 2024", view.Title)

	w = httptest.NewRecorder()
	handler.GetMonth(w, httptest.NewRequest(http.MethodGet, "/api/month?date=02/10/2015", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExportICal(t *testing.T) {
	handler, store := setupHandlerTest(t)
	_, err := store.Add(context.Background(), standupForm())
	require.NoError(t, err)

	w := httptest.NewRecorder()
	handler.ExportICal(w, httptest.NewRequest(http.MethodGet, "/api/calendar.ics", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/calendar")
	assert.Contains(t, w.Body.String(), "BEGIN:VCALENDAR")
	assert.Contains(t, w.Body.String(), "SUMMARY:Standup")
	assert.Contains(t, w.Body.String(), "FREQ=DAILY")
}
