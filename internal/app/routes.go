package app

import (
	"github.com/gorilla/mux"
)

// RegisterRoutes registers all API endpoints.
func RegisterRoutes(r *mux.Router, deps *Dependencies) {

	// Events
	r.HandleFunc("/api/events", deps.Handler.ListEvents).Methods("GET")
	r.HandleFunc("/api/events", deps.Handler.CreateEvent).Methods("POST")
	r.HandleFunc("/api/events/{id}", deps.Handler.GetEvent).Methods("GET")
	r.HandleFunc("/api/events/{id}", deps.Handler.UpdateEvent).Methods("PUT")
	r.HandleFunc("/api/events/{id}", deps.Handler.DeleteEvent).Methods("DELETE")
	r.HandleFunc("/api/events/{id}/form", deps.Handler.GetEventForm).Methods("GET")
	r.HandleFunc("/api/events/{id}/move", deps.Handler.MoveEvent).Methods("POST")

	// Filters
	r.HandleFunc("/api/filters", deps.Handler.GetFilters).Methods("GET")
	r.HandleFunc("/api/filters", deps.Handler.SetFilters).Methods("PUT")

	// Calendar views
	r.HandleFunc("/api/month", deps.Handler.GetMonth).Methods("GET")
	r.HandleFunc("/api/calendar.ics", deps.Handler.ExportICal).Methods("GET")
}
