// Package handler contains chi HTTP handlers that translate HTTP
// requests/responses to and from the service layer.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/Shivanand-hulikatti/appointment-booking/internal/booking"
	"github.com/Shivanand-hulikatti/appointment-booking/internal/model"
	"github.com/Shivanand-hulikatti/appointment-booking/internal/repository"
	"github.com/Shivanand-hulikatti/appointment-booking/internal/service"
	"github.com/go-chi/chi/v5"
)

// AppointmentService is the service surface the handlers need.
type AppointmentService interface {
	Book(ctx context.Context, personID int64, req model.BookRequest, wait bool) ([]model.Appointment, error)
	ListForPerson(ctx context.Context, personID int64) ([]model.Appointment, error)
	ListAll(ctx context.Context) ([]model.Appointment, error)
	ListPeople(ctx context.Context) ([]model.Person, error)
}

// AppointmentHandler holds all HTTP handlers for the appointment API.
type AppointmentHandler struct {
	svc AppointmentService
}

// NewAppointmentHandler constructs an AppointmentHandler.
func NewAppointmentHandler(svc AppointmentService) *AppointmentHandler {
	return &AppointmentHandler{svc: svc}
}

// Routes mounts the appointment API on r.
func (h *AppointmentHandler) Routes(r chi.Router) {
	r.Get("/appointments", h.ListAppointments)
	r.Route("/people", func(r chi.Router) {
		r.Get("/", h.ListPeople)
		r.Get("/{personID}/appointments", h.ListPersonAppointments)
		r.Post("/{personID}/appointments", h.BookAppointment)
	})
}

// ─── Helper utilities ─────────────────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, model.ErrorResponse{Error: msg})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1 MB limit
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

func personIDParam(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "personID"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// nonNil returns an empty slice instead of nil so clients get [] not null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// ─── Handlers ─────────────────────────────────────────────────────────────────

// BookAppointment handles POST /people/{personID}/appointments
// Books the interval and returns the person's appointments.
// ?wait=true asks for the demo delay when the server allows it.
func (h *AppointmentHandler) BookAppointment(w http.ResponseWriter, r *http.Request) {
	personID, ok := personIDParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "person id must be a positive integer")
		return
	}

	var req model.BookRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	wait, _ := strconv.ParseBool(r.URL.Query().Get("wait"))

	appts, err := h.svc.Book(r.Context(), personID, req, wait)
	if err != nil {
		var (
			verr     *service.ValidationError
			conflict *booking.ConflictError
		)
		switch {
		case errors.As(err, &verr):
			writeError(w, http.StatusBadRequest, verr.Message)
		case errors.Is(err, repository.ErrNotFound):
			writeError(w, http.StatusNotFound, "person not found")
		case errors.As(err, &conflict):
			writeJSON(w, http.StatusConflict, model.ErrorResponse{
				Error:  "the appointment time overlaps with another one",
				Reason: conflict.Reason,
			})
		default:
			writeError(w, http.StatusInternalServerError, "failed to book appointment")
		}
		return
	}

	writeJSON(w, http.StatusCreated, nonNil(appts))
}

// ListPersonAppointments handles GET /people/{personID}/appointments
func (h *AppointmentHandler) ListPersonAppointments(w http.ResponseWriter, r *http.Request) {
	personID, ok := personIDParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "person id must be a positive integer")
		return
	}

	appts, err := h.svc.ListForPerson(r.Context(), personID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "person not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to list appointments")
		return
	}

	writeJSON(w, http.StatusOK, nonNil(appts))
}

// ListAppointments handles GET /appointments
func (h *AppointmentHandler) ListAppointments(w http.ResponseWriter, r *http.Request) {
	appts, err := h.svc.ListAll(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list appointments")
		return
	}
	writeJSON(w, http.StatusOK, nonNil(appts))
}

// ListPeople handles GET /people
func (h *AppointmentHandler) ListPeople(w http.ResponseWriter, r *http.Request) {
	people, err := h.svc.ListPeople(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list people")
		return
	}
	writeJSON(w, http.StatusOK, nonNil(people))
}

// ─── Health check ─────────────────────────────────────────────────────────────

// HealthCheck handles GET /health
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
