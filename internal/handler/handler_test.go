package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Shivanand-hulikatti/appointment-booking/internal/booking"
	"github.com/Shivanand-hulikatti/appointment-booking/internal/model"
	"github.com/Shivanand-hulikatti/appointment-booking/internal/repository"
	"github.com/Shivanand-hulikatti/appointment-booking/internal/service"
	"go.uber.org/zap"
)

type fakeService struct {
	bookErr   error
	listErr   error
	appts     []model.Appointment
	people    []model.Person
	gotPerson int64
	gotReq    model.BookRequest
	gotWait   bool
}

func (f *fakeService) Book(_ context.Context, personID int64, req model.BookRequest, wait bool) ([]model.Appointment, error) {
	f.gotPerson, f.gotReq, f.gotWait = personID, req, wait
	if f.bookErr != nil {
		return nil, f.bookErr
	}
	return f.appts, nil
}

func (f *fakeService) ListForPerson(_ context.Context, personID int64) ([]model.Appointment, error) {
	f.gotPerson = personID
	return f.appts, f.listErr
}

func (f *fakeService) ListAll(context.Context) ([]model.Appointment, error) {
	return f.appts, f.listErr
}

func (f *fakeService) ListPeople(context.Context) ([]model.Person, error) {
	return f.people, f.listErr
}

func newTestRouter(svc AppointmentService, limiter *RateLimiter) http.Handler {
	return NewRouter(NewAppointmentHandler(svc), zap.NewNop(), limiter)
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

const validBody = `{"title":"standup","start":"2024-07-26T11:00:00Z","end":"2024-07-26T12:00:00Z"}`

func TestBookAppointment(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		body       string
		bookErr    error
		wantStatus int
		wantReason string
	}{
		{"created", "/people/1/appointments", validBody, nil, http.StatusCreated, ""},
		{"bad person id", "/people/abc/appointments", validBody, nil, http.StatusBadRequest, ""},
		{"negative person id", "/people/-2/appointments", validBody, nil, http.StatusBadRequest, ""},
		{"malformed body", "/people/1/appointments", `{"title":`, nil, http.StatusBadRequest, ""},
		{"unknown field", "/people/1/appointments", `{"title":"x","room":"a"}`, nil, http.StatusBadRequest, ""},
		{"validation", "/people/1/appointments", validBody, &service.ValidationError{Message: "start must be before end"}, http.StatusBadRequest, ""},
		{"unknown person", "/people/1/appointments", validBody, repository.ErrNotFound, http.StatusNotFound, ""},
		{"overlap", "/people/1/appointments", validBody, &booking.ConflictError{Reason: booking.ReasonOverlap}, http.StatusConflict, "overlap"},
		{"fatal", "/people/1/appointments", validBody, &booking.FatalError{Op: "commit transaction", Err: errors.New("eof")}, http.StatusInternalServerError, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeService{
				bookErr: tt.bookErr,
				appts:   []model.Appointment{{ID: 1, PersonID: 1, Title: "standup"}},
			}
			rec := do(t, newTestRouter(svc, nil), http.MethodPost, tt.path, tt.body)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if tt.wantStatus == http.StatusCreated {
				var got []model.Appointment
				if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
					t.Fatalf("decode body: %v", err)
				}
				if len(got) != 1 {
					t.Errorf("len(body) = %d, want 1", len(got))
				}
				return
			}
			var resp model.ErrorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode error body: %v", err)
			}
			if resp.Error == "" {
				t.Errorf("error message is empty")
			}
			if resp.Reason != tt.wantReason {
				t.Errorf("reason = %q, want %q", resp.Reason, tt.wantReason)
			}
		})
	}
}

func TestBookAppointmentDecodesRequest(t *testing.T) {
	svc := &fakeService{}
	rec := do(t, newTestRouter(svc, nil), http.MethodPost, "/people/3/appointments?wait=true", validBody)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", rec.Code)
	}
	if svc.gotPerson != 3 || !svc.gotWait || svc.gotReq.Title != "standup" {
		t.Errorf("service got person %d wait %v req %+v", svc.gotPerson, svc.gotWait, svc.gotReq)
	}
	wantStart := time.Date(2024, 7, 26, 11, 0, 0, 0, time.UTC)
	if !svc.gotReq.Start.Equal(wantStart) {
		t.Errorf("start = %v, want %v", svc.gotReq.Start, wantStart)
	}
	if strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Errorf("body = %q, want []", rec.Body.String())
	}
}

func TestListEndpoints(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		listErr    error
		wantStatus int
	}{
		{"person appointments", "/people/1/appointments", nil, http.StatusOK},
		{"person not found", "/people/1/appointments", repository.ErrNotFound, http.StatusNotFound},
		{"person store failure", "/people/1/appointments", errors.New("down"), http.StatusInternalServerError},
		{"all appointments", "/appointments", nil, http.StatusOK},
		{"all appointments failure", "/appointments", errors.New("down"), http.StatusInternalServerError},
		{"people", "/people", nil, http.StatusOK},
		{"health", "/health", nil, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeService{listErr: tt.listErr}
			rec := do(t, newTestRouter(svc, nil), http.MethodGet, tt.path, "")
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestRateLimiter(t *testing.T) {
	limiter := NewRateLimiter(1, 2, zap.NewNop())
	h := newTestRouter(&fakeService{}, limiter)

	var codes []int
	for i := 0; i < 3; i++ {
		codes = append(codes, do(t, h, http.MethodGet, "/appointments", "").Code)
	}
	want := []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}
	for i := range want {
		if codes[i] != want[i] {
			t.Errorf("request %d status = %d, want %d", i, codes[i], want[i])
		}
	}

	// Health is outside the limited group.
	if rec := do(t, h, http.MethodGet, "/health", ""); rec.Code != http.StatusOK {
		t.Errorf("health status = %d, want 200", rec.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	rec := do(t, newTestRouter(&fakeService{}, nil), http.MethodOptions, "/people/1/appointments", "")
	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q, want *", got)
	}
}
