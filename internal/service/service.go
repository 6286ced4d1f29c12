// Package service implements business logic, validation, and orchestration
// between HTTP handlers, the booking coordinator and the repository layer.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Shivanand-hulikatti/appointment-booking/internal/booking"
	"github.com/Shivanand-hulikatti/appointment-booking/internal/cache"
	"github.com/Shivanand-hulikatti/appointment-booking/internal/model"
	"github.com/Shivanand-hulikatti/appointment-booking/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const maxTitleLength = 200

// ValidationError is returned for a malformed booking request.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// Booker runs the booking protocol.
type Booker interface {
	Book(ctx context.Context, candidate model.Appointment) ([]model.Appointment, error)
}

// AppointmentReader serves appointment reads outside any booking.
type AppointmentReader interface {
	ListAppointments(ctx context.Context, personID int64) ([]model.Appointment, error)
	ListAll(ctx context.Context) ([]model.Appointment, error)
}

// PersonReader looks people up.
type PersonReader interface {
	GetByID(ctx context.Context, id int64) (*model.Person, error)
	List(ctx context.Context) ([]model.Person, error)
}

// Options tunes an AppointmentService.
type Options struct {
	// AllowWait lets a request ask for WaitDelay between the overlap check
	// and the insert.
	AllowWait bool
	WaitDelay time.Duration
}

// AppointmentService orchestrates appointment operations.
type AppointmentService struct {
	booker       Booker
	appointments AppointmentReader
	people       PersonReader
	cache        cache.AppointmentCache
	logger       *zap.Logger
	opts         Options
}

// NewAppointmentService constructs an AppointmentService with its dependencies.
// A nil cache disables caching.
func NewAppointmentService(
	booker Booker,
	appointments AppointmentReader,
	people PersonReader,
	c cache.AppointmentCache,
	logger *zap.Logger,
	opts Options,
) *AppointmentService {
	if c == nil {
		c = cache.Noop{}
	}
	return &AppointmentService{
		booker:       booker,
		appointments: appointments,
		people:       people,
		cache:        c,
		logger:       logger,
		opts:         opts,
	}
}

// Book validates the request and books it for the person. wait asks for the
// configured demo delay and is ignored unless Options.AllowWait is set.
func (s *AppointmentService) Book(ctx context.Context, personID int64, req model.BookRequest, wait bool) ([]model.Appointment, error) {
	req.Title = strings.TrimSpace(req.Title)
	if err := validate(personID, req); err != nil {
		return nil, err
	}
	if _, err := s.people.GetByID(ctx, personID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("get person: %w", err)
	}

	attemptID := uuid.NewString()
	ctx = withAttemptID(ctx, attemptID)
	if wait && s.opts.AllowWait {
		ctx = booking.WithCheckDelay(ctx, s.opts.WaitDelay)
	}

	candidate := model.Appointment{
		PersonID: personID,
		Title:    req.Title,
		Start:    req.Start.UTC(),
		End:      req.End.UTC(),
	}
	log := s.logger.With(
		zap.String("attempt_id", attemptID),
		zap.Int64("person_id", personID),
		zap.Time("start", candidate.Start),
		zap.Duration("duration", candidate.Duration()),
	)

	list, err := s.booker.Book(ctx, candidate)

	var conflict *booking.ConflictError
	switch {
	case err == nil:
		log.Info("appointment booked", zap.Int("appointments", len(list)))
		s.invalidate(ctx, personID)
		return list, nil
	case errors.As(err, &conflict):
		log.Info("appointment rejected", zap.String("reason", conflict.Reason))
		s.invalidate(ctx, personID)
		return nil, err
	default:
		log.Error("appointment booking failed", zap.Error(err))
		return nil, err
	}
}

// ListForPerson returns a person's appointments, from the cache when possible.
func (s *AppointmentService) ListForPerson(ctx context.Context, personID int64) ([]model.Appointment, error) {
	if _, err := s.people.GetByID(ctx, personID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("get person: %w", err)
	}

	if appts, ok, err := s.cache.Get(ctx, personID); err != nil {
		s.logger.Warn("appointment cache read failed", zap.Int64("person_id", personID), zap.Error(err))
	} else if ok {
		return appts, nil
	}

	appts, err := s.appointments.ListAppointments(ctx, personID)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	if err := s.cache.Set(ctx, personID, appts); err != nil {
		s.logger.Warn("appointment cache write failed", zap.Int64("person_id", personID), zap.Error(err))
	}
	return appts, nil
}

// ListAll returns every appointment.
func (s *AppointmentService) ListAll(ctx context.Context) ([]model.Appointment, error) {
	return s.appointments.ListAll(ctx)
}

// ListPeople returns every person.
func (s *AppointmentService) ListPeople(ctx context.Context) ([]model.Person, error) {
	return s.people.List(ctx)
}

func (s *AppointmentService) invalidate(ctx context.Context, personID int64) {
	if err := s.cache.Invalidate(context.WithoutCancel(ctx), personID); err != nil {
		s.logger.Warn("appointment cache invalidate failed", zap.Int64("person_id", personID), zap.Error(err))
	}
}

func validate(personID int64, req model.BookRequest) error {
	if personID <= 0 {
		return invalid("person id must be a positive integer")
	}
	if req.Title == "" {
		return invalid("title is required")
	}
	if utf8.RuneCountInString(req.Title) > maxTitleLength {
		return invalid("title cannot exceed %d characters", maxTitleLength)
	}
	if req.Start.IsZero() || req.End.IsZero() {
		return invalid("start and end are required")
	}
	if !req.Start.Before(req.End) {
		return invalid("start must be before end")
	}
	return nil
}
