// Package booking implements the conflict-detection-and-commit protocol that
// books an appointment without letting two appointments of the same person
// overlap.
//
// Mutual exclusion is delegated entirely to the store's serializable
// transactions. Two concurrent bookings may both pass the overlap check on
// their own snapshots; the store then fails one of them with a
// serialization or deadlock error, which is reported to the caller exactly
// like an overlap found by the check.
package booking

import (
	"context"
	"time"

	"github.com/Shivanand-hulikatti/appointment-booking/internal/model"
)

// Tx is a serializable transaction on the appointment store.
type Tx interface {
	AppointmentsForPerson(ctx context.Context, personID int64) ([]model.Appointment, error)
	// Insert persists a and sets a.ID to the store-assigned identity.
	Insert(ctx context.Context, a *model.Appointment) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// Store opens serializable transactions and serves plain reads.
type Store interface {
	BeginSerializable(ctx context.Context) (Tx, error)
	ListAppointments(ctx context.Context, personID int64) ([]model.Appointment, error)
}

// ConflictClassifier reports whether a store error is a serialization or
// deadlock failure between concurrent transactions.
type ConflictClassifier func(err error) bool

// Observer is notified of every phase an attempt enters.
type Observer func(ctx context.Context, p Phase)

// Config tunes a Coordinator. The zero value is usable.
type Config struct {
	Policy BoundaryPolicy
	// CheckDelay pauses between the overlap check and acting on its result.
	// It only widens the race window and is zero in normal operation.
	CheckDelay time.Duration
	Observer   Observer
}

// Coordinator runs booking attempts. It holds no per-attempt state and is
// safe for concurrent use.
type Coordinator struct {
	store             Store
	isOverlapConflict ConflictClassifier
	cfg               Config
}

// NewCoordinator constructs a Coordinator. classify must recognise the
// store's serialization/deadlock signature.
func NewCoordinator(store Store, classify ConflictClassifier, cfg Config) *Coordinator {
	if classify == nil {
		classify = func(error) bool { return false }
	}
	return &Coordinator{store: store, isOverlapConflict: classify, cfg: cfg}
}

// Policy returns the boundary policy in use.
func (c *Coordinator) Policy() BoundaryPolicy {
	return c.cfg.Policy
}

// Book inserts candidate unless it overlaps an existing appointment of the
// same person, and returns that person's appointments after the commit.
//
// The returned error is a *ConflictError when the interval is taken, and a
// *FatalError for every other failure. Nothing is retried. On any error the
// transaction has been rolled back before Book returns.
//
// candidate.Start must be before candidate.End.
func (c *Coordinator) Book(ctx context.Context, candidate model.Appointment) ([]model.Appointment, error) {
	c.enter(ctx, PhaseStarted)

	tx, err := c.store.BeginSerializable(ctx)
	if err != nil {
		return nil, c.fail(ctx, "begin transaction", err)
	}

	committed := false
	defer func() {
		if !committed {
			// The caller's context may already be cancelled.
			_ = tx.Rollback(context.WithoutCancel(ctx))
		}
	}()

	c.enter(ctx, PhaseChecking)
	existing, err := tx.AppointmentsForPerson(ctx, candidate.PersonID)
	if err != nil {
		return nil, c.fail(ctx, "check overlap", err)
	}
	hit := c.cfg.Policy.firstOverlap(candidate, existing)

	if err := sleep(ctx, c.checkDelay(ctx)); err != nil {
		return nil, c.fail(ctx, "check overlap", err)
	}
	if hit != nil {
		c.enter(ctx, PhaseAbortedConflict)
		return nil, overlapConflict()
	}

	c.enter(ctx, PhaseInserting)
	if err := tx.Insert(ctx, &candidate); err != nil {
		return nil, c.fail(ctx, "insert appointment", err)
	}

	c.enter(ctx, PhaseCommitting)
	if err := tx.Commit(ctx); err != nil {
		return nil, c.fail(ctx, "commit transaction", err)
	}
	committed = true
	c.enter(ctx, PhaseCommitted)

	list, err := c.store.ListAppointments(ctx, candidate.PersonID)
	if err != nil {
		return nil, &FatalError{Op: "read back appointments", Err: err}
	}
	return list, nil
}

// fail maps a store error to the attempt's terminal error.
func (c *Coordinator) fail(ctx context.Context, op string, err error) error {
	if c.isOverlapConflict(err) {
		c.enter(ctx, PhaseAbortedConflict)
		return overlapConflict()
	}
	c.enter(ctx, PhaseAbortedFatal)
	return &FatalError{Op: op, Err: err}
}

func (c *Coordinator) enter(ctx context.Context, p Phase) {
	if c.cfg.Observer != nil {
		c.cfg.Observer(ctx, p)
	}
}

func (c *Coordinator) checkDelay(ctx context.Context) time.Duration {
	if d, ok := CheckDelayFrom(ctx); ok {
		return d
	}
	return c.cfg.CheckDelay
}

type checkDelayKey struct{}

// WithCheckDelay overrides Config.CheckDelay for bookings made with the
// returned context.
func WithCheckDelay(ctx context.Context, d time.Duration) context.Context {
	return context.WithValue(ctx, checkDelayKey{}, d)
}

// CheckDelayFrom returns the delay set by WithCheckDelay.
func CheckDelayFrom(ctx context.Context) (time.Duration, bool) {
	d, ok := ctx.Value(checkDelayKey{}).(time.Duration)
	return d, ok
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
