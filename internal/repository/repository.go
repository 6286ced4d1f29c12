// Package repository implements all database queries for the appointment booking system.
// It uses pgx directly (no ORM) for transparency and performance.
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Shivanand-hulikatti/appointment-booking/internal/booking"
	"github.com/Shivanand-hulikatti/appointment-booking/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when a requested resource does not exist.
var ErrNotFound = errors.New("not found")

// SQLSTATE codes PostgreSQL reports when it aborts one of two conflicting
// serializable transactions.
const (
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
)

// IsOverlapConflict reports whether err is PostgreSQL's serialization or
// deadlock failure. Under SERIALIZABLE this is how a lost booking race
// surfaces.
func IsOverlapConflict(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == codeSerializationFailure || pgErr.Code == codeDeadlockDetected
}

const selectAppointments = `SELECT id, person_id, title, start_at, end_at FROM appointments`

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// AppointmentRepository handles persistence for appointments.
type AppointmentRepository struct {
	db *pgxpool.Pool
}

var _ booking.Store = (*AppointmentRepository)(nil)

// NewAppointmentRepository constructs an AppointmentRepository.
func NewAppointmentRepository(db *pgxpool.Pool) *AppointmentRepository {
	return &AppointmentRepository{db: db}
}

// BeginSerializable starts a SERIALIZABLE read-write transaction.
//
// PostgreSQL takes predicate locks on everything the transaction reads.
// When two bookings for the same person both read that person's rows and
// then both insert, the second to commit (or insert) fails with SQLSTATE
// 40001 instead of producing an overlapping pair.
func (r *AppointmentRepository) BeginSerializable(ctx context.Context) (booking.Tx, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   pgx.Serializable,
		AccessMode: pgx.ReadWrite,
	})
	if err != nil {
		return nil, fmt.Errorf("begin serializable transaction: %w", err)
	}
	return &appointmentTx{tx: tx}, nil
}

// ListAppointments returns all appointments of a person ordered by start time.
func (r *AppointmentRepository) ListAppointments(ctx context.Context, personID int64) ([]model.Appointment, error) {
	return queryAppointments(ctx, r.db,
		selectAppointments+` WHERE person_id = $1 ORDER BY start_at ASC, id ASC`,
		personID,
	)
}

// ListAll returns every appointment ordered by person and start time.
func (r *AppointmentRepository) ListAll(ctx context.Context) ([]model.Appointment, error) {
	return queryAppointments(ctx, r.db,
		selectAppointments+` ORDER BY person_id ASC, start_at ASC, id ASC`,
	)
}

// appointmentTx adapts pgx.Tx to booking.Tx.
type appointmentTx struct {
	tx pgx.Tx
}

func (t *appointmentTx) AppointmentsForPerson(ctx context.Context, personID int64) ([]model.Appointment, error) {
	return queryAppointments(ctx, t.tx,
		selectAppointments+` WHERE person_id = $1 ORDER BY start_at ASC, id ASC`,
		personID,
	)
}

func (t *appointmentTx) Insert(ctx context.Context, a *model.Appointment) error {
	err := t.tx.QueryRow(ctx,
		`INSERT INTO appointments (person_id, title, start_at, end_at)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id`,
		a.PersonID, a.Title, a.Start, a.End,
	).Scan(&a.ID)
	if err != nil {
		return fmt.Errorf("insert appointment: %w", err)
	}
	return nil
}

func (t *appointmentTx) Commit(ctx context.Context) error {
	if err := t.tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Rollback is a no-op on an already closed transaction.
func (t *appointmentTx) Rollback(ctx context.Context) error {
	err := t.tx.Rollback(ctx)
	if err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return fmt.Errorf("rollback transaction: %w", err)
	}
	return nil
}

func queryAppointments(ctx context.Context, q querier, sql string, args ...any) ([]model.Appointment, error) {
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	defer rows.Close()

	var appts []model.Appointment
	for rows.Next() {
		var a model.Appointment
		if err := rows.Scan(&a.ID, &a.PersonID, &a.Title, &a.Start, &a.End); err != nil {
			return nil, fmt.Errorf("scan appointment: %w", err)
		}
		a.Start = a.Start.UTC()
		a.End = a.End.UTC()
		appts = append(appts, a)
	}
	return appts, rows.Err()
}

// PersonRepository handles persistence for people.
type PersonRepository struct {
	db *pgxpool.Pool
}

// NewPersonRepository constructs a PersonRepository.
func NewPersonRepository(db *pgxpool.Pool) *PersonRepository {
	return &PersonRepository{db: db}
}

// GetByID returns a single person or ErrNotFound.
func (r *PersonRepository) GetByID(ctx context.Context, id int64) (*model.Person, error) {
	var p model.Person
	err := r.db.QueryRow(ctx,
		`SELECT id, name FROM people WHERE id = $1`,
		id,
	).Scan(&p.ID, &p.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get person: %w", err)
	}
	return &p, nil
}

// List returns all people ordered by id.
func (r *PersonRepository) List(ctx context.Context) ([]model.Person, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name FROM people ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list people: %w", err)
	}
	defer rows.Close()

	var people []model.Person
	for rows.Next() {
		var p model.Person
		if err := rows.Scan(&p.ID, &p.Name); err != nil {
			return nil, fmt.Errorf("scan person: %w", err)
		}
		people = append(people, p)
	}
	return people, rows.Err()
}
