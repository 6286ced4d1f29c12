package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// schema is applied on every start and must stay idempotent.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS people (
		id   BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
		name TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS appointments (
		id        BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
		person_id BIGINT NOT NULL REFERENCES people (id) ON DELETE CASCADE,
		title     TEXT NOT NULL,
		start_at  TIMESTAMPTZ NOT NULL,
		end_at    TIMESTAMPTZ NOT NULL,
		CHECK (start_at < end_at)
	)`,
	`CREATE INDEX IF NOT EXISTS appointments_person_start_idx
		ON appointments (person_id, start_at)`,
}

// Migrate creates the tables the service needs.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}

type seedPerson struct {
	name         string
	appointments []seedAppointment
}

type seedAppointment struct {
	title      string
	start, end time.Time
}

func seedData() []seedPerson {
	day := time.Date(2024, 7, 20, 0, 0, 0, 0, time.UTC)
	return []seedPerson{
		{
			name: "Alice",
			appointments: []seedAppointment{
				{"Appointment_Alice_1", day.Add(10 * time.Hour), day.Add(11 * time.Hour)},
				{"Appointment_Alice_2", day.Add(12 * time.Hour), day.Add(13 * time.Hour)},
			},
		},
		{name: "Bob"},
		{name: "Charlie"},
	}
}

// Seed inserts demo people and appointments when the people table is empty.
// It reports whether anything was inserted.
func Seed(ctx context.Context, pool *pgxpool.Pool) (bool, error) {
	var count int
	if err := pool.QueryRow(ctx, `SELECT COUNT(*) FROM people`).Scan(&count); err != nil {
		return false, fmt.Errorf("count people: %w", err)
	}
	if count > 0 {
		return false, nil
	}

	err := pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
		for _, p := range seedData() {
			var personID int64
			if err := tx.QueryRow(ctx,
				`INSERT INTO people (name) VALUES ($1) RETURNING id`, p.name,
			).Scan(&personID); err != nil {
				return fmt.Errorf("insert person %s: %w", p.name, err)
			}
			for _, a := range p.appointments {
				if _, err := tx.Exec(ctx,
					`INSERT INTO appointments (person_id, title, start_at, end_at)
					 VALUES ($1, $2, $3, $4)`,
					personID, a.title, a.start, a.end,
				); err != nil {
					return fmt.Errorf("insert appointment %s: %w", a.title, err)
				}
			}
		}
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("seed: %w", err)
	}
	return true, nil
}
