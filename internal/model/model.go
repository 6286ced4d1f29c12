// Package model defines the core domain types for the appointment booking system.
package model

import "time"

// Person owns a calendar of appointments.
type Person struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Appointment represents one booked interval for a person.
// ID is assigned by the store on insert and never changes afterwards.
type Appointment struct {
	ID       int64     `json:"id"`
	PersonID int64     `json:"person_id"`
	Title    string    `json:"title"`
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
}

// Duration returns the length of the booked interval.
func (a *Appointment) Duration() time.Duration {
	return a.End.Sub(a.Start)
}

// BookRequest is the payload for booking a new appointment.
type BookRequest struct {
	Title string    `json:"title"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// ErrorResponse is a standard JSON error envelope.
type ErrorResponse struct {
	Error  string `json:"error"`
	Reason string `json:"reason,omitempty"`
}
