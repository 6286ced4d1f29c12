package booking

import (
	"fmt"
	"strings"

	"github.com/Shivanand-hulikatti/appointment-booking/internal/model"
)

// BoundaryPolicy decides whether two intervals that only touch at an
// endpoint are considered overlapping.
type BoundaryPolicy int

const (
	// Strict treats intervals as half-open: [10:00,11:00) and [11:00,12:00)
	// do not overlap.
	Strict BoundaryPolicy = iota
	// Inclusive treats touching endpoints as an overlap.
	Inclusive
)

// DefaultBoundaryPolicy is used when no policy is configured.
const DefaultBoundaryPolicy = Strict

func (p BoundaryPolicy) String() string {
	switch p {
	case Strict:
		return "strict"
	case Inclusive:
		return "inclusive"
	default:
		return fmt.Sprintf("BoundaryPolicy(%d)", int(p))
	}
}

// ParseBoundaryPolicy parses "strict" or "inclusive". An empty string
// yields DefaultBoundaryPolicy.
func ParseBoundaryPolicy(s string) (BoundaryPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return DefaultBoundaryPolicy, nil
	case "strict":
		return Strict, nil
	case "inclusive":
		return Inclusive, nil
	default:
		return 0, fmt.Errorf("unknown boundary policy %q", s)
	}
}

// Overlaps reports whether a and b conflict under the policy.
// This is the only place the boundary comparison lives.
func (p BoundaryPolicy) Overlaps(a, b model.Appointment) bool {
	if p == Inclusive {
		return !a.Start.After(b.End) && !b.Start.After(a.End)
	}
	return a.Start.Before(b.End) && b.Start.Before(a.End)
}

// firstOverlap returns the first existing appointment that conflicts with
// the candidate, or nil.
func (p BoundaryPolicy) firstOverlap(candidate model.Appointment, existing []model.Appointment) *model.Appointment {
	for i := range existing {
		if existing[i].PersonID != candidate.PersonID {
			continue
		}
		if p.Overlaps(candidate, existing[i]) {
			return &existing[i]
		}
	}
	return nil
}
