package database

import (
	"strings"
	"testing"
)

func TestSeedData(t *testing.T) {
	people := seedData()
	if len(people) != 3 {
		t.Fatalf("len(people) = %d, want 3", len(people))
	}
	for _, p := range people {
		for i, a := range p.appointments {
			if !a.start.Before(a.end) {
				t.Errorf("%s: appointment %q does not start before it ends", p.name, a.title)
			}
			// Seed rows must not overlap each other.
			for _, b := range p.appointments[i+1:] {
				if a.start.Before(b.end) && b.start.Before(a.end) {
					t.Errorf("%s: %q overlaps %q", p.name, a.title, b.title)
				}
			}
		}
	}
}

func TestSchemaIsIdempotent(t *testing.T) {
	for _, stmt := range schema {
		if !strings.Contains(stmt, "IF NOT EXISTS") {
			t.Errorf("statement is not idempotent: %s", stmt)
		}
	}
}
