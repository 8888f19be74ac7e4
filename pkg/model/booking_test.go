package model

import (
	"testing"
	"time"
)

func TestGroundTypeValid(t *testing.T) {
	for _, g := range []GroundType{GroundCricket, GroundFootball} {
		if !g.Valid() {
			t.Errorf("expected %q to be valid", g)
		}
	}
	for _, g := range []GroundType{"", "tennis", "Cricket"} {
		if g.Valid() {
			t.Errorf("expected %q to be invalid", g)
		}
	}
}

func TestBookingStatusTerminal(t *testing.T) {
	if StatusPending.Terminal() {
		t.Error("pending must not be terminal")
	}
	if !StatusApproved.Terminal() {
		t.Error("approved must be terminal")
	}
	if !StatusRejected.Terminal() {
		t.Error("rejected must be terminal")
	}
}

func TestOutcomeStatus(t *testing.T) {
	if got := OutcomeApprove.Status(); got != StatusApproved {
		t.Errorf("approve outcome maps to %q, want %q", got, StatusApproved)
	}
	if got := OutcomeReject.Status(); got != StatusRejected {
		t.Errorf("reject outcome maps to %q, want %q", got, StatusRejected)
	}
	if Outcome("approved").Valid() {
		t.Error("past-tense outcome must be invalid")
	}
}

func TestSlotCatalog(t *testing.T) {
	cricket := SlotCatalog(GroundCricket)
	if len(cricket) != 1 || cricket[0] != "09:00 AM - 05:00 PM" {
		t.Errorf("unexpected cricket catalog: %v", cricket)
	}

	football := SlotCatalog(GroundFootball)
	want := []string{"07:00 AM - 10:00 AM", "10:00 AM - 01:00 PM", "02:00 PM - 05:00 PM"}
	if len(football) != len(want) {
		t.Fatalf("unexpected football catalog length: %v", football)
	}
	for i := range want {
		if football[i] != want[i] {
			t.Errorf("football[%d] = %q, want %q", i, football[i], want[i])
		}
	}

	// Mutating the returned slice must not leak into the catalog.
	football[0] = "mutated"
	if got := SlotCatalog(GroundFootball)[0]; got != want[0] {
		t.Errorf("catalog mutated through returned copy: %q", got)
	}
}

func TestInCatalog(t *testing.T) {
	if !InCatalog(GroundFootball, "10:00 AM - 01:00 PM") {
		t.Error("expected slot to belong to football catalog")
	}
	if InCatalog(GroundCricket, "07:00 AM - 10:00 AM") {
		t.Error("football slot must not belong to cricket catalog")
	}
	if InCatalog(GroundFootball, "") {
		t.Error("empty slot must not belong to any catalog")
	}
}

func TestCivilDate(t *testing.T) {
	d := time.Date(2024, 1, 31, 23, 30, 0, 0, time.UTC)
	if got := CivilDate(d); got != "2024-01-31" {
		t.Errorf("CivilDate = %q, want 2024-01-31", got)
	}
}

func TestSameCivilDateIgnoresTimeOfDay(t *testing.T) {
	morning := time.Date(2024, 5, 12, 8, 0, 0, 0, time.UTC)
	night := time.Date(2024, 5, 12, 23, 59, 59, 0, time.UTC)
	nextDay := time.Date(2024, 5, 13, 0, 0, 0, 0, time.UTC)

	if !SameCivilDate(morning, night) {
		t.Error("same calendar day with different times must match")
	}
	if SameCivilDate(night, nextDay) {
		t.Error("adjacent days must not match")
	}
}

func TestParseCivilDate(t *testing.T) {
	d, err := ParseCivilDate("2024-02-29")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Year() != 2024 || d.Month() != time.February || d.Day() != 29 {
		t.Errorf("parsed wrong date: %v", d)
	}

	if _, err := ParseCivilDate("29-02-2024"); err == nil {
		t.Error("expected error for non-canonical layout")
	}
	if _, err := ParseCivilDate(""); err == nil {
		t.Error("expected error for empty input")
	}
}
