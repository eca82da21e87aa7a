package models

import (
	"testing"
	"time"
)

func TestLifecycleDerivedStatuses(t *testing.T) {
	cases := []struct {
		in     Lifecycle
		ticket TicketStatus
		alloc  AllocationStatus
	}{
		{LifecycleConfirmed, TicketConfirmed, AllocationConfirmed},
		{LifecycleRAC, TicketWaiting, AllocationRAC},
		{LifecycleWaiting, TicketWaiting, AllocationWaiting},
		{LifecycleCancelled, TicketCancelled, AllocationCancelled},
	}
	for _, c := range cases {
		if got := c.in.TicketStatus(); got != c.ticket {
			t.Fatalf("%s ticket status = %s, want %s", c.in, got, c.ticket)
		}
		if got := c.in.AllocationStatus(); got != c.alloc {
			t.Fatalf("%s allocation status = %s, want %s", c.in, got, c.alloc)
		}
		if back := LifecycleOf(c.ticket, c.alloc); back != c.in {
			t.Fatalf("LifecycleOf(%s, %s) = %s, want %s", c.ticket, c.alloc, back, c.in)
		}
	}
}

func TestLifecycleOfDriftedColumns(t *testing.T) {
	if got := LifecycleOf(TicketCancelled, AllocationConfirmed); got != LifecycleCancelled {
		t.Fatalf("cancelled ticket must win, got %s", got)
	}
	if got := LifecycleOf(TicketWaiting, AllocationConfirmed); got != LifecycleConfirmed {
		t.Fatalf("allocation column is authoritative, got %s", got)
	}
}

func TestParseSeatType(t *testing.T) {
	for raw, want := range map[string]SeatType{
		"Lower":      SeatLower,
		"side lower": SeatSideLower,
		"SIDE_UPPER": SeatSideUpper,
		" middle ":   SeatMiddle,
	} {
		got, ok := ParseSeatType(raw)
		if !ok || got != want {
			t.Fatalf("ParseSeatType(%q) = %q, %v", raw, got, ok)
		}
	}
	if _, ok := ParseSeatType("window"); ok {
		t.Fatalf("window must not parse")
	}
}

func TestNewJourneyKeyStripsTime(t *testing.T) {
	loc := time.FixedZone("IST", 19800)
	a := NewJourneyKey(" 12951 ", "NDLS", "BCT", time.Date(2026, 4, 2, 23, 10, 0, 0, loc))
	b := NewJourneyKey("12951", "NDLS", "BCT", time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC))
	if a != b {
		t.Fatalf("keys differ: %v vs %v", a, b)
	}
	if a.Day() != "2026-04-02" {
		t.Fatalf("unexpected day %s", a.Day())
	}
}

func TestDependentFullName(t *testing.T) {
	d := Dependent{FirstName: "Meera", LastName: "Sharma"}
	if d.FullName() != "Meera Sharma" {
		t.Fatalf("got %q", d.FullName())
	}
}
