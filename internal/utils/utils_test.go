package utils

import (
	"testing"
	"time"
)

func TestComputeFare(t *testing.T) {
	got := ComputeFare(FareComponents{DistanceKm: 500, Multiplier: 2.5, ReservationCharges: 40, SpecialCharges: 25})
	if got != 815 {
		t.Fatalf("fare = %v, want 815", got)
	}
	if ComputeFare(FareComponents{DistanceKm: 0, Multiplier: 1}) != 0 {
		t.Fatalf("zero distance must not be priced")
	}
}

func TestFormatRupees(t *testing.T) {
	cases := map[float64]string{
		0:         "Rs 0.00",
		850:       "Rs 850.00",
		1234.5:    "Rs 1,234.50",
		123456.5:  "Rs 1,23,456.50",
		-10000000: "-Rs 1,00,00,000.00",
	}
	for in, want := range cases {
		if got := FormatRupees(in); got != want {
			t.Fatalf("FormatRupees(%v) = %q, want %q", in, got, want)
		}
	}
}

func TestSameName(t *testing.T) {
	if !SameName("  meera   Sharma", "Meera Sharma") {
		t.Fatalf("names should match")
	}
	if SameName("Meera", "Meera Sharma") {
		t.Fatalf("partial names must not match")
	}
}

func TestParseDate(t *testing.T) {
	loc := time.FixedZone("IST", 19800)
	d, err := ParseDate("2026-04-02", loc)
	if err != nil {
		t.Fatalf("ParseDate: %v", err)
	}
	if FormatDate(d) != "2026-04-02" || d.Location() != loc {
		t.Fatalf("unexpected date %v", d)
	}
	if _, err := ParseDate("02/04/2026", loc); err == nil {
		t.Fatalf("expected error for bad layout")
	}
}

func TestAgeOn(t *testing.T) {
	dob := time.Date(1990, 6, 15, 0, 0, 0, 0, time.UTC)
	cases := []struct {
		at   time.Time
		want int
	}{
		{time.Date(2026, 6, 14, 0, 0, 0, 0, time.UTC), 35},
		{time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC), 36},
		{time.Date(1989, 1, 1, 0, 0, 0, 0, time.UTC), 0},
	}
	for _, tc := range cases {
		if got := AgeOn(dob, tc.at); got != tc.want {
			t.Fatalf("AgeOn(%v) = %d, want %d", tc.at, got, tc.want)
		}
	}
}
