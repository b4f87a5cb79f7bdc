package tool

import (
	"testing"
	"time"
)

func TestScanTicketText(t *testing.T) {
	t.Parallel()

	lines := []string{
		"CHINA SOUTHERN AIRLINES",
		"Boarding Pass",
		"Passenger Name: LI/WEI",
		"Flight CZ3456  25MAR",
		"Gate 12  Seat 23A",
		"SZX -> PVG",
	}
	fields := ScanTicketText(lines)
	if fields.FlightNumber != "CZ3456" {
		t.Errorf("flight number = %q, want CZ3456", fields.FlightNumber)
	}
	if fields.PassengerName != "LI/WEI" {
		t.Errorf("passenger name = %q, want LI/WEI", fields.PassengerName)
	}
	if fields.Seat != "23A" {
		t.Errorf("seat = %q, want 23A", fields.Seat)
	}
	if fields.Date != "25MAR" {
		t.Errorf("date = %q, want 25MAR", fields.Date)
	}
}

func TestScanTicketTextLaterLinesWin(t *testing.T) {
	t.Parallel()

	fields := ScanTicketText([]string{"Inbound leg MU0208", "Outbound leg CZ3456"})
	if fields.FlightNumber != "CZ3456" {
		t.Errorf("flight number = %q, want the last match CZ3456", fields.FlightNumber)
	}
}

func TestScanTicketTextEmpty(t *testing.T) {
	t.Parallel()

	fields := ScanTicketText([]string{"", "no flight info here at all"})
	if fields.FlightNumber != "" || fields.Seat != "" {
		t.Errorf("expected empty fields, got %+v", fields)
	}
}

func TestParseTicketDate(t *testing.T) {
	t.Parallel()
	now := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)

	cases := []struct {
		raw  string
		want time.Time
		ok   bool
	}{
		{"25MAR", time.Date(2025, 3, 25, 0, 0, 0, 0, time.UTC), true},
		{"2mar", time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC), true},
		{"2025-04-02", time.Date(2025, 4, 2, 0, 0, 0, 0, time.UTC), true},
		{"02/04/2025", time.Date(2025, 4, 2, 0, 0, 0, 0, time.UTC), true},
		{"", time.Time{}, false},
		{"99MAR", time.Time{}, false},
		{"not a date", time.Time{}, false},
	}
	for _, tc := range cases {
		got, ok := ParseTicketDate(tc.raw, now)
		if ok != tc.ok {
			t.Errorf("%q: ok=%v, want %v", tc.raw, ok, tc.ok)
			continue
		}
		if ok && !got.Equal(tc.want) {
			t.Errorf("%q: got %s, want %s", tc.raw, got, tc.want)
		}
	}
}
