package tool

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	ticketFlightPattern = regexp.MustCompile(`([A-Z]{2}\d{3,4})`)
	ticketDatePattern   = regexp.MustCompile(`(\d{1,2}(?:JAN|FEB|MAR|APR|MAY|JUN|JUL|AUG|SEP|OCT|NOV|DEC)|\d{4}-\d{2}-\d{2}|\d{2}/\d{2}/\d{4})`)
	ticketSeatPattern   = regexp.MustCompile(`(?:SEAT\s*)?(\d{1,2}[A-Z])\b`)
)

// TicketFields is the raw field set a text scan recovers from an OCR'd
// boarding pass. Missing fields stay empty; the caller decides which ones
// are mandatory.
type TicketFields struct {
	FlightNumber  string
	PassengerName string
	Seat          string
	Date          string
}

// ScanTicketText walks OCR output lines and picks out flight-related fields
// by pattern. Later lines win when a pattern matches more than once, which
// is how real boarding passes behave: the operative leg is printed last.
func ScanTicketText(lines []string) TicketFields {
	var fields TicketFields
	for _, line := range lines {
		line = strings.ToUpper(strings.TrimSpace(line))
		if line == "" {
			continue
		}

		if m := ticketFlightPattern.FindStringSubmatch(line); m != nil {
			fields.FlightNumber = m[1]
		}
		if m := ticketDatePattern.FindStringSubmatch(line); m != nil {
			fields.Date = m[1]
		}
		if strings.Contains(line, "SEAT") {
			if m := ticketSeatPattern.FindStringSubmatch(line); m != nil {
				fields.Seat = m[1]
			}
		}
		if strings.Contains(line, "PASSENGER") || strings.Contains(line, "NAME") {
			name := strings.ReplaceAll(line, "PASSENGER", "")
			name = strings.ReplaceAll(name, "NAME", "")
			name = strings.Trim(name, " :")
			if name != "" {
				fields.PassengerName = strings.Join(strings.Fields(name), " ")
			}
		}
	}
	return fields
}

var shortDatePattern = regexp.MustCompile(`^(\d{1,2})(JAN|FEB|MAR|APR|MAY|JUN|JUL|AUG|SEP|OCT|NOV|DEC)$`)

var monthAbbrev = map[string]time.Month{
	"JAN": time.January, "FEB": time.February, "MAR": time.March,
	"APR": time.April, "MAY": time.May, "JUN": time.June,
	"JUL": time.July, "AUG": time.August, "SEP": time.September,
	"OCT": time.October, "NOV": time.November, "DEC": time.December,
}

// ParseTicketDate resolves a scanned date token to a UTC timestamp. Short
// day-month tokens like 25MAR carry no year and are pinned to the year of
// now.
func ParseTicketDate(raw string, now time.Time) (time.Time, bool) {
	raw = strings.ToUpper(strings.TrimSpace(raw))
	if raw == "" {
		return time.Time{}, false
	}

	if m := shortDatePattern.FindStringSubmatch(raw); m != nil {
		day, err := strconv.Atoi(m[1])
		if err != nil || day < 1 || day > 31 {
			return time.Time{}, false
		}
		return time.Date(now.Year(), monthAbbrev[m[2]], day, 0, 0, 0, 0, time.UTC), true
	}
	for _, layout := range []string{"2006-01-02", "02/01/2006"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
