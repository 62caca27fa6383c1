package core

import (
	"fmt"
	"time"
)

// dateLayout is the wire format for dates throughout the API.
const dateLayout = "2006-01-02"

// Window is a half-open UTC time window covering one local day.
type Window struct {
	// Start is the inclusive start of the day in UTC.
	Start time.Time

	// End is the exclusive end of the day in UTC.
	End time.Time
}

// ResolveDayWindow maps a calendar date to the UTC window [Start, End)
// covering that day in the given location.
//
// The window length follows the civil calendar: on daylight saving
// transition days it is 23 or 25 hours, not 24.
//
// Parameters:
//   - date: The day to resolve, formatted YYYY-MM-DD
//   - loc: The timezone the day is anchored in
//
// Returns the window, or an error if the date is malformed.
func ResolveDayWindow(date string, loc *time.Location) (Window, error) {
	day, err := time.ParseInLocation(dateLayout, date, loc)
	if err != nil {
		return Window{}, NewClientError("ResolveDayWindow",
			fmt.Errorf("%w: bad date %q, want YYYY-MM-DD", ErrInvalidInput, date))
	}

	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, loc)
	end := time.Date(day.Year(), day.Month(), day.Day()+1, 0, 0, 0, 0, loc)

	return Window{
		Start: start.UTC(),
		End:   end.UTC(),
	}, nil
}

// ValidateDate checks that date parses as a YYYY-MM-DD calendar date.
func ValidateDate(date string) error {
	if _, err := time.Parse(dateLayout, date); err != nil {
		return NewClientError("ValidateDate",
			fmt.Errorf("%w: bad date %q, want YYYY-MM-DD", ErrInvalidInput, date))
	}
	return nil
}
