// Package week resolves the half-open calendar week a run summarizes.
package week

import (
	"errors"
	"fmt"
	"time"
)

// DateLayout is the YYYY-MM-DD layout used for week labels and file names.
const DateLayout = "2006-01-02"

// ErrInvalidDate is returned for week starts not in YYYY-MM-DD form.
var ErrInvalidDate = errors.New("invalid date format")

// Window is a half-open range [Start, End) of UTC midnights.
type Window struct {
	Start time.Time
	End   time.Time
}

// LastWeek returns Monday..Monday of the week before the one containing ref.
func LastWeek(ref time.Time) Window {
	ref = ref.UTC()
	daysSinceMonday := (int(ref.Weekday()) + 6) % 7
	thisMonday := midnight(ref.AddDate(0, 0, -daysSinceMonday))
	return Window{Start: thisMonday.AddDate(0, 0, -7), End: thisMonday}
}

// Starting parses a YYYY-MM-DD date and returns the seven days from it.
func Starting(date string) (Window, error) {
	start, err := time.Parse(DateLayout, date)
	if err != nil {
		return Window{}, fmt.Errorf("%w %q, use YYYY-MM-DD", ErrInvalidDate, date)
	}
	return Window{Start: start, End: start.AddDate(0, 0, 7)}, nil
}

// Resolve returns Starting(date) when date is set, otherwise LastWeek(now).
func Resolve(date string, now time.Time) (Window, error) {
	if date == "" {
		return LastWeek(now), nil
	}
	return Starting(date)
}

// Contains reports whether t falls in [Start, End).
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// StartLabel is the first day as YYYY-MM-DD.
func (w Window) StartLabel() string {
	return w.Start.Format(DateLayout)
}

// EndLabel is the last included day as YYYY-MM-DD.
func (w Window) EndLabel() string {
	return w.End.AddDate(0, 0, -1).Format(DateLayout)
}

// Display formats the window for humans, e.g. "Feb 09 - Feb 15, 2026".
func (w Window) Display() string {
	last := w.End.AddDate(0, 0, -1)
	return fmt.Sprintf("%s - %s", w.Start.Format("Jan 02"), last.Format("Jan 02, 2006"))
}

// DisplayLabel formats a YYYY-MM-DD week start the same way as Display.
// Unparsable labels are returned unchanged.
func DisplayLabel(weekStart string) string {
	w, err := Starting(weekStart)
	if err != nil {
		return weekStart
	}
	return w.Display()
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
