package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrInvalidRange = errors.New("invalid date range")

// DateRange is an inclusive publication-date window. End is normalized to
// 23:59:59 of the end day.
type DateRange struct {
	Start time.Time
	End   time.Time
}

func NewDateRange(start, end time.Time) (DateRange, error) {
	loc := start.Location()
	s := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, loc)
	e := time.Date(end.Year(), end.Month(), end.Day(), 23, 59, 59, 0, end.Location())
	if s.After(e) {
		return DateRange{}, fmt.Errorf("%w: start %s is after end %s", ErrInvalidRange,
			s.Format(DateLayout), e.Format(DateLayout))
	}
	return DateRange{Start: s, End: e}, nil
}

// ParseDateRange parses two strict dd/mm/yyyy strings in loc.
func ParseDateRange(from, to string, loc *time.Location) (DateRange, error) {
	if loc == nil {
		loc = time.UTC
	}
	s, err := ParseDay(from, loc)
	if err != nil {
		return DateRange{}, fmt.Errorf("%w: fecha_inicio: %v", ErrInvalidRange, err)
	}
	e, err := ParseDay(to, loc)
	if err != nil {
		return DateRange{}, fmt.Errorf("%w: fecha_fin: %v", ErrInvalidRange, err)
	}
	return NewDateRange(s, e)
}

func ParseDay(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if len(s) != len(DateLayout) || s[2] != '/' || s[5] != '/' {
		return time.Time{}, fmt.Errorf("%q is not dd/mm/yyyy", s)
	}
	return time.ParseInLocation(DateLayout, s, loc)
}

// IsNewer reports whether t falls after the window ("too new").
func (r DateRange) IsNewer(t time.Time) bool { return t.After(r.End) }

// IsOlder reports whether t falls before the window ("too old").
func (r DateRange) IsOlder(t time.Time) bool { return t.Before(r.Start) }

func (r DateRange) Contains(t time.Time) bool { return !r.IsNewer(t) && !r.IsOlder(t) }

func (r DateRange) String() string {
	return r.Start.Format(DateLayout) + " - " + r.End.Format(DateLayout)
}
