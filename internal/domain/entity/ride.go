package entity

import (
	"strings"
	"time"
)

type RegistrationStatus string

const (
	StatusOpen       RegistrationStatus = "open"
	StatusRegistered RegistrationStatus = "registered"
	StatusFull       RegistrationStatus = "full"
	StatusUnknown    RegistrationStatus = "unknown"
)

// RideListing is one calendar entry as read from a page snapshot.
// Immutable once parsed; a re-read of the page produces fresh listings.
type RideListing struct {
	Title    string
	Date     time.Time // calendar date, time-of-day zeroed
	Time     *ClockTime
	Status   RegistrationStatus
	Selector string // registration control on the calendar page
	PageRank int    // position in page order, breaks chronological ties
}

// ClockTime is a start time within a day. Listings without one sort after
// timed listings on the same date.
type ClockTime struct {
	Hour   int
	Minute int
}

func (c ClockTime) Minutes() int {
	return c.Hour*60 + c.Minute
}

func (c ClockTime) String() string {
	return time.Date(0, 1, 1, c.Hour, c.Minute, 0, 0, time.UTC).Format("15:04")
}

// Before reports whether l starts strictly before other, per the MatchSet
// ordering: ascending (date, time), missing time after timed, then page order.
func (l RideListing) Before(other RideListing) bool {
	if !l.Date.Equal(other.Date) {
		return l.Date.Before(other.Date)
	}
	switch {
	case l.Time != nil && other.Time != nil:
		if l.Time.Minutes() != other.Time.Minutes() {
			return l.Time.Minutes() < other.Time.Minutes()
		}
	case l.Time != nil && other.Time == nil:
		return true
	case l.Time == nil && other.Time != nil:
		return false
	}
	return l.PageRank < other.PageRank
}

// SearchCriterion selects rides by title text within a date window.
type SearchCriterion struct {
	Pattern     string
	ExactMatch  bool
	WindowStart time.Time // inclusive
	WindowEnd   time.Time // inclusive
}

// NewSearchCriterion builds a window of [today, today+days] in local time.
func NewSearchCriterion(pattern string, now time.Time, days int) SearchCriterion {
	start := truncateToDay(now)
	return SearchCriterion{
		Pattern:     pattern,
		WindowStart: start,
		WindowEnd:   start.AddDate(0, 0, days),
	}
}

// Matches reports whether the listing satisfies both the text pattern and the
// date window.
func (c SearchCriterion) Matches(l RideListing) bool {
	if !c.matchesTitle(l.Title) {
		return false
	}
	d := truncateToDay(l.Date)
	return !d.Before(c.WindowStart) && !d.After(c.WindowEnd)
}

func (c SearchCriterion) matchesTitle(title string) bool {
	title = strings.ToLower(strings.TrimSpace(title))
	pattern := strings.ToLower(strings.TrimSpace(c.Pattern))
	if c.ExactMatch {
		return title == pattern
	}
	return strings.Contains(title, pattern)
}

func truncateToDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
