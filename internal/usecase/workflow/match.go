package workflow

import (
	"sort"

	"ride-agent/internal/domain/entity"
)

// FindMatches filters listings by the criterion's title pattern and date
// window, sorted ascending by (date, time). Listings without a start time
// sort after timed listings on the same date; page order breaks remaining
// ties. An empty result is not an error.
func FindMatches(listings []entity.RideListing, criterion entity.SearchCriterion) []entity.RideListing {
	var matches []entity.RideListing
	for _, l := range listings {
		if criterion.Matches(l) {
			matches = append(matches, l)
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Before(matches[j])
	})

	return matches
}

// SelectTarget scans matches in chronological order and returns the first
// listing that is still Open. Nil means no action: the caller distinguishes
// NoMatchFound from AlreadyRegisteredNoAction by whether matches was empty.
func SelectTarget(matches []entity.RideListing) *entity.RideListing {
	for i := range matches {
		if matches[i].Status == entity.StatusOpen {
			return &matches[i]
		}
	}
	return nil
}
