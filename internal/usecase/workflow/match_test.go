package workflow

import (
	"testing"
	"time"

	"ride-agent/internal/domain/entity"
)

func listingDay(offset int) time.Time {
	base := time.Date(2026, 6, 1, 0, 0, 0, 0, time.Local)
	return base.AddDate(0, 0, offset)
}

func criterionFor(pattern string, days int) entity.SearchCriterion {
	return entity.NewSearchCriterion(pattern, listingDay(0), days)
}

func TestFindMatches_FiltersTitleAndWindow(t *testing.T) {
	listings := []entity.RideListing{
		{Title: "B Ride", Date: listingDay(3), Status: entity.StatusOpen},
		{Title: "A Ride", Date: listingDay(3), Status: entity.StatusOpen},
		{Title: "B Ride", Date: listingDay(12), Status: entity.StatusOpen},
		{Title: "Sunday B Ride", Date: listingDay(1), Status: entity.StatusOpen},
	}

	matches := FindMatches(listings, criterionFor("B Ride", 10))

	if len(matches) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(matches))
	}
	for _, m := range matches {
		if m.Title == "A Ride" {
			t.Error("non-matching title included")
		}
		if m.Date.After(listingDay(10)) {
			t.Error("listing outside date window included")
		}
	}
}

func TestFindMatches_SortsChronologically(t *testing.T) {
	listings := []entity.RideListing{
		{Title: "B Ride", Date: listingDay(5), PageRank: 0},
		{Title: "B Ride", Date: listingDay(1), Time: &entity.ClockTime{Hour: 14}, PageRank: 1},
		{Title: "B Ride", Date: listingDay(1), Time: &entity.ClockTime{Hour: 9}, PageRank: 2},
		{Title: "B Ride", Date: listingDay(1), PageRank: 3}, // untimed sorts last on the day
	}

	matches := FindMatches(listings, criterionFor("B Ride", 10))

	if len(matches) != 4 {
		t.Fatalf("expected 4 matches, got %d", len(matches))
	}

	wantRanks := []int{2, 1, 3, 0}
	for i, want := range wantRanks {
		if matches[i].PageRank != want {
			t.Errorf("position %d: got listing with page rank %d, want %d", i, matches[i].PageRank, want)
		}
	}
}

func TestFindMatches_EmptyResultIsNotError(t *testing.T) {
	matches := FindMatches(nil, criterionFor("B Ride", 10))
	if len(matches) != 0 {
		t.Fatalf("expected no matches, got %d", len(matches))
	}
}

func TestFindMatches_Deterministic(t *testing.T) {
	listings := []entity.RideListing{
		{Title: "B Ride", Date: listingDay(2), PageRank: 0},
		{Title: "B Ride", Date: listingDay(1), PageRank: 1},
		{Title: "B Ride", Date: listingDay(4), PageRank: 2},
	}
	c := criterionFor("B Ride", 10)

	first := FindMatches(listings, c)
	for i := 0; i < 5; i++ {
		again := FindMatches(listings, c)
		if len(again) != len(first) {
			t.Fatalf("run %d: length changed from %d to %d", i, len(first), len(again))
		}
		for j := range first {
			if again[j].PageRank != first[j].PageRank {
				t.Fatalf("run %d: order changed at position %d", i, j)
			}
		}
	}
}

func TestSelectTarget_FirstOpenChronologically(t *testing.T) {
	matches := FindMatches([]entity.RideListing{
		{Title: "B Ride", Date: listingDay(1), Status: entity.StatusOpen},
		{Title: "B Ride", Date: listingDay(3), Status: entity.StatusRegistered},
	}, criterionFor("B Ride", 10))

	target := SelectTarget(matches)
	if target == nil {
		t.Fatal("expected a target")
	}
	if !target.Date.Equal(listingDay(1)) {
		t.Errorf("expected the day+1 listing, got %s", target.Date.Format("2006-01-02"))
	}
}

func TestSelectTarget_SkipsRegisteredToLaterOpen(t *testing.T) {
	matches := FindMatches([]entity.RideListing{
		{Title: "B Ride", Date: listingDay(1), Status: entity.StatusRegistered},
		{Title: "B Ride", Date: listingDay(3), Status: entity.StatusOpen},
	}, criterionFor("B Ride", 10))

	target := SelectTarget(matches)
	if target == nil {
		t.Fatal("expected a target")
	}
	if !target.Date.Equal(listingDay(3)) {
		t.Errorf("expected the day+3 listing (first Open), got %s", target.Date.Format("2006-01-02"))
	}
}

func TestSelectTarget_NothingWhenAllClosed(t *testing.T) {
	matches := []entity.RideListing{
		{Title: "B Ride", Date: listingDay(1), Status: entity.StatusRegistered},
		{Title: "B Ride", Date: listingDay(2), Status: entity.StatusFull},
		{Title: "B Ride", Date: listingDay(3), Status: entity.StatusUnknown},
	}

	if target := SelectTarget(matches); target != nil {
		t.Errorf("expected no target, got %q", target.Title)
	}
	if target := SelectTarget(nil); target != nil {
		t.Error("expected no target for empty match set")
	}
}
