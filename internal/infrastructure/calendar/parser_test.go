package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ride-agent/internal/domain/entity"
)

const calendarPage = `<!DOCTYPE html>
<html><body>
<div class="calendar">
  <div class="event-item">
    <span class="event-title">Saturday B Ride</span>
    <span class="event-date">2026-06-06</span>
    <span class="event-time">8:30 AM</span>
    <span class="event-status">Register Now</span>
    <a class="register" id="reg-1234" href="/register?id=1234">Register</a>
  </div>
  <div class="event-item">
    <span class="event-title">Sunday A Ride</span>
    <span class="event-date">06/07/2026</span>
    <span class="event-status">You are Registered</span>
  </div>
  <div class="event-item">
    <span class="event-title">Gravel Century</span>
    <span class="event-date">June 9, 2026</span>
    <span class="event-status">Event Full</span>
    <button class="register" disabled>Waitlist</button>
  </div>
</div>
</body></html>`

func TestParse_CalendarPage(t *testing.T) {
	listings, err := New(DefaultContract()).Parse(calendarPage)
	require.NoError(t, err)
	require.Len(t, listings, 3)

	b := listings[0]
	assert.Equal(t, "Saturday B Ride", b.Title)
	assert.Equal(t, time.Date(2026, 6, 6, 0, 0, 0, 0, time.Local), b.Date)
	require.NotNil(t, b.Time)
	assert.Equal(t, 8, b.Time.Hour)
	assert.Equal(t, 30, b.Time.Minute)
	assert.Equal(t, entity.StatusOpen, b.Status)
	assert.Equal(t, "#reg-1234", b.Selector, "element id wins over xpath")
	assert.Equal(t, 0, b.PageRank)

	a := listings[1]
	assert.Equal(t, entity.StatusRegistered, a.Status)
	assert.Nil(t, a.Time, "missing time cell stays nil")
	assert.Empty(t, a.Selector, "registered rows may carry no control")

	full := listings[2]
	assert.Equal(t, entity.StatusFull, full.Status)
	assert.Equal(t, 2, full.PageRank)
}

func TestParse_XPathFallbackForUnnamedControls(t *testing.T) {
	page := `<html><body>
<div class="event-item">
  <span class="event-title">B Ride</span>
  <span class="event-date">2026-06-06</span>
  <a class="register">Sign Up</a>
</div>
</body></html>`

	listings, err := New(DefaultContract()).Parse(page)
	require.NoError(t, err)
	require.Len(t, listings, 1)

	sel := listings[0].Selector
	assert.True(t, len(sel) > 0 && sel[0] == '/', "expected an xpath, got %q", sel)
	assert.Contains(t, sel, "/a[1]")
}

func TestParse_StatusFromControlLabel(t *testing.T) {
	// No status cell: the control label carries the vocabulary.
	page := `<html><body>
<div class="event-item">
  <span class="event-title">B Ride</span>
  <span class="event-date">2026-06-06</span>
  <a class="register">Sign Up</a>
</div>
</body></html>`

	listings, err := New(DefaultContract()).Parse(page)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusOpen, listings[0].Status)
}

func TestParse_SkipsMalformedRows(t *testing.T) {
	page := `<html><body>
<div class="event-item"><span class="event-title">No Date Ride</span></div>
<div class="event-item">
  <span class="event-title">B Ride</span>
  <span class="event-date">2026-06-06</span>
  <span class="event-status">Register</span>
</div>
</body></html>`

	listings, err := New(DefaultContract()).Parse(page)
	require.NoError(t, err)
	require.Len(t, listings, 1)
	assert.Equal(t, "B Ride", listings[0].Title)
	assert.Equal(t, 1, listings[0].PageRank, "page rank counts skipped rows")
}

func TestParse_AllRowsMalformedIsContractDrift(t *testing.T) {
	page := `<html><body>
<div class="event-item"><h3>B Ride</h3><p>2026-06-06</p></div>
</body></html>`

	_, err := New(DefaultContract()).Parse(page)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "none were parseable")
}

func TestParse_NoRowsIsEmptyNotError(t *testing.T) {
	listings, err := New(DefaultContract()).Parse(`<html><body><p>Nothing scheduled.</p></body></html>`)
	require.NoError(t, err)
	assert.Empty(t, listings)
}

func TestMapStatus_Vocabulary(t *testing.T) {
	cases := []struct {
		text string
		want entity.RegistrationStatus
	}{
		{"Register Now", entity.StatusOpen},
		{"Sign Up", entity.StatusOpen},
		{"3 spots left", entity.StatusOpen},
		{"You are Registered", entity.StatusRegistered},
		{"Attending", entity.StatusRegistered},
		{"Event Full", entity.StatusFull},
		{"Waitlist closed", entity.StatusFull},
		{"", entity.StatusUnknown},
		{"Members only", entity.StatusUnknown},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, mapStatus(tc.text), "status text %q", tc.text)
	}
}
