package calendar

import (
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"ride-agent/internal/domain/entity"
	"ride-agent/internal/usecase/workflow"
)

var _ workflow.CalendarParser = (*Parser)(nil)

// SelectorContract pins the page markup the parser depends on. The club
// site documents no stable API, so the contract is configuration: when the
// markup changes, only these values do.
type SelectorContract struct {
	Row      string
	Title    string
	Date     string
	Time     string
	Status   string
	Register string // registration control within a row
}

func DefaultContract() SelectorContract {
	return SelectorContract{
		Row:      ".event-item, tr.event-row",
		Title:    ".event-title",
		Date:     ".event-date",
		Time:     ".event-time",
		Status:   ".event-status",
		Register: "a.register, button.register",
	}
}

var dateLayouts = []string{
	"2006-01-02",
	"01/02/2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"Monday, January 2, 2006",
}

var timeLayouts = []string{
	"3:04 PM",
	"3:04PM",
	"15:04",
}

// Parser extracts RideListing records from a calendar page snapshot.
type Parser struct {
	contract SelectorContract
}

func New(contract SelectorContract) *Parser {
	if contract.Row == "" {
		contract = DefaultContract()
	}
	return &Parser{contract: contract}
}

// Parse reads every event row matching the contract. Rows missing a title
// or a parseable date are skipped; if rows exist but none parse, the page
// markup has drifted from the contract and an error is returned so the
// workflow can flag the calendar as unreadable.
func (p *Parser) Parse(rawHTML string) ([]entity.RideListing, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	rows := doc.Find(p.contract.Row)
	if rows.Length() == 0 {
		return nil, nil
	}

	var listings []entity.RideListing
	rows.Each(func(i int, row *goquery.Selection) {
		listing, ok := p.parseRow(i, row)
		if !ok {
			return
		}
		listings = append(listings, listing)
	})

	if len(listings) == 0 {
		return nil, fmt.Errorf("%d event rows matched %q but none were parseable", rows.Length(), p.contract.Row)
	}
	return listings, nil
}

func (p *Parser) parseRow(rank int, row *goquery.Selection) (entity.RideListing, bool) {
	title := cleanText(row.Find(p.contract.Title).First().Text())
	if title == "" {
		return entity.RideListing{}, false
	}

	date, ok := parseDate(cleanText(row.Find(p.contract.Date).First().Text()))
	if !ok {
		return entity.RideListing{}, false
	}

	listing := entity.RideListing{
		Title:    title,
		Date:     date,
		Time:     parseClock(cleanText(row.Find(p.contract.Time).First().Text())),
		PageRank: rank,
	}

	register := row.Find(p.contract.Register).First()
	statusText := cleanText(row.Find(p.contract.Status).First().Text())
	if statusText == "" {
		// Sites that carry no status cell encode it in the control label.
		statusText = cleanText(register.Text())
	}
	listing.Status = mapStatus(statusText)

	if register.Length() > 0 {
		listing.Selector = selectorFor(register)
	}
	return listing, true
}

// mapStatus folds the site's free-text status vocabulary into the enum.
// Registered phrasings are checked before Open ones: "registered" contains
// "register".
func mapStatus(text string) entity.RegistrationStatus {
	text = strings.ToLower(text)
	switch {
	case text == "":
		return entity.StatusUnknown
	case containsAny(text, "registered", "attending", "signed up", "you are going"):
		return entity.StatusRegistered
	case containsAny(text, "full", "waitlist closed", "sold out", "no spots"):
		return entity.StatusFull
	case containsAny(text, "register", "sign up", "join", "spots left"):
		return entity.StatusOpen
	default:
		return entity.StatusUnknown
	}
}

// selectorFor builds a reference the browser adapter can act on: the
// element id when present, otherwise an absolute XPath. The rod adapter
// routes anything starting with "/" through ElementX.
func selectorFor(sel *goquery.Selection) string {
	if id, ok := sel.Attr("id"); ok && id != "" {
		return "#" + id
	}
	if len(sel.Nodes) == 0 {
		return ""
	}
	return xpathFor(sel.Nodes[0])
}

func xpathFor(n *html.Node) string {
	if n == nil || n.Type != html.ElementNode {
		return ""
	}
	var segments []string
	for cur := n; cur != nil && cur.Type == html.ElementNode; cur = cur.Parent {
		idx := 1
		for sib := cur.PrevSibling; sib != nil; sib = sib.PrevSibling {
			if sib.Type == html.ElementNode && sib.Data == cur.Data {
				idx++
			}
		}
		segments = append([]string{fmt.Sprintf("%s[%d]", cur.Data, idx)}, segments...)
	}
	return "/" + strings.Join(segments, "/")
}

func parseDate(text string) (time.Time, bool) {
	if text == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, text, time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func parseClock(text string) *entity.ClockTime {
	if text == "" {
		return nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, strings.ToUpper(text)); err == nil {
			return &entity.ClockTime{Hour: t.Hour(), Minute: t.Minute()}
		}
	}
	return nil
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
