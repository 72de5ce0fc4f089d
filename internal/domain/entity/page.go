package entity

// PageContent is a structured snapshot of the current page: cleaned HTML for
// the calendar parser plus the interactive elements visible on it.
type PageContent struct {
	URL        string
	Title      string
	HTML       string
	UIElements []UIElement
}

type UIElement struct {
	ID        string
	Type      string
	Text      string
	AriaLabel string
	Selector  string
}
