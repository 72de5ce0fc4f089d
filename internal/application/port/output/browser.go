package output

import (
	"context"

	"ride-agent/internal/domain/entity"
)

// BrowserPort abstracts page navigation and interaction. Implementations
// must classify failures so the workflow can distinguish a timeout from a
// missing element: return *entity.RegistrationError with kind
// NetworkTimeout or UIElementNotFound.
type BrowserPort interface {
	Navigate(ctx context.Context, url string) error

	// ReadPage returns a structured snapshot of the current page.
	ReadPage(ctx context.Context) (*entity.PageContent, error)

	// FindAndClick accepts a CSS/XPath selector, or falls back to matching
	// the visible text of an interactive element when target is not a
	// selector hit.
	FindAndClick(ctx context.Context, target string) error

	// FillForm fills the named fields and leaves submission to the caller.
	FillForm(ctx context.Context, fields map[string]string) error

	// Screenshot captures the viewport and returns an artifact reference
	// (a file path under the screenshots directory).
	Screenshot(ctx context.Context, label string) (string, error)

	CurrentURL() string
	Close()
}
