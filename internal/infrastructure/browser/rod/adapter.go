package rod

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/ysmood/gson"

	"ride-agent/internal/application/port/output"
	"ride-agent/internal/domain/entity"
)

var _ output.BrowserPort = (*BrowserAdapter)(nil)

const (
	defaultTimeout    = 20 * time.Second
	defaultSlowMotion = 300 * time.Millisecond
	maxUIElements     = 500
)

type BrowserAdapter struct {
	browser  *rod.Browser
	launcher *launcher.Launcher
	page     *rod.Page
	timeout  time.Duration
	shotDir  string
	closed   bool
}

type BrowserConfig struct {
	Headless      bool
	SlowMotion    time.Duration
	Timeout       time.Duration
	NoSandbox     bool
	DevTools      bool
	ScreenshotDir string
}

func DefaultConfig() BrowserConfig {
	return BrowserConfig{
		Headless:      true,
		SlowMotion:    defaultSlowMotion,
		Timeout:       defaultTimeout,
		NoSandbox:     false,
		DevTools:      false,
		ScreenshotDir: filepath.Join("log", "screenshots"),
	}
}

func NewBrowserAdapter(ctx context.Context, cfg BrowserConfig) (*BrowserAdapter, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	l := launcher.New().
		Headless(cfg.Headless).
		Devtools(cfg.DevTools)
	if cfg.NoSandbox {
		l = l.NoSandbox(true)
	}

	url, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	browser := rod.New().
		ControlURL(url).
		SlowMotion(cfg.SlowMotion).
		MustConnect()

	page := browser.MustPage("about:blank")

	if cfg.ScreenshotDir != "" {
		if err := os.MkdirAll(cfg.ScreenshotDir, 0755); err != nil {
			browser.Close()
			l.Kill()
			return nil, fmt.Errorf("create screenshot dir: %w", err)
		}
	}

	return &BrowserAdapter{
		browser:  browser,
		launcher: l,
		page:     page,
		timeout:  cfg.Timeout,
		shotDir:  cfg.ScreenshotDir,
	}, nil
}

func (b *BrowserAdapter) Navigate(ctx context.Context, url string) error {
	if err := b.page.Context(ctx).Navigate(url); err != nil {
		return classify(err, "navigate to "+url)
	}
	if err := b.page.Context(ctx).WaitLoad(); err != nil {
		return classify(err, "wait for page load")
	}
	b.page.WaitIdle(5 * time.Second)
	return nil
}

// ReadPage snapshots the current page: cleaned HTML plus the interactive
// elements, which back FindAndClick's visible-text fallback.
func (b *BrowserAdapter) ReadPage(ctx context.Context) (*entity.PageContent, error) {
	info, err := b.page.Info()
	if err != nil {
		return nil, classify(err, "page info")
	}

	body, err := b.page.Context(ctx).Timeout(b.timeout).Element("body")
	if err != nil {
		return nil, classify(err, "body not found")
	}

	rawHTML, err := body.HTML()
	if err != nil {
		return nil, classify(err, "read page html")
	}

	elements, err := b.uiElements(ctx)
	if err != nil {
		elements = nil
	}

	return &entity.PageContent{
		URL:        info.URL,
		Title:      info.Title,
		HTML:       cleanHTML(rawHTML, nil),
		UIElements: elements,
	}, nil
}

// FindAndClick resolves target as a CSS selector, an XPath (leading "/"),
// or finally the visible text of a button or link. The fallback is what
// lets callers pass a human description like "Confirm" when the site gives
// the control no stable selector.
func (b *BrowserAdapter) FindAndClick(ctx context.Context, target string) error {
	el, err := b.findElement(ctx, target)
	if err != nil {
		return err
	}

	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return entity.NewRegistrationError(entity.ErrUnexpectedPageState, "click failed: "+target, err)
	}

	b.page.WaitIdle(2 * time.Second)
	return nil
}

func (b *BrowserAdapter) findElement(ctx context.Context, target string) (*rod.Element, error) {
	page := b.page.Context(ctx).Timeout(b.timeout)

	var el *rod.Element
	var err error
	if strings.HasPrefix(target, "/") {
		el, err = page.ElementX(target)
	} else {
		el, err = page.Element(target)
	}
	if err == nil {
		return el, nil
	}
	if isTimeout(err) && ctx.Err() != nil {
		return nil, classify(err, "find element: "+target)
	}

	if el = b.findByVisibleText(ctx, target); el != nil {
		return el, nil
	}
	return nil, entity.NewRegistrationError(entity.ErrUIElementNotFound, target, err)
}

// findByVisibleText scans clickable elements for a case-insensitive text
// match, preferring exact label equality over containment.
func (b *BrowserAdapter) findByVisibleText(ctx context.Context, label string) *rod.Element {
	elements, err := b.page.Context(ctx).Elements("button, a, input[type='submit'], [role='button']")
	if err != nil {
		return nil
	}

	want := strings.ToLower(strings.TrimSpace(label))
	var contains *rod.Element
	for _, el := range elements {
		if visible, err := el.Visible(); err != nil || !visible {
			continue
		}
		text, _ := el.Text()
		if text == "" {
			if value, err := el.Attribute("value"); err == nil && value != nil {
				text = *value
			}
		}
		text = strings.ToLower(strings.TrimSpace(text))
		if text == want {
			return el
		}
		if contains == nil && text != "" && strings.Contains(text, want) {
			contains = el
		}
	}
	return contains
}

func (b *BrowserAdapter) FillForm(ctx context.Context, fields map[string]string) error {
	for selector, value := range fields {
		el, err := b.page.Context(ctx).Timeout(b.timeout).Element(selector)
		if err != nil {
			return classify(err, "field not found: "+selector)
		}
		if err := el.SelectAllText(); err == nil {
			_ = el.Input("")
		}
		if err := el.Input(value); err != nil {
			return entity.NewRegistrationError(entity.ErrUnexpectedPageState, "input failed: "+selector, err)
		}
	}
	return nil
}

// Screenshot writes a resized JPEG under the screenshot dir and returns its
// path as the artifact reference.
func (b *BrowserAdapter) Screenshot(ctx context.Context, label string) (string, error) {
	imgBytes, err := b.page.Context(ctx).Screenshot(true, &proto.PageCaptureScreenshot{
		Format:  proto.PageCaptureScreenshotFormatJpeg,
		Quality: gson.Int(80),
	})
	if err != nil {
		return "", classify(err, "screenshot")
	}

	img, _, err := image.Decode(bytes.NewReader(imgBytes))
	if err != nil {
		return "", fmt.Errorf("image decode failed: %w", err)
	}

	if img.Bounds().Dx() > 1024 {
		img = imaging.Resize(img, 1024, 0, imaging.Lanczos)
	}

	buf := new(bytes.Buffer)
	if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: 75}); err != nil {
		return "", fmt.Errorf("jpeg encode failed: %w", err)
	}

	path := filepath.Join(b.shotDir, artifactName(label, time.Now()))
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return "", fmt.Errorf("write screenshot: %w", err)
	}
	return path, nil
}

func (b *BrowserAdapter) CurrentURL() string {
	info, err := b.page.Info()
	if err != nil {
		return ""
	}
	return info.URL
}

func (b *BrowserAdapter) Close() {
	if b.closed {
		return
	}
	b.closed = true
	if b.browser != nil {
		_ = b.browser.Close()
	}
	if b.launcher != nil {
		b.launcher.Kill()
		b.launcher.Cleanup()
	}
}

func (b *BrowserAdapter) uiElements(ctx context.Context) ([]entity.UIElement, error) {
	var result []entity.UIElement
	seen := make(map[string]bool)

	add := func(el *rod.Element, typ string) {
		if el == nil || len(result) >= maxUIElements {
			return
		}
		visible, err := el.Visible()
		if err != nil || !visible {
			return
		}

		selector := el.MustElementX("@").String()
		if seen[selector] {
			return
		}
		seen[selector] = true

		text, _ := el.Text()
		aria, _ := el.Attribute("aria-label")

		result = append(result, entity.UIElement{
			ID:        fmt.Sprintf("ui-%04d", len(result)),
			Type:      typ,
			Text:      strings.TrimSpace(text),
			AriaLabel: ptrToString(aria),
			Selector:  selector,
		})
	}

	for _, group := range []struct {
		query string
		typ   string
	}{
		{"button, [role='button']", "button"},
		{"input, textarea", "input"},
		{"a", "link"},
	} {
		elements, err := b.page.Context(ctx).Elements(group.query)
		if err != nil {
			continue
		}
		for _, el := range elements {
			add(el, group.typ)
		}
	}

	return result, nil
}

func artifactName(label string, now time.Time) string {
	safe := strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			return r
		}
		return '_'
	}, label)
	if safe == "" {
		safe = "page"
	}
	return fmt.Sprintf("%s_%s.jpg", safe, now.Format("2006-01-02_15-04-05"))
}

// classify folds rod/context failures into the workflow's error taxonomy:
// deadline expiries are NetworkTimeout, everything that looks like a failed
// lookup is UIElementNotFound.
func classify(err error, detail string) error {
	switch {
	case isTimeout(err):
		return entity.NewRegistrationError(entity.ErrNetworkTimeout, detail, err)
	case strings.Contains(err.Error(), "cannot find") || strings.Contains(err.Error(), "not found"):
		return entity.NewRegistrationError(entity.ErrUIElementNotFound, detail, err)
	default:
		return entity.NewRegistrationError(entity.ErrUnexpectedPageState, detail, err)
	}
}

func isTimeout(err error) bool {
	return errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)
}

func ptrToString(s *string) string {
	if s != nil {
		return *s
	}
	return ""
}
