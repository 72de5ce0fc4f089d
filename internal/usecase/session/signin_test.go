package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ride-agent/internal/application/port/output"
	"ride-agent/internal/domain/entity"
)

type nopLogger struct{}

func (nopLogger) Debug(string, ...any)                          {}
func (nopLogger) Info(string, ...any)                           {}
func (nopLogger) Warn(string, ...any)                           {}
func (nopLogger) Error(string, ...any)                          {}
func (l nopLogger) WithField(string, any) output.LoggerPort     { return l }
func (l nopLogger) WithFields(map[string]any) output.LoggerPort { return l }
func (nopLogger) Close() error                                  { return nil }

type fakeBrowser struct {
	pages       []string // HTML served by successive ReadPage calls
	reads       int
	clicks      []string
	filled      map[string]string
	clickErr    error
	navErr      error
	screenshots int
}

func (b *fakeBrowser) Navigate(ctx context.Context, url string) error { return b.navErr }

func (b *fakeBrowser) ReadPage(ctx context.Context) (*entity.PageContent, error) {
	html := b.pages[len(b.pages)-1]
	if b.reads < len(b.pages) {
		html = b.pages[b.reads]
	}
	b.reads++
	return &entity.PageContent{URL: "https://club.test", HTML: html}, nil
}

func (b *fakeBrowser) FindAndClick(ctx context.Context, target string) error {
	b.clicks = append(b.clicks, target)
	return b.clickErr
}

func (b *fakeBrowser) FillForm(ctx context.Context, fields map[string]string) error {
	b.filled = fields
	return nil
}

func (b *fakeBrowser) Screenshot(ctx context.Context, label string) (string, error) {
	b.screenshots++
	return "log/screenshots/" + label + ".jpg", nil
}

func (b *fakeBrowser) CurrentURL() string { return "https://club.test" }
func (b *fakeBrowser) Close()             {}

func newService(b *fakeBrowser) *Service {
	return New(b, nopLogger{}, Config{
		ClubURL:  "https://club.test",
		Username: "rider",
		Password: "secret",
	})
}

func TestEnsureSignedIn_AlreadyAuthenticated(t *testing.T) {
	browser := &fakeBrowser{pages: []string{`<a href="/logout">Logout</a>`}}

	err := newService(browser).EnsureSignedIn(context.Background())
	require.NoError(t, err)
	assert.Empty(t, browser.clicks, "no login flow should run")
	assert.Nil(t, browser.filled)
}

func TestEnsureSignedIn_PerformsLogin(t *testing.T) {
	browser := &fakeBrowser{pages: []string{
		`<form><input id="username"><input id="password"></form>`,
		`<span>Welcome rider</span><a>Sign Out</a>`,
	}}

	err := newService(browser).EnsureSignedIn(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "rider", browser.filled["#username"])
	assert.Equal(t, "secret", browser.filled["#password"])
	assert.Equal(t, []string{"Log In"}, browser.clicks)
}

func TestEnsureSignedIn_FailureHasArtifactAndKind(t *testing.T) {
	// Login submits but no signed-in marker ever appears.
	browser := &fakeBrowser{pages: []string{
		`<form><input id="username"></form>`,
		`<div>Invalid username or password</div>`,
	}}

	err := newService(browser).EnsureSignedIn(context.Background())
	require.Error(t, err)
	assert.True(t, entity.IsWorkflowError(err, entity.ErrSignInFailed))

	var werr *entity.WorkflowError
	require.ErrorAs(t, err, &werr)
	assert.NotEmpty(t, werr.ArtifactRef)
	assert.Equal(t, 1, browser.screenshots)
}

func TestEnsureSignedIn_ClickFailureSurfacedOnce(t *testing.T) {
	browser := &fakeBrowser{
		pages:    []string{`<form></form>`},
		clickErr: entity.NewRegistrationError(entity.ErrUIElementNotFound, "Log In", nil),
	}

	err := newService(browser).EnsureSignedIn(context.Background())
	require.Error(t, err)
	assert.True(t, entity.IsWorkflowError(err, entity.ErrSignInFailed))
	assert.Len(t, browser.clicks, 1, "sign-in is never retried within a run")
}
