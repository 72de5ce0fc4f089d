package session

import (
	"context"
	"strings"

	"ride-agent/internal/application/port/output"
	"ride-agent/internal/domain/entity"
	"ride-agent/internal/usecase/workflow"
)

var _ workflow.Session = (*Service)(nil)

type Config struct {
	ClubURL  string
	Username string
	Password string

	// LoginTarget opens the login form when the site hides it behind a
	// link; optional when the form is on the landing page.
	LoginTarget   string
	UsernameField string
	PasswordField string
	SubmitTarget  string

	// SignedInMarkers are case-insensitive text fragments whose presence on
	// the page indicates an authenticated session.
	SignedInMarkers []string
}

func (c Config) withDefaults() Config {
	if c.UsernameField == "" {
		c.UsernameField = "#username"
	}
	if c.PasswordField == "" {
		c.PasswordField = "#password"
	}
	if c.SubmitTarget == "" {
		c.SubmitTarget = "Log In"
	}
	if len(c.SignedInMarkers) == 0 {
		c.SignedInMarkers = []string{"logout", "sign out", "my profile"}
	}
	return c
}

// Service establishes an authenticated club session. It never retries a
// failed login within a run: repeated failed attempts risk a lockout, so
// the failure is surfaced immediately as WorkflowError{SignInFailed}.
type Service struct {
	browser output.BrowserPort
	logger  output.LoggerPort
	cfg     Config
}

func New(browser output.BrowserPort, logger output.LoggerPort, cfg Config) *Service {
	return &Service{browser: browser, logger: logger, cfg: cfg.withDefaults()}
}

// EnsureSignedIn navigates to the club site and verifies the session,
// performing the login flow only when no signed-in marker is present.
// Credentials are never logged.
func (s *Service) EnsureSignedIn(ctx context.Context) error {
	if err := s.browser.Navigate(ctx, s.cfg.ClubURL); err != nil {
		return s.failure(ctx, "navigate to club site: "+err.Error(), err)
	}

	page, err := s.browser.ReadPage(ctx)
	if err != nil {
		return s.failure(ctx, "read landing page: "+err.Error(), err)
	}

	if s.signedIn(page) {
		s.logger.Debug("Session already authenticated", "url", page.URL)
		return nil
	}

	if s.cfg.LoginTarget != "" {
		if err := s.browser.FindAndClick(ctx, s.cfg.LoginTarget); err != nil {
			return s.failure(ctx, "open login form: "+err.Error(), err)
		}
	}

	err = s.browser.FillForm(ctx, map[string]string{
		s.cfg.UsernameField: s.cfg.Username,
		s.cfg.PasswordField: s.cfg.Password,
	})
	if err != nil {
		return s.failure(ctx, "fill login form: "+err.Error(), err)
	}

	if err := s.browser.FindAndClick(ctx, s.cfg.SubmitTarget); err != nil {
		return s.failure(ctx, "submit login form: "+err.Error(), err)
	}

	page, err = s.browser.ReadPage(ctx)
	if err != nil {
		return s.failure(ctx, "read page after login: "+err.Error(), err)
	}
	if !s.signedIn(page) {
		return s.failure(ctx, "no signed-in marker after login submit", nil)
	}

	s.logger.Info("Signed in", "url", page.URL)
	return nil
}

func (s *Service) signedIn(page *entity.PageContent) bool {
	html := strings.ToLower(page.HTML)
	for _, marker := range s.cfg.SignedInMarkers {
		if strings.Contains(html, strings.ToLower(marker)) {
			return true
		}
	}
	for _, el := range page.UIElements {
		text := strings.ToLower(el.Text)
		for _, marker := range s.cfg.SignedInMarkers {
			if strings.Contains(text, strings.ToLower(marker)) {
				return true
			}
		}
	}
	return false
}

func (s *Service) failure(ctx context.Context, detail string, cause error) error {
	werr := entity.NewWorkflowError(entity.ErrSignInFailed, workflow.PhaseSignIn, detail, cause)
	if ref, err := s.browser.Screenshot(ctx, "sign_in_failed"); err == nil {
		werr.ArtifactRef = ref
	}
	return werr
}
