// Package session owns the shared browser session used to drive the two
// external systems. One session exists per batch run: a single visible
// browser process with two independent tabs, one on the extraction platform
// and one on the publishing platform. Login is performed by the operator
// inside a bounded wait window; the session never authenticates on its own.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/chromedp/chromedp"
)

// Tab is one navigable browser tab. All pipeline steps against an external
// system run through the tab bound to that system; the two tabs must never
// be driven concurrently.
type Tab struct {
	ctx    context.Context
	cancel context.CancelFunc
}

// Run executes the given browser actions against this tab.
func (t *Tab) Run(actions ...chromedp.Action) error {
	return chromedp.Run(t.ctx, actions...)
}

// Context returns the tab's underlying browser context.
func (t *Tab) Context() context.Context {
	return t.ctx
}

// Session is the shared browser session for one batch run.
type Session struct {
	Extraction *Tab
	Publishing *Tab

	allocCancel context.CancelFunc
	logger      *slog.Logger
	loginWait   time.Duration
}

// NewSession assembles a session over already-opened tabs with the given
// login window. Most callers obtain sessions through Manager.Open, which
// also launches the browser; the constructor exists so the login window can
// be driven directly.
func NewSession(extraction, publishing *Tab, loginWait time.Duration, logger *slog.Logger) *Session {
	return &Session{
		Extraction: extraction,
		Publishing: publishing,
		logger:     logger,
		loginWait:  loginWait,
	}
}

// Manager opens and releases browser sessions from configuration.
type Manager struct {
	cfg    *Config
	logger *slog.Logger
}

// NewManager creates a session Manager.
func NewManager(cfg *Config, logger *slog.Logger) *Manager {
	return &Manager{
		cfg:    cfg,
		logger: logger.With("system", "session"),
	}
}

// Open launches the browser, opens both tabs at their configured entry URLs,
// and then blocks in the operator login window before returning. The session
// is released on every error path; a returned Session must be released by
// the caller via Close.
func (m *Manager) Open(ctx context.Context) (*Session, error) {
	opts := append(
		chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", m.cfg.Headless),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
	)
	if m.cfg.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(m.cfg.ExecPath))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)

	extractionCtx, extractionCancel := chromedp.NewContext(allocCtx)
	extraction := &Tab{ctx: extractionCtx, cancel: extractionCancel}

	// A context derived from a running tab opens a new tab in the same browser.
	publishingCtx, publishingCancel := chromedp.NewContext(extractionCtx)
	publishing := &Tab{ctx: publishingCtx, cancel: publishingCancel}

	s := NewSession(extraction, publishing, m.cfg.LoginWaitDuration(), m.logger)
	s.allocCancel = allocCancel

	if err := extraction.Run(chromedp.Navigate(m.cfg.ExtractionURL)); err != nil {
		s.Close()
		return nil, fmt.Errorf("navigate extraction tab: %w", err)
	}
	if err := publishing.Run(chromedp.Navigate(m.cfg.PublishingURL)); err != nil {
		s.Close()
		return nil, fmt.Errorf("navigate publishing tab: %w", err)
	}

	if err := s.AwaitLogin(ctx); err != nil {
		s.Close()
		return nil, err
	}

	m.logger.Info(
		"session open",
		"extraction_url", m.cfg.ExtractionURL,
		"publishing_url", m.cfg.PublishingURL,
	)

	return s, nil
}

// AwaitLogin blocks for the configured login window so the operator can
// authenticate in both tabs. It returns early only when ctx is cancelled.
func (s *Session) AwaitLogin(ctx context.Context) error {
	if s.loginWait <= 0 {
		return nil
	}

	s.logger.Info("waiting for operator login", "window", s.loginWait)

	timer := time.NewTimer(s.loginWait)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("login wait interrupted: %w", ctx.Err())
	}
}

// Close releases both tabs and the browser process. It is safe to call on a
// partially constructed session and is always safe to call more than once.
func (s *Session) Close() {
	if s == nil {
		return
	}
	if s.Publishing != nil && s.Publishing.cancel != nil {
		s.Publishing.cancel()
	}
	if s.Extraction != nil && s.Extraction.cancel != nil {
		s.Extraction.cancel()
	}
	if s.allocCancel != nil {
		s.allocCancel()
	}
	if s.logger != nil {
		s.logger.Info("session released")
	}
}
