package browser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
)

// DefaultUserAgent is the desktop browser identity presented to auction sites.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// ErrNoElement is returned when a selector matches nothing.
var ErrNoElement = errors.New("element not found")

// Page is the capability set extractors need from a rendered page. Only
// selectors and indices cross this boundary; all parsing happens in Go on
// the HTML it returns.
type Page interface {
	Navigate(ctx context.Context, url string) error
	URL() string
	HTML() (string, error)
	WaitElement(selector string, timeout time.Duration) error
	Count(selector string) (int, error)
	ScrollIntoView(selector string, index int) error
	OuterHTML(selector string, index int) (string, error)
	// BackgroundImages returns the computed background-image values of
	// every element matching any of the selectors.
	BackgroundImages(selectors []string) ([]string, error)
	// ClickAndWaitNavigation clicks the first match and waits for the
	// resulting navigation, returning the new URL.
	ClickAndWaitNavigation(selector string, timeout time.Duration) (string, error)
	SetCookies(cookies []Cookie) error
}

// Launcher starts an isolated browser session.
type Launcher interface {
	Launch(ctx context.Context) (*Session, error)
}

// Session owns one browser and its single page. Close is idempotent and
// must be deferred by whoever launched the session.
type Session struct {
	Page Page

	once     sync.Once
	closeErr error
	closer   func() error
}

func NewSession(page Page, closer func() error) *Session {
	return &Session{Page: page, closer: closer}
}

func (s *Session) Close() error {
	s.once.Do(func() {
		if s.closer != nil {
			s.closeErr = s.closer()
		}
	})
	return s.closeErr
}

// Config controls how Chromium is started.
type Config struct {
	Headless          bool
	Bin               string
	UserAgent         string
	NavigationTimeout time.Duration
}

func DefaultConfig() Config {
	return Config{
		Headless:          true,
		UserAgent:         DefaultUserAgent,
		NavigationTimeout: 60 * time.Second,
	}
}

// RodLauncher launches a stealth Chromium page through go-rod.
type RodLauncher struct {
	cfg Config
}

func NewRodLauncher(cfg Config) *RodLauncher {
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.NavigationTimeout <= 0 {
		cfg.NavigationTimeout = 60 * time.Second
	}
	return &RodLauncher{cfg: cfg}
}

func (r *RodLauncher) Launch(ctx context.Context) (*Session, error) {
	l := launcher.New().
		Headless(r.cfg.Headless).
		Set("no-sandbox").
		Set("disable-setuid-sandbox").
		Set("disable-blink-features", "AutomationControlled").
		Set("disable-dev-shm-usage").
		Set("window-size", "1920,1080").
		Set("user-agent", r.cfg.UserAgent)

	if bin := findChromiumPath(r.cfg.Bin); bin != "" {
		slog.Debug("🔍 using chromium", "path", bin)
		l = l.Bin(bin)
	}

	if isDockerEnvironment() {
		slog.Debug("🐳 docker environment detected, applying container flags")
		l = l.Set("no-first-run").
			Set("disable-default-apps").
			Set("disable-gpu")
	}

	controlURL, err := l.Context(ctx).Launch()
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	b := rod.New().ControlURL(controlURL)
	if err := b.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("connect to browser: %w", err)
	}

	closeAll := func() error {
		err := b.Close()
		l.Kill()
		return err
	}

	p, err := stealth.Page(b)
	if err != nil {
		_ = closeAll()
		return nil, fmt.Errorf("open page: %w", err)
	}
	if err := p.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: r.cfg.UserAgent}); err != nil {
		_ = closeAll()
		return nil, fmt.Errorf("set user agent: %w", err)
	}

	slog.Info("✅ Browser initialized")
	return NewSession(&rodPage{page: p, navTimeout: r.cfg.NavigationTimeout}, closeAll), nil
}

// findChromiumPath prefers an explicit binary, then CHROME_BIN, then common install paths.
func findChromiumPath(explicit string) string {
	candidates := []string{explicit, os.Getenv("CHROME_BIN")}
	candidates = append(candidates,
		"/usr/bin/chromium",
		"/usr/bin/chromium-browser",
		"/usr/bin/google-chrome",
		"/usr/bin/google-chrome-stable",
		"/snap/bin/chromium",
		"/opt/google/chrome/chrome",
	)

	for _, path := range candidates {
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	if path, ok := launcher.LookPath(); ok {
		return path
	}
	return ""
}

func isDockerEnvironment() bool {
	if _, err := os.Stat("/.dockerenv"); err == nil {
		return true
	}
	if data, err := os.ReadFile("/proc/1/cgroup"); err == nil {
		return strings.Contains(string(data), "docker") || strings.Contains(string(data), "containerd")
	}
	return false
}
