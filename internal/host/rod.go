package host

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/repplus/paramscope/internal/snapshot"
)

// RodConfig configures a host that drives its own browser.
type RodConfig struct {
	// Target is the URL opened in a fresh tab.
	Target string
	// ControlURL connects to an existing browser instead of launching one.
	ControlURL string
	// Bin overrides the browser binary.
	Bin      string
	Headless bool
	Logger   *slog.Logger
}

// Rod launches (or connects to) a browser, opens Target and snapshots it
// after load, so script-built DOM is included.
type Rod struct {
	cfg      RodConfig
	logger   *slog.Logger
	launcher *launcher.Launcher
	browser  *rod.Browser
	page     *rod.Page
}

// NewRod creates a browser-driving host. Nothing starts until ActiveTab.
func NewRod(cfg RodConfig) *Rod {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Rod{cfg: cfg, logger: logger}
}

func (r *Rod) controlURL() (string, error) {
	if r.cfg.ControlURL != "" {
		return launcher.ResolveURL(r.cfg.ControlURL)
	}
	l := launcher.New().Headless(r.cfg.Headless)
	if r.cfg.Bin != "" {
		l = l.Bin(r.cfg.Bin)
	}
	u, err := l.Launch()
	if err != nil {
		return "", err
	}
	r.launcher = l
	return u, nil
}

// ActiveTab opens Target and waits for its load event.
func (r *Rod) ActiveTab(ctx context.Context) (*Tab, error) {
	target := strings.TrimSpace(r.cfg.Target)
	if target == "" {
		return nil, ErrNoActiveTab
	}
	if !strings.Contains(target, "://") && !strings.HasPrefix(target, "about:") {
		target = "https://" + target
	}

	if r.browser == nil {
		u, err := r.controlURL()
		if err != nil {
			return nil, fmt.Errorf("host: start browser: %w", err)
		}
		browser := rod.New().ControlURL(u).Context(ctx)
		if err := browser.Connect(); err != nil {
			return nil, fmt.Errorf("host: connect browser: %w", err)
		}
		r.browser = browser
		r.logger.Debug("rod host: browser connected", "control", u)
	}

	page, err := r.browser.Page(proto.TargetCreateTarget{URL: target})
	if err != nil {
		return nil, fmt.Errorf("host: open %s: %w", target, err)
	}
	if err := page.Context(ctx).WaitLoad(); err != nil {
		_ = page.Close()
		return nil, fmt.Errorf("host: load %s: %w", target, err)
	}
	r.page = page

	info, err := page.Info()
	if err != nil {
		return nil, fmt.Errorf("host: page info: %w", err)
	}
	if !IsInspectable(info.URL) {
		return nil, ErrNoActiveTab
	}
	return &Tab{ID: string(page.TargetID), URL: info.URL, Title: info.Title}, nil
}

// RunInPage evaluates fn.Source in the page opened by ActiveTab.
func (r *Rod) RunInPage(ctx context.Context, tab *Tab, fn PageFunc) (*snapshot.Document, error) {
	if tab == nil || r.page == nil || string(r.page.TargetID) != tab.ID {
		return nil, fmt.Errorf("host: unknown tab")
	}
	if strings.TrimSpace(fn.Source) == "" {
		return nil, fmt.Errorf("host: page function has no script")
	}

	res, err := r.page.Context(ctx).Eval(strings.TrimSpace(fn.Source))
	if err != nil {
		return nil, fmt.Errorf("host: evaluate in %s: %w", tab.URL, err)
	}
	return decodeResult([]byte(res.Value.JSON("", "")))
}

// Close releases the page and any browser this host launched.
func (r *Rod) Close() error {
	var firstErr error
	if r.page != nil {
		if err := r.page.Close(); err != nil {
			firstErr = err
		}
		r.page = nil
	}
	if r.browser != nil && r.launcher != nil {
		if err := r.browser.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	r.browser = nil
	if r.launcher != nil {
		r.launcher.Kill()
		r.launcher.Cleanup()
		r.launcher = nil
	}
	return firstErr
}
