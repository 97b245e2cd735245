package host

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/chromedp/cdproto/target"
	"github.com/chromedp/chromedp"
	"github.com/repplus/paramscope/internal/snapshot"
)

// DefaultCDPEndpoint is where Chrome listens when started with
// --remote-debugging-port=9222.
const DefaultCDPEndpoint = "http://127.0.0.1:9222"

// CDPConfig configures a host attached to an already running browser.
type CDPConfig struct {
	// Endpoint is the DevTools http or ws address.
	Endpoint string
	// Match narrows tab selection to URLs containing this substring.
	Match  string
	Logger *slog.Logger
}

// CDP attaches to a running Chrome over the DevTools protocol. The user's
// tabs are never opened or closed by it.
type CDP struct {
	cfg    CDPConfig
	logger *slog.Logger
}

// NewCDP creates a DevTools host.
func NewCDP(cfg CDPConfig) *CDP {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultCDPEndpoint
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &CDP{cfg: cfg, logger: logger}
}

// connect returns a browser context bound to the remote allocator. Passing a
// tab attaches the context to it instead of opening a new one.
func (c *CDP) connect(ctx context.Context, tab *Tab) (context.Context, context.CancelFunc) {
	allocCtx, cancelAlloc := chromedp.NewRemoteAllocator(ctx, c.cfg.Endpoint)
	var opts []chromedp.ContextOption
	if tab != nil {
		opts = append(opts, chromedp.WithTargetID(target.ID(tab.ID)))
	}
	// Cancelling the browser context would close the user's browser.
	// Dropping the allocator only disconnects.
	browserCtx, _ := chromedp.NewContext(allocCtx, opts...)
	return browserCtx, cancelAlloc
}

// ActiveTab returns the first inspectable page target. DevTools lists
// targets most recently focused first.
func (c *CDP) ActiveTab(ctx context.Context) (*Tab, error) {
	browserCtx, cancel := c.connect(ctx, nil)
	defer cancel()

	infos, err := chromedp.Targets(browserCtx)
	if err != nil {
		return nil, fmt.Errorf("host: list targets at %s: %w", c.cfg.Endpoint, err)
	}
	c.logger.Debug("cdp host: targets listed", "count", len(infos))

	tab := pickTab(infos, c.cfg.Match)
	if tab == nil {
		return nil, ErrNoActiveTab
	}
	return tab, nil
}

func pickTab(infos []*target.Info, match string) *Tab {
	for _, info := range infos {
		if info == nil || info.Type != "page" || !IsInspectable(info.URL) {
			continue
		}
		if match != "" && !strings.Contains(info.URL, match) {
			continue
		}
		return &Tab{ID: string(info.TargetID), URL: info.URL, Title: info.Title}
	}
	return nil
}

// RunInPage evaluates fn.Source in tab and decodes the returned object.
func (c *CDP) RunInPage(ctx context.Context, tab *Tab, fn PageFunc) (*snapshot.Document, error) {
	if tab == nil || tab.ID == "" {
		return nil, fmt.Errorf("host: unknown tab")
	}
	if strings.TrimSpace(fn.Source) == "" {
		return nil, fmt.Errorf("host: page function has no script")
	}

	tabCtx, cancel := c.connect(ctx, tab)
	defer cancel()

	var raw []byte
	expr := "(" + strings.TrimSpace(fn.Source) + ")()"
	if err := chromedp.Run(tabCtx, chromedp.Evaluate(expr, &raw)); err != nil {
		return nil, fmt.Errorf("host: evaluate in %s: %w", tab.URL, err)
	}
	return decodeResult(raw)
}
