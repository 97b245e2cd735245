package host

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/repplus/paramscope/internal/extract"
	"github.com/repplus/paramscope/internal/snapshot"
	"golang.org/x/net/html/charset"
)

const (
	// DefaultUserAgent is sent by the static host unless overridden.
	DefaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/140.0.0.0 Safari/537.36"
	maxDocumentSize  = 32 << 20
)

// StaticConfig configures a document-backed host.
type StaticConfig struct {
	// Target is an http(s) URL, a local file path, a file:// URL or "-"
	// for standard input. Hostnames without a scheme get https://.
	Target string
	// BaseURL is reported as the document URL for file and stdin input.
	BaseURL   string
	UserAgent string
	Headers   http.Header
	Client    *http.Client
	Stdin     io.Reader
	Clock     func() time.Time
	Logger    *slog.Logger
}

// Static loads a page without a browser and runs the Go extractor over it.
// Scripts on the page are not executed.
type Static struct {
	cfg    StaticConfig
	logger *slog.Logger
	tab    *Tab
	page   *extract.Page
	loads  int
}

// NewStatic creates a document-backed host.
func NewStatic(cfg StaticConfig) *Static {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Client == nil {
		cfg.Client = http.DefaultClient
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.Stdin == nil {
		cfg.Stdin = os.Stdin
	}
	return &Static{cfg: cfg, logger: logger}
}

// ActiveTab loads the target and returns it as the only tab.
func (s *Static) ActiveTab(ctx context.Context) (*Tab, error) {
	target := strings.TrimSpace(s.cfg.Target)
	if target == "" {
		return nil, ErrNoActiveTab
	}

	html, pageURL, err := s.load(ctx, target)
	if err != nil {
		return nil, err
	}
	page, err := extract.NewPageFromHTML(html, pageURL)
	if err != nil {
		return nil, fmt.Errorf("host: %w", err)
	}
	page.Clock = s.cfg.Clock

	s.loads++
	s.page = page
	s.tab = &Tab{
		ID:    fmt.Sprintf("static-%d", s.loads),
		URL:   page.Href(),
		Title: page.Title(),
	}
	s.logger.Debug("static host: page loaded", "url", s.tab.URL, "bytes", len(html))
	return s.tab, nil
}

// RunInPage runs fn.Run over the loaded document of tab.
func (s *Static) RunInPage(ctx context.Context, tab *Tab, fn PageFunc) (*snapshot.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if tab == nil || s.tab == nil || tab.ID != s.tab.ID {
		return nil, fmt.Errorf("host: unknown tab")
	}
	return runGo(fn, s.page)
}

func (s *Static) load(ctx context.Context, target string) ([]byte, string, error) {
	switch {
	case target == "-":
		data, err := io.ReadAll(io.LimitReader(s.cfg.Stdin, maxDocumentSize))
		if err != nil {
			return nil, "", fmt.Errorf("host: read stdin: %w", err)
		}
		return data, s.baseURL("about:blank"), nil

	case strings.HasPrefix(target, "file://"):
		u, err := url.Parse(target)
		if err != nil {
			return nil, "", fmt.Errorf("host: %w", err)
		}
		return s.loadFile(u.Path)

	case strings.HasPrefix(target, "http://"), strings.HasPrefix(target, "https://"):
		return s.fetch(ctx, target)
	}

	if _, err := os.Stat(target); err == nil {
		return s.loadFile(target)
	}
	return s.fetch(ctx, "https://"+target)
}

func (s *Static) baseURL(fallback string) string {
	if s.cfg.BaseURL != "" {
		return s.cfg.BaseURL
	}
	return fallback
}

func (s *Static) loadFile(path string) ([]byte, string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, "", fmt.Errorf("host: %w", err)
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, "", fmt.Errorf("host: read %s: %w", path, err)
	}
	fileURL := (&url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}).String()
	return data, s.baseURL(fileURL), nil
}

func (s *Static) fetch(ctx context.Context, target string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, "", fmt.Errorf("host: %w", err)
	}
	for name, values := range s.cfg.Headers {
		for _, v := range values {
			req.Header.Add(name, v)
		}
	}
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", s.cfg.UserAgent)
	}
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")
	}

	resp, err := s.cfg.Client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("host: fetch %s: %w", target, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		// Error pages are scanned like any other.
		s.logger.Warn("static host: error status", "url", target, "status", resp.StatusCode)
	}

	body, err := charset.NewReader(resp.Body, resp.Header.Get("Content-Type"))
	if err != nil {
		s.logger.Debug("static host: charset detection failed", "error", err)
		body = resp.Body
	}
	data, err := io.ReadAll(io.LimitReader(body, maxDocumentSize))
	if err != nil {
		return nil, "", fmt.Errorf("host: read %s: %w", target, err)
	}

	finalURL := target
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}
	return bytes.TrimPrefix(data, []byte("\xef\xbb\xbf")), finalURL, nil
}
