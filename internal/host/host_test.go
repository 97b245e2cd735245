package host

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/chromedp/cdproto/target"
	"github.com/repplus/paramscope/internal/extract"
	"github.com/repplus/paramscope/internal/snapshot"
)

var fixedClock = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }

func TestIsInspectable(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"https://example.com/", true},
		{"file:///tmp/x.html", true},
		{"chrome://settings", false},
		{"chrome-extension://abc/popup.html", false},
		{"devtools://devtools/bundled/inspector.html", false},
		{"about:blank", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsInspectable(tt.url); got != tt.want {
			t.Errorf("IsInspectable(%q) = %v, want %v", tt.url, got, tt.want)
		}
	}
}

func TestDecodeResult(t *testing.T) {
	for _, raw := range []string{"", "null", "undefined", "{}", "[1]"} {
		if _, err := decodeResult([]byte(raw)); err == nil {
			t.Errorf("decodeResult(%q) expected error", raw)
		}
	}

	doc, err := decodeResult([]byte(`{"url":"https://a.test/?x=1","pageQueryParams":{"x":"1"},"forms":null,"timestamp":"2026-01-02T03:04:05.000Z"}`))
	if err != nil {
		t.Fatalf("decodeResult: %v", err)
	}
	if doc.PageQueryParams["x"] != "1" || doc.Forms == nil || doc.JSNames == nil {
		t.Errorf("decoded document not normalized: %+v", doc)
	}
}

func TestRunGoRecoversPanic(t *testing.T) {
	fn := PageFunc{Run: func(*extract.Page) *snapshot.Document { panic("boom") }}
	if _, err := runGo(fn, nil); err == nil || !strings.Contains(err.Error(), "boom") {
		t.Fatalf("expected panic as error, got %v", err)
	}
	if _, err := runGo(PageFunc{}, nil); err == nil {
		t.Fatal("expected error for missing Run")
	}
}

func TestPickTab(t *testing.T) {
	infos := []*target.Info{
		{TargetID: "sw", Type: "service_worker", URL: "https://a.test/sw.js"},
		{TargetID: "settings", Type: "page", URL: "chrome://settings"},
		{TargetID: "one", Type: "page", URL: "https://a.test/", Title: "A"},
		{TargetID: "two", Type: "page", URL: "https://b.test/?q=1", Title: "B"},
	}
	if tab := pickTab(infos, ""); tab == nil || tab.ID != "one" || tab.Title != "A" {
		t.Errorf("pickTab without match = %+v", tab)
	}
	if tab := pickTab(infos, "b.test"); tab == nil || tab.ID != "two" {
		t.Errorf("pickTab with match = %+v", tab)
	}
	if tab := pickTab(infos, "nothing"); tab != nil {
		t.Errorf("expected no tab, got %+v", tab)
	}
}

func TestStaticFetch(t *testing.T) {
	var gotUA, gotCookie string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/start" {
			http.Redirect(w, r, "/page?from=start", http.StatusFound)
			return
		}
		gotUA = r.Header.Get("User-Agent")
		gotCookie = r.Header.Get("Cookie")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(`<title>T</title><form method=post action=/go><input name=q></form><a href="?p=2">next</a>`))
	}))
	defer srv.Close()

	headers, err := ParseHeaders([]string{"Cookie: a=1; b=2"})
	if err != nil {
		t.Fatal(err)
	}
	h := NewStatic(StaticConfig{Target: srv.URL + "/start", Headers: headers, Clock: fixedClock})

	ctx := context.Background()
	tab, err := h.ActiveTab(ctx)
	if err != nil {
		t.Fatalf("ActiveTab: %v", err)
	}
	if tab.URL != srv.URL+"/page?from=start" {
		t.Errorf("tab url should follow redirects, got %q", tab.URL)
	}
	if tab.Title != "T" {
		t.Errorf("title = %q", tab.Title)
	}
	if gotUA != DefaultUserAgent || gotCookie != "a=1; b=2" {
		t.Errorf("headers: ua=%q cookie=%q", gotUA, gotCookie)
	}

	doc, err := h.RunInPage(ctx, tab, SnapshotFunc())
	if err != nil {
		t.Fatalf("RunInPage: %v", err)
	}
	if doc.PageQueryParams["from"] != "start" {
		t.Errorf("page params = %v", doc.PageQueryParams)
	}
	if len(doc.Forms) != 1 || doc.Forms[0].Action != srv.URL+"/go" || doc.Forms[0].Method != "POST" {
		t.Errorf("forms = %+v", doc.Forms)
	}
	if len(doc.LinksWithParams) != 1 || doc.LinksWithParams[0].Params["p"] != "2" {
		t.Errorf("links = %+v", doc.LinksWithParams)
	}
	if doc.Timestamp != "2026-01-02T03:04:05.000Z" {
		t.Errorf("timestamp = %q", doc.Timestamp)
	}
}

func TestStaticCharset(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=iso-8859-1")
		// "café" in Latin-1.
		w.Write([]byte("<form><input name=\"n\" value=\"caf\xe9\"></form>"))
	}))
	defer srv.Close()

	h := NewStatic(StaticConfig{Target: srv.URL})
	tab, err := h.ActiveTab(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	doc, err := h.RunInPage(context.Background(), tab, SnapshotFunc())
	if err != nil {
		t.Fatal(err)
	}
	if got := doc.Forms[0].Inputs[0].Value; got != "café" {
		t.Errorf("value = %q, want café", got)
	}
}

func TestStaticFileAndStdin(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "page.html")
	if err := os.WriteFile(path, []byte(`<a href="x.html?k=v">x</a>`), 0o644); err != nil {
		t.Fatal(err)
	}

	h := NewStatic(StaticConfig{Target: path})
	tab, err := h.ActiveTab(context.Background())
	if err != nil {
		t.Fatalf("ActiveTab(file): %v", err)
	}
	if !strings.HasPrefix(tab.URL, "file:///") {
		t.Errorf("file tab url = %q", tab.URL)
	}
	doc, err := h.RunInPage(context.Background(), tab, SnapshotFunc())
	if err != nil {
		t.Fatal(err)
	}
	if len(doc.LinksWithParams) != 1 || !strings.HasSuffix(doc.LinksWithParams[0].Href, "/x.html?k=v") {
		t.Errorf("links = %+v", doc.LinksWithParams)
	}

	h = NewStatic(StaticConfig{
		Target:  "-",
		BaseURL: "https://base.test/dir/?s=1",
		Stdin:   strings.NewReader(`<a href="n?a=b">n</a>`),
	})
	tab, err = h.ActiveTab(context.Background())
	if err != nil {
		t.Fatalf("ActiveTab(stdin): %v", err)
	}
	doc, err = h.RunInPage(context.Background(), tab, SnapshotFunc())
	if err != nil {
		t.Fatal(err)
	}
	if doc.URL != "https://base.test/dir/?s=1" || doc.LinksWithParams[0].Href != "https://base.test/dir/n?a=b" {
		t.Errorf("stdin doc = %+v", doc)
	}
}

func TestStaticNoTarget(t *testing.T) {
	h := NewStatic(StaticConfig{})
	if _, err := h.ActiveTab(context.Background()); !errors.Is(err, ErrNoActiveTab) {
		t.Fatalf("expected ErrNoActiveTab, got %v", err)
	}
}

func TestStaticUnknownTab(t *testing.T) {
	h := NewStatic(StaticConfig{Target: "-", Stdin: strings.NewReader("")})
	if _, err := h.RunInPage(context.Background(), &Tab{ID: "nope"}, SnapshotFunc()); err == nil {
		t.Fatal("expected error for unknown tab")
	}
}

func TestRodRequiresTarget(t *testing.T) {
	r := NewRod(RodConfig{})
	if _, err := r.ActiveTab(context.Background()); !errors.Is(err, ErrNoActiveTab) {
		t.Fatalf("expected ErrNoActiveTab, got %v", err)
	}
	if err := r.Close(); err != nil {
		t.Fatalf("Close on idle host: %v", err)
	}
}

func TestCDPRejectsEmptyScript(t *testing.T) {
	c := NewCDP(CDPConfig{})
	if _, err := c.RunInPage(context.Background(), &Tab{ID: "x"}, PageFunc{}); err == nil {
		t.Fatal("expected error for empty script")
	}
}
