// Package host abstracts the browser that owns the inspected page. A Host
// resolves the active tab and runs a snapshot function inside it.
package host

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/repplus/paramscope/internal/extract"
	"github.com/repplus/paramscope/internal/snapshot"
)

// ErrNoActiveTab is returned when no inspectable tab can be resolved.
var ErrNoActiveTab = errors.New("no active tab")

// Tab identifies a page inside a host
type Tab struct {
	ID    string `json:"id"`
	URL   string `json:"url"`
	Title string `json:"title,omitempty"`
}

// PageFunc is the snapshot routine a host executes inside a tab.
// Browser-backed hosts evaluate Source, a JavaScript function expression;
// document-backed hosts call Run on the parsed page.
type PageFunc struct {
	Source string
	Run    func(*extract.Page) *snapshot.Document
}

// SnapshotFunc returns the page function producing a full snapshot.
func SnapshotFunc() PageFunc {
	return PageFunc{Source: extract.Script, Run: extract.Snapshot}
}

// Host is the collaborator that owns the browser.
type Host interface {
	// ActiveTab resolves the tab to inspect, or ErrNoActiveTab.
	ActiveTab(ctx context.Context) (*Tab, error)
	// RunInPage executes fn inside tab and returns its result. Injection
	// failures and errors raised by fn come back as one error.
	RunInPage(ctx context.Context, tab *Tab, fn PageFunc) (*snapshot.Document, error)
}

// Closer is implemented by hosts holding browser resources.
type Closer interface {
	Close() error
}

// internalPrefixes are browser pages that cannot be scripted.
var internalPrefixes = []string{
	"chrome://",
	"chrome-extension://",
	"chrome-untrusted://",
	"devtools://",
	"edge://",
	"about:",
}

// IsInspectable reports whether a tab URL can host an injected script.
func IsInspectable(tabURL string) bool {
	if tabURL == "" {
		return false
	}
	for _, prefix := range internalPrefixes {
		if strings.HasPrefix(tabURL, prefix) {
			return false
		}
	}
	return true
}

// decodeResult turns the raw JSON returned by an in-page evaluation into a
// document.
func decodeResult(raw []byte) (*snapshot.Document, error) {
	if len(raw) == 0 || string(raw) == "null" || string(raw) == "undefined" {
		return nil, fmt.Errorf("host: page function returned no document")
	}
	doc, err := snapshot.Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("host: page result: %w", err)
	}
	if doc.URL == "" {
		return nil, fmt.Errorf("host: page result has no url")
	}
	return doc, nil
}

// runGo calls fn.Run, converting a panic into an error the way an
// exception thrown inside an injected script surfaces to the caller.
func runGo(fn PageFunc, page *extract.Page) (doc *snapshot.Document, err error) {
	if fn.Run == nil {
		return nil, fmt.Errorf("host: page function has no document implementation")
	}
	defer func() {
		if r := recover(); r != nil {
			doc = nil
			err = fmt.Errorf("host: page function failed: %v", r)
		}
	}()
	doc = fn.Run(page)
	if doc == nil {
		return nil, fmt.Errorf("host: page function returned no document")
	}
	return doc, nil
}
