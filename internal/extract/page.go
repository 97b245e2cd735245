// Package extract builds page snapshots: query parameters, forms, links with
// parameters and a heuristic list of script-level names.
//
// The same rules exist twice. The Go functions in this package run over a
// parsed document for hosts that have no JavaScript engine, and Script is
// the equivalent function evaluated inside a live browser tab.
package extract

import (
	"bytes"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/repplus/paramscope/internal/snapshot"
)

// Page is a parsed document together with the URL it was loaded from.
type Page struct {
	Doc *goquery.Document
	// URL is the document URL reported as the snapshot url.
	URL *url.URL
	// Clock stamps snapshots; time.Now when nil.
	Clock func() time.Time
}

// NewPage parses HTML from r. pageURL must be absolute.
func NewPage(r io.Reader, pageURL string) (*Page, error) {
	u, err := ParseAbsolute(pageURL)
	if err != nil {
		return nil, fmt.Errorf("extract: page url: %w", err)
	}
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("extract: parse html: %w", err)
	}
	doc.Url = u
	return &Page{Doc: doc, URL: u}, nil
}

// NewPageFromHTML is NewPage over an in-memory document.
func NewPageFromHTML(html []byte, pageURL string) (*Page, error) {
	return NewPage(bytes.NewReader(html), pageURL)
}

// Href returns the serialized document URL.
func (p *Page) Href() string {
	return p.URL.String()
}

// Title returns the trimmed document title.
func (p *Page) Title() string {
	return strings.TrimSpace(p.Doc.Find("title").First().Text())
}

// BaseURL returns the URL relative references resolve against: the first
// <base href> when it resolves, the document URL otherwise.
func (p *Page) BaseURL() *url.URL {
	if href, ok := p.Doc.Find("base[href]").First().Attr("href"); ok {
		if u, err := Resolve(p.URL, href); err == nil {
			return u
		}
	}
	return p.URL
}

func (p *Page) now() time.Time {
	if p.Clock != nil {
		return p.Clock()
	}
	return time.Now()
}

// Snapshot assembles the full document for p. The timestamp is taken at
// call time.
func Snapshot(p *Page) *snapshot.Document {
	href := p.Href()
	doc := &snapshot.Document{
		URL:             href,
		PageQueryParams: QueryParams(href),
		Forms:           p.Forms(),
		LinksWithParams: p.LinksWithParams(),
		JSNames:         p.JSNames(),
		Timestamp:       snapshot.FormatTimestamp(p.now()),
	}
	doc.Normalize()
	return doc
}
