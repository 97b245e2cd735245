// Package present turns a page snapshot into labeled sections and arms the
// page_params.json export.
package present

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/repplus/paramscope/internal/host"
	"github.com/repplus/paramscope/internal/snapshot"
)

// ErrExportDisabled is returned by Export before a snapshot was rendered.
var ErrExportDisabled = errors.New("export disabled: no snapshot")

// Section titles, in render order.
const (
	TitlePageParams = "Page URL Query Params"
	TitleForms      = "Forms (method/action/inputs)"
	TitleLinks      = "Links with Query Params"
	TitleJSNames    = "JavaScript Variable/Param Names (heuristic)"
)

// Renderer is the display surface.
type Renderer interface {
	// Reset clears whatever a previous scan rendered.
	Reset()
	Header(text string)
	// Section shows a title with its pretty JSON body.
	Section(title, body string)
	Error(text string)
	EnableExport(payload []byte)
	DisableExport()
}

// Presenter drives one scan at a time against a host and keeps the last
// successful snapshot for export.
type Presenter struct {
	host     host.Host
	fn       host.PageFunc
	renderer Renderer
	logger   *slog.Logger

	doc     *snapshot.Document
	payload []byte
}

// Option customizes a Presenter.
type Option func(*Presenter)

// WithLogger sets the presenter logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Presenter) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithPageFunc replaces the snapshot function run inside the tab.
func WithPageFunc(fn host.PageFunc) Option {
	return func(p *Presenter) { p.fn = fn }
}

// New creates a presenter rendering to r.
func New(h host.Host, r Renderer, opts ...Option) *Presenter {
	p := &Presenter{
		host:     h,
		fn:       host.SnapshotFunc(),
		renderer: r,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Scan resolves the active tab, snapshots it and renders the result. Any
// failure is rendered as an error and leaves export disabled.
func (p *Presenter) Scan(ctx context.Context) (*snapshot.Document, error) {
	doc, err := p.capture(ctx)
	if err != nil {
		p.fail(err)
		return nil, err
	}
	if err := p.Render(doc); err != nil {
		p.fail(err)
		return nil, err
	}
	return p.doc, nil
}

func (p *Presenter) capture(ctx context.Context) (*snapshot.Document, error) {
	if p.host == nil {
		return nil, fmt.Errorf("no host configured")
	}
	tab, err := p.host.ActiveTab(ctx)
	if err != nil {
		return nil, err
	}
	if tab == nil {
		return nil, host.ErrNoActiveTab
	}
	p.logger.Debug("scanning tab", "id", tab.ID, "url", tab.URL)

	doc, err := p.host.RunInPage(ctx, tab, p.fn)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, fmt.Errorf("page function returned no document")
	}
	return doc, nil
}

func (p *Presenter) fail(err error) {
	p.logger.Debug("scan failed", "error", err)
	p.doc = nil
	p.payload = nil
	p.renderer.Reset()
	p.renderer.Error("Error: " + err.Error())
	p.renderer.DisableExport()
}

// Render shows doc as a header plus the four sections, then arms export
// with the encoding of the whole document. It renders a normalized copy,
// so the caller's document is not modified.
func (p *Presenter) Render(doc *snapshot.Document) error {
	if doc == nil {
		return fmt.Errorf("nothing to render")
	}
	doc = doc.Normalized()

	payload, err := snapshot.Encode(doc)
	if err != nil {
		return err
	}
	sections, err := Sections(doc)
	if err != nil {
		return err
	}

	p.renderer.Reset()
	p.renderer.Header("Scanned: " + doc.URL)
	for _, s := range sections {
		p.renderer.Section(s.Title, s.Body)
	}

	p.doc = doc
	p.payload = payload
	p.renderer.EnableExport(payload)
	p.logger.Debug("snapshot rendered",
		"url", doc.URL,
		"params", len(doc.PageQueryParams),
		"forms", len(doc.Forms),
		"links", len(doc.LinksWithParams),
		"names", len(doc.JSNames))
	return nil
}

// Section is one titled block of rendered output.
type Section struct {
	Title string
	Body  string
}

// Sections returns the four titled JSON bodies for doc, in render order.
func Sections(doc *snapshot.Document) ([]Section, error) {
	values := []struct {
		title string
		v     any
	}{
		{TitlePageParams, doc.PageQueryParams},
		{TitleForms, doc.Forms},
		{TitleLinks, doc.LinksWithParams},
		{TitleJSNames, doc.JSNames},
	}
	out := make([]Section, 0, len(values))
	for _, item := range values {
		body, err := snapshot.EncodeValue(item.v)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", item.title, err)
		}
		out = append(out, Section{Title: item.title, Body: string(body)})
	}
	return out, nil
}

// Document returns the last rendered snapshot, or nil.
func (p *Presenter) Document() *snapshot.Document {
	return p.doc
}

// ExportEnabled reports whether a snapshot is ready to export.
func (p *Presenter) ExportEnabled() bool {
	return p.payload != nil
}

// Export writes the armed payload as page_params.json.
func (p *Presenter) Export(e Exporter) error {
	if !p.ExportEnabled() {
		return ErrExportDisabled
	}
	if err := e.Export(snapshot.ExportFileName, p.payload); err != nil {
		return fmt.Errorf("export %s: %w", snapshot.ExportFileName, err)
	}
	p.logger.Debug("snapshot exported", "bytes", len(p.payload))
	return nil
}
