package present

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/repplus/paramscope/internal/host"
	"github.com/repplus/paramscope/internal/snapshot"
)

type fakeHost struct {
	tab    *host.Tab
	tabErr error
	doc    *snapshot.Document
	runErr error
	ran    int
}

func (f *fakeHost) ActiveTab(context.Context) (*host.Tab, error) {
	return f.tab, f.tabErr
}

func (f *fakeHost) RunInPage(_ context.Context, _ *host.Tab, fn host.PageFunc) (*snapshot.Document, error) {
	f.ran++
	if fn.Source == "" {
		return nil, errors.New("no script")
	}
	return f.doc, f.runErr
}

type recorder struct {
	calls   []string
	header  string
	titles  []string
	bodies  []string
	errText string
	payload []byte
	enabled bool
}

func (r *recorder) Reset() {
	r.calls = append(r.calls, "reset")
	r.header, r.titles, r.bodies, r.errText = "", nil, nil, ""
}
func (r *recorder) Header(text string) { r.calls = append(r.calls, "header"); r.header = text }
func (r *recorder) Section(title, body string) {
	r.calls = append(r.calls, "section")
	r.titles = append(r.titles, title)
	r.bodies = append(r.bodies, body)
}
func (r *recorder) Error(text string) { r.calls = append(r.calls, "error"); r.errText = text }
func (r *recorder) EnableExport(payload []byte) {
	r.calls = append(r.calls, "enable")
	r.payload, r.enabled = payload, true
}
func (r *recorder) DisableExport() {
	r.calls = append(r.calls, "disable")
	r.payload, r.enabled = nil, false
}

func sampleDoc() *snapshot.Document {
	return &snapshot.Document{
		URL:             "https://a.test/?x=1",
		PageQueryParams: snapshot.ParamMap{"x": "1"},
		Forms: []snapshot.Form{{
			Method: "POST", Action: "https://a.test/login",
			Inputs: []snapshot.Input{{Name: "user", Type: "text", Value: ""}},
		}},
		JSNames:   snapshot.NameSet{"token"},
		Timestamp: "2026-01-02T03:04:05.000Z",
	}
}

func TestScanRendersSections(t *testing.T) {
	h := &fakeHost{tab: &host.Tab{ID: "1", URL: "https://a.test/?x=1"}, doc: sampleDoc()}
	r := &recorder{}
	p := New(h, r)

	doc, err := p.Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if doc.URL != "https://a.test/?x=1" {
		t.Errorf("doc url = %q", doc.URL)
	}
	if r.header != "Scanned: https://a.test/?x=1" {
		t.Errorf("header = %q", r.header)
	}
	wantTitles := []string{TitlePageParams, TitleForms, TitleLinks, TitleJSNames}
	if !reflect.DeepEqual(r.titles, wantTitles) {
		t.Errorf("titles = %v", r.titles)
	}
	if r.bodies[0] != "{\n  \"x\": \"1\"\n}" {
		t.Errorf("page params body = %q", r.bodies[0])
	}
	if r.bodies[2] != "[]" {
		t.Errorf("empty links body = %q", r.bodies[2])
	}
	if r.calls[0] != "reset" || r.calls[len(r.calls)-1] != "enable" {
		t.Errorf("call order = %v", r.calls)
	}
	want, _ := snapshot.Encode(doc)
	if !bytes.Equal(r.payload, want) {
		t.Errorf("export payload must be the whole document")
	}
	if !p.ExportEnabled() {
		t.Error("export should be enabled after a successful scan")
	}
}

func TestRenderLeavesCallerDocument(t *testing.T) {
	doc := &snapshot.Document{
		URL:       "https://a.test/",
		Forms:     []snapshot.Form{{Method: "GET", Action: "https://a.test/"}},
		Timestamp: "2026-01-02T03:04:05.000Z",
	}
	r := &recorder{}
	p := New(&fakeHost{}, r)

	if err := p.Render(doc); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if doc.PageQueryParams != nil || doc.LinksWithParams != nil || doc.JSNames != nil {
		t.Errorf("caller document was normalized in place: %+v", doc)
	}
	if doc.Forms[0].Inputs != nil {
		t.Errorf("caller form inputs = %#v, want nil", doc.Forms[0].Inputs)
	}
	if r.bodies[0] != "{}" || r.bodies[2] != "[]" || r.bodies[3] != "[]" {
		t.Errorf("empty section bodies = %q", r.bodies)
	}
	if p.Document() == doc {
		t.Error("presenter should hold its own copy")
	}
	if p.Document().Forms[0].Inputs == nil {
		t.Error("rendered copy should be normalized")
	}
}

func TestScanNoActiveTab(t *testing.T) {
	h := &fakeHost{tabErr: host.ErrNoActiveTab}
	r := &recorder{}
	p := New(h, r)

	if _, err := p.Scan(context.Background()); !errors.Is(err, host.ErrNoActiveTab) {
		t.Fatalf("expected ErrNoActiveTab, got %v", err)
	}
	if r.errText != "Error: no active tab" {
		t.Errorf("error text = %q", r.errText)
	}
	if r.enabled || p.ExportEnabled() {
		t.Error("export must stay disabled")
	}
	if h.ran != 0 {
		t.Error("page function must not run without a tab")
	}
	if len(r.titles) != 0 {
		t.Errorf("no sections expected, got %v", r.titles)
	}
}

func TestScanRunErrorClearsPreviousSnapshot(t *testing.T) {
	h := &fakeHost{tab: &host.Tab{ID: "1"}, doc: sampleDoc()}
	r := &recorder{}
	p := New(h, r)
	if _, err := p.Scan(context.Background()); err != nil {
		t.Fatal(err)
	}

	h.runErr = errors.New("Cannot access contents of the page")
	h.doc = nil
	if _, err := p.Scan(context.Background()); err == nil {
		t.Fatal("expected run error")
	}
	if !strings.HasPrefix(r.errText, "Error: Cannot access") {
		t.Errorf("error text = %q", r.errText)
	}
	if p.ExportEnabled() || p.Document() != nil {
		t.Error("failed scan must disable export")
	}
	if err := p.Export(WriterExporter{W: &bytes.Buffer{}}); !errors.Is(err, ErrExportDisabled) {
		t.Errorf("Export = %v, want ErrExportDisabled", err)
	}
}

func TestScanNilDocument(t *testing.T) {
	p := New(&fakeHost{tab: &host.Tab{ID: "1"}}, &recorder{})
	if _, err := p.Scan(context.Background()); err == nil {
		t.Fatal("expected error for nil document")
	}
}

func TestExportBeforeScan(t *testing.T) {
	p := New(&fakeHost{}, &recorder{})
	if err := p.Export(FileExporter{Dir: t.TempDir()}); !errors.Is(err, ErrExportDisabled) {
		t.Fatalf("expected ErrExportDisabled, got %v", err)
	}
}

func TestFileExport(t *testing.T) {
	dir := t.TempDir()
	p := New(&fakeHost{tab: &host.Tab{ID: "1"}, doc: sampleDoc()}, &recorder{})
	if _, err := p.Scan(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := p.Export(FileExporter{Dir: dir}); err != nil {
		t.Fatalf("Export: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, snapshot.ExportFileName))
	if err != nil {
		t.Fatal(err)
	}
	doc, err := snapshot.Decode(data)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(doc, p.Document()) {
		t.Errorf("exported document differs:\n%+v\n%+v", doc, p.Document())
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("temporary files left behind: %v", names)
	}
}

func TestFileExportPathOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out.json")
	if err := (FileExporter{Path: path}).Export(snapshot.ExportFileName, []byte("{}")); err != nil {
		t.Fatal(err)
	}
	if data, _ := os.ReadFile(path); string(data) != "{}" {
		t.Errorf("content = %q", data)
	}
}

func TestWriterExport(t *testing.T) {
	var buf bytes.Buffer
	if err := (WriterExporter{W: &buf}).Export("x", []byte(`{"a":1}`)); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "{\"a\":1}\n" {
		t.Errorf("got %q", buf.String())
	}
}
