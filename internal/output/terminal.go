package output

import (
	"fmt"
	"io"
	"os"

	"github.com/pterm/pterm"
	"github.com/repplus/paramscope/internal/store"
)

// Terminal renders scan results with pterm printers.
type Terminal struct {
	w        io.Writer
	mode     store.OutputMode
	truncate store.TruncateConfig

	rendered bool
	exported bool
	payload  int
	// ExportHint is printed once a snapshot can be exported.
	ExportHint string
}

// NewTerminal creates a renderer writing to w (stdout when nil).
func NewTerminal(w io.Writer, mode store.OutputMode) *Terminal {
	if w == nil {
		w = os.Stdout
	}
	return &Terminal{
		w:          w,
		mode:       mode,
		truncate:   store.DefaultTruncateConfig(),
		ExportHint: "paramscope export",
	}
}

// SetTruncate replaces the compact-mode limits.
func (t *Terminal) SetTruncate(cfg store.TruncateConfig) {
	t.truncate = cfg
}

// Reset separates a new rendering from the previous one.
func (t *Terminal) Reset() {
	if t.rendered {
		fmt.Fprintln(t.w)
	}
	t.rendered = false
	t.exported = false
	t.payload = 0
}

func (t *Terminal) Header(text string) {
	t.rendered = true
	fmt.Fprint(t.w, pterm.DefaultHeader.WithFullWidth(false).Sprintln(text))
}

func (t *Terminal) Section(title, body string) {
	t.rendered = true
	if t.mode == store.OutputCompact {
		body, _ = TruncateSection(body, t.truncate)
	}
	fmt.Fprint(t.w, pterm.DefaultSection.WithLevel(2).Sprintln(title))
	fmt.Fprintln(t.w, body)
}

func (t *Terminal) Error(text string) {
	t.rendered = true
	fmt.Fprintln(t.w, pterm.Red(text))
}

// EnableExport prints where the snapshot can be exported from.
func (t *Terminal) EnableExport(payload []byte) {
	t.exported = true
	t.payload = len(payload)
	if t.ExportHint == "" {
		return
	}
	fmt.Fprint(t.w, pterm.Info.Sprintfln("Export ready (%s): %s", FormatBodySize(t.payload), t.ExportHint))
}

func (t *Terminal) DisableExport() {
	t.exported = false
	t.payload = 0
}

// ExportEnabled reports whether the last rendering armed export.
func (t *Terminal) ExportEnabled() bool {
	return t.exported
}
