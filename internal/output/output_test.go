package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/pterm/pterm"
	"github.com/repplus/paramscope/internal/snapshot"
	"github.com/repplus/paramscope/internal/store"
)

func TestFormatBodySize(t *testing.T) {
	tests := map[int]string{
		12:              "12B",
		2048:            "2.0KB",
		3 * 1024 * 1024: "3.0MB",
	}
	for in, want := range tests {
		if got := FormatBodySize(in); got != want {
			t.Errorf("FormatBodySize(%d) = %q, want %q", in, got, want)
		}
	}
}

func TestTruncateSection(t *testing.T) {
	cfg := store.TruncateConfig{MaxSectionSize: 10, MaxLines: 3, ShowFullSize: true}

	if got, cut := TruncateSection("short", cfg); cut || got != "short" {
		t.Errorf("short body changed: %q", got)
	}

	got, cut := TruncateSection("a\nb\nc\nd\ne", cfg)
	if !cut || !strings.HasPrefix(got, "a\nb\nc\n[...truncated") {
		t.Errorf("line truncation: %q", got)
	}

	got, cut = TruncateSection(strings.Repeat("x", 30), cfg)
	if !cut || got != strings.Repeat("x", 10)+"\n[...truncated, 30B total]" {
		t.Errorf("size truncation: %q", got)
	}

	// Multi-byte runes are never split.
	got, _ = TruncateSection(strings.Repeat("é", 10), cfg)
	if head := strings.SplitN(got, "\n", 2)[0]; head != strings.Repeat("é", 5) {
		t.Errorf("rune boundary: %q", head)
	}

	cfg.ShowFullSize = false
	got, _ = TruncateSection(strings.Repeat("x", 30), cfg)
	if !strings.HasSuffix(got, "\n[...truncated]") {
		t.Errorf("plain marker: %q", got)
	}
}

func TestTerminalRenderer(t *testing.T) {
	pterm.DisableStyling()
	defer pterm.EnableStyling()

	var buf bytes.Buffer
	term := NewTerminal(&buf, store.OutputPretty)
	term.Reset()
	term.Header("Scanned: https://a.test/")
	term.Section("Page URL Query Params", "{\n  \"a\": \"1\"\n}")
	term.EnableExport([]byte("{}"))

	out := buf.String()
	for _, want := range []string{"Scanned: https://a.test/", "Page URL Query Params", `"a": "1"`, "Export ready (2B)"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if !term.ExportEnabled() {
		t.Error("export should be enabled")
	}

	buf.Reset()
	term.Reset()
	term.Error("Error: no active tab")
	term.DisableExport()
	if !strings.Contains(buf.String(), "Error: no active tab") {
		t.Errorf("error output: %q", buf.String())
	}
	if term.ExportEnabled() {
		t.Error("export should be disabled")
	}
}

func TestTerminalCompactTruncates(t *testing.T) {
	pterm.DisableStyling()
	defer pterm.EnableStyling()

	var buf bytes.Buffer
	term := NewTerminal(&buf, store.OutputCompact)
	term.Section("Links with Query Params", strings.Repeat("line\n", 100))
	if !strings.Contains(buf.String(), "[...truncated") {
		t.Errorf("compact mode should truncate long sections")
	}
}

func TestDiffLines(t *testing.T) {
	before := "a\nb\nc\n"
	after := "a\nc\nd\n"
	lines := DiffLines(before, after)

	var got []string
	for _, l := range lines {
		prefix := " "
		switch l.Op {
		case DiffInsert:
			prefix = "+"
		case DiffDelete:
			prefix = "-"
		}
		got = append(got, prefix+l.Text)
	}
	want := " a|-b| c|+d"
	if strings.Join(got, "|") != want {
		t.Errorf("diff = %q, want %q", strings.Join(got, "|"), want)
	}
	if !HasChanges(lines) {
		t.Error("expected changes")
	}
	if HasChanges(DiffLines(before, before)) {
		t.Error("identical texts should have no changes")
	}
}

func TestFormatDiffContext(t *testing.T) {
	pterm.DisableStyling()
	defer pterm.EnableStyling()

	before := "1\n2\n3\n4\n5\n6\n"
	after := "1\n2\n3\n4\n5\nX\n"
	out := FormatDiff(DiffLines(before, after), 1)
	if !strings.Contains(out, "...") || !strings.Contains(out, "- 6") || !strings.Contains(out, "+ X") {
		t.Errorf("unexpected diff:\n%s", out)
	}
	if strings.Contains(out, "  1\n") {
		t.Errorf("line outside context should be elided:\n%s", out)
	}
	if full := FormatDiff(DiffLines(before, after), -1); !strings.Contains(full, "  1\n") {
		t.Errorf("negative context keeps all lines:\n%s", full)
	}
}

func TestFormatScan(t *testing.T) {
	sc := &store.Scan{
		ID:        "20260101-000000",
		Timestamp: 0,
		Snapshot: &snapshot.Document{
			URL:             "https://a.test/",
			PageQueryParams: snapshot.ParamMap{"a": "1"},
			Forms:           []snapshot.Form{{Inputs: []snapshot.Input{{Name: "x"}, {Name: "y"}}}},
		},
	}
	out := FormatScan(sc)
	if out.URL != "https://a.test/" || out.Params != 1 || out.Forms != 1 || out.Inputs != 2 {
		t.Errorf("FormatScan = %+v", out)
	}
	if out.SavedAt != "1970-01-01T00:00:00.000Z" {
		t.Errorf("saved_at = %q", out.SavedAt)
	}
	if FormatParamSources(map[string]int{"link": 2, "form": 1}) != "form:1 link:2" {
		t.Error("sources should be sorted by name")
	}
}
