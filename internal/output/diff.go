package output

import (
	"strings"

	"github.com/pterm/pterm"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// DiffOp marks a line as kept, added or removed.
type DiffOp int

const (
	DiffEqual DiffOp = iota
	DiffInsert
	DiffDelete
)

// DiffLine is one line of a line-level diff
type DiffLine struct {
	Op   DiffOp `json:"op"`
	Text string `json:"text"`
}

// DiffLines compares two texts line by line.
func DiffLines(before, after string) []DiffLine {
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	var out []DiffLine
	for _, d := range diffs {
		op := DiffEqual
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			op = DiffInsert
		case diffmatchpatch.DiffDelete:
			op = DiffDelete
		}
		for _, line := range strings.SplitAfter(d.Text, "\n") {
			if line == "" {
				continue
			}
			out = append(out, DiffLine{Op: op, Text: strings.TrimSuffix(line, "\n")})
		}
	}
	return out
}

// HasChanges reports whether any line was added or removed.
func HasChanges(lines []DiffLine) bool {
	for _, l := range lines {
		if l.Op != DiffEqual {
			return true
		}
	}
	return false
}

// FormatDiff renders lines with +/- markers. Unchanged lines further than
// context lines from a change are elided; a negative context keeps all.
func FormatDiff(lines []DiffLine, context int) string {
	keep := make([]bool, len(lines))
	for i, l := range lines {
		if context < 0 || l.Op != DiffEqual {
			lo, hi := i, i
			if context > 0 {
				lo, hi = i-context, i+context
			}
			for j := max(lo, 0); j <= hi && j < len(lines); j++ {
				keep[j] = true
			}
		}
	}

	var b strings.Builder
	skipped := false
	for i, l := range lines {
		if !keep[i] {
			if !skipped {
				b.WriteString(pterm.Gray("...") + "\n")
				skipped = true
			}
			continue
		}
		skipped = false
		switch l.Op {
		case DiffInsert:
			b.WriteString(pterm.Green("+ "+l.Text) + "\n")
		case DiffDelete:
			b.WriteString(pterm.Red("- "+l.Text) + "\n")
		default:
			b.WriteString("  " + l.Text + "\n")
		}
	}
	return b.String()
}
