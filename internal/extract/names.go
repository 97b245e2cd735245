package extract

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"github.com/repplus/paramscope/internal/snapshot"
)

// jsSpace is the JavaScript \s class; RE2's \s is ASCII only.
const jsSpace = `[\t\n\v\f\r \p{Zs}\x{FEFF}\x{2028}\x{2029}]`

// Best-effort text patterns, not a JavaScript parser. Declarations are
// collected first, then function parameter lists.
var (
	declRegex = regexp.MustCompile(strings.NewReplacer(`\s`, jsSpace).Replace(
		`\bvar\s+(\w+)\s*=|\blet\s+(\w+)\s*=|\bconst\s+(\w+)\s*=`))
	funcRegex = regexp.MustCompile(strings.NewReplacer(`\s`, jsSpace).Replace(
		`function\s+\w*\s*\(([^)]*)\)`))
)

// ScriptText joins the text of every <script> element with newlines.
// External sources are not fetched. Scripts inside <template> content are
// not part of the document, so they are skipped.
func (p *Page) ScriptText() string {
	var parts []string
	p.Doc.Find("script").Each(func(_ int, s *goquery.Selection) {
		if s.ParentsFiltered("template").Length() > 0 {
			return
		}
		parts = append(parts, s.Text())
	})
	return strings.Join(parts, "\n")
}

// JSNames runs ScanNames over the page's inline script text.
func (p *Page) JSNames() snapshot.NameSet {
	return ScanNames(p.ScriptText())
}

// ScanNames extracts declared variable names and function parameter names
// from script text, deduplicated in order of first appearance.
func ScanNames(text string) snapshot.NameSet {
	names := snapshot.NewNameCollector()
	for _, m := range declRegex.FindAllStringSubmatch(text, -1) {
		for _, g := range m[1:] {
			if g != "" {
				names.Add(g)
				break
			}
		}
	}
	for _, m := range funcRegex.FindAllStringSubmatch(text, -1) {
		for _, param := range strings.Split(m[1], ",") {
			names.Add(strings.TrimFunc(param, isJSSpace))
		}
	}
	return names.Names()
}

// isJSSpace matches what String.prototype.trim removes.
func isJSSpace(r rune) bool {
	switch r {
	case '\t', '\n', '\v', '\f', '\r', '\uFEFF', '\u2028', '\u2029':
		return true
	}
	return unicode.Is(unicode.Zs, r)
}
