package output

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/repplus/paramscope/internal/snapshot"
	"github.com/repplus/paramscope/internal/store"
)

// FormatBodySize formats byte size to human readable
func FormatBodySize(size int) string {
	if size < 1024 {
		return fmt.Sprintf("%dB", size)
	} else if size < 1024*1024 {
		return fmt.Sprintf("%.1fKB", float64(size)/1024)
	} else {
		return fmt.Sprintf("%.1fMB", float64(size)/(1024*1024))
	}
}

// TruncateSection shortens a section body for compact output.
// Returns the truncated body and whether it was truncated
func TruncateSection(body string, cfg store.TruncateConfig) (string, bool) {
	bodyLen := len(body)
	truncated := body

	if cfg.MaxLines > 0 {
		lines := strings.SplitAfter(truncated, "\n")
		if len(lines) > cfg.MaxLines {
			truncated = strings.TrimSuffix(strings.Join(lines[:cfg.MaxLines], ""), "\n")
		}
	}
	if cfg.MaxSectionSize > 0 && len(truncated) > cfg.MaxSectionSize {
		cut := cfg.MaxSectionSize
		// Back off to a rune boundary.
		for cut > 0 && !isRuneStart(truncated[cut]) {
			cut--
		}
		truncated = truncated[:cut]
	}

	if truncated == body {
		return body, false
	}
	if cfg.ShowFullSize {
		return truncated + fmt.Sprintf("\n[...truncated, %s total]", FormatBodySize(bodyLen)), true
	}
	return truncated + "\n[...truncated]", true
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}

// ToJSON converts output to JSON string
func ToJSON(v interface{}) (string, error) {
	data, err := sonic.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// ToCompactJSON converts output to compact JSON (no indentation)
func ToCompactJSON(v interface{}) (string, error) {
	data, err := sonic.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// ScanOutput summarizes a saved scan for listings
type ScanOutput struct {
	ID        string `json:"id"`
	URL       string `json:"url"`
	Note      string `json:"note,omitempty"`
	SavedAt   string `json:"saved_at"`
	Params    int    `json:"params"`
	Forms     int    `json:"forms"`
	Inputs    int    `json:"inputs"`
	Links     int    `json:"links"`
	JSNames   int    `json:"js_names"`
	ScannedAt string `json:"scanned_at"`
}

// FormatScan summarizes a saved scan
func FormatScan(sc *store.Scan) ScanOutput {
	out := ScanOutput{
		ID:      sc.ID,
		Note:    sc.Note,
		SavedAt: snapshot.FormatTimestamp(time.UnixMilli(sc.Timestamp)),
	}
	if doc := sc.Snapshot; doc != nil {
		out.URL = doc.URL
		out.Params = len(doc.PageQueryParams)
		out.Forms = len(doc.Forms)
		out.Inputs = doc.InputCount()
		out.Links = len(doc.LinksWithParams)
		out.JSNames = len(doc.JSNames)
		out.ScannedAt = doc.Timestamp
	}
	return out
}

// FormatScans summarizes multiple scans
func FormatScans(scans []store.Scan) []ScanOutput {
	result := make([]ScanOutput, len(scans))
	for i := range scans {
		result[i] = FormatScan(&scans[i])
	}
	return result
}

// FormatCounts returns a single-line summary of a snapshot
func FormatCounts(doc *snapshot.Document) string {
	return fmt.Sprintf("%d page params, %d forms (%d inputs), %d links, %d js names",
		len(doc.PageQueryParams), len(doc.Forms), doc.InputCount(), len(doc.LinksWithParams), len(doc.JSNames))
}

// FormatParamSources renders per-source counts as "page:1 form:2".
func FormatParamSources(sources map[string]int) string {
	keys := make([]string, 0, len(sources))
	for k := range sources {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s:%d", k, sources[k]))
	}
	return strings.Join(parts, " ")
}
