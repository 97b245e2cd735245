package store

import "github.com/repplus/paramscope/internal/snapshot"

// Scan is a saved page snapshot
type Scan struct {
	ID          string             `json:"id"`        // Format: "YYYYMMDD-HHMMSS" or "YYYYMMDD-HHMMSS-note"
	Timestamp   int64              `json:"timestamp"` // Unix millis when saved
	Note        string             `json:"note,omitempty"`
	Fingerprint string             `json:"fingerprint"`
	Snapshot    *snapshot.Document `json:"snapshot"`
}

// Store holds saved scans and the parameter ignore list
type Store struct {
	Scans         []Scan          `json:"scans"`
	IgnoredParams map[string]bool `json:"ignored_params"`

	path string
}

// OutputMode controls how much detail to show
type OutputMode string

const (
	OutputPretty  OutputMode = "pretty"  // Full sections (default)
	OutputCompact OutputMode = "compact" // Long sections truncated
	OutputJSON    OutputMode = "json"    // Raw JSON for piping
)

// ParseOutputMode maps a flag value to a mode, defaulting to pretty.
func ParseOutputMode(value string) OutputMode {
	switch OutputMode(value) {
	case OutputCompact, OutputJSON:
		return OutputMode(value)
	}
	return OutputPretty
}

// TruncateConfig controls section truncation in compact mode
type TruncateConfig struct {
	MaxSectionSize int  // Max bytes of a section body to show
	MaxLines       int  // Max lines of a section body to show
	ShowFullSize   bool // Show total size in truncation message
}

// DefaultTruncateConfig returns compact-mode defaults
func DefaultTruncateConfig() TruncateConfig {
	return TruncateConfig{
		MaxSectionSize: 800,
		MaxLines:       20,
		ShowFullSize:   true,
	}
}
