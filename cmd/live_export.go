package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/pterm/pterm"
	"github.com/repplus/paramscope/internal/output"
	"github.com/repplus/paramscope/internal/present"
	"github.com/repplus/paramscope/internal/snapshot"
	"github.com/repplus/paramscope/internal/store"
)

// shownError is a failure the renderer already displayed.
type shownError struct{ err error }

func (e shownError) Error() string { return e.err.Error() }
func (e shownError) Unwrap() error { return e.err }

// loadSnapshot returns the saved scan named by ref, or the live snapshot
// when ref is empty. A missing live file yields (nil, nil) after telling the
// user how to produce one.
func loadSnapshot(ref string) (*snapshot.Document, string, error) {
	if ref != "" {
		s, err := store.Get()
		if err != nil {
			return nil, "", fmt.Errorf("failed to load store: %w", err)
		}
		sc, err := s.GetScan(ref)
		if err != nil {
			if errors.Is(err, store.ErrScanNotFound) && getOutputMode() != store.OutputJSON {
				pterm.Warning.Printf("Scan not found: %s\n", ref)
				pterm.Info.Println("Use 'paramscope scans' to list saved scans")
				return nil, "", shownError{err}
			}
			return nil, "", err
		}
		return sc.Snapshot, sc.ID, nil
	}

	livePath, err := store.GetLiveFilePath()
	if err != nil {
		return nil, "", fmt.Errorf("failed to get live path: %w", err)
	}
	doc, err := store.ReadSnapshotFile(livePath)
	if err != nil {
		if os.IsNotExist(err) {
			if getOutputMode() != store.OutputJSON {
				pterm.Info.Println("No live snapshot yet")
				pterm.Info.Println("Run 'paramscope scan <url>' or scan from the extension popup")
			}
			return nil, livePath, nil
		}
		return nil, livePath, fmt.Errorf("could not read live snapshot: %w", err)
	}
	return doc, livePath, nil
}

// newRenderer returns the terminal renderer for the current output mode, or
// a silent one in JSON mode.
func newRenderer() present.Renderer {
	mode := getOutputMode()
	if mode == store.OutputJSON {
		return nopRenderer{}
	}
	term := output.NewTerminal(os.Stdout, mode)
	term.SetTruncate(store.TruncateConfig{
		MaxSectionSize: cfg.Compact.MaxSectionSize,
		MaxLines:       cfg.Compact.MaxLines,
		ShowFullSize:   true,
	})
	return term
}

type nopRenderer struct{}

func (nopRenderer) Reset()                 {}
func (nopRenderer) Header(string)          {}
func (nopRenderer) Section(string, string) {}
func (nopRenderer) Error(string)           {}
func (nopRenderer) EnableExport([]byte)    {}
func (nopRenderer) DisableExport()         {}

func exportDir(flagDir string) string {
	if flagDir != "" {
		return flagDir
	}
	return cfg.Export.Dir
}
