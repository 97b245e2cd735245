package cmd

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/repplus/paramscope/internal/output"
	"github.com/repplus/paramscope/internal/snapshot"
	"github.com/repplus/paramscope/internal/store"
	"github.com/spf13/cobra"
)

var (
	saveNote string
)

var saveCmd = &cobra.Command{
	Use:   "save",
	Short: "Save the live snapshot to the archive",
	Long: `Save the current live snapshot to store.json as a named scan.

The live snapshot remains intact after saving. A snapshot identical to an
already saved one (ignoring its timestamp) is not stored twice.

Examples:
  paramscope save                    Save with auto-generated ID (timestamp)
  paramscope save --note "checkout"  Save with descriptive note in ID
  paramscope save -o json            JSON output for agents`,
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, _, err := loadSnapshot("")
		if err != nil || doc == nil {
			return err
		}

		sc, added, err := saveScan(doc, saveNote)
		if err != nil {
			return err
		}

		if getOutputMode() == store.OutputJSON {
			result := map[string]interface{}{
				"scan_id":   sc.ID,
				"added":     added,
				"url":       sc.Snapshot.URL,
				"note":      sc.Note,
				"timestamp": sc.Timestamp,
			}
			return printJSON(result)
		}

		if added {
			pterm.Success.Printf("Saved scan: %s\n", sc.ID)
		} else {
			pterm.Info.Printf("Already saved as %s (snapshot unchanged)\n", sc.ID)
		}
		pterm.Info.Printf("URL: %s\n", sc.Snapshot.URL)
		pterm.Info.Println(output.FormatCounts(sc.Snapshot))
		if sc.Note != "" {
			pterm.Info.Printf("Note: %s\n", sc.Note)
		}
		pterm.Info.Println("\nTo view this scan:")
		fmt.Printf("  paramscope show --saved %s\n", sc.ID)
		return nil
	},
}

// saveScan archives doc in the persistent store.
func saveScan(doc *snapshot.Document, note string) (*store.Scan, bool, error) {
	s, err := store.Get()
	if err != nil {
		return nil, false, fmt.Errorf("failed to load store: %w", err)
	}
	sc, added := s.AddScan(store.GenerateScanID(note), note, doc)
	if !added {
		return sc, false, nil
	}
	if err := s.Save(); err != nil {
		return nil, false, fmt.Errorf("failed to save store: %w", err)
	}
	return sc, true, nil
}

func init() {
	rootCmd.AddCommand(saveCmd)
	saveCmd.Flags().StringVar(&saveNote, "note", "", "Note to include in scan ID")
}
