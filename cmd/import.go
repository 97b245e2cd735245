package cmd

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/repplus/paramscope/internal/output"
	"github.com/repplus/paramscope/internal/store"
	"github.com/spf13/cobra"
)

var (
	importNote string
)

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Archive an exported page_params.json as a saved scan",
	Long: `Import a page_params.json produced by 'paramscope export' or the
extension popup's Export button.

The file is stored as a saved scan viewable with 'paramscope show --saved'.

Example:
  paramscope import ./page_params.json
  paramscope import ./page_params.json --note "staging"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		filePath := args[0]

		doc, err := store.ReadSnapshotFile(filePath)
		if err != nil {
			return fmt.Errorf("failed to read snapshot: %w", err)
		}
		if doc.URL == "" {
			return fmt.Errorf("%s: not a page snapshot (no url)", filePath)
		}

		sc, added, err := saveScan(doc, importNote)
		if err != nil {
			return err
		}

		if getOutputMode() == store.OutputJSON {
			result := map[string]interface{}{
				"scan_id": sc.ID,
				"added":   added,
				"url":     doc.URL,
				"source":  filePath,
				"counts":  output.FormatScan(sc),
			}
			return printJSON(result)
		}

		if added {
			pterm.Success.Printf("Imported %s as scan: %s\n", filePath, sc.ID)
		} else {
			pterm.Info.Printf("Already saved as %s\n", sc.ID)
		}
		pterm.Info.Printf("URL: %s\n", doc.URL)
		pterm.Info.Println(output.FormatCounts(doc))
		fmt.Println()
		pterm.Info.Printf("View with: paramscope show --saved %s\n", sc.ID)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
	importCmd.Flags().StringVar(&importNote, "note", "", "Add a note to the imported scan")
}
