package cmd

import (
	"fmt"
	"time"

	"github.com/pterm/pterm"
	"github.com/repplus/paramscope/internal/output"
	"github.com/repplus/paramscope/internal/store"
	"github.com/spf13/cobra"
)

var scansLimit int

var scansCmd = &cobra.Command{
	Use:     "scans",
	Aliases: []string{"sessions"},
	Short:   "List saved scans",
	Long: `List all saved scans in store.json.

Use 'paramscope show --saved <id>' to view a specific scan.
Use 'paramscope save' to save the live snapshot.

Examples:
  paramscope scans              List all scans
  paramscope scans -l 5         Five most recent
  paramscope scans -o json      JSON output for agents`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := store.Get()
		if err != nil {
			return fmt.Errorf("failed to load store: %w", err)
		}

		scans := s.ListScans()

		if len(scans) == 0 {
			if getOutputMode() == store.OutputJSON {
				return printJSON([]output.ScanOutput{})
			}
			pterm.Info.Println("No saved scans")
			pterm.Info.Println("Use 'paramscope save' to archive the live snapshot")
			return nil
		}

		totalCount := len(scans)
		if scansLimit > 0 && len(scans) > scansLimit {
			scans = scans[:scansLimit]
		}

		if getOutputMode() == store.OutputJSON {
			return printJSON(output.FormatScans(scans))
		}

		pterm.DefaultSection.Println("Saved Scans")

		tableData := pterm.TableData{{"ID", "URL", "Params", "Forms", "Links", "Names", "Saved At", "Note"}}
		for _, row := range output.FormatScans(scans) {
			savedAt := row.SavedAt
			if t, err := time.Parse(time.RFC3339Nano, row.SavedAt); err == nil {
				savedAt = t.Local().Format("2006-01-02 15:04:05")
			}
			tableData = append(tableData, []string{
				row.ID,
				row.URL,
				fmt.Sprintf("%d", row.Params),
				fmt.Sprintf("%d", row.Forms),
				fmt.Sprintf("%d", row.Links),
				fmt.Sprintf("%d", row.JSNames),
				savedAt,
				row.Note,
			})
		}

		pterm.DefaultTable.WithHasHeader().WithData(tableData).Render()

		if scansLimit > 0 && len(scans) < totalCount {
			fmt.Printf("\n[Showing %d of %d scans]\n", len(scans), totalCount)
		}

		fmt.Println()
		pterm.Info.Println("To view a scan: paramscope show --saved <id>")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(scansCmd)
	scansCmd.Flags().IntVarP(&scansLimit, "limit", "l", 0, "Limit number of scans shown (0=unlimited)")
}
