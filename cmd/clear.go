package cmd

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/repplus/paramscope/internal/store"
	"github.com/spf13/cobra"
)

var clearLiveOnly bool

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear all data (live snapshot, saved scans, ignore list)",
	Long: `Clear stored data.

This clears:
  - Live snapshot (live.json)
  - All saved scans in store.json (skip with --live)
  - The parameter ignore list (skip with --live)

Examples:
  paramscope clear                Clear everything
  paramscope clear --live         Only drop the live snapshot
  paramscope clear -o json        JSON output for agents`,
	RunE: func(cmd *cobra.Command, args []string) error {
		livePath, _ := store.GetLiveFilePath()
		hadLive := false
		if doc, err := store.ReadLive(); err == nil && doc != nil {
			hadLive = true
		}
		if err := store.ClearLive(); err != nil {
			pterm.Warning.Printf("Could not clear live.json: %v\n", err)
		}

		scanCount, ignoredCount := 0, 0
		if !clearLiveOnly {
			s, err := store.Get()
			if err != nil {
				return fmt.Errorf("failed to load store: %w", err)
			}
			scanCount, ignoredCount = s.ClearAll()
			if err := s.Save(); err != nil {
				return fmt.Errorf("failed to save: %w", err)
			}
		}

		if getOutputMode() == store.OutputJSON {
			result := map[string]interface{}{
				"cleared_live":    hadLive,
				"cleared_scans":   scanCount,
				"cleared_ignored": ignoredCount,
				"live_path":       livePath,
			}
			return printJSON(result)
		}

		if clearLiveOnly {
			pterm.Success.Println("Cleared live snapshot")
		} else {
			pterm.Success.Println("Cleared all data")
		}
		if hadLive {
			pterm.Info.Printf("Live snapshot: %s\n", livePath)
		}
		if scanCount > 0 {
			pterm.Info.Printf("Saved scans: %d\n", scanCount)
		}
		if ignoredCount > 0 {
			pterm.Info.Printf("Ignored params: %d\n", ignoredCount)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(clearCmd)
	clearCmd.Flags().BoolVar(&clearLiveOnly, "live", false, "Only clear the live snapshot")
}
