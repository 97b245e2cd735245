package cmd

import (
	"os"

	"github.com/repplus/paramscope/internal/present"
	"github.com/repplus/paramscope/internal/store"
	"github.com/spf13/cobra"
)

var showSaved string

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Render the live snapshot (or a saved scan)",
	Long: `Render the live snapshot the way a scan does: header plus the four
parameter sections.

Examples:
  paramscope show                      Live snapshot
  paramscope show --saved latest       Most recent saved scan
  paramscope show --saved 20260101     By scan ID prefix
  paramscope show -o compact           Truncate long sections
  paramscope show --json               The snapshot document itself`,
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, _, err := loadSnapshot(showSaved)
		if err != nil || doc == nil {
			return err
		}

		p := present.New(nil, newRenderer(), present.WithLogger(logger))
		if err := p.Render(doc); err != nil {
			return err
		}
		if getOutputMode() == store.OutputJSON {
			return p.Export(present.WriterExporter{W: os.Stdout})
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
	showCmd.Flags().StringVar(&showSaved, "saved", "", "Read from saved scan (ID, prefix, or 'latest')")
}
