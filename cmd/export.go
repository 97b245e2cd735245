package cmd

import (
	"os"

	"github.com/pterm/pterm"
	"github.com/repplus/paramscope/internal/present"
	"github.com/repplus/paramscope/internal/snapshot"
	"github.com/repplus/paramscope/internal/store"
	"github.com/spf13/cobra"
)

var (
	exportSaved  string
	exportDirArg string
	exportFile   string
	exportStdout bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the snapshot as page_params.json",
	Long: `Write the live snapshot (or a saved scan) as page_params.json: the whole
document, pretty-printed with 2-space indentation.

Examples:
  paramscope export                     ./page_params.json
  paramscope export --dir ~/recon       ~/recon/page_params.json
  paramscope export --file out.json     Exact path
  paramscope export --saved latest      From the newest saved scan
  paramscope export --stdout | jq .forms`,
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, _, err := loadSnapshot(exportSaved)
		if err != nil {
			return err
		}

		p := present.New(nil, nopRenderer{}, present.WithLogger(logger))
		if doc != nil {
			if err := p.Render(doc); err != nil {
				return err
			}
		}

		if exportStdout {
			return p.Export(present.WriterExporter{W: os.Stdout})
		}

		exporter := present.FileExporter{Dir: exportDir(exportDirArg), Path: exportFile}
		if err := p.Export(exporter); err != nil {
			return err
		}

		target := exporter.Target(snapshot.ExportFileName)
		if getOutputMode() == store.OutputJSON {
			return printJSON(map[string]interface{}{"path": target, "url": doc.URL})
		}
		pterm.Success.Printf("Exported %s\n", target)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVar(&exportSaved, "saved", "", "Export a saved scan (ID, prefix, or 'latest')")
	exportCmd.Flags().StringVar(&exportDirArg, "dir", "", "Output directory (default from config, else current)")
	exportCmd.Flags().StringVar(&exportFile, "file", "", "Exact output path")
	exportCmd.Flags().BoolVar(&exportStdout, "stdout", false, "Write to stdout instead of a file")
}
