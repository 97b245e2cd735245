package cmd

import (
	"fmt"
	"strings"

	"github.com/pterm/pterm"
	"github.com/repplus/paramscope/internal/noise"
	"github.com/repplus/paramscope/internal/output"
	"github.com/repplus/paramscope/internal/snapshot"
	"github.com/repplus/paramscope/internal/store"
	"github.com/spf13/cobra"
)

var (
	paramsSaved   string
	paramsNoNoise bool
	paramsSource  string
	paramsAll     bool
)

var paramsCmd = &cobra.Command{
	Use:     "params",
	Aliases: []string{"summary"},
	Short:   "Parameter index with noise hints",
	Long: `Flatten a snapshot into one list of parameter names with per-source counts.

Default: reads the LIVE snapshot. Use --saved to index a saved scan.

Shows:
  - Every name from page params, form inputs, link params and JS names
  - How often each appears per source (page, form, link, js)
  - Likely noise (tracking, analytics, CSRF tokens, session ids)
  - Hosts that the parameterized links point to

Names on the ignore list ('paramscope ignore') are hidden unless --all.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, _, err := loadSnapshot(paramsSaved)
		if err != nil || doc == nil {
			return err
		}

		var ignored func(string) bool
		if !paramsAll {
			s, err := store.Get()
			if err != nil {
				return fmt.Errorf("failed to load store: %w", err)
			}
			ignored = s.IsIgnoredParam
		}

		idx := snapshot.BuildIndex(doc)
		idx.Params = filterParams(idx.Params, paramsSource, paramsNoNoise, ignored)

		if getOutputMode() == store.OutputJSON {
			return printJSON(idx)
		}
		printParams(idx, doc)
		return nil
	},
}

func filterParams(params []snapshot.ParamSummary, source string, dropNoise bool, ignored func(string) bool) []snapshot.ParamSummary {
	out := make([]snapshot.ParamSummary, 0, len(params))
	for _, p := range params {
		if ignored != nil && ignored(p.Name) {
			continue
		}
		if dropNoise && p.NoiseType != "" {
			continue
		}
		if source != "" && p.Sources[source] == 0 {
			continue
		}
		out = append(out, p)
	}
	return out
}

func printParams(idx snapshot.Index, doc *snapshot.Document) {
	pterm.DefaultBox.WithTitle("Parameter Index").WithTitleTopCenter().Println(
		fmt.Sprintf("URL: %s\nScanned: %s\n%s",
			doc.URL, doc.Timestamp, output.FormatCounts(doc)))

	fmt.Println()
	pterm.DefaultSection.Println("Parameters")
	if len(idx.Params) == 0 {
		pterm.Info.Println("No parameter names found")
	} else {
		tableData := pterm.TableData{{"Name", "Total", "Sources", "Noise"}}
		limit := 50
		if getOutputMode() == store.OutputCompact {
			limit = 20
		}
		for i, p := range idx.Params {
			if i >= limit {
				break
			}
			tableData = append(tableData, []string{
				p.Name,
				fmt.Sprintf("%d", p.Total),
				output.FormatParamSources(p.Sources),
				p.NoiseType,
			})
		}
		pterm.DefaultTable.WithHasHeader().WithData(tableData).Render()
		if len(idx.Params) > limit {
			pterm.Printf("  ... and %d more names\n", len(idx.Params)-limit)
		}
	}

	if len(idx.Hosts) > 0 {
		fmt.Println()
		pterm.DefaultSection.Println("Link Hosts")
		for _, h := range idx.Hosts {
			label := ""
			if h.Category != "" {
				label = " [" + h.Category + "]"
			}
			fmt.Printf("  %-40s %d links%s\n", h.Host, h.Links, label)
		}
	}

	if noisy := idx.NoiseNames(); len(noisy) > 0 {
		fmt.Println()
		pterm.DefaultSection.Println("Likely Noise")
		csrf := []string{}
		for _, name := range noisy {
			if noise.IsCSRFParam(name) {
				csrf = append(csrf, name)
			}
		}
		pterm.Warning.Printf("  %d names look like tracking or framework noise\n", len(noisy))
		fmt.Printf("    %s\n", strings.Join(noisy, ", "))
		if len(csrf) > 0 {
			pterm.Info.Printf("CSRF tokens present: %s\n", strings.Join(csrf, ", "))
		}
		fmt.Println()
		pterm.Info.Println("Hide them with: paramscope params --no-noise")
	}

	fmt.Println()
	pterm.DefaultSection.Println("Next Steps")
	fmt.Println("  paramscope show              Full sections")
	fmt.Println("  paramscope export            Write page_params.json")
	fmt.Println("  paramscope save --note ...   Archive this snapshot")
}

func init() {
	rootCmd.AddCommand(paramsCmd)
	paramsCmd.Flags().StringVar(&paramsSaved, "saved", "", "Read from saved scan (ID, prefix, or 'latest')")
	paramsCmd.Flags().BoolVar(&paramsNoNoise, "no-noise", false, "Hide names classified as noise")
	paramsCmd.Flags().StringVar(&paramsSource, "source", "", "Only names seen in this source: page, form, link, js")
	paramsCmd.Flags().BoolVar(&paramsAll, "all", false, "Include names on the ignore list")
}
