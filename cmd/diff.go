package cmd

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/pterm/pterm"
	"github.com/repplus/paramscope/internal/output"
	"github.com/repplus/paramscope/internal/present"
	"github.com/repplus/paramscope/internal/snapshot"
	"github.com/repplus/paramscope/internal/store"
	"github.com/spf13/cobra"
)

var diffContext int

var diffCmd = &cobra.Command{
	Use:   "diff <a> <b>",
	Short: "Compare two snapshots section by section",
	Long: `Compare two snapshots. Each side is "live", a saved scan reference (ID,
prefix, "latest") or a path to an exported page_params.json.

Shows parameter names that appeared or disappeared, then a line diff of
every section that changed. Timestamps are ignored.

Examples:
  paramscope diff latest live
  paramscope diff 20260101-0930 20260102
  paramscope diff old/page_params.json live -o json`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := resolveSnapshot(args[0])
		if err != nil {
			return err
		}
		b, err := resolveSnapshot(args[1])
		if err != nil {
			return err
		}

		result, err := diffSnapshots(a, b)
		if err != nil {
			return err
		}
		result.A, result.B = args[0], args[1]

		if getOutputMode() == store.OutputJSON {
			return printJSON(result)
		}
		printDiff(result, a, b)
		return nil
	},
}

// SnapshotDiff is the comparison of two snapshots
type SnapshotDiff struct {
	A             string        `json:"a"`
	B             string        `json:"b"`
	Changed       bool          `json:"changed"`
	URLChanged    bool          `json:"url_changed"`
	ParamsAdded   []string      `json:"params_added"`
	ParamsRemoved []string      `json:"params_removed"`
	Sections      []SectionDiff `json:"sections"`
}

// SectionDiff is the line diff of one rendered section
type SectionDiff struct {
	Title   string            `json:"title"`
	Changed bool              `json:"changed"`
	Lines   []output.DiffLine `json:"lines,omitempty"`
}

func resolveSnapshot(ref string) (*snapshot.Document, error) {
	if ref == "live" {
		doc, err := store.ReadLive()
		if err != nil {
			return nil, fmt.Errorf("live snapshot: %w", err)
		}
		return doc, nil
	}
	if info, err := os.Stat(ref); err == nil && !info.IsDir() {
		return store.ReadSnapshotFile(ref)
	}
	s, err := store.Get()
	if err != nil {
		return nil, fmt.Errorf("failed to load store: %w", err)
	}
	sc, err := s.GetScan(ref)
	if err != nil {
		return nil, err
	}
	return sc.Snapshot, nil
}

func diffSnapshots(a, b *snapshot.Document) (SnapshotDiff, error) {
	result := SnapshotDiff{
		URLChanged:    a.URL != b.URL,
		ParamsAdded:   []string{},
		ParamsRemoved: []string{},
	}

	before := paramNames(a)
	after := paramNames(b)
	for name := range after {
		if !before[name] {
			result.ParamsAdded = append(result.ParamsAdded, name)
		}
	}
	for name := range before {
		if !after[name] {
			result.ParamsRemoved = append(result.ParamsRemoved, name)
		}
	}
	sort.Strings(result.ParamsAdded)
	sort.Strings(result.ParamsRemoved)

	sa, err := present.Sections(a)
	if err != nil {
		return result, err
	}
	sb, err := present.Sections(b)
	if err != nil {
		return result, err
	}
	for i := range sa {
		lines := output.DiffLines(sa[i].Body+"\n", sb[i].Body+"\n")
		sd := SectionDiff{Title: sa[i].Title, Changed: output.HasChanges(lines)}
		if sd.Changed {
			sd.Lines = lines
		}
		result.Sections = append(result.Sections, sd)
	}

	result.Changed = result.URLChanged
	for _, sd := range result.Sections {
		result.Changed = result.Changed || sd.Changed
	}
	return result, nil
}

func paramNames(doc *snapshot.Document) map[string]bool {
	names := make(map[string]bool)
	for _, p := range snapshot.BuildIndex(doc).Params {
		names[p.Name] = true
	}
	return names
}

func printDiff(d SnapshotDiff, a, b *snapshot.Document) {
	pterm.DefaultSection.Printf("%s → %s\n", d.A, d.B)
	if d.URLChanged {
		fmt.Printf("  url: %s\n", pterm.Red("- "+a.URL))
		fmt.Printf("       %s\n", pterm.Green("+ "+b.URL))
	} else {
		fmt.Printf("  url: %s\n", a.URL)
	}
	fmt.Printf("  scanned: %s → %s\n", a.Timestamp, b.Timestamp)

	if !d.Changed {
		fmt.Println()
		pterm.Success.Println("No differences")
		return
	}

	if len(d.ParamsAdded) > 0 || len(d.ParamsRemoved) > 0 {
		fmt.Println()
		pterm.DefaultSection.WithLevel(2).Println("Parameter names")
		if len(d.ParamsAdded) > 0 {
			fmt.Println("  " + pterm.Green("+ "+strings.Join(d.ParamsAdded, ", ")))
		}
		if len(d.ParamsRemoved) > 0 {
			fmt.Println("  " + pterm.Red("- "+strings.Join(d.ParamsRemoved, ", ")))
		}
	}

	for _, sd := range d.Sections {
		if !sd.Changed {
			continue
		}
		fmt.Println()
		pterm.DefaultSection.WithLevel(2).Println(sd.Title)
		fmt.Print(output.FormatDiff(sd.Lines, diffContext))
	}
}

func init() {
	rootCmd.AddCommand(diffCmd)
	diffCmd.Flags().IntVarP(&diffContext, "context", "U", 3, "Unchanged lines shown around each change (-1 = all)")
}
