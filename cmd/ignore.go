package cmd

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/repplus/paramscope/internal/store"
	"github.com/spf13/cobra"
)

var (
	ignoreRemove bool
	ignoreClear  bool
	ignoreList   bool
)

var ignoreCmd = &cobra.Command{
	Use:   "ignore [param...]",
	Short: "Manage parameter ignore list",
	Long: `Add or remove parameter names from the ignore list.

Ignored names are hidden from 'paramscope params' unless --all is given.
Use it for names that show up on every page of a target and never matter.

Examples:
  paramscope ignore _ga gclid              Add names to ignore
  paramscope ignore --remove gclid         Remove from ignore list
  paramscope ignore --list                 Show all ignored names
  paramscope ignore --clear                Clear entire ignore list`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := store.Get()
		if err != nil {
			return fmt.Errorf("failed to load store: %w", err)
		}

		if ignoreList || (len(args) == 0 && !ignoreClear) {
			return printIgnored(s.GetIgnoredParams(), !ignoreList)
		}

		if ignoreClear {
			count := s.ClearIgnoreList()
			if err := s.Save(); err != nil {
				return fmt.Errorf("failed to save: %w", err)
			}
			if getOutputMode() == store.OutputJSON {
				return printJSON(map[string]interface{}{
					"action":  "clear",
					"removed": count,
				})
			}
			pterm.Success.Printf("Cleared ignore list (%d names removed)\n", count)
			return nil
		}

		if ignoreRemove {
			count := s.UnignoreParams(args...)
			if err := s.Save(); err != nil {
				return fmt.Errorf("failed to save: %w", err)
			}
			if getOutputMode() == store.OutputJSON {
				return printJSON(map[string]interface{}{
					"action":  "remove",
					"params":  args,
					"removed": count,
				})
			}
			pterm.Success.Printf("Removed %d name(s) from ignore list\n", count)
			return nil
		}

		count := s.IgnoreParams(args...)
		if err := s.Save(); err != nil {
			return fmt.Errorf("failed to save: %w", err)
		}
		total := len(s.GetIgnoredParams())
		if getOutputMode() == store.OutputJSON {
			return printJSON(map[string]interface{}{
				"action": "add",
				"params": args,
				"added":  count,
				"total":  total,
			})
		}
		pterm.Success.Printf("Added %d name(s) to ignore list\n", count)
		pterm.Info.Printf("Total ignored: %d names\n", total)
		return nil
	},
}

func printIgnored(ignored []string, hints bool) error {
	if getOutputMode() == store.OutputJSON {
		return printJSON(ignored)
	}
	if len(ignored) == 0 {
		if hints {
			pterm.Info.Println("No ignored params. Use 'paramscope ignore <name>' to add.")
		} else {
			pterm.Info.Println("No ignored params")
		}
		return nil
	}
	pterm.DefaultSection.Println("Ignored Params")
	for _, name := range ignored {
		fmt.Printf("  %s\n", name)
	}
	fmt.Printf("\nTotal: %d names\n", len(ignored))
	if hints {
		fmt.Println("\nUse --remove to unignore, --clear to clear all")
	}
	return nil
}

func init() {
	rootCmd.AddCommand(ignoreCmd)
	ignoreCmd.Flags().BoolVar(&ignoreRemove, "remove", false, "Remove names from ignore list")
	ignoreCmd.Flags().BoolVar(&ignoreClear, "clear", false, "Clear entire ignore list")
	ignoreCmd.Flags().BoolVar(&ignoreList, "list", false, "List all ignored names")
}
