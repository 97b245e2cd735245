package cmd

import (
	"fmt"
	"strings"

	"github.com/repplus/paramscope/internal/extract"
	"github.com/spf13/cobra"
)

var scriptCall bool

var scriptCmd = &cobra.Command{
	Use:   "script",
	Short: "Print the in-page snapshot function",
	Long: `Print the JavaScript function that browser hosts evaluate inside the tab.

The function takes no arguments and returns the snapshot object. Use --call
for an expression that can be pasted into a DevTools console.

Examples:
  paramscope script > snapshot.js
  paramscope script --call | pbcopy`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if scriptCall {
			fmt.Println(extract.ScriptCall())
			return nil
		}
		fmt.Println(strings.TrimSpace(extract.Script))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(scriptCmd)
	scriptCmd.Flags().BoolVar(&scriptCall, "call", false, "Wrap as an immediately invoked expression")
}
