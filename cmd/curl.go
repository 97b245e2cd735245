package cmd

import (
	"fmt"
	"strconv"

	"github.com/pterm/pterm"
	"github.com/repplus/paramscope/internal/host"
	"github.com/repplus/paramscope/internal/output"
	"github.com/repplus/paramscope/internal/store"
	"github.com/spf13/cobra"
)

var (
	curlUseVars bool
	curlSaved   string
	curlHeaders []string
)

var curlCmd = &cobra.Command{
	Use:   "curl [form-number]",
	Short: "Generate curl commands that submit the snapshot's forms",
	Long: `Generate curl commands replaying each form of the snapshot with its
current input values. GET forms put the inputs in the query string, other
methods send them as an urlencoded body.

Forms are numbered from 1 in page order; pass a number to print just one.
Forms with method=dialog never send a request and are skipped.

Checkbox and radio inputs are included with their value whether or not they
are checked; the snapshot does not record checked state.

Use --use-vars to replace CSRF tokens and auth headers with shell variables.

Examples:
  paramscope curl                          Every form in the live snapshot
  paramscope curl 2 -H "Cookie: sid=abc"   Second form with a session
  paramscope curl --use-vars               $CSRF_TOKEN, $SESSION_COOKIE, ...
  paramscope curl --saved latest -o json`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, _, err := loadSnapshot(curlSaved)
		if err != nil || doc == nil {
			return err
		}

		if len(doc.Forms) == 0 {
			if getOutputMode() == store.OutputJSON {
				return printJSON([]interface{}{})
			}
			pterm.Info.Println("No forms in this snapshot")
			return nil
		}

		first, last := 0, len(doc.Forms)-1
		if len(args) == 1 {
			n, err := strconv.Atoi(args[0])
			if err != nil || n < 1 || n > len(doc.Forms) {
				return fmt.Errorf("form number must be 1..%d", len(doc.Forms))
			}
			first, last = n-1, n-1
			if _, ok := output.BuildFormRequest(doc.Forms[first], false); !ok {
				return fmt.Errorf("form %d uses method=dialog and is never submitted", n)
			}
		}

		headers, err := host.ParseHeaders(curlHeaders)
		if err != nil {
			return err
		}

		type curlOut struct {
			Form    int    `json:"form"`
			Method  string `json:"method"`
			URL     string `json:"url"`
			Body    string `json:"body,omitempty"`
			Command string `json:"command"`
		}
		results := []curlOut{}
		for i := first; i <= last; i++ {
			req, ok := output.BuildFormRequest(doc.Forms[i], curlUseVars)
			if !ok {
				continue
			}
			results = append(results, curlOut{
				Form:    i + 1,
				Method:  req.Method,
				URL:     req.URL,
				Body:    req.Body,
				Command: output.GenerateCurl(req, headers, curlUseVars),
			})
		}

		if getOutputMode() == store.OutputJSON {
			return printJSON(results)
		}
		if len(results) == 0 {
			pterm.Info.Println("No submittable forms in this snapshot")
			return nil
		}
		for i, r := range results {
			if i > 0 {
				fmt.Println()
			}
			fmt.Printf("# form %d: %s %s\n", r.Form, r.Method, doc.Forms[r.Form-1].Action)
			fmt.Println(r.Command)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(curlCmd)
	curlCmd.Flags().BoolVar(&curlUseVars, "use-vars", false, "Replace CSRF tokens and auth headers with shell variables")
	curlCmd.Flags().StringVar(&curlSaved, "saved", "", "Read from saved scan (ID or 'latest')")
	curlCmd.Flags().StringArrayVarP(&curlHeaders, "header", "H", nil, "Extra header to include (repeatable)")
}
