package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/pterm/pterm"
	"github.com/repplus/paramscope/internal/config"
	"github.com/repplus/paramscope/internal/output"
	"github.com/repplus/paramscope/internal/store"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	outputMode string
	jsonOutput bool
	configPath string
	verbose    bool

	cfg    = config.Default()
	logger = slog.Default()
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "paramscope",
	Short: "Page parameter snapshots for recon",
	Long: `paramscope - parameter discovery from a live page

Snapshots the page in a browser tab (or a fetched document) and lists every
place it takes parameters: URL query params, forms with their inputs, links
carrying query strings and likely JavaScript variable names.

Scanning:
  paramscope scan https://example.com/?q=1   Fetch and scan a page
  paramscope scan --via cdp                  Scan the active tab of a running Chrome
  paramscope scan --via rod <url>            Scan after scripts ran in headless Chrome
  paramscope scan page.html --export         Scan a file and write page_params.json

Live snapshot (written by every scan and by the extension):
  paramscope show                            Render the live snapshot
  paramscope export                          Write page_params.json
  paramscope params                          Parameter index with noise hints
  paramscope watch                           Re-render whenever it changes

Saved scans:
  paramscope save --note "login"             Archive the live snapshot
  paramscope scans                           List saved scans
  paramscope diff latest 20260101            Compare two scans
  paramscope import page_params.json         Archive an exported file

Output modes (--output):
  pretty    Full sections (default)
  compact   Long sections truncated
  json      Raw JSON for piping to other tools`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger = newLogger(os.Stderr, verbose)
		slog.SetDefault(logger)

		loaded, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
		logger.Debug("config loaded", "via", cfg.Via, "output", cfg.Output)
		return nil
	},
}

// Execute adds all child commands to the root command
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		var shown shownError
		if !errors.As(err, &shown) {
			fmt.Fprint(os.Stderr, pterm.Error.Sprintln(err))
		}
		os.Exit(1)
	}
}

func init() {
	rootCmd.Version = Version
	rootCmd.SetVersionTemplate("{{.Version}}\n")
	rootCmd.PersistentFlags().StringVarP(&outputMode, "output", "o", "", "Output mode: pretty, compact, json (default from config, else pretty)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output as JSON (shorthand for --output json)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default $XDG_CONFIG_HOME/paramscope/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Debug logging to stderr")
}

// getOutputMode returns the current output mode
func getOutputMode() store.OutputMode {
	if jsonOutput {
		return store.OutputJSON
	}
	if outputMode != "" {
		return store.ParseOutputMode(outputMode)
	}
	return store.ParseOutputMode(cfg.Output)
}

func newLogger(w io.Writer, debug bool) *slog.Logger {
	level := pterm.LogLevelInfo
	if debug {
		level = pterm.LogLevelDebug
	}
	return slog.New(pterm.NewSlogHandler(pterm.DefaultLogger.WithWriter(w).WithLevel(level)))
}

// commandContext bounds cmd's context by the configured timeout.
func commandContext(cmd *cobra.Command, timeout time.Duration) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if timeout > 0 {
		return context.WithTimeout(ctx, timeout)
	}
	return context.WithCancel(ctx)
}

func printJSON(v interface{}) error {
	out, err := output.ToJSON(v)
	if err != nil {
		return err
	}
	fmt.Println(out)
	return nil
}
