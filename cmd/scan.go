package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pterm/pterm"
	"github.com/repplus/paramscope/internal/config"
	"github.com/repplus/paramscope/internal/host"
	"github.com/repplus/paramscope/internal/output"
	"github.com/repplus/paramscope/internal/present"
	"github.com/repplus/paramscope/internal/snapshot"
	"github.com/repplus/paramscope/internal/store"
	"github.com/spf13/cobra"
)

var (
	scanVia       string
	scanHeaders   []string
	scanUserAgent string
	scanBaseURL   string
	scanCDP       string
	scanMatch     string
	scanExport    bool
	scanDir       string
	scanFile      string
	scanSave      bool
	scanNote      string
	scanTimeout   time.Duration
	scanShow      bool
	scanBin       string
)

var scanCmd = &cobra.Command{
	Use:   "scan [target]",
	Short: "Snapshot a page's parameters",
	Long: `Snapshot a page and render its parameters in four sections:
page URL query params, forms, links with query params and JavaScript names.

Every successful scan replaces the live snapshot, so 'show', 'export',
'params' and 'save' work on it afterwards.

Hosts (--via):
  static   Fetch the target over HTTP (or read a file, "-" for stdin) and
           scan the HTML as served. Scripts do not run. (default)
  cdp      Attach to a Chrome started with --remote-debugging-port and scan
           its active tab. No target needed; --match picks a tab by URL.
  rod      Launch headless Chrome, load the target and scan after load.

Examples:
  paramscope scan https://example.com/search?q=test
  paramscope scan example.com -H "Cookie: session=abc"
  curl -s https://example.com | paramscope scan - --base-url https://example.com/
  paramscope scan --via cdp --match example.com
  paramscope scan --via rod https://app.example.com --export --dir ./out
  paramscope scan https://example.com --save --note "landing"`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		target := ""
		if len(args) == 1 {
			target = args[0]
		}

		via := scanVia
		if via == "" {
			via = cfg.Via
		}
		h, err := buildHost(via, target)
		if err != nil {
			return err
		}
		if c, ok := h.(host.Closer); ok {
			defer func() {
				if err := c.Close(); err != nil {
					logger.Warn("failed to close browser", "error", err)
				}
			}()
		}

		timeout := scanTimeout
		if timeout == 0 {
			timeout = cfg.Timeout
		}
		ctx, cancel := commandContext(cmd, timeout)
		defer cancel()

		renderer := newRenderer()
		if term, ok := renderer.(*output.Terminal); ok && scanExport {
			term.ExportHint = ""
		}
		p := present.New(h, renderer, present.WithLogger(logger))

		doc, err := p.Scan(ctx)
		if err != nil {
			if getOutputMode() == store.OutputJSON {
				return err
			}
			return shownError{err}
		}

		if livePath, err := store.WriteLive(doc); err != nil {
			logger.Warn("could not update live snapshot", "error", err)
		} else {
			logger.Debug("live snapshot updated", "path", livePath)
		}

		var savedID string
		if scanSave {
			sc, added, err := saveScan(doc, scanNote)
			if err != nil {
				return err
			}
			savedID = sc.ID
			if getOutputMode() != store.OutputJSON {
				if added {
					pterm.Success.Printf("Saved scan: %s\n", sc.ID)
				} else {
					pterm.Info.Printf("Unchanged since saved scan %s\n", sc.ID)
				}
			}
		}

		if scanExport {
			exporter := present.FileExporter{Dir: exportDir(scanDir), Path: scanFile}
			if err := p.Export(exporter); err != nil {
				return err
			}
			if getOutputMode() != store.OutputJSON {
				pterm.Success.Printf("Exported %s\n", exporter.Target(snapshot.ExportFileName))
			}
		}

		if getOutputMode() == store.OutputJSON {
			if savedID != "" {
				logger.Info("scan saved", "id", savedID)
			}
			return p.Export(present.WriterExporter{W: os.Stdout})
		}
		return nil
	},
}

// buildHost creates the host named by via for target.
func buildHost(via, target string) (host.Host, error) {
	switch strings.ToLower(via) {
	case config.ViaStatic:
		lines := append(append([]string{}, cfg.Static.Headers...), scanHeaders...)
		headers, err := host.ParseHeaders(lines)
		if err != nil {
			return nil, err
		}
		userAgent := scanUserAgent
		if userAgent == "" {
			userAgent = cfg.Static.UserAgent
		}
		return host.NewStatic(host.StaticConfig{
			Target:    target,
			BaseURL:   scanBaseURL,
			UserAgent: userAgent,
			Headers:   headers,
			Logger:    logger,
		}), nil

	case config.ViaCDP:
		endpoint := scanCDP
		if endpoint == "" {
			endpoint = cfg.CDP.Endpoint
		}
		match := scanMatch
		if match == "" {
			match = cfg.CDP.Match
		}
		if target != "" && match == "" {
			match = target
		}
		return host.NewCDP(host.CDPConfig{Endpoint: endpoint, Match: match, Logger: logger}), nil

	case config.ViaRod:
		bin := scanBin
		if bin == "" {
			bin = cfg.Rod.Bin
		}
		return host.NewRod(host.RodConfig{
			Target:     target,
			ControlURL: cfg.Rod.ControlURL,
			Bin:        bin,
			Headless:   !(scanShow || cfg.Rod.Show),
			Logger:     logger,
		}), nil
	}
	return nil, fmt.Errorf("unknown host %q (want static, cdp or rod)", via)
}

func init() {
	rootCmd.AddCommand(scanCmd)
	f := scanCmd.Flags()
	f.StringVar(&scanVia, "via", "", "Host: static, cdp or rod (default from config, else static)")
	f.StringArrayVarP(&scanHeaders, "header", "H", nil, "Request header for static fetches (repeatable)")
	f.StringVar(&scanUserAgent, "user-agent", "", "User-Agent for static fetches")
	f.StringVar(&scanBaseURL, "base-url", "", "Document URL for file or stdin input")
	f.StringVar(&scanCDP, "cdp", "", "DevTools endpoint for --via cdp (env PARAMSCOPE_CDP)")
	f.StringVar(&scanMatch, "match", "", "Pick the first tab whose URL contains this (--via cdp)")
	f.StringVar(&scanBin, "browser", "", "Browser binary for --via rod")
	f.BoolVar(&scanShow, "show", false, "Show the browser window (--via rod)")
	f.BoolVar(&scanExport, "export", false, "Write page_params.json after a successful scan")
	f.StringVar(&scanDir, "dir", "", "Directory for --export (default from config, else current)")
	f.StringVar(&scanFile, "file", "", "Exact output path for --export")
	f.BoolVar(&scanSave, "save", false, "Archive the snapshot as a saved scan")
	f.StringVar(&scanNote, "note", "", "Note for --save")
	f.DurationVar(&scanTimeout, "timeout", 0, "Abort the scan after this long (0 = no limit)")
}
