package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pterm/pterm"
	"github.com/repplus/paramscope/internal/output"
	"github.com/repplus/paramscope/internal/present"
	"github.com/repplus/paramscope/internal/store"
	"github.com/spf13/cobra"
)

var watchDebounce time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-render the live snapshot whenever it changes",
	Long: `Watch live.json and re-render it after every scan, whether it came from
'paramscope scan' or from the extension through the native host.

In JSON mode each snapshot is printed as one compact line.

Examples:
  paramscope watch
  paramscope watch -o compact
  paramscope watch --json | jq -c .pageQueryParams`,
	RunE: func(cmd *cobra.Command, args []string) error {
		livePath, err := store.GetLiveFilePath()
		if err != nil {
			return err
		}
		livePath = filepath.Clean(livePath)
		if err := os.MkdirAll(filepath.Dir(livePath), 0o755); err != nil {
			return err
		}

		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			return fmt.Errorf("failed to start watcher: %w", err)
		}
		defer watcher.Close()
		if err := watcher.Add(filepath.Dir(livePath)); err != nil {
			return fmt.Errorf("failed to watch %s: %w", filepath.Dir(livePath), err)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		p := present.New(nil, newRenderer(), present.WithLogger(logger))
		if getOutputMode() != store.OutputJSON {
			pterm.Info.Printf("Watching %s (Ctrl+C to stop)\n", livePath)
		}
		renderLive(p, livePath)

		return watchLive(ctx, watcher, livePath, watchDebounce, func() { renderLive(p, livePath) })
	},
}

// watchLive calls onChange after livePath was written or replaced, at most
// once per debounce window.
func watchLive(ctx context.Context, watcher *fsnotify.Watcher, livePath string, debounce time.Duration, onChange func()) error {
	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != livePath {
				continue
			}
			logger.Debug("live file event", "op", event.Op.String())
			if event.Op.Has(fsnotify.Remove) && !event.Op.Has(fsnotify.Create) {
				if getOutputMode() != store.OutputJSON {
					pterm.Info.Println("Live snapshot cleared")
				}
				continue
			}
			if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Reset(debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			onChange()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error", "error", err)
		}
	}
}

func renderLive(p *present.Presenter, livePath string) {
	doc, err := store.ReadSnapshotFile(livePath)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn("could not read live snapshot", "error", err)
		}
		return
	}
	if err := p.Render(doc); err != nil {
		logger.Warn("could not render live snapshot", "error", err)
		return
	}
	if getOutputMode() == store.OutputJSON {
		line, err := output.ToCompactJSON(doc)
		if err != nil {
			logger.Warn("could not encode snapshot", "error", err)
			return
		}
		fmt.Println(line)
	}
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", 150*time.Millisecond, "Wait this long after a change before rendering")
}
