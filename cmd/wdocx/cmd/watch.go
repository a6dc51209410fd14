package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

const debounceDelay = 200 * time.Millisecond

func newWatchCommand(a *app) *cobra.Command {
	f := &convertFlags{}

	cmd := &cobra.Command{
		Use:   "watch INPUT OUTPUT",
		Short: "Convert again whenever the input changes",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			return a.watch(ctx, cmd.OutOrStdout(), cmd.ErrOrStderr(), args[0], args[1], f)
		},
	}

	cmd.Flags().StringVarP(&f.template, "template", "t", "", "DOCX template (overrides config)")
	cmd.Flags().StringVar(&f.to, "to", "", "output format: docx, html, md, json")
	cmd.Flags().BoolVar(&f.fragment, "fragment", false, "write an HTML body fragment")
	return cmd
}

// watch converts once, then again after each burst of writes to input until ctx is
// done. Conversion errors are reported and watching continues.
func (a *app) watch(ctx context.Context, out, errOut io.Writer, input, output string, f *convertFlags) error {
	if err := a.convert(out, input, output, f); err != nil {
		printError(errOut, "converting "+input, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	// Editors often replace the file, so watch the directory.
	dir := filepath.Dir(input)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch directory: %w", err)
	}
	a.logger.Info("watching", slog.String("input", input))

	return a.watchLoop(ctx, watcher.Events, watcher.Errors, input, debounceDelay, func() {
		if err := a.convert(out, input, output, f); err != nil {
			printError(errOut, "converting "+input, err)
		}
	})
}

// watchLoop calls convert once input has seen no change for delay. Every
// change restarts the wait, so a file saved in several writes converts once,
// with its final content.
func (a *app) watchLoop(ctx context.Context, events <-chan fsnotify.Event, errs <-chan error, input string, delay time.Duration, convert func()) error {
	timer := time.NewTimer(delay)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			a.logger.Info("stopped watching")
			return nil

		case event, ok := <-events:
			if !ok {
				return nil
			}
			if !affects(event, input) {
				continue
			}
			a.logger.Debug("input changed", slog.String("op", event.Op.String()))
			timer.Reset(delay)

		case <-timer.C:
			convert()

		case err, ok := <-errs:
			if !ok {
				return nil
			}
			a.logger.Error("watcher error", slog.Any("error", err))
		}
	}
}

// affects reports whether event changes the content of path.
func affects(event fsnotify.Event, path string) bool {
	if filepath.Clean(event.Name) != filepath.Clean(path) {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename)
}
