package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jward/mnemo/internal/extract"
	"github.com/jward/mnemo/internal/watch"
)

var flagDebounce time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch [path]",
	Short: "Watch the project and re-analyze changed files",
	Long:  "Runs until interrupted, re-analyzing any supported source file that changes under the watched path.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runWatch,
}

func init() {
	watchCmd.Flags().DurationVar(&flagDebounce, "debounce", watch.DefaultDebounce, "quiet period before a change batch is processed")
}

func runWatch(cmd *cobra.Command, args []string) error {
	engine, root, _, err := openEngine(true)
	if err != nil {
		return outputError("watch", err)
	}
	defer engine.Close()

	target := root
	if len(args) > 0 {
		target = args[0]
	}

	log, err := zap.NewProduction()
	if err != nil {
		return outputError("watch", err)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	handler := func(paths []string) {
		for _, path := range paths {
			res, err := engine.AnalyzeFile(ctx, root, path)
			if err != nil {
				log.Error("analyze failed", zap.String("path", path), zap.Error(err))
				continue
			}
			if res.FilesSkipped > 0 {
				log.Debug("unchanged", zap.String("path", path))
				continue
			}
			log.Info("re-analyzed",
				zap.String("path", path),
				zap.Int("entities", len(res.Entities)))
		}
	}

	w, err := watch.New(target, handler,
		watch.WithDebounce(flagDebounce),
		watch.WithFilter(extract.Supported),
		watch.WithLogger(log),
	)
	if err != nil {
		return outputError("watch", err)
	}
	defer w.Close()

	log.Info("watching for changes", zap.String("path", target))
	if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return outputError("watch", err)
	}
	return nil
}
