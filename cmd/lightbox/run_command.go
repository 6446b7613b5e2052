package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"lightbox/internal/api"
	"lightbox/internal/listing"
	"lightbox/internal/logging"
	"lightbox/internal/pipeline"
	"lightbox/internal/preflight"
)

type runOptions struct {
	watch  bool
	window int
	step   int
	settle time.Duration
	listen string
}

func newRunCommand(ctx *commandContext) *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Load the listing and drive the pipeline with a scrolling viewport",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("watch") {
				opts.watch = cfg.Source.Watch
			}
			if opts.watch && cfg.SourceIsRemote() {
				return errors.New("--watch requires a local listing file")
			}
			if opts.window <= 0 {
				opts.window = cfg.Viewport.Window
			}
			if opts.step <= 0 {
				opts.step = cfg.Viewport.Step
			}
			if !cmd.Flags().Changed("settle") {
				opts.settle = cfg.SettleDelay()
			}
			return runPipeline(cmd, ctx, opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.watch, "watch", "w", false, "Reload the listing when the file changes (runs until interrupted)")
	cmd.Flags().IntVar(&opts.window, "window", 0, "Visible rows (defaults to viewport.window)")
	cmd.Flags().IntVar(&opts.step, "step", 0, "Rows scrolled per interaction (defaults to viewport.step)")
	cmd.Flags().DurationVar(&opts.settle, "settle", 0, "Pause after each scroll (defaults to viewport.settle_ms)")
	cmd.Flags().StringVar(&opts.listen, "listen", "", "Serve pipeline status over HTTP on this address (e.g. 127.0.0.1:8080)")
	return cmd
}

func runPipeline(cmd *cobra.Command, cmdCtx *commandContext, opts runOptions) error {
	cfg, err := cmdCtx.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := cmdCtx.ensureLogger()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	collab := cmdCtx.newCollaborators(cfg)
	if failed := preflight.Failures(preflight.RunAll(ctx, cfg, collab)); len(failed) > 0 {
		errOut := cmd.ErrOrStderr()
		colorize := shouldColorize(errOut)
		for _, result := range failed {
			fmt.Fprintln(errOut, renderStatusLine(result.Name, statusError, result.Detail, colorize))
		}
		return fmt.Errorf("preflight failed: %d check(s) did not pass (run `lightbox check`)", len(failed))
	}

	loader := cmdCtx.newLoader(cfg)
	coord := pipeline.New(collab.Fetcher, collab.Transformer, logger)
	if err := coord.Load(ctx, loader); err != nil {
		return err
	}
	coord.OnRowChanged(func(int) {
		coord.Reconcile(coord.Visible())
	})

	view := &viewport{
		coord:  coord,
		window: opts.window,
		step:   opts.step,
		settle: opts.settle,
		logger: logging.NewComponentLogger(logger, "viewport"),
	}

	runCtx, stop := context.WithCancel(ctx)
	defer stop()
	group, groupCtx := errgroup.WithContext(runCtx)
	group.Go(func() error {
		return coord.Run(groupCtx)
	})

	if opts.listen != "" {
		server := api.NewServer(coord, logger)
		group.Go(func() error {
			return server.ListenAndServe(groupCtx, opts.listen)
		})
	}

	reloaded := make(chan struct{}, 1)
	if opts.watch {
		group.Go(func() error {
			return listing.Watch(groupCtx, loader.Location, listing.DefaultWatchDebounce, logger, func() {
				reloadListing(groupCtx, coord, loader, logger)
				select {
				case reloaded <- struct{}{}:
				default:
				}
			})
		})
	}

	scrollErr := driveViewport(groupCtx, view, opts.watch, reloaded)
	stop()
	if err := group.Wait(); err != nil {
		return err
	}
	if scrollErr != nil && !errors.Is(scrollErr, context.Canceled) {
		return scrollErr
	}

	fmt.Fprintln(cmd.OutOrStdout(), itemTable(coord.Items(), coord.Stats()))
	return nil
}

// driveViewport scrolls once, or in watch mode re-scrolls after every reload
// until ctx is done.
func driveViewport(ctx context.Context, view *viewport, watch bool, reloaded <-chan struct{}) error {
	for {
		if err := view.scroll(ctx); err != nil {
			return err
		}
		if !watch {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-reloaded:
		}
	}
}

func reloadListing(ctx context.Context, coord *pipeline.Coordinator, loader pipeline.Lister, logger *slog.Logger) {
	records, err := loader.List(ctx)
	if err == nil {
		err = coord.Reload(records)
	}
	if err != nil {
		logging.WarnWithContext(logger, "listing reload failed; keeping current items", "listing_reload_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "fix the listing file and save it again"),
			logging.String(logging.FieldImpact, "items from the previous listing stay on screen"),
		)
		return
	}
	logger.Info("listing reloaded", logging.Int("items", len(records)), logging.String(logging.FieldEventType, "listing_reloaded"))
}
