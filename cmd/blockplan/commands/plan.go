package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/blockplan/blockplan/pkg/config"
	"github.com/blockplan/blockplan/pkg/planner"
	"github.com/blockplan/blockplan/pkg/stores"
	"github.com/blockplan/blockplan/pkg/telemetry"
)

func newPlanCommand() *cobra.Command {
	var (
		dbPath      string
		watch       bool
		metricsAddr string
	)

	cmd := &cobra.Command{
		Use:   "plan <layout.yaml>",
		Short: "Compute an execution plan from a layout file",
		Long: `Compute an execution plan from a layout file.

The plan:
  - Builds the device tree from the declared devices
  - Registers every requested operation, applying its side effects
  - Prunes operations made redundant by later ones
  - Orders the survivors so every dependency runs first`,
		Example: `  # Compute and print a plan
  blockplan plan layout.yaml

  # Emit the plan as JSON
  blockplan plan layout.yaml --json

  # Persist the plan for later inspection
  blockplan plan layout.yaml --save plans.db

  # Recompute whenever the layout changes
  blockplan plan layout.yaml --watch`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			layoutPath := args[0]

			if verbose {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
			}

			metrics, err := newMetrics(metricsAddr)
			if err != nil {
				return err
			}

			var store stores.Store
			if dbPath != "" {
				sqlStore, err := stores.NewSQLiteStore(stores.Config{Path: dbPath})
				if err != nil {
					return err
				}
				if err := sqlStore.Init(cmd.Context()); err != nil {
					return fmt.Errorf("failed to initialize plan store: %w", err)
				}
				defer func() { _ = sqlStore.Close() }()
				store = sqlStore
			}

			if err := runPlan(cmd.Context(), layoutPath, metrics, store); err != nil {
				return err
			}
			if !watch {
				return nil
			}
			return watchLayout(cmd.Context(), layoutPath, func() {
				if err := runPlan(cmd.Context(), layoutPath, metrics, store); err != nil {
					log.Error().Err(err).Msg("Plan recomputation failed")
				}
			})
		},
	}

	cmd.Flags().StringVar(&dbPath, "save", "", "persist the plan to a SQLite database at this path")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "recompute the plan when the layout file changes")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address (e.g. :9464)")

	return cmd
}

func newMetrics(addr string) (*telemetry.Metrics, error) {
	cfg := telemetry.DefaultConfig().Metrics
	cfg.Enabled = addr != ""
	if addr != "" {
		cfg.ListenAddress = addr
	}
	metrics, err := telemetry.NewMetrics(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics: %w", err)
	}
	if cfg.Enabled {
		if err := metrics.StartMetricsServer(); err != nil {
			return nil, fmt.Errorf("failed to start metrics server: %w", err)
		}
	}
	return metrics, nil
}

func runPlan(ctx context.Context, layoutPath string, metrics *telemetry.Metrics, store stores.Store) error {
	layout, err := config.NewParser().ParseFile(layoutPath)
	if err != nil {
		return err
	}

	plan, err := planner.New(log.Logger, metrics).Compute(layout)
	if err != nil {
		return err
	}

	if store != nil {
		if err := store.SavePlan(ctx, plan, layoutPath); err != nil {
			return fmt.Errorf("failed to save plan: %w", err)
		}
		log.Info().Str("plan_id", plan.ID).Msg("Plan saved")
	}

	return printPlan(plan)
}

func printPlan(plan *planner.Plan) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(plan)
	}

	fmt.Printf("Plan %s (%d steps)\n", plan.ID, len(plan.Steps))
	for _, step := range plan.Steps {
		if step.Detail != "" {
			fmt.Printf("  %3d. %-16s %s (%s)\n", step.Seq, step.Kind, step.Device, step.Detail)
		} else {
			fmt.Printf("  %3d. %-16s %s\n", step.Seq, step.Kind, step.Device)
		}
	}
	return nil
}

// watchLayout reruns recompute whenever the layout file is written. Editors
// often replace the file instead of writing in place, so the watch is on the
// parent directory and filtered by name.
func watchLayout(ctx context.Context, layoutPath string, recompute func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	dir := filepath.Dir(layoutPath)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	log.Info().Str("layout", layoutPath).Msg("Watching for changes")

	var debounce <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != filepath.Clean(layoutPath) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			debounce = time.After(250 * time.Millisecond)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn().Err(err).Msg("Watch error")
		case <-debounce:
			debounce = nil
			log.Info().Str("layout", layoutPath).Msg("Layout changed, recomputing")
			recompute()
		}
	}
}
