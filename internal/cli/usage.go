package cli

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/maadhav-codes/diff2commit/internal/config"
	"github.com/maadhav-codes/diff2commit/internal/models"
	"github.com/maadhav-codes/diff2commit/internal/ui/watch"
)

// chartDays is the window of the daily cost chart.
const chartDays = 30

type usageOptions struct {
	monthly    bool
	byProvider bool
	recent     int
	chart      bool
	watch      bool
}

func newUsageCmd(app *App) *cobra.Command {
	var opts usageOptions

	cmd := &cobra.Command{
		Use:   "usage",
		Short: "Show token usage and cost statistics",
		Long: `Show token usage and cost statistics recorded for every request.

Without flags the all-time totals and the current month are printed.`,
		Example: `  diff2commit usage
  diff2commit usage --monthly
  diff2commit usage --by-provider --recent 7
  diff2commit usage --chart
  diff2commit usage --watch`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUsage(cmd.Context(), app, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.monthly, "monthly", false, "Show the current month")
	cmd.Flags().BoolVar(&opts.byProvider, "by-provider", false, "Break usage down by provider and model")
	cmd.Flags().IntVar(&opts.recent, "recent", 0, "Show records of the last N days")
	cmd.Flags().BoolVar(&opts.chart, "chart", false, "Chart the daily cost of the last 30 days")
	cmd.Flags().BoolVar(&opts.watch, "watch", false, "Open a live dashboard")

	return cmd
}

func runUsage(ctx context.Context, app *App, opts usageOptions) error {
	if opts.recent < 0 {
		return errors.WithHint(
			errors.Mark(errors.Newf("--recent must be positive (got %d)", opts.recent), models.ErrConfiguration),
			"pass the number of days, for example --recent 7")
	}

	cfg, err := app.config(config.Overrides{})
	if err != nil {
		return err
	}

	mgr, err := app.manager(cfg)
	if err != nil {
		return err
	}
	defer app.closeManager(mgr)

	out := app.printer()
	if !cfg.TrackUsage {
		out.Warning("Usage tracking is disabled; set track_usage = true to record requests")
	}

	if opts.watch {
		if !app.IsInteractive() {
			return errors.WithHint(errors.New("--watch needs a terminal"),
				"run it from an interactive shell")
		}
		if err := mgr.StartWatching(); err != nil {
			return err
		}
		return watch.Run(ctx, mgr, app.In, app.Out)
	}

	svc := mgr.Usage()
	showDefault := !opts.monthly && !opts.byProvider && opts.recent == 0 && !opts.chart

	if showDefault {
		total, err := svc.Total(ctx)
		if err != nil {
			return err
		}
		out.Totals(total)
		out.Println("")
	}

	if showDefault || opts.monthly {
		month, err := svc.Monthly(ctx)
		if err != nil {
			return err
		}
		limit, err := svc.CheckMonthlyLimit(ctx, cfg.CostLimitMonthly)
		if err != nil {
			return err
		}
		out.Monthly(month, limit)
		if limit.Exceeded {
			out.Warning("Monthly cost limit reached; generation is blocked until next month")
		}
	}

	if opts.byProvider {
		stats, err := svc.ByProvider(ctx)
		if err != nil {
			return err
		}
		out.ByProvider(stats)
	}

	if opts.recent > 0 {
		records, err := svc.Recent(ctx, opts.recent)
		if err != nil {
			return err
		}
		out.Recent(opts.recent, records)
	}

	if opts.chart {
		days, err := svc.DailyCost(ctx, chartDays)
		if err != nil {
			return err
		}
		out.CostChart(days)
	}

	return nil
}
