package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/logrusorgru/aurora"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/CodeStranger-Fred/trainplot/mdp"
	"github.com/CodeStranger-Fred/trainplot/plot"
)

func init() {
	levelStr := os.Getenv("LOG_LEVEL")
	level, err := log.ParseLevel(levelStr)
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)
}

func runCmdWithInterruptableContext(f func(context.Context) error) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt)
	defer signal.Stop(c)
	go func() {
		select {
		case <-c:
			log.Info("Received interrupt. Shutting down...")
			cancel()
		case <-ctx.Done():
		}
	}()
	return f(ctx)
}

// NewRootCmd builds the trainplot command with its own flag and config state.
func NewRootCmd() *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("TRAINPLOT")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:   "trainplot <training_log.csv> [qtable.csv]",
		Short: "Plot reinforcement-learning training logs",
		Long: `Reads a training log CSV (episode,total_reward,success,steps) and renders
reward, steps and success rate charts. An optional q-table CSV adds a
q-value distribution chart.`,
		Args: cobra.RangeArgs(1, 2),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			log.SetOutput(cmd.OutOrStdout())
			if err := v.BindPFlags(cmd.Flags()); err != nil {
				return err
			}
			if path := v.GetString("config"); path != "" {
				v.SetConfigFile(path)
				if err := v.ReadInConfig(); err != nil {
					return fmt.Errorf("failed to read config %s: %w", path, err)
				}
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := optionsFromConfig(v)
			if err != nil {
				return err
			}
			r := &runner{
				out:         cmd.OutOrStdout(),
				au:          aurora.NewAurora(!v.GetBool("no-color")),
				opts:        o,
				interactive: v.GetBool("interactive"),
				addr:        v.GetString("addr"),
			}
			return runCmdWithInterruptableContext(func(ctx context.Context) error {
				return r.run(ctx, args)
			})
		},
	}

	addFlags(cmd.Flags(), plot.DefaultOptions())
	return cmd
}

func addFlags(flags *pflag.FlagSet, defaults plot.Options) {
	flags.StringP("output-dir", "o", defaults.OutputDir, "Directory the charts are written to")
	flags.IntP("window", "w", 0, "Reward and steps smoothing window (0 picks one from the episode count)")
	flags.Int("success-window", defaults.SuccessWindow, "Success rate smoothing window")
	flags.Int("bins", defaults.Bins, "Number of q-value histogram bins")
	flags.Int("width", defaults.Width, "Chart width in pixels")
	flags.Int("height", defaults.Height, "Chart height in pixels")
	flags.Float64("dpi", defaults.DPI, "Chart resolution")
	flags.Int("workers", defaults.Workers, "Number of charts rendered concurrently")
	flags.BoolP("interactive", "i", false, "Serve an interactive HTML report instead of writing PNG files")
	flags.String("addr", "localhost:8089", "Address the interactive report is served on")
	flags.Bool("no-color", false, "Disable colored output")
	flags.String("config", "", "Optional config file (yaml, json or toml)")
}

func optionsFromConfig(v *viper.Viper) (plot.Options, error) {
	o := plot.Options{
		OutputDir:     v.GetString("output-dir"),
		Window:        v.GetInt("window"),
		SuccessWindow: v.GetInt("success-window"),
		Bins:          v.GetInt("bins"),
		Width:         v.GetInt("width"),
		Height:        v.GetInt("height"),
		DPI:           v.GetFloat64("dpi"),
		Workers:       v.GetInt("workers"),
	}
	if o.Window < 0 {
		return o, fmt.Errorf("--window %d: %w", o.Window, mdp.ErrInvalidWindow)
	}
	if o.SuccessWindow <= 0 {
		return o, fmt.Errorf("--success-window %d: %w", o.SuccessWindow, mdp.ErrInvalidWindow)
	}
	if o.OutputDir == "" {
		return o, errors.New("--output-dir must not be empty")
	}
	if o.Width <= 0 || o.Height <= 0 {
		return o, fmt.Errorf("invalid chart size %dx%d", o.Width, o.Height)
	}
	return o, nil
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

type runner struct {
	out         io.Writer
	au          aurora.Aurora
	opts        plot.Options
	interactive bool
	addr        string
}

func (r *runner) run(ctx context.Context, args []string) error {
	logPath := args[0]
	fmt.Fprintf(r.out, "Loading training log from %s...\n", logPath)
	tl, err := mdp.ReadTrainingLog(logPath)
	if tl != nil {
		for _, s := range tl.Skipped {
			log.WithField("line", s.Line).WithError(s.Reason).Warn("Skipping malformed row")
		}
	}
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", logPath, err)
	}
	if !isRewardAlias(tl.RewardColumn) {
		log.WithField("column", tl.RewardColumn).Warn("No total_reward column; using the second column as reward")
	}
	fmt.Fprintf(r.out, "Loaded %d episodes\n\n", tl.Len())

	data := plot.Data{Log: tl}
	var states int
	if len(args) > 1 {
		states, data.Values = r.loadQTable(args[1])
	}

	summary, err := mdp.Summarize(tl)
	if err != nil {
		return err
	}

	if r.interactive {
		return r.serve(ctx, data, summary)
	}

	res, err := plot.RenderPNG(data, r.opts)
	if err != nil {
		return err
	}
	for _, msg := range res.Skipped {
		log.Warn(msg)
	}
	for _, path := range res.Saved {
		fmt.Fprintln(r.out, r.au.Green("✓ Saved: "+path))
	}

	if data.Values != nil {
		mdp.WriteQTableStats(r.out, states, data.Values)
	} else if len(args) < 2 {
		fmt.Fprintln(r.out, "\nTo analyze Q-value convergence, provide a Q-table CSV file:")
		fmt.Fprintln(r.out, "  trainplot <training_log.csv> <qtable.csv>")
	}

	summary.Write(r.out)
	abs, err := filepath.Abs(r.opts.OutputDir)
	if err != nil {
		abs = r.opts.OutputDir
	}
	fmt.Fprintf(r.out, "\nAll graphs saved to: %s\n%s\n", abs, mdp.Rule)
	return nil
}

// loadQTable never fails the run: a missing or unreadable q-table only drops
// the distribution chart.
func (r *runner) loadQTable(path string) (int, *mdp.ValueDistribution) {
	if _, err := os.Stat(path); err != nil {
		log.WithError(err).WithField("path", path).Warn("Q-table not found; skipping q-value analysis")
		return 0, nil
	}
	fmt.Fprintf(r.out, "Loading Q-table from %s...\n", path)
	q, err := mdp.ReadQTable(path)
	if err != nil {
		log.WithError(err).WithField("path", path).Warn("Failed to load q-table")
		return 0, nil
	}
	d, err := mdp.NewValueDistribution(q.Values())
	if err != nil {
		log.WithError(err).WithField("path", path).Warn("Q-table has no numeric values")
		return q.NumStates(), nil
	}
	return q.NumStates(), d
}

func (r *runner) serve(ctx context.Context, data plot.Data, summary mdp.Summary) error {
	path, err := plot.WriteHTML(data, r.opts)
	if err != nil {
		return err
	}
	fmt.Fprintln(r.out, r.au.Green("✓ Saved: "+path))
	summary.Write(r.out)
	fmt.Fprintln(r.out, mdp.Rule)
	return plot.Serve(ctx, r.opts.OutputDir, r.addr)
}

func isRewardAlias(column string) bool {
	for _, alias := range mdp.RewardAliases {
		if column == alias {
			return true
		}
	}
	return false
}
