package cmd

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/pkg/errors"
	log "github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/kvmwatch/kvmwatch/internal/display"
	"github.com/kvmwatch/kvmwatch/internal/settings"
	"github.com/kvmwatch/kvmwatch/pkg/arch"
	"github.com/kvmwatch/kvmwatch/pkg/stats"
)

type Options struct {
	fields     string
	interval   int
	logMode    bool
	once       bool
	drilldown  bool
	tracepoint bool
	debugfs    bool

	logLevel string

	*CommonOptions
}

const logLevelInfo = "info"

func NewRootCmd(opts *CommonOptions) *cobra.Command {
	o := new(Options)
	o.CommonOptions = opts

	cmd := &cobra.Command{
		Use:               settings.CmdName,
		Short:             settings.CmdName + " shows live KVM event statistics",
		Long:              settings.CmdName + ` collects per-event virtualization counters from kernel tracepoints (or the KVM debugfs counters) and presents running totals and per-interval deltas.`,
		DisableAutoGenTag: true,
		RunE:              o.Run,
	}
	cmd.Flags().StringVarP(&o.fields, "fields", "f", "", "Regex pattern selecting the fields to show")
	cmd.Flags().IntVarP(&o.interval, "interval", "s", 1, "Sampling interval in seconds")
	cmd.Flags().BoolVarP(&o.logMode, "log", "l", false, "Print one sample per interval instead of the interactive screen")
	cmd.Flags().BoolVarP(&o.once, "once", "1", false, "Print a single sample and exit")
	cmd.Flags().BoolVarP(&o.drilldown, "drilldown", "x", false, "Show synthetic sub-reason fields, e.g. kvm_exit(HLT)")
	cmd.Flags().BoolVarP(&o.tracepoint, "tracepoints", "t", false, "Use the tracepoint counter backend only")
	cmd.Flags().BoolVarP(&o.debugfs, "debugfs", "d", false, "Use the debugfs counter backend")
	cmd.Flags().String("tracing-root", stats.DefaultTracingRoot, "Root of the kernel tracing filesystem")
	cmd.Flags().String("debugfs-dir", stats.DefaultDebugfsDir, "Directory of the debugfs counters")

	cmd.Flags().StringVar(&o.logLevel, "log-level", logLevelInfo, "Log level (trace, debug, info, warn, error, fatal, panic)")

	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		opts.Logger.Fatal().Err(err).Msg("failed to bind flags")
	}
	viper.SetEnvPrefix(strings.ToUpper(settings.CmdName))
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	return cmd
}

func Execute() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger := log.New(
		log.ConsoleWriter{Out: os.Stderr},
	).With().Timestamp().Logger()

	opts := NewCommonOptions(
		WithContext(ctx),
		WithLogger(logger),
	)

	if err := NewRootCmd(opts).Execute(); err != nil {
		os.Exit(1)
	}
}

func (o *Options) Run(_ *cobra.Command, _ []string) error {
	logLevel, err := log.ParseLevel(viper.GetString("log-level"))
	if err != nil {
		o.Logger.Fatal().Err(err).Msg("invalid log level")
	}
	o.Logger = o.Logger.Level(logLevel)

	interval := viper.GetInt("interval")
	if interval < 1 {
		return errors.Errorf("invalid sampling interval %d: must be at least 1 second", interval)
	}

	profile, err := arch.Resolve()
	if err != nil {
		return errors.Wrap(err, "failed to resolve counter ABI")
	}

	sources, closeSources, err := o.buildSources(profile)
	if err != nil {
		return err
	}
	defer closeSources()

	aggregator := stats.NewAggregator(sources...)

	d, err := display.New(
		display.WithAggregator(aggregator),
		display.WithInterval(time.Duration(interval)*time.Second),
		display.WithPattern(viper.GetString("fields")),
		display.WithDrilldown(o.drilldown),
		display.WithLogger(o.Logger),
	)
	if err != nil {
		return err
	}

	switch {
	case o.once:
		return d.Once()
	case o.logMode || !term.IsTerminal(int(os.Stdin.Fd())):
		return d.Log(o.Ctx)
	default:
		return d.Interactive(o.Ctx)
	}
}

// buildSources selects the counter backends. Explicit flags are
// binding; by default the tracepoint backend is preferred, with a
// one-time fallback to debugfs when the tracing tree is unavailable.
func (o *Options) buildSources(profile *arch.Profile) ([]stats.Source, func(), error) {
	tracingRoot := viper.GetString("tracing-root")
	debugfsDir := viper.GetString("debugfs-dir")

	explicit := o.tracepoint || o.debugfs
	useTracepoints := o.tracepoint
	useDebugfs := o.debugfs

	if !explicit {
		if stats.TracepointsAvailable(tracingRoot) {
			useTracepoints = true
		} else {
			o.Logger.Warn().
				Str("tracing_root", tracingRoot).
				Msg("tracepoints unavailable, falling back to debugfs counters")
			useDebugfs = true
		}
	}

	var sources []stats.Source
	closeSources := func() {}

	if useTracepoints {
		if !stats.TracepointsAvailable(tracingRoot) {
			return nil, nil, errors.Errorf("tracepoint backend requested but %s has no kvm events", tracingRoot)
		}

		source := stats.NewTracepointSource(
			stats.WithProfile(profile),
			stats.WithTracingRoot(tracingRoot),
			stats.WithTracepointLogger(o.Logger),
		)
		if err := source.Init(); err != nil {
			return nil, nil, errors.Wrap(err, "failed to init tracepoint source")
		}

		sources = append(sources, source)
		closeSources = func() {
			if err := source.Close(); err != nil {
				o.Logger.Warn().Err(err).Msg("failed to close tracepoint source")
			}
		}
	}

	if useDebugfs {
		if _, err := os.Stat(debugfsDir); err != nil {
			return nil, nil, errors.Wrapf(err, "debugfs backend unavailable at %s", debugfsDir)
		}

		sources = append(sources, stats.NewDebugfsSource(stats.WithDebugfsDir(debugfsDir)))
	}

	return sources, closeSources, nil
}
