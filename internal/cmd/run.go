package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/comalice/motionchart"
	"github.com/comalice/motionchart/internal/config"
	"github.com/comalice/motionchart/internal/extensibility"
	"github.com/comalice/motionchart/internal/logging"
	"github.com/comalice/motionchart/internal/metrics"
	"github.com/comalice/motionchart/internal/planner"
	"github.com/comalice/motionchart/internal/primitives"
	"github.com/comalice/motionchart/internal/production"
	"github.com/comalice/motionchart/realtime"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Drive the motion controller in real time",
	Long: `Run the controller on the configured graph at the configured tick rate.

Simulated input adds walk distance and requests the configured actions in
turn through the background planner. The run ends after --duration or on
interrupt; with persistence enabled the final snapshot is saved.

Examples:
  # Walk and pick for 30 seconds with metrics on :9090
  motionchart run --graph configs/locomotion.yaml --duration 30s \
    --actions pickLeft --metrics

  # Hot reload the graph while running
  motionchart run --watch --duration 0`,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().String("graph", "", "Motion graph file")
	runCmd.Flags().Bool("watch", false, "Reload the graph when the file changes")
	runCmd.Flags().Duration("duration", 0, "Run time (0 runs until interrupted)")
	runCmd.Flags().StringSlice("actions", nil, "Actions to request in turn")
	runCmd.Flags().Duration("interval", 0, "Period of simulated input")
	runCmd.Flags().Bool("metrics", false, "Serve Prometheus metrics")
	runCmd.Flags().Bool("persist", false, "Save a snapshot on exit")

	_ = viper.BindPFlag("graph.path", runCmd.Flags().Lookup("graph"))
	_ = viper.BindPFlag("graph.watch", runCmd.Flags().Lookup("watch"))
	_ = viper.BindPFlag("simulate.duration", runCmd.Flags().Lookup("duration"))
	_ = viper.BindPFlag("simulate.actions", runCmd.Flags().Lookup("actions"))
	_ = viper.BindPFlag("simulate.interval", runCmd.Flags().Lookup("interval"))
	_ = viper.BindPFlag("metrics.enabled", runCmd.Flags().Lookup("metrics"))
	_ = viper.BindPFlag("persist.enabled", runCmd.Flags().Lookup("persist"))
}

func runRun(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, closer, err := newLogger(cfg.Logging, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer closer.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if cfg.Simulate.Duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Simulate.Duration)
		defer cancel()
	}

	summary, err := simulate(ctx, cfg, logger)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "ticks=%d poses=%d transitions=%d dropped_events=%d node=%s\n",
		summary.ticks, summary.poses, summary.transitions, summary.dropped, summary.node)
	return nil
}

type runSummary struct {
	ticks       uint64
	poses       uint64
	transitions uint64
	dropped     uint64
	node        motionchart.NodeID
}

// simulate runs the controller until ctx is done.
func simulate(ctx context.Context, cfg *config.Config, logger *slog.Logger) (runSummary, error) {
	gcfg, err := primitives.Load(cfg.Graph.Path)
	if err != nil {
		return runSummary{}, err
	}
	graph, err := gcfg.Build()
	if err != nil {
		return runSummary{}, fmt.Errorf("build graph: %w", err)
	}
	idle, err := gcfg.IdleNode()
	if err != nil {
		return runSummary{}, err
	}
	logger.Info("graph loaded", "graph", gcfg.ID, "version", primitives.ComputeVersion(gcfg), "nodes", len(gcfg.Nodes))

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.New(reg)
	if cfg.Metrics.Enabled {
		srv := serveMetrics(cfg.Metrics.Addr, reg, logger)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	events := make(chan motionchart.TransitionEvent, 256)
	publisher := production.NewChannelPublisher(events)
	var transitions atomic.Uint64
	eventsDone := make(chan struct{})
	go func() {
		defer close(eventsDone)
		for ev := range events {
			transitions.Add(1)
			logger.Debug("transition", "from", ev.From.String(), "node", ev.To.String(), "source", string(ev.Source), "tick", ev.Tick)
		}
	}()

	rc := cfg.ControllerConfig()
	ctrl, err := realtime.New(graph, idle, rc,
		realtime.WithLogger(logger),
		realtime.WithMetrics(collector),
		realtime.WithPublisher(publisher),
		realtime.WithPlannerFactory(func(g motionchart.TransitionGraph) motionchart.Planner {
			return extensibility.NewLoggingPlanner(planner.New(g,
				planner.WithFrameTime(rc.FrameTime),
				planner.WithHistorySize(rc.BufferSize),
				planner.WithLogger(logger),
			), logger)
		}),
	)
	if err != nil {
		_ = publisher.Close()
		<-eventsDone
		return runSummary{}, err
	}

	rt := realtime.NewRuntime(ctrl, cfg.RuntimeConfig())
	var poses atomic.Uint64
	rt.OnPose(func(uint64, motionchart.Pose) { poses.Add(1) })

	if cfg.Graph.Watch {
		w, err := production.NewGraphWatcher(cfg.Graph.Path,
			func(g *motionchart.Graph, start motionchart.NodeID, _ *primitives.GraphConfig) error {
				return rt.Send(realtime.GraphTrigger(g, start))
			},
			production.WithWatchLogger(logger),
			production.WithDebounce(cfg.Graph.Debounce),
		)
		if err != nil {
			logger.Warn("graph watch disabled", "error", err)
		} else {
			w.Start(ctx)
			defer w.Stop()
		}
	}

	if src := simulationSource(cfg.Simulate); src != nil {
		defer src.Stop()
		go extensibility.Pump(ctx, src, rt, logger)
	}

	if err := rt.Start(ctx); err != nil {
		return runSummary{}, err
	}
	<-ctx.Done()
	if err := rt.Stop(); err != nil {
		logger.Warn("runtime stop", "error", err)
	}

	if cfg.Persist.Enabled {
		if err := saveSnapshot(cfg.Persist, ctrl.Snapshot(), logger); err != nil {
			logger.Error("snapshot not saved", "error", err)
		}
	}

	_ = publisher.Close()
	<-eventsDone
	node, _ := ctrl.CurrentNode()
	return runSummary{
		ticks:       rt.TickNumber(),
		poses:       poses.Load(),
		transitions: transitions.Load(),
		dropped:     publisher.Dropped(),
		node:        node,
	}, nil
}

// simulationSource alternates walk distance with planned actions.
func simulationSource(sim config.SimulateConfig) *extensibility.TimerTriggerSource {
	if sim.Interval <= 0 || (sim.Travel <= 0 && len(sim.Actions) == 0) {
		return nil
	}
	var n int
	return extensibility.NewTimerTriggerSource(func() realtime.Trigger {
		defer func() { n++ }()
		if len(sim.Actions) == 0 || (n%2 == 0 && sim.Travel > 0) {
			return realtime.TravelTrigger(sim.Travel)
		}
		action := sim.Actions[(n/2)%len(sim.Actions)]
		return realtime.PlanTrigger(motionchart.ActionSequence{{Action: action}})
	}, sim.Interval)
}

func serveMetrics(addr string, reg *prometheus.Registry, logger *slog.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server", "addr", addr, "error", err)
		}
	}()
	logger.Info("serving metrics", "addr", addr)
	return srv
}

func saveSnapshot(pc config.PersistConfig, snap realtime.Snapshot, logger *slog.Logger) error {
	p, err := production.NewPersister(pc.Format, pc.Dir)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := p.Save(ctx, snap); err != nil {
		return err
	}
	logger.Info("snapshot saved", "id", snap.ID, "dir", pc.Dir, "format", pc.Format)
	return nil
}

func newLogger(lc config.LoggingConfig, stderr io.Writer) (*slog.Logger, io.Closer, error) {
	if lc.Dir != "" {
		return logging.NewFile(lc.Dir, lc.Level, lc.Format)
	}
	return logging.New(stderr, lc.Level, lc.Format), io.NopCloser(nil), nil
}
