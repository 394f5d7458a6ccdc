// Package run holds the flags and the solution loop shared by all
// searchkit commands.
package run

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/operator-framework/searchkit/internal/config"
	"github.com/operator-framework/searchkit/pkg/metrics"
	"github.com/operator-framework/searchkit/pkg/search"
	"github.com/operator-framework/searchkit/pkg/search/engine"
)

// Flags are the engine flags of a command.
type Flags struct {
	Config           string
	Engine           string
	Threads          int
	Assets           int
	Solutions        int
	CloneDistance    int
	AdaptiveDistance int
	DiscrepancyLimit int
	NodeLimit        uint64
	FailLimit        uint64
	TimeLimit        time.Duration
	MetricsAddr      string
	Stats            bool
	Verbose          bool
}

// AddFlags registers f on fs.
func (f *Flags) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&f.Config, "config", "", "YAML file with engine settings, overridden by flags")
	fs.StringVar(&f.Engine, "engine", "dfs", "search engine: dfs, bab, lds, parallel, restart or portfolio")
	fs.IntVar(&f.Threads, "threads", 1, "workers of the parallel engine, non-positive values count down from the number of CPUs")
	fs.IntVar(&f.Assets, "assets", 0, "assets of the portfolio engine, defaults to --threads")
	fs.IntVar(&f.Solutions, "solutions", 1, "number of solutions to print, 0 for all")
	fs.IntVar(&f.CloneDistance, "clone-distance", search.DefaultCloneDistance, "commit distance between stored clones")
	fs.IntVar(&f.AdaptiveDistance, "adaptive-distance", search.DefaultAdaptiveDistance, "recomputation distance that triggers an intermediate clone")
	fs.IntVar(&f.DiscrepancyLimit, "discrepancy-limit", search.DefaultDiscrepancyLimit, "discrepancy limit of lds, negative for none")
	fs.Uint64Var(&f.NodeLimit, "node-limit", 0, "stop after this many nodes, 0 for no limit")
	fs.Uint64Var(&f.FailLimit, "fail-limit", 0, "stop after this many failures, 0 for no limit")
	fs.DurationVar(&f.TimeLimit, "time-limit", 0, "stop after this long, 0 for no limit")
	fs.StringVar(&f.MetricsAddr, "metrics-addr", "", "serve prometheus metrics on this address while searching")
	fs.BoolVar(&f.Stats, "stats", false, "print search statistics")
	fs.BoolVar(&f.Verbose, "verbose", false, "log engine events")
}

// Settings merges the config file, if any, with the flags that were set
// explicitly.
func (f *Flags) Settings(fs *pflag.FlagSet) (*config.Config, error) {
	c := config.Default()
	if f.Config != "" {
		var err error
		if c, err = config.Load(f.Config); err != nil {
			return nil, err
		}
	}
	set := func(name string) bool {
		return f.Config == "" || fs.Changed(name)
	}
	if set("engine") {
		c.Engine = f.Engine
	}
	if set("threads") {
		c.Threads = f.Threads
	}
	if set("assets") {
		c.Assets = f.Assets
	}
	if set("solutions") {
		c.Solutions = f.Solutions
	}
	if set("clone-distance") {
		c.CloneDistance = f.CloneDistance
	}
	if set("adaptive-distance") {
		c.AdaptiveDistance = f.AdaptiveDistance
	}
	if set("discrepancy-limit") {
		d := f.DiscrepancyLimit
		c.DiscrepancyLimit = &d
	}
	if set("node-limit") {
		c.Limits.Nodes = f.NodeLimit
	}
	if set("fail-limit") {
		c.Limits.Fails = f.FailLimit
	}
	if set("time-limit") {
		c.Limits.Time = f.TimeLimit
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (f *Flags) logger(out io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(out)
	l.SetLevel(logrus.WarnLevel)
	if f.Verbose {
		l.SetLevel(logrus.DebugLevel)
	}
	return l
}

// Search runs the configured engine on root and prints solutions with
// show until the requested number of solutions has been found.
func (f *Flags) Search(cmd *cobra.Command, root search.Space, optimize bool, show func(io.Writer, search.Space)) error {
	c, err := f.Settings(cmd.Flags())
	if err != nil {
		return err
	}
	kind, err := engine.ParseKind(c.Engine)
	if err != nil {
		return err
	}
	opts, err := c.Options()
	if err != nil {
		return err
	}
	log := f.logger(cmd.ErrOrStderr())
	opts = append(opts, search.WithLogger(log))
	if f.Verbose {
		opts = append(opts, search.WithTracer(&search.LoggingTracer{Writer: cmd.ErrOrStderr()}))
	}

	e, err := engine.New(kind, root, optimize, opts...)
	if err != nil {
		return fmt.Errorf("error creating %s engine: %w", kind, err)
	}
	defer e.Close()

	snapshot := &metrics.Snapshot{}
	if f.MetricsAddr != "" {
		stop, err := serveMetrics(f.MetricsAddr, string(kind), snapshot, log)
		if err != nil {
			return err
		}
		defer stop()
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt)
	defer cancel()

	out := cmd.OutOrStdout()
	n := 0
	for c.Solutions == 0 || n < c.Solutions {
		s := e.Next(ctx)
		snapshot.Update(e.Statistics())
		if s == nil {
			break
		}
		n++
		fmt.Fprintf(out, "solution %d:\n", n)
		show(out, s)
	}
	stopped := e.Stopped()
	switch {
	case stopped && n == 0:
		fmt.Fprintln(out, "search stopped before a solution was found")
	case stopped:
		fmt.Fprintf(out, "search stopped after %d solutions, more may exist\n", n)
	case n == 0:
		fmt.Fprintln(out, "no solution found")
	}
	if f.Stats {
		fmt.Fprintln(out, e.Statistics())
	}
	return nil
}

func serveMetrics(addr, kind string, src metrics.StatisticsSource, log logrus.FieldLogger) (func(), error) {
	collector := metrics.NewCollector()
	collector.Add(kind, src)
	registry := prometheus.NewRegistry()
	if err := registry.Register(collector); err != nil {
		return nil, fmt.Errorf("error registering metrics: %w", err)
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("metrics server failed")
		}
	}()
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}, nil
}
