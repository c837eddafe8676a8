package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/brimdata/flowplan/cli/logflags"
	"github.com/brimdata/flowplan/cli/optionflags"
	"github.com/brimdata/flowplan/cli/outputflags"
	"github.com/brimdata/flowplan/compiler"
	"github.com/brimdata/flowplan/compiler/dag"
	"github.com/brimdata/flowplan/compiler/describe"
	"github.com/brimdata/flowplan/compiler/options"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"go.uber.org/zap"
)

const usage = `usage: flowplan [options] file.yaml ...

flowplan compiles dataflow graph descriptions into physical execution plans.
Each file is decoded, its data sizes are estimated, every operator is
classified, and logging, checkpoint, and empty join operators are removed as
configured.  The resulting plans are written to standard output.

Planner properties are read from a YAML file with -c and from -o key=value
flags, which take precedence.

options:
`

type command struct {
	logFlags    logflags.Flags
	optionFlags optionflags.Flags
	outputFlags outputflags.Flags
	stats       bool
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	err := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	cancel()
	if err != nil && !errors.Is(err, flag.ErrHelp) {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	var c command
	fs := flag.NewFlagSet("flowplan", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprint(stderr, usage)
		fs.PrintDefaults()
	}
	c.logFlags.SetFlags(fs)
	c.optionFlags.SetFlags(fs)
	c.outputFlags.SetFlags(fs)
	fs.BoolVar(&c.stats, "stats", false, "log compile statistics")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return errors.New("no graph description files given")
	}
	if err := c.outputFlags.Init(); err != nil {
		return err
	}
	logger, err := c.logFlags.Open()
	if err != nil {
		return err
	}
	defer logger.Sync()
	return c.compile(ctx, logger, fs.Args(), stdout)
}

func (c *command) compile(ctx context.Context, logger *zap.Logger, paths []string, stdout io.Writer) error {
	var flows []*dag.Jobflow
	for _, path := range paths {
		flow, err := decodeFile(path)
		if err != nil {
			return err
		}
		flows = append(flows, flow)
	}
	registry := prometheus.NewRegistry()
	planner := compiler.New(options.Parse(c.optionFlags.Props(), logger), logger, compiler.NewMetrics(registry))
	plans, err := planner.CompileAll(ctx, flows)
	if err != nil {
		return err
	}
	if c.stats {
		families, err := registry.Gather()
		if err != nil {
			return err
		}
		logStats(logger, families)
	}
	w, err := c.outputFlags.Open(stdout)
	if err != nil {
		return err
	}
	for _, p := range plans {
		if err := w.Write(describe.Plan(p)); err != nil {
			w.Close()
			return err
		}
	}
	return w.Close()
}

func decodeFile(path string) (*dag.Jobflow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	flow, err := dag.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if flow.Name == "" {
		flow.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return flow, nil
}

func logStats(logger *zap.Logger, families []*dto.MetricFamily) {
	for _, family := range families {
		for _, m := range family.GetMetric() {
			fields := []zap.Field{zap.Float64("value", m.GetCounter().GetValue())}
			for _, label := range m.GetLabel() {
				fields = append(fields, zap.String(label.GetName(), label.GetValue()))
			}
			logger.Info(family.GetName(), fields...)
		}
	}
}
