package compiler

import (
	"context"

	"github.com/brimdata/flowplan/compiler/classifier"
	"github.com/brimdata/flowplan/compiler/dag"
	"github.com/brimdata/flowplan/compiler/estimator"
	"github.com/brimdata/flowplan/compiler/optimizer"
	"github.com/brimdata/flowplan/compiler/options"
	"github.com/brimdata/flowplan/compiler/plan"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Plan is the result of compiling one jobflow.  Estimates and Classes
// describe Graph as it stands after rewriting.
type Plan struct {
	Name      string
	Graph     *dag.Graph
	Options   options.Options
	Sizes     estimator.Store
	Estimates map[dag.OpID]*estimator.OperatorEstimate
	Classes   map[dag.OpID]*plan.OperatorClass
	// Rewritten is true if the optimizer changed the graph.
	Rewritten bool
}

type Compiler struct {
	opts      options.Options
	logger    *zap.Logger
	metrics   *Metrics
	optimizer *optimizer.Optimizer
}

// New returns a Compiler.  Metrics may be nil.
func New(opts options.Options, logger *zap.Logger, metrics *Metrics) *Compiler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Compiler{
		opts:      opts,
		logger:    logger,
		metrics:   metrics,
		optimizer: optimizer.New(opts, logger),
	}
}

// Compile parses props and compiles flow.
func Compile(flow *dag.Jobflow, props map[string]string, logger *zap.Logger) (*Plan, error) {
	return New(options.Parse(props, logger), logger, nil).Compile(flow)
}

// Compile estimates, classifies, and rewrites the graph of flow in place.
// If the rewrite changed the graph, estimation and classification are run
// again so the plan never carries stale results.
func (c *Compiler) Compile(flow *dag.Jobflow) (*Plan, error) {
	g := flow.Graph
	logger := c.logger.With(zap.String("jobflow", flow.Name), zap.Stringer("graph", g.ID))
	p := &Plan{
		Name:    flow.Name,
		Graph:   g,
		Options: c.opts,
	}
	if err := c.analyze(p, flow.Sizes, logger); err != nil {
		return nil, err
	}
	before := g.Len()
	if c.optimizer.Rewrite(g) {
		p.Rewritten = true
		if err := c.analyze(p, flow.Sizes, logger); err != nil {
			return nil, err
		}
	}
	if c.metrics != nil {
		c.metrics.observe(p, before-g.Len())
	}
	logger.Info("compiled jobflow",
		zap.Int("operators", g.Len()),
		zap.Bool("rewritten", p.Rewritten))
	return p, nil
}

func (c *Compiler) analyze(p *Plan, seed map[dag.PortID]float64, logger *zap.Logger) error {
	store := estimator.NewMemStore(seed)
	estimates, err := estimator.New(c.opts, store, logger).Estimate(p.Graph)
	if err != nil {
		return err
	}
	classes, err := classifier.New(p.Graph, c.opts, store, logger).ClassifyAll()
	if err != nil {
		return err
	}
	p.Sizes, p.Estimates, p.Classes = store, estimates, classes
	return nil
}

// CompileAll compiles independent jobflows concurrently.  Each jobflow
// must have its own graph.  The first error cancels the jobflows not yet
// started and is returned.
func (c *Compiler) CompileAll(ctx context.Context, flows []*dag.Jobflow) ([]*Plan, error) {
	plans := make([]*Plan, len(flows))
	group, ctx := errgroup.WithContext(ctx)
	for k, flow := range flows {
		group.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			p, err := c.Compile(flow)
			if err != nil {
				return err
			}
			plans[k] = p
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return plans, nil
}
