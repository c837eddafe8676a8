// Package optimizer rewrites an operator graph in place, removing
// operators that have no effect under the current options.
package optimizer

import (
	"github.com/brimdata/flowplan/compiler/dag"
	"github.com/brimdata/flowplan/compiler/options"
	"go.uber.org/zap"
)

// Rewriter mutates a graph and reports whether it changed anything.
// Rewriters leave every remaining connection consistent but do not
// repair the graph; that is done once by the Optimizer.
type Rewriter interface {
	Rewrite(*dag.Graph) bool
}

type RewriterFunc func(*dag.Graph) bool

func (f RewriterFunc) Rewrite(g *dag.Graph) bool {
	return f(g)
}

// Composite runs its rewriters in order.
type Composite []Rewriter

func (c Composite) Rewrite(g *dag.Graph) bool {
	var changed bool
	for _, r := range c {
		if r.Rewrite(g) {
			changed = true
		}
	}
	return changed
}

type Optimizer struct {
	logger *zap.Logger
	passes Composite
}

// New returns an Optimizer running, in order, dead logging removal, dead
// checkpoint removal, and empty master join removal.  Earlier passes can
// expose empty joins to later ones, so the order is fixed.
func New(opts options.Options, logger *zap.Logger) *Optimizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Optimizer{
		logger: logger,
		passes: Composite{
			RemoveLogging(opts.LoggingLevel, logger),
			RemoveCheckpoints(logger),
			RemoveEmptyMasterJoins(opts.RemoveEmptyMaster, opts.RemoveEmptyTransaction, logger),
		},
	}
}

// Rewrite applies every pass to g and, if any of them changed it, repairs
// the graph once.  Classes and estimates computed before the call are
// stale if it returns true.
func (o *Optimizer) Rewrite(g *dag.Graph) bool {
	if !o.passes.Rewrite(g) {
		return false
	}
	pruned := g.Repair()
	o.logger.Debug("repaired graph",
		zap.Stringer("graph", g.ID),
		zap.Int("pruned", pruned),
		zap.Int("operators", g.Len()))
	return true
}

// splice removes op, a pass-through operator with one input and one
// output, and connects each of its upstreams directly to each of its
// downstreams.
func splice(g *dag.Graph, op *dag.Operator) error {
	if len(op.Inputs) != 1 || len(op.Outputs) != 1 {
		return op.Errorf("cannot splice an operator with %d inputs and %d outputs", len(op.Inputs), len(op.Outputs))
	}
	return bypass(g, op, op.Inputs[0], op.Outputs[0])
}

// bypass removes op and connects the upstreams of its input from to the
// downstreams of its output to.
func bypass(g *dag.Graph, op *dag.Operator, from, to dag.PortID) error {
	upstreams := g.Opposites(from)
	downstreams := g.Opposites(to)
	g.Remove(op)
	for _, up := range upstreams {
		for _, down := range downstreams {
			if err := g.Connect(up, down); err != nil {
				return err
			}
		}
	}
	return nil
}
