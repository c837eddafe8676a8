// Package classifier assigns execution attributes to the inputs of each
// operator of a graph.  The classifier for an operator is chosen by its
// type; every type that may appear in a compiled graph must have one.
package classifier

import (
	"github.com/brimdata/flowplan/compiler/dag"
	"github.com/brimdata/flowplan/compiler/estimator"
	"github.com/brimdata/flowplan/compiler/options"
	"github.com/brimdata/flowplan/compiler/plan"
	"go.uber.org/zap"
)

type Classifier struct {
	g      *dag.Graph
	opts   options.Options
	sizes  estimator.Lookup
	logger *zap.Logger
}

// New returns a Classifier for the operators of g.  Sizes must hold the
// estimates of the current state of g.
func New(g *dag.Graph, opts options.Options, sizes estimator.Lookup, logger *zap.Logger) *Classifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Classifier{
		g:      g,
		opts:   opts,
		sizes:  sizes,
		logger: logger,
	}
}

// Classify dispatches op to the classifier of its type.
func (c *Classifier) Classify(op *dag.Operator) (*plan.OperatorClass, error) {
	if op.Kind != dag.KindCore && op.Kind != dag.KindUser {
		return nil, op.Errorf("no classifier for %s operators", op.Kind)
	}
	switch op.Type {
	case dag.Branch, dag.Convert, dag.Update, dag.Extract, dag.Project,
		dag.Extend, dag.Restructure, dag.Checkpoint, dag.Logging, dag.Split:
		return c.extract(op)
	case dag.Fold, dag.Summarize:
		return c.aggregate(op)
	case dag.MasterCheck, dag.MasterBranch, dag.MasterJoin, dag.MasterJoinUpdate:
		return c.masterJoin(op)
	case dag.CoGroup, dag.GroupSort:
		return c.coGroup(op)
	}
	return nil, op.Errorf("no classifier for operator type %s", op.Type)
}

// ClassifyAll classifies every core and user operator of the graph.
func (c *Classifier) ClassifyAll() (map[dag.OpID]*plan.OperatorClass, error) {
	ops, err := c.g.Sort()
	if err != nil {
		return nil, err
	}
	classes := make(map[dag.OpID]*plan.OperatorClass)
	for _, op := range ops {
		if op.Kind != dag.KindCore && op.Kind != dag.KindUser {
			continue
		}
		class, err := c.Classify(op)
		if err != nil {
			return nil, err
		}
		classes[op.ID] = class
	}
	return classes, nil
}
