// Package estimator propagates data size estimates through an operator
// graph, from the sizes declared on its inputs down to every port.
package estimator

import (
	"github.com/brimdata/flowplan/compiler/dag"
	"github.com/brimdata/flowplan/compiler/options"
	"go.uber.org/zap"
)

// OperatorEstimate holds the estimated sizes of the ports of one operator.
type OperatorEstimate struct {
	Operator *dag.Operator
	sizes    map[dag.PortID]float64
}

func newOperatorEstimate(op *dag.Operator) *OperatorEstimate {
	return &OperatorEstimate{
		Operator: op,
		sizes:    make(map[dag.PortID]float64),
	}
}

// Size returns the estimated size of port id, or Unknown.
func (e *OperatorEstimate) Size(id dag.PortID) float64 {
	if size, ok := e.sizes[id]; ok {
		return size
	}
	return Unknown
}

type Estimator struct {
	opts   options.Options
	store  Store
	logger *zap.Logger
}

func New(opts options.Options, store Store, logger *zap.Logger) *Estimator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Estimator{
		opts:   opts,
		store:  store,
		logger: logger,
	}
}

// Estimate visits g in topological order and puts the estimated size of
// every port into the store.  The outputs of input operators are taken
// from the store as seeded by the caller.
func (e *Estimator) Estimate(g *dag.Graph) (map[dag.OpID]*OperatorEstimate, error) {
	ops, err := g.Sort()
	if err != nil {
		return nil, err
	}
	estimates := make(map[dag.OpID]*OperatorEstimate, len(ops))
	for _, op := range ops {
		est, err := e.estimateOp(g, op)
		if err != nil {
			return nil, err
		}
		estimates[op.ID] = est
	}
	return estimates, nil
}

func (e *Estimator) estimateOp(g *dag.Graph, op *dag.Operator) (*OperatorEstimate, error) {
	est := newOperatorEstimate(op)
	for _, id := range op.Inputs {
		var sizes []float64
		for _, opp := range g.Opposites(id) {
			sizes = append(sizes, e.store.Size(opp))
		}
		size := Sum(sizes...)
		e.store.Put(id, size)
		est.sizes[id] = size
	}
	if op.Kind == dag.KindInput {
		for _, id := range op.Outputs {
			est.sizes[id] = e.store.Size(id)
		}
		return est, nil
	}
	out, err := e.output(g, op, est)
	if err != nil {
		return nil, err
	}
	for _, id := range op.Outputs {
		e.store.Put(id, out)
		est.sizes[id] = out
	}
	if len(op.Outputs) > 0 {
		e.logger.Debug("estimated operator",
			zap.Stringer("operator", op),
			zap.Float64("size", out))
	}
	return est, nil
}

func (e *Estimator) output(g *dag.Graph, op *dag.Operator, est *OperatorEstimate) (float64, error) {
	r := rule{kind: identity, scale: 1}
	if op.Kind == dag.KindCore || op.Kind == dag.KindUser {
		r = builtinRule(op.Type)
		if scale, ok := e.opts.Scale(op.Type); ok {
			if IsUnknown(scale) {
				return Unknown, nil
			}
			r = r.override(scale)
		}
	}
	switch r.kind {
	case identity:
		var sizes []float64
		for _, id := range op.Inputs {
			sizes = append(sizes, est.sizes[id])
		}
		if len(sizes) == 0 {
			return Unknown, nil
		}
		return Sum(sizes...) * r.scale, nil
	case scaled:
		id, ok := drivingInput(g, op)
		if !ok {
			return Unknown, nil
		}
		return est.sizes[id] * r.scale, nil
	case join:
		if len(op.Inputs) <= dag.TransactionInput {
			return 0, op.Errorf("master join requires master and transaction inputs")
		}
		return est.sizes[op.Inputs[dag.TransactionInput]] * r.scale, nil
	}
	return Unknown, nil
}

// drivingInput returns the first input of op that is not a whole side
// input, falling back to the first input.
func drivingInput(g *dag.Graph, op *dag.Operator) (dag.PortID, bool) {
	if len(op.Inputs) == 0 {
		return 0, false
	}
	for _, id := range op.Inputs {
		if g.Port(id).Unit != dag.UnitWhole {
			return id, true
		}
	}
	return op.Inputs[0], true
}
