package classifier

import (
	"github.com/brimdata/flowplan/compiler/dag"
	"github.com/brimdata/flowplan/compiler/plan"
)

func (c *Classifier) aggregate(op *dag.Operator) (*plan.OperatorClass, error) {
	if len(op.Inputs) <= dag.FoldInput {
		return nil, op.Errorf("%s operator has no input to aggregate", op.Type)
	}
	b := plan.NewBuilder(op, plan.InputGroup)
	fold := op.Inputs[dag.FoldInput]
	b.Add(fold, plan.Primary, plan.Aggregate)
	if c.partialAggregation(op) {
		b.Add(fold, plan.PartialReduction)
	}
	return b.Build()
}

// partialAggregation decides whether op may aggregate partially before the
// shuffle.  Whole side inputs require a total reduction; otherwise the
// operator annotation decides, deferring to the global option.
func (c *Classifier) partialAggregation(op *dag.Operator) bool {
	for _, id := range op.Inputs {
		if c.g.Port(id).Unit == dag.UnitWhole {
			return false
		}
	}
	return c.opts.PartialAggregation(op.Aggregation)
}
