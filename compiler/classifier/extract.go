package classifier

import (
	"github.com/brimdata/flowplan/compiler/dag"
	"github.com/brimdata/flowplan/compiler/plan"
)

// extract classifies record-wise operators, which have exactly one
// record input apart from any whole side inputs.
func (c *Classifier) extract(op *dag.Operator) (*plan.OperatorClass, error) {
	if len(op.Inputs) == 0 {
		return nil, op.Errorf("%s operator has no inputs", op.Type)
	}
	var primary []dag.PortID
	for _, id := range op.Inputs {
		switch c.g.Port(id).Unit {
		case dag.UnitGroup:
			return nil, op.Errorf("%s operator has grouped input %q", op.Type, c.g.Port(id).Name)
		case dag.UnitWhole:
			continue
		}
		primary = append(primary, id)
	}
	if len(primary) != 1 {
		return nil, op.Errorf("%s operator must have exactly one record input (found %d)", op.Type, len(primary))
	}
	return plan.NewBuilder(op, plan.InputRecord).Add(primary[0], plan.Primary).Build()
}
