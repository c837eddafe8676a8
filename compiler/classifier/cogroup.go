package classifier

import (
	"github.com/brimdata/flowplan/compiler/dag"
	"github.com/brimdata/flowplan/compiler/plan"
)

func (c *Classifier) coGroup(op *dag.Operator) (*plan.OperatorClass, error) {
	if len(op.Inputs) == 0 {
		return nil, op.Errorf("%s operator has no inputs", op.Type)
	}
	b := plan.NewBuilder(op, plan.InputGroup)
	for _, id := range op.Inputs {
		p := c.g.Port(id)
		switch p.Unit {
		case dag.UnitRecord:
			return nil, op.Errorf("%s operator has ungrouped input %q", op.Type, p.Name)
		case dag.UnitWhole:
			continue
		}
		b.Add(id, plan.Primary)
		if p.Group.IsOrdered() {
			b.Add(id, plan.Sorted)
		}
		switch p.Buffer {
		case dag.BufferSpill:
			b.Add(id, plan.Escaped)
		case dag.BufferVolatile:
			b.Add(id, plan.Volatile)
		}
	}
	return b.Build()
}
