package classifier

import (
	"github.com/brimdata/flowplan/compiler/dag"
	"github.com/brimdata/flowplan/compiler/plan"
	"go.uber.org/zap"
)

// masterJoin chooses between a broadcast join, where the master input is
// small enough to be read whole by every task, and a shuffle join, where
// both inputs are grouped by the join key.
func (c *Classifier) masterJoin(op *dag.Operator) (*plan.OperatorClass, error) {
	if len(op.Inputs) <= dag.TransactionInput {
		return nil, op.Errorf("%s operator requires master and transaction inputs", op.Type)
	}
	master := op.Inputs[dag.MasterInput]
	tx := op.Inputs[dag.TransactionInput]
	size := c.sizes.Size(master)
	if c.opts.CanBroadcast(size) {
		c.logger.Debug("broadcast join",
			zap.Stringer("operator", op),
			zap.Float64("master_size", size))
		return plan.NewBuilder(op, plan.InputRecord).
			Add(tx, plan.Primary).
			Add(master, plan.JoinTable).
			Build()
	}
	return plan.NewBuilder(op, plan.InputGroup).
		Add(master, plan.Primary).
		Add(tx, plan.Primary).
		Build()
}
