package optimizer

import (
	"github.com/brimdata/flowplan/compiler/dag"
	"go.uber.org/zap"
)

// RemoveEmptyMasterJoins rewrites master joins with a provably empty
// input.  With emptyTx, a join whose transaction input has no effective
// upstream is disconnected, leaving its outputs to be pruned by the next
// repair.  With emptyMaster, a join whose master input has no effective
// upstream and which has no selection function is replaced by direct
// connections from its transaction upstreams to the downstreams of its
// missed output.  The pass repeats until nothing changes since each
// rewrite may empty the inputs of another join.
func RemoveEmptyMasterJoins(emptyMaster, emptyTx bool, logger *zap.Logger) Rewriter {
	return RewriterFunc(func(g *dag.Graph) bool {
		if !emptyMaster && !emptyTx {
			return false
		}
		var changed bool
		for removeEmptyMasterJoins(g, emptyMaster, emptyTx, logger) {
			changed = true
		}
		return changed
	})
}

func removeEmptyMasterJoins(g *dag.Graph, emptyMaster, emptyTx bool, logger *zap.Logger) bool {
	var changed bool
	for _, op := range g.Operators() {
		if !op.Type.IsMasterJoin() || len(op.Inputs) <= dag.TransactionInput || !g.Contains(op) {
			continue
		}
		master := op.Inputs[dag.MasterInput]
		tx := op.Inputs[dag.TransactionInput]
		if emptyTx && !g.HasEffectiveOpposites(tx) {
			if g.DisconnectAll(op) {
				logger.Debug("disconnected master join with empty transaction", zap.Stringer("operator", op))
				changed = true
			}
			continue
		}
		if !emptyMaster || op.Selection != "" || g.HasEffectiveOpposites(master) {
			continue
		}
		missed, ok := g.OutputByName(op, dag.MissedPort)
		if !ok {
			continue
		}
		if err := bypass(g, op, tx, missed.ID); err != nil {
			logger.Warn("operator not removed", zap.Error(err))
			continue
		}
		logger.Debug("removed master join with empty master", zap.Stringer("operator", op))
		changed = true
	}
	return changed
}
