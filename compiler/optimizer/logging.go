package optimizer

import (
	"github.com/brimdata/flowplan/compiler/dag"
	"go.uber.org/zap"
)

// RemoveLogging removes logging operators less severe than min.
func RemoveLogging(min dag.Level, logger *zap.Logger) Rewriter {
	return RewriterFunc(func(g *dag.Graph) bool {
		return removeEach(g, logger, func(op *dag.Operator) bool {
			return op.Type == dag.Logging && op.Level < min
		})
	})
}

// RemoveCheckpoints removes every checkpoint operator.  Checkpoints are
// hints with no effect on the planned execution.
func RemoveCheckpoints(logger *zap.Logger) Rewriter {
	return RewriterFunc(func(g *dag.Graph) bool {
		return removeEach(g, logger, func(op *dag.Operator) bool {
			return op.Type == dag.Checkpoint
		})
	})
}

func removeEach(g *dag.Graph, logger *zap.Logger, match func(*dag.Operator) bool) bool {
	var changed bool
	for _, op := range g.Operators() {
		if !match(op) {
			continue
		}
		if err := splice(g, op); err != nil {
			logger.Warn("operator not removed", zap.Error(err))
			continue
		}
		logger.Debug("removed operator", zap.Stringer("operator", op))
		changed = true
	}
	return changed
}
