package estimator

import (
	"fmt"

	"github.com/brimdata/flowplan/compiler/dag"
)

type ruleKind int

const (
	// identity passes the sum of all inputs through.
	identity ruleKind = iota
	// scaled scales the driving input.
	scaled
	// join scales the transaction input of a master join.
	join
	// unknown cannot be predicted from the inputs.
	unknown
)

type rule struct {
	kind  ruleKind
	scale float64
}

func (r rule) String() string {
	switch r.kind {
	case identity:
		return "identity"
	case scaled:
		return fmt.Sprintf("scaled(%g)", r.scale)
	case join:
		return fmt.Sprintf("join(%g)", r.scale)
	}
	return "unknown"
}

func builtinRule(typ dag.Type) rule {
	switch typ {
	case dag.Checkpoint, dag.Logging:
		return rule{kind: identity, scale: 1}
	case dag.Branch, dag.Project, dag.Fold, dag.Summarize:
		return rule{kind: scaled, scale: 1}
	case dag.Extend, dag.Restructure:
		return rule{kind: scaled, scale: 1.25}
	case dag.Update, dag.Convert:
		return rule{kind: scaled, scale: 2}
	case dag.MasterJoin, dag.MasterJoinUpdate:
		return rule{kind: join, scale: 2}
	case dag.MasterCheck, dag.MasterBranch:
		return rule{kind: join, scale: 1}
	}
	// Extract, Split, CoGroup, and GroupSort.
	return rule{kind: unknown}
}

// override replaces the scale of r.  Rules without a natural input to
// scale apply it to the driving input.
func (r rule) override(scale float64) rule {
	if r.kind == unknown {
		r.kind = scaled
	}
	r.scale = scale
	return r
}
