package dag

import "slices"

// Sort returns the live operators of g in topological order.  Operators
// with no ordering constraint between them are emitted in ID order so the
// result is deterministic.
func (g *Graph) Sort() ([]*Operator, error) {
	ops := g.Operators()
	pending := make(map[OpID]int, len(ops))
	var ready []OpID
	for _, op := range ops {
		n := len(g.Predecessors(op))
		pending[op.ID] = n
		if n == 0 {
			ready = append(ready, op.ID)
		}
	}
	sorted := make([]*Operator, 0, len(ops))
	for len(ready) > 0 {
		slices.Sort(ready)
		op := g.ops[ready[0]]
		ready = ready[1:]
		sorted = append(sorted, op)
		for _, succ := range g.Successors(op) {
			pending[succ.ID]--
			if pending[succ.ID] == 0 {
				ready = append(ready, succ.ID)
			}
		}
	}
	if len(sorted) != len(ops) {
		for _, op := range ops {
			if pending[op.ID] > 0 {
				return nil, op.Errorf("operator graph has a cycle")
			}
		}
	}
	return sorted, nil
}

// Predecessors returns the distinct live operators feeding the inputs of op.
func (g *Graph) Predecessors(op *Operator) []*Operator {
	return g.neighbors(op.Inputs)
}

// Successors returns the distinct live operators consuming the outputs of op.
func (g *Graph) Successors(op *Operator) []*Operator {
	return g.neighbors(op.Outputs)
}

func (g *Graph) neighbors(ports []PortID) []*Operator {
	var out []*Operator
	for _, id := range ports {
		for _, opp := range g.ports[id].opposites {
			owner := g.ops[g.ports[opp].Owner]
			if g.Contains(owner) && !slices.Contains(out, owner) {
				out = append(out, owner)
			}
		}
	}
	return out
}
