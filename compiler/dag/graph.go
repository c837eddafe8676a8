package dag

import (
	"slices"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/segmentio/ksuid"
)

// Graph is the operator graph of one jobflow.  Operators and ports live in
// arenas addressed by OpID and PortID, which are never reused, so a rewrite
// that removes an operator cannot leave a dangling connection behind.
// Connections are kept as adjacency lists on both ends.
//
// A Graph is not safe for concurrent use.
type Graph struct {
	ID ksuid.KSUID

	ops   []*Operator
	ports []*Port
	// roots holds operators registered with AddRoot in addition to the
	// input and output operators, which are always roots.
	roots *roaring.Bitmap
	// members holds the operators currently belonging to the graph.
	members *roaring.Bitmap
}

func New() *Graph {
	return &Graph{
		ID:      ksuid.New(),
		roots:   roaring.New(),
		members: roaring.New(),
	}
}

// Add creates an operator and its ports from spec.
func (g *Graph) Add(spec OperatorSpec) *Operator {
	op := &Operator{
		ID:         OpID(len(g.ops)),
		Name:       spec.Name,
		Kind:       spec.Kind,
		Type:       spec.Type,
		Attributes: spec.Attributes,
	}
	g.ops = append(g.ops, op)
	for k, in := range spec.Inputs {
		p := g.newPort(op, In, in.Name, k)
		p.Unit = in.Unit
		p.Group = in.Group
		p.Buffer = in.Buffer
		if p.Unit == UnitGroup && p.Group == nil {
			p.Group = &Group{}
		}
		op.Inputs = append(op.Inputs, p.ID)
	}
	for k, out := range spec.Outputs {
		op.Outputs = append(op.Outputs, g.newPort(op, Out, out.Name, k).ID)
	}
	g.members.Add(uint32(op.ID))
	return op
}

func (g *Graph) newPort(op *Operator, dir Direction, name string, index int) *Port {
	p := &Port{
		ID:    PortID(len(g.ports)),
		Owner: op.ID,
		Dir:   dir,
		Name:  name,
		Index: index,
	}
	g.ports = append(g.ports, p)
	return p
}

// AddRoot registers op as a root of the graph so that Repair keeps it and
// everything connected to it.
func (g *Graph) AddRoot(op *Operator) {
	g.roots.Add(uint32(op.ID))
}

func (g *Graph) isRoot(op *Operator) bool {
	return op.Kind == KindInput || op.Kind == KindOutput || g.roots.Contains(uint32(op.ID))
}

func (g *Graph) Operator(id OpID) *Operator {
	return g.ops[id]
}

func (g *Graph) Port(id PortID) *Port {
	return g.ports[id]
}

// Owner returns the operator that owns port id.
func (g *Graph) Owner(id PortID) *Operator {
	return g.ops[g.ports[id].Owner]
}

// Input returns the k-th input of op.
func (g *Graph) Input(op *Operator, k int) *Port {
	return g.ports[op.Inputs[k]]
}

// Output returns the k-th output of op.
func (g *Graph) Output(op *Operator, k int) *Port {
	return g.ports[op.Outputs[k]]
}

// OutputByName returns the output of op called name.
func (g *Graph) OutputByName(op *Operator, name string) (*Port, bool) {
	for _, id := range op.Outputs {
		if p := g.ports[id]; p.Name == name {
			return p, true
		}
	}
	return nil, false
}

// Contains reports whether op is a live member of the graph.
func (g *Graph) Contains(op *Operator) bool {
	return !op.removed && g.members.Contains(uint32(op.ID))
}

// Operators returns the live operators of the graph in ID order.
func (g *Graph) Operators() []*Operator {
	ops := make([]*Operator, 0, g.members.GetCardinality())
	it := g.members.Iterator()
	for it.HasNext() {
		ops = append(ops, g.ops[it.Next()])
	}
	return ops
}

func (g *Graph) Len() int {
	return int(g.members.GetCardinality())
}

// Opposites returns the ports connected to port id.
func (g *Graph) Opposites(id PortID) []PortID {
	return slices.Clone(g.ports[id].opposites)
}

// Connect connects output from to input to.  Connecting an already
// connected pair is a no-op.
func (g *Graph) Connect(from, to PortID) error {
	out, in := g.ports[from], g.ports[to]
	if out.Dir != Out || in.Dir != In {
		return &InternalError{Msg: "connect requires an output and an input port"}
	}
	if src := g.ops[out.Owner]; !g.Contains(src) {
		return src.Errorf("cannot connect from a removed operator")
	}
	if dst := g.ops[in.Owner]; !g.Contains(dst) {
		return dst.Errorf("cannot connect to a removed operator")
	}
	if slices.Contains(out.opposites, to) {
		return nil
	}
	out.opposites = append(out.opposites, to)
	in.opposites = append(in.opposites, from)
	return nil
}

// Disconnect removes the connection between a and b, in either direction,
// and reports whether they were connected.
func (g *Graph) Disconnect(a, b PortID) bool {
	pa, pb := g.ports[a], g.ports[b]
	i := slices.Index(pa.opposites, b)
	if i < 0 {
		return false
	}
	pa.opposites = slices.Delete(pa.opposites, i, i+1)
	if j := slices.Index(pb.opposites, a); j >= 0 {
		pb.opposites = slices.Delete(pb.opposites, j, j+1)
	}
	return true
}

// DisconnectPort removes every connection of port id and reports whether
// there were any.
func (g *Graph) DisconnectPort(id PortID) bool {
	var changed bool
	for _, opp := range g.Opposites(id) {
		if g.Disconnect(id, opp) {
			changed = true
		}
	}
	return changed
}

// DisconnectAll removes every connection of every port of op and reports
// whether there were any.
func (g *Graph) DisconnectAll(op *Operator) bool {
	var changed bool
	for _, id := range op.Inputs {
		if g.DisconnectPort(id) {
			changed = true
		}
	}
	for _, id := range op.Outputs {
		if g.DisconnectPort(id) {
			changed = true
		}
	}
	return changed
}

// Remove disconnects op and drops it from the graph.
func (g *Graph) Remove(op *Operator) {
	g.DisconnectAll(op)
	op.removed = true
	g.members.Remove(uint32(op.ID))
}

// Repair recomputes the membership of the graph as the operators reachable
// from its roots, following connections in both directions, and removes
// every other operator.  It returns the number of operators removed.
func (g *Graph) Repair() int {
	reached := roaring.New()
	var stack []OpID
	for _, op := range g.Operators() {
		if g.isRoot(op) {
			reached.Add(uint32(op.ID))
			stack = append(stack, op.ID)
		}
	}
	for len(stack) > 0 {
		op := g.ops[stack[len(stack)-1]]
		stack = stack[:len(stack)-1]
		for _, id := range slices.Concat(op.Inputs, op.Outputs) {
			for _, opp := range g.ports[id].opposites {
				next := g.ports[opp].Owner
				if reached.CheckedAdd(uint32(next)) {
					stack = append(stack, next)
				}
			}
		}
	}
	dropped := roaring.AndNot(g.members, reached)
	it := dropped.Iterator()
	for it.HasNext() {
		g.Remove(g.ops[it.Next()])
	}
	return int(dropped.GetCardinality())
}

// HasEffectiveOpposites reports whether port id is connected to a live
// operator that can actually carry data.  A marker operator is a
// pass-through and is effective only when one of its own inputs is.
func (g *Graph) HasEffectiveOpposites(id PortID) bool {
	return g.hasEffectiveOpposites(id, roaring.New())
}

func (g *Graph) hasEffectiveOpposites(id PortID, visited *roaring.Bitmap) bool {
	p := g.ports[id]
	for _, opp := range p.opposites {
		owner := g.ops[g.ports[opp].Owner]
		if !g.Contains(owner) {
			continue
		}
		if p.Dir == Out || owner.Kind != KindMarker {
			return true
		}
		if !visited.CheckedAdd(uint32(owner.ID)) {
			continue
		}
		for _, in := range owner.Inputs {
			if g.hasEffectiveOpposites(in, visited) {
				return true
			}
		}
	}
	return false
}
