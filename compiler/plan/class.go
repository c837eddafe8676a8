package plan

import (
	"maps"
	"slices"

	"github.com/brimdata/flowplan/compiler/dag"
)

// OperatorClass is the classification of one operator: whether it works
// record-wise or group-wise and the attributes of each of its inputs.
// It is computed for one state of the graph and is stale once the graph
// is rewritten.
type OperatorClass struct {
	Operator  *dag.Operator
	InputType InputType

	attrs map[dag.PortID]Attributes
}

// Attributes returns the attributes of input port id.
func (c *OperatorClass) Attributes(id dag.PortID) Attributes {
	return c.attrs[id]
}

// PrimaryInputs returns the inputs marked Primary in port order.
func (c *OperatorClass) PrimaryInputs() []dag.PortID {
	return c.inputsWith(Primary)
}

// JoinTables returns the inputs broadcast as join tables in port order.
func (c *OperatorClass) JoinTables() []dag.PortID {
	return c.inputsWith(JoinTable)
}

func (c *OperatorClass) inputsWith(a Attribute) []dag.PortID {
	var out []dag.PortID
	for _, id := range c.Operator.Inputs {
		if c.attrs[id].Has(a) {
			out = append(out, id)
		}
	}
	return out
}

// Ports returns the ports that carry at least one attribute, sorted.
func (c *OperatorClass) Ports() []dag.PortID {
	return slices.Sorted(maps.Keys(c.attrs))
}

// Builder accumulates the attributes of an OperatorClass.
type Builder struct {
	op    *dag.Operator
	typ   InputType
	attrs map[dag.PortID]Attributes
}

func NewBuilder(op *dag.Operator, typ InputType) *Builder {
	return &Builder{
		op:    op,
		typ:   typ,
		attrs: make(map[dag.PortID]Attributes),
	}
}

// Add adds attrs to input port id.
func (b *Builder) Add(id dag.PortID, attrs ...Attribute) *Builder {
	b.attrs[id] = b.attrs[id].Union(NewAttributes(attrs...))
	return b
}

// Build validates the accumulated attributes and returns the class.  An
// attribute on a port the operator does not own, or a port that is both
// Primary and JoinTable, means the classifier is broken and is reported
// as a dag.InternalError.
func (b *Builder) Build() (*OperatorClass, error) {
	for _, id := range slices.Sorted(maps.Keys(b.attrs)) {
		if !slices.Contains(b.op.Inputs, id) {
			return nil, b.op.Errorf("attributes %s given for foreign port %d", b.attrs[id], id)
		}
		if attrs := b.attrs[id]; attrs.Has(Primary) && attrs.Has(JoinTable) {
			return nil, b.op.Errorf("input %d is both %s and %s", id, Primary, JoinTable)
		}
	}
	return &OperatorClass{
		Operator:  b.op,
		InputType: b.typ,
		attrs:     maps.Clone(b.attrs),
	}, nil
}
