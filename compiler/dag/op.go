package dag

import (
	"fmt"
	"slices"

	"github.com/brimdata/flowplan/order"
)

type (
	OpID   int
	PortID int
)

// Conventional port positions and names.
const (
	// MasterInput and TransactionInput index the inputs of the
	// master-join family.
	MasterInput      = 0
	TransactionInput = 1
	// FoldInput indexes the aggregated input of fold and summarize.
	FoldInput = 0
	// MissedPort names the not-joined output of master-join operators.
	MissedPort = "missed"
)

type Direction bool

const (
	In  Direction = false
	Out Direction = true
)

func (d Direction) String() string {
	if d == Out {
		return "output"
	}
	return "input"
}

// Group is a grouping key together with the ordering of the records
// within each group.
type Group struct {
	Keys  []string       `json:"keys"`
	Order order.SortKeys `json:"order,omitempty"`
}

func NewGroup(keys []string, sortKeys ...order.SortKey) *Group {
	return &Group{Keys: keys, Order: sortKeys}
}

func (g *Group) Equal(to *Group) bool {
	if g == nil || to == nil {
		return g == to
	}
	return slices.Equal(g.Keys, to.Keys) && g.Order.Equal(to.Order)
}

func (g *Group) IsOrdered() bool {
	return g != nil && len(g.Order) > 0
}

func (g *Group) String() string {
	if g == nil {
		return "{}"
	}
	if g.IsOrdered() {
		return fmt.Sprintf("{keys=%v order=[%s]}", g.Keys, g.Order)
	}
	return fmt.Sprintf("{keys=%v}", g.Keys)
}

// Port is an input or output of an operator.  The identity of a port is
// fixed when its operator is added to a graph; only its connections change.
type Port struct {
	ID    PortID
	Owner OpID
	Dir   Direction
	Name  string
	// Index is the position of the port among its owner's inputs or outputs.
	Index int
	// Unit, Group, and Buffer apply to inputs only.
	Unit   Unit
	Group  *Group
	Buffer Buffer

	opposites []PortID
}

func (p *Port) IsInput() bool {
	return p.Dir == In
}

// Attributes holds the annotation elements of an operator that the
// planner consults.
type Attributes struct {
	// Aggregation is the partialAggregation element of fold and summarize.
	Aggregation Aggregation
	// Level is the severity of a logging operator.
	Level Level
	// Selection names the selection function of a master-join operator.
	Selection string
}

type Operator struct {
	ID      OpID
	Name    string
	Kind    Kind
	Type    Type
	Inputs  []PortID
	Outputs []PortID
	Attributes

	removed bool
}

func (o *Operator) String() string {
	if o.Type == None {
		return fmt.Sprintf("%s(%s#%d)", o.Kind, o.Name, o.ID)
	}
	return fmt.Sprintf("%s(%s#%d)", o.Type, o.Name, o.ID)
}

// Removed reports whether the operator was removed from its graph.
func (o *Operator) Removed() bool {
	return o.removed
}

// Errorf returns an InternalError describing a violated invariant of o.
func (o *Operator) Errorf(format string, args ...any) error {
	return &InternalError{Op: o.String(), Msg: fmt.Sprintf(format, args...)}
}

// InternalError reports a graph or planner inconsistency.  It is never
// recovered from: the compile of the offending graph is aborted.
type InternalError struct {
	Op  string
	Msg string
}

func (e *InternalError) Error() string {
	if e.Op == "" {
		return "internal error: " + e.Msg
	}
	return fmt.Sprintf("internal error: %s: %s", e.Op, e.Msg)
}

type InputSpec struct {
	Name   string
	Unit   Unit
	Group  *Group
	Buffer Buffer
}

type OutputSpec struct {
	Name string
}

// OperatorSpec declares an operator and its ports for Graph.Add.
type OperatorSpec struct {
	Name    string
	Kind    Kind
	Type    Type
	Inputs  []InputSpec
	Outputs []OutputSpec
	Attributes
}
