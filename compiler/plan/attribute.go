package plan

import (
	"encoding/json"
	"fmt"
	"math/bits"
	"strings"
)

// Attribute is an execution attribute of an operator input.
type Attribute uint8

const (
	// Primary marks an input that drives the operator's unit of work.
	Primary Attribute = iota
	// Aggregate marks an input that is folded into a single result per group.
	Aggregate
	// PartialReduction marks an aggregated input that may be reduced
	// before the shuffle.
	PartialReduction
	// Sorted marks a group whose ordering must be honored.
	Sorted
	// Escaped marks a group that may spill to secondary storage.
	Escaped
	// Volatile marks a group buffer that cannot be safely re-iterated.
	Volatile
	// JoinTable marks an input that is broadcast as a join table.
	JoinTable
	numAttributes
)

var attributeNames = [numAttributes]string{
	Primary:          "PRIMARY",
	Aggregate:        "AGGREGATE",
	PartialReduction: "PARTIAL_REDUCTION",
	Sorted:           "SORTED",
	Escaped:          "ESCAPED",
	Volatile:         "VOLATILE",
	JoinTable:        "JOIN_TABLE",
}

func (a Attribute) String() string {
	if a >= numAttributes {
		return fmt.Sprintf("Attribute(%d)", int(a))
	}
	return attributeNames[a]
}

// Attributes is a set of Attribute.
type Attributes uint8

func NewAttributes(attrs ...Attribute) Attributes {
	var s Attributes
	for _, a := range attrs {
		s = s.With(a)
	}
	return s
}

func (s Attributes) Has(a Attribute) bool {
	return s&(1<<a) != 0
}

func (s Attributes) With(a Attribute) Attributes {
	return s | 1<<a
}

func (s Attributes) Without(a Attribute) Attributes {
	return s &^ (1 << a)
}

func (s Attributes) Union(t Attributes) Attributes {
	return s | t
}

func (s Attributes) IsEmpty() bool {
	return s == 0
}

func (s Attributes) Len() int {
	return bits.OnesCount8(uint8(s))
}

// Slice returns the members of s in declaration order.
func (s Attributes) Slice() []Attribute {
	var out []Attribute
	for a := Attribute(0); a < numAttributes; a++ {
		if s.Has(a) {
			out = append(out, a)
		}
	}
	return out
}

func (s Attributes) Strings() []string {
	var out []string
	for _, a := range s.Slice() {
		out = append(out, a.String())
	}
	return out
}

func (s Attributes) String() string {
	return "{" + strings.Join(s.Strings(), ",") + "}"
}

func (s Attributes) MarshalJSON() ([]byte, error) {
	strs := s.Strings()
	if strs == nil {
		strs = []string{}
	}
	return json.Marshal(strs)
}

// InputType tells whether an operator as a whole consumes its inputs one
// record at a time or one group at a time.
type InputType int

const (
	InputRecord InputType = iota
	InputGroup
)

func (t InputType) String() string {
	switch t {
	case InputRecord:
		return "RECORD"
	case InputGroup:
		return "GROUP"
	}
	return fmt.Sprintf("InputType(%d)", int(t))
}

func (t InputType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}
