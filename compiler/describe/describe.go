// Package describe renders a compiled plan as a serializable summary.
package describe

import (
	"math"

	"github.com/alecthomas/units"
	"github.com/brimdata/flowplan/compiler"
	"github.com/brimdata/flowplan/compiler/dag"
	"github.com/brimdata/flowplan/compiler/estimator"
	"github.com/segmentio/ksuid"
)

type Info struct {
	Name      string      `json:"name,omitempty" yaml:"name,omitempty"`
	Graph     ksuid.KSUID `json:"graph" yaml:"graph"`
	Rewritten bool        `json:"rewritten" yaml:"rewritten"`
	Operators []Operator  `json:"operators" yaml:"operators"`
}

type Operator struct {
	ID        dag.OpID `json:"id" yaml:"id"`
	Name      string   `json:"name" yaml:"name"`
	Kind      string   `json:"kind" yaml:"kind"`
	Type      string   `json:"type,omitempty" yaml:"type,omitempty"`
	InputType string   `json:"input_type,omitempty" yaml:"input_type,omitempty"`
	Inputs    []Port   `json:"inputs,omitempty" yaml:"inputs,omitempty"`
	Outputs   []Port   `json:"outputs,omitempty" yaml:"outputs,omitempty"`
}

type Port struct {
	Name       string   `json:"name" yaml:"name"`
	Attributes []string `json:"attributes,omitempty" yaml:"attributes,omitempty"`
	// Bytes is nil when the size is unknown.
	Bytes *float64 `json:"bytes,omitempty" yaml:"bytes,omitempty"`
	Size  string   `json:"size" yaml:"size"`
}

// Plan describes the live operators of p in ID order.
func Plan(p *compiler.Plan) *Info {
	info := &Info{
		Name:      p.Name,
		Graph:     p.Graph.ID,
		Rewritten: p.Rewritten,
	}
	for _, op := range p.Graph.Operators() {
		o := Operator{
			ID:   op.ID,
			Name: op.Name,
			Kind: op.Kind.String(),
		}
		if op.Type != dag.None {
			o.Type = op.Type.String()
		}
		class := p.Classes[op.ID]
		if class != nil {
			o.InputType = class.InputType.String()
		}
		for _, id := range op.Inputs {
			port := newPort(p, id)
			if class != nil {
				port.Attributes = class.Attributes(id).Strings()
			}
			o.Inputs = append(o.Inputs, port)
		}
		for _, id := range op.Outputs {
			o.Outputs = append(o.Outputs, newPort(p, id))
		}
		info.Operators = append(info.Operators, o)
	}
	return info
}

func newPort(p *compiler.Plan, id dag.PortID) Port {
	port := Port{Name: p.Graph.Port(id).Name}
	size := estimator.Unknown
	if p.Sizes != nil {
		size = p.Sizes.Size(id)
	}
	port.Size = FormatSize(size)
	if !estimator.IsUnknown(size) {
		port.Bytes = &size
	}
	return port
}

// FormatSize renders an estimated size in bytes, rounded to whole bytes,
// using binary units.
func FormatSize(size float64) string {
	if estimator.IsUnknown(size) {
		return "unknown"
	}
	if math.IsInf(size, 1) || size > math.MaxInt64 {
		return "huge"
	}
	return units.Base2Bytes(math.Round(size)).String()
}
