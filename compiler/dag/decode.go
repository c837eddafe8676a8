package dag

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/brimdata/flowplan/order"
	"gopkg.in/yaml.v3"
)

// Jobflow is a decoded graph description: the graph plus the data sizes
// declared on the outputs of its operators, which seed size estimation.
type Jobflow struct {
	Name  string
	Graph *Graph
	Sizes map[PortID]float64
}

type description struct {
	Name        string     `yaml:"name"`
	Operators   []opDesc   `yaml:"operators"`
	Connections []connDesc `yaml:"connections"`
	Roots       []string   `yaml:"roots"`
}

type opDesc struct {
	Name        string       `yaml:"name"`
	Kind        string       `yaml:"kind"`
	Type        string       `yaml:"type"`
	Inputs      []inputDesc  `yaml:"inputs"`
	Outputs     []outputDesc `yaml:"outputs"`
	Aggregation string       `yaml:"aggregation"`
	Level       string       `yaml:"level"`
	Selection   string       `yaml:"selection"`
}

type inputDesc struct {
	Name   string   `yaml:"name"`
	Unit   string   `yaml:"unit"`
	Keys   []string `yaml:"keys"`
	Order  []string `yaml:"order"`
	Buffer string   `yaml:"buffer"`
}

type outputDesc struct {
	Name string   `yaml:"name"`
	Size *float64 `yaml:"size"`
}

// UnmarshalYAML accepts either a bare port name or a mapping.
func (o *outputDesc) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		return node.Decode(&o.Name)
	}
	type plain outputDesc
	return node.Decode((*plain)(o))
}

type connDesc struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

// Decode reads a YAML graph description.
func Decode(r io.Reader) (*Jobflow, error) {
	var desc description
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&desc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty graph description")
		}
		return nil, err
	}
	return desc.build()
}

func (d *description) build() (*Jobflow, error) {
	flow := &Jobflow{
		Name:  d.Name,
		Graph: New(),
		Sizes: make(map[PortID]float64),
	}
	byName := make(map[string]*Operator)
	for k, od := range d.Operators {
		if od.Name == "" {
			return nil, fmt.Errorf("operator %d: missing name", k)
		}
		if _, ok := byName[od.Name]; ok {
			return nil, fmt.Errorf("operator %q: duplicate name", od.Name)
		}
		spec, err := od.spec()
		if err != nil {
			return nil, fmt.Errorf("operator %q: %w", od.Name, err)
		}
		op := flow.Graph.Add(spec)
		byName[od.Name] = op
		for k, out := range od.Outputs {
			if out.Size != nil {
				flow.Sizes[op.Outputs[k]] = *out.Size
			}
		}
	}
	for _, c := range d.Connections {
		from, err := lookupPort(flow.Graph, byName, c.From, Out)
		if err != nil {
			return nil, err
		}
		to, err := lookupPort(flow.Graph, byName, c.To, In)
		if err != nil {
			return nil, err
		}
		if err := flow.Graph.Connect(from, to); err != nil {
			return nil, err
		}
	}
	for _, name := range d.Roots {
		op, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("root %q: no such operator", name)
		}
		flow.Graph.AddRoot(op)
	}
	return flow, nil
}

func (od *opDesc) spec() (OperatorSpec, error) {
	spec := OperatorSpec{Name: od.Name}
	var err error
	if od.Type != "" {
		if spec.Type, err = ParseType(od.Type); err != nil {
			return spec, err
		}
	}
	switch {
	case od.Kind != "":
		if spec.Kind, err = ParseKind(od.Kind); err != nil {
			return spec, err
		}
	case spec.Type == None:
		return spec, errors.New("either kind or type must be given")
	case spec.Type.IsCore():
		spec.Kind = KindCore
	default:
		spec.Kind = KindUser
	}
	if spec.Aggregation, err = ParseAggregation(od.Aggregation); err != nil {
		return spec, err
	}
	if spec.Level, err = ParseLevel(od.Level); err != nil {
		return spec, err
	}
	spec.Selection = od.Selection
	for k, in := range od.Inputs {
		is, err := in.spec()
		if err != nil {
			return spec, fmt.Errorf("input %d: %w", k, err)
		}
		spec.Inputs = append(spec.Inputs, is)
	}
	for _, out := range od.Outputs {
		spec.Outputs = append(spec.Outputs, OutputSpec{Name: out.Name})
	}
	return spec, nil
}

func (in *inputDesc) spec() (InputSpec, error) {
	spec := InputSpec{Name: in.Name}
	var err error
	if spec.Unit, err = ParseUnit(in.Unit); err != nil {
		return spec, err
	}
	if spec.Buffer, err = ParseBuffer(in.Buffer); err != nil {
		return spec, err
	}
	if spec.Unit != UnitGroup {
		if len(in.Keys) > 0 || len(in.Order) > 0 {
			return spec, fmt.Errorf("grouping given for %s input", spec.Unit)
		}
		return spec, nil
	}
	group := &Group{Keys: in.Keys}
	for _, s := range in.Order {
		key, err := order.ParseSortKey(s)
		if err != nil {
			return spec, err
		}
		group.Order = append(group.Order, key)
	}
	spec.Group = group
	return spec, nil
}

func lookupPort(g *Graph, byName map[string]*Operator, ref string, dir Direction) (PortID, error) {
	opName, portName, ok := strings.Cut(ref, ".")
	if !ok {
		return 0, fmt.Errorf("port reference %q: expected operator.port", ref)
	}
	op, ok := byName[opName]
	if !ok {
		return 0, fmt.Errorf("port reference %q: no such operator", ref)
	}
	ports := op.Inputs
	if dir == Out {
		ports = op.Outputs
	}
	for _, id := range ports {
		if g.Port(id).Name == portName {
			return id, nil
		}
	}
	return 0, fmt.Errorf("port reference %q: %s has no %s named %q", ref, op, dir, portName)
}
