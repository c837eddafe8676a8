package compiler

import (
	"github.com/brimdata/flowplan/compiler/plan"
	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	Classified *prometheus.CounterVec
	Joins      *prometheus.CounterVec
	Pruned     prometheus.Counter
}

// NewMetrics creates the compiler metrics and registers them with reg
// unless reg is nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Classified: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "flowplan_operators_classified_total",
			Help: "Number of operators classified, by input type.",
		}, []string{"input_type"}),
		Joins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "flowplan_master_joins_total",
			Help: "Number of master joins planned, by strategy.",
		}, []string{"strategy"}),
		Pruned: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "flowplan_operators_pruned_total",
			Help: "Number of operators removed by graph rewrites.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.Classified, m.Joins, m.Pruned)
	}
	return m
}

func (m *Metrics) observe(p *Plan, pruned int) {
	for _, class := range p.Classes {
		m.Classified.WithLabelValues(class.InputType.String()).Inc()
		if class.Operator.Type.IsMasterJoin() {
			strategy := "shuffle"
			if class.InputType == plan.InputRecord {
				strategy = "broadcast"
			}
			m.Joins.WithLabelValues(strategy).Inc()
		}
	}
	m.Pruned.Add(float64(pruned))
}
