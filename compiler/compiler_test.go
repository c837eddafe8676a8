package compiler

import (
	"context"
	"strings"
	"testing"

	"github.com/brimdata/flowplan/compiler/dag"
	"github.com/brimdata/flowplan/compiler/estimator"
	"github.com/brimdata/flowplan/compiler/options"
	"github.com/brimdata/flowplan/compiler/plan"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const joinFlow = `
name: orders
operators:
  - name: items
    kind: input
    outputs: [{name: out, size: 1024}]
  - name: orders
    kind: input
    outputs: [{name: out, size: 4096}]
  - name: join
    type: MasterJoin
    inputs:
      - {name: master, unit: group, keys: [id]}
      - {name: tx, unit: group, keys: [item_id]}
    outputs: [joined, missed]
  - name: log
    type: Logging
    level: debug
    inputs: [{name: in}]
    outputs: [out]
  - name: result
    kind: output
    inputs: [{name: in}]
connections:
  - {from: items.out, to: join.master}
  - {from: orders.out, to: join.tx}
  - {from: join.joined, to: log.in}
  - {from: log.out, to: result.in}
`

const cycleFlow = `
name: loop
operators:
  - name: a
    type: Convert
    inputs: [{name: in}]
    outputs: [out]
  - name: b
    type: Convert
    inputs: [{name: in}]
    outputs: [out]
connections:
  - {from: a.out, to: b.in}
  - {from: b.out, to: a.in}
roots: [a]
`

func decode(t *testing.T, s string) *dag.Jobflow {
	t.Helper()
	flow, err := dag.Decode(strings.NewReader(s))
	require.NoError(t, err)
	return flow
}

func TestCompileJoinFlow(t *testing.T) {
	flow := decode(t, joinFlow)
	p, err := Compile(flow, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "orders", p.Name)
	assert.True(t, p.Rewritten)
	assert.Equal(t, 4, p.Graph.Len())

	join := p.Graph.Operator(2)
	class := p.Classes[join.ID]
	require.NotNil(t, class)
	assert.Equal(t, plan.InputRecord, class.InputType)
	master, tx := join.Inputs[dag.MasterInput], join.Inputs[dag.TransactionInput]
	assert.Equal(t, plan.NewAttributes(plan.JoinTable), class.Attributes(master))
	assert.Equal(t, plan.NewAttributes(plan.Primary), class.Attributes(tx))
	assert.Len(t, p.Classes, 1)

	est := p.Estimates[join.ID]
	require.NotNil(t, est)
	assert.Equal(t, 1024.0, est.Size(master))
	assert.Equal(t, 4096.0, est.Size(tx))
}

func TestCompileDropsRemovedOperators(t *testing.T) {
	flow := decode(t, joinFlow)
	log := flow.Graph.Operator(3)
	p, err := Compile(flow, nil, nil)
	require.NoError(t, err)
	assert.False(t, p.Graph.Contains(log))
	assert.NotContains(t, p.Estimates, log.ID)
	assert.NotContains(t, p.Classes, log.ID)

	result := p.Graph.Operator(4)
	joined := p.Graph.Operator(2).Outputs[0]
	assert.Equal(t, []dag.PortID{joined}, p.Graph.Opposites(result.Inputs[0]))
	// Sizes flow through the spliced edge after re-estimation.
	assert.Equal(t, p.Sizes.Size(joined), p.Sizes.Size(result.Inputs[0]))
}

func TestCompileBroadcastLimit(t *testing.T) {
	props := map[string]string{options.KeyBroadcastLimit: "1023"}
	p, err := Compile(decode(t, joinFlow), props, nil)
	require.NoError(t, err)
	class := p.Classes[2]
	assert.Equal(t, plan.InputGroup, class.InputType)
	assert.Len(t, class.PrimaryInputs(), 2)
	assert.Empty(t, class.JoinTables())
}

func TestCompileKeepsDebugLogging(t *testing.T) {
	props := map[string]string{options.KeyLoggingLevel: "DEBUG"}
	p, err := Compile(decode(t, joinFlow), props, nil)
	require.NoError(t, err)
	assert.False(t, p.Rewritten)
	assert.Equal(t, 5, p.Graph.Len())
	assert.Contains(t, p.Classes, dag.OpID(3))
}

func TestCompileCycle(t *testing.T) {
	_, err := Compile(decode(t, cycleFlow), nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "internal error")
}

func TestCompileUnseededInputIsUnknown(t *testing.T) {
	flow := decode(t, joinFlow)
	flow.Sizes = nil
	p, err := Compile(flow, nil, nil)
	require.NoError(t, err)
	join := p.Graph.Operator(2)
	assert.True(t, estimator.IsUnknown(p.Estimates[join.ID].Size(join.Inputs[dag.MasterInput])))
	assert.Equal(t, plan.InputGroup, p.Classes[join.ID].InputType)
}

func TestCompileAll(t *testing.T) {
	small := decode(t, joinFlow)
	large := decode(t, strings.Replace(joinFlow, "size: 1024", "size: 1e9", 1))
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)
	c := New(options.Default(), nil, metrics)
	plans, err := c.CompileAll(context.Background(), []*dag.Jobflow{small, large})
	require.NoError(t, err)
	require.Len(t, plans, 2)
	assert.Equal(t, plan.InputRecord, plans[0].Classes[2].InputType)
	assert.Equal(t, plan.InputGroup, plans[1].Classes[2].InputType)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Joins.WithLabelValues("broadcast")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Joins.WithLabelValues("shuffle")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Classified.WithLabelValues("RECORD")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Classified.WithLabelValues("GROUP")))
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.Pruned))
}

func TestCompileAllError(t *testing.T) {
	c := New(options.Default(), nil, nil)
	_, err := c.CompileAll(context.Background(), []*dag.Jobflow{
		decode(t, joinFlow),
		decode(t, cycleFlow),
	})
	require.Error(t, err)
}

func TestCompileAllCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(options.Default(), nil, nil).CompileAll(ctx, []*dag.Jobflow{decode(t, joinFlow)})
	assert.ErrorIs(t, err, context.Canceled)
}
