package estimator

import (
	"testing"

	"github.com/brimdata/flowplan/compiler/dag"
	"github.com/brimdata/flowplan/compiler/estimator/mock"
	"github.com/brimdata/flowplan/compiler/options"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type fixture struct {
	g     *dag.Graph
	store MemStore
}

func newFixture() *fixture {
	return &fixture{g: dag.New(), store: NewMemStore(nil)}
}

// source adds an input operator whose output is seeded with size.
func (f *fixture) source(name string, size float64) *dag.Operator {
	op := f.g.Add(dag.OperatorSpec{
		Name:    name,
		Kind:    dag.KindInput,
		Outputs: []dag.OutputSpec{{Name: "out"}},
	})
	f.store.Put(op.Outputs[0], size)
	return op
}

func (f *fixture) op(typ dag.Type, units ...dag.Unit) *dag.Operator {
	spec := dag.OperatorSpec{
		Name:    typ.String(),
		Kind:    dag.KindUser,
		Type:    typ,
		Outputs: []dag.OutputSpec{{Name: "out"}, {Name: dag.MissedPort}},
	}
	for _, u := range units {
		spec.Inputs = append(spec.Inputs, dag.InputSpec{Unit: u})
	}
	return f.g.Add(spec)
}

func (f *fixture) connect(t *testing.T, from *dag.Operator, to *dag.Operator, input int) {
	t.Helper()
	require.NoError(t, f.g.Connect(from.Outputs[0], to.Inputs[input]))
}

func (f *fixture) estimate(t *testing.T, opts options.Options) map[dag.OpID]*OperatorEstimate {
	t.Helper()
	estimates, err := New(opts, f.store, nil).Estimate(f.g)
	require.NoError(t, err)
	return estimates
}

func TestSum(t *testing.T) {
	assert.Equal(t, 0.0, Sum())
	assert.Equal(t, 3.0, Sum(1, 2))
	assert.True(t, IsUnknown(Sum(1, Unknown, 2)))
}

func TestBuiltinRules(t *testing.T) {
	cases := []struct {
		typ      dag.Type
		expected float64
	}{
		{dag.Checkpoint, 100},
		{dag.Logging, 100},
		{dag.Branch, 100},
		{dag.Project, 100},
		{dag.Extend, 125},
		{dag.Restructure, 125},
		{dag.Update, 200},
		{dag.Convert, 200},
		{dag.Fold, 100},
		{dag.Summarize, 100},
		{dag.Extract, Unknown},
		{dag.Split, Unknown},
		{dag.CoGroup, Unknown},
		{dag.GroupSort, Unknown},
	}
	for _, c := range cases {
		f := newFixture()
		src := f.source("src", 100)
		op := f.op(c.typ, dag.UnitRecord)
		f.connect(t, src, op, 0)
		est := f.estimate(t, options.Default())[op.ID]
		for _, id := range op.Outputs {
			if IsUnknown(c.expected) {
				assert.True(t, IsUnknown(est.Size(id)), "type %s", c.typ)
			} else {
				assert.Equal(t, c.expected, est.Size(id), "type %s", c.typ)
				assert.Equal(t, c.expected, f.store.Size(id), "type %s", c.typ)
			}
		}
		assert.Equal(t, 100.0, est.Size(op.Inputs[0]), "type %s", c.typ)
	}
}

func TestJoinTracksTransaction(t *testing.T) {
	cases := []struct {
		typ      dag.Type
		expected float64
	}{
		{dag.MasterJoin, 20},
		{dag.MasterJoinUpdate, 20},
		{dag.MasterCheck, 10},
		{dag.MasterBranch, 10},
	}
	for _, c := range cases {
		f := newFixture()
		master := f.source("master", 1000)
		tx := f.source("tx", 10)
		op := f.op(c.typ, dag.UnitGroup, dag.UnitGroup)
		f.connect(t, master, op, dag.MasterInput)
		f.connect(t, tx, op, dag.TransactionInput)
		est := f.estimate(t, options.Default())[op.ID]
		assert.Equal(t, c.expected, est.Size(op.Outputs[0]), "type %s", c.typ)
		assert.Equal(t, 1000.0, f.store.Size(op.Inputs[dag.MasterInput]))
	}
}

func TestJoinRequiresTransaction(t *testing.T) {
	f := newFixture()
	f.op(dag.MasterJoin, dag.UnitGroup)
	_, err := New(options.Default(), f.store, nil).Estimate(f.g)
	require.Error(t, err)
}

func TestUnknownIsContagious(t *testing.T) {
	f := newFixture()
	known := f.source("known", 10)
	unknown := f.g.Add(dag.OperatorSpec{
		Name:    "unknown",
		Kind:    dag.KindInput,
		Outputs: []dag.OutputSpec{{Name: "out"}},
	})
	log := f.op(dag.Logging, dag.UnitRecord)
	f.connect(t, known, log, 0)
	f.connect(t, unknown, log, 0)
	conv := f.op(dag.Convert, dag.UnitRecord)
	f.connect(t, log, conv, 0)
	estimates := f.estimate(t, options.Default())
	assert.True(t, IsUnknown(estimates[log.ID].Size(log.Inputs[0])))
	assert.True(t, IsUnknown(estimates[log.ID].Size(log.Outputs[0])))
	assert.True(t, IsUnknown(estimates[conv.ID].Size(conv.Outputs[0])))
}

func TestIdentitySumsInputs(t *testing.T) {
	f := newFixture()
	a, b := f.source("a", 10), f.source("b", 32)
	cp := f.op(dag.Checkpoint, dag.UnitRecord)
	f.connect(t, a, cp, 0)
	f.connect(t, b, cp, 0)
	est := f.estimate(t, options.Default())[cp.ID]
	assert.Equal(t, 42.0, est.Size(cp.Outputs[0]))
}

func TestDrivingInputSkipsWhole(t *testing.T) {
	f := newFixture()
	side, main := f.source("side", 1000), f.source("main", 10)
	op := f.op(dag.Update, dag.UnitWhole, dag.UnitRecord)
	f.connect(t, side, op, 0)
	f.connect(t, main, op, 1)
	est := f.estimate(t, options.Default())[op.ID]
	assert.Equal(t, 20.0, est.Size(op.Outputs[0]))
}

func TestUnconnectedInputIsEmpty(t *testing.T) {
	f := newFixture()
	op := f.op(dag.Branch, dag.UnitRecord)
	est := f.estimate(t, options.Default())[op.ID]
	assert.Equal(t, 0.0, est.Size(op.Inputs[0]))
	assert.Equal(t, 0.0, est.Size(op.Outputs[0]))
}

func TestOverrides(t *testing.T) {
	opts := options.Default()
	opts.Scales = map[dag.Type]float64{
		dag.Extract:    3,
		dag.Branch:     Unknown,
		dag.MasterJoin: 0.5,
		dag.Logging:    4,
	}
	f := newFixture()
	src := f.source("src", 10)
	extract := f.op(dag.Extract, dag.UnitRecord)
	branch := f.op(dag.Branch, dag.UnitRecord)
	log := f.op(dag.Logging, dag.UnitRecord)
	join := f.op(dag.MasterJoin, dag.UnitGroup, dag.UnitGroup)
	f.connect(t, src, extract, 0)
	f.connect(t, src, branch, 0)
	f.connect(t, src, log, 0)
	f.connect(t, src, join, dag.TransactionInput)
	estimates := f.estimate(t, opts)
	assert.Equal(t, 30.0, estimates[extract.ID].Size(extract.Outputs[0]))
	assert.True(t, IsUnknown(estimates[branch.ID].Size(branch.Outputs[0])))
	assert.Equal(t, 40.0, estimates[log.ID].Size(log.Outputs[0]))
	assert.Equal(t, 5.0, estimates[join.ID].Size(join.Outputs[0]))
}

func TestEstimateWritesStore(t *testing.T) {
	g := dag.New()
	src := g.Add(dag.OperatorSpec{
		Name:    "src",
		Kind:    dag.KindInput,
		Outputs: []dag.OutputSpec{{Name: "out"}},
	})
	cp := g.Add(dag.OperatorSpec{
		Name:    "cp",
		Kind:    dag.KindCore,
		Type:    dag.Checkpoint,
		Inputs:  []dag.InputSpec{{Name: "in"}},
		Outputs: []dag.OutputSpec{{Name: "out"}},
	})
	require.NoError(t, g.Connect(src.Outputs[0], cp.Inputs[0]))

	ctrl := gomock.NewController(t)
	store := mock.NewMockStore(ctrl)
	gomock.InOrder(
		store.EXPECT().Size(src.Outputs[0]).Return(64.0).Times(2),
		store.EXPECT().Put(cp.Inputs[0], 64.0),
		store.EXPECT().Put(cp.Outputs[0], 64.0),
	)
	estimates, err := New(options.Default(), store, nil).Estimate(g)
	require.NoError(t, err)
	assert.Equal(t, 64.0, estimates[src.ID].Size(src.Outputs[0]))
	assert.Equal(t, 64.0, estimates[cp.ID].Size(cp.Outputs[0]))
}
