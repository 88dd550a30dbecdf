package modeling

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestParameter_FactorRepresentation(t *testing.T) {
	p := NewParameter("amplitude", 3e-12)
	p.Scale = 1e-12

	assert.InDelta(t, 3, p.Factor(), 1e-12)

	p.SetFactor(5)
	assert.InDelta(t, 5e-12, p.Value, 1e-24)
}

func TestParameter_FactorBounds(t *testing.T) {
	p := NewParameter("index", 2)
	p.Scale = 2
	p.Min = 1
	p.Max = 5

	assert.InDelta(t, 0.5, p.FactorMin(), 1e-12)
	assert.InDelta(t, 2.5, p.FactorMax(), 1e-12)
}

func TestParameter_UnboundedByDefault(t *testing.T) {
	p := NewParameter("norm", 1)
	assert.True(t, math.IsNaN(p.Min))
	assert.True(t, math.IsNaN(p.Max))
	assert.False(t, p.Frozen)
}

func TestParameter_CopyStateFrom(t *testing.T) {
	src := NewParameter("reference", 4)
	src.Frozen = true
	src.Err = 0.3

	dst := NewParameter("target", 1)
	dst.CopyStateFrom(src)

	assert.Equal(t, 4.0, dst.Value)
	assert.True(t, dst.Frozen)
	assert.Equal(t, 0.3, dst.Err)
	assert.Equal(t, "target", dst.Name, "identity is kept")

	// Value copy, not aliasing.
	src.Value = 9
	assert.Equal(t, 4.0, dst.Value)
}

func TestParameters_FreeParameters(t *testing.T) {
	a := NewParameter("a", 1)
	b := NewParameter("b", 2)
	b.Frozen = true
	c := NewParameter("c", 3)

	ps := NewParameters(a, b, c)
	free := ps.FreeParameters()
	require.Len(t, free, 2)
	assert.Same(t, a, free[0])
	assert.Same(t, c, free[1])

	assert.Equal(t, []float64{1, 3}, ps.FreeFactors())
}

func TestParameters_SetFreeFactors(t *testing.T) {
	a := NewParameter("a", 1)
	b := NewParameter("b", 2)
	b.Frozen = true

	ps := NewParameters(a, b)
	require.NoError(t, ps.SetFreeFactors([]float64{7}))
	assert.Equal(t, 7.0, a.Value)
	assert.Equal(t, 2.0, b.Value, "frozen parameter must not move")

	assert.Error(t, ps.SetFreeFactors([]float64{1, 2}))
}

func TestParameters_CovarianceShape(t *testing.T) {
	ps := NewParameters(NewParameter("a", 1), NewParameter("b", 2))

	r, c := ps.Covariance().Dims()
	assert.Equal(t, 2, r)
	assert.Equal(t, 2, c)

	require.NoError(t, ps.SetCovariance(mat.NewDense(2, 2, []float64{1, 0, 0, 4})))
	assert.Equal(t, 4.0, ps.Covariance().At(1, 1))

	assert.Error(t, ps.SetCovariance(mat.NewDense(3, 3, nil)))
}

func TestParameters_CheckpointRestore(t *testing.T) {
	a := NewParameter("a", 1)
	b := NewParameter("b", 2)
	ps := NewParameters(a, b)

	snap := ps.Checkpoint()

	a.Value = 100
	a.Frozen = true
	b.Err = 9

	require.NoError(t, ps.Restore(snap))
	assert.Equal(t, 1.0, a.Value)
	assert.False(t, a.Frozen)
	assert.Equal(t, 0.0, b.Err)
}

func TestParameters_CheckpointRestoresCovariance(t *testing.T) {
	a := NewParameter("a", 1)
	b := NewParameter("b", 2)
	ps := NewParameters(a, b)
	require.NoError(t, ps.SetCovariance(mat.NewDense(2, 2, []float64{1, 0, 0, 1})))

	snap := ps.Checkpoint()

	require.NoError(t, ps.SetCovariance(mat.NewDense(2, 2, []float64{9, 0, 0, 9})))
	require.NoError(t, ps.Restore(snap))
	assert.Equal(t, 1.0, ps.Covariance().At(0, 0))

	// Mutating the live matrix after the checkpoint must not leak into
	// the snapshot.
	ps.Covariance().Set(0, 0, 5)
	require.NoError(t, ps.Restore(snap))
	assert.Equal(t, 1.0, ps.Covariance().At(0, 0))
}

func TestParameters_RestoreIsRepeatable(t *testing.T) {
	a := NewParameter("a", 1)
	ps := NewParameters(a)
	snap := ps.Checkpoint()

	for i := 0; i < 3; i++ {
		a.Value = float64(10 * (i + 1))
		require.NoError(t, ps.Restore(snap))
		assert.Equal(t, 1.0, a.Value)
	}
}

func TestParameters_ByNameAndIndex(t *testing.T) {
	a := NewParameter("a", 1)
	b := NewParameter("b", 2)
	ps := NewParameters(a, b)

	assert.Same(t, b, ps.ByName("b"))
	assert.Nil(t, ps.ByName("missing"))
	assert.Equal(t, 1, ps.Index(b))
	assert.Equal(t, -1, ps.Index(NewParameter("other", 0)))
}

func TestLikelihood_EvaluatesAndClamps(t *testing.T) {
	x := NewParameter("x", 0)
	x.Min = -1
	x.Max = 1
	ps := NewParameters(x)

	lik := NewLikelihood(ps, func() float64 {
		return (x.Value - 2) * (x.Value - 2)
	}, false)

	// In-bounds point is written through.
	got := lik.Fcn([]float64{0.5})
	assert.InDelta(t, 2.25, got, 1e-12)
	assert.Equal(t, 0.5, x.Value)

	// Out-of-bounds trial is clamped to the box edge.
	got = lik.Fcn([]float64{3})
	assert.InDelta(t, 1, got, 1e-12)
	assert.Equal(t, 1.0, x.Value)

	assert.Equal(t, 2, lik.NFev())
}

func TestLikelihood_Trace(t *testing.T) {
	x := NewParameter("x", 0)
	ps := NewParameters(x)

	lik := NewLikelihood(ps, func() float64 { return x.Value * x.Value }, true)
	lik.Fcn([]float64{2})
	lik.Fcn([]float64{3})

	trace := lik.Trace()
	require.Len(t, trace, 2)
	assert.Equal(t, 4.0, trace[0].TotalStat)
	assert.Equal(t, []float64{3}, trace[1].Factors)
}
