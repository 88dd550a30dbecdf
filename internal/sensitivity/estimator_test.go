package sensitivity

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEstimateMinExcess_SignificanceLimited(t *testing.T) {
	e := NewEstimator()

	excess, criteria, err := e.EstimateMinExcess([]float64{100}, []float64{0.2})
	require.NoError(t, err)
	require.Len(t, excess, 1)

	assert.Equal(t, CriterionSignificance, criteria[0])
	// About n_sigma * sqrt(bkg * (1 + alpha)) for a well-populated bin.
	approx := 5 * math.Sqrt(100*(1+0.2))
	assert.InDelta(t, approx, excess[0], 0.3*approx)
	assert.Greater(t, excess[0], e.GammaMin)
}

func TestEstimateMinExcess_GammaLimited(t *testing.T) {
	e := NewEstimator()

	// A nearly background-free bin with a well-constrained background
	// needs only a handful of counts for 5 sigma; the gamma floor wins.
	excess, criteria, err := e.EstimateMinExcess([]float64{0.5}, []float64{0.01})
	require.NoError(t, err)
	assert.Equal(t, CriterionGamma, criteria[0])
	assert.Equal(t, e.GammaMin, excess[0])
}

func TestEstimateMinExcess_BkgSystLimited(t *testing.T) {
	e := NewEstimator()

	bkg := 1e5
	excess, criteria, err := e.EstimateMinExcess([]float64{bkg}, []float64{0.2})
	require.NoError(t, err)
	assert.Equal(t, CriterionBkg, criteria[0])
	assert.Equal(t, e.BkgSystFraction*bkg, excess[0])
}

func TestEstimateMinExcess_MonotonicInBackground(t *testing.T) {
	e := NewEstimator()

	excess, _, err := e.EstimateMinExcess(
		[]float64{50, 500, 5000},
		[]float64{0.2, 0.2, 0.2},
	)
	require.NoError(t, err)
	assert.Less(t, excess[0], excess[1])
	assert.Less(t, excess[1], excess[2])
}

func TestEstimateMinExcess_Validation(t *testing.T) {
	e := NewEstimator()

	_, _, err := e.EstimateMinExcess([]float64{1, 2}, []float64{0.2})
	assert.Error(t, err)

	_, _, err = e.EstimateMinExcess([]float64{1}, []float64{0})
	assert.Error(t, err)
}

func TestRun_FluxScaling(t *testing.T) {
	e := NewEstimator()
	ds := Dataset{
		Name: "crab-test",
		Bins: []EnergyBin{{
			EMin:        1,
			EMax:        10,
			Background:  100,
			Alpha:       0.2,
			NPredSignal: 250,
			RefE2DNDE:   1e-12,
		}},
	}

	table, err := e.Run(ds)
	require.NoError(t, err)
	require.Len(t, table.Rows, 1)

	row := table.Rows[0]
	assert.InDelta(t, math.Sqrt(10), row.ERef, 1e-9)
	assert.InDelta(t, 1e-12*row.Excess/250, row.E2DNDE, 1e-24)
	assert.Equal(t, 100.0, row.Background)
	assert.Equal(t, "crab-test", table.Dataset)
	assert.Equal(t, 5.0, table.NSigma)
	assert.False(t, table.EstimateID.String() == "")
}

func TestRun_Validation(t *testing.T) {
	e := NewEstimator()

	_, err := e.Run(Dataset{Name: "empty"})
	assert.Error(t, err)

	_, err = e.Run(Dataset{Name: "bad-npred", Bins: []EnergyBin{{
		EMin: 1, EMax: 2, Background: 10, Alpha: 0.2, NPredSignal: 0, RefE2DNDE: 1e-12,
	}}})
	assert.Error(t, err)
}

func TestSummarize(t *testing.T) {
	table := &Table{Rows: []Row{
		{ERef: 1, E2DNDE: 3e-12},
		{ERef: 3, E2DNDE: 1e-12},
		{ERef: 10, E2DNDE: 5e-12},
	}}

	s, err := Summarize(table)
	require.NoError(t, err)
	assert.Equal(t, 3, s.Bins)
	assert.Equal(t, 1e-12, s.BestE2DNDE)
	assert.Equal(t, 5e-12, s.WorstE2DNDE)
	assert.Equal(t, 3e-12, s.MedianE2DNDE)
	assert.Equal(t, 3.0, s.BestERef)
}

func TestSummarize_Empty(t *testing.T) {
	_, err := Summarize(&Table{})
	assert.Error(t, err)
}

func testDataset(name string, bins int) Dataset {
	ds := Dataset{Name: name}
	for i := 0; i < bins; i++ {
		lo := math.Pow(10, float64(i)*0.2)
		ds.Bins = append(ds.Bins, EnergyBin{
			EMin:        lo,
			EMax:        lo * math.Pow(10, 0.2),
			Background:  100 / lo,
			Alpha:       0.2,
			NPredSignal: 200 / lo,
			RefE2DNDE:   1e-12,
		})
	}
	return ds
}

func TestBatchEstimator_OrderPreserved(t *testing.T) {
	batch := NewBatchEstimator(NewEstimator(), 2)

	datasets := []Dataset{
		testDataset("zenith-20", 4),
		testDataset("zenith-40", 4),
		testDataset("zenith-60", 4),
	}
	tables, err := batch.Run(context.Background(), datasets)
	require.NoError(t, err)
	require.Len(t, tables, 3)
	for i, table := range tables {
		require.NotNil(t, table)
		assert.Equal(t, datasets[i].Name, table.Dataset)
		assert.Len(t, table.Rows, 4)
	}
}

func TestBatchEstimator_PropagatesErrors(t *testing.T) {
	batch := NewBatchEstimator(NewEstimator(), 4)

	tables, err := batch.Run(context.Background(), []Dataset{
		testDataset("good", 2),
		{Name: "empty"},
	})
	require.Error(t, err)
	assert.NotNil(t, tables[0])
	assert.Nil(t, tables[1])
}

func TestBatchEstimator_CancelledContext(t *testing.T) {
	batch := NewBatchEstimator(NewEstimator(), 1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := batch.Run(ctx, []Dataset{testDataset("a", 1)})
	assert.Error(t, err)
}
