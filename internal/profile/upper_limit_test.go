package profile

import (
	"errors"
	"math"
	"testing"

	"gammafit/domain/core"
)

func parabolaScan(center float64, n int) (values, stats []float64) {
	values = make([]float64, n)
	stats = make([]float64, n)
	for i := 0; i < n; i++ {
		x := -2 + 8*float64(i)/float64(n-1)
		values[i] = x
		stats[i] = (x - center) * (x - center)
	}
	return values, stats
}

func TestStatUpperLimit_Parabola(t *testing.T) {
	// stat(x) = (x-1)^2, deltaTS = 4: minimum at 1, upper limit at 3.
	values, stats := parabolaScan(1, 50)

	res, err := StatUpperLimit(values, stats, DefaultOptions())
	if err != nil {
		t.Fatalf("StatUpperLimit: %v", err)
	}
	if math.Abs(res.BestFit-1) > 1e-3 {
		t.Errorf("best fit = %v, want 1", res.BestFit)
	}
	if math.Abs(res.UpperLimit-3) > 1e-2 {
		t.Errorf("upper limit = %v, want 3", res.UpperLimit)
	}
}

func TestStatUpperLimit_FlatProfile(t *testing.T) {
	values := []float64{0, 1, 2, 3}
	stats := []float64{5, 5, 5, 5}

	_, err := StatUpperLimit(values, stats, DefaultOptions())
	if !errors.Is(err, core.ErrFlatProfile) {
		t.Fatalf("expected ErrFlatProfile, got %v", err)
	}
}

func TestStatUpperLimit_AllNonFinite(t *testing.T) {
	nan := math.NaN()
	values := []float64{0, 1, 2, 3}
	stats := []float64{nan, nan, nan, nan}

	_, err := StatUpperLimit(values, stats, DefaultOptions())
	if err == nil || !core.IsInputError(err) {
		t.Fatalf("expected fatal input error, got %v", err)
	}
}

func TestStatUpperLimit_MasksNonFinite(t *testing.T) {
	values, stats := parabolaScan(1, 50)
	stats[3] = math.Inf(1)
	stats[40] = math.NaN()

	res, err := StatUpperLimit(values, stats, DefaultOptions())
	if err != nil {
		t.Fatalf("StatUpperLimit with masked entries: %v", err)
	}
	if math.Abs(res.UpperLimit-3) > 0.05 {
		t.Errorf("upper limit = %v, want about 3", res.UpperLimit)
	}
}

func TestStatUpperLimit_NoRootInRange(t *testing.T) {
	// Profile rises by less than deltaTS over the scan: no valid root.
	values, stats := parabolaScan(3.9, 50)
	opts := DefaultOptions()
	opts.DeltaTS = 25

	_, err := StatUpperLimit(values, stats, opts)
	if !errors.Is(err, core.ErrUpperLimitNotFound) {
		t.Fatalf("expected ErrUpperLimitNotFound, got %v", err)
	}
}

func TestMinimizeScalarBounded(t *testing.T) {
	f := func(x float64) float64 { return (x - 0.7) * (x - 0.7) }
	x, fx, ok := minimizeScalarBounded(f, -5, 5, 1e-8, 500)
	if !ok {
		t.Fatal("minimization failed")
	}
	if math.Abs(x-0.7) > 1e-4 {
		t.Errorf("x = %v, want 0.7", x)
	}
	if fx > 1e-6 {
		t.Errorf("fx = %v, want about 0", fx)
	}
}
