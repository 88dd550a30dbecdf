package sensitivity

import (
	mstats "github.com/montanaflynn/stats"

	"gammafit/domain/core"
)

// Summary condenses a sensitivity table to scan-level statistics of the
// flux column.
type Summary struct {
	Bins         int     `json:"bins"`
	BestE2DNDE   float64 `json:"best_e2dnde"`
	WorstE2DNDE  float64 `json:"worst_e2dnde"`
	MedianE2DNDE float64 `json:"median_e2dnde"`
	// BestERef is the bin center where the sensitivity is best.
	BestERef float64 `json:"best_e_ref"`
}

// Summarize computes the flux-column summary of a table.
func Summarize(t *Table) (Summary, error) {
	if t == nil || len(t.Rows) == 0 {
		return Summary{}, core.NewInvalidInputError("table", "no rows to summarize")
	}

	flux := make([]float64, len(t.Rows))
	for i, r := range t.Rows {
		flux[i] = r.E2DNDE
	}

	best, err := mstats.Min(flux)
	if err != nil {
		return Summary{}, err
	}
	worst, err := mstats.Max(flux)
	if err != nil {
		return Summary{}, err
	}
	median, err := mstats.Median(flux)
	if err != nil {
		return Summary{}, err
	}

	bestERef := t.Rows[0].ERef
	for _, r := range t.Rows {
		if r.E2DNDE == best {
			bestERef = r.ERef
			break
		}
	}

	return Summary{
		Bins:         len(t.Rows),
		BestE2DNDE:   best,
		WorstE2DNDE:  worst,
		MedianE2DNDE: median,
		BestERef:     bestERef,
	}, nil
}
