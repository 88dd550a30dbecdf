package excel

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"gammafit/internal/sensitivity"
)

func sampleTable(name string) *sensitivity.Table {
	return &sensitivity.Table{
		Dataset: name,
		NSigma:  5,
		Rows: []sensitivity.Row{
			{ERef: 1, EMin: 0.5, EMax: 2, E2DNDE: 3e-12, Excess: 55, Background: 100, Criterion: sensitivity.CriterionSignificance},
			{ERef: 4, EMin: 2, EMax: 8, E2DNDE: 1e-12, Excess: 10, Background: 1, Criterion: sensitivity.CriterionGamma},
		},
	}
}

func TestSensitivityWriter_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sensitivity.xlsx")
	w := NewSensitivityWriter()

	err := w.Write(path, []*sensitivity.Table{sampleTable("zenith-20"), sampleTable("zenith-40")})
	require.NoError(t, err)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	sheets := f.GetSheetList()
	require.Len(t, sheets, 2)

	rows, err := f.GetRows(sheets[0])
	require.NoError(t, err)
	require.Len(t, rows, 3, "header plus two bins")
	assert.Equal(t, "e_ref [TeV]", rows[0][0])
	assert.Equal(t, "gamma", rows[2][6])
}

func TestSensitivityWriter_Empty(t *testing.T) {
	w := NewSensitivityWriter()
	err := w.Write(filepath.Join(t.TempDir(), "empty.xlsx"), nil)
	assert.Error(t, err)
}
