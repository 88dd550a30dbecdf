package report

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"gammafit/domain/modeling"
	"gammafit/internal/sensitivity"
)

func TestFitResultMarkdown(t *testing.T) {
	res := modeling.NewFitResult("gonum-neldermead")
	res.Success = true
	res.NFev = 42
	res.TotalStat = 12.5
	res.Factors = []float64{1.5, -0.25}

	md := FitResultMarkdown(res)
	assert.Contains(t, md, res.RunID.String())
	assert.Contains(t, md, "gonum-neldermead")
	assert.Contains(t, md, "factor[1] = -0.25")
}

func TestSensitivityMarkdown(t *testing.T) {
	table := &sensitivity.Table{
		Dataset: "zenith-20",
		NSigma:  5,
		Rows: []sensitivity.Row{
			{ERef: 1, E2DNDE: 3e-12, Excess: 55, Background: 100, Criterion: sensitivity.CriterionSignificance},
			{ERef: 4, E2DNDE: 1e-12, Excess: 10, Background: 1, Criterion: sensitivity.CriterionGamma},
		},
	}

	md := SensitivityMarkdown(table)
	assert.Contains(t, md, "# Sensitivity zenith-20")
	assert.Contains(t, md, "| gamma |")
	assert.Equal(t, 2, strings.Count(md, "| gamma |")+strings.Count(md, "| significance |"))
}

func TestToHTML(t *testing.T) {
	html := ToHTML("# Title\n\n| a | b |\n|---|---|\n| 1 | 2 |\n")
	assert.Contains(t, html, "<h1")
	assert.Contains(t, html, "<table>")
}
