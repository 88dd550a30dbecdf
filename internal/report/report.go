// Package report renders analysis results as markdown and HTML summaries
// for the API and for offline inspection.
package report

import (
	"fmt"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"gammafit/domain/modeling"
	"gammafit/internal/sensitivity"
)

// FitResultMarkdown renders one fit record as a markdown summary.
func FitResultMarkdown(result *modeling.FitResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Fit run %s\n\n", result.RunID)
	fmt.Fprintf(&b, "- **Backend**: %s\n", result.Backend)
	fmt.Fprintf(&b, "- **Converged**: %t\n", result.Success)
	if result.Message != "" {
		fmt.Fprintf(&b, "- **Status**: %s\n", result.Message)
	}
	fmt.Fprintf(&b, "- **Evaluations**: %d\n", result.NFev)
	fmt.Fprintf(&b, "- **Total statistic**: %.6g\n", result.TotalStat)
	if len(result.Factors) > 0 {
		b.WriteString("\n## Best-fit factors\n\n")
		for i, f := range result.Factors {
			fmt.Fprintf(&b, "- factor[%d] = %.6g\n", i, f)
		}
	}
	return b.String()
}

// SensitivityMarkdown renders a sensitivity table with its summary as
// markdown, one row per energy bin.
func SensitivityMarkdown(table *sensitivity.Table) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Sensitivity %s\n\n", table.Dataset)
	fmt.Fprintf(&b, "Estimate `%s` at %.3g sigma over %d bins.\n\n", table.EstimateID, table.NSigma, len(table.Rows))

	if summary, err := sensitivity.Summarize(table); err == nil {
		fmt.Fprintf(&b, "Best e2dnde %.3g TeV/cm2/s at %.3g TeV, median %.3g.\n\n",
			summary.BestE2DNDE, summary.BestERef, summary.MedianE2DNDE)
	}

	b.WriteString("| e_ref [TeV] | e2dnde [TeV/cm2/s] | excess | background | criterion |\n")
	b.WriteString("|---|---|---|---|---|\n")
	for _, r := range table.Rows {
		fmt.Fprintf(&b, "| %.3g | %.3g | %.3g | %.3g | %s |\n",
			r.ERef, r.E2DNDE, r.Excess, r.Background, r.Criterion)
	}
	return b.String()
}

// ToHTML renders markdown to an HTML fragment with table support.
func ToHTML(md string) string {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.Tables)
	doc := p.Parse([]byte(md))
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	return string(markdown.Render(doc, renderer))
}
