// Package api exposes the inference engine over a JSON HTTP API.
package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"gammafit/domain/core"
	"gammafit/domain/stats"
	apperrors "gammafit/internal/errors"
	"gammafit/internal/interpolation"
	"gammafit/internal/logging"
	"gammafit/internal/profile"
	"gammafit/internal/report"
	"gammafit/internal/sensitivity"
	"gammafit/ports"
)

// Handler bundles the API dependencies. Repositories are optional; without
// a database the endpoints still compute and return results.
type Handler struct {
	logger          *logging.Logger
	estimator       *sensitivity.Estimator
	batch           *sensitivity.BatchEstimator
	sensitivityRepo ports.SensitivityRepository
}

// NewHandler creates a new API handler
func NewHandler(logger *logging.Logger, estimator *sensitivity.Estimator, batch *sensitivity.BatchEstimator, sensitivityRepo ports.SensitivityRepository) *Handler {
	return &Handler{
		logger:          logger,
		estimator:       estimator,
		batch:           batch,
		sensitivityRepo: sensitivityRepo,
	}
}

// SignificanceRequest selects a counts statistic and its inputs. For
// "cash" NBkg is the known background level; for "wstat" NOff and Alpha
// describe the off-region measurement and MuSig an optional known signal.
type SignificanceRequest struct {
	Statistic string    `json:"statistic" binding:"required,oneof=cash wstat"`
	NOn       []float64 `json:"n_on" binding:"required,min=1"`
	NBkg      []float64 `json:"n_bkg"`
	NOff      []float64 `json:"n_off"`
	Alpha     []float64 `json:"alpha"`
	MuSig     []float64 `json:"mu_sig"`
	// NSigmaUL sets the upper limit confidence; 0 skips limits.
	NSigmaUL float64 `json:"n_sigma_ul"`
}

// SignificanceResponse carries per-element results.
type SignificanceResponse struct {
	NSig       []float64 `json:"n_sig"`
	TS         []float64 `json:"ts"`
	SqrtTS     []float64 `json:"sqrt_ts"`
	PValue     []float64 `json:"p_value"`
	ErrN       []float64 `json:"errn,omitempty"`
	ErrP       []float64 `json:"errp,omitempty"`
	UpperLimit []float64 `json:"upper_limit,omitempty"`
}

// Significance computes significance, intervals and limits for counts.
func (h *Handler) Significance(c *gin.Context) {
	var req SignificanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var (
		stat interface {
			NSig() []float64
			TS() []float64
			SqrtTS() []float64
			PValues() []float64
			ComputeErrN(float64) ([]float64, error)
			ComputeErrP(float64) ([]float64, error)
			ComputeUpperLimit(float64) ([]float64, error)
		}
		err error
	)
	switch req.Statistic {
	case "cash":
		stat, err = stats.NewCashCountsStatistic(req.NOn, req.NBkg)
	case "wstat":
		stat, err = stats.NewWStatCountsStatistic(req.NOn, req.NOff, req.Alpha, req.MuSig)
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp := SignificanceResponse{
		NSig:   stat.NSig(),
		TS:     stat.TS(),
		SqrtTS: stat.SqrtTS(),
		PValue: stat.PValues(),
	}
	if req.NSigmaUL > 0 {
		if resp.ErrN, err = stat.ComputeErrN(1); err != nil {
			h.renderError(c, err)
			return
		}
		if resp.ErrP, err = stat.ComputeErrP(1); err != nil {
			h.renderError(c, err)
			return
		}
		if resp.UpperLimit, err = stat.ComputeUpperLimit(req.NSigmaUL); err != nil {
			h.renderError(c, err)
			return
		}
	}
	c.JSON(http.StatusOK, resp)
}

// UpperLimitRequest is a scanned likelihood profile.
type UpperLimitRequest struct {
	ValueScan []float64 `json:"value_scan" binding:"required,min=2"`
	StatScan  []float64 `json:"stat_scan" binding:"required,min=2"`
	// Scale is the interpolation scale: lin, log or sqrt (default sqrt).
	Scale string `json:"scale"`
	// DeltaTS overrides the statistic increase defining the limit.
	DeltaTS float64 `json:"delta_ts"`
}

// UpperLimit inverts a profile scan into a best fit and an upper limit.
func (h *Handler) UpperLimit(c *gin.Context) {
	var req UpperLimitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	opts := profile.DefaultOptions()
	if req.Scale != "" {
		opts.InterpScale = interpolation.ScaleName(req.Scale)
	}
	if req.DeltaTS > 0 {
		opts.DeltaTS = req.DeltaTS
	}

	res, err := profile.StatUpperLimit(req.ValueScan, req.StatScan, opts)
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"best_fit":      res.BestFit,
		"stat_best_fit": res.StatBestFit,
		"upper_limit":   res.UpperLimit,
	})
}

// SensitivityRequest is a batch of datasets to estimate.
type SensitivityRequest struct {
	Datasets []sensitivity.Dataset `json:"datasets" binding:"required,min=1"`
	// Persist stores the tables when a repository is configured.
	Persist bool `json:"persist"`
}

// Sensitivity runs batch sensitivity estimation.
func (h *Handler) Sensitivity(c *gin.Context) {
	var req SensitivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tables, err := h.batch.Run(c.Request.Context(), req.Datasets)
	if err != nil {
		h.renderError(c, err)
		return
	}

	type entry struct {
		Table   *sensitivity.Table  `json:"table"`
		Summary sensitivity.Summary `json:"summary"`
	}
	out := make([]entry, len(tables))
	for i, table := range tables {
		summary, err := sensitivity.Summarize(table)
		if err != nil {
			h.renderError(c, err)
			return
		}
		out[i] = entry{Table: table, Summary: summary}

		if req.Persist && h.sensitivityRepo != nil {
			if err := h.sensitivityRepo.SaveTable(c.Request.Context(), table); err != nil {
				h.logger.Error("persist sensitivity table %s: %v", table.EstimateID, err)
				h.renderError(c, err)
				return
			}
		}
	}
	c.JSON(http.StatusOK, gin.H{"results": out})
}

// SensitivityReport renders a stored table as an HTML report.
func (h *Handler) SensitivityReport(c *gin.Context) {
	if h.sensitivityRepo == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "persistence is not configured"})
		return
	}
	id := core.EstimateID(c.Param("id"))
	table, err := h.sensitivityRepo.GetTable(c.Request.Context(), id)
	if err != nil {
		h.renderError(c, err)
		return
	}
	html := report.ToHTML(report.SensitivityMarkdown(table))
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
}

// Health reports service liveness.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// renderError maps domain and app errors onto HTTP status codes.
func (h *Handler) renderError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case core.IsInputError(err):
		status = http.StatusBadRequest
	case core.IsRuntimeError(err):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, core.ErrNotImplemented):
		status = http.StatusNotImplemented
	case apperrors.GetCode(err) == apperrors.CodeNotFound:
		status = http.StatusNotFound
	case apperrors.GetCode(err) == apperrors.CodeInvalidInput:
		status = http.StatusBadRequest
	}
	if status == http.StatusInternalServerError {
		h.logger.Error("request failed: %v", err)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
