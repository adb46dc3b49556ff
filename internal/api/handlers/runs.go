package handlers

import (
	"context"
	"net/http"
	"sync"

	"fes-bids/internal/api/middleware"
	"fes-bids/internal/api/models"
	"fes-bids/internal/compile"
	"fes-bids/internal/model"
	"fes-bids/internal/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Runner executes compilations. *compile.Engine satisfies it.
type Runner interface {
	RunDayAhead(ctx context.Context, req compile.DayAheadRequest) (*compile.Result, error)
	RunIntraday(ctx context.Context, req compile.IntradayRequest) (*compile.Result, error)
}

// RunHandler handles compilation runs. Only one run executes at a time.
type RunHandler struct {
	runner   Runner
	registry *Registry
	busy     sync.Mutex
}

// NewRunHandler creates a new run handler
func NewRunHandler(runner Runner, registry *Registry) *RunHandler {
	if registry == nil {
		registry = NewRegistry(DefaultRegistryLimit)
	}
	return &RunHandler{runner: runner, registry: registry}
}

// CreateRun handles POST /api/v1/runs
func (h *RunHandler) CreateRun(c *gin.Context) {
	var req models.RunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "INVALID_REQUEST",
				Message: err.Error(),
			},
		})
		return
	}

	day, err := model.ParseTradingDay(req.TradingDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "INVALID_DATE",
				Message: err.Error(),
			},
		})
		return
	}

	var lag model.Lag
	switch req.BidType {
	case models.BidTypeDayAhead:
		if req.Lag != "" {
			if lag, err = model.ParseLag(req.Lag); err != nil || lag == model.LagIDA1 {
				c.JSON(http.StatusBadRequest, models.ErrorResponse{
					Error: models.ErrorDetail{
						Code:    "INVALID_LAG",
						Message: "lag must be D-n for day-ahead runs, got " + req.Lag,
					},
				})
				return
			}
		}
	case models.BidTypeIntraday:
	default:
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "INVALID_BID_TYPE",
				Message: "bid_type must be " + models.BidTypeDayAhead + " or " + models.BidTypeIntraday,
			},
		})
		return
	}

	if !h.busy.TryLock() {
		c.JSON(http.StatusConflict, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "RUN_IN_PROGRESS",
				Message: "another compilation is running, try again when it finishes",
			},
		})
		return
	}
	defer h.busy.Unlock()

	runID := uuid.NewString()
	// The run writes files and uploads rows; a dropped client must not cut it short.
	ctx := logger.WithFields(context.WithoutCancel(c.Request.Context()), "source", "api")

	var res *compile.Result
	if req.BidType == models.BidTypeIntraday {
		res, err = h.runner.RunIntraday(ctx, compile.IntradayRequest{
			Day:    day,
			Upload: req.UploadSQL,
			RunID:  runID,
		})
	} else {
		res, err = h.runner.RunDayAhead(ctx, compile.DayAheadRequest{
			Day:      day,
			Lag:      lag,
			Upload:   req.UploadSQL,
			Briefing: req.CreateBriefing,
			Email:    req.SendEmail,
			Friday:   req.FridayMode,
			RunID:    runID,
		})
	}

	if res != nil {
		h.registry.Put(&RunRecord{Result: res, Err: err})
	}
	if err != nil {
		middleware.AbortWithError(c, err, map[string]interface{}{"run_id": runID})
		return
	}
	c.JSON(http.StatusCreated, buildRunResponse(res, nil))
}

// GetRun handles GET /api/v1/runs/:id
func (h *RunHandler) GetRun(c *gin.Context) {
	rec, ok := h.lookup(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, buildRunResponse(rec.Result, rec.Err))
}

// GetCurves handles GET /api/v1/runs/:id/curves/:unit
func (h *RunHandler) GetCurves(c *gin.Context) {
	rec, ok := h.lookup(c)
	if !ok {
		return
	}
	unitID := c.Param("unit")
	ur, ok := rec.Result.Unit(unitID)
	if !ok {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "UNIT_NOT_FOUND",
				Message: "run " + rec.Result.RunID + " has no curves for unit " + unitID,
			},
		})
		return
	}

	resp := models.CurvesResponse{RunID: rec.Result.RunID, Unit: unitID, Curves: make([]models.CurveRow, 0, len(ur.Curves))}
	for _, cv := range ur.Curves {
		row := models.CurveRow{
			Period:    cv.Period.Number,
			Start:     cv.Period.Key(),
			Direction: string(cv.Direction),
			Points:    make([]models.CurvePoint, len(cv.Points)),
		}
		for i, p := range cv.Points {
			row.Points[i] = models.CurvePoint{Price: p.Price, Qty: p.Qty}
		}
		resp.Curves = append(resp.Curves, row)
	}
	c.JSON(http.StatusOK, resp)
}

func (h *RunHandler) lookup(c *gin.Context) (*RunRecord, bool) {
	id := c.Param("id")
	rec, ok := h.registry.Get(id)
	if !ok {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "RUN_NOT_FOUND",
				Message: "no run with id " + id,
			},
		})
		return nil, false
	}
	return rec, true
}

func buildRunResponse(res *compile.Result, runErr error) models.RunResponse {
	resp := models.RunResponse{
		ID:                 res.RunID,
		Status:             models.StatusSucceeded,
		Kind:               res.Kind,
		TradingDate:        res.Day.String(),
		Lag:                res.Lag.String(),
		StartedAt:          res.StartedAt,
		SnapshotPath:       res.SnapshotPath,
		GenerationUploaded: res.GenerationUploaded,
		Briefing:           res.BriefingPath,
		Emailed:            res.Emailed,
		Warnings:           res.Warnings,
	}
	if !res.FinishedAt.IsZero() {
		finished := res.FinishedAt
		resp.FinishedAt = &finished
	}
	for _, u := range res.Units {
		resp.Units = append(resp.Units, models.UnitRun{
			ID:   u.Unit.ID,
			Name: u.Unit.Name,
			Kind: string(u.Unit.Kind),
			Summary: models.UnitSummary{
				Total:     u.Summary.Total,
				Mean:      u.Summary.Mean,
				Min:       u.Summary.Min,
				Max:       u.Summary.Max,
				EnergyMWh: u.Summary.EnergyMWh,
			},
			SubmissionPath:     u.SubmissionPath,
			TradersTablePath:   u.TradersTablePath,
			ReconciliationPath: u.ReconciliationPath,
			Uploaded:           u.Uploaded,
			UploadTable:        u.UploadTable,
		})
	}
	if res.Adjustment != nil {
		resp.Adjustment = &models.AdjustmentSummary{
			Total:        res.Adjustment.Total,
			WorkbookPath: res.IDAWorkbook,
			Uploaded:     res.IDAUploaded,
		}
	}
	if runErr != nil {
		status, code := middleware.Classify(runErr)
		resp.Status = models.StatusFailed
		resp.Error = &models.ErrorDetail{
			Code:    code,
			Message: runErr.Error(),
			Details: map[string]interface{}{"http_status": status},
		}
	}
	return resp
}
