package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"fintrack/internal/services"
)

// PipelineHandler serves the API-key protected endpoints used by external jobs.
type PipelineHandler struct {
	settingsService services.SettingsServicer
	fxService       services.FXServicer
	cashflowService services.CashflowServicer
	now             func() time.Time
}

// NewPipelineHandler creates a new PipelineHandler.
func NewPipelineHandler(settingsService services.SettingsServicer, fxService services.FXServicer, cashflowService services.CashflowServicer) *PipelineHandler {
	return &PipelineHandler{
		settingsService: settingsService,
		fxService:       fxService,
		cashflowService: cashflowService,
		now:             time.Now,
	}
}

// RecordRateRequest is a USD/TWD quote pushed by an external fetcher.
type RecordRateRequest struct {
	Rate       float64    `json:"rate" binding:"required,gt=0"`
	Source     string     `json:"source" binding:"required,max=64"`
	RecordedAt *time.Time `json:"recorded_at"`
}

// RecordRate stores a pushed exchange rate.
// @Summary     Push exchange rate
// @Tags        pipeline
// @Accept      json
// @Produce     json
// @Param       X-API-Key header string            true "Pipeline API key"
// @Param       request   body   RecordRateRequest true "Rate quote"
// @Success     201 {object} models.FXRate  "Recorded rate"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Invalid API key"
// @Router      /pipeline/fx-rate [post]
func (h *PipelineHandler) RecordRate(c *gin.Context) {
	var req RecordRateRequest
	if !bindJSON(c, &req) {
		return
	}

	at := h.now()
	if req.RecordedAt != nil {
		at = *req.RecordedAt
	}

	rate, err := h.settingsService.RecordFetchedRate(req.Rate, req.Source, at)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"rate": rate})
}

// RefreshRate asks the configured provider for a fresh quote.
// @Summary     Refresh exchange rate from provider
// @Tags        pipeline
// @Produce     json
// @Param       X-API-Key header string true "Pipeline API key"
// @Success     200 {object} models.FXRate  "Fetched rate"
// @Failure     502 {object} ErrorResponse "Provider unavailable"
// @Router      /pipeline/fx-refresh [post]
func (h *PipelineHandler) RefreshRate(c *gin.Context) {
	rate, err := h.fxService.Refresh(c.Request.Context())
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rate": rate})
}

// RunRecurring materializes due recurring records for every user.
// @Summary     Materialize recurring records for all users
// @Tags        pipeline
// @Produce     json
// @Param       X-API-Key header string true "Pipeline API key"
// @Success     200 {object} RecurringRunResponse "Records created"
// @Router      /pipeline/recurring [post]
func (h *PipelineHandler) RunRecurring(c *gin.Context) {
	created, err := h.cashflowService.MaterializeAllRecurring(h.now())
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, RecurringRunResponse{Created: created})
}
