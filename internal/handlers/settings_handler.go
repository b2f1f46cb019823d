package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fintrack/internal/engine"
	"fintrack/internal/services"
)

// SettingsHandler handles preferences and exchange rate requests.
type SettingsHandler struct {
	settingsService services.SettingsServicer
	fxService       services.FXServicer
	auditService    services.AuditServicer
}

// NewSettingsHandler creates a new SettingsHandler.
func NewSettingsHandler(settingsService services.SettingsServicer, fxService services.FXServicer, auditService services.AuditServicer) *SettingsHandler {
	return &SettingsHandler{settingsService: settingsService, fxService: fxService, auditService: auditService}
}

// ManualRateRequest sets the manual USD/TWD override. A null rate clears it.
type ManualRateRequest struct {
	Rate *float64 `json:"rate" binding:"omitempty,gt=0"`
}

// CategoriesRequest replaces the custom categories of one cashflow type.
type CategoriesRequest struct {
	Type       engine.CashflowType `json:"type" binding:"required,cashflow_type"`
	Categories []string            `json:"categories" binding:"max=100,dive,max=64"`
}

// SettingsResponse combines stored preferences with the merged category lists.
type SettingsResponse struct {
	ManualRate         *float64 `json:"manual_rate"`
	CustomIncome       []string `json:"custom_income"`
	CustomExpense      []string `json:"custom_expense"`
	IncomeCategories   []string `json:"income_categories"`
	ExpenseCategories  []string `json:"expense_categories"`
	LastRecurringCheck string   `json:"last_recurring_check,omitempty"`
}

func (h *SettingsHandler) settingsResponse(userID string) (*SettingsResponse, error) {
	settings, err := h.settingsService.GetSettings(userID)
	if err != nil {
		return nil, err
	}
	es := settings.ToEngine(nil)
	return &SettingsResponse{
		ManualRate:         settings.ManualRate,
		CustomIncome:       nonNil(settings.CustomIncome),
		CustomExpense:      nonNil(settings.CustomExpense),
		IncomeCategories:   es.IncomeCategories(),
		ExpenseCategories:  es.ExpenseCategories(),
		LastRecurringCheck: settings.LastRecurringCheck,
	}, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// GetSettings handles reading the user's preferences
// @Summary     Get settings
// @Tags        settings
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} SettingsResponse "Settings"
// @Router      /settings [get]
func (h *SettingsHandler) GetSettings(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	out, err := h.settingsResponse(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"settings": out})
}

// SetManualRate handles setting or clearing the manual exchange rate
// @Summary     Set manual USD/TWD rate
// @Tags        settings
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body ManualRateRequest true "Rate, or null to clear"
// @Success     200 {object} services.RateInfo "Rate now in effect"
// @Failure     400 {object} ErrorResponse "Invalid rate"
// @Router      /settings/rate [put]
func (h *SettingsHandler) SetManualRate(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req ManualRateRequest
	if !bindJSON(c, &req) {
		return
	}

	if _, err := h.settingsService.SetManualRate(userID, req.Rate); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, services.AuditActionSetRate, "settings", "", c.ClientIP(),
		map[string]any{"rate": req.Rate})

	info, err := h.settingsService.GetRateInfo(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, info)
}

// SetCategories handles replacing custom categories
// @Summary     Set custom categories
// @Description Replace the user's custom categories for income or expense. Built-in categories are always kept.
// @Tags        settings
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CategoriesRequest true "Categories"
// @Success     200 {object} SettingsResponse "Updated settings"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /settings/categories [put]
func (h *SettingsHandler) SetCategories(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CategoriesRequest
	if !bindJSON(c, &req) {
		return
	}

	if _, err := h.settingsService.SetCustomCategories(userID, req.Type, req.Categories); err != nil {
		respondWithError(c, err)
		return
	}

	out, err := h.settingsResponse(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"settings": out})
}

// GetRate handles reporting the rate in effect
// @Summary     Get USD/TWD rate
// @Description The effective rate and its source: manual override, last fetched, or default
// @Tags        settings
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} services.RateInfo "Rate info"
// @Router      /fx/rate [get]
func (h *SettingsHandler) GetRate(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	info, err := h.settingsService.GetRateInfo(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, info)
}

// RefreshRate handles fetching a fresh rate from the provider
// @Summary     Refresh USD/TWD rate
// @Tags        settings
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} services.RateInfo "Rate now in effect"
// @Failure     502 {object} ErrorResponse "Provider unavailable"
// @Router      /fx/refresh [post]
func (h *SettingsHandler) RefreshRate(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	if _, err := h.fxService.Refresh(c.Request.Context()); err != nil {
		respondWithError(c, err)
		return
	}

	info, err := h.settingsService.GetRateInfo(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, info)
}
