package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"fintrack/internal/engine"
	apperrors "fintrack/internal/errors"
	"fintrack/internal/services"
)

// DashboardHandler serves the computed views over a user's data.
type DashboardHandler struct {
	dashboardService services.DashboardServicer
	now              func() time.Time
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(dashboardService services.DashboardServicer) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService, now: time.Now}
}

// GetDashboard handles the complete dashboard
// @Summary     Dashboard
// @Description Summary, health score, current month, PNL, goals and budgets in one response
// @Tags        dashboard
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} engine.Dashboard "Dashboard"
// @Router      /dashboard [get]
func (h *DashboardHandler) GetDashboard(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	dash, err := h.dashboardService.GetDashboard(userID, h.now())
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, dash)
}

// GetSummary handles the asset summary
// @Summary     Asset summary
// @Description Net worth, foreign-currency share and breakdown by asset type, valued in TWD
// @Tags        dashboard
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} services.SummaryView "Summary"
// @Router      /dashboard/summary [get]
func (h *DashboardHandler) GetSummary(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	view, err := h.dashboardService.GetSummary(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// GetHealth handles the financial health score
// @Summary     Health score
// @Tags        dashboard
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} engine.HealthScore "Health score"
// @Router      /dashboard/health [get]
func (h *DashboardHandler) GetHealth(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	score, err := h.dashboardService.GetHealth(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, score)
}

// GetPNL handles the investment profit and loss statement
// @Summary     Investment PNL
// @Tags        dashboard
// @Produce     json
// @Security    BearerAuth
// @Param       sort query string false "Column: code, account_type, account_name, current_value_twd, cost_twd, profit_loss_twd (default), pnl_percentage"
// @Param       dir  query string false "asc or desc (default desc)"
// @Success     200 {object} engine.PNLReport "PNL statement"
// @Failure     400 {object} ErrorResponse "Invalid sort"
// @Router      /dashboard/pnl [get]
func (h *DashboardHandler) GetPNL(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	key := engine.DefaultPNLSort
	if v := c.Query("sort"); v != "" {
		k, ok := engine.ParsePNLSortKey(v)
		if !ok {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid sort column"))
			return
		}
		key = k
	}

	dir := engine.SortDirection(c.DefaultQuery("dir", string(engine.SortDesc)))
	if dir != engine.SortAsc && dir != engine.SortDesc {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "dir must be asc or desc"))
		return
	}

	report, err := h.dashboardService.GetPNL(userID, key, dir)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// GetGoalProgress handles progress toward every goal
// @Summary     Goal progress
// @Tags        dashboard
// @Produce     json
// @Security    BearerAuth
// @Success     200 {array} engine.GoalProgress "Goal progress"
// @Router      /dashboard/goals [get]
func (h *DashboardHandler) GetGoalProgress(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	progress, err := h.dashboardService.GetGoalProgress(userID, h.now())
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"goals": progress})
}
