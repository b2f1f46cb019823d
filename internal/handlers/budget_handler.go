package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"fintrack/internal/services"
)

// BudgetHandler handles monthly category budget requests.
type BudgetHandler struct {
	budgetService services.BudgetServicer
	now           func() time.Time
}

// NewBudgetHandler creates a new BudgetHandler.
func NewBudgetHandler(budgetService services.BudgetServicer) *BudgetHandler {
	return &BudgetHandler{budgetService: budgetService, now: time.Now}
}

// SetBudgetRequest sets or clears the budget for one category in one month.
// An amount of zero removes the budget.
type SetBudgetRequest struct {
	Month    string  `json:"month" binding:"required,month_key"`
	Category string  `json:"category" binding:"required,max=64"`
	Amount   float64 `json:"amount" binding:"gte=0"`
}

// CopyBudgetsRequest names the month to fill from the month before it.
type CopyBudgetsRequest struct {
	Month string `json:"month" binding:"required,month_key"`
}

// CopyBudgetsResponse reports how many budgets were copied.
type CopyBudgetsResponse struct {
	Copied int `json:"copied"`
}

func (h *BudgetHandler) monthParam(c *gin.Context) string {
	return c.DefaultQuery("month", h.now().Format("2006-01"))
}

// SetBudget handles creating, changing or clearing a budget
// @Summary     Set a budget
// @Description Upsert the budget for a month and category. Amount 0 removes it.
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body SetBudgetRequest true "Budget"
// @Success     200 {object} models.Budget "Budget saved"
// @Success     204 "Budget removed"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /budgets [put]
func (h *BudgetHandler) SetBudget(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req SetBudgetRequest
	if !bindJSON(c, &req) {
		return
	}

	budget, err := h.budgetService.SetBudget(userID, req.Month, req.Category, req.Amount)
	if err != nil {
		respondWithError(c, err)
		return
	}
	if budget == nil {
		c.Status(http.StatusNoContent)
		return
	}

	c.JSON(http.StatusOK, gin.H{"budget": budget})
}

// GetMonthBudgets handles listing the budgets of a month
// @Summary     List budgets
// @Tags        budgets
// @Produce     json
// @Security    BearerAuth
// @Param       month query string false "Month (YYYY-MM), defaults to the current month"
// @Success     200 {array} models.Budget "Budgets"
// @Failure     400 {object} ErrorResponse "Invalid month"
// @Router      /budgets [get]
func (h *BudgetHandler) GetMonthBudgets(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	budgets, err := h.budgetService.GetMonthBudgets(userID, h.monthParam(c))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"budgets": budgets})
}

// DeleteBudget handles removing a budget
// @Summary     Delete budget
// @Tags        budgets
// @Security    BearerAuth
// @Param       id path string true "Budget ID"
// @Success     204 "Budget deleted"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Router      /budgets/{id} [delete]
func (h *BudgetHandler) DeleteBudget(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	budgetID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.budgetService.DeleteBudget(userID, budgetID); err != nil {
		respondWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// CopyPreviousMonth handles copying last month's budgets forward
// @Summary     Copy budgets from the previous month
// @Description Categories already budgeted in the target month are left alone
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CopyBudgetsRequest true "Target month"
// @Success     200 {object} CopyBudgetsResponse "Budgets copied"
// @Failure     404 {object} ErrorResponse "Nothing to copy"
// @Router      /budgets/copy [post]
func (h *BudgetHandler) CopyPreviousMonth(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CopyBudgetsRequest
	if !bindJSON(c, &req) {
		return
	}

	copied, err := h.budgetService.CopyPreviousMonth(userID, req.Month)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, CopyBudgetsResponse{Copied: copied})
}

// GetBudgetReport handles budget versus actual spending for a month
// @Summary     Budget report
// @Description Spending against budget per expense category, with the trailing average
// @Tags        budgets
// @Produce     json
// @Security    BearerAuth
// @Param       month query string false "Month (YYYY-MM), defaults to the current month"
// @Success     200 {array} engine.BudgetLine "Report lines"
// @Failure     400 {object} ErrorResponse "Invalid month"
// @Router      /budgets/report [get]
func (h *BudgetHandler) GetBudgetReport(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	month := h.monthParam(c)
	lines, err := h.budgetService.GetBudgetReport(userID, month)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"month": month, "lines": lines})
}
