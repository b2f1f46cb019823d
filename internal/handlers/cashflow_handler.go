package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"fintrack/internal/engine"
	apperrors "fintrack/internal/errors"
	"fintrack/internal/pagination"
	"fintrack/internal/services"
	"fintrack/internal/uuid"
)

// CashflowHandler handles income and expense record requests.
type CashflowHandler struct {
	cashflowService services.CashflowServicer
	auditService    services.AuditServicer
	now             func() time.Time
}

// NewCashflowHandler creates a new CashflowHandler.
func NewCashflowHandler(cashflowService services.CashflowServicer, auditService services.AuditServicer) *CashflowHandler {
	return &CashflowHandler{cashflowService: cashflowService, auditService: auditService, now: time.Now}
}

// RecurringRunResponse reports how many recurring copies were created.
type RecurringRunResponse struct {
	Created int `json:"created"`
}

// CreateRecord handles the creation of a cashflow record
// @Summary     Create a cashflow record
// @Tags        cashflow
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body services.RecordInput true "Record details"
// @Success     201 {object} models.CashflowRecord "Record created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Account not found"
// @Router      /cashflow [post]
func (h *CashflowHandler) CreateRecord(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req services.RecordInput
	if !bindJSON(c, &req) {
		return
	}

	record, err := h.cashflowService.CreateRecord(userID, req)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"record": record})
}

// ListRecords handles listing cashflow records
// @Summary     List cashflow records
// @Description Paginated records, newest first, with optional filters. q matches category, description and account name.
// @Tags        cashflow
// @Produce     json
// @Security    BearerAuth
// @Param       month      query string false "Month (YYYY-MM)"
// @Param       type       query string false "income or expense"
// @Param       category   query string false "Category"
// @Param       account_id query string false "Account ID"
// @Param       q          query string false "Search term"
// @Param       page       query int    false "Page number (default 1)"
// @Param       page_size  query int    false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.CashflowRecord] "Paginated records"
// @Failure     400 {object} ErrorResponse "Invalid filter"
// @Router      /cashflow [get]
func (h *CashflowHandler) ListRecords(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if !bindQuery(c, &page) {
		return
	}

	filter, err := parseCashflowFilter(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.cashflowService.ListRecords(userID, page, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func parseCashflowFilter(c *gin.Context) (services.CashflowFilter, error) {
	filter := services.CashflowFilter{
		Month:    c.Query("month"),
		Category: c.Query("category"),
		Search:   c.Query("q"),
	}

	if v := c.Query("type"); v != "" {
		t := engine.CashflowType(v)
		if !t.Valid() {
			return filter, apperrors.ErrInvalidCashflowType
		}
		filter.Type = &t
	}

	if v := c.Query("account_id"); v != "" {
		if !uuid.IsValid(v) {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid account_id")
		}
		filter.AccountID = v
	}

	return filter, nil
}

// GetRecord handles fetching one record
// @Summary     Get cashflow record
// @Tags        cashflow
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Record ID"
// @Success     200 {object} models.CashflowRecord "Record"
// @Failure     404 {object} ErrorResponse "Record not found"
// @Router      /cashflow/{id} [get]
func (h *CashflowHandler) GetRecord(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	recordID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	record, err := h.cashflowService.GetRecordByID(userID, recordID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"record": record})
}

// UpdateRecord handles editing a record
// @Summary     Update cashflow record
// @Tags        cashflow
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string true "Record ID"
// @Param       request body services.RecordInput true "Record details"
// @Success     200 {object} models.CashflowRecord "Updated record"
// @Failure     404 {object} ErrorResponse "Record not found"
// @Router      /cashflow/{id} [put]
func (h *CashflowHandler) UpdateRecord(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	recordID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req services.RecordInput
	if !bindJSON(c, &req) {
		return
	}

	record, err := h.cashflowService.UpdateRecord(userID, recordID, req)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"record": record})
}

// DeleteRecord handles removing a record
// @Summary     Delete cashflow record
// @Tags        cashflow
// @Security    BearerAuth
// @Param       id path string true "Record ID"
// @Success     204 "Record deleted"
// @Failure     404 {object} ErrorResponse "Record not found"
// @Router      /cashflow/{id} [delete]
func (h *CashflowHandler) DeleteRecord(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	recordID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.cashflowService.DeleteRecord(userID, recordID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, services.AuditActionDeleteRecord, "cashflow_record", recordID, c.ClientIP(), nil)

	c.Status(http.StatusNoContent)
}

// GetMonthlySummary handles the income/expense totals for a month
// @Summary     Monthly cashflow summary
// @Tags        cashflow
// @Produce     json
// @Security    BearerAuth
// @Param       month query string false "Month (YYYY-MM), defaults to the current month"
// @Success     200 {object} engine.MonthSummary "Month summary"
// @Failure     400 {object} ErrorResponse "Invalid month"
// @Router      /cashflow/summary [get]
func (h *CashflowHandler) GetMonthlySummary(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	month := c.DefaultQuery("month", h.now().Format("2006-01"))

	summary, err := h.cashflowService.GetMonthlySummary(userID, month)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// RunRecurring handles creating this period's copies of recurring records
// @Summary     Materialize recurring records
// @Description Create the copies of recurring records that have come due since the last check
// @Tags        cashflow
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} RecurringRunResponse "Copies created"
// @Router      /cashflow/recurring/run [post]
func (h *CashflowHandler) RunRecurring(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	created, err := h.cashflowService.MaterializeRecurring(userID, h.now())
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, RecurringRunResponse{Created: created})
}
