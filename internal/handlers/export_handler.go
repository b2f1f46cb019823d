package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"fintrack/internal/engine"
	apperrors "fintrack/internal/errors"
	"fintrack/internal/report"
	"fintrack/internal/services"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportHandler handles backups, spreadsheet exports and rendered reports.
type ExportHandler struct {
	backupService    services.BackupServicer
	dashboardService services.DashboardServicer
	auditService     services.AuditServicer
	now              func() time.Time
}

// NewExportHandler creates a new ExportHandler.
func NewExportHandler(backupService services.BackupServicer, dashboardService services.DashboardServicer, auditService services.AuditServicer) *ExportHandler {
	return &ExportHandler{
		backupService:    backupService,
		dashboardService: dashboardService,
		auditService:     auditService,
		now:              time.Now,
	}
}

func attachment(c *gin.Context, name string) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
}

// ExportBackup handles downloading the full data set as JSON
// @Summary     Export backup
// @Description Every account, record, budget, goal and setting as one JSON document
// @Tags        export
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} engine.Snapshot "Backup"
// @Router      /export/backup [get]
func (h *ExportHandler) ExportBackup(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	snap, err := h.backupService.Export(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	attachment(c, fmt.Sprintf("fintrack_backup_%s.json", h.now().Format("20060102")))
	c.JSON(http.StatusOK, snap)
}

// ImportBackup handles replacing all data with a backup
// @Summary     Import backup
// @Description Replace the user's accounts, records, budgets, goals and settings with the backup contents
// @Tags        export
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body engine.Snapshot true "Backup"
// @Success     200 {object} services.ImportResult "Rows imported"
// @Failure     400 {object} ErrorResponse "Malformed backup"
// @Router      /import/backup [post]
func (h *ExportHandler) ImportBackup(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var snap engine.Snapshot
	if err := c.ShouldBindJSON(&snap); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidBackup, err.Error()))
		return
	}

	result, err := h.backupService.Import(userID, snap)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, services.AuditActionImport, "backup", "", c.ClientIP(),
		map[string]any{
			"accounts": result.Accounts,
			"records":  result.Records,
			"budgets":  result.Budgets,
			"goals":    result.Goals,
		})

	c.JSON(http.StatusOK, result)
}

// ExportXLSX handles downloading records and investments as a spreadsheet
// @Summary     Export spreadsheet
// @Tags        export
// @Produce     application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security    BearerAuth
// @Success     200 {file} file "Workbook"
// @Router      /export/xlsx [get]
func (h *ExportHandler) ExportXLSX(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	snap, err := h.backupService.Export(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	pnl, err := h.dashboardService.GetPNL(userID, engine.SortByValue, engine.SortDesc)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := report.WriteXLSX(&buf, snap.Records, *pnl); err != nil {
		respondWithError(c, apperrors.Wrap(apperrors.ErrInternalServer, err))
		return
	}

	attachment(c, fmt.Sprintf("fintrack_%s.xlsx", h.now().Format("20060102")))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// DashboardReport handles the rendered dashboard report
// @Summary     Dashboard report
// @Description The dashboard as markdown, or as an HTML page when format=html
// @Tags        export
// @Produce     text/html
// @Produce     text/markdown
// @Security    BearerAuth
// @Param       format query string false "html (default) or md"
// @Success     200 {string} string "Report"
// @Router      /reports/dashboard [get]
func (h *ExportHandler) DashboardReport(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	format := c.DefaultQuery("format", "html")
	if format != "html" && format != "md" {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "format must be html or md"))
		return
	}

	dash, err := h.dashboardService.GetDashboard(userID, h.now())
	if err != nil {
		respondWithError(c, err)
		return
	}

	doc := report.Dashboard(*dash)
	if format == "md" {
		c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(doc))
		return
	}

	page, err := report.HTML("Financial overview", doc)
	if err != nil {
		respondWithError(c, apperrors.Wrap(apperrors.ErrInternalServer, err))
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", page)
}
