package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fintrack/internal/models"
	"fintrack/internal/services"
)

// AdminHandler serves cross-user reports for administrators.
type AdminHandler struct {
	reportService services.ReportServicer
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(reportService services.ReportServicer) *AdminHandler {
	return &AdminHandler{reportService: reportService}
}

// GetIncomeSummary returns the cross-user income summary
// @Summary     Admin income summary
// @Description Get aggregated income totals across all users with a per-user breakdown
// @Tags        admin
// @Produce     json
// @Security    BearerAuth
// @Param       from_date query string false "Inclusive start date"
// @Param       to_date   query string false "Inclusive end date"
// @Success     200 {object} services.AdminSummary "Summary"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Admin access required"
// @Router      /admin/summary/incomes [get]
func (h *AdminHandler) GetIncomeSummary(c *gin.Context) {
	h.summary(c, models.EntryKindIncome)
}

// GetExpenseSummary returns the cross-user expense summary
// @Summary     Admin expense summary
// @Description Get aggregated expense totals across all users with a per-user breakdown
// @Tags        admin
// @Produce     json
// @Security    BearerAuth
// @Param       from_date query string false "Inclusive start date"
// @Param       to_date   query string false "Inclusive end date"
// @Success     200 {object} services.AdminSummary "Summary"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Admin access required"
// @Router      /admin/summary/expenses [get]
func (h *AdminHandler) GetExpenseSummary(c *gin.Context) {
	h.summary(c, models.EntryKindExpense)
}

func (h *AdminHandler) summary(c *gin.Context, kind models.EntryKind) {
	from, err := parseDateQuery(c, "from_date")
	if err != nil {
		respondWithError(c, err)
		return
	}
	to, err := parseDateQuery(c, "to_date")
	if err != nil {
		respondWithError(c, err)
		return
	}

	summary, err := h.reportService.AdminSummary(kind, from, to)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"summary": summary})
}
