package handler

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/htbacgiang/ecobacgiangBE/internal/api/service"
)

// ReportHandler serves the read-only financial reports
type ReportHandler struct {
	reportService service.ReportService
	logger        *slog.Logger
}

// NewReportHandler creates a new report handler
func NewReportHandler(logger *slog.Logger, reportService service.ReportService) *ReportHandler {
	return &ReportHandler{
		reportService: reportService,
		logger:        logger,
	}
}

func (h *ReportHandler) TrialBalance(c *gin.Context) {
	from, to, ok := h.dateRange(c, "trial_balance")
	if !ok {
		return
	}
	report, err := h.reportService.TrialBalance(c.Request.Context(), from, to)
	if err != nil {
		RespondError(c, h.logger, "trial_balance", err)
		return
	}
	RespondOK(c, report)
}

func (h *ReportHandler) AccountLedger(c *gin.Context) {
	from, to, ok := h.dateRange(c, "account_ledger")
	if !ok {
		return
	}
	report, err := h.reportService.AccountLedger(c.Request.Context(), c.Param("code"), from, to)
	if err != nil {
		RespondError(c, h.logger, "account_ledger", err)
		return
	}
	RespondOK(c, report)
}

func (h *ReportHandler) BalanceSheet(c *gin.Context) {
	var q AsOfQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		RespondBadRequest(c, "Invalid query: "+err.Error())
		return
	}
	asOf, err := parseOptionalDate("as_of", q.AsOf)
	if err != nil {
		RespondError(c, h.logger, "balance_sheet", err)
		return
	}
	at := time.Now().UTC()
	if asOf != nil {
		at = *asOf
	}

	report, err := h.reportService.BalanceSheet(c.Request.Context(), at)
	if err != nil {
		RespondError(c, h.logger, "balance_sheet", err)
		return
	}
	RespondOK(c, report)
}

func (h *ReportHandler) ProfitAndLoss(c *gin.Context) {
	from, to, ok := h.dateRange(c, "profit_and_loss")
	if !ok {
		return
	}
	report, err := h.reportService.ProfitAndLoss(c.Request.Context(), from, to)
	if err != nil {
		RespondError(c, h.logger, "profit_and_loss", err)
		return
	}
	RespondOK(c, report)
}

// dateRange binds the optional from/to query. On failure the response has
// been written and ok is false.
func (h *ReportHandler) dateRange(c *gin.Context, op string) (from, to *time.Time, ok bool) {
	var q DateRangeQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		RespondBadRequest(c, "Invalid query: "+err.Error())
		return nil, nil, false
	}
	from, err := parseOptionalDate("from", q.From)
	if err != nil {
		RespondError(c, h.logger, op, err)
		return nil, nil, false
	}
	to, err = parseOptionalDate("to", q.To)
	if err != nil {
		RespondError(c, h.logger, op, err)
		return nil, nil, false
	}
	return from, to, true
}
