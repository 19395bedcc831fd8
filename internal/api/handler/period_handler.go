package handler

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/htbacgiang/ecobacgiangBE/internal/api/service"
)

// PeriodHandler handles HTTP requests for accounting periods
type PeriodHandler struct {
	periodService service.PeriodService
	logger        *slog.Logger
}

// NewPeriodHandler creates a new period handler
func NewPeriodHandler(logger *slog.Logger, periodService service.PeriodService) *PeriodHandler {
	return &PeriodHandler{
		periodService: periodService,
		logger:        logger,
	}
}

func (h *PeriodHandler) List(c *gin.Context) {
	periods, err := h.periodService.ListPeriods(c.Request.Context())
	if err != nil {
		RespondError(c, h.logger, "list_periods", err)
		return
	}
	RespondOK(c, periods)
}

func (h *PeriodHandler) Create(c *gin.Context) {
	var req CreatePeriodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	start, err := parseDate("start_date", req.StartDate)
	if err != nil {
		RespondError(c, h.logger, "create_period", err)
		return
	}
	end, err := parseDate("end_date", req.EndDate)
	if err != nil {
		RespondError(c, h.logger, "create_period", err)
		return
	}

	p, err := h.periodService.CreatePeriod(c.Request.Context(), req.Name, start, end)
	if err != nil {
		RespondError(c, h.logger, "create_period", err)
		return
	}
	RespondCreated(c, p)
}

// Close posts the closing entries of a period and locks it. The body is optional.
func (h *PeriodHandler) Close(c *gin.Context) {
	var req ClosePeriodRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			RespondBadRequest(c, "Invalid request body: "+err.Error())
			return
		}
	}
	lockDate, err := parseOptionalDate("lock_date", req.LockDate)
	if err != nil {
		RespondError(c, h.logger, "close_period", err)
		return
	}

	result, err := h.periodService.ClosePeriod(c.Request.Context(), c.Param("id"), lockDate, req.ClosedBy)
	if err != nil {
		RespondError(c, h.logger, "close_period", err)
		return
	}
	RespondOK(c, result)
}
