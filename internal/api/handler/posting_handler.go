package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/htbacgiang/ecobacgiangBE/internal/api/middleware"
	"github.com/htbacgiang/ecobacgiangBE/internal/api/service"
	"github.com/htbacgiang/ecobacgiangBE/internal/domain/order"
	"github.com/htbacgiang/ecobacgiangBE/internal/ledger"
)

// PostingHandler handles HTTP requests that drive the posting engine
type PostingHandler struct {
	postingService service.PostingService
	logger         *slog.Logger
}

// NewPostingHandler creates a new posting handler
func NewPostingHandler(logger *slog.Logger, postingService service.PostingService) *PostingHandler {
	return &PostingHandler{
		postingService: postingService,
		logger:         logger,
	}
}

// General posts an income or expense through the category rules
func (h *PostingHandler) General(c *gin.Context) {
	var req GeneralEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	date, err := parseOptionalDate("date", req.Date)
	if err != nil {
		RespondError(c, h.logger, "post_general_entry", err)
		return
	}
	due, err := parseOptionalDate("due_date", req.DueDate)
	if err != nil {
		RespondError(c, h.logger, "post_general_entry", err)
		return
	}

	in := ledger.GeneralEntryInput{
		Kind:          ledger.FlowKind(req.Kind),
		Category:      ledger.Category(strings.TrimSpace(req.Category)),
		Amount:        req.Amount,
		PaymentStatus: ledger.SettlementStatus(req.PaymentStatus),
		Method:        req.PaymentMethod,
		Prepayment:    req.Prepayment,
		Partner:       req.Partner.toRef(),
		DueDate:       due,
		Memo:          req.Memo,
		CorrelationID: middleware.GetCorrelationID(c),
	}
	if date != nil {
		in.Date = *date
	}

	result, err := h.postingService.PostGeneralEntry(c.Request.Context(), in)
	if err != nil {
		RespondError(c, h.logger, "post_general_entry", err)
		return
	}
	RespondCreated(c, result)
}

// Sale posts the revenue of an order. Reposting the same order returns the
// existing entry with 200.
func (h *PostingHandler) Sale(c *gin.Context) {
	var o order.Order
	if err := c.ShouldBindJSON(&o); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	result, err := h.postingService.PostSaleEntry(c.Request.Context(), &o)
	if err != nil {
		RespondError(c, h.logger, "post_sale_entry", err)
		return
	}
	status := http.StatusOK
	if result.Created {
		status = http.StatusCreated
	}
	RespondWithData(c, status, result)
}

// COGS posts the cost of goods of a shipped order once
func (h *PostingHandler) COGS(c *gin.Context) {
	var o order.Order
	if err := c.ShouldBindJSON(&o); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	entry, created, err := h.postingService.PostCOGSEntry(c.Request.Context(), &o)
	if err != nil {
		RespondError(c, h.logger, "post_cogs_entry", err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	RespondWithData(c, status, gin.H{"entry": entry, "created": created})
}

// Transfer moves money between two asset accounts
func (h *PostingHandler) Transfer(c *gin.Context) {
	var req TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	date, err := parseOptionalDate("date", req.Date)
	if err != nil {
		RespondError(c, h.logger, "post_transfer_entry", err)
		return
	}

	in := ledger.TransferInput{
		FromCode:      req.FromAccount,
		ToCode:        req.ToAccount,
		Amount:        req.Amount,
		Memo:          req.Memo,
		CorrelationID: middleware.GetCorrelationID(c),
	}
	if date != nil {
		in.Date = *date
	}

	entry, err := h.postingService.PostTransferEntry(c.Request.Context(), in)
	if err != nil {
		RespondError(c, h.logger, "post_transfer_entry", err)
		return
	}
	RespondCreated(c, entry)
}

// Adjusting posts a correction dated today for an earlier date
func (h *PostingHandler) Adjusting(c *gin.Context) {
	var req AdjustingEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	corrected, err := parseDate("corrected_date", req.CorrectedDate)
	if err != nil {
		RespondError(c, h.logger, "post_adjusting_entry", err)
		return
	}

	entry, err := h.postingService.PostAdjustingEntry(c.Request.Context(), ledger.AdjustingInput{
		Lines:         toLines(req.Lines),
		CorrectedDate: corrected,
		Memo:          req.Memo,
		CorrelationID: middleware.GetCorrelationID(c),
	})
	if err != nil {
		RespondError(c, h.logger, "post_adjusting_entry", err)
		return
	}
	RespondCreated(c, entry)
}

// Depreciation runs the monthly straight-line depreciation batch
func (h *PostingHandler) Depreciation(c *gin.Context) {
	var req DepreciationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	month, err := parseMonth(req.Month)
	if err != nil {
		RespondError(c, h.logger, "post_depreciation", err)
		return
	}

	run, err := h.postingService.PostDepreciationEntry(c.Request.Context(), month)
	if err != nil {
		RespondError(c, h.logger, "post_depreciation", err)
		return
	}
	RespondOK(c, run)
}
