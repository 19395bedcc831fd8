package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/htbacgiang/ecobacgiangBE/internal/api/service"
	"github.com/htbacgiang/ecobacgiangBE/internal/domain/debt"
	"github.com/htbacgiang/ecobacgiangBE/internal/ledger"
)

// DebtHandler handles HTTP requests for receivables and payables
type DebtHandler struct {
	debtService service.DebtService
	logger      *slog.Logger
}

// NewDebtHandler creates a new debt handler
func NewDebtHandler(logger *slog.Logger, debtService service.DebtService) *DebtHandler {
	return &DebtHandler{
		debtService: debtService,
		logger:      logger,
	}
}

func (h *DebtHandler) ListReceivables(c *gin.Context) { h.list(c, debt.KindReceivable) }

func (h *DebtHandler) ListPayables(c *gin.Context) { h.list(c, debt.KindPayable) }

func (h *DebtHandler) ReceivableAging(c *gin.Context) { h.aging(c, debt.KindReceivable) }

func (h *DebtHandler) PayableAging(c *gin.Context) { h.aging(c, debt.KindPayable) }

func (h *DebtHandler) list(c *gin.Context, kind debt.Kind) {
	var q ListDebtsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		RespondBadRequest(c, "Invalid query: "+err.Error())
		return
	}

	limit, offset := q.limitOffset()
	debts, total, err := h.debtService.List(c.Request.Context(), debt.Filter{
		Kind:        kind,
		Status:      debt.PaymentStatus(q.Status),
		PartnerID:   q.PartnerID,
		Outstanding: q.Outstanding,
		Limit:       limit,
		Offset:      offset,
	})
	if err != nil {
		RespondError(c, h.logger, "list_"+string(kind)+"s", err)
		return
	}
	RespondWithPaginatedData(c, http.StatusOK, debts, q.Page, q.PerPage, int(total))
}

func (h *DebtHandler) aging(c *gin.Context, kind debt.Kind) {
	var q AsOfQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		RespondBadRequest(c, "Invalid query: "+err.Error())
		return
	}
	asOf, err := parseOptionalDate("as_of", q.AsOf)
	if err != nil {
		RespondError(c, h.logger, string(kind)+"_aging", err)
		return
	}
	at := time.Now().UTC()
	if asOf != nil {
		at = *asOf
	}

	report, err := h.debtService.AgingReport(c.Request.Context(), kind, at)
	if err != nil {
		RespondError(c, h.logger, string(kind)+"_aging", err)
		return
	}
	RespondOK(c, report)
}

// ApplyPayment settles a debt and, unless disabled, posts the matching
// receipt or payment entry
func (h *DebtHandler) ApplyPayment(c *gin.Context) {
	var req ApplyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	paidAt, err := parseOptionalDate("paid_at", req.PaidAt)
	if err != nil {
		RespondError(c, h.logger, "apply_payment", err)
		return
	}

	opts := ledger.PaymentOptions{Method: req.Method, PostReceipt: true}
	if req.PostReceipt != nil {
		opts.PostReceipt = *req.PostReceipt
	}
	if paidAt != nil {
		opts.PaidAt = *paidAt
	}

	result, err := h.debtService.ApplyPayment(c.Request.Context(), c.Param("id"), req.Amount, opts)
	if err != nil {
		RespondError(c, h.logger, "apply_payment", err)
		return
	}
	RespondOK(c, result)
}
