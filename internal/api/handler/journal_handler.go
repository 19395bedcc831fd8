package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/htbacgiang/ecobacgiangBE/internal/api/middleware"
	"github.com/htbacgiang/ecobacgiangBE/internal/api/service"
	"github.com/htbacgiang/ecobacgiangBE/internal/domain/journal"
	"github.com/htbacgiang/ecobacgiangBE/internal/ledger"
)

// JournalHandler handles HTTP requests for journal entries
type JournalHandler struct {
	journalService service.JournalService
	logger         *slog.Logger
}

// NewJournalHandler creates a new journal handler
func NewJournalHandler(logger *slog.Logger, journalService service.JournalService) *JournalHandler {
	return &JournalHandler{
		journalService: journalService,
		logger:         logger,
	}
}

// Create posts a manual entry
func (h *JournalHandler) Create(c *gin.Context) {
	var req CreateJournalEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	date, err := parseDate("transaction_date", req.TransactionDate)
	if err != nil {
		RespondError(c, h.logger, "create_journal_entry", err)
		return
	}

	entry, err := h.journalService.CreateManual(c.Request.Context(), ledger.ManualEntryInput{
		TransactionDate: date,
		Memo:            req.Memo,
		Lines:           toLines(req.Lines),
		CorrelationID:   middleware.GetCorrelationID(c),
	})
	if err != nil {
		RespondError(c, h.logger, "create_journal_entry", err)
		return
	}
	RespondCreated(c, entry)
}

// List returns one page of entries, newest first
func (h *JournalHandler) List(c *gin.Context) {
	var q ListJournalEntriesQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		RespondBadRequest(c, "Invalid query: "+err.Error())
		return
	}
	from, err := parseOptionalDate("from", q.From)
	if err != nil {
		RespondError(c, h.logger, "list_journal_entries", err)
		return
	}
	to, err := parseOptionalDate("to", q.To)
	if err != nil {
		RespondError(c, h.logger, "list_journal_entries", err)
		return
	}

	limit, offset := q.limitOffset()
	entries, total, err := h.journalService.List(c.Request.Context(), journal.ListFilter{
		Type:        journal.EntryType(q.Type),
		From:        from,
		To:          to,
		AccountCode: q.AccountCode,
		SourceType:  q.SourceType,
		SourceID:    q.SourceID,
		Limit:       limit,
		Offset:      offset,
	})
	if err != nil {
		RespondError(c, h.logger, "list_journal_entries", err)
		return
	}
	RespondWithPaginatedData(c, http.StatusOK, entries, q.Page, q.PerPage, int(total))
}

// Get returns one entry
func (h *JournalHandler) Get(c *gin.Context) {
	entry, err := h.journalService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondError(c, h.logger, "get_journal_entry", err)
		return
	}
	RespondOK(c, entry)
}

// Update edits an entry outside locked periods that no debt depends on
func (h *JournalHandler) Update(c *gin.Context) {
	var req UpdateJournalEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	patch := ledger.EntryPatch{Memo: req.Memo, Lines: toLines(req.Lines)}
	if req.TransactionDate != nil {
		date, err := parseDate("transaction_date", *req.TransactionDate)
		if err != nil {
			RespondError(c, h.logger, "update_journal_entry", err)
			return
		}
		patch.TransactionDate = &date
	}

	entry, err := h.journalService.Update(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		RespondError(c, h.logger, "update_journal_entry", err)
		return
	}
	RespondOK(c, entry)
}

// Delete removes an entry no debt refers to
func (h *JournalHandler) Delete(c *gin.Context) {
	if err := h.journalService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		RespondError(c, h.logger, "delete_journal_entry", err)
		return
	}
	RespondNoContent(c)
}
