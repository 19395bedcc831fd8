package handler

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/htbacgiang/ecobacgiangBE/internal/api/service"
	"github.com/htbacgiang/ecobacgiangBE/internal/domain/account"
)

// AccountHandler handles HTTP requests for the chart of accounts
type AccountHandler struct {
	accountService service.AccountService
	logger         *slog.Logger
}

// NewAccountHandler creates a new account handler
func NewAccountHandler(logger *slog.Logger, accountService service.AccountService) *AccountHandler {
	return &AccountHandler{
		accountService: accountService,
		logger:         logger,
	}
}

// List returns the chart of accounts sorted by code
func (h *AccountHandler) List(c *gin.Context) {
	var q ListAccountsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		RespondBadRequest(c, "Invalid query: "+err.Error())
		return
	}

	accounts, err := h.accountService.List(c.Request.Context(), account.Filter{
		Type:   account.Type(q.Type),
		Status: account.Status(q.Status),
	})
	if err != nil {
		RespondError(c, h.logger, "list_accounts", err)
		return
	}
	RespondOK(c, accounts)
}

// Create adds an account. A parent, when given, must exist and share the type.
func (h *AccountHandler) Create(c *gin.Context) {
	var req CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	acc, err := h.accountService.Create(c.Request.Context(), req.Code, req.Name, account.Type(req.Type), req.ParentCode)
	if err != nil {
		RespondError(c, h.logger, "create_account", err)
		return
	}
	RespondCreated(c, acc)
}
