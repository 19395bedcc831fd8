package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/htbacgiang/ecobacgiangBE/internal/api/middleware"
	"github.com/htbacgiang/ecobacgiangBE/internal/domain/shared"
)

// internalCode is shared with the recovery middleware so clients see one
// code for every unexpected failure.
const internalCode = "INTERNAL"

// Response is the envelope of every ledger API reply. Exactly one of Data
// and Error is meaningful.
type Response struct {
	Data          interface{} `json:"data"`
	Error         *ErrorInfo  `json:"error,omitempty"`
	CorrelationID string      `json:"correlation_id,omitempty"`
	Meta          *MetaInfo   `json:"meta,omitempty"`
}

// ErrorInfo carries the error kind as Code. Details holds the identifiers
// of the offending records, e.g. account_code or period.
type ErrorInfo struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

type MetaInfo struct {
	Page       int `json:"page,omitempty"`
	PerPage    int `json:"per_page,omitempty"`
	TotalPages int `json:"total_pages"`
	TotalItems int `json:"total_items"`
}

func newMeta(page, perPage, totalItems int) *MetaInfo {
	meta := &MetaInfo{Page: page, PerPage: perPage, TotalItems: totalItems}
	if perPage > 0 {
		meta.TotalPages = (totalItems + perPage - 1) / perPage
	}
	return meta
}

// write stamps the correlation id and serialises the envelope.
func write(c *gin.Context, status int, resp *Response) {
	resp.CorrelationID = middleware.GetCorrelationID(c)
	c.JSON(status, resp)
}

func RespondWithData(c *gin.Context, statusCode int, data interface{}) {
	write(c, statusCode, &Response{Data: data})
}

// RespondWithPaginatedData adds page metadata computed from totalItems.
func RespondWithPaginatedData(c *gin.Context, statusCode int, data interface{}, page, perPage, totalItems int) {
	write(c, statusCode, &Response{Data: data, Meta: newMeta(page, perPage, totalItems)})
}

func RespondOK(c *gin.Context, data interface{}) {
	RespondWithData(c, http.StatusOK, data)
}

func RespondCreated(c *gin.Context, data interface{}) {
	RespondWithData(c, http.StatusCreated, data)
}

func RespondNoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// RespondBadRequest is for malformed input caught before the ledger runs.
func RespondBadRequest(c *gin.Context, message string) {
	write(c, http.StatusBadRequest, &Response{
		Error: &ErrorInfo{Code: string(shared.KindValidation), Message: message},
	})
}

func statusFor(kind shared.ErrorKind) int {
	switch kind {
	case shared.KindValidation:
		return http.StatusBadRequest
	case shared.KindNotFound:
		return http.StatusNotFound
	case shared.KindConflict:
		return http.StatusConflict
	case shared.KindState:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// RespondError maps err onto the envelope. Ledger errors keep their kind,
// message and identifiers; anything else is logged and hidden behind a 500.
func RespondError(c *gin.Context, logger *slog.Logger, op string, err error) {
	log := logger.With("operation", op, "correlation_id", middleware.GetCorrelationID(c))

	var ledgerErr *shared.Error
	if !errors.As(err, &ledgerErr) {
		log.Error("Request failed", "error", err)
		_ = c.Error(err)
		write(c, http.StatusInternalServerError, &Response{
			Error: &ErrorInfo{Code: internalCode, Message: "An internal server error occurred"},
		})
		return
	}

	log.Warn("Request rejected", "kind", ledgerErr.Kind, "error", err)
	write(c, statusFor(ledgerErr.Kind), &Response{
		Error: &ErrorInfo{
			Code:    string(ledgerErr.Kind),
			Message: ledgerErr.Message,
			Details: ledgerErr.Identifiers,
		},
	})
}
