package handler

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/htbacgiang/ecobacgiangBE/internal/api/service"
)

// AssetHandler handles HTTP requests for the fixed asset register
type AssetHandler struct {
	assetService service.AssetService
	logger       *slog.Logger
}

// NewAssetHandler creates a new asset handler
func NewAssetHandler(logger *slog.Logger, assetService service.AssetService) *AssetHandler {
	return &AssetHandler{
		assetService: assetService,
		logger:       logger,
	}
}

func (h *AssetHandler) List(c *gin.Context) {
	assets, err := h.assetService.List(c.Request.Context())
	if err != nil {
		RespondError(c, h.logger, "list_assets", err)
		return
	}
	RespondOK(c, assets)
}

func (h *AssetHandler) Create(c *gin.Context) {
	var req CreateAssetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	acquired, err := parseOptionalDate("acquired_at", req.AcquiredAt)
	if err != nil {
		RespondError(c, h.logger, "create_asset", err)
		return
	}

	in := service.RegisterAssetInput{
		Code:             req.Code,
		Name:             req.Name,
		OriginalCost:     req.OriginalCost,
		UsefulLifeMonths: req.UsefulLifeMonths,
	}
	if acquired != nil {
		in.AcquiredAt = *acquired
	}

	fa, err := h.assetService.Register(c.Request.Context(), in)
	if err != nil {
		RespondError(c, h.logger, "create_asset", err)
		return
	}
	RespondCreated(c, fa)
}
