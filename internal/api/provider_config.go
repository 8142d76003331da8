package api

import (
	"net/http"

	"github.com/kiyo9w/Imacall-backend/ai"
	"github.com/kiyo9w/Imacall-backend/pkg/logger"

	"github.com/gin-gonic/gin"
)

// ProviderConfigHandler exposes the admin surface for selecting the active
// AI provider
type ProviderConfigHandler struct {
	registry *ai.Registry
	logger   *logger.Logger
}

// NewProviderConfigHandler creates a new provider config handler
func NewProviderConfigHandler(registry *ai.Registry, logger *logger.Logger) *ProviderConfigHandler {
	return &ProviderConfigHandler{
		registry: registry,
		logger:   logger,
	}
}

// Available lists the providers with usable credentials
func (h *ProviderConfigHandler) Available(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"providers": h.registry.Available()})
}

// Active returns the currently selected provider
func (h *ProviderConfigHandler) Active(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"active_provider": h.registry.Active()})
}

// SetActive switches the active provider. The name comes from the
// provider_name query parameter or a JSON body. Unknown names are rejected
// and leave the selection unchanged.
func (h *ProviderConfigHandler) SetActive(c *gin.Context) {
	name := c.Query("provider_name")
	if name == "" {
		var req struct {
			ActiveProvider string `json:"active_provider" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "provider_name is required"})
			return
		}
		name = req.ActiveProvider
	}

	if err := h.registry.SetActive(c.Request.Context(), name); err != nil {
		switch err {
		case ai.ErrUnknownProvider:
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Unknown provider: " + name,
				"code":  "UNKNOWN_PROVIDER",
			})
		default:
			h.logger.Error("Error switching provider", "error", err.Error())
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to switch provider"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"active_provider": h.registry.Active()})
}
