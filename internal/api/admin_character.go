package api

import (
	"net/http"

	"github.com/kiyo9w/Imacall-backend/internal/models"
	"github.com/kiyo9w/Imacall-backend/internal/service"
	"github.com/kiyo9w/Imacall-backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AdminCharacterHandler handles the admin review surface for characters
type AdminCharacterHandler struct {
	service *service.CharacterService
	logger  *logger.Logger
}

// NewAdminCharacterHandler creates a new admin character handler
func NewAdminCharacterHandler(service *service.CharacterService, logger *logger.Logger) *AdminCharacterHandler {
	return &AdminCharacterHandler{
		service: service,
		logger:  logger,
	}
}

// List returns characters in any review state, optionally filtered by status
func (h *AdminCharacterHandler) List(c *gin.Context) {
	skip, limit := pagination(c)

	characters, count, err := h.service.List(service.ListCharactersParams{
		Search:   c.Query("search"),
		Category: c.Query("category"),
		Status:   models.CharacterStatus(c.Query("status")),
		SortBy:   service.SortOption(c.Query("sort_by")),
		Skip:     skip,
		Limit:    limit,
	})
	if err != nil {
		h.logger.Error("Error listing characters for admin", "error", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list characters"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": detailResponses(characters), "count": count})
}

// Pending returns the review queue, oldest submissions first
func (h *AdminCharacterHandler) Pending(c *gin.Context) {
	skip, limit := pagination(c)

	characters, count, err := h.service.List(service.ListCharactersParams{
		Status: models.CharacterStatusPending,
		SortBy: service.SortOldest,
		Skip:   skip,
		Limit:  limit,
	})
	if err != nil {
		h.logger.Error("Error listing pending characters", "error", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list pending characters"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": detailResponses(characters), "count": count})
}

// Get returns a character regardless of status, including moderation fields
func (h *AdminCharacterHandler) Get(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	character, err := h.service.GetByID(id)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, character.ToDetailResponse())
}

// Update applies an admin edit to any character
func (h *AdminCharacterHandler) Update(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req models.UpdateCharacterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	character, err := h.service.Update(id, &req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, character.ToDetailResponse())
}

// Approve approves a pending character submission
func (h *AdminCharacterHandler) Approve(c *gin.Context) {
	h.review(c, h.service.Approve)
}

// Reject rejects a pending character submission
func (h *AdminCharacterHandler) Reject(c *gin.Context) {
	h.review(c, h.service.Reject)
}

func (h *AdminCharacterHandler) review(c *gin.Context, fn func(id uuid.UUID, feedback string) (*models.Character, error)) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	// Feedback body is optional
	var req models.ReviewCharacterRequest
	_ = c.ShouldBindJSON(&req)

	character, err := fn(id, req.AdminFeedback)
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.logger.Info("Character reviewed",
		"characterID", character.ID,
		"status", character.Status,
	)

	c.JSON(http.StatusOK, character.ToDetailResponse())
}

// Delete removes any character
func (h *AdminCharacterHandler) Delete(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(id, uuid.Nil); err != nil {
		h.respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *AdminCharacterHandler) respondError(c *gin.Context, err error) {
	switch err {
	case service.ErrCharacterNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": "Character not found"})
	case service.ErrCharacterNotPending:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Character is not pending approval"})
	default:
		h.logger.Error("Admin character operation failed", "error", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Character operation failed"})
	}
}

func detailResponses(characters []models.Character) []models.CharacterDetailResponse {
	data := make([]models.CharacterDetailResponse, 0, len(characters))
	for i := range characters {
		data = append(data, characters[i].ToDetailResponse())
	}
	return data
}
