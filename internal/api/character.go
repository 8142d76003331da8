package api

import (
	"net/http"

	"github.com/kiyo9w/Imacall-backend/internal/models"
	"github.com/kiyo9w/Imacall-backend/internal/service"
	"github.com/kiyo9w/Imacall-backend/pkg/logger"

	"github.com/gin-gonic/gin"
)

// CharacterHandler handles public discovery and creator-owned character
// endpoints
type CharacterHandler struct {
	service *service.CharacterService
	logger  *logger.Logger
}

// NewCharacterHandler creates a new character handler
func NewCharacterHandler(service *service.CharacterService, logger *logger.Logger) *CharacterHandler {
	return &CharacterHandler{
		service: service,
		logger:  logger,
	}
}

// List returns approved public characters with search, filter and sort
func (h *CharacterHandler) List(c *gin.Context) {
	skip, limit := pagination(c)

	characters, count, err := h.service.ListPublic(service.ListCharactersParams{
		Search:   c.Query("search"),
		Category: c.Query("category"),
		SortBy:   service.SortOption(c.Query("sort_by")),
		Skip:     skip,
		Limit:    limit,
	})
	if err != nil {
		h.logger.Error("Error listing characters", "error", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list characters"})
		return
	}

	data := make([]models.CharacterResponse, 0, len(characters))
	for i := range characters {
		data = append(data, characters[i].ToResponse())
	}

	c.JSON(http.StatusOK, gin.H{"data": data, "count": count})
}

// Categories returns the distinct categories of approved public characters
func (h *CharacterHandler) Categories(c *gin.Context) {
	categories, err := h.service.Categories()
	if err != nil {
		h.logger.Error("Error listing categories", "error", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list categories"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": categories})
}

// Get returns one approved public character
func (h *CharacterHandler) Get(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	character, err := h.service.GetPublicByID(id)
	if err != nil {
		switch err {
		case service.ErrCharacterNotFound:
			c.JSON(http.StatusNotFound, gin.H{"error": "Character not found"})
		default:
			h.logger.Error("Error getting character", "error", err.Error())
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve character"})
		}
		return
	}

	c.JSON(http.StatusOK, character.ToResponse())
}

// Submit creates a new character pending review
func (h *CharacterHandler) Submit(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req models.CreateCharacterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Error binding JSON for character submission", "error", err.Error())
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	character, err := h.service.Submit(userID, &req)
	if err != nil {
		h.logger.Error("Error submitting character", "error", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to submit character"})
		return
	}

	h.logger.Info("Character submitted for review",
		"characterID", character.ID,
		"creatorID", userID,
	)

	c.JSON(http.StatusCreated, character.ToDetailResponse())
}

// MySubmissions lists the current user's characters in every review state
func (h *CharacterHandler) MySubmissions(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	skip, limit := pagination(c)
	characters, count, err := h.service.List(service.ListCharactersParams{
		CreatorID: userID,
		SortBy:    service.SortMostRecent,
		Skip:      skip,
		Limit:     limit,
	})
	if err != nil {
		h.logger.Error("Error listing submissions", "error", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list submissions"})
		return
	}

	data := make([]models.CharacterDetailResponse, 0, len(characters))
	for i := range characters {
		data = append(data, characters[i].ToDetailResponse())
	}

	c.JSON(http.StatusOK, gin.H{"data": data, "count": count})
}

// GetMySubmission returns one of the current user's characters, any status
func (h *CharacterHandler) GetMySubmission(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	character, err := h.service.GetOwned(id, userID)
	if err != nil {
		h.respondOwnershipError(c, err)
		return
	}

	c.JSON(http.StatusOK, character.ToDetailResponse())
}

// UpdateMySubmission edits one of the current user's characters
func (h *CharacterHandler) UpdateMySubmission(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req models.UpdateCharacterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	character, err := h.service.UpdateOwn(id, userID, &req)
	if err != nil {
		h.respondOwnershipError(c, err)
		return
	}

	c.JSON(http.StatusOK, character.ToDetailResponse())
}

// DeleteMySubmission removes one of the current user's characters
func (h *CharacterHandler) DeleteMySubmission(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(id, userID); err != nil {
		h.respondOwnershipError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *CharacterHandler) respondOwnershipError(c *gin.Context, err error) {
	switch err {
	case service.ErrCharacterNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": "Character not found"})
	case service.ErrNotCharacterOwner:
		c.JSON(http.StatusForbidden, gin.H{"error": "Not authorized to access this character"})
	default:
		h.logger.Error("Character operation failed", "error", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Character operation failed"})
	}
}
