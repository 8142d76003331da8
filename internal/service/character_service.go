package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/kiyo9w/Imacall-backend/internal/models"
	"github.com/kiyo9w/Imacall-backend/pkg/cache"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrCharacterNotFound   = errors.New("character not found")
	ErrNotCharacterOwner   = errors.New("user does not own this character")
	ErrCharacterNotPending = errors.New("character is not pending approval")
)

// SortOption orders character listings
type SortOption string

const (
	SortMostPopular  SortOption = "most_popular"
	SortMostRecent   SortOption = "most_recent"
	SortHighestRated SortOption = "highest_rated"
	SortNameAsc      SortOption = "name_asc"
	SortNameDesc     SortOption = "name_desc"
	SortOldest       SortOption = "oldest"
)

// ListCharactersParams filters and orders a character listing
type ListCharactersParams struct {
	Search    string
	Category  string
	Status    models.CharacterStatus
	CreatorID uuid.UUID
	SortBy    SortOption
	Skip      int
	Limit     int
}

// CharacterService handles character submission, discovery and review
type CharacterService struct {
	db    *gorm.DB
	cache *cache.Cache
}

// NewCharacterService creates a new character service. The cache is optional
// and only fronts approved-character lookups.
func NewCharacterService(db *gorm.DB, c *cache.Cache) *CharacterService {
	return &CharacterService{db: db, cache: c}
}

// Submit creates a new character owned by creatorID, always pending review
func (s *CharacterService) Submit(creatorID uuid.UUID, req *models.CreateCharacterRequest) (*models.Character, error) {
	character := models.Character{
		CreatorID:         creatorID,
		Name:              req.Name,
		Description:       req.Description,
		ImageURL:          req.ImageURL,
		GreetingMessage:   req.GreetingMessage,
		Scenario:          req.Scenario,
		Category:          req.Category,
		Language:          req.Language,
		Tags:              req.Tags,
		VoiceID:           req.VoiceID,
		PersonalityTraits: req.PersonalityTraits,
		WritingStyle:      req.WritingStyle,
		Background:        req.Background,
		KnowledgeScope:    req.KnowledgeScope,
		Quirks:            req.Quirks,
		EmotionalRange:    req.EmotionalRange,
		FallbackResponse:  req.FallbackResponse,
		Status:            models.CharacterStatusPending,
		IsPublic:          true,
	}
	if req.IsPublic != nil {
		character.IsPublic = *req.IsPublic
	}

	if err := s.db.Create(&character).Error; err != nil {
		return nil, err
	}

	return &character, nil
}

// List returns characters matching the given filters plus the total count
// before pagination
func (s *CharacterService) List(params ListCharactersParams) ([]models.Character, int64, error) {
	query := s.db.Model(&models.Character{})

	if params.Status != "" {
		query = query.Where("status = ?", params.Status)
	}
	if params.CreatorID != uuid.Nil {
		query = query.Where("creator_id = ?", params.CreatorID)
	}
	if search := trimmed(params.Search); search != "" {
		term := "%" + search + "%"
		query = query.Where(
			"LOWER(name) LIKE LOWER(?) OR LOWER(description) LIKE LOWER(?) OR LOWER(category) LIKE LOWER(?) OR LOWER(tags) LIKE LOWER(?) OR LOWER(personality_traits) LIKE LOWER(?) OR LOWER(scenario) LIKE LOWER(?)",
			term, term, term, term, term, term,
		)
	}
	if category := trimmed(params.Category); category != "" && category != "all" {
		query = query.Where("LOWER(category) LIKE LOWER(?)", "%"+category+"%")
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return nil, 0, err
	}

	switch params.SortBy {
	case SortMostRecent:
		query = query.Order("created_at DESC")
	case SortHighestRated:
		query = query.Order("popularity_score DESC")
	case SortNameAsc:
		query = query.Order("name ASC")
	case SortNameDesc:
		query = query.Order("name DESC")
	case SortOldest:
		query = query.Order("created_at ASC")
	default:
		// most_popular
		query = query.Order("popularity_score DESC, created_at DESC")
	}

	if params.Skip > 0 {
		query = query.Offset(params.Skip)
	}
	limit := params.Limit
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	query = query.Limit(limit)

	var characters []models.Character
	if err := query.Find(&characters).Error; err != nil {
		return nil, 0, err
	}

	return characters, count, nil
}

// ListPublic returns approved public characters
func (s *CharacterService) ListPublic(params ListCharactersParams) ([]models.Character, int64, error) {
	params.Status = models.CharacterStatusApproved
	scoped := &CharacterService{db: s.db.Where("is_public = ?", true), cache: s.cache}
	return scoped.List(params)
}

// Categories returns the distinct non-empty categories of approved public
// characters
func (s *CharacterService) Categories() ([]string, error) {
	var categories []string
	err := s.db.Model(&models.Character{}).
		Where("status = ? AND is_public = ? AND category <> ''", models.CharacterStatusApproved, true).
		Distinct().
		Order("category ASC").
		Pluck("category", &categories).Error
	if err != nil {
		return nil, err
	}
	return categories, nil
}

// GetByID returns a character regardless of status
func (s *CharacterService) GetByID(id uuid.UUID) (*models.Character, error) {
	var character models.Character
	result := s.db.First(&character, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrCharacterNotFound
		}
		return nil, result.Error
	}
	return &character, nil
}

// GetPublicByID returns an approved public character. Unapproved or private
// characters are reported as not found so their existence does not leak.
func (s *CharacterService) GetPublicByID(id uuid.UUID) (*models.Character, error) {
	if s.cache != nil {
		if cached, ok := s.cache.Get(characterCacheKey(id)); ok {
			if character, ok := cached.(*models.Character); ok {
				return character, nil
			}
		}
	}

	character, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	if character.Status != models.CharacterStatusApproved || !character.IsPublic {
		return nil, ErrCharacterNotFound
	}

	if s.cache != nil {
		s.cache.Set(characterCacheKey(id), character)
	}

	return character, nil
}

// GetOwned returns a character only when userID created it
func (s *CharacterService) GetOwned(id, userID uuid.UUID) (*models.Character, error) {
	character, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	if character.CreatorID != userID {
		return nil, ErrNotCharacterOwner
	}
	return character, nil
}

// UpdateOwn lets a creator edit their own character's content fields.
// Review state and featuring are admin-only and ignored here.
func (s *CharacterService) UpdateOwn(id, userID uuid.UUID, req *models.UpdateCharacterRequest) (*models.Character, error) {
	character, err := s.GetOwned(id, userID)
	if err != nil {
		return nil, err
	}

	req.IsFeatured = nil
	return s.applyUpdate(character, req)
}

// Update applies an admin edit, including featuring
func (s *CharacterService) Update(id uuid.UUID, req *models.UpdateCharacterRequest) (*models.Character, error) {
	character, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	return s.applyUpdate(character, req)
}

func (s *CharacterService) applyUpdate(character *models.Character, req *models.UpdateCharacterRequest) (*models.Character, error) {
	updates := map[string]interface{}{}

	setString := func(column string, v *string) {
		if v != nil {
			updates[column] = *v
		}
	}

	setString("name", req.Name)
	setString("description", req.Description)
	setString("image_url", req.ImageURL)
	setString("greeting_message", req.GreetingMessage)
	setString("scenario", req.Scenario)
	setString("category", req.Category)
	setString("language", req.Language)
	setString("voice_id", req.VoiceID)
	setString("personality_traits", req.PersonalityTraits)
	setString("writing_style", req.WritingStyle)
	setString("background", req.Background)
	setString("knowledge_scope", req.KnowledgeScope)
	setString("quirks", req.Quirks)
	setString("emotional_range", req.EmotionalRange)
	setString("fallback_response", req.FallbackResponse)

	if req.Tags != nil {
		updates["tags"] = *req.Tags
	}
	if req.IsPublic != nil {
		updates["is_public"] = *req.IsPublic
	}
	if req.IsFeatured != nil {
		updates["is_featured"] = *req.IsFeatured
	}

	if len(updates) > 0 {
		if err := s.db.Model(character).Updates(updates).Error; err != nil {
			return nil, err
		}
	}

	s.invalidate(character.ID)

	return s.GetByID(character.ID)
}

// Approve moves a pending character to approved. Only pending characters
// can be reviewed.
func (s *CharacterService) Approve(id uuid.UUID, feedback string) (*models.Character, error) {
	return s.review(id, models.CharacterStatusApproved, feedback)
}

// Reject moves a pending character to rejected
func (s *CharacterService) Reject(id uuid.UUID, feedback string) (*models.Character, error) {
	return s.review(id, models.CharacterStatusRejected, feedback)
}

func (s *CharacterService) review(id uuid.UUID, status models.CharacterStatus, feedback string) (*models.Character, error) {
	character, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	if character.Status != models.CharacterStatusPending {
		return nil, ErrCharacterNotPending
	}

	updates := map[string]interface{}{"status": status}
	if feedback != "" {
		updates["admin_feedback"] = feedback
	}

	if err := s.db.Model(character).Updates(updates).Error; err != nil {
		return nil, err
	}

	s.invalidate(id)

	return s.GetByID(id)
}

// Delete removes a character. When userID is non-nil the caller must be the
// creator; admins pass uuid.Nil to skip the ownership check.
func (s *CharacterService) Delete(id, userID uuid.UUID) error {
	character, err := s.GetByID(id)
	if err != nil {
		return err
	}
	if userID != uuid.Nil && character.CreatorID != userID {
		return ErrNotCharacterOwner
	}

	if err := s.db.Delete(&models.Character{}, "id = ?", id).Error; err != nil {
		return err
	}

	s.invalidate(id)

	return nil
}

// IncrementPopularity bumps a character's popularity score, called when a
// new conversation starts with it
func (s *CharacterService) IncrementPopularity(id uuid.UUID) error {
	err := s.db.Model(&models.Character{}).
		Where("id = ?", id).
		UpdateColumn("popularity_score", gorm.Expr("popularity_score + 1")).Error
	if err != nil {
		return err
	}
	s.invalidate(id)
	return nil
}

func (s *CharacterService) invalidate(id uuid.UUID) {
	if s.cache != nil {
		s.cache.Delete(characterCacheKey(id))
	}
}

func characterCacheKey(id uuid.UUID) string {
	return fmt.Sprintf("character:%s", id)
}

func trimmed(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
