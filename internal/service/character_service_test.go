package service

import (
	"testing"

	"github.com/kiyo9w/Imacall-backend/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmitCharacterStartsPending(t *testing.T) {
	db := testDB(t)
	svc := NewCharacterService(db, testCache())
	user := createUser(t, db, "creator@example.com")

	character, err := svc.Submit(user.ID, &models.CreateCharacterRequest{
		Name:        "Nova",
		Description: "A starship navigator",
		Tags:        models.TagList{"space", "adventure"},
	})

	require.NoError(t, err)
	assert.Equal(t, models.CharacterStatusPending, character.Status)
	assert.Equal(t, user.ID, character.CreatorID)
	assert.True(t, character.IsPublic)
}

func TestListPublicOnlyApprovedPublic(t *testing.T) {
	db := testDB(t)
	svc := NewCharacterService(db, testCache())
	user := createUser(t, db, "creator@example.com")

	createCharacter(t, db, user.ID, models.CharacterStatusApproved)
	createCharacter(t, db, user.ID, models.CharacterStatusPending)
	createCharacter(t, db, user.ID, models.CharacterStatusRejected)
	createCharacter(t, db, user.ID, models.CharacterStatusApproved, func(c *models.Character) {
		c.IsPublic = false
	})

	characters, count, err := svc.ListPublic(ListCharactersParams{})

	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
	require.Len(t, characters, 1)
	assert.Equal(t, models.CharacterStatusApproved, characters[0].Status)
}

func TestListSearchMatchesAcrossFields(t *testing.T) {
	db := testDB(t)
	svc := NewCharacterService(db, testCache())
	user := createUser(t, db, "creator@example.com")

	createCharacter(t, db, user.ID, models.CharacterStatusApproved, func(c *models.Character) {
		c.Name = "Captain Vex"
		c.Description = "Smuggler with a heart of gold"
	})
	createCharacter(t, db, user.ID, models.CharacterStatusApproved, func(c *models.Character) {
		c.Name = "Oracle"
		c.PersonalityTraits = "cryptic, gold-tongued"
	})
	createCharacter(t, db, user.ID, models.CharacterStatusApproved, func(c *models.Character) {
		c.Name = "Blacksmith"
		c.Description = "Forges iron"
	})

	characters, count, err := svc.ListPublic(ListCharactersParams{Search: "Gold"})

	require.NoError(t, err)
	assert.EqualValues(t, 2, count)
	assert.Len(t, characters, 2)
}

func TestListSortByName(t *testing.T) {
	db := testDB(t)
	svc := NewCharacterService(db, testCache())
	user := createUser(t, db, "creator@example.com")

	createCharacter(t, db, user.ID, models.CharacterStatusApproved, func(c *models.Character) { c.Name = "Zelda" })
	createCharacter(t, db, user.ID, models.CharacterStatusApproved, func(c *models.Character) { c.Name = "Alba" })
	createCharacter(t, db, user.ID, models.CharacterStatusApproved, func(c *models.Character) { c.Name = "Mara" })

	characters, _, err := svc.ListPublic(ListCharactersParams{SortBy: SortNameAsc})

	require.NoError(t, err)
	require.Len(t, characters, 3)
	assert.Equal(t, "Alba", characters[0].Name)
	assert.Equal(t, "Zelda", characters[2].Name)
}

func TestListSortMostPopularDefault(t *testing.T) {
	db := testDB(t)
	svc := NewCharacterService(db, testCache())
	user := createUser(t, db, "creator@example.com")

	createCharacter(t, db, user.ID, models.CharacterStatusApproved, func(c *models.Character) {
		c.Name = "Quiet"
		c.PopularityScore = 1
	})
	createCharacter(t, db, user.ID, models.CharacterStatusApproved, func(c *models.Character) {
		c.Name = "Famous"
		c.PopularityScore = 50
	})

	characters, _, err := svc.ListPublic(ListCharactersParams{})

	require.NoError(t, err)
	require.Len(t, characters, 2)
	assert.Equal(t, "Famous", characters[0].Name)
}

func TestCategories(t *testing.T) {
	db := testDB(t)
	svc := NewCharacterService(db, testCache())
	user := createUser(t, db, "creator@example.com")

	createCharacter(t, db, user.ID, models.CharacterStatusApproved, func(c *models.Character) { c.Category = "fantasy" })
	createCharacter(t, db, user.ID, models.CharacterStatusApproved, func(c *models.Character) { c.Category = "sci-fi" })
	createCharacter(t, db, user.ID, models.CharacterStatusApproved, func(c *models.Character) { c.Category = "sci-fi" })
	createCharacter(t, db, user.ID, models.CharacterStatusPending, func(c *models.Character) { c.Category = "hidden" })

	categories, err := svc.Categories()

	require.NoError(t, err)
	assert.Equal(t, []string{"fantasy", "sci-fi"}, categories)
}

func TestGetPublicByIDHidesUnapproved(t *testing.T) {
	db := testDB(t)
	svc := NewCharacterService(db, testCache())
	user := createUser(t, db, "creator@example.com")

	pending := createCharacter(t, db, user.ID, models.CharacterStatusPending)
	private := createCharacter(t, db, user.ID, models.CharacterStatusApproved, func(c *models.Character) {
		c.IsPublic = false
	})
	approved := createCharacter(t, db, user.ID, models.CharacterStatusApproved)

	_, err := svc.GetPublicByID(pending.ID)
	assert.ErrorIs(t, err, ErrCharacterNotFound)

	_, err = svc.GetPublicByID(private.ID)
	assert.ErrorIs(t, err, ErrCharacterNotFound)

	found, err := svc.GetPublicByID(approved.ID)
	require.NoError(t, err)
	assert.Equal(t, approved.ID, found.ID)
}

func TestUpdateOwnRequiresOwnership(t *testing.T) {
	db := testDB(t)
	svc := NewCharacterService(db, testCache())
	owner := createUser(t, db, "owner@example.com")
	other := createUser(t, db, "other@example.com")

	character := createCharacter(t, db, owner.ID, models.CharacterStatusPending)

	newName := "Renamed"
	_, err := svc.UpdateOwn(character.ID, other.ID, &models.UpdateCharacterRequest{Name: &newName})
	assert.ErrorIs(t, err, ErrNotCharacterOwner)

	updated, err := svc.UpdateOwn(character.ID, owner.ID, &models.UpdateCharacterRequest{Name: &newName})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)
}

func TestUpdateOwnCannotFeature(t *testing.T) {
	db := testDB(t)
	svc := NewCharacterService(db, testCache())
	owner := createUser(t, db, "owner@example.com")
	character := createCharacter(t, db, owner.ID, models.CharacterStatusApproved)

	featured := true
	updated, err := svc.UpdateOwn(character.ID, owner.ID, &models.UpdateCharacterRequest{IsFeatured: &featured})

	require.NoError(t, err)
	assert.False(t, updated.IsFeatured)
}

func TestApproveOnlyFromPending(t *testing.T) {
	db := testDB(t)
	svc := NewCharacterService(db, testCache())
	user := createUser(t, db, "creator@example.com")

	pending := createCharacter(t, db, user.ID, models.CharacterStatusPending)

	approved, err := svc.Approve(pending.ID, "looks good")
	require.NoError(t, err)
	assert.Equal(t, models.CharacterStatusApproved, approved.Status)
	assert.Equal(t, "looks good", approved.AdminFeedback)

	// Approving again is rejected: the character is no longer pending
	_, err = svc.Approve(pending.ID, "")
	assert.ErrorIs(t, err, ErrCharacterNotPending)
}

func TestRejectOnlyFromPending(t *testing.T) {
	db := testDB(t)
	svc := NewCharacterService(db, testCache())
	user := createUser(t, db, "creator@example.com")

	rejected := createCharacter(t, db, user.ID, models.CharacterStatusRejected)

	_, err := svc.Reject(rejected.ID, "still no")
	assert.ErrorIs(t, err, ErrCharacterNotPending)

	pending := createCharacter(t, db, user.ID, models.CharacterStatusPending)
	reviewed, err := svc.Reject(pending.ID, "too sparse")
	require.NoError(t, err)
	assert.Equal(t, models.CharacterStatusRejected, reviewed.Status)
	assert.Equal(t, "too sparse", reviewed.AdminFeedback)
}

func TestDeleteOwnershipCheck(t *testing.T) {
	db := testDB(t)
	svc := NewCharacterService(db, testCache())
	owner := createUser(t, db, "owner@example.com")
	other := createUser(t, db, "other@example.com")

	character := createCharacter(t, db, owner.ID, models.CharacterStatusPending)

	err := svc.Delete(character.ID, other.ID)
	assert.ErrorIs(t, err, ErrNotCharacterOwner)

	// Admin path skips the ownership check
	require.NoError(t, svc.Delete(character.ID, uuid.Nil))

	_, err = svc.GetByID(character.ID)
	assert.ErrorIs(t, err, ErrCharacterNotFound)
}

func TestIncrementPopularity(t *testing.T) {
	db := testDB(t)
	svc := NewCharacterService(db, testCache())
	user := createUser(t, db, "creator@example.com")
	character := createCharacter(t, db, user.ID, models.CharacterStatusApproved)

	require.NoError(t, svc.IncrementPopularity(character.ID))
	require.NoError(t, svc.IncrementPopularity(character.ID))

	found, err := svc.GetByID(character.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, found.PopularityScore)
}

func TestGetPublicByIDUsesCacheAfterFirstRead(t *testing.T) {
	db := testDB(t)
	c := testCache()
	svc := NewCharacterService(db, c)
	user := createUser(t, db, "creator@example.com")
	character := createCharacter(t, db, user.ID, models.CharacterStatusApproved)

	_, err := svc.GetPublicByID(character.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, c.Count())

	// Review invalidates the cached entry
	_, err = svc.Update(character.ID, &models.UpdateCharacterRequest{})
	require.NoError(t, err)
	assert.Equal(t, 0, c.Count())
}
