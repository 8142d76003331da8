package api

import (
	"net/http"
	"testing"

	"github.com/kiyo9w/Imacall-backend/internal/models"
	"github.com/kiyo9w/Imacall-backend/pkg/jwt"

	"github.com/stretchr/testify/require"
)

func TestPublicListOnlyShowsApprovedCharacters(t *testing.T) {
	env := newTestEnv(t)
	creator, _ := env.newUser(t, "creator@example.com", jwt.RoleUser)

	env.newCharacter(t, creator.ID, models.CharacterStatusApproved)
	env.newCharacter(t, creator.ID, models.CharacterStatusPending, func(ch *models.Character) {
		ch.Name = "Pending One"
	})
	env.newCharacter(t, creator.ID, models.CharacterStatusApproved, func(ch *models.Character) {
		ch.Name = "Hidden One"
		ch.IsPublic = false
	})

	rec := env.do(t, http.MethodGet, "/api/v1/characters", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	payload := decodeJSON(t, rec)
	require.EqualValues(t, 1, payload["count"])
	data := payload["data"].([]interface{})
	require.Len(t, data, 1)
	require.Equal(t, "Nova", data[0].(map[string]interface{})["name"])
}

func TestGetCharacterHidesUnapproved(t *testing.T) {
	env := newTestEnv(t)
	creator, _ := env.newUser(t, "creator@example.com", jwt.RoleUser)

	approved := env.newCharacter(t, creator.ID, models.CharacterStatusApproved)
	pending := env.newCharacter(t, creator.ID, models.CharacterStatusPending)

	rec := env.do(t, http.MethodGet, "/api/v1/characters/"+approved.ID.String(), "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// Unapproved characters look like they do not exist
	rec = env.do(t, http.MethodGet, "/api/v1/characters/"+pending.ID.String(), "", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSubmitCharacter(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.newUser(t, "creator@example.com", jwt.RoleUser)

	rec := env.do(t, http.MethodPost, "/api/v1/characters/submit", token, map[string]interface{}{
		"name":             "Captain Vega",
		"description":      "A starship captain",
		"greeting_message": "Welcome aboard.",
		"category":         "sci-fi",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	payload := decodeJSON(t, rec)
	require.Equal(t, "Captain Vega", payload["name"])
	require.Equal(t, string(models.CharacterStatusPending), payload["status"])
}

func TestSubmitCharacterValidation(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.newUser(t, "creator@example.com", jwt.RoleUser)

	// Name is required
	rec := env.do(t, http.MethodPost, "/api/v1/characters/submit", token, map[string]interface{}{
		"description": "No name given",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMySubmissionsListsAllStatuses(t *testing.T) {
	env := newTestEnv(t)
	creator, token := env.newUser(t, "creator@example.com", jwt.RoleUser)
	other, _ := env.newUser(t, "other@example.com", jwt.RoleUser)

	env.newCharacter(t, creator.ID, models.CharacterStatusApproved)
	env.newCharacter(t, creator.ID, models.CharacterStatusPending)
	env.newCharacter(t, creator.ID, models.CharacterStatusRejected)
	env.newCharacter(t, other.ID, models.CharacterStatusApproved)

	rec := env.do(t, http.MethodGet, "/api/v1/characters/my-submissions", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	payload := decodeJSON(t, rec)
	require.EqualValues(t, 3, payload["count"])
}

func TestUpdateSubmissionOwnershipEnforced(t *testing.T) {
	env := newTestEnv(t)
	creator, _ := env.newUser(t, "creator@example.com", jwt.RoleUser)
	_, otherToken := env.newUser(t, "other@example.com", jwt.RoleUser)

	character := env.newCharacter(t, creator.ID, models.CharacterStatusPending)

	rec := env.do(t, http.MethodPut, "/api/v1/characters/my-submissions/"+character.ID.String(), otherToken, map[string]interface{}{
		"description": "hijacked",
	})
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAdminApproveAndRejectPendingOnly(t *testing.T) {
	env := newTestEnv(t)
	creator, _ := env.newUser(t, "creator@example.com", jwt.RoleUser)
	_, adminToken := env.newUser(t, "admin@example.com", jwt.RoleAdmin)

	character := env.newCharacter(t, creator.ID, models.CharacterStatusPending)
	path := "/api/v1/admin/characters/" + character.ID.String()

	rec := env.do(t, http.MethodPatch, path+"/approve", adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	payload := decodeJSON(t, rec)
	require.Equal(t, string(models.CharacterStatusApproved), payload["status"])

	// Approving twice fails because the character already left review
	rec = env.do(t, http.MethodPatch, path+"/approve", adminToken, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	payload = decodeJSON(t, rec)
	require.Equal(t, "Character is not pending approval", payload["error"])

	rec = env.do(t, http.MethodPatch, path+"/reject", adminToken, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdminRejectWithFeedback(t *testing.T) {
	env := newTestEnv(t)
	creator, _ := env.newUser(t, "creator@example.com", jwt.RoleUser)
	_, adminToken := env.newUser(t, "admin@example.com", jwt.RoleAdmin)

	character := env.newCharacter(t, creator.ID, models.CharacterStatusPending)

	rec := env.do(t, http.MethodPatch, "/api/v1/admin/characters/"+character.ID.String()+"/reject", adminToken, map[string]string{
		"admin_feedback": "The greeting needs work",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	payload := decodeJSON(t, rec)
	require.Equal(t, string(models.CharacterStatusRejected), payload["status"])
	require.Equal(t, "The greeting needs work", payload["admin_feedback"])
}

func TestAdminPendingQueue(t *testing.T) {
	env := newTestEnv(t)
	creator, _ := env.newUser(t, "creator@example.com", jwt.RoleUser)
	_, adminToken := env.newUser(t, "admin@example.com", jwt.RoleAdmin)

	env.newCharacter(t, creator.ID, models.CharacterStatusPending)
	env.newCharacter(t, creator.ID, models.CharacterStatusApproved)

	rec := env.do(t, http.MethodGet, "/api/v1/admin/characters/pending", adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	payload := decodeJSON(t, rec)
	require.EqualValues(t, 1, payload["count"])
}

func TestAdminDeleteCharacter(t *testing.T) {
	env := newTestEnv(t)
	creator, _ := env.newUser(t, "creator@example.com", jwt.RoleUser)
	_, adminToken := env.newUser(t, "admin@example.com", jwt.RoleAdmin)

	character := env.newCharacter(t, creator.ID, models.CharacterStatusApproved)

	rec := env.do(t, http.MethodDelete, "/api/v1/admin/characters/"+character.ID.String(), adminToken, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/v1/admin/characters/"+character.ID.String(), adminToken, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}
