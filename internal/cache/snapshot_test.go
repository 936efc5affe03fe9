package cache

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vlasenko/contacts_api/internal/models"
)

// The Redis adapter stores users through this codec; the round trip must
// preserve the fields models.User hides from API JSON.
func TestUserSnapshot_RoundTripKeepsHiddenFields(t *testing.T) {
	t.Parallel()

	user := &models.User{
		ID:           7,
		Username:     "Roy Bebru",
		Email:        "roybebru@gmail.com",
		PasswordHash: "$2a$10$hash",
		CreatedAt:    time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		Avatar:       "https://www.gravatar.com/avatar/abc",
		RefreshToken: "stored-refresh",
		Confirmed:    true,
	}

	data, err := encodeUser(user)
	require.NoError(t, err)

	got, err := decodeUser(data)
	require.NoError(t, err)
	assert.Equal(t, user, got)

	// The encoded form carries the credential fields the model's own JSON
	// tags strip.
	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "$2a$10$hash", raw["password_hash"])
	assert.Equal(t, "stored-refresh", raw["refresh_token"])
}

func TestUserSnapshot_DecodeRejectsGarbage(t *testing.T) {
	t.Parallel()

	_, err := decodeUser([]byte("{not json"))
	assert.Error(t, err)
}
