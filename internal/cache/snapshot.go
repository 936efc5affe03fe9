package cache

import (
	"encoding/json"
	"time"

	"github.com/vlasenko/contacts_api/internal/models"
)

// userSnapshot is the cached wire form of a user row. models.User hides
// PasswordHash and RefreshToken from API responses with json:"-", but the
// cache must carry the full row or a cache hit would hand back a different
// record than the store holds.
type userSnapshot struct {
	ID           uint      `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
	Avatar       string    `json:"avatar"`
	RefreshToken string    `json:"refresh_token"`
	Confirmed    bool      `json:"confirmed"`
}

func encodeUser(user *models.User) ([]byte, error) {
	return json.Marshal(userSnapshot{
		ID:           user.ID,
		Username:     user.Username,
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
		CreatedAt:    user.CreatedAt,
		Avatar:       user.Avatar,
		RefreshToken: user.RefreshToken,
		Confirmed:    user.Confirmed,
	})
}

func decodeUser(data []byte) (*models.User, error) {
	var snap userSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, err
	}
	return &models.User{
		ID:           snap.ID,
		Username:     snap.Username,
		Email:        snap.Email,
		PasswordHash: snap.PasswordHash,
		CreatedAt:    snap.CreatedAt,
		Avatar:       snap.Avatar,
		RefreshToken: snap.RefreshToken,
		Confirmed:    snap.Confirmed,
	}, nil
}
