package domain

import (
	"errors"
	"time"
)

// Common validation errors for User.
var (
	ErrEmptyOpenID = errors.New("user openid cannot be empty")
)

// User is the owner identity behind a reading task. The OpenID is issued
// by the hosting platform and arrives on a trusted header; a row is created
// on first contact and refreshed on later submissions.
type User struct {
	OpenID    string    `json:"openid"`
	Nickname  string    `json:"nickname,omitempty"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewUser creates a User record for a first-contact openid.
func NewUser(openID string) (*User, error) {
	if openID == "" {
		return nil, ErrEmptyOpenID
	}

	now := time.Now().UTC()
	return &User{
		OpenID:    openID,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}
