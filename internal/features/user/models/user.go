package models

import "time"

// User is the persisted chat identity linked to a Hubstaff account.
// The record is created lazily on first contact and never deleted.
type User struct {
	// ExternalID is the stable Telegram chat/account id.
	ExternalID     int64
	Username       string
	IsAdmin        bool
	AccessToken    *string
	RefreshToken   *string
	IDToken        *string
	TokenExpiresAt *int64
	CreatedAt      time.Time
}

// Connected reports whether the Hubstaff link is established: both the
// access and refresh tokens must be present.
func (u *User) Connected() bool {
	return u.AccessToken != nil && u.RefreshToken != nil
}

// HasToken reports whether any Hubstaff token is still stored.
func (u *User) HasToken() bool {
	return u.AccessToken != nil || u.RefreshToken != nil
}

// TokenSet holds the result of an authorization-code exchange. Transient,
// not persisted as its own entity.
type TokenSet struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	IDToken      string `json:"id_token"`
	ExpiresIn    int64  `json:"expires_in"`
}
