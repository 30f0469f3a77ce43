package session

import "time"

// Session binds a user identity to their current token pair. Mutated in
// place on refresh and written back through the Repository in one call;
// callers never use AccessToken without going through the refresh policy.
type Session struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	CSRFToken      string    `json:"csrf_token"`
	AccessToken    string    `json:"access_token"`
	RefreshToken   string    `json:"refresh_token"`
	TokenExpiresAt time.Time `json:"token_expires_at"`
	Expiry         time.Time `json:"expiry"`
}
