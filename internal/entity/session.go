package entity

import "time"

// Session carries the customer's bearer credential for authenticated
// commerce calls (order history). A zero AccessToken means anonymous.
type Session struct {
	AccessToken string    `json:"accessToken"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// Authenticated reports whether the session carries a usable credential.
func (s Session) Authenticated() bool {
	if s.AccessToken == "" {
		return false
	}
	return s.ExpiresAt.IsZero() || time.Now().Before(s.ExpiresAt)
}
