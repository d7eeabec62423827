package auth

import "time"

// Session is the value stored for an issued bearer token.
type Session struct {
	// Username is the subject the token was issued to
	Username string `json:"sub"`

	// IssuedAt is when the token was created
	IssuedAt time.Time `json:"iat"`

	// Expires is when the token stops being accepted
	Expires time.Time `json:"exp"`
}

// IsExpired returns true if the session has expired.
func (s *Session) IsExpired() bool {
	return !time.Now().Before(s.Expires)
}

// TTL returns the time until expiration.
// Returns 0 if already expired.
func (s *Session) TTL() time.Duration {
	ttl := time.Until(s.Expires)
	if ttl < 0 {
		return 0
	}
	return ttl
}
