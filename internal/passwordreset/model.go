package passwordreset

import "time"

// Token is a single-use password reset credential.
type Token struct {
	ID        string
	UserID    string
	Token     string
	ExpiresAt time.Time
	Used      bool
	CreatedAt time.Time
}

// Valid reports whether the token can still be redeemed at now.
func (t Token) Valid(now time.Time) bool {
	return !t.Used && t.ExpiresAt.After(now)
}
