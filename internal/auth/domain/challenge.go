package domain

import "time"

// MaxTOTPAttempts is the number of wrong codes a login challenge absorbs
// before it is discarded.
const MaxTOTPAttempts = 5

// TOTPChallenge is a login that passed the password check and waits for a
// second factor. There is at most one per user.
type TOTPChallenge struct {
	UserID    string
	Attempts  int
	CreatedAt time.Time
	ExpiresAt time.Time
}

func (c *TOTPChallenge) Expired(now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}

// LinkRequest is a pending OAuth round trip, stored under the fingerprint of
// its state parameter. An empty UserID means the callback performs a login.
type LinkRequest struct {
	StateHash string
	UserID    string
	Provider  string
	CreatedAt time.Time
	ExpiresAt time.Time
}

func (l *LinkRequest) IsLink() bool { return l.UserID != "" }

func (l *LinkRequest) Expired(now time.Time) bool {
	return !now.Before(l.ExpiresAt)
}
