package domain

import "time"

// PersonalAccessToken is an API token row. TokenHash is the sha256 hex of the secret part.
type PersonalAccessToken struct {
	ID        int64
	TokenHash string
	UserID    int64
	Abilities string
	ExpiresAt *time.Time
}

func (t PersonalAccessToken) Expired(now time.Time) bool {
	return t.ExpiresAt != nil && t.ExpiresAt.Before(now)
}
