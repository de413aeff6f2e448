package domain

import "time"

// Token represents issued authentication token metadata.
type Token struct {
	Value     string
	UserID    string
	Role      Role
	ExpiresAt time.Time
	IssuedAt  time.Time
}
