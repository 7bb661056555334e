package domain

import "time"

// User is a login identity scoped to a tenant.
type User struct {
	ID           string
	Nickname     string
	PasswordHash string
	TenantID     string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// AuthToken is an issued bearer token.
type AuthToken struct {
	Token     string
	ExpiresAt time.Time
}
