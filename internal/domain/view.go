package domain

import "time"

// View is a stored query view: a named binding of a strategy to a default SQL template.
type View struct {
	ID        string
	TenantID  string
	ViewCode  string
	ViewType  string
	ViewSQL   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CreateViewRequest holds parameters for storing a view.
type CreateViewRequest struct {
	TenantID string
	ViewCode string
	ViewType string
	ViewSQL  string
}

// UpdateViewRequest holds the fields that may change on a view.
type UpdateViewRequest struct {
	ViewCode *string
	ViewType *string
	ViewSQL  *string
}
