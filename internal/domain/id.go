package domain

import (
	"github.com/google/uuid"
)

// NewID generates a UUIDv7 string for application-owned entities.
func NewID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// NewDataTableID returns a data table id prefixed with its tenant.
func NewDataTableID(tenantID string) string {
	return tenantID + "-" + uuid.NewString()
}

// UsageIDForTable returns the deterministic usage record id of a data table.
func UsageIDForTable(tableID string) string {
	return tableID + "-usage"
}
