package domain

import "time"

// AuditFields holds standard timestamps for persisted domain entities.
type AuditFields struct {
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
