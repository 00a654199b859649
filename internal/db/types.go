package db

import (
	"time"

	"github.com/google/uuid"
)

// RunRecord is one row of the screening_runs table.
type RunRecord struct {
	ID               uuid.UUID  `json:"id"`
	RequisitionTitle string     `json:"requisition_title"`
	Mode             string     `json:"mode"`
	Status           string     `json:"status"`
	CreatedAt        time.Time  `json:"created_at"`
	CompletedAt      *time.Time `json:"completed_at,omitempty"`
}
