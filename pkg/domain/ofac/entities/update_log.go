package entities

import (
	"time"

	"github.com/google/uuid"
)

// UpdateLog is an append-only record of one OFAC ingestion run.
type UpdateLog struct {
	ID        uuid.UUID `json:"id" bson:"_id"`
	Total     int       `json:"total" bson:"total"`
	New       int       `json:"new" bson:"new"`
	Removed   int       `json:"removed" bson:"removed"`
	Success   bool      `json:"success" bson:"success"`
	Error     string    `json:"error,omitempty" bson:"error,omitempty"`
	RanAt     time.Time `json:"ran_at" bson:"ran_at"`
}

func (l *UpdateLog) GetID() uuid.UUID { return l.ID }

// NewUpdateLog computes new/removed per the max(0, delta) convention and
// stamps the run time.
func NewUpdateLog(oldCount, newCount int, success bool, errMsg string) *UpdateLog {
	newAdded := newCount - oldCount
	if newAdded < 0 {
		newAdded = 0
	}
	removed := oldCount - newCount
	if removed < 0 {
		removed = 0
	}
	return &UpdateLog{
		ID:      uuid.New(),
		Total:   newCount,
		New:     newAdded,
		Removed: removed,
		Success: success,
		Error:   errMsg,
		RanAt:   time.Now().UTC(),
	}
}
