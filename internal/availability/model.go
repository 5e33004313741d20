package availability

import (
	"time"

	"fitcoach/internal/interval"
)

const DefaultNote = "Available"

// Slot is one contiguous window in which a coach is bookable.
type Slot struct {
	ID      int       `db:"id" json:"id"`
	CoachID int       `db:"coach_id" json:"coach_id"`
	Start   time.Time `db:"start_time" json:"start"`
	End     time.Time `db:"end_time" json:"end"`
	Note    string    `db:"note" json:"note"`
}

func (s Slot) Interval() interval.Interval {
	return interval.New(s.Start, s.End)
}

type AddAvailabilityRequest struct {
	Start time.Time `json:"start" binding:"required" example:"2025-03-10T09:00:00Z"`
	End   time.Time `json:"end" binding:"required,gtfield=Start" example:"2025-03-10T17:00:00Z"`
	Note  string    `json:"note" binding:"max=255"`
}
