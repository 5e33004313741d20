package timetable

import (
	"time"
)

type TrainingSession struct {
	ID       int       `db:"id" json:"id"`
	ClientID int       `db:"client_id" json:"client_id"`
	CoachID  int       `db:"coach_id" json:"coach_id"`
	Start    time.Time `db:"start_time" json:"start"`
	End      time.Time `db:"end_time" json:"end"`
	Title    string    `db:"title" json:"title"`
}

// WeeklySession is one row of the weekly timetable view.
type WeeklySession struct {
	ID         int       `db:"id" json:"id"`
	CoachName  string    `db:"coach_name" json:"coach_name"`
	ClientName string    `db:"client_name" json:"client_name"`
	Day        string    `db:"-" json:"day"`
	Start      time.Time `db:"start_time" json:"start"`
	End        time.Time `db:"end_time" json:"end"`
	Title      string    `db:"title" json:"title"`
}

type BookSessionRequest struct {
	CoachID  int       `json:"coach_id" binding:"required,gt=0"`
	ClientID int       `json:"client_id" binding:"required,gt=0"`
	SlotID   int       `json:"slot_id" binding:"required,gt=0"`
	Title    string    `json:"title" binding:"max=255"`
	Start    time.Time `json:"start" binding:"required" example:"2025-03-10T10:00:00Z"`
	End      time.Time `json:"end" binding:"required,gtfield=Start" example:"2025-03-10T11:00:00Z"`
}
