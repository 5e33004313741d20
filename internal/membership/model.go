package membership

import (
	"fmt"
	"time"
)

type Type string

const (
	TypeMonthly Type = "Monthly"
	TypeYearly  Type = "Yearly"
	TypeWeekly  Type = "Weekly"
	// TypeTen is the only visit-counted membership.
	TypeTen Type = "Ten"
)

type Membership struct {
	ID              int        `db:"id" json:"id"`
	StartDate       time.Time  `db:"start_date" json:"start_date"`
	ExpiresAt       *time.Time `db:"expires_at" json:"expires_at,omitempty"`
	Price           float64    `db:"price" json:"price"`
	Type            Type       `db:"type" json:"type"`
	HolderID        int        `db:"holder_id" json:"holder_id"`
	VisitsRemaining *int       `db:"visits_remaining" json:"visits_remaining,omitempty"`
}

func (m Membership) IsVisitCounted() bool {
	return m.Type == TypeTen
}

// IsActive reports whether the membership admits a visit on day: the day
// lies within [StartDate, ExpiresAt] and, for counted memberships, a visit
// is left. A membership without an expiry date never matches.
func (m Membership) IsActive(day time.Time) bool {
	d := dateOf(day)
	if m.ExpiresAt == nil || d.Before(dateOf(m.StartDate)) || d.After(dateOf(*m.ExpiresAt)) {
		return false
	}
	if m.IsVisitCounted() {
		return m.VisitsRemaining != nil && *m.VisitsRemaining > 0
	}
	return true
}

// Label is the membership as shown at the front desk, e.g. "Ten (3 left)".
func (m Membership) Label() string {
	label := string(m.Type)
	if m.IsVisitCounted() && m.VisitsRemaining != nil {
		label += fmt.Sprintf(" (%d left)", *m.VisitsRemaining)
	}
	if m.ExpiresAt == nil {
		label += " (Permanent)"
	}
	return label
}

func dateOf(t time.Time) time.Time {
	y, mo, d := t.Date()
	return time.Date(y, mo, d, 0, 0, 0, 0, time.UTC)
}

// Summary is the read model served for a client.
type Summary struct {
	ClientID        int    `json:"client_id"`
	Label           string `json:"label"`
	VisitsRemaining *int   `json:"visits_remaining,omitempty"`
	Active          bool   `json:"active"`
}
