package visit

import (
	"time"
)

type Visit struct {
	ID           int       `db:"id" json:"id"`
	ClientID     int       `db:"client_id" json:"client_id"`
	MembershipID *int      `db:"membership_id" json:"membership_id,omitempty"`
	CheckIn      time.Time `db:"check_in" json:"check_in"`
}

// Row is one line of the front-desk visit history.
type Row struct {
	ID             int       `db:"id" json:"id"`
	ClientName     string    `db:"client_name" json:"client_name"`
	ClientEmail    string    `db:"client_email" json:"client_email"`
	MembershipType *string   `db:"membership_type" json:"membership_type"`
	CheckIn        time.Time `db:"check_in" json:"check_in"`
}

type CountResponse struct {
	ClientID int `json:"client_id"`
	Count    int `json:"count"`
}
