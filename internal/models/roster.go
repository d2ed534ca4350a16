package models

import "time"

// Roster is a named student list for an academic term ("session").
type Roster struct {
	Name      string    `db:"name" json:"name"`
	Students  Students  `db:"students" json:"students"`
	Data      Lessons   `db:"data" json:"data"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// RosterSummary is the lightweight projection used by selection lists.
type RosterSummary struct {
	Name string `db:"name" json:"name"`
}
