package models

import "time"

// ClassInstance is a teaching group bound to one roster. Students and Data are
// snapshots taken at creation time.
type ClassInstance struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Session   string    `db:"session" json:"session"`
	Students  Students  `db:"students" json:"students"`
	Data      Lessons   `db:"data" json:"data"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}
