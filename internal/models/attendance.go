package models

import "time"

// AttendanceRecord is the ledger entry for one (className, session, date).
type AttendanceRecord struct {
	ID        string          `db:"id" json:"id"`
	Date      Date            `db:"attendance_date" json:"date"`
	Name      string          `db:"name" json:"name,omitempty"`
	ClassName string          `db:"class_name" json:"className"`
	Session   string          `db:"session" json:"session"`
	Students  StudentStatuses `db:"students" json:"students"`
	CreatedAt time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time       `db:"updated_at" json:"updatedAt"`
}

// Key returns the composite identity of the record.
func (r AttendanceRecord) Key() AttendanceKey {
	return AttendanceKey{Date: r.Date, ClassName: r.ClassName, Session: r.Session}
}

// AttendanceKey is the single upsert key of the ledger.
type AttendanceKey struct {
	Date      Date
	ClassName string
	Session   string
}

// AttendanceFilter narrows ledger queries. Empty fields are ignored.
type AttendanceFilter struct {
	Date      *Date
	ClassName string
	Session   string
	Name      string
}

// UpsertResult reports the stored record and whether it was newly inserted.
type UpsertResult struct {
	Record  *AttendanceRecord
	Created bool
}
