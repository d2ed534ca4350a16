package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Student is a roster entry.
type Student struct {
	StudentID string `json:"studentId" validate:"required"`
	Name      string `json:"name" validate:"required"`
}

// StudentStatus is a student's entry on one attendance record.
type StudentStatus struct {
	StudentID string     `json:"studentId"`
	Name      string     `json:"name"`
	Status    StatusCode `json:"status"`
}

// Lesson is an optional {date, topic} entry carried by rosters and classes.
type Lesson struct {
	Date  string `json:"date"`
	Topic string `json:"topic"`
}

// Students is stored as a JSON document column.
type Students []Student

// Value implements driver.Valuer.
func (s Students) Value() (driver.Value, error) { return jsonValue(s, len(s)) }

// Scan implements sql.Scanner.
func (s *Students) Scan(src interface{}) error {
	if err := scanJSON(src, s); err != nil {
		return err
	}
	if *s == nil {
		*s = Students{}
	}
	return nil
}

// StudentStatuses is stored as a JSON document column.
type StudentStatuses []StudentStatus

// Value implements driver.Valuer.
func (s StudentStatuses) Value() (driver.Value, error) { return jsonValue(s, len(s)) }

// Scan implements sql.Scanner.
func (s *StudentStatuses) Scan(src interface{}) error {
	if err := scanJSON(src, s); err != nil {
		return err
	}
	if *s == nil {
		*s = StudentStatuses{}
	}
	return nil
}

// Lessons is stored as a JSON document column.
type Lessons []Lesson

// Value implements driver.Valuer.
func (l Lessons) Value() (driver.Value, error) { return jsonValue(l, len(l)) }

// Scan implements sql.Scanner.
func (l *Lessons) Scan(src interface{}) error {
	if err := scanJSON(src, l); err != nil {
		return err
	}
	if *l == nil {
		*l = Lessons{}
	}
	return nil
}

// WithStatus turns a roster snapshot into attendance entries sharing one status.
func (s Students) WithStatus(status StatusCode) StudentStatuses {
	out := make(StudentStatuses, 0, len(s))
	for _, st := range s {
		out = append(out, StudentStatus{StudentID: st.StudentID, Name: st.Name, Status: status})
	}
	return out
}

// Roster strips statuses, keeping the student identities in order.
func (s StudentStatuses) Roster() Students {
	out := make(Students, 0, len(s))
	for _, st := range s {
		out = append(out, Student{StudentID: st.StudentID, Name: st.Name})
	}
	return out
}

// jsonValue encodes as a string: lib/pq sends []byte as bytea, which JSONB rejects.
func jsonValue(v interface{}, n int) (driver.Value, error) {
	if n == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode json column: %w", err)
	}
	return string(b), nil
}

func scanJSON(src interface{}, dest interface{}) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported json column type %T", src)
	}
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("decode json column: %w", err)
	}
	return nil
}
