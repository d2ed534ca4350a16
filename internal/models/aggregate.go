package models

// StudentSummary is one student's calendar of statuses keyed by YYYY-MM-DD.
type StudentSummary struct {
	StudentID      string                `json:"studentId"`
	AttendanceData map[string]StatusCode `json:"attendanceData"`
}

// AttendanceSummary is keyed by student name.
type AttendanceSummary map[string]StudentSummary

// StudentStats counts a student's entries across the ledger.
type StudentStats struct {
	Name                 string  `json:"name"`
	PresentCount         int     `json:"presentCount"`
	AbsentCount          int     `json:"absentCount"`
	TotalSessions        int     `json:"totalSessions"`
	AttendancePercentage float64 `json:"attendancePercentage"`
}

// AttendanceStats is keyed by student id in StudentStats.
type AttendanceStats struct {
	TotalSessions     int                     `json:"totalSessions"`
	StudentStats      map[string]StudentStats `json:"studentStats"`
	OverallAttendance float64                 `json:"overallAttendance"`
	Absenteeism       float64                 `json:"absenteeism"`
}

// AttendanceMatrix is the student-by-date table used for display and export.
type AttendanceMatrix struct {
	Header []string   `json:"header"`
	Rows   [][]string `json:"rows"`
}

// ExportFormat enumerates supported matrix export formats.
type ExportFormat string

const (
	ExportFormatJSON ExportFormat = "json"
	ExportFormatCSV  ExportFormat = "csv"
	ExportFormatPDF  ExportFormat = "pdf"
)

// Valid reports whether the format is supported.
func (f ExportFormat) Valid() bool {
	switch f {
	case ExportFormatJSON, ExportFormatCSV, ExportFormatPDF:
		return true
	}
	return false
}
