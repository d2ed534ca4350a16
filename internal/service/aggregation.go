package service

import (
	"fmt"
	"math"
	"strconv"

	"github.com/noah-isme/class-attendance-api/internal/models"
)

// SummarizeByStudent folds the ledger into a per-student calendar keyed by student name.
// Two students sharing a name share one entry; the first studentId seen is kept.
func SummarizeByStudent(records []models.AttendanceRecord) models.AttendanceSummary {
	summary := make(models.AttendanceSummary)
	for _, record := range records {
		date := record.Date.String()
		for _, student := range record.Students {
			entry, ok := summary[student.Name]
			if !ok {
				entry = models.StudentSummary{StudentID: student.StudentID, AttendanceData: map[string]models.StatusCode{}}
			}
			entry.AttendanceData[date] = student.Status
			summary[student.Name] = entry
		}
	}
	return summary
}

// ComputeStats counts presence per student id. Only status 0 counts as present here;
// weighted codes are neither present nor absent.
func ComputeStats(records []models.AttendanceRecord) models.AttendanceStats {
	stats := models.AttendanceStats{
		TotalSessions: len(records),
		StudentStats:  map[string]models.StudentStats{},
	}

	var totalEntries, totalPresent int
	for _, record := range records {
		for _, student := range record.Students {
			entry, ok := stats.StudentStats[student.StudentID]
			if !ok {
				entry = models.StudentStats{Name: student.Name}
			}
			entry.TotalSessions++
			totalEntries++
			switch {
			case student.Status.IsPresent():
				entry.PresentCount++
				totalPresent++
			case student.Status.IsAbsent():
				entry.AbsentCount++
			}
			stats.StudentStats[student.StudentID] = entry
		}
	}

	for id, entry := range stats.StudentStats {
		entry.AttendancePercentage = percentage(float64(entry.PresentCount), entry.TotalSessions)
		stats.StudentStats[id] = entry
	}

	if totalEntries > 0 {
		stats.OverallAttendance = percentage(float64(totalPresent), totalEntries)
		stats.Absenteeism = round2(100 - stats.OverallAttendance)
	}
	return stats
}

// ExportMatrix builds the student-by-date table. Columns follow the order of records.
// The percentage sums PresentWeight over all records, so weighted codes add their multiplier
// and code 0 adds nothing.
func ExportMatrix(records []models.AttendanceRecord) models.AttendanceMatrix {
	header := make([]string, 0, len(records)+2)
	header = append(header, "Name")
	for _, record := range records {
		header = append(header, record.Date.String())
	}
	header = append(header, "Percentage")

	type rowState struct {
		name   string
		weight int
	}
	order := make([]string, 0)
	states := make(map[string]*rowState)
	for _, record := range records {
		for _, student := range record.Students {
			state, ok := states[student.StudentID]
			if !ok {
				state = &rowState{name: student.Name}
				states[student.StudentID] = state
				order = append(order, student.StudentID)
			}
			state.weight += student.Status.PresentWeight()
		}
	}

	rows := make([][]string, 0, len(order))
	for _, id := range order {
		state := states[id]
		row := make([]string, 0, len(header))
		row = append(row, state.name)
		for _, record := range records {
			row = append(row, matrixCell(record, id))
		}
		row = append(row, fmt.Sprintf("%.2f%%", percentage(float64(state.weight), len(records))))
		rows = append(rows, row)
	}

	return models.AttendanceMatrix{Header: header, Rows: rows}
}

func matrixCell(record models.AttendanceRecord, studentID string) string {
	for _, student := range record.Students {
		if student.StudentID != studentID {
			continue
		}
		if student.Status.IsAbsent() {
			return "Absent"
		}
		return strconv.Itoa(int(student.Status))
	}
	return "N/A"
}

func percentage(part float64, total int) float64 {
	if total == 0 {
		return 0
	}
	return round2(part / float64(total) * 100)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
