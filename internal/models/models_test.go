package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-01-10")
	require.NoError(t, err)
	assert.Equal(t, "2025-01-10", d.String())

	d, err = ParseDate("2025-01-10T18:30:00Z")
	require.NoError(t, err)
	assert.Equal(t, "2025-01-10", d.String())
	assert.Equal(t, 0, d.Hour())

	_, err = ParseDate("10/01/2025")
	require.Error(t, err)
	_, err = ParseDate(" ")
	require.Error(t, err)
}

func TestDateScan(t *testing.T) {
	var d Date
	require.NoError(t, d.Scan(time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2025-01-10", d.String())

	require.NoError(t, d.Scan([]byte("2024-12-31")))
	assert.Equal(t, "2024-12-31", d.String())

	require.NoError(t, d.Scan("2024-11-30 00:00:00+00:00"))
	assert.Equal(t, "2024-11-30", d.String())

	require.Error(t, d.Scan(nil))
	require.Error(t, d.Scan(42))
}

func TestDateJSON(t *testing.T) {
	var payload struct {
		Date Date `json:"date"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"date":"2025-01-10"}`), &payload))
	out, err := json.Marshal(payload)
	require.NoError(t, err)
	assert.JSONEq(t, `{"date":"2025-01-10"}`, string(out))

	require.Error(t, json.Unmarshal([]byte(`{"date":12}`), &payload))
}

func TestStatusCodeAccessors(t *testing.T) {
	cases := []struct {
		code       StatusCode
		kind       StatusKind
		present    bool
		absent     bool
		weight     int
		multiplier int
	}{
		{StatusPresent, StatusKindPresent, true, false, 0, 0},
		{StatusAbsent, StatusKindAbsent, false, true, 0, 0},
		{StatusCode(1), StatusKindPresentWeighted, false, false, 1, 1},
		{StatusCode(2), StatusKindPresentWeighted, false, false, 2, 2},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.kind, tc.code.Kind(), "kind %d", tc.code)
		assert.Equal(t, tc.present, tc.code.IsPresent(), "present %d", tc.code)
		assert.Equal(t, tc.absent, tc.code.IsAbsent(), "absent %d", tc.code)
		assert.Equal(t, tc.weight, tc.code.PresentWeight(), "weight %d", tc.code)
		assert.Equal(t, tc.multiplier, tc.code.Multiplier(), "multiplier %d", tc.code)
	}
}

func TestJSONColumns(t *testing.T) {
	value, err := Students(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, "[]", value)

	value, err = StudentStatuses{{StudentID: "S1", Name: "Alice", Status: 2}}.Value()
	require.NoError(t, err)
	assert.JSONEq(t, `[{"studentId":"S1","name":"Alice","status":2}]`, value.(string))

	var statuses StudentStatuses
	require.NoError(t, statuses.Scan([]byte(`[{"studentId":"S2","name":"Bob","status":3}]`)))
	require.Len(t, statuses, 1)
	assert.True(t, statuses[0].Status.IsAbsent())

	var lessons Lessons
	require.NoError(t, lessons.Scan(nil))
	assert.NotNil(t, lessons)
	assert.Empty(t, lessons)

	require.Error(t, lessons.Scan(3.14))
}

func TestStudentsWithStatusRoundTrip(t *testing.T) {
	roster := Students{{StudentID: "S1", Name: "Alice"}, {StudentID: "S2", Name: "Bob"}}

	entries := roster.WithStatus(StatusPresent)

	require.Len(t, entries, 2)
	assert.Equal(t, StatusPresent, entries[1].Status)
	assert.Equal(t, roster, entries.Roster())
}

func TestStatusLegends(t *testing.T) {
	legends := StatusLegends()
	assert.Equal(t, StatusLegend{Label: "Present", Color: "green"}, legends["0"])
	assert.Equal(t, StatusLegend{Label: "Absent", Color: "red"}, legends["3"])
	assert.Contains(t, legends, "weighted")
}
