package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVExporterRender(t *testing.T) {
	data := Dataset{
		Headers: []string{"Name", "2025-01-10", "Percentage"},
		Rows: [][]string{
			{"Alice", "2", "200.00%"},
			{"Bob, Jr.", "Absent"},
		},
	}

	out, err := NewCSVExporter().Render(data)
	require.NoError(t, err)
	assert.Equal(t, "Name,2025-01-10,Percentage\nAlice,2,200.00%\n\"Bob, Jr.\",Absent,\n", string(out))
}

func TestCSVExporterRejectsWideRows(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{Headers: []string{"Name"}, Rows: [][]string{{"a", "b"}}})
	require.Error(t, err)

	_, err = NewCSVExporter().Render(Dataset{})
	require.Error(t, err)
}

func TestPDFExporterRender(t *testing.T) {
	headers := []string{"Name"}
	for i := 0; i < 10; i++ {
		headers = append(headers, "2025-01-1"+string(rune('0'+i)))
	}
	out, err := NewPDFExporter().Render(Dataset{Headers: headers, Rows: [][]string{{"Alice", "0"}}}, "10A attendance")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}
