package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDataset() Dataset {
	return Dataset{
		Title:   "Agenda",
		Headers: []string{"title", "start_date"},
		Rows: []map[string]string{
			{"title": "Rapat, umum", "start_date": "2025-01-10"},
			{"title": strings.Repeat("Workshop panjang ", 20), "start_date": "2025-02-01"},
		},
	}
}

func TestCSVExporterQuotesFields(t *testing.T) {
	out, err := NewCSVExporter().Render(sampleDataset())
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "title,start_date", lines[0])
	assert.Equal(t, `"Rapat, umum",2025-01-10`, lines[1])
}

func TestPDFExporterProducesDocument(t *testing.T) {
	out, err := NewPDFExporter().Render(sampleDataset())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestExportersRequireHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	assert.Error(t, err)
	_, err = NewPDFExporter().Render(Dataset{})
	assert.Error(t, err)
}
