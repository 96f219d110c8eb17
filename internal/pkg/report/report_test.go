package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	table := Table{
		Headers: []string{"name", "department"},
		Rows:    [][]string{{"John Doe", "Engineering"}, {"Chen, Mike", "Finance"}},
	}

	require.NoError(t, WriteCSV(&buf, table))

	assert.Equal(t, "name,department\nJohn Doe,Engineering\n\"Chen, Mike\",Finance\n", buf.String())
}

func TestWriteCSV_Empty(t *testing.T) {
	var buf bytes.Buffer

	err := WriteCSV(&buf, Table{Headers: []string{"name"}})

	assert.ErrorIs(t, err, ErrNoData)
	assert.Zero(t, buf.Len())
}

func TestWritePDF(t *testing.T) {
	var buf bytes.Buffer
	doc := Document{
		Title:       "HR Summary",
		GeneratedAt: time.Date(2024, time.March, 13, 9, 30, 0, 0, time.UTC),
		Metrics:     []Metric{{Label: "Total employees", Value: "3"}},
		Tables: []Table{
			{Title: "Departments", Headers: []string{"name", "rating"}, Rows: [][]string{{"Engineering", "4.0"}}},
			{Title: "Empty", Headers: []string{"name"}},
		},
	}

	require.NoError(t, WritePDF(&buf, doc))

	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}
