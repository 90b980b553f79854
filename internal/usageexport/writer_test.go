package usageexport

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"ledgerlens/internal/domain"
)

func sampleRecord() domain.UsageRecord {
	return domain.UsageRecord{
		ID:               42,
		CreatedAt:        time.Date(2025, 3, 15, 10, 30, 0, 0, time.UTC),
		Filename:         "invoice_march.pdf",
		Buyer:            "Acme GmbH",
		Template:         "default_invoice",
		Provider:         "openrouter",
		Model:            "qwen/qwen3-vl-8b-instruct",
		PromptTokens:     1200,
		CompletionTokens: 150,
		TotalTokens:      1350,
		PromptCost:       0.00024,
		CompletionCost:   0.00003,
		TotalCost:        0.00027,
		Success:          true,
		NumPages:         3,
	}
}

func TestWriteHeader(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.WriteHeader())
	w.Flush()
	require.NoError(t, w.Error())

	r := csv.NewReader(&buf)
	row, err := r.Read()
	require.NoError(t, err)

	assert.Len(t, row, 16)
	assert.Equal(t, "ID", row[0])
	assert.Equal(t, "Created At", row[1])
	assert.Equal(t, "Pages", row[15])
}

func TestWriteRecords(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.WriteRecords([]domain.UsageRecord{sampleRecord()}))
	w.Flush()
	require.NoError(t, w.Error())

	r := csv.NewReader(&buf)
	row, err := r.Read()
	require.NoError(t, err)

	assert.Len(t, row, 16)
	assert.Equal(t, "42", row[0])
	assert.Equal(t, "2025-03-15T10:30:00Z", row[1])
	assert.Equal(t, "invoice_march.pdf", row[2])
	assert.Equal(t, "Acme GmbH", row[3])
	assert.Equal(t, "default_invoice", row[4])
	assert.Equal(t, "openrouter", row[5])
	assert.Equal(t, "qwen/qwen3-vl-8b-instruct", row[6])
	assert.Equal(t, "1200", row[7])
	assert.Equal(t, "150", row[8])
	assert.Equal(t, "1350", row[9])
	assert.Equal(t, "0.000240", row[10])
	assert.Equal(t, "0.000030", row[11])
	assert.Equal(t, "0.000270", row[12])
	assert.Equal(t, "Yes", row[13])
	assert.Equal(t, "", row[14])
	assert.Equal(t, "3", row[15])
}

func TestWriteRecords_Failed(t *testing.T) {
	rec := sampleRecord()
	rec.Success = false
	rec.ErrorMessage = "No page could be processed successfully"

	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.WriteRecords([]domain.UsageRecord{rec}))
	w.Flush()

	r := csv.NewReader(&buf)
	row, err := r.Read()
	require.NoError(t, err)

	assert.Equal(t, "No", row[13])
	assert.Equal(t, "No page could be processed successfully", row[14])
}

func TestWriteRecords_CostFormatting(t *testing.T) {
	rec := sampleRecord()
	rec.PromptCost = 0.1234567 // rounds to 6 decimal places
	rec.CompletionCost = 2     // whole number
	rec.TotalCost = 0

	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.WriteRecords([]domain.UsageRecord{rec}))
	w.Flush()

	r := csv.NewReader(&buf)
	row, err := r.Read()
	require.NoError(t, err)

	assert.Equal(t, "0.123457", row[10])
	assert.Equal(t, "2.000000", row[11])
	assert.Equal(t, "0.000000", row[12])
}

func TestWriteXLSX(t *testing.T) {
	data, err := WriteXLSX([]domain.UsageRecord{sampleRecord()})
	require.NoError(t, err)
	require.NotEmpty(t, data)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(xlsxSheet)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "ID", rows[0][0])
	assert.Equal(t, "Pages", rows[0][15])
	assert.Equal(t, "42", rows[1][0])
	assert.Equal(t, "invoice_march.pdf", rows[1][2])
	assert.Equal(t, "openrouter", rows[1][5])
	assert.Equal(t, "1350", rows[1][9])
	assert.Equal(t, "Yes", rows[1][13])
	assert.Equal(t, "3", rows[1][15])
}

func TestWriteXLSX_Empty(t *testing.T) {
	data, err := WriteXLSX(nil)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(xlsxSheet)
	require.NoError(t, err)
	require.Len(t, rows, 1) // header only
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"simple", "token usage", "token_usage"},
		{"special chars", "usage / 2025 (Jan–Mar)", "usage_2025_Jan_Mar"},
		{"hyphens and underscores preserved", "token-usage_2025", "token-usage_2025"},
		{"consecutive underscores collapsed", "token___usage", "token_usage"},
		{"leading/trailing cleaned", "  usage  ", "usage"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SanitizeFilename(tt.input))
		})
	}
}

func TestBuildFilename(t *testing.T) {
	today := time.Now().Format("2006-01-02")
	assert.Equal(t, "token_usage_"+today+".csv", BuildFilename("token usage", "csv"))
	assert.Equal(t, "token_usage_"+today+".xlsx", BuildFilename("token usage", ".xlsx"))
}
