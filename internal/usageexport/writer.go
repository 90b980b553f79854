package usageexport

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"ledgerlens/internal/domain"
)

// UTF-8 BOM bytes for Excel compatibility on Windows.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// columns defines the CSV header row (16 columns).
var columns = []string{
	"ID",
	"Created At",
	"Filename",
	"Buyer",
	"Template",
	"Provider",
	"Model",
	"Prompt Tokens",
	"Completion Tokens",
	"Total Tokens",
	"Prompt Cost (USD)",
	"Completion Cost (USD)",
	"Total Cost (USD)",
	"Success",
	"Error Message",
	"Pages",
}

// Writer wraps csv.Writer for exporting usage records as CSV.
type Writer struct {
	csv *csv.Writer
}

// NewWriter creates a Writer that writes CSV to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{csv: csv.NewWriter(w)}
}

// WriteHeader writes the 16-column header row.
func (w *Writer) WriteHeader() error {
	return w.csv.Write(columns)
}

// WriteRecords converts a batch of usage records to CSV rows and writes them.
func (w *Writer) WriteRecords(recs []domain.UsageRecord) error {
	for i := range recs {
		row := recordToRow(&recs[i])
		if err := w.csv.Write(row); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes the underlying csv.Writer buffer.
func (w *Writer) Flush() {
	w.csv.Flush()
}

// Error returns any error from the underlying csv.Writer.
func (w *Writer) Error() error {
	return w.csv.Error()
}

// recordToRow converts a single usage record to a 16-element string slice.
func recordToRow(rec *domain.UsageRecord) []string {
	row := make([]string, len(columns))

	row[0] = strconv.FormatInt(rec.ID, 10)
	row[1] = rec.CreatedAt.Format(time.RFC3339)
	row[2] = rec.Filename
	row[3] = rec.Buyer
	row[4] = rec.Template
	row[5] = rec.Provider
	row[6] = rec.Model
	row[7] = strconv.Itoa(rec.PromptTokens)
	row[8] = strconv.Itoa(rec.CompletionTokens)
	row[9] = strconv.Itoa(rec.TotalTokens)
	row[10] = formatCost(rec.PromptCost)
	row[11] = formatCost(rec.CompletionCost)
	row[12] = formatCost(rec.TotalCost)
	row[13] = formatBool(rec.Success)
	row[14] = rec.ErrorMessage
	row[15] = strconv.Itoa(rec.NumPages)

	return row
}

// formatCost keeps six decimal places; per-request model costs are
// fractions of a cent and two places would round most of them to zero.
func formatCost(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

func formatBool(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}

// nonAlphanumeric matches characters that are not alphanumeric, hyphen, or underscore.
var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// multiUnderscore matches consecutive underscores.
var multiUnderscore = regexp.MustCompile(`_{2,}`)

// SanitizeFilename cleans a name for use in Content-Disposition.
// Replaces non-alphanumeric chars (except - _) with _, collapses consecutive
// underscores, and truncates to 100 chars.
func SanitizeFilename(name string) string {
	s := nonAlphanumeric.ReplaceAllString(name, "_")
	s = multiUnderscore.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}

// BuildFilename returns a sanitized filename for the Content-Disposition header.
// Format: {sanitized_base}_{YYYY-MM-DD}.{ext}
func BuildFilename(base, ext string) string {
	sanitized := SanitizeFilename(base)
	date := time.Now().Format("2006-01-02")
	return fmt.Sprintf("%s_%s.%s", sanitized, date, strings.TrimPrefix(ext, "."))
}
