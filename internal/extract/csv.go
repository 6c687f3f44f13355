package extract

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"
)

// extractCSV renders each row as "header: value" lines separated by a blank line.
func (e *Extractor) extractCSV(data []byte) (string, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return "", fmt.Errorf("parse csv: %w", err)
	}
	if len(records) == 0 {
		return "", nil
	}

	headers := records[0]
	buf := &bytes.Buffer{}
	for idx, row := range records[1:] {
		if idx > 0 {
			buf.WriteString("\n\n")
		}
		buf.WriteString(formatRow(headers, row, idx))
		if e.reached(buf) {
			break
		}
	}
	return buf.String(), nil
}

func formatRow(headers, row []string, idx int) string {
	lines := []string{fmt.Sprintf("Row %d", idx+1)}
	for i, value := range row {
		header := ""
		if i < len(headers) {
			header = strings.TrimSpace(headers[i])
		}
		if header == "" {
			header = fmt.Sprintf("Column %d", i+1)
		}
		lines = append(lines, header+": "+strings.TrimSpace(value))
	}
	return strings.Join(lines, "\n")
}
