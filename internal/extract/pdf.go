package extract

import (
	"bytes"
	"fmt"

	"github.com/ledongthuc/pdf"
)

func (e *Extractor) extractPDF(data []byte) (string, error) {
	doc, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	buf := &bytes.Buffer{}
	for i := 1; i <= doc.NumPage(); i++ {
		page := doc.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("extract pdf page %d: %w", i, err)
		}
		buf.WriteString(text)
		if e.reached(buf) {
			break
		}
	}

	return buf.String(), nil
}
