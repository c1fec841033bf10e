package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/vivesalud/productiva/internal/domain/encounter"
)

// CSV renders the record detail as a flat UTF-8 CSV, one line per record,
// same columns as the Detalle sheet.
func CSV(records []*encounter.Encounter) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(detailHeader); err != nil {
		return nil, fmt.Errorf("writing CSV header: %w", err)
	}

	line := make([]string, len(detailHeader))
	for _, r := range records {
		row := detailRow(r)
		for i, v := range row {
			line[i] = toString(v)
		}
		if err := w.Write(line); err != nil {
			return nil, fmt.Errorf("writing CSV row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flushing CSV: %w", err)
	}
	return buf.Bytes(), nil
}

func toString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case int:
		return strconv.Itoa(t)
	case float64:
		return strconv.FormatFloat(t, 'f', 4, 64)
	default:
		return fmt.Sprint(v)
	}
}
