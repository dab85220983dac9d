package catalog

import (
	"encoding/csv"
	"fmt"
	"os"
)

// readCSV reads a snapshot CSV into raw rows. Catalog descriptions frequently
// embed commas and newlines, so rows may have varying lengths; FieldsPerRecord
// is relaxed and short rows are padded by the header-based field lookup.
func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open snapshot: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse snapshot: %w", err)
	}
	return rows, nil
}
