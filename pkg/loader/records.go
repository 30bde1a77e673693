// Package loader reads grid records from disk and keeps local grid state out
// of version control.
package loader

import (
	"bytes"
	"fmt"
	"io"
	"os"

	json "github.com/goccy/go-json"

	"github.com/vanderheijden86/gridedit/pkg/model"
)

// document is the object form of a records file.
type document struct {
	Rows []model.Record `json:"rows"`
}

// LoadRecords reads a records file. The file holds either a JSON array of
// records or an object with a "rows" array.
func LoadRecords(path string) ([]model.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	records, err := DecodeRecords(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return records, nil
}

// DecodeRecords reads records from r.
func DecodeRecords(r io.Reader) ([]model.Record, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return ParseRecords(data)
}

// ParseRecords decodes either accepted form. An empty input holds no records.
func ParseRecords(data []byte) ([]model.Record, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, nil
	}

	switch data[0] {
	case '[':
		var records []model.Record
		if err := json.Unmarshal(data, &records); err != nil {
			return nil, fmt.Errorf("parsing records: %w", err)
		}
		return records, nil
	case '{':
		var doc document
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parsing records: %w", err)
		}
		return doc.Rows, nil
	default:
		return nil, fmt.Errorf("parsing records: expected array or object, got %q", data[0])
	}
}
