package extractors

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"etl-extract/internal/logging"
	"etl-extract/pkg/extract"
)

var _ extract.Extractor[string] = (*JSONExtractor)(nil)

// JSONExtractor reads a file holding either an array of objects or a single
// object. Object keys come out sorted. Integral numbers become Int, other
// numbers Float; nested objects and arrays are kept as JSON text.
type JSONExtractor struct{}

// JSON returns the JSON file extractor.
func JSON() *JSONExtractor { return &JSONExtractor{} }

// Extract decodes the file at path.
func (je *JSONExtractor) Extract(path string) ([]extract.Record, error) {
	if err := checkFile(path); err != nil {
		return nil, err
	}
	logging.Logf(logging.Debug, "JSONExtractor reading file: %s", path)

	data, err := readText(path)
	if err != nil {
		return nil, extract.NewIOError(path, "read", err)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			err = fmt.Errorf("empty document: %w", io.ErrUnexpectedEOF)
		}
		return nil, extract.NewIOError(path, "decode", err)
	}
	if err := dec.Decode(new(json.RawMessage)); !errors.Is(err, io.EOF) {
		return nil, extract.NewIOError(path, "decode", errors.New("unexpected data after top-level value"))
	}

	var records []extract.Record
	switch v := doc.(type) {
	case map[string]any:
		logging.Logf(logging.Debug, "JSON input file '%s' contains a single object, processing as one record", path)
		records = []extract.Record{recordFromMap(v)}
	case []any:
		records = make([]extract.Record, 0, len(v))
		for i, item := range v {
			obj, ok := item.(map[string]any)
			if !ok {
				return nil, extract.NewIOError(path, "decode", fmt.Errorf("array element %d is %T, want object", i, item))
			}
			records = append(records, recordFromMap(obj))
		}
	default:
		return nil, extract.NewIOError(path, "decode", fmt.Errorf("top-level value is %T, want array or object", doc))
	}

	logging.Logf(logging.Debug, "JSONExtractor loaded %d records from %s", len(records), path)
	return records, nil
}
