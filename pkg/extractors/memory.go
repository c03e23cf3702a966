package extractors

import (
	"sort"

	"etl-extract/pkg/extract"
)

var _ extract.Extractor[[]map[string]any] = MemoryExtractor{}

// MemoryExtractor turns maps already in memory into Records. Keys are sorted
// lexically since Go maps carry no order. A nil source yields no records.
type MemoryExtractor struct{}

// Memory returns the in-memory extractor.
func Memory() MemoryExtractor { return MemoryExtractor{} }

// Extract converts each map to a Record. It never fails.
func (MemoryExtractor) Extract(rows []map[string]any) ([]extract.Record, error) {
	records := make([]extract.Record, 0, len(rows))
	for _, row := range rows {
		records = append(records, recordFromMap(row))
	}
	return records, nil
}

// recordFromMap builds a Record with the map's keys in sorted order.
func recordFromMap(m map[string]any) extract.Record {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fields := make([]extract.Field, len(keys))
	for i, k := range keys {
		fields[i] = extract.Field{Name: k, Value: extract.ValueOf(m[k])}
	}
	return extract.NewRecord(fields...)
}
