package extractors

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"etl-extract/pkg/extract"

	"gopkg.in/yaml.v3"
)

// createTempFile writes content to a new file in a per-test directory.
func createTempFile(t *testing.T, content string, pattern string) string {
	t.Helper()
	tempFile, err := os.CreateTemp(t.TempDir(), pattern)
	if err != nil {
		t.Fatalf("Failed to create temp file (pattern: %s): %v", pattern, err)
	}
	filePath := tempFile.Name()
	if _, err := tempFile.WriteString(content); err != nil {
		_ = tempFile.Close()
		t.Fatalf("Failed to write to temp file %s: %v", filePath, err)
	}
	if err := tempFile.Close(); err != nil {
		t.Fatalf("Failed to close temp file %s: %v", filePath, err)
	}
	return filePath
}

// missingPath returns a path inside a temp dir that does not exist.
func missingPath(t *testing.T, name string) string {
	t.Helper()
	return filepath.Join(t.TempDir(), name)
}

// rec builds a Record from alternating name/value pairs. A nil value is Null,
// anything else goes through extract.ValueOf.
func rec(pairs ...any) extract.Record {
	fields := make([]extract.Field, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		fields = append(fields, extract.Field{Name: pairs[i].(string), Value: extract.ValueOf(pairs[i+1])})
	}
	return extract.NewRecord(fields...)
}

// compareRecords reports a mismatch between got and want, order and kinds
// included. Mismatches are rendered as YAML for readability.
func compareRecords(t *testing.T, got, want []extract.Record) bool {
	t.Helper()
	if extract.EqualRecords(got, want) {
		return true
	}
	gotYAML, errGot := yaml.Marshal(renderRecords(got))
	wantYAML, errWant := yaml.Marshal(renderRecords(want))
	if errGot != nil || errWant != nil {
		t.Errorf("Record mismatch (order matters):\ngot:\n%v\nwant:\n%v", got, want)
		return false
	}
	t.Errorf("Record mismatch (order matters):\n--- GOT ---\n%s\n--- WANT ---\n%s", gotYAML, wantYAML)
	return false
}

// renderRecords turns records into ordered YAML-friendly lists of
// "name: kind value" strings.
func renderRecords(records []extract.Record) [][]string {
	out := make([][]string, len(records))
	for i, r := range records {
		row := make([]string, 0, r.Len())
		for _, f := range r.Fields() {
			row = append(row, f.Name+": "+f.Value.Kind().String()+" "+f.Value.String())
		}
		out[i] = row
	}
	return out
}

// assertInvalidSource fails unless err is an *extract.InvalidSourceError.
func assertInvalidSource(t *testing.T, err error) *extract.InvalidSourceError {
	t.Helper()
	var ise *extract.InvalidSourceError
	if !errors.As(err, &ise) {
		t.Fatalf("error = %v (%T), want *extract.InvalidSourceError", err, err)
	}
	return ise
}

// assertIOError fails unless err is an *extract.ExtractionIOError for op.
func assertIOError(t *testing.T, err error, op string) *extract.ExtractionIOError {
	t.Helper()
	var ioe *extract.ExtractionIOError
	if !errors.As(err, &ioe) {
		t.Fatalf("error = %v (%T), want *extract.ExtractionIOError", err, err)
	}
	if op != "" && ioe.Op != op {
		t.Errorf("ExtractionIOError.Op = %q, want %q (err: %v)", ioe.Op, op, err)
	}
	return ioe
}
