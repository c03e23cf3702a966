package extractors

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"etl-extract/internal/config"
	"etl-extract/internal/logging"
	"etl-extract/pkg/extract"
)

// createTempConfig writes a YAML config and restores the log level afterwards.
func createTempConfig(t *testing.T, content string) string {
	t.Helper()
	level := logging.GetLevel()
	t.Cleanup(func() { logging.SetLevel(level) })
	return createTempFile(t, content, "config_*.yaml")
}

func TestNewSourceExtractor(t *testing.T) {
	testCases := []struct {
		name       string
		cfg        config.SourceConfig
		dbConnStr  string
		wantType   reflect.Type
		wantErrMsg string
	}{
		{name: "CSV", cfg: config.SourceConfig{Type: "csv", Delimiter: ";", LazyQuotes: true}, wantType: reflect.TypeOf(&CSVExtractor{})},
		{name: "CSV upper case", cfg: config.SourceConfig{Type: "CSV"}, wantType: reflect.TypeOf(&CSVExtractor{})},
		{name: "JSON", cfg: config.SourceConfig{Type: "json"}, wantType: reflect.TypeOf(&JSONExtractor{})},
		{name: "YAML", cfg: config.SourceConfig{Type: "yaml"}, wantType: reflect.TypeOf(&YAMLExtractor{})},
		{name: "XML", cfg: config.SourceConfig{Type: "xml", XMLRecordTag: "row"}, wantType: reflect.TypeOf(&XMLExtractor{})},
		{name: "XLSX", cfg: config.SourceConfig{Type: "xlsx", SheetName: "Data"}, wantType: reflect.TypeOf(&XLSXExtractor{})},
		{name: "Postgres", cfg: config.SourceConfig{Type: "postgres"}, dbConnStr: "postgres://localhost/db", wantType: reflect.TypeOf(&PostgresExtractor{})},
		{name: "Postgres without connection string", cfg: config.SourceConfig{Type: "postgres"}, wantErrMsg: "connection string"},
		{name: "Bad CSV delimiter", cfg: config.SourceConfig{Type: "csv", Delimiter: "ab"}, wantErrMsg: "failed to create CSV extractor"},
		{name: "Unsupported", cfg: config.SourceConfig{Type: "parquet"}, wantErrMsg: "unsupported source type"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ext, err := newSourceExtractor(tc.cfg, tc.dbConnStr)
			if tc.wantErrMsg != "" {
				if err == nil || !strings.Contains(err.Error(), tc.wantErrMsg) {
					t.Fatalf("newSourceExtractor() error = %v, want error containing %q", err, tc.wantErrMsg)
				}
				return
			}
			if err != nil {
				t.Fatalf("newSourceExtractor() unexpected error: %v", err)
			}
			if got := reflect.TypeOf(ext); got != tc.wantType {
				t.Errorf("newSourceExtractor() type = %v, want %v", got, tc.wantType)
			}
		})
	}

	t.Run("CSV options are applied", func(t *testing.T) {
		ext, err := newSourceExtractor(config.SourceConfig{Type: "csv", Delimiter: "|", CommentChar: "#", TrimLeadingSpace: true, LazyQuotes: true}, "")
		if err != nil {
			t.Fatalf("newSourceExtractor() unexpected error: %v", err)
		}
		want := &CSVExtractor{Delimiter: '|', Comment: '#', TrimLeadingSpace: true, LazyQuotes: true}
		if !reflect.DeepEqual(ext, want) {
			t.Errorf("newSourceExtractor() = %+v, want %+v", ext, want)
		}
	})
}

func TestFromConfigFile_CSV(t *testing.T) {
	dataDir := t.TempDir()
	dataPath := filepath.Join(dataDir, "people.csv")
	if err := os.WriteFile(dataPath, []byte("name|age\n# comment\nAlice|30\nBob|\nCarol|17\n"), 0o644); err != nil {
		t.Fatalf("failed to write data file: %v", err)
	}
	t.Setenv("ETL_TEST_DATA", dataDir)

	cfgPath := createTempConfig(t, `
logging:
  level: error
source:
  type: csv
  file: ${ETL_TEST_DATA}/people.csv
  delimiter: "|"
  commentChar: "#"
`)

	ext, err := FromConfigFile(cfgPath, "")
	if err != nil {
		t.Fatalf("FromConfigFile() unexpected error: %v", err)
	}
	if logging.GetLevel() != logging.Error {
		t.Errorf("log level = %v, want %v", logging.GetLevel(), logging.Error)
	}

	t.Run("Configured file", func(t *testing.T) {
		got, err := ext.Extract("")
		if err != nil {
			t.Fatalf("Extract(\"\") unexpected error: %v", err)
		}
		compareRecords(t, got, []extract.Record{
			rec("name", "Alice", "age", "30"),
			rec("name", "Bob", "age", nil),
			rec("name", "Carol", "age", "17"),
		})
	})

	t.Run("Argument overrides file", func(t *testing.T) {
		other := createTempCSV(t, "name|age\nZed|99\n")
		got, err := ext.Extract(other)
		if err != nil {
			t.Fatalf("Extract() unexpected error: %v", err)
		}
		compareRecords(t, got, []extract.Record{rec("name", "Zed", "age", "99")})
	})

	t.Run("Missing file", func(t *testing.T) {
		_, err := ext.Extract(missingPath(t, "missing.csv"))
		assertInvalidSource(t, err)
	})
}

func TestFromConfigFile_Filter(t *testing.T) {
	dataPath := createTempFile(t, `[{"sku":"a","qty":5},{"sku":"b","qty":0},{"sku":"c","qty":12}]`, "items_*.json")
	cfgPath := createTempConfig(t, fmt.Sprintf(`
logging:
  level: none
source:
  type: json
  file: %q
filter: "qty > 1"
`, dataPath))

	ext, err := FromConfigFile(cfgPath, "")
	if err != nil {
		t.Fatalf("FromConfigFile() unexpected error: %v", err)
	}
	got, err := ext.Extract("")
	if err != nil {
		t.Fatalf("Extract() unexpected error: %v", err)
	}
	compareRecords(t, got, []extract.Record{
		rec("qty", int64(5), "sku", "a"),
		rec("qty", int64(12), "sku", "c"),
	})
}

func TestFromConfigFile_Postgres(t *testing.T) {
	conn := &fakeConn{rows: &fakeRows{columns: []string{"id"}, data: [][]any{{int64(1)}}}}
	gotConnStr := withFakeConnect(t, conn, nil)
	t.Setenv(DBCredentialsEnv, "postgres://env-user:pw@localhost/app")

	cfgPath := createTempConfig(t, `
logging:
  level: none
source:
  type: postgres
  query: SELECT id FROM items
`)

	ext, err := FromConfigFile(cfgPath, "")
	if err != nil {
		t.Fatalf("FromConfigFile() unexpected error: %v", err)
	}

	if _, err := ext.Extract(""); err != nil {
		t.Fatalf("Extract(\"\") unexpected error: %v", err)
	}
	if conn.gotQuery != "SELECT id FROM items" {
		t.Errorf("query = %q, want configured query", conn.gotQuery)
	}
	if *gotConnStr != "postgres://env-user:pw@localhost/app" {
		t.Errorf("connection string = %q, want value of %s", *gotConnStr, DBCredentialsEnv)
	}

	conn.rows = &fakeRows{columns: []string{"n"}, data: [][]any{{int64(2)}}}
	got, err := ext.Extract("SELECT 2 AS n")
	if err != nil {
		t.Fatalf("Extract(query) unexpected error: %v", err)
	}
	if conn.gotQuery != "SELECT 2 AS n" {
		t.Errorf("query = %q, want argument to override configured query", conn.gotQuery)
	}
	compareRecords(t, got, []extract.Record{rec("n", int64(2))})
}

func TestFromConfigFile_Errors(t *testing.T) {
	testCases := []struct {
		name       string
		content    string
		dbConnStr  string
		wantErrMsg string
	}{
		{name: "Invalid YAML", content: "source: [", wantErrMsg: "failed to parse YAML"},
		{name: "Unknown type", content: "source:\n  type: parquet\n", wantErrMsg: "invalid source type"},
		{name: "Bad filter", content: "source:\n  type: csv\nfilter: \"a ==\"\n", wantErrMsg: "Config.Filter"},
		{name: "Postgres without credentials", content: "source:\n  type: postgres\n  query: SELECT 1\n", wantErrMsg: "connection string"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(DBCredentialsEnv, "")
			path := createTempConfig(t, tc.content)
			ext, err := FromConfigFile(path, tc.dbConnStr)
			if err == nil || !strings.Contains(err.Error(), tc.wantErrMsg) {
				t.Fatalf("FromConfigFile() error = %v, want error containing %q", err, tc.wantErrMsg)
			}
			if ext != nil {
				t.Errorf("FromConfigFile() extractor = %v, want nil", ext)
			}
		})
	}

	t.Run("Missing config", func(t *testing.T) {
		if _, err := FromConfigFile(missingPath(t, "none.yaml"), ""); err == nil {
			t.Error("FromConfigFile() error = nil, want error")
		}
	})
}

