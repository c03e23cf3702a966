package config

const (
	SourceTypeCSV      = "csv"
	SourceTypeJSON     = "json"
	SourceTypeYAML     = "yaml"
	SourceTypeXML      = "xml"
	SourceTypeXLSX     = "xlsx"
	SourceTypePostgres = "postgres"

	DefaultLogLevel     = "info"
	DefaultCSVDelimiter = ","
	DefaultXMLRecordTag = "record"
)

// ExtractConfig is the root of an extraction YAML file.
type ExtractConfig struct {
	// Logging controls verbosity while the extractor runs.
	Logging LoggingConfig `yaml:"logging"`
	// Source selects the extraction strategy and its options.
	Source SourceConfig `yaml:"source"`
	// Filter is an optional govaluate expression evaluated against every
	// extracted record; only records for which it is true are returned.
	// Example: "status == 'active' && amount > 0"
	Filter string `yaml:"filter,omitempty"`
}

// LoggingConfig holds the log level ("none", "error", "warn", "info", "debug").
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// SourceConfig describes where records come from.
type SourceConfig struct {
	// Type is one of csv, json, yaml, xml, xlsx, postgres. Required.
	Type string `yaml:"type"`
	// File is the input path for file-based types. Environment variables are
	// expanded. May be left empty when the caller supplies the path at
	// extraction time.
	File string `yaml:"file,omitempty"`
	// Query is the SQL query for the postgres type.
	Query string `yaml:"query,omitempty"`

	// CSV field delimiter (default ",").
	Delimiter string `yaml:"delimiter,omitempty"`
	// CSV comment character; lines starting with it are skipped. Disabled when empty.
	CommentChar string `yaml:"commentChar,omitempty"`
	// CSV: ignore leading white space in a field.
	TrimLeadingSpace bool `yaml:"trimLeadingSpace,omitempty"`
	// CSV: accept bare quotes inside unquoted fields.
	LazyQuotes bool `yaml:"lazyQuotes,omitempty"`

	// XLSX sheet name. Takes precedence over SheetIndex.
	SheetName string `yaml:"sheetName,omitempty"`
	// XLSX 0-based sheet index. Pointer so that 0 differs from unset.
	SheetIndex *int `yaml:"sheetIndex,omitempty"`

	// XML element name of the repeating record element (default "record").
	XMLRecordTag string `yaml:"xmlRecordTag,omitempty"`
}
