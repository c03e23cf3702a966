package extractors

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"

	"etl-extract/internal/config"
	"etl-extract/internal/logging"
	"etl-extract/pkg/extract"
)

var _ extract.Extractor[string] = (*CSVExtractor)(nil)

// CSVExtractor extracts records from a delimited text file whose first record
// is the header. Each later record becomes one extract.Record keyed by the
// header names:
//   - rows shorter than the header get Null for the missing trailing fields
//   - rows longer than the header have the excess fields dropped
//   - empty fields are Null, every other field is Text; a quoted empty
//     field ("") is Null too, the same as an unquoted empty one
//
// Tokenizing (quotes, escaped delimiters, embedded newlines) is done by
// encoding/csv. Blank lines are skipped.
type CSVExtractor struct {
	Delimiter        rune // Field delimiter; 0 means ','.
	Comment          rune // Lines starting with this rune are skipped; 0 disables.
	TrimLeadingSpace bool // Ignore leading white space in each field.
	LazyQuotes       bool // Accept bare quotes in unquoted fields.
}

// CSVOption configures a CSVExtractor.
type CSVOption func(*CSVExtractor)

// WithDelimiter sets the field delimiter.
func WithDelimiter(r rune) CSVOption { return func(ce *CSVExtractor) { ce.Delimiter = r } }

// WithComment sets the comment character.
func WithComment(r rune) CSVOption { return func(ce *CSVExtractor) { ce.Comment = r } }

// WithTrimLeadingSpace ignores leading white space in fields.
func WithTrimLeadingSpace() CSVOption { return func(ce *CSVExtractor) { ce.TrimLeadingSpace = true } }

// WithLazyQuotes tolerates bare quotes in unquoted fields.
func WithLazyQuotes() CSVOption { return func(ce *CSVExtractor) { ce.LazyQuotes = true } }

// CSV returns the delimited-file extractor, comma separated unless an
// option says otherwise.
func CSV(opts ...CSVOption) *CSVExtractor {
	ce := &CSVExtractor{Delimiter: ','}
	for _, opt := range opts {
		opt(ce)
	}
	return ce
}

// NewCSVExtractor builds a CSVExtractor from config-style strings: delimiter
// defaults to "," and an empty comment disables comments. Each must be a
// single character.
func NewCSVExtractor(delimiter, comment string) (*CSVExtractor, error) {
	if err := config.ValidateDelimiter(delimiter, comment); err != nil {
		return nil, err
	}
	delim, _ := config.ParseRune(delimiter, ',')
	com, _ := config.ParseRune(comment, 0)
	return CSV(WithDelimiter(delim), WithComment(com)), nil
}

// Extract reads every data row of the file at path.
func (ce *CSVExtractor) Extract(path string) ([]extract.Record, error) {
	if err := checkFile(path); err != nil {
		return nil, err
	}
	logging.Logf(logging.Debug, "CSVExtractor reading file: %s (Delimiter: %q, Comment: %q)", path, ce.delimiter(), ce.Comment)

	tf, err := openText(path)
	if err != nil {
		return nil, extract.NewIOError(path, "open", err)
	}
	defer tf.Close()

	reader := csv.NewReader(tf)
	reader.Comma = ce.delimiter()
	reader.Comment = ce.Comment
	reader.FieldsPerRecord = -1 // row width is reconciled against the header, not enforced
	reader.TrimLeadingSpace = ce.TrimLeadingSpace
	reader.LazyQuotes = ce.LazyQuotes

	names, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, extract.NewIOError(path, "header", extract.ErrNoHeader)
	}
	if err != nil {
		return nil, extract.NewIOError(path, "parse", err)
	}
	if err := checkUTF8(reader, names); err != nil {
		return nil, extract.NewIOError(path, "header", err)
	}
	header, err := extract.NewHeader(names)
	if err != nil {
		return nil, extract.NewIOError(path, "header", err)
	}

	records := make([]extract.Record, 0)
	values := make([]extract.Value, header.Len())
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, extract.NewIOError(path, "parse", err)
		}
		if err := checkUTF8(reader, row); err != nil {
			return nil, extract.NewIOError(path, "parse", err)
		}
		for i := range values {
			values[i] = extract.Null()
			if i < len(row) && row[i] != "" {
				values[i] = extract.Text(row[i])
			}
		}
		records = append(records, header.Record(values))
	}

	logging.Logf(logging.Debug, "CSVExtractor loaded %d records from %s", len(records), path)
	return records, nil
}

func (ce *CSVExtractor) delimiter() rune {
	if ce.Delimiter == 0 {
		return ','
	}
	return ce.Delimiter
}

// checkUTF8 rejects a record holding invalid UTF-8, reporting where the bad
// field starts.
func checkUTF8(reader *csv.Reader, fields []string) error {
	for i, f := range fields {
		if !utf8.ValidString(f) {
			line, col := reader.FieldPos(i)
			return fmt.Errorf("%w (line %d, column %d)", extract.ErrInvalidEncoding, line, col)
		}
	}
	return nil
}
