package extractors

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"etl-extract/internal/config"
	"etl-extract/internal/logging"
	"etl-extract/pkg/extract"
)

var _ extract.Extractor[string] = (*XMLExtractor)(nil)

// XMLExtractor reads a flat XML file where each element named RecordTag is a
// record and its child elements are the fields, e.g.
//
//	<records>
//	  <record><name>Alice</name><age>30</age></record>
//	</records>
//
// Field order follows the document. Character data of nested elements inside
// a field is concatenated and trimmed; an empty field is Null. If a field name
// repeats inside one record the last occurrence wins.
type XMLExtractor struct {
	RecordTag string
}

// XML returns an XML extractor for recordTag ("record" when empty).
func XML(recordTag string) *XMLExtractor {
	if recordTag == "" {
		recordTag = config.DefaultXMLRecordTag
	}
	return &XMLExtractor{RecordTag: recordTag}
}

// Extract streams the file at path through an XML decoder.
func (xe *XMLExtractor) Extract(path string) ([]extract.Record, error) {
	if err := checkFile(path); err != nil {
		return nil, err
	}
	logging.Logf(logging.Debug, "XMLExtractor reading file: %s (Record Tag: '%s')", path, xe.RecordTag)

	tf, err := openText(path)
	if err != nil {
		return nil, extract.NewIOError(path, "open", err)
	}
	defer tf.Close()

	decoder := xml.NewDecoder(tf)
	records := make([]extract.Record, 0)

	var (
		fields    []extract.Field // nil while outside a record
		fieldName string
		depth     int // 0 outside a record, 1 inside a record, 2+ inside a field
		text      strings.Builder
		sawToken  bool
	)

	for {
		token, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			if !sawToken {
				return nil, extract.NewIOError(path, "decode", fmt.Errorf("empty document: %w", io.ErrUnexpectedEOF))
			}
			break
		}
		if err != nil {
			return nil, extract.NewIOError(path, "decode", err)
		}
		sawToken = true

		switch tok := token.(type) {
		case xml.StartElement:
			switch {
			case depth == 0 && tok.Name.Local == xe.RecordTag:
				fields = make([]extract.Field, 0)
				depth = 1
			case depth == 1:
				fieldName = tok.Name.Local
				text.Reset()
				depth = 2
			case depth > 1:
				depth++
			}
		case xml.CharData:
			if depth > 1 {
				text.Write(tok)
			}
		case xml.EndElement:
			switch {
			case depth == 1:
				records = append(records, extract.NewRecord(fields...))
				fields = nil
				depth = 0
			case depth == 2:
				value := extract.Null()
				if s := strings.TrimSpace(text.String()); s != "" {
					value = extract.Text(s)
				}
				fields = append(fields, extract.Field{Name: fieldName, Value: value})
				depth = 1
			case depth > 2:
				depth--
			}
		}
	}

	logging.Logf(logging.Debug, "XMLExtractor loaded %d records from %s", len(records), path)
	return records, nil
}
