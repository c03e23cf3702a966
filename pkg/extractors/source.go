// Package extractors holds the concrete extraction strategies: delimited text
// (CSV), JSON, YAML, XML and XLSX files, PostgreSQL queries and in-memory
// maps, plus a filtering decorator and a factory driven by a YAML config.
//
// Every file-based extractor checks its path before opening anything and
// fails with *extract.InvalidSourceError if the path is unusable. Failures
// after that point are *extract.ExtractionIOError. Extraction is
// all-or-nothing: on error no records are returned.
package extractors

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"etl-extract/pkg/extract"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// checkFile is the precondition shared by the file-based extractors: path
// must name an existing regular file. It only stats the path.
func checkFile(path string) error {
	if strings.TrimSpace(path) == "" {
		return &extract.InvalidSourceError{Source: path, Reason: "path is empty"}
	}
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &extract.InvalidSourceError{Source: path, Reason: "file does not exist", Err: err}
		}
		return &extract.InvalidSourceError{Source: path, Reason: "file cannot be accessed", Err: err}
	}
	if !info.Mode().IsRegular() {
		return &extract.InvalidSourceError{Source: path, Reason: "not a regular file"}
	}
	return nil
}

// textFile is an open text source whose reader strips a leading byte order
// mark. Closing it closes the underlying file.
type textFile struct {
	io.Reader
	file *os.File
}

func (tf *textFile) Close() error { return tf.file.Close() }

var (
	utf16LEBOM = []byte{0xFF, 0xFE}
	utf16BEBOM = []byte{0xFE, 0xFF}
)

// openText opens path for reading as UTF-8 text. A UTF-8 BOM is dropped. A
// UTF-16 BOM fails with extract.ErrInvalidEncoding.
func openText(path string) (*textFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	br := bufio.NewReader(f)
	if lead, _ := br.Peek(2); bytes.Equal(lead, utf16LEBOM) || bytes.Equal(lead, utf16BEBOM) {
		_ = f.Close()
		return nil, fmt.Errorf("%w: file starts with a UTF-16 byte order mark", extract.ErrInvalidEncoding)
	}
	return &textFile{
		Reader: transform.NewReader(br, unicode.BOMOverride(transform.Nop)),
		file:   f,
	}, nil
}

// readText reads all of path through openText.
func readText(path string) ([]byte, error) {
	tf, err := openText(path)
	if err != nil {
		return nil, err
	}
	defer tf.Close()
	return io.ReadAll(tf)
}
