package extractors

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"etl-extract/internal/logging"
	"etl-extract/pkg/extract"

	"github.com/Knetic/govaluate"
)

// evaluator is the part of *govaluate.EvaluableExpression the filter uses.
type evaluator interface {
	Evaluate(map[string]interface{}) (interface{}, error)
}

// FilterExtractor wraps another extractor and keeps only the records for
// which a boolean expression holds, e.g. "status == 'active' && amount > 0".
//
// Field values are exposed to the expression by name. Int values and text
// holding a finite decimal number are presented as float64 so numeric
// comparisons work; the records returned are unchanged. Integers beyond
// ±2^53 have no exact float64 form and are passed as int64 (Int) or left as
// text, so they only match by string equality. "NaN", "Inf" and hex floats
// stay text. An evaluation error or a non-boolean result fails the whole
// extraction.
type FilterExtractor[T any] struct {
	inner extract.Extractor[T]
	expr  string
	eval  evaluator
}

// Filter returns inner restricted to records matching expr. A syntax error
// in expr is reported here, not at extraction time.
func Filter[T any](inner extract.Extractor[T], expr string) (*FilterExtractor[T], error) {
	if inner == nil {
		return nil, fmt.Errorf("filter requires an inner extractor")
	}
	compiled, err := govaluate.NewEvaluableExpression(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid filter expression '%s': %w", expr, err)
	}
	return &FilterExtractor[T]{inner: inner, expr: expr, eval: compiled}, nil
}

// Extract runs the inner extractor and filters its records.
func (fe *FilterExtractor[T]) Extract(source T) ([]extract.Record, error) {
	records, err := fe.inner.Extract(source)
	if err != nil {
		return nil, err
	}

	kept := make([]extract.Record, 0, len(records))
	for i, rec := range records {
		result, err := fe.eval.Evaluate(filterParams(rec))
		if err != nil {
			return nil, fmt.Errorf("filter '%s' failed on record %d: %w", fe.expr, i, err)
		}
		keep, ok := result.(bool)
		if !ok {
			return nil, fmt.Errorf("filter '%s' returned %T (%v) for record %d, want bool", fe.expr, result, result, i)
		}
		if keep {
			kept = append(kept, rec)
		} else {
			logging.Logf(logging.Debug, "Record %d skipped by filter.", i)
		}
	}

	logging.Logf(logging.Debug, "Filter applied: %d kept, %d skipped.", len(kept), len(records)-len(kept))
	return kept, nil
}

// maxExactInt is the largest magnitude float64 holds without rounding.
const maxExactInt = 1 << 53

// filterParams builds the govaluate parameter map for one record.
func filterParams(rec extract.Record) map[string]interface{} {
	params := make(map[string]interface{}, rec.Len())
	for _, f := range rec.Fields() {
		switch f.Value.Kind() {
		case extract.KindInt:
			i, _ := f.Value.AsInt()
			if i >= -maxExactInt && i <= maxExactInt {
				params[f.Name] = float64(i)
			} else {
				params[f.Name] = i
			}
		case extract.KindText:
			s, _ := f.Value.AsText()
			if n, ok := decimalNumber(s); ok {
				params[f.Name] = n
			} else {
				params[f.Name] = s
			}
		default:
			params[f.Name] = f.Value.Interface()
		}
	}
	return params
}

// decimalNumber parses s as a finite decimal number. Hex floats, NaN and
// infinities are rejected, as are integers too large to convert exactly.
func decimalNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	digits := strings.TrimLeft(s, "+-")
	if len(digits) > 1 && digits[0] == '0' && (digits[1] == 'x' || digits[1] == 'X') {
		return 0, false
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	i, err := strconv.ParseInt(s, 10, 64)
	if errors.Is(err, strconv.ErrRange) || (err == nil && (i > maxExactInt || i < -maxExactInt)) {
		return 0, false
	}
	return n, true
}
