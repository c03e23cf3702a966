// Package extract defines the extraction contract: a single-operation
// capability that turns a source of type T into an ordered slice of Records.
//
// The contract carries no implementation. Concrete strategies (delimited
// files, JSON, databases, in-memory data) live in package extractors and are
// obtained through one factory function each.
package extract

// Extractor pulls data out of a source and returns it as Records, one per
// logical unit of data (row, object, element), in the source's natural order.
//
// Implementations define their own validity rules for source and their own
// failure conditions. Extract may perform I/O; for an unchanged source it is
// expected to return structurally equal results on every call.
type Extractor[T any] interface {
	// Extract reads source and returns every Record it holds, or an error.
	// On error no Records are returned.
	Extract(source T) ([]Record, error)
}

// Func adapts an ordinary function to the Extractor interface.
type Func[T any] func(source T) ([]Record, error)

// Extract calls f(source).
func (f Func[T]) Extract(source T) ([]Record, error) {
	return f(source)
}
