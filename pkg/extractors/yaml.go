package extractors

import (
	"fmt"

	"etl-extract/internal/logging"
	"etl-extract/pkg/extract"

	"gopkg.in/yaml.v3"
)

var _ extract.Extractor[string] = (*YAMLExtractor)(nil)

// YAMLExtractor reads a file holding a sequence of mappings or a single
// mapping. Unlike JSON, keys keep their document order. An empty or null
// document yields no records.
type YAMLExtractor struct{}

// YAML returns the YAML file extractor.
func YAML() *YAMLExtractor { return &YAMLExtractor{} }

// Extract decodes the file at path.
func (ye *YAMLExtractor) Extract(path string) ([]extract.Record, error) {
	if err := checkFile(path); err != nil {
		return nil, err
	}
	logging.Logf(logging.Debug, "YAMLExtractor reading file: %s", path)

	data, err := readText(path)
	if err != nil {
		return nil, extract.NewIOError(path, "read", err)
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, extract.NewIOError(path, "decode", err)
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		logging.Logf(logging.Debug, "YAML file '%s' is empty", path)
		return []extract.Record{}, nil
	}

	root := doc.Content[0]
	var records []extract.Record
	switch {
	case root.Kind == yaml.ScalarNode && root.Tag == "!!null":
		records = []extract.Record{}
	case root.Kind == yaml.MappingNode:
		rec, err := recordFromMapping(root)
		if err != nil {
			return nil, extract.NewIOError(path, "decode", err)
		}
		records = []extract.Record{rec}
	case root.Kind == yaml.SequenceNode:
		records = make([]extract.Record, 0, len(root.Content))
		for i, item := range root.Content {
			if item.Kind == yaml.AliasNode {
				item = item.Alias
			}
			if item.Kind != yaml.MappingNode {
				return nil, extract.NewIOError(path, "decode", fmt.Errorf("sequence item %d (line %d) is not a mapping", i, item.Line))
			}
			rec, err := recordFromMapping(item)
			if err != nil {
				return nil, extract.NewIOError(path, "decode", err)
			}
			records = append(records, rec)
		}
	default:
		return nil, extract.NewIOError(path, "decode", fmt.Errorf("document root (line %d) is neither a sequence nor a mapping", root.Line))
	}

	logging.Logf(logging.Debug, "YAMLExtractor loaded %d records from %s", len(records), path)
	return records, nil
}

// recordFromMapping converts one mapping node, preserving key order.
func recordFromMapping(node *yaml.Node) (extract.Record, error) {
	fields := make([]extract.Field, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, valNode := node.Content[i], node.Content[i+1]
		if key.Kind != yaml.ScalarNode {
			return extract.Record{}, fmt.Errorf("mapping key at line %d is not a scalar", key.Line)
		}
		var val any
		if err := valNode.Decode(&val); err != nil {
			return extract.Record{}, fmt.Errorf("value of '%s' at line %d: %w", key.Value, valNode.Line, err)
		}
		fields = append(fields, extract.Field{Name: key.Value, Value: extract.ValueOf(val)})
	}
	return extract.NewRecord(fields...), nil
}
