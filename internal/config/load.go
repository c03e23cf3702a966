package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadConfig reads, parses, defaults and validates an extraction config file.
func LoadConfig(filename string) (*ExtractConfig, error) {
	fileBytes, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", filename, err)
	}
	return ParseConfig(fileBytes, filename)
}

// ParseConfig is LoadConfig for YAML already in memory. name is only used in
// error messages.
func ParseConfig(data []byte, name string) (*ExtractConfig, error) {
	var cfg ExtractConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML in '%s': %w", name, err)
	}

	applyDefaults(&cfg)

	if err := ValidateConfig(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyDefaults fills unset options. Type is lowercased so later switches
// need not care about case.
func applyDefaults(cfg *ExtractConfig) {
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = DefaultLogLevel
	}

	cfg.Source.Type = strings.ToLower(strings.TrimSpace(cfg.Source.Type))
	switch cfg.Source.Type {
	case SourceTypeCSV:
		if cfg.Source.Delimiter == "" {
			cfg.Source.Delimiter = DefaultCSVDelimiter
		}
	case SourceTypeXML:
		if cfg.Source.XMLRecordTag == "" {
			cfg.Source.XMLRecordTag = DefaultXMLRecordTag
		}
	}
}
