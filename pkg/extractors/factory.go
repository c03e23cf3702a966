package extractors

import (
	"fmt"
	"os"
	"strings"

	"etl-extract/internal/config"
	"etl-extract/internal/logging"
	"etl-extract/internal/util"
	"etl-extract/pkg/extract"
)

// DBCredentialsEnv names the environment variable holding the PostgreSQL
// connection string when none is passed explicitly.
const DBCredentialsEnv = "DB_CREDENTIALS"

// FromConfigFile builds an extractor from the YAML config at path. It applies
// the configured log level, then returns the strategy for source.type,
// wrapped in a filter when one is configured.
//
// The returned extractor's source argument overrides source.file (source.query
// for postgres); an empty argument falls back to the configured value.
// dbConnStr is only used for postgres and defaults to $DB_CREDENTIALS.
func FromConfigFile(path, dbConnStr string) (extract.Extractor[string], error) {
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, err
	}
	logging.SetupLogging(cfg.Logging.Level)

	if dbConnStr == "" {
		dbConnStr = os.Getenv(DBCredentialsEnv)
	}
	return fromConfig(cfg, dbConnStr)
}

// fromConfig builds the extractor for an already validated config.
func fromConfig(cfg *config.ExtractConfig, dbConnStr string) (extract.Extractor[string], error) {
	inner, err := newSourceExtractor(cfg.Source, dbConnStr)
	if err != nil {
		return nil, err
	}

	def := cfg.Source.File
	if cfg.Source.Type == config.SourceTypePostgres {
		def = cfg.Source.Query
	}
	var ext extract.Extractor[string] = &configured{inner: inner, defaultSource: def}

	if cfg.Filter != "" {
		logging.Logf(logging.Debug, "Applying filter: %s", cfg.Filter)
		filtered, err := Filter(ext, cfg.Filter)
		if err != nil {
			return nil, err
		}
		ext = filtered
	}
	return ext, nil
}

// newSourceExtractor returns the strategy for cfg.Type.
func newSourceExtractor(cfg config.SourceConfig, dbConnStr string) (extract.Extractor[string], error) {
	sourceType := strings.ToLower(cfg.Type)
	logging.Logf(logging.Debug, "Creating extractor for type: %s", sourceType)

	switch sourceType {
	case config.SourceTypeCSV:
		ce, err := NewCSVExtractor(cfg.Delimiter, cfg.CommentChar)
		if err != nil {
			return nil, fmt.Errorf("failed to create CSV extractor: %w", err)
		}
		ce.TrimLeadingSpace = cfg.TrimLeadingSpace
		ce.LazyQuotes = cfg.LazyQuotes
		return ce, nil
	case config.SourceTypeJSON:
		return JSON(), nil
	case config.SourceTypeYAML:
		return YAML(), nil
	case config.SourceTypeXML:
		return XML(cfg.XMLRecordTag), nil
	case config.SourceTypeXLSX:
		return XLSX(cfg.SheetName, cfg.SheetIndex), nil
	case config.SourceTypePostgres:
		if util.ExpandEnvUniversal(dbConnStr) == "" {
			return nil, fmt.Errorf("database connection string (%s) is required for source type 'postgres'", DBCredentialsEnv)
		}
		return Postgres(dbConnStr), nil
	default:
		return nil, fmt.Errorf("unsupported source type '%s'", cfg.Type)
	}
}

// configured substitutes the configured source when the caller passes none.
// File paths get environment variables expanded; queries are left alone.
type configured struct {
	inner         extract.Extractor[string]
	defaultSource string
}

func (c *configured) Extract(source string) ([]extract.Record, error) {
	if source == "" {
		source = c.defaultSource
	}
	if _, isQuery := c.inner.(*PostgresExtractor); !isQuery {
		source = util.ExpandEnvUniversal(source)
	}
	return c.inner.Extract(source)
}
