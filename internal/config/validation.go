package config

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"etl-extract/internal/logging"

	"github.com/Knetic/govaluate"
)

var (
	knownLogLevels   = []string{"none", "error", "warn", "warning", "info", "debug"}
	knownSourceTypes = []string{SourceTypeCSV, SourceTypeJSON, SourceTypeYAML, SourceTypeXML, SourceTypeXLSX, SourceTypePostgres}
)

// isValidEnumValue reports whether value case-insensitively matches one of allowed.
func isValidEnumValue(value string, allowed []string) bool {
	for _, a := range allowed {
		if strings.EqualFold(value, a) {
			return true
		}
	}
	return false
}

// ValidateConfig checks the whole config and reports every problem at once.
func ValidateConfig(cfg *ExtractConfig) error {
	var allErrors []string

	if !isValidEnumValue(cfg.Logging.Level, knownLogLevels) {
		allErrors = append(allErrors, fmt.Sprintf("- Config.Logging.Level: invalid log level '%s', must be one of %v", cfg.Logging.Level, knownLogLevels))
	}

	allErrors = append(allErrors, validateSourceConfig("Config.Source", &cfg.Source)...)

	if cfg.Filter != "" {
		if _, err := govaluate.NewEvaluableExpression(cfg.Filter); err != nil {
			allErrors = append(allErrors, fmt.Sprintf("- Config.Filter: invalid expression syntax: %v", err))
		}
	}

	if len(allErrors) > 0 {
		return fmt.Errorf("configuration validation failed:\n%s", strings.Join(allErrors, "\n"))
	}
	logging.Logf(logging.Debug, "Configuration validation successful.")
	return nil
}

func validateSourceConfig(prefix string, cfg *SourceConfig) []string {
	var errs []string
	if cfg.Type == "" {
		return append(errs, fmt.Sprintf("- %s.Type: is required", prefix))
	}
	if !isValidEnumValue(cfg.Type, knownSourceTypes) {
		return append(errs, fmt.Sprintf("- %s.Type: invalid source type '%s', must be one of %v", prefix, cfg.Type, knownSourceTypes))
	}

	lcType := strings.ToLower(cfg.Type)
	if lcType == SourceTypePostgres {
		if cfg.File != "" {
			logging.Logf(logging.Warning, "Validation: %s.File is specified but will be ignored for source type 'postgres'", prefix)
		}
	} else if cfg.Query != "" {
		logging.Logf(logging.Warning, "Validation: %s.Query is specified but will be ignored for source type '%s'", prefix, cfg.Type)
	}

	switch lcType {
	case SourceTypeCSV:
		if err := ValidateDelimiter(cfg.Delimiter, cfg.CommentChar); err != nil {
			errs = append(errs, fmt.Sprintf("- %s.Delimiter/CommentChar: %v", prefix, err))
		}
	case SourceTypeXLSX:
		if cfg.SheetName != "" {
			if err := validateSheetName(cfg.SheetName); err != nil {
				errs = append(errs, fmt.Sprintf("- %s.SheetName: %v", prefix, err))
			}
		}
		if cfg.SheetIndex != nil && *cfg.SheetIndex < 0 {
			errs = append(errs, fmt.Sprintf("- %s.SheetIndex: cannot be negative", prefix))
		}
		if cfg.SheetName != "" && cfg.SheetIndex != nil {
			logging.Logf(logging.Warning, "Validation: Both %s.SheetName ('%s') and %s.SheetIndex (%d) are specified. SheetName will be used.", prefix, cfg.SheetName, prefix, *cfg.SheetIndex)
		}
	case SourceTypeXML:
		if err := validateXMLName(cfg.XMLRecordTag); err != nil {
			errs = append(errs, fmt.Sprintf("- %s.XMLRecordTag: %v", prefix, err))
		}
	}

	if lcType != SourceTypeCSV && (cfg.CommentChar != "" || cfg.TrimLeadingSpace || cfg.LazyQuotes) {
		logging.Logf(logging.Warning, "Validation: CSV options in %s are ignored for source type '%s'", prefix, cfg.Type)
	}
	return errs
}

// ValidateDelimiter checks a delimiter / comment character pair the way
// encoding/csv would: each must be a single valid rune, neither may be a
// quote, carriage return or newline, and they must differ. An empty
// delimiter means ","; an empty comment disables comments.
func ValidateDelimiter(delimiter, comment string) error {
	delim, err := ParseRune(delimiter, ',')
	if err != nil {
		return fmt.Errorf("invalid delimiter %s: %w", strconv.Quote(delimiter), err)
	}
	com, err := ParseRune(comment, 0)
	if err != nil {
		return fmt.Errorf("invalid comment character %s: %w", strconv.Quote(comment), err)
	}
	if com != 0 && com == delim {
		return fmt.Errorf("delimiter and comment character must differ (both %s)", strconv.QuoteRune(delim))
	}
	return nil
}

// ParseRune returns the single rune in s, or def when s is empty.
func ParseRune(s string, def rune) (rune, error) {
	if s == "" {
		return def, nil
	}
	if utf8.RuneCountInString(s) != 1 {
		return 0, fmt.Errorf("must be a single character")
	}
	r, _ := utf8.DecodeRuneInString(s)
	switch r {
	case utf8.RuneError:
		return 0, fmt.Errorf("not a valid UTF-8 character")
	case '"', '\r', '\n':
		return 0, fmt.Errorf("cannot be a quote or line break")
	}
	return r, nil
}

// validateSheetName applies Excel's sheet naming rules.
func validateSheetName(sheetName string) error {
	if utf8.RuneCountInString(sheetName) > 31 {
		return fmt.Errorf("'%s' exceeds maximum length of 31 characters", sheetName)
	}
	if strings.ContainsAny(sheetName, `:\/?*[]`) {
		return fmt.Errorf("'%s' contains invalid characters (: \\ / ? * [ ])", sheetName)
	}
	if strings.HasPrefix(sheetName, "'") || strings.HasSuffix(sheetName, "'") {
		return fmt.Errorf("'%s' cannot start or end with a single quote", sheetName)
	}
	return nil
}

// validateXMLName is a simplified XML Name check covering common mistakes.
func validateXMLName(name string) error {
	if name == "" {
		return fmt.Errorf("invalid XML name: cannot be empty")
	}
	if strings.ContainsAny(name, " <>/?!=\"'#%&+,;@^`~(){}|\\") {
		return fmt.Errorf("invalid XML name '%s': contains invalid characters", name)
	}
	if r, _ := utf8.DecodeRuneInString(name); (r >= '0' && r <= '9') || r == '-' {
		return fmt.Errorf("invalid XML name '%s': cannot start with a digit or hyphen", name)
	}
	if len(name) >= 3 && strings.EqualFold(name[:3], "xml") {
		return fmt.Errorf("invalid XML name '%s': cannot start with 'xml'", name)
	}
	return nil
}
