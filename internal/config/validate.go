package config

import (
	"fmt"
	"regexp"
	"strings"
)

// ValidationError represents a single validation issue with a config.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks a Config for semantic errors.
// It returns a slice of all validation errors found (empty if valid).
func Validate(cfg *Config) []ValidationError {
	var errs []ValidationError
	c := cfg.Coverage

	if strings.TrimSpace(c.BaseFilters) == "" {
		errs = append(errs, ValidationError{Field: "coverage.base_filters", Message: "is required"})
	}

	for i, frag := range c.Exclude {
		switch {
		case strings.TrimSpace(frag) == "":
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("coverage.exclude[%d]", i),
				Message: "is empty",
			})
		case strings.Contains(frag, ";"):
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("coverage.exclude[%d]", i),
				Message: fmt.Sprintf("fragment %q must not contain the filter separator ';'", frag),
			})
		}
	}

	if c.TestAssemblyFilter != "" {
		if _, err := regexp.Compile(c.TestAssemblyFilter); err != nil {
			errs = append(errs, ValidationError{
				Field:   "coverage.test_assembly_filter",
				Message: fmt.Sprintf("invalid pattern: %v", err),
			})
		}
	}

	for _, out := range []struct {
		field string
		path  string
	}{
		{"coverage.nunit_output", c.NUnitOutput},
		{"coverage.coverage_output", c.CoverageOutput},
		{"coverage.coverage_report_base", c.CoverageReportBase},
	} {
		if out.path == "" {
			errs = append(errs, ValidationError{Field: out.field, Message: "is required"})
		}
	}

	if cfg.Restore.NuGet == "" {
		errs = append(errs, ValidationError{Field: "restore.nuget", Message: "is required"})
	}

	if dsn := cfg.History.DSN; dsn != "" && !strings.HasPrefix(dsn, "postgres://") && !strings.HasPrefix(dsn, "postgresql://") && !strings.Contains(dsn, "=") {
		errs = append(errs, ValidationError{
			Field:   "history.dsn",
			Message: "must be a postgres URL or key=value connection string",
		})
	}

	return errs
}
