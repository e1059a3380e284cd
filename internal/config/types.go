package config

import "github.com/lucasnoah/covergate/internal/classify"

// Config is the top-level structure parsed from covergate.yaml.
type Config struct {
	Coverage CoverageOptions `yaml:"coverage"`
	Restore  RestoreOptions  `yaml:"restore"`
	History  HistoryOptions  `yaml:"history"`
	Metrics  MetricsOptions  `yaml:"metrics"`
}

// Executables holds the tool paths. Neither is auto-detected.
type Executables struct {
	DotCover string `yaml:"dotcover,omitempty"`
	NUnit    string `yaml:"nunit,omitempty"`
}

// CoverageOptions configures one coverage run.
type CoverageOptions struct {
	Exec                         Executables `yaml:"exec"`
	BaseFilters                  string      `yaml:"base_filters"`
	Exclude                      []string    `yaml:"exclude,omitempty"`
	NUnitOptions                 string      `yaml:"nunit_options"`
	NUnitOutput                  string      `yaml:"nunit_output"`
	CoverageOutput               string      `yaml:"coverage_output"`
	CoverageReportBase           string      `yaml:"coverage_report_base"`
	SummaryOutput                string      `yaml:"summary_output"`
	TestAssemblyFilter           string      `yaml:"test_assembly_filter"`
	AllowProjectAssemblyMismatch bool        `yaml:"allow_project_assembly_mismatch"`
	Debug                        bool        `yaml:"debug"`

	// TestAssemblyMatcher overrides TestAssemblyFilter for programmatic callers.
	TestAssemblyMatcher classify.Matcher `yaml:"-"`
}

// RestoreOptions configures the NuGet restore stage.
type RestoreOptions struct {
	NuGet string `yaml:"nuget"`
	Force bool   `yaml:"force"`
	Debug bool   `yaml:"debug"`
}

// HistoryOptions points at the optional Postgres run history.
type HistoryOptions struct {
	DSN string `yaml:"dsn,omitempty"`
}

// MetricsOptions configures the Prometheus textfile export.
type MetricsOptions struct {
	Textfile string `yaml:"textfile,omitempty"`
}
