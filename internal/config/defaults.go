package config

import (
	"fmt"
	"path/filepath"
	"regexp"
	"slices"

	"github.com/lucasnoah/covergate/internal/classify"
)

const (
	DefaultBaseFilters        = "+:module=*;class=*;function=*;-:*.Tests"
	DefaultNUnitOptions       = "/framework:net-4.5 /labels"
	DefaultNUnitOutput        = "buildreports/nunit-result.xml"
	DefaultCoverageOutput     = "buildreports/coveragesnapshot"
	DefaultCoverageReportBase = "buildreports/coverage"
	DefaultSummaryOutput      = "buildreports/coverage-summary.json"
	DefaultTestAssemblyFilter = `\.Tests\.dll$`
	DefaultNuGet              = "nuget.exe"
)

// Default returns a configuration with every default filled in.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// applyDefaults fills every unset field that has a default.
func applyDefaults(cfg *Config) {
	c := &cfg.Coverage
	setDefault(&c.BaseFilters, DefaultBaseFilters)
	setDefault(&c.NUnitOptions, DefaultNUnitOptions)
	setDefault(&c.NUnitOutput, DefaultNUnitOutput)
	setDefault(&c.CoverageOutput, DefaultCoverageOutput)
	setDefault(&c.CoverageReportBase, DefaultCoverageReportBase)
	setDefault(&c.SummaryOutput, DefaultSummaryOutput)
	setDefault(&c.TestAssemblyFilter, DefaultTestAssemblyFilter)

	setDefault(&cfg.Restore.NuGet, DefaultNuGet)
}

func setDefault(field *string, value string) {
	if *field == "" {
		*field = value
	}
}

// WithDefaults returns a copy of o with defaults merged in, every output path
// made absolute and the test-assembly matcher compiled. The receiver is left
// untouched.
func (o CoverageOptions) WithDefaults() (CoverageOptions, error) {
	cfg := Config{Coverage: o}
	applyDefaults(&cfg)
	out := cfg.Coverage
	out.Exclude = slices.Clone(o.Exclude)

	for _, p := range []*string{&out.NUnitOutput, &out.CoverageOutput, &out.CoverageReportBase, &out.SummaryOutput} {
		abs, err := filepath.Abs(*p)
		if err != nil {
			return CoverageOptions{}, fmt.Errorf("resolve output path %q: %w", *p, err)
		}
		*p = abs
	}

	if out.TestAssemblyMatcher == nil {
		m, err := classify.NewPatternMatcher(out.TestAssemblyFilter)
		if err != nil {
			return CoverageOptions{}, fmt.Errorf("test_assembly_filter: %w", err)
		}
		out.TestAssemblyMatcher = m
	}
	return out, nil
}

var windowsAbs = regexp.MustCompile(`^([A-Za-z]:[\\/]|\\\\)`)

// AbsPath makes p absolute. Windows drive and UNC paths are treated as
// absolute on every platform.
func AbsPath(p string) (string, error) {
	if filepath.IsAbs(p) || windowsAbs.MatchString(p) {
		return p, nil
	}
	return filepath.Abs(p)
}
