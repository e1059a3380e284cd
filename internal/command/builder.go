// Package command builds the argument vectors handed to dotCover and, through
// dotCover, to the NUnit console runner.
package command

import (
	"errors"
	"strings"
)

// ErrNoTestAssemblies is returned when classification produced nothing to test.
var ErrNoTestAssemblies = errors.New("no test assemblies defined")

// RunnerIdentity tells the NUnit 2.x console runner apart from NUnit 3.
type RunnerIdentity int

const (
	Legacy RunnerIdentity = iota
	Modern
)

const modernMarker = "nunit3-"

func (r RunnerIdentity) String() string {
	if r == Modern {
		return "nunit3"
	}
	return "nunit2"
}

// DetectRunner infers the runner family from its executable path.
func DetectRunner(runnerPath string) RunnerIdentity {
	if strings.Contains(runnerPath, modernMarker) {
		return Modern
	}
	return Legacy
}

// OutputSwitch writes the test results where the caller asked, in the NUnit 2
// format for both families.
func OutputSwitch(r RunnerIdentity, outputPath string) string {
	if r == Modern {
		return "/result:" + outputPath + ";format=nunit2"
	}
	return "/xml=" + outputPath
}

// NoShadowSwitch disables shadow copying on NUnit 2; NUnit 3 dropped the
// switch and does not shadow copy by default.
func NoShadowSwitch(r RunnerIdentity) string {
	if r == Modern {
		return ""
	}
	return "/noshadow"
}

// PlatformSwitch forces 32-bit execution on NUnit 3. NUnit 2 ships separate
// x86 runners instead.
func PlatformSwitch(r RunnerIdentity) string {
	if r == Modern {
		return "/x86"
	}
	return ""
}

// NormalizeLabels rewrites a bare /labels flag to /labels:All so one option
// string works with both runner families. Options already using labels: are
// returned untouched.
func NormalizeLabels(options string) string {
	if strings.Contains(options, "labels:") {
		return options
	}
	return strings.Replace(options, "/labels", "/labels:All", 1)
}

// RunnerArgs is the full NUnit argument string. Empty switches still take
// their slot so existing invocations are reproduced byte for byte.
func RunnerArgs(r RunnerIdentity, options, outputPath string, testAssemblies []string) string {
	return strings.Join([]string{
		NormalizeLabels(options),
		OutputSwitch(r, outputPath),
		NoShadowSwitch(r),
		PlatformSwitch(r),
		strings.Join(testAssemblies, " "),
	}, " ")
}

const filterJoin = ";-:"

// Filters appends the exclusion fragments to the base filter expression.
func Filters(base string, exclude []string) string {
	if len(exclude) == 0 {
		return base
	}
	return base + filterJoin + strings.Join(exclude, filterJoin)
}

// CoverArgs is the dotCover "cover" vector running runner over the tests.
func CoverArgs(runner, coverageOutput, filters, runnerArgs string, scope []string) []string {
	args := []string{
		"cover",
		"/TargetExecutable=" + runner,
		"/AnalyseTargetArguments=False",
		"/Output=" + coverageOutput,
		"/Filters=" + filters,
		`/TargetArguments=""` + runnerArgs + `""`,
	}
	if len(scope) > 0 {
		args = append(args, "/Scope="+strings.Join(scope, ";"))
	}
	return args
}

// ReportArgs is the dotCover "report" vector for reportType (XML or HTML).
func ReportArgs(reportType, coverageOutput, reportBase string) []string {
	return []string{
		"report",
		"/ReportType=" + reportType,
		"/Source=" + coverageOutput,
		"/Output=" + reportBase + "." + strings.ToLower(reportType),
	}
}
