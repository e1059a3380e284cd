package command

// Input is everything the builder needs for one run. Paths are expected to be
// absolute already.
type Input struct {
	Runner             string
	RunnerOptions      string
	RunnerOutput       string
	CoverageOutput     string
	CoverageReportBase string
	BaseFilters        string
	Exclude            []string
	TestAssemblies     []string
	ScopeAssemblies    []string
}

// Plan holds the argument vectors of one coverage run.
type Plan struct {
	Runner     RunnerIdentity
	RunnerArgs string
	Filters    string
	Cover      []string
	XMLReport  []string
	HTMLReport []string
}

// Build assembles the plan. It refuses to build anything without test
// assemblies.
func Build(in Input) (*Plan, error) {
	if len(in.TestAssemblies) == 0 {
		return nil, ErrNoTestAssemblies
	}

	runner := DetectRunner(in.Runner)
	runnerArgs := RunnerArgs(runner, in.RunnerOptions, in.RunnerOutput, in.TestAssemblies)
	filters := Filters(in.BaseFilters, in.Exclude)

	return &Plan{
		Runner:     runner,
		RunnerArgs: runnerArgs,
		Filters:    filters,
		Cover:      CoverArgs(in.Runner, in.CoverageOutput, filters, runnerArgs, in.ScopeAssemblies),
		XMLReport:  ReportArgs("XML", in.CoverageOutput, in.CoverageReportBase),
		HTMLReport: ReportArgs("HTML", in.CoverageOutput, in.CoverageReportBase),
	}, nil
}
