// Package classify decides which build outputs take part in a coverage run.
package classify

import (
	"slices"
	"strings"
)

// Decision is the outcome of classifying one path, with the predicates that
// produced it so callers can explain an exclusion.
type Decision struct {
	Include           bool
	ProjectName       string
	IsBin             bool
	IsDebugOrAgnostic bool
	IsProjectMatch    bool
}

// Path classifies a build output path. Only outputs that sit in their own
// project's bin directory, either under Debug or directly under bin, are
// included. allowMismatch skips the project-name check.
func Path(path string, allowMismatch bool) Decision {
	parts := Segments(path)
	fileName := parts[len(parts)-1]

	projectName := fileName
	if i := strings.LastIndex(fileName, "."); i >= 0 {
		projectName = fileName[:i]
	}

	binAt := slices.Index(parts, "bin")
	d := Decision{
		ProjectName:       projectName,
		IsBin:             binAt > -1,
		IsDebugOrAgnostic: slices.Contains(parts, "Debug") || (binAt > -1 && binAt == len(parts)-2),
		IsProjectMatch:    allowMismatch || slices.Contains(parts, projectName),
	}
	d.Include = d.IsBin && d.IsDebugOrAgnostic && d.IsProjectMatch
	return d
}

// Segments splits a path on backslashes when it contains any, otherwise on
// forward slashes.
func Segments(path string) []string {
	if strings.Contains(path, `\`) {
		return strings.Split(path, `\`)
	}
	return strings.Split(path, "/")
}
