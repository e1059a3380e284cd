package chain

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// ExecutableError reports a tool that could not be located.
type ExecutableError struct {
	Tool   string
	Path   string
	Option string
}

func (e *ExecutableError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("auto-detection of executables (%s) not implemented yet, please specify the %s option", e.Tool, e.Option)
	}
	return fmt.Sprintf("Can't find executable for %q at provided path: %q", e.Tool, e.Path)
}

// ResolveExecutable checks a configured tool path. Surrounding whitespace and
// quotes are stripped. An empty path is an error naming option, since tools
// are never auto-detected.
func ResolveExecutable(tool, configured, option string) (string, error) {
	if configured == "" {
		return "", &ExecutableError{Tool: tool, Option: option}
	}
	exe := strings.Trim(configured, " \t\r\n\"'")
	info, err := os.Stat(exe)
	if err != nil || info.IsDir() {
		return "", &ExecutableError{Tool: tool, Path: configured, Option: option}
	}
	return exe, nil
}

// LookPath finds name on disk or on the system PATH.
func LookPath(name string) (string, error) {
	name = strings.Trim(name, " \t\r\n\"'")
	if info, err := os.Stat(name); err == nil && !info.IsDir() {
		return name, nil
	}
	p, err := exec.LookPath(name)
	if err != nil {
		return "", fmt.Errorf("look up %s: %w", name, err)
	}
	return p, nil
}
