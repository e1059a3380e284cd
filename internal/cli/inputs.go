package cli

import (
	"bufio"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"slices"
	"strings"

	"github.com/lucasnoah/covergate/internal/stream"
)

var (
	assemblyExts = []string{".dll", ".exe"}
	solutionExts = []string{".sln"}
)

// inputOpts says where a command reads its file entries from.
type inputOpts struct {
	args  []string
	scan  string
	stdin bool
	exts  []string
}

// collectEntries gathers entries from positional paths, a directory scan and
// stdin, in that order.
func collectEntries(opts inputOpts, stdin io.Reader) ([]*stream.FileEntry, error) {
	var entries []*stream.FileEntry
	for _, p := range opts.args {
		entries = append(entries, stream.NewFileEntry(p))
	}

	if opts.scan != "" {
		err := filepath.WalkDir(opts.scan, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			if slices.Contains(opts.exts, strings.ToLower(filepath.Ext(p))) {
				entries = append(entries, stream.NewFileEntry(p))
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", opts.scan, err)
		}
	}

	if opts.stdin {
		sc := bufio.NewScanner(stdin)
		for sc.Scan() {
			line := strings.TrimSpace(sc.Text())
			if line == "" {
				continue
			}
			entries = append(entries, stream.NewFileEntry(line))
		}
		if err := sc.Err(); err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
	}
	return entries, nil
}
