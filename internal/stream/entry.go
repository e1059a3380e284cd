// Package stream drives a build-stream stage: every file entry is passed
// through unchanged while the stage folds it into its own state, and the stage
// is finalised once at end of input.
package stream

// FileEntry is a build artifact flowing through the stream.
type FileEntry struct {
	Path    string
	History []string
}

// NewFileEntry creates an entry first seen at path.
func NewFileEntry(path string) *FileEntry {
	return &FileEntry{Path: path, History: []string{path}}
}

// FirstPath is the path the entry was first seen at.
func (f *FileEntry) FirstPath() string {
	if len(f.History) > 0 {
		return f.History[0]
	}
	return f.Path
}

// Sink consumes what the controller emits. A run delivers exactly one of
// Complete or Fail.
type Sink interface {
	Emit(entry *FileEntry)
	Complete()
	Fail(err error)
}

// RecordingSink keeps everything it receives. The CLI uses it to collect the
// terminal error; tests use it to assert on ordering.
type RecordingSink struct {
	Entries   []*FileEntry
	Completed int
	Errors    []error
}

func (s *RecordingSink) Emit(entry *FileEntry) { s.Entries = append(s.Entries, entry) }
func (s *RecordingSink) Complete()             { s.Completed++ }
func (s *RecordingSink) Fail(err error)        { s.Errors = append(s.Errors, err) }

// Err returns the first error received, if any.
func (s *RecordingSink) Err() error {
	if len(s.Errors) == 0 {
		return nil
	}
	return s.Errors[0]
}
