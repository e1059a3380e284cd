package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPath(t *testing.T) {
	tests := []struct {
		name          string
		path          string
		allowMismatch bool
		want          Decision
	}{
		{
			name: "windows debug output",
			path: `C:\proj\Foo\bin\Debug\Foo.dll`,
			want: Decision{Include: true, ProjectName: "Foo", IsBin: true, IsDebugOrAgnostic: true, IsProjectMatch: true},
		},
		{
			name: "unix debug output",
			path: "/src/Foo.Tests/bin/Debug/Foo.Tests.dll",
			want: Decision{Include: true, ProjectName: "Foo.Tests", IsBin: true, IsDebugOrAgnostic: true, IsProjectMatch: true},
		},
		{
			name: "directly under bin",
			path: "/src/Foo/bin/Foo.dll",
			want: Decision{Include: true, ProjectName: "Foo", IsBin: true, IsDebugOrAgnostic: true, IsProjectMatch: true},
		},
		{
			name: "release configuration",
			path: `C:\proj\Foo\bin\Release\Foo.dll`,
			want: Decision{ProjectName: "Foo", IsBin: true, IsProjectMatch: true},
		},
		{
			name: "obj directory",
			path: "/src/Foo/obj/Debug/Foo.dll",
			want: Decision{ProjectName: "Foo", IsDebugOrAgnostic: true, IsProjectMatch: true},
		},
		{
			name: "foreign assembly copied alongside",
			path: "/src/Foo.Tests/bin/Debug/nunit.framework.dll",
			want: Decision{ProjectName: "nunit.framework", IsBin: true, IsDebugOrAgnostic: true},
		},
		{
			name:          "foreign assembly with mismatch allowed",
			path:          "/src/Foo.Tests/bin/Debug/nunit.framework.dll",
			allowMismatch: true,
			want:          Decision{Include: true, ProjectName: "nunit.framework", IsBin: true, IsDebugOrAgnostic: true, IsProjectMatch: true},
		},
		{
			name:          "mismatch allowed but not in bin",
			path:          "/src/Foo/lib/Debug/Other.dll",
			allowMismatch: true,
			want:          Decision{ProjectName: "Other", IsDebugOrAgnostic: true, IsProjectMatch: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Path(tt.path, tt.allowMismatch))
		})
	}
}

func TestPath_NoBinSegmentNeverIncluded(t *testing.T) {
	paths := []string{
		"/src/Foo/Debug/Foo.dll",
		`C:\src\Foo\Debug\Foo.dll`,
		"Foo.dll",
		"/src/binaries/Foo/Foo.dll",
		"/src/Foo/Bin/Foo.dll",
	}
	for _, p := range paths {
		for _, allow := range []bool{false, true} {
			d := Path(p, allow)
			assert.False(t, d.IsBin, p)
			assert.False(t, d.Include, p)
		}
	}
}

func TestPath_BinDirectlyAboveFileIsAgnostic(t *testing.T) {
	paths := []string{
		"/a/Foo/bin/Foo.dll",
		`D:\work\Foo\bin\Foo.exe`,
		"relative/Foo/bin/Foo.dll",
	}
	for _, p := range paths {
		assert.True(t, Path(p, false).Include, p)
	}
}

func TestSegments(t *testing.T) {
	assert.Equal(t, []string{"C:", "a", "b.dll"}, Segments(`C:\a\b.dll`))
	assert.Equal(t, []string{"", "a", "b.dll"}, Segments("/a/b.dll"))
	assert.Equal(t, []string{"b.dll"}, Segments("b.dll"))
}

func TestPatternMatcher(t *testing.T) {
	m, err := NewPatternMatcher(`\.Tests\.dll$`)
	assert.NoError(t, err)
	assert.True(t, m.Matches("/src/Foo.Tests/bin/Debug/Foo.Tests.dll"))
	assert.False(t, m.Matches("/src/Foo/bin/Debug/Foo.dll"))
	assert.Equal(t, `\.Tests\.dll$`, m.String())

	_, err = NewPatternMatcher("(")
	assert.Error(t, err)
}

func TestMatcherFunc(t *testing.T) {
	var calls []string
	var m Matcher = MatcherFunc(func(path string) bool {
		calls = append(calls, path)
		return path == "yes"
	})
	assert.True(t, m.Matches("yes"))
	assert.False(t, m.Matches("no"))
	assert.Equal(t, []string{"yes", "no"}, calls)
}
