package changelog_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"github.com/agentstation/driftmap/pkg/changelog"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    []changelog.PropertyDiff
		dropped int
	}{
		{
			name: "two blocks with empty values",
			raw:  "readOnly\nsource = false\ntarget = true\n\ninforms\nsource =\ntarget =\n",
			want: []changelog.PropertyDiff{
				{Property: "readOnly", Source: "false", Target: "true"},
				{Property: "informs", Source: "", Target: ""},
			},
		},
		{
			name: "empty input",
			raw:  "",
			want: []changelog.PropertyDiff{},
		},
		{
			name: "whitespace only",
			raw:  "  \n\t\n",
			want: []changelog.PropertyDiff{},
		},
		{
			name: "indented continuation lines join the target",
			raw:  "description\nsource = old\ntarget = line one\n  line two\n\tline three\nnext\nsource = a\ntarget = b",
			want: []changelog.PropertyDiff{
				{Property: "description", Source: "old", Target: "line one\nline two\nline three"},
				{Property: "next", Source: "a", Target: "b"},
			},
		},
		{
			name: "blank line inside target is kept",
			raw:  "p\nsource = a\ntarget = x\n\n  y\n",
			want: []changelog.PropertyDiff{
				{Property: "p", Source: "a", Target: "x\n\ny"},
			},
		},
		{
			name: "multi line source",
			raw:  "p\nsource = first\n  second\ntarget = t",
			want: []changelog.PropertyDiff{
				{Property: "p", Source: "first\nsecond", Target: "t"},
			},
		},
		{
			name: "unindented line continues the source",
			raw:  "description\nsource = line one\nline two\ntarget = x\n",
			want: []changelog.PropertyDiff{
				{Property: "description", Source: "line one\nline two", Target: "x"},
			},
		},
		{
			name: "unindented source continuation before the next block",
			raw:  "a\nsource = one\ntwo\nthree\ntarget = t\nb\nsource = s\ntarget = u",
			want: []changelog.PropertyDiff{
				{Property: "a", Source: "one\ntwo\nthree", Target: "t"},
				{Property: "b", Source: "s", Target: "u"},
			},
		},
		{
			name: "source without target runs to the next header",
			raw:  "a\nsource = one\ntwo\nb\nsource = s",
			want: []changelog.PropertyDiff{
				{Property: "a", Source: "one\ntwo", Target: ""},
				{Property: "b", Source: "s", Target: ""},
			},
		},
		{
			name: "stray line after an inline target is dropped",
			raw:  "p\nsource = a target = b\n  c\nq\n",
			want: []changelog.PropertyDiff{
				{Property: "p", Source: "a", Target: "b\nc"},
			},
			dropped: 1,
		},
		{
			name: "target on the source line",
			raw:  "p\nsource = a target = b",
			want: []changelog.PropertyDiff{
				{Property: "p", Source: "a", Target: "b"},
			},
		},
		{
			name: "missing target marker",
			raw:  "p\nsource = a\n",
			want: []changelog.PropertyDiff{
				{Property: "p", Source: "a", Target: ""},
			},
		},
		{
			name: "markers are case insensitive and spacing tolerant",
			raw:  "p\nSOURCE= a\nTarget   =b",
			want: []changelog.PropertyDiff{
				{Property: "p", Source: "a", Target: "b"},
			},
		},
		{
			name: "crlf line endings",
			raw:  "p\r\nsource = a\r\ntarget = b\r\n",
			want: []changelog.PropertyDiff{
				{Property: "p", Source: "a", Target: "b"},
			},
		},
		{
			name: "header trimmed",
			raw:  "readOnly   \nsource = 1\ntarget = 2",
			want: []changelog.PropertyDiff{
				{Property: "readOnly", Source: "1", Target: "2"},
			},
		},
		{
			name: "stray line before a block is dropped",
			raw:  "garbage\nreadOnly\nsource = 1\ntarget = 2",
			want: []changelog.PropertyDiff{
				{Property: "readOnly", Source: "1", Target: "2"},
			},
			dropped: 1,
		},
		{
			name: "unindented line ends the target",
			raw:  "p\nsource = a\ntarget = b\nstray words",
			want: []changelog.PropertyDiff{
				{Property: "p", Source: "a", Target: "b"},
			},
			dropped: 1,
		},
		{
			name:    "block without source marker is rejected",
			raw:     "p\ntarget = b\n",
			want:    []changelog.PropertyDiff{},
			dropped: 1,
		},
		{
			name:    "indented header is not a block boundary",
			raw:     "  p\nsource = a\ntarget = b",
			want:    []changelog.PropertyDiff{},
			dropped: 1,
		},
		{
			name: "order follows appearance",
			raw:  "z\nsource = 1\ntarget = 2\na\nsource = 3\ntarget = 4\nm\nsource = 5\ntarget = 6",
			want: []changelog.PropertyDiff{
				{Property: "z", Source: "1", Target: "2"},
				{Property: "a", Source: "3", Target: "4"},
				{Property: "m", Source: "5", Target: "6"},
			},
		},
		{
			name: "word containing target is not a marker",
			raw:  "p\nsource = retarget=x\ntarget = y",
			want: []changelog.PropertyDiff{
				{Property: "p", Source: "retarget=x", Target: "y"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := changelog.ParseWithStats(tt.raw)
			if diff := cmp.Diff(tt.want, res.Diffs); diff != "" {
				t.Errorf("ParseWithStats() diffs mismatch (-want +got):\n%s", diff)
			}
			assert.Equal(t, tt.dropped, res.Dropped, "dropped count")
			assert.Equal(t, res.Diffs, changelog.Parse(tt.raw))
		})
	}
}

func TestParseLog(t *testing.T) {
	t.Run("nil log", func(t *testing.T) {
		diffs := changelog.ParseLog(nil)
		assert.NotNil(t, diffs)
		assert.Empty(t, diffs)
	})

	t.Run("non-nil log", func(t *testing.T) {
		raw := "readOnly\nsource = false\ntarget = true"
		diffs := changelog.ParseLog(&raw)
		assert.Equal(t, []changelog.PropertyDiff{{Property: "readOnly", Source: "false", Target: "true"}}, diffs)
	})
}

func FuzzParse(f *testing.F) {
	f.Add("readOnly\nsource = false\ntarget = true\n")
	f.Add("p\nsource = a target = b\n  c\nq\n")
	f.Add("\r\n\tsource=\n")
	f.Fuzz(func(t *testing.T, raw string) {
		res := changelog.ParseWithStats(raw)
		for _, d := range res.Diffs {
			if d.Property == "" {
				t.Fatalf("empty property in %q", raw)
			}
		}
		if res.Dropped < 0 {
			t.Fatalf("negative dropped count")
		}
	})
}
