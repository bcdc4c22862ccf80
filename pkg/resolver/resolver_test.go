package resolver_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/driftmap/pkg/catalogs"
	"github.com/agentstation/driftmap/pkg/changelog"
	"github.com/agentstation/driftmap/pkg/exceptions"
	"github.com/agentstation/driftmap/pkg/resolver"
)

func ptr(s string) *string { return &s }

func TestCanonicalExampleA(t *testing.T) {
	store := exceptions.NewStore([]exceptions.Rule{
		{EntityType: catalogs.EntityTypeAttribute, PropertyName: "readOnly", Action: exceptions.Update},
	})
	entity := catalogs.Entity{
		ID:     "a1",
		Type:   catalogs.EntityTypeAttribute,
		RawLog: ptr("readOnly\nsource = false\ntarget = true\n\ninforms\nsource =\ntarget =\n"),
	}

	res := resolver.Canonical(entity, changelog.ParseLog(entity.RawLog), store)

	require.Len(t, res.Diffs, 2)
	assert.Equal(t, changelog.PropertyDiff{Property: "readOnly", Source: "false", Target: "true"}, res.Diffs[0].PropertyDiff)
	assert.Equal(t, changelog.PropertyDiff{Property: "informs"}, res.Diffs[1].PropertyDiff)
	assert.Equal(t, exceptions.Update, res.Diffs[0].Action)
	assert.Equal(t, exceptions.Ignore, res.Diffs[1].Action)
	assert.Equal(t, exceptions.Update, res.Action)
}

func TestCanonicalExampleB(t *testing.T) {
	entity := catalogs.Entity{ID: "c1", Type: catalogs.EntityTypeClass}
	res := resolver.Canonical(entity, changelog.ParseLog(entity.RawLog), exceptions.NewStore(nil))
	assert.Empty(t, res.Diffs)
	assert.Equal(t, exceptions.NoAction, res.Action)
}

func TestOverallAction(t *testing.T) {
	diff := func(a exceptions.Action) resolver.ResolvedDiff {
		return resolver.ResolvedDiff{Action: a}
	}
	tests := []struct {
		name  string
		diffs []resolver.ResolvedDiff
		want  exceptions.Action
	}{
		{name: "nil", diffs: nil, want: exceptions.NoAction},
		{name: "empty", diffs: []resolver.ResolvedDiff{}, want: exceptions.NoAction},
		{name: "all ignore", diffs: []resolver.ResolvedDiff{diff(exceptions.Ignore), diff(exceptions.Ignore)}, want: exceptions.Ignore},
		{name: "one update", diffs: []resolver.ResolvedDiff{diff(exceptions.Ignore), diff(exceptions.Update)}, want: exceptions.Update},
		{name: "update first", diffs: []resolver.ResolvedDiff{diff(exceptions.Update), diff(exceptions.Ignore)}, want: exceptions.Update},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, resolver.OverallAction(tt.diffs))
		})
	}
}

func TestNoRulesMeansIgnore(t *testing.T) {
	diffs := []changelog.PropertyDiff{{Property: "a"}, {Property: "b", Source: "x"}}
	res := resolver.Canonical(catalogs.Entity{Type: catalogs.EntityTypeGroup}, diffs, nil)
	assert.Equal(t, exceptions.Ignore, res.Action)
}

func TestDisplayCanDifferFromCanonical(t *testing.T) {
	store := exceptions.NewStore([]exceptions.Rule{
		{EntityType: catalogs.EntityTypeClass, PropertyName: "informs", Action: exceptions.Update},
	})
	diffs := []changelog.PropertyDiff{
		{Property: "readOnly", Source: "false", Target: "true"},
		{Property: "informs", Source: "a", Target: "b"},
	}
	canonical := resolver.Canonical(catalogs.Entity{Type: catalogs.EntityTypeClass}, diffs, store)
	require.Equal(t, exceptions.Update, canonical.Action)

	dropUpdates := func(in []resolver.ResolvedDiff) []resolver.ResolvedDiff {
		var out []resolver.ResolvedDiff
		for _, d := range in {
			if d.Action != exceptions.Update {
				out = append(out, d)
			}
		}
		return out
	}
	display := resolver.Display(canonical, dropUpdates)
	assert.Equal(t, exceptions.Ignore, display.Action)
	assert.Equal(t, []string{"readOnly"}, resolver.Properties(display.Diffs))

	// The canonical resolution is untouched by the display pass.
	assert.Equal(t, exceptions.Update, canonical.Action)
	assert.Len(t, canonical.Diffs, 2)
}

func TestDisplayApplyCannotMutateCanonical(t *testing.T) {
	canonical := resolver.Canonical(catalogs.Entity{Type: catalogs.EntityTypeClass},
		[]changelog.PropertyDiff{{Property: "p", Source: "1"}}, nil)

	resolver.Display(canonical, func(in []resolver.ResolvedDiff) []resolver.ResolvedDiff {
		in[0].Source = "changed"
		return in
	})
	assert.Equal(t, "1", canonical.Diffs[0].Source)
}

func TestDisplayNilApply(t *testing.T) {
	canonical := resolver.Canonical(catalogs.Entity{}, nil, nil)
	display := resolver.Display(canonical, nil)
	assert.NotNil(t, display.Diffs)
	assert.Equal(t, exceptions.NoAction, display.Action)
}

func TestRepresentative(t *testing.T) {
	src, tgt := resolver.Representative(nil)
	assert.Empty(t, src)
	assert.Empty(t, tgt)

	diffs := []resolver.ResolvedDiff{
		{PropertyDiff: changelog.PropertyDiff{Property: "a", Source: "s1", Target: "t1"}},
		{PropertyDiff: changelog.PropertyDiff{Property: "b", Source: "s2", Target: "t2"}},
	}
	src, tgt = resolver.Representative(diffs)
	assert.Equal(t, "s1", src)
	assert.Equal(t, "t1", tgt)
}
