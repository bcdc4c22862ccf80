// Package filter provides the display filters applied to resolved diffs.
//
// Filters are pure. Each one returns an order-preserving subset of its input
// and never fabricates entries, so the filtered list is always a subset of the
// canonical diff list. A Pipeline applies the direction, property and
// update-visibility filters in that fixed order.
package filter

import (
	"strings"

	"github.com/agentstation/driftmap/pkg/exceptions"
	"github.com/agentstation/driftmap/pkg/resolver"
)

// Filter transforms a resolved diff list.
type Filter interface {
	Apply(diffs []resolver.ResolvedDiff) []resolver.ResolvedDiff
}

// Func allows functions to implement Filter.
type Func func(diffs []resolver.ResolvedDiff) []resolver.ResolvedDiff

// Apply implements Filter.
func (f Func) Apply(diffs []resolver.ResolvedDiff) []resolver.ResolvedDiff {
	return f(diffs)
}

// Identity returns its input unchanged.
var Identity Filter = Func(func(diffs []resolver.ResolvedDiff) []resolver.ResolvedDiff { return diffs })

// Keep returns a filter that retains diffs satisfying pred.
func Keep(pred func(resolver.ResolvedDiff) bool) Filter {
	return Func(func(diffs []resolver.ResolvedDiff) []resolver.ResolvedDiff {
		out := make([]resolver.ResolvedDiff, 0, len(diffs))
		for _, d := range diffs {
			if pred(d) {
				out = append(out, d)
			}
		}
		return out
	})
}

// IsEmpty reports whether a diff value counts as empty: blank, or
// case-insensitively "null" or "none".
func IsEmpty(v string) bool {
	v = strings.TrimSpace(v)
	return v == "" || strings.EqualFold(v, "null") || strings.EqualFold(v, "none")
}

// ByDirection keeps diffs matching the transition pattern. Unknown directions
// are identity.
func ByDirection(dir Direction) Filter {
	var pred func(src, tgt bool) bool
	switch dir {
	case SourceToNull:
		pred = func(src, tgt bool) bool { return src && !tgt }
	case NullToTarget:
		pred = func(src, tgt bool) bool { return !src && tgt }
	case SourceToTarget:
		pred = func(src, tgt bool) bool { return src && tgt }
	case HasSource:
		pred = func(src, _ bool) bool { return src }
	case HasTarget:
		pred = func(_, tgt bool) bool { return tgt }
	default:
		return Identity
	}
	return Keep(func(d resolver.ResolvedDiff) bool {
		return pred(!IsEmpty(d.Source), !IsEmpty(d.Target))
	})
}

// ByProperties keeps diffs whose property is in the allow-list. An empty
// allow-list is identity.
func ByProperties(names []string) Filter {
	allowed := allowList(names)
	if len(allowed) == 0 {
		return Identity
	}
	return Keep(func(d resolver.ResolvedDiff) bool {
		_, ok := allowed[d.Property]
		return ok
	})
}

// allowList returns the trimmed, non-blank names as a set.
func allowList(names []string) map[string]struct{} {
	allowed := make(map[string]struct{}, len(names))
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			allowed[n] = struct{}{}
		}
	}
	return allowed
}

// ByUpdateVisibility drops Update diffs when show is non-nil and false.
func ByUpdateVisibility(show *bool) Filter {
	if show == nil || *show {
		return Identity
	}
	return Keep(func(d resolver.ResolvedDiff) bool {
		return d.Action != exceptions.Update
	})
}
