package engine

import (
	"fmt"
	"sort"

	"github.com/agentstation/driftmap/pkg/catalogs"
	"github.com/agentstation/driftmap/pkg/changelog"
	"github.com/agentstation/driftmap/pkg/exceptions"
	"github.com/agentstation/driftmap/pkg/filter"
	"github.com/agentstation/driftmap/pkg/logging"
	"github.com/agentstation/driftmap/pkg/resolver"
)

// evaluation is the per-entity outcome of parse, resolve and filter.
type evaluation struct {
	canonical resolver.EntityResolution
	display   resolver.DisplayResolution
	dropped   int
}

// Resolve runs a serial resolution pass over entities that were already
// fetched. It performs no I/O.
func Resolve(entities []catalogs.Entity, rules exceptions.Lookuper, req Request) *Result {
	req = req.Normalize()
	pipe := filter.New(req.Filters)
	evals := make([]evaluation, len(entities))
	for i, e := range entities {
		evals[i] = evaluate(e, rules, pipe)
	}
	return assemble(evals, req)
}

// evaluate resolves one entity. A panic while processing the entity is
// recovered and the entity is treated as having no diffs.
func evaluate(e catalogs.Entity, rules exceptions.Lookuper, pipe filter.Filter) (ev evaluation) {
	defer func() {
		if r := recover(); r != nil {
			logging.Error().
				Str("entity_id", e.ID).
				Str("entity_type", e.Type.String()).
				Str("panic", fmt.Sprint(r)).
				Msg("Entity resolution panicked; treating as no diffs")
			canonical := resolver.Canonical(e, nil, nil)
			ev = evaluation{canonical: canonical, display: resolver.Display(canonical, nil)}
		}
	}()

	parsed := changelog.ParseWithStats(e.Log())
	canonical := resolver.Canonical(e, parsed.Diffs, rules)
	return evaluation{
		canonical: canonical,
		display:   resolver.Display(canonical, pipe.Apply),
		dropped:   parsed.Dropped,
	}
}

// included applies the bucket inclusion rule.
func (ev evaluation) included() bool {
	if ev.canonical.Action == exceptions.NoAction {
		return true
	}
	return len(ev.display.Diffs) > 0 || len(ev.canonical.Diffs) == 0
}

func assemble(evals []evaluation, req Request) *Result {
	res := &Result{
		CurrentPage:         req.Page,
		PerPage:             req.PerPage,
		AvailableProperties: []string{},
	}

	all := newBuckets()
	seen := make(map[string]struct{})
	for _, ev := range evals {
		res.Statistics.add(ev.canonical.Action)
		res.Dropped += ev.dropped
		for _, d := range ev.canonical.Diffs {
			if _, ok := seen[d.Property]; !ok {
				seen[d.Property] = struct{}{}
				res.AvailableProperties = append(res.AvailableProperties, d.Property)
			}
		}
		if !ev.included() {
			continue
		}
		if req.ActionFilter != nil && ev.canonical.Action != *req.ActionFilter {
			continue
		}
		all.add(newItem(ev.canonical, ev.display))
	}
	sort.Strings(res.AvailableProperties)

	ordered := make([]Item, 0, len(all.Ignore)+len(all.Update)+len(all.NoAction))
	ordered = append(ordered, all.Ignore...)
	ordered = append(ordered, all.Update...)
	ordered = append(ordered, all.NoAction...)
	res.TotalItems = len(ordered)

	res.Buckets = newBuckets()
	if req.grouped() {
		groups := groupByParent(ordered)
		page, pages := paginate(groups, req.Page, req.PerPage)
		res.TotalCount = len(groups)
		res.TotalPages = pages
		res.Groups = page
		for _, g := range page {
			for _, item := range g.Items {
				res.Buckets.add(item)
			}
		}
	} else {
		page, pages := paginate(ordered, req.Page, req.PerPage)
		res.TotalCount = len(ordered)
		res.TotalPages = pages
		for _, item := range page {
			res.Buckets.add(item)
		}
	}

	res.HasPrev = res.CurrentPage > 1
	res.HasNext = res.CurrentPage < res.TotalPages
	return res
}

// groupByParent groups items under their parent in order of first
// appearance in the bucket-ordered list, so a parent's position follows its
// earliest bucket and then catalog order. Only items that made it into the ordered list create groups,
// so a parent with no qualifying attributes never appears.
func groupByParent(items []Item) []Group {
	var groups []Group
	index := make(map[string]int)
	for _, item := range items {
		key := ""
		if item.ParentID != nil {
			key = *item.ParentID
		}
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, Group{ParentID: key, ParentName: item.ParentName})
		}
		groups[i].Items = append(groups[i].Items, item)
	}
	if groups == nil {
		groups = []Group{}
	}
	return groups
}

// paginate returns the 1-based page of items and the total page count.
// Pages past the end are empty.
func paginate[T any](items []T, page, perPage int) ([]T, int) {
	if perPage < 1 {
		perPage = 1
	}
	pages := (len(items) + perPage - 1) / perPage
	if page < 1 || page > pages {
		return []T{}, pages
	}
	offset := (page - 1) * perPage
	end := min(offset+perPage, len(items))
	return items[offset:end], pages
}
