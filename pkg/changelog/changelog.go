// Package changelog parses an entity's free-text change log into an ordered
// list of property diffs.
//
// A log is a sequence of blocks. Each block opens with an unindented header
// line naming the property, followed by a "source =" line and usually a
// "target =" line:
//
//	readOnly
//	source = false
//	target = true
//
//	informs
//	source =
//	target = first line
//	  indented continuation
//
// Parsing never fails. Text that cannot be read as a block is dropped and
// counted in Result.Dropped.
package changelog

import (
	"regexp"
	"strings"
)

// PropertyDiff is one parsed (property, source, target) triple.
type PropertyDiff struct {
	Property string `json:"property" yaml:"property"`
	Source   string `json:"source" yaml:"source"`
	Target   string `json:"target" yaml:"target"`
}

// Result is the parse output together with diagnostics.
type Result struct {
	Diffs []PropertyDiff `json:"diffs"`
	// Dropped counts candidate blocks and stray lines that were discarded.
	Dropped int `json:"dropped"`
}

var (
	sourceMarker = regexp.MustCompile(`(?i)^source\s*=`)
	targetMarker = regexp.MustCompile(`(?i)^target\s*=`)
	inlineTarget = regexp.MustCompile(`(?i)\btarget\s*=`)
)

type lineKind int

const (
	lineBlank lineKind = iota
	lineText
	lineSource
	lineTarget
)

type line struct {
	raw      string
	text     string // leading whitespace stripped
	kind     lineKind
	indented bool
}

// Parse returns the diffs found in raw in block order.
func Parse(raw string) []PropertyDiff {
	return ParseWithStats(raw).Diffs
}

// ParseLog parses a nullable log; nil yields no diffs.
func ParseLog(raw *string) []PropertyDiff {
	if raw == nil {
		return []PropertyDiff{}
	}
	return Parse(*raw)
}

// ParseWithStats parses raw and reports how many candidate blocks were dropped.
func ParseWithStats(raw string) Result {
	res := Result{Diffs: []PropertyDiff{}}
	if strings.TrimSpace(raw) == "" {
		return res
	}

	for _, seg := range segment(classify(raw)) {
		if seg.header == nil {
			if !allBlank(seg.body) {
				res.Dropped++
			}
			continue
		}
		diff, stray, ok := parseBlock(*seg.header, seg.body)
		if !ok {
			res.Dropped++
			continue
		}
		res.Dropped += stray
		res.Diffs = append(res.Diffs, diff)
	}
	return res
}

func classify(raw string) []line {
	raw = strings.ReplaceAll(raw, "\r\n", "\n")
	raw = strings.ReplaceAll(raw, "\r", "\n")

	parts := strings.Split(raw, "\n")
	lines := make([]line, 0, len(parts))
	for _, p := range parts {
		l := line{raw: p, text: strings.TrimLeft(p, " \t")}
		l.indented = len(l.text) < len(p)
		switch {
		case strings.TrimSpace(p) == "":
			l.kind = lineBlank
		case sourceMarker.MatchString(l.text):
			l.kind = lineSource
		case targetMarker.MatchString(l.text):
			l.kind = lineTarget
		default:
			l.kind = lineText
		}
		lines = append(lines, l)
	}
	return lines
}

type block struct {
	header *line
	body   []line
}

// segment splits lines at block headers. Lines before the first header form
// a headerless segment.
func segment(lines []line) []block {
	var blocks []block
	cur := block{}
	for i := range lines {
		if isHeader(lines, i) {
			if cur.header != nil || len(cur.body) > 0 {
				blocks = append(blocks, cur)
			}
			cur = block{header: &lines[i]}
			continue
		}
		cur.body = append(cur.body, lines[i])
	}
	if cur.header != nil || len(cur.body) > 0 {
		blocks = append(blocks, cur)
	}
	return blocks
}

// isHeader reports whether lines[i] opens a block: an unindented text line
// followed by a source marker before the next unindented text line.
func isHeader(lines []line, i int) bool {
	if lines[i].kind != lineText || lines[i].indented {
		return false
	}
	for _, l := range lines[i+1:] {
		switch {
		case l.kind == lineSource:
			return true
		case l.kind == lineText && !l.indented:
			return false
		}
	}
	return false
}

// strays counts unindented text lines that follow the target marker at
// index from. They end the target value and belong to no block.
func strays(body []line, from int) int {
	n := 0
	for _, l := range body[from+1:] {
		if l.kind == lineText && !l.indented {
			n++
		}
	}
	return n
}

// parseBlock reads one block. It also returns the number of stray lines
// found after the target value.
func parseBlock(header line, body []line) (PropertyDiff, int, bool) {
	property := strings.TrimSpace(header.raw)
	if property == "" {
		return PropertyDiff{}, 0, false
	}

	start := -1
	for i, l := range body {
		if l.kind == lineSource {
			start = i
			break
		}
	}
	if start < 0 {
		return PropertyDiff{}, 0, false
	}

	diff := PropertyDiff{Property: property}

	rest := afterMarker(sourceMarker, body[start].text)
	if loc := inlineTarget.FindStringIndex(rest); loc != nil {
		diff.Source = strings.TrimSpace(rest[:loc[0]])
		diff.Target = collectTarget(rest[loc[1]:], body[start+1:])
		return diff, strays(body, start), true
	}

	source := []string{rest}
	for i := start + 1; i < len(body); i++ {
		l := body[i]
		switch {
		case l.kind == lineTarget:
			diff.Source = joinTrimmed(source)
			diff.Target = collectTarget(afterMarker(targetMarker, l.text), body[i+1:])
			return diff, strays(body, i), true
		case l.kind == lineSource && !l.indented:
			// A second unindented source marker ends the value.
			diff.Source = joinTrimmed(source)
			return diff, 0, true
		case l.kind == lineBlank:
			source = append(source, "")
		default:
			source = append(source, l.text)
		}
	}
	diff.Source = joinTrimmed(source)
	return diff, 0, true
}

// collectTarget gathers the target value: the text on the marker line plus
// indented continuation lines, stopping at the first unindented non-blank line.
func collectTarget(first string, rest []line) string {
	parts := []string{first}
	for _, l := range rest {
		if l.kind == lineBlank {
			parts = append(parts, "")
			continue
		}
		if !l.indented {
			break
		}
		parts = append(parts, l.text)
	}
	return joinTrimmed(parts)
}

func afterMarker(marker *regexp.Regexp, text string) string {
	loc := marker.FindStringIndex(text)
	if loc == nil {
		return text
	}
	return text[loc[1]:]
}

func joinTrimmed(parts []string) string {
	for i := range parts {
		parts[i] = strings.TrimRight(parts[i], " \t")
	}
	return strings.TrimSpace(strings.Join(parts, "\n"))
}

func allBlank(lines []line) bool {
	for _, l := range lines {
		if l.kind != lineBlank {
			return false
		}
	}
	return true
}
