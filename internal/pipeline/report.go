package pipeline

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"irdbclean/internal"
)

// Report quantifies how far the rebuilt output drifted from the original
// input: a line-level similarity ratio, comment lines lost in the process,
// and an added/removed/changed summary.
func Report(original, rebuilt []string) (float64, int, internal.DiffSummary) {
	matcher := difflib.NewMatcher(original, rebuilt)
	ratio := matcher.Ratio()

	summary := internal.DiffSummary{}
	for _, op := range matcher.GetOpCodes() {
		fromLines := op.I2 - op.I1
		toLines := op.J2 - op.J1
		switch op.Tag {
		case 'i':
			summary.Added += toLines
		case 'd':
			summary.Removed += fromLines
		case 'r':
			paired := min(fromLines, toLines)
			summary.Changed += paired
			summary.Added += toLines - paired
			summary.Removed += fromLines - paired
		}
	}

	return 1 - ratio, lostComments(original, rebuilt), summary
}

// lostComments counts comment lines (excluding bare separators) present in
// the original but absent from the rebuilt output by exact text match.
func lostComments(original, rebuilt []string) int {
	present := make(map[string]struct{}, len(rebuilt))
	for _, line := range rebuilt {
		present[line] = struct{}{}
	}

	lost := 0
	for _, line := range original {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, "#") || trimmed == "#" {
			continue
		}
		if _, ok := present[line]; !ok {
			lost++
		}
	}
	return lost
}
