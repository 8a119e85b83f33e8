package irfile

import (
	"strings"

	"irdbclean/internal"
)

// Rebuild serializes the header and the surviving record groups back into
// canonical text. Comment blocks collapse to a single separator, every record
// is followed by exactly one separator, and the output never contains two
// consecutive separator lines or trailing blank lines.
func Rebuild(header []string, groups []internal.RecordGroup) []string {
	out := make([]string, 0, len(header)+len(groups)*6)
	out = append(out, header...)

	for _, group := range groups {
		if len(group.Comments) > 0 && !endsWithSeparator(out) {
			out = append(out, Separator)
		}
		out = append(out, group.Record.Lines...)
		if !endsWithSeparator(out) {
			out = append(out, Separator)
		}
	}

	return normalize(out)
}

// normalize collapses separator runs to a single bare "#" and strips trailing
// blank lines.
func normalize(lines []string) []string {
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if isSeparator(line) {
			if endsWithSeparator(out) {
				continue
			}
			out = append(out, Separator)
			continue
		}
		out = append(out, line)
	}
	for len(out) > 0 && strings.TrimSpace(out[len(out)-1]) == "" {
		out = out[:len(out)-1]
	}
	return out
}

func isSeparator(line string) bool {
	return strings.TrimSpace(line) == Separator
}

func endsWithSeparator(lines []string) bool {
	return len(lines) > 0 && isSeparator(lines[len(lines)-1])
}
