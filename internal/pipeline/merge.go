package pipeline

import (
	"slices"
	"strings"

	"irdbclean/internal"
)

// MergeResult is the outcome of combining both sources: the winning record
// groups in first-insertion order plus the duplicate accounting.
type MergeResult struct {
	Groups            []internal.RecordGroup
	DuplicatesRemoved int
	RejectedDecoded   int
}

// Merge combines decoded and original record groups keyed by final name.
// Decoded groups are processed first. The first group seen for a name wins; a
// later group replaces it only when the standing winner is original and the
// newcomer is decoded. A same-name repeat counts as a removed duplicate when
// its content differs from the standing winner; re-reading identical content
// is not a duplicate, so a canonical file merged with itself reports zero.
//
// With strict enabled, decoded records missing the fields required by their
// declared type are rejected up front instead of silently accepted.
func Merge(decoded, original []internal.RecordGroup, strict bool) MergeResult {
	result := MergeResult{}
	index := map[string]int{}

	insert := func(group internal.RecordGroup) {
		name := group.Record.Name
		if name == "" {
			// Orphan field runs carry no button; nothing to key them by.
			return
		}
		if strict && group.Record.Source == internal.SourceDecoded && !hasRequiredFields(group.Record) {
			result.RejectedDecoded++
			return
		}
		at, seen := index[name]
		if !seen {
			index[name] = len(result.Groups)
			result.Groups = append(result.Groups, group)
			return
		}
		if !slices.Equal(result.Groups[at].Record.Lines, group.Record.Lines) {
			result.DuplicatesRemoved++
		}
		if result.Groups[at].Record.Source == internal.SourceOriginal && group.Record.Source == internal.SourceDecoded {
			result.Groups[at] = group
		}
	}

	for _, group := range decoded {
		insert(group)
	}
	for _, group := range original {
		insert(group)
	}
	return result
}

var requiredFields = map[string][]string{
	internal.SignalTypeParsed: {"protocol:", "address:", "command:"},
	internal.SignalTypeRaw:    {"frequency:", "duty_cycle:", "data:"},
}

// hasRequiredFields reports whether a record carries every field its declared
// type demands. Records without a recognized "type:" field fail.
func hasRequiredFields(record internal.SignalRecord) bool {
	required, ok := requiredFields[fieldValue(record, "type:")]
	if !ok {
		return false
	}
	for _, prefix := range required {
		if !hasField(record, prefix) {
			return false
		}
	}
	return true
}

func hasField(record internal.SignalRecord, prefix string) bool {
	for _, line := range record.Lines {
		if strings.HasPrefix(strings.ToLower(strings.TrimSpace(line)), prefix) {
			return true
		}
	}
	return false
}

func fieldValue(record internal.SignalRecord, prefix string) string {
	for _, line := range record.Lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(strings.ToLower(trimmed), prefix) {
			return strings.TrimSpace(trimmed[len(prefix):])
		}
	}
	return ""
}
