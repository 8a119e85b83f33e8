package irfile

import (
	"reflect"
	"testing"

	"irdbclean/internal"
)

func group(comments []string, lines ...string) internal.RecordGroup {
	name := ""
	if len(lines) > 0 {
		name = lines[0]
	}
	return internal.RecordGroup{
		Comments: comments,
		Record:   internal.SignalRecord{Name: name, Lines: lines, Source: internal.SourceDecoded},
	}
}

func TestRebuildSeparatorCollapsing(t *testing.T) {
	lines := []string{
		"name: A", "type: raw", "data: 1",
		"#", "#", "#",
		"name: B", "type: raw", "data: 2",
	}
	file := Parse(lines, internal.SourceOriginal)
	rebuilt := Rebuild(file.Header, file.Groups)

	// The file used separators, so the normalized header contributes the
	// leading one.
	want := []string{
		"#",
		"name: A", "type: raw", "data: 1",
		"#",
		"name: B", "type: raw", "data: 2",
		"#",
	}
	if !reflect.DeepEqual(rebuilt, want) {
		t.Fatalf("rebuilt=%v", rebuilt)
	}
}

func TestRebuildEndsWithSingleSeparator(t *testing.T) {
	rebuilt := Rebuild(nil, []internal.RecordGroup{
		group(nil, "name: A", "type: raw", "data: 1"),
	})
	want := []string{"name: A", "type: raw", "data: 1", "#"}
	if !reflect.DeepEqual(rebuilt, want) {
		t.Fatalf("rebuilt=%v", rebuilt)
	}
}

func TestRebuildCommentBlockCollapses(t *testing.T) {
	rebuilt := Rebuild(nil, []internal.RecordGroup{
		group([]string{"# first block", "# more"}, "name: A", "type: raw", "data: 1"),
		group([]string{"# second block"}, "name: B", "type: raw", "data: 2"),
	})
	// First block emits a separator (nothing precedes it); the second is
	// suppressed because the previous record already ends in one.
	want := []string{
		"#",
		"name: A", "type: raw", "data: 1",
		"#",
		"name: B", "type: raw", "data: 2",
		"#",
	}
	if !reflect.DeepEqual(rebuilt, want) {
		t.Fatalf("rebuilt=%v", rebuilt)
	}
}

func TestRebuildHeaderSeparatorNotDoubled(t *testing.T) {
	rebuilt := Rebuild([]string{"Filetype: IR signals file", "Version: 1", "#"}, []internal.RecordGroup{
		group([]string{"#"}, "name: A", "type: raw", "data: 1"),
	})
	want := []string{
		"Filetype: IR signals file", "Version: 1", "#",
		"name: A", "type: raw", "data: 1", "#",
	}
	if !reflect.DeepEqual(rebuilt, want) {
		t.Fatalf("rebuilt=%v", rebuilt)
	}
}

func TestRebuildNormalizesSeparatorWhitespace(t *testing.T) {
	rebuilt := Rebuild([]string{"# note", "  #  "}, []internal.RecordGroup{
		group(nil, "name: A", "type: raw", "data: 1"),
	})
	want := []string{"# note", "#", "name: A", "type: raw", "data: 1", "#"}
	if !reflect.DeepEqual(rebuilt, want) {
		t.Fatalf("rebuilt=%v", rebuilt)
	}
}
