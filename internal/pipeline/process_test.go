package pipeline

import (
	"reflect"
	"testing"

	"irdbclean/internal/rules"
)

func TestCleanLinesEndToEnd(t *testing.T) {
	original := []string{
		"Filetype: IR signals file",
		"Version: 1",
		"#",
		"name: Power",
		"type: raw",
		"data: 1 2 3",
		"#",
	}
	decoded := []string{
		"name: Power",
		"type: parsed",
		"protocol: NEC",
		"address: 00",
		"command: 01",
	}

	engine := NewEngine(nil, false)
	rebuilt, report := engine.CleanLines(original, decoded, "TVs/Samsung/x.ir")

	want := []string{
		"Filetype: IR signals file",
		"Version: 1",
		"#",
		"name: Power",
		"type: parsed",
		"protocol: NEC",
		"address: 00",
		"command: 01",
		"#",
	}
	if !reflect.DeepEqual(rebuilt, want) {
		t.Fatalf("rebuilt=%v", rebuilt)
	}
	if report.DuplicatesRemoved != 1 {
		t.Fatalf("duplicates=%d", report.DuplicatesRemoved)
	}
	if report.LostComments != 0 {
		t.Fatalf("lost=%d", report.LostComments)
	}
	if report.DifferenceRatio <= 0 || report.DifferenceRatio > 1 {
		t.Fatalf("ratio=%v", report.DifferenceRatio)
	}
}

func TestCleanLinesIdempotent(t *testing.T) {
	original := []string{
		"Filetype: IR signals file",
		"Version: 1",
		"#",
		"# Samsung",
		"#",
		"name: Power",
		"type: raw",
		"data: 1 2 3",
		"#",
		"#",
		"name: Vol_up",
		"type: raw",
		"data: 4 5 6",
	}

	engine := NewEngine(nil, false)
	first, _ := engine.CleanLines(original, original, "TVs/Samsung/x.ir")
	second, report := engine.CleanLines(first, first, "TVs/Samsung/x.ir")

	if !reflect.DeepEqual(first, second) {
		t.Fatalf("first=%v second=%v", first, second)
	}
	if report.DuplicatesRemoved != 0 {
		t.Fatalf("duplicates=%d", report.DuplicatesRemoved)
	}
	if report.DifferenceRatio != 0 {
		t.Fatalf("ratio=%v", report.DifferenceRatio)
	}
	if report.LostComments != 0 {
		t.Fatalf("lost=%d", report.LostComments)
	}
}

func TestCleanLinesNormalization(t *testing.T) {
	ruleSet, err := rules.Parse([]byte(`
TVs/*:
  "Off":
    - /^off$/
`))
	if err != nil {
		t.Fatalf("rules: %v", err)
	}

	original := []string{"name: OFF", "type: raw", "data: 1"}
	decoded := []string{"name: off", "type: parsed", "protocol: NEC", "address: 00", "command: 01"}

	engine := NewEngine(ruleSet, false)
	rebuilt, report := engine.CleanLines(original, decoded, `TVs\Samsung\x.ir`)

	// Both sides normalize to "Off", so they merge into one parsed record.
	want := []string{"name: Off", "type: parsed", "protocol: NEC", "address: 00", "command: 01", "#"}
	if !reflect.DeepEqual(rebuilt, want) {
		t.Fatalf("rebuilt=%v", rebuilt)
	}
	if report.ButtonsRenamed != 2 {
		t.Fatalf("renamed=%d", report.ButtonsRenamed)
	}
	if report.DuplicatesRemoved != 1 {
		t.Fatalf("duplicates=%d", report.DuplicatesRemoved)
	}
}

func TestCleanLinesNormalizationOutsideCategory(t *testing.T) {
	ruleSet, err := rules.Parse([]byte(`
TVs/*:
  "Off":
    - /^off$/
`))
	if err != nil {
		t.Fatalf("rules: %v", err)
	}

	lines := []string{"name: OFF", "type: raw", "data: 1"}
	engine := NewEngine(ruleSet, false)
	_, report := engine.CleanLines(lines, lines, "ACs/LG/y.ir")
	if report.ButtonsRenamed != 0 {
		t.Fatalf("renamed=%d", report.ButtonsRenamed)
	}
}
