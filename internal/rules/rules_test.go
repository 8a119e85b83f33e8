package rules

import (
	"errors"
	"testing"

	"irdbclean/internal"
)

const sampleRules = `
$groups:
  power-off:
    - /^off$/
    - shutdown
  volume-up:
    - /vol(?:_)?up/
    - /volume(?:_)?up/

TVs/*:
  "Off":
    - $group:power-off
  Vol_up:
    - $group:volume-up
  Power:
    - /^pwr$/
    - power

ACs/*:
  Dh:
    - dry
    - dehumidify
  "Off":
    - /^(off|shut_?down)$/

TVs/*,Projectors/*:
  Mute:
    - mute
    - silence
`

func mustParse(t *testing.T) *RuleSet {
	t.Helper()
	rs, err := Parse([]byte(sampleRules))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return rs
}

func TestCategoryScopedResolution(t *testing.T) {
	rs := mustParse(t)

	got, ok := rs.CanonicalName("TVs/Samsung/x.ir", "OFF")
	if !ok || got != "Off" {
		t.Fatalf("TVs OFF -> %q ok=%v", got, ok)
	}
	// ACs resolve through their own table, not the TVs one.
	got, ok = rs.CanonicalName("ACs/LG/y.ir", "dry")
	if !ok || got != "Dh" {
		t.Fatalf("ACs dry -> %q ok=%v", got, ok)
	}
	if _, ok := rs.CanonicalName("ACs/LG/y.ir", "vol_up"); ok {
		t.Fatal("volume rule leaked into ACs")
	}
}

func TestGroupExpansionAndRegex(t *testing.T) {
	rs := mustParse(t)

	if got, ok := rs.CanonicalName("TVs/Sony/z.ir", "Shutdown"); !ok || got != "Off" {
		t.Fatalf("literal via group -> %q ok=%v", got, ok)
	}
	if got, ok := rs.CanonicalName("TVs/Sony/z.ir", "VOLUME_UP"); !ok || got != "Vol_up" {
		t.Fatalf("regex via group -> %q ok=%v", got, ok)
	}
	if _, ok := rs.CanonicalName("TVs/Sony/z.ir", "offset"); ok {
		t.Fatal("regex must fully match the trimmed name")
	}
}

func TestCommaSeparatedPatterns(t *testing.T) {
	rs := mustParse(t)
	if got, ok := rs.CanonicalName("Projectors/Epson/p.ir", "silence"); !ok || got != "Mute" {
		t.Fatalf("projector mute -> %q ok=%v", got, ok)
	}
	if got, ok := rs.CanonicalName("TVs/Epson/p.ir", "mute"); !ok || got != "Mute" {
		t.Fatalf("tv mute -> %q ok=%v", got, ok)
	}
}

func TestCategoryMergeAppends(t *testing.T) {
	doc := `
TVs/*:
  "Off":
    - /^off$/
TVs/Samsung/*:
  "Off":
    - poweroff
  Standby:
    - standby
`
	rs, err := Parse([]byte(doc))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	// The later category's matcher lands under the earlier "Off" entry, so it
	// still wins over the later Standby entry.
	if got, ok := rs.CanonicalName("TVs/Samsung/x.ir", "poweroff"); !ok || got != "Off" {
		t.Fatalf("merged -> %q ok=%v", got, ok)
	}
	if got, ok := rs.CanonicalName("TVs/Samsung/x.ir", "standby"); !ok || got != "Standby" {
		t.Fatalf("standby -> %q ok=%v", got, ok)
	}
}

func TestPathPrefix(t *testing.T) {
	doc := `
$path-prefix: Flipper-IRDB-main
TVs/*:
  Power:
    - power
`
	rs, err := Parse([]byte(doc))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got, ok := rs.CanonicalName("Flipper-IRDB-main/TVs/Sony/a.ir", "POWER"); !ok || got != "Power" {
		t.Fatalf("prefixed path -> %q ok=%v", got, ok)
	}
	if got, ok := rs.CanonicalName("TVs/Sony/a.ir", "power"); !ok || got != "Power" {
		t.Fatalf("unprefixed path -> %q ok=%v", got, ok)
	}
}

func TestCompileErrors(t *testing.T) {
	cases := []string{
		"TVs/*:\n  Off:\n    - /((/\n",          // bad regex
		"TVs/*:\n  Off:\n    - $group:missing\n", // unknown group
		"$groups:\n  a:\n    - $group:b\n",       // nested group reference
	}
	for _, doc := range cases {
		if _, err := Parse([]byte(doc)); !errors.Is(err, ErrCompile) {
			t.Fatalf("doc %q: err=%v", doc, err)
		}
	}
}

func TestNormalizeFile(t *testing.T) {
	rs := mustParse(t)
	file := internal.SignalFile{
		Groups: []internal.RecordGroup{
			{Record: internal.SignalRecord{Name: "OFF", Lines: []string{"name: OFF", "type: raw", "data: 1"}}},
			{Record: internal.SignalRecord{Name: "play", Lines: []string{"name: play", "type: raw", "data: 2"}}},
		},
	}

	renamed := rs.NormalizeFile(&file, `TVs\Samsung\x.ir`)
	if renamed != 1 {
		t.Fatalf("renamed=%d", renamed)
	}
	if file.Groups[0].Record.Name != "Off" || file.Groups[0].Record.Lines[0] != "name: Off" {
		t.Fatalf("record=%+v", file.Groups[0].Record)
	}
	// No rule for "play" under TVs: left unchanged.
	if file.Groups[1].Record.Name != "play" {
		t.Fatalf("record=%+v", file.Groups[1].Record)
	}
}

func TestEmptyRuleSet(t *testing.T) {
	var rs *RuleSet
	if !rs.Empty() {
		t.Fatal("nil rule set must be empty")
	}
	file := internal.SignalFile{Groups: []internal.RecordGroup{{Record: internal.SignalRecord{Name: "A", Lines: []string{"name: A"}}}}}
	if n := rs.NormalizeFile(&file, "TVs/a.ir"); n != 0 {
		t.Fatalf("renamed=%d", n)
	}
}
