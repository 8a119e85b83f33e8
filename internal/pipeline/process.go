package pipeline

import (
	"strings"

	"irdbclean/internal"
	"irdbclean/internal/irfile"
	"irdbclean/internal/rules"
)

// Engine reconciles one original/decoded file pair per invocation. It holds
// only the compiled rule set and options; all per-file state is local to the
// call, so distinct pairs may be processed concurrently by a driver.
type Engine struct {
	rules  *rules.RuleSet
	strict bool
}

func NewEngine(ruleSet *rules.RuleSet, strict bool) *Engine {
	return &Engine{rules: ruleSet, strict: strict}
}

// CleanLines runs the full pipeline over in-memory line sequences:
// parse both sources, normalize names, merge with decoded preference,
// rebuild canonical text and report against the original input.
func (e *Engine) CleanLines(originalLines, decodedLines []string, relPath string) ([]string, internal.FileReport) {
	relPath = strings.ReplaceAll(relPath, "\\", "/")

	decoded := irfile.Parse(decodedLines, internal.SourceDecoded)
	original := irfile.Parse(originalLines, internal.SourceOriginal)

	renamed := 0
	if !e.rules.Empty() {
		renamed += e.rules.NormalizeFile(&decoded, relPath)
		renamed += e.rules.NormalizeFile(&original, relPath)
	}

	merged := Merge(decoded.Groups, original.Groups, e.strict)
	rebuilt := irfile.Rebuild(original.Header, merged.Groups)

	ratio, lost, summary := Report(originalLines, rebuilt)
	return rebuilt, internal.FileReport{
		DifferenceRatio:   ratio,
		LostComments:      lost,
		DuplicatesRemoved: merged.DuplicatesRemoved,
		ButtonsRenamed:    renamed,
		DiffSummary:       summary,
	}
}

// CleanPair reads both files, reconciles them and overwrites the decoded file
// with the rebuilt content. A read or write failure returns an error and no
// report; the caller must not mistake that for a clean zero-difference file.
func (e *Engine) CleanPair(originalPath, decodedPath, relPath string) (*internal.FileReport, error) {
	originalLines, err := irfile.ReadLines(originalPath)
	if err != nil {
		return nil, err
	}
	decodedLines, err := irfile.ReadLines(decodedPath)
	if err != nil {
		return nil, err
	}

	rebuilt, report := e.CleanLines(originalLines, decodedLines, relPath)
	if err := irfile.WriteLines(decodedPath, rebuilt); err != nil {
		return nil, err
	}
	return &report, nil
}
