package pipeline

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"irdbclean/internal"
)

// RunBatch walks originalDir for .ir files, pairs each with its decoded
// counterpart by relative path and reconciles the pair. A per-file failure is
// recorded and never aborts the batch. A limit of zero means no limit.
func (e *Engine) RunBatch(originalDir, decodedDir string, threshold float64, limit int) (internal.BatchResult, error) {
	batch := internal.BatchResult{}

	err := filepath.WalkDir(originalDir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".ir") {
			return nil
		}

		relPath, err := filepath.Rel(originalDir, path)
		if err != nil {
			return err
		}
		relPath = filepath.ToSlash(relPath)

		decodedPath := filepath.Join(decodedDir, filepath.FromSlash(relPath))
		if _, err := os.Stat(decodedPath); err != nil {
			batch.Skipped = append(batch.Skipped, relPath)
			return nil
		}

		report, err := e.CleanPair(path, decodedPath, relPath)
		if err != nil {
			fmt.Printf("skipping %s: %v\n", relPath, err)
			batch.Skipped = append(batch.Skipped, relPath)
			return nil
		}

		batch.Processed++
		if report.DifferenceRatio > threshold || report.LostComments > 0 {
			batch.Results = append(batch.Results, internal.BatchFileResult{File: relPath, Report: *report})
		}

		if limit > 0 && batch.Processed >= limit {
			return fs.SkipAll
		}
		return nil
	})
	if err != nil {
		return batch, err
	}

	sort.SliceStable(batch.Results, func(i, j int) bool {
		return batch.Results[i].Report.DifferenceRatio > batch.Results[j].Report.DifferenceRatio
	})
	return batch, nil
}

// WriteSummary writes the plain-text batch report: significant files first,
// then the skipped list.
func WriteSummary(path string, batch internal.BatchResult) error {
	var b strings.Builder
	b.WriteString("Files with significant differences:\n")
	for _, result := range batch.Results {
		fmt.Fprintf(&b, "\nFile: %s\n", result.File)
		fmt.Fprintf(&b, "Difference Ratio: %.2f\n", result.Report.DifferenceRatio)
		fmt.Fprintf(&b, "Lost Comments: %d\n", result.Report.LostComments)
		fmt.Fprintf(&b, "Duplicates Removed: %d\n", result.Report.DuplicatesRemoved)
		fmt.Fprintf(&b, "Buttons Renamed: %d\n", result.Report.ButtonsRenamed)
		fmt.Fprintf(&b, "Diff Summary: Added: %d, Removed: %d, Changed: %d\n",
			result.Report.DiffSummary.Added, result.Report.DiffSummary.Removed, result.Report.DiffSummary.Changed)
	}
	b.WriteString("\nSkipped files:\n")
	for _, skipped := range batch.Skipped {
		fmt.Fprintf(&b, " - %s\n", skipped)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(b.String()), 0o644)
}
