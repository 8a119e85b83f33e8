package storage

import (
	"path/filepath"
	"testing"

	"irdbclean/internal"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "reports.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestSaveBatchAndExportRows(t *testing.T) {
	db := openTestDB(t)

	batch := internal.BatchResult{
		Processed: 3,
		Results: []internal.BatchFileResult{
			{File: "TVs/Sony/a.ir", Report: internal.FileReport{DifferenceRatio: 0.25, DuplicatesRemoved: 1}},
			{File: "TVs/LG/b.ir", Report: internal.FileReport{DifferenceRatio: 0.75, LostComments: 2,
				DiffSummary: internal.DiffSummary{Added: 3, Removed: 1, Changed: 2}}},
		},
		Skipped: []string{"ACs/x.ir"},
	}

	runID, err := db.SaveBatch("/orig", "/dec", 0.1, batch)
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	rows, err := db.GetExportRows(runID)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows=%d", len(rows))
	}
	// Ordered by difference ratio descending.
	if rows[0].File != "TVs/LG/b.ir" || rows[1].File != "TVs/Sony/a.ir" {
		t.Fatalf("order=%v,%v", rows[0].File, rows[1].File)
	}
	if rows[0].LostComments != 2 || rows[0].Added != 3 || rows[0].Changed != 2 {
		t.Fatalf("row=%+v", rows[0])
	}
}

func TestInsertFileReportUpserts(t *testing.T) {
	db := openTestDB(t)

	runID, err := db.InsertBatchRun("/orig", "/dec", 0.1, 1)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if err := db.InsertFileReport(runID, "a.ir", internal.FileReport{DifferenceRatio: 0.5}); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := db.InsertFileReport(runID, "a.ir", internal.FileReport{DifferenceRatio: 0.9, LostComments: 1}); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	rows, err := db.GetExportRows(runID)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if len(rows) != 1 || rows[0].DifferenceRatio != 0.9 || rows[0].LostComments != 1 {
		t.Fatalf("rows=%+v", rows)
	}
}

func TestGetExportRowsScopedToRun(t *testing.T) {
	db := openTestDB(t)

	first, err := db.SaveBatch("/orig", "/dec", 0.1, internal.BatchResult{
		Results: []internal.BatchFileResult{{File: "a.ir", Report: internal.FileReport{DifferenceRatio: 0.3}}},
	})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := db.SaveBatch("/orig", "/dec", 0.1, internal.BatchResult{
		Results: []internal.BatchFileResult{{File: "b.ir", Report: internal.FileReport{DifferenceRatio: 0.4}}},
	}); err != nil {
		t.Fatalf("save: %v", err)
	}

	rows, err := db.GetExportRows(first)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if len(rows) != 1 || rows[0].File != "a.ir" {
		t.Fatalf("rows=%+v", rows)
	}
}
