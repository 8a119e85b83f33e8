package storage

import (
	"database/sql"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"irdbclean/internal"
)

type DB struct {
	conn *sql.DB
}

func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := conn.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		_ = conn.Close()
		return nil, err
	}

	db := &DB{conn: conn}
	if err := db.init(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return db, nil
}

func (d *DB) Close() error {
	return d.conn.Close()
}

func (d *DB) init() error {
	schema := `
CREATE TABLE IF NOT EXISTS batch_runs (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  originalDir TEXT NOT NULL,
  decodedDir TEXT NOT NULL,
  threshold REAL NOT NULL,
  processed INTEGER NOT NULL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS file_reports (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  runId INTEGER NOT NULL,
  file TEXT NOT NULL,
  differenceRatio REAL NOT NULL,
  lostComments INTEGER NOT NULL,
  duplicatesRemoved INTEGER NOT NULL,
  buttonsRenamed INTEGER NOT NULL,
  added INTEGER NOT NULL,
  removed INTEGER NOT NULL,
  changed INTEGER NOT NULL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  UNIQUE(runId, file),
  FOREIGN KEY(runId) REFERENCES batch_runs(id)
);
CREATE INDEX IF NOT EXISTS idx_file_reports_run ON file_reports(runId);

CREATE TABLE IF NOT EXISTS skipped_files (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  runId INTEGER NOT NULL,
  file TEXT NOT NULL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  FOREIGN KEY(runId) REFERENCES batch_runs(id)
);
`
	_, err := d.conn.Exec(schema)
	return err
}

// InsertBatchRun records one directory-pair run and returns its id.
func (d *DB) InsertBatchRun(originalDir, decodedDir string, threshold float64, processed int) (int64, error) {
	res, err := d.conn.Exec(
		`INSERT INTO batch_runs(originalDir, decodedDir, threshold, processed) VALUES(?,?,?,?)`,
		originalDir, decodedDir, threshold, processed,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (d *DB) InsertFileReport(runID int64, file string, report internal.FileReport) error {
	_, err := d.conn.Exec(
		`INSERT INTO file_reports(runId, file, differenceRatio, lostComments, duplicatesRemoved, buttonsRenamed, added, removed, changed)
		 VALUES(?,?,?,?,?,?,?,?,?)
		 ON CONFLICT(runId, file) DO UPDATE SET
		   differenceRatio=excluded.differenceRatio,
		   lostComments=excluded.lostComments,
		   duplicatesRemoved=excluded.duplicatesRemoved,
		   buttonsRenamed=excluded.buttonsRenamed,
		   added=excluded.added,
		   removed=excluded.removed,
		   changed=excluded.changed`,
		runID, file, report.DifferenceRatio, report.LostComments, report.DuplicatesRemoved,
		report.ButtonsRenamed, report.DiffSummary.Added, report.DiffSummary.Removed, report.DiffSummary.Changed,
	)
	return err
}

func (d *DB) InsertSkippedFile(runID int64, file string) error {
	_, err := d.conn.Exec(`INSERT INTO skipped_files(runId, file) VALUES(?,?)`, runID, file)
	return err
}

// GetExportRows returns the stored reports of one run ordered by difference
// ratio descending, for spreadsheet export.
func (d *DB) GetExportRows(runID int64) ([]internal.ReportExportRow, error) {
	rows, err := d.conn.Query(
		`SELECT file, differenceRatio, lostComments, duplicatesRemoved, buttonsRenamed, added, removed, changed
		 FROM file_reports WHERE runId = ? ORDER BY differenceRatio DESC, file`,
		runID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.ReportExportRow
	for rows.Next() {
		var row internal.ReportExportRow
		if err := rows.Scan(&row.File, &row.DifferenceRatio, &row.LostComments, &row.DuplicatesRemoved,
			&row.ButtonsRenamed, &row.Added, &row.Removed, &row.Changed); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// SaveBatch persists a full batch result under a new run id.
func (d *DB) SaveBatch(originalDir, decodedDir string, threshold float64, batch internal.BatchResult) (int64, error) {
	runID, err := d.InsertBatchRun(originalDir, decodedDir, threshold, batch.Processed)
	if err != nil {
		return 0, err
	}
	for _, result := range batch.Results {
		if err := d.InsertFileReport(runID, result.File, result.Report); err != nil {
			return runID, err
		}
	}
	for _, skipped := range batch.Skipped {
		if err := d.InsertSkippedFile(runID, skipped); err != nil {
			return runID, err
		}
	}
	return runID, nil
}
