package internal

// SourceTag identifies which input file a signal record came from.
type SourceTag string

const (
	SourceDecoded  SourceTag = "decoded"
	SourceOriginal SourceTag = "original"
)

// Signal types as declared by the "type:" field of a record.
const (
	SignalTypeParsed = "parsed"
	SignalTypeRaw    = "raw"
)

// SignalRecord is one button's complete IR transmission definition block.
// Lines holds the record's field lines verbatim, in input order; for named
// records the first line is the "name:" line.
type SignalRecord struct {
	Name   string
	Lines  []string
	Source SourceTag
}

// CommentBlock is the ordered comment lines immediately preceding a record.
type CommentBlock []string

// RecordGroup pairs a record with the comment block that preceded it.
type RecordGroup struct {
	Comments CommentBlock
	Record   SignalRecord
}

// SignalFile is the parsed form of one IR signals file: format metadata and
// leading comments, followed by the record groups in input order.
type SignalFile struct {
	Header []string
	Groups []RecordGroup
	Source SourceTag
}

// DiffSummary counts line-level differences between the original file and the
// rebuilt output.
type DiffSummary struct {
	Added   int `json:"added"`
	Removed int `json:"removed"`
	Changed int `json:"changed"`
}

// FileReport is the per-file result returned to the batch driver. A file that
// could not be read or written yields no FileReport at all, never a zero one.
type FileReport struct {
	DifferenceRatio   float64     `json:"difference_ratio"`
	LostComments      int         `json:"lost_comments"`
	DuplicatesRemoved int         `json:"duplicates_removed"`
	ButtonsRenamed    int         `json:"buttons_renamed"`
	DiffSummary       DiffSummary `json:"diff_summary"`
}

// BatchFileResult is one row of a batch run: the relative path of the file
// pair plus its report.
type BatchFileResult struct {
	File   string     `json:"file"`
	Report FileReport `json:"report"`
}

// BatchResult accumulates one directory-pair run. Results holds the files
// whose report crossed the significance threshold (or lost comments), sorted
// by difference ratio descending; Skipped lists files with no decoded
// counterpart or a failed read/write.
type BatchResult struct {
	Results   []BatchFileResult
	Skipped   []string
	Processed int
}

// ReportExportRow is the flattened form of a batch result for spreadsheet
// export and storage queries.
type ReportExportRow struct {
	File              string
	DifferenceRatio   float64
	LostComments      int
	DuplicatesRemoved int
	ButtonsRenamed    int
	Added             int
	Removed           int
	Changed           int
}
