package ports

import "github.com/CarterFendley/pipelines/internal/domain"

// ReportWriter persists junit results for CI consumption.
type ReportWriter interface {
	WriteReport(path string, report domain.TestReport) error
}

// RecordStore persists run records for reproducibility.
type RecordStore interface {
	SaveRecord(rec domain.RunRecord) (id string, err error)
	// Path locates the file holding the record with the given id.
	Path(id string) (string, error)
}
