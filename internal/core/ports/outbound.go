package ports

import (
	"context"
	"io"

	"github.com/amoghv/rollscan/internal/core/domain"
)

// RollRepository persists and reads committed roll state.
type RollRepository interface {
	EnsureSchema(ctx context.Context) error
	// InsertRoll writes the roll and every dependent row in one transaction;
	// a failure on any row leaves the store untouched.
	InsertRoll(ctx context.Context, commit domain.RollCommit) (int64, error)
	// DeleteRoll removes a roll by numeric id or file name. Dependent rows go
	// with it via the schema's cascade; a missing roll is ErrRollNotFound.
	DeleteRoll(ctx context.Context, idOrName string) error
	ListRolls(ctx context.Context) ([]domain.Roll, error)
	ListSections(ctx context.Context, rollID int64) ([]domain.Section, error)
	RollAnalytics(ctx context.Context, rollID int64) (domain.Analytics, error)
	SectionAnalytics(ctx context.Context, sectionID int64) (domain.Analytics, error)
	// DumpTables returns every table's fully committed rows for export.
	DumpTables(ctx context.Context) ([]domain.TableDump, error)
}

// PageExtractor performs one page-level vision extraction call. It owns
// retry, backoff and timeout; an error from it is terminal for that page.
type PageExtractor interface {
	ExtractPage(ctx context.Context, page domain.PageImage) (domain.PageExtraction, error)
}

// PageRenderer rasterizes a stored PDF into per-page images, page order
// preserved.
type PageRenderer interface {
	RenderPages(ctx context.Context, path string) ([][]byte, error)
}

// PageCounter reads a PDF's page count without rasterizing it, used to
// reject unreadable uploads at submit time.
type PageCounter interface {
	PageCount(path string) (int, error)
}

// UploadStore spools submitted files until their job finishes.
type UploadStore interface {
	Save(ctx context.Context, name string, data io.Reader) (string, error)
	Remove(path string) error
}

// ProgressReporter publishes pipeline progress. Calls are best-effort: the
// extraction path never depends on where (or whether) the report lands.
// A negative fraction means "message only, keep the last known fraction".
type ProgressReporter func(message string, fraction float64)

// RollProcessor runs the whole extraction pipeline for one stored file and
// commits the outcome.
type RollProcessor interface {
	ProcessFile(ctx context.Context, path string, report ProgressReporter) (*domain.Roll, error)
}

// JobRegistry tracks in-flight and finished jobs for status polling.
type JobRegistry interface {
	Create(files []string) string
	Update(id string, status domain.JobStatus, message string, progress float64)
	Get(id string) (domain.Job, error)
}
