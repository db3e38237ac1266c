package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/amoghv/rollscan/internal/config"
	"github.com/amoghv/rollscan/internal/core/ports"
	"github.com/amoghv/rollscan/internal/core/usecase"
	"github.com/amoghv/rollscan/internal/infrastructure/pdfinfo"
	"github.com/amoghv/rollscan/internal/infrastructure/render/fitz"
	"github.com/amoghv/rollscan/internal/infrastructure/repository/sqlite"
	"github.com/amoghv/rollscan/internal/infrastructure/resilience"
	"github.com/amoghv/rollscan/internal/infrastructure/storage/localfs"
	"github.com/amoghv/rollscan/internal/infrastructure/vision/gemini"
	"github.com/amoghv/rollscan/internal/observability/metrics"
	"github.com/amoghv/rollscan/internal/registry"
)

type App struct {
	Config config.Config

	Repo     ports.RollRepository
	Registry ports.JobRegistry
	SubmitUC ports.JobSubmitter
	Metrics  *metrics.PipelineMetrics

	db      *sql.DB
	closeFn func()
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	db, err := sqlite.OpenDB(cfg.SQLitePath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	repo := sqlite.NewRollRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	uploads, err := localfs.New(cfg.UploadDir)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init upload store: %w", err)
	}

	extractor := gemini.NewClient(gemini.Config{
		BaseURL:           cfg.GeminiBaseURL,
		APIKey:            cfg.GeminiAPIKey,
		Model:             cfg.GeminiModel,
		RequestTimeout:    time.Duration(cfg.GeminiTimeoutSeconds) * time.Second,
		RequestsPerSecond: cfg.RequestsPerSecond,
		Resilience: resilience.Config{
			RetryMaxAttempts:    cfg.RetryMaxAttempts,
			RetryInitialBackoff: time.Duration(cfg.RetryInitialBackoffSeconds) * time.Second,
			RetryMaxBackoff:     time.Duration(cfg.RetryMaxBackoffSeconds) * time.Second,
			BreakerEnabled:      true,
		},
	})

	pipelineMetrics := metrics.NewPipelineMetrics()
	processUC := usecase.NewProcessRollUseCase(fitz.NewRenderer(), extractor, repo, cfg.MaxConcurrentPages)
	processor := metrics.NewInstrumentedProcessor(processUC, pipelineMetrics)

	jobs := registry.New()
	submitUC := usecase.NewSubmitJobUseCase(jobs, uploads, pdfinfo.NewInspector(), processor)

	return &App{
		Config: cfg,

		Repo:     repo,
		Registry: jobs,
		SubmitUC: submitUC,
		Metrics:  pipelineMetrics,

		db: db,
		closeFn: func() {
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
