package usecase

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/amoghv/rollscan/internal/core/domain"
	"github.com/amoghv/rollscan/internal/core/ports"
)

// SubmitJobUseCase accepts a batch of uploaded rolls, spools them, registers
// a pollable job and hands the batch to a background worker. Submit returns
// as soon as the job is registered; no extraction work happens on the
// caller's goroutine.
type SubmitJobUseCase struct {
	registry  ports.JobRegistry
	uploads   ports.UploadStore
	counter   ports.PageCounter
	processor ports.RollProcessor
}

func NewSubmitJobUseCase(
	registry ports.JobRegistry,
	uploads ports.UploadStore,
	counter ports.PageCounter,
	processor ports.RollProcessor,
) *SubmitJobUseCase {
	return &SubmitJobUseCase{
		registry:  registry,
		uploads:   uploads,
		counter:   counter,
		processor: processor,
	}
}

type spooledFile struct {
	name  string
	path  string
	pages int
}

func (uc *SubmitJobUseCase) Submit(ctx context.Context, uploads []ports.Upload) (string, error) {
	if len(uploads) == 0 {
		return "", domain.WrapError(domain.ErrInvalidInput, "submit", fmt.Errorf("no files"))
	}

	var accepted []spooledFile
	var rejected []string
	for _, up := range uploads {
		if !strings.EqualFold(filepath.Ext(strings.TrimSpace(up.Filename)), ".pdf") {
			rejected = append(rejected, up.Filename)
			continue
		}
		path, err := uc.uploads.Save(ctx, up.Filename, up.Body)
		if err != nil {
			rejected = append(rejected, up.Filename)
			continue
		}
		pages, err := uc.counter.PageCount(path)
		if err != nil {
			_ = uc.uploads.Remove(path)
			rejected = append(rejected, up.Filename)
			continue
		}
		accepted = append(accepted, spooledFile{name: up.Filename, path: path, pages: pages})
	}

	if len(accepted) == 0 {
		return "", domain.WrapError(domain.ErrInvalidInput, "submit",
			fmt.Errorf("no readable PDF among %d file(s)", len(uploads)))
	}

	names := make([]string, len(accepted))
	totalPages := 0
	for i, f := range accepted {
		names[i] = f.name
		totalPages += f.pages
	}
	id := uc.registry.Create(names)

	msg := fmt.Sprintf("queued %d file(s), %d page(s)", len(accepted), totalPages)
	if len(rejected) > 0 {
		msg += fmt.Sprintf(", skipped %s", strings.Join(rejected, ", "))
	}
	uc.registry.Update(id, domain.JobQueued, msg, 0)

	// the job outlives the submit request, so the worker gets its own context
	go uc.run(context.Background(), id, accepted)

	return id, nil
}

// run drives one job to a terminal state. Every exit path, panics included,
// leaves the registry terminal so pollers never hang on a dead job.
func (uc *SubmitJobUseCase) run(ctx context.Context, id string, files []spooledFile) {
	var succeeded, failed int
	var notes []string

	defer func() {
		if r := recover(); r != nil {
			uc.registry.Update(id, domain.JobFailed, fmt.Sprintf("worker panic: %v", r), -1)
			return
		}
		status := domain.JobComplete
		switch {
		case succeeded == 0:
			status = domain.JobFailed
		case failed > 0:
			status = domain.JobPartialFailure
		}
		msg := fmt.Sprintf("%d/%d file(s) processed", succeeded, len(files))
		if len(notes) > 0 {
			msg += ": " + strings.Join(notes, "; ")
		}
		uc.registry.Update(id, status, msg, 1)
	}()

	uc.registry.Update(id, domain.JobRunning, fmt.Sprintf("processing %d file(s)", len(files)), 0)

	total := len(files)
	for i, f := range files {
		base := float64(i) / float64(total)
		report := func(message string, fraction float64) {
			scaled := -1.0
			if fraction >= 0 {
				scaled = base + fraction/float64(total)
			}
			uc.registry.Update(id, domain.JobRunning, fmt.Sprintf("file %d/%d, %s", i+1, total, message), scaled)
		}

		roll, err := uc.processor.ProcessFile(ctx, f.path, report)
		switch {
		case err == nil:
			succeeded++
			notes = append(notes, fmt.Sprintf("%s: %d/%d pages succeeded", f.name, roll.PagesSucceeded, roll.PagesTotal))
		case domain.IsKind(err, domain.ErrRollExists):
			succeeded++
			notes = append(notes, fmt.Sprintf("%s: already processed", f.name))
		default:
			failed++
			notes = append(notes, fmt.Sprintf("%s: %v", f.name, err))
		}
		_ = uc.uploads.Remove(f.path)
	}
}
