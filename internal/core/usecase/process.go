package usecase

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/amoghv/rollscan/internal/core/domain"
	"github.com/amoghv/rollscan/internal/core/ports"
)

// ProcessRollUseCase runs the full pipeline for one stored roll: rasterize,
// fan out page extraction, merge survivors into section groups and commit
// the lot in one store transaction.
type ProcessRollUseCase struct {
	renderer ports.PageRenderer
	fanout   *pageFanout
	repo     ports.RollRepository
	now      func() time.Time
}

func NewProcessRollUseCase(
	renderer ports.PageRenderer,
	extractor ports.PageExtractor,
	repo ports.RollRepository,
	maxConcurrentPages int,
) *ProcessRollUseCase {
	return &ProcessRollUseCase{
		renderer: renderer,
		fanout:   newPageFanout(extractor, maxConcurrentPages),
		repo:     repo,
		now:      time.Now,
	}
}

func (uc *ProcessRollUseCase) ProcessFile(ctx context.Context, path string, report ports.ProgressReporter) (*domain.Roll, error) {
	fileName := filepath.Base(path)

	report(fmt.Sprintf("%s: rendering pages", fileName), -1)
	images, err := uc.renderer.RenderPages(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", fileName, err)
	}

	pages := make([]domain.PageImage, len(images))
	for i, png := range images {
		pages[i] = domain.PageImage{
			Index: i,
			Kind:  domain.KindForPage(i, len(images)),
			PNG:   png,
		}
	}

	result := uc.fanout.ProcessPages(ctx, fileName, pages, report)
	if result.PagesSucceeded() == 0 {
		return nil, domain.WrapError(domain.ErrTemporary, "process "+fileName,
			fmt.Errorf("no pages extracted: %w", firstPageError(result)))
	}
	if headerErr := headerOutcomeErr(result); headerErr != nil {
		return nil, fmt.Errorf("process %s: header page failed: %w", fileName, headerErr)
	}

	report(fmt.Sprintf("%s: committing %s", fileName, result.Summary()), -1)
	commit := buildCommit(fileName, result, uc.now().UTC())
	id, err := uc.repo.InsertRoll(ctx, commit)
	if err != nil {
		return nil, fmt.Errorf("commit %s: %w", fileName, err)
	}

	roll := commit.Roll
	roll.ID = id
	return &roll, nil
}

// headerOutcomeErr reports the header page's terminal error, if any. Without
// the header there is nothing to hang sections or part metadata on, so its
// failure fails the whole roll.
func headerOutcomeErr(result domain.RollResult) error {
	for _, page := range result.Pages {
		if page.Kind == domain.PageHeader {
			return page.Err
		}
	}
	return nil
}

func firstPageError(result domain.RollResult) error {
	for _, page := range result.Pages {
		if page.Err != nil {
			return page.Err
		}
	}
	return fmt.Errorf("empty document")
}
