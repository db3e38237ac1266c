package usecase

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/amoghv/rollscan/internal/core/domain"
	"github.com/amoghv/rollscan/internal/core/ports"
)

// pageFanout runs the per-page extraction calls for one roll with bounded
// parallelism. A page's terminal failure never aborts its siblings; the
// aggregated result is always ordered by page index, whatever order the
// calls finish in.
type pageFanout struct {
	extractor ports.PageExtractor
	limit     int
}

func newPageFanout(extractor ports.PageExtractor, limit int) *pageFanout {
	if limit < 1 {
		limit = 1
	}
	return &pageFanout{extractor: extractor, limit: limit}
}

func (f *pageFanout) ProcessPages(ctx context.Context, fileName string, pages []domain.PageImage, report ports.ProgressReporter) domain.RollResult {
	result := domain.RollResult{
		FileName: fileName,
		Pages:    make([]domain.PageOutcome, len(pages)),
	}
	total := len(pages)

	var mu sync.Mutex
	completed := 0

	g := new(errgroup.Group)
	g.SetLimit(f.limit)
	for _, page := range pages {
		g.Go(func() error {
			outcome := domain.PageOutcome{Index: page.Index, Kind: page.Kind}
			if err := ctx.Err(); err != nil {
				outcome.Err = err
			} else if extraction, err := f.extractor.ExtractPage(ctx, page); err != nil {
				outcome.Err = err
			} else {
				outcome.Extraction = &extraction
			}
			result.Pages[page.Index] = outcome

			// serialize reports so completion counts stay monotonic
			mu.Lock()
			completed++
			report(fmt.Sprintf("%s: extracted page %d/%d", fileName, completed, total), float64(completed)/float64(total))
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return result
}
