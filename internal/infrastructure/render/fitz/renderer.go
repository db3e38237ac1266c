// Package fitz rasterizes roll PDFs through MuPDF. Pages are rendered at
// 300dpi, which is what the vision prompts were tuned against.
package fitz

import (
	"context"
	"fmt"

	gofitz "github.com/gen2brain/go-fitz"

	"github.com/amoghv/rollscan/internal/core/domain"
)

const renderDPI = 300

type Renderer struct{}

func NewRenderer() *Renderer {
	return &Renderer{}
}

// RenderPages rasterizes every page of the PDF at path into PNG bytes, in
// page order. An unopenable or zero-page file is ErrInvalidInput.
func (r *Renderer) RenderPages(ctx context.Context, path string) ([][]byte, error) {
	doc, err := gofitz.New(path)
	if err != nil {
		return nil, domain.WrapError(domain.ErrInvalidInput, "open pdf", err)
	}
	defer doc.Close()

	total := doc.NumPage()
	if total == 0 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "open pdf", fmt.Errorf("document has no pages"))
	}

	pages := make([][]byte, 0, total)
	for i := 0; i < total; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		png, err := doc.ImagePNG(i, renderDPI)
		if err != nil {
			return nil, fmt.Errorf("render page %d: %w", i+1, err)
		}
		pages = append(pages, png)
	}
	return pages, nil
}
