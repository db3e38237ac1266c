// Package pdfinfo answers cheap questions about an uploaded PDF without
// pulling in the rasterizer, so broken uploads are rejected at submit time.
package pdfinfo

import (
	"github.com/ledongthuc/pdf"

	"github.com/amoghv/rollscan/internal/core/domain"
)

type Inspector struct{}

func NewInspector() *Inspector {
	return &Inspector{}
}

// PageCount opens the PDF at path and returns its page count. Files that are
// not readable PDFs come back as ErrInvalidInput.
func (i *Inspector) PageCount(path string) (int, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return 0, domain.WrapError(domain.ErrInvalidInput, "inspect pdf", err)
	}
	defer f.Close()

	return reader.NumPage(), nil
}
