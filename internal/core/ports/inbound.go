package ports

import (
	"context"
	"io"
)

// Upload is one file received from the front end.
type Upload struct {
	Filename string
	Body     io.Reader
}

// JobSubmitter accepts a batch of uploads and returns a pollable job id
// without blocking on any extraction work.
type JobSubmitter interface {
	Submit(ctx context.Context, uploads []Upload) (string, error)
}
