package ingest

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

type TextIngester struct{}

func (t *TextIngester) Ingest(ctx context.Context, source string) (*Content, error) {
	if err := validateFile(source); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(source)
	if err != nil {
		return nil, fmt.Errorf("could not read file %s: %w", source, err)
	}
	return newContent(string(data), "", filepath.Base(source))
}

// ReaderIngester reads a message from an open stream, normally stdin.
type ReaderIngester struct {
	R io.Reader
}

func (ri *ReaderIngester) Ingest(ctx context.Context, source string) (*Content, error) {
	if ri.R == nil {
		return nil, fmt.Errorf("no input stream for %q", source)
	}
	data, err := io.ReadAll(io.LimitReader(ri.R, maxInputSize+1))
	if err != nil {
		return nil, fmt.Errorf("could not read stdin: %w", err)
	}
	if len(data) > maxInputSize {
		return nil, fmt.Errorf("stdin is too large (max %d KB)", maxInputSize>>10)
	}
	return newContent(string(data), "", "stdin")
}
