// Package ingest loads the text a persona rewrites when it does not come in
// on the command line: files, PDFs, web articles or standard input.
package ingest

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"
)

type SourceType string

const (
	SourceURL   SourceType = "url"
	SourcePDF   SourceType = "pdf"
	SourceText  SourceType = "text"
	SourceStdin SourceType = "stdin"

	// maxInputSize is the largest input accepted from any source (1 MB).
	maxInputSize = 1 << 20
)

func (s SourceType) String() string {
	return string(s)
}

// Content is a loaded message ready for transformation.
type Content struct {
	Text      string
	Title     string
	Source    string
	WordCount int
}

type Ingester interface {
	Ingest(ctx context.Context, source string) (*Content, error)
}

func DetectSource(input string) SourceType {
	switch {
	case input == "-":
		return SourceStdin
	case strings.HasPrefix(input, "http://"), strings.HasPrefix(input, "https://"):
		return SourceURL
	case strings.HasSuffix(strings.ToLower(input), ".pdf"):
		return SourcePDF
	default:
		return SourceText
	}
}

// NewIngester picks the loader for input. stdin is read for "-".
func NewIngester(input string, stdin io.Reader) Ingester {
	switch DetectSource(input) {
	case SourceStdin:
		return &ReaderIngester{R: stdin}
	case SourceURL:
		return &URLIngester{}
	case SourcePDF:
		return &PDFIngester{}
	default:
		return &TextIngester{}
	}
}

// Load detects the source type of input and ingests it.
func Load(ctx context.Context, input string, stdin io.Reader) (*Content, error) {
	return NewIngester(input, stdin).Ingest(ctx, input)
}

func newContent(text, title, source string) (*Content, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("no text found in %s", source)
	}
	if title == "" {
		title = titleFromText(text, 80)
	}
	return &Content{
		Text:      text,
		Title:     title,
		Source:    source,
		WordCount: wordCount(text),
	}, nil
}

func wordCount(text string) int {
	return len(strings.FieldsFunc(text, unicode.IsSpace))
}

func titleFromText(text string, maxLen int) string {
	line, _, _ := strings.Cut(text, "\n")
	line = strings.TrimSpace(line)
	if r := []rune(line); len(r) > maxLen {
		line = string(r[:maxLen]) + "..."
	}
	if line == "" {
		return "Untitled"
	}
	return line
}

func validateFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("cannot access %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory, not a file", path)
	}
	if info.Size() > maxInputSize {
		return fmt.Errorf("%s is too large (%d KB, max %d KB)", path, info.Size()>>10, maxInputSize>>10)
	}
	return nil
}
