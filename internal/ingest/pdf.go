package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PDFIngester extracts the text layer of a PDF. Scanned pages carry no
// text and are skipped.
type PDFIngester struct{}

func (p *PDFIngester) Ingest(ctx context.Context, source string) (*Content, error) {
	if err := validateFile(source); err != nil {
		return nil, err
	}

	f, err := os.Open(source)
	if err != nil {
		return nil, fmt.Errorf("cannot open %s: %w", source, err)
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("cannot access %s: %w", source, err)
	}

	r, err := pdf.NewReader(f, info.Size())
	if err != nil {
		return nil, fmt.Errorf("could not read PDF %s: %w", source, err)
	}

	text, err := pageText(ctx, r)
	if err != nil {
		return nil, err
	}
	content, err := newContent(text, documentTitle(r), filepath.Base(source))
	if err != nil {
		return nil, fmt.Errorf("no text layer in PDF %s, it may be scanned or image-based", source)
	}
	return content, nil
}

// pageText joins the plain text of every page, one page per line block.
func pageText(ctx context.Context, r *pdf.Reader) (string, error) {
	var pages []string
	for i := 1; i <= r.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		if text = strings.TrimSpace(text); text != "" {
			pages = append(pages, text)
		}
	}
	return strings.Join(pages, "\n\n"), nil
}

// documentTitle reads /Title from the document info dictionary.
func documentTitle(r *pdf.Reader) string {
	return strings.TrimSpace(r.Trailer().Key("Info").Key("Title").Text())
}
