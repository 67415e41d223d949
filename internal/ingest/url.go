package ingest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	readability "github.com/go-shiori/go-readability"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// URLIngester fetches a page and extracts its article text.
type URLIngester struct {
	// Client defaults to a traced client with a 30s timeout.
	Client *http.Client
}

func (u *URLIngester) client() *http.Client {
	if u.Client != nil {
		return u.Client
	}
	return &http.Client{
		Timeout:   30 * time.Second,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
}

func (u *URLIngester) Ingest(ctx context.Context, source string) (*Content, error) {
	parsed, err := url.Parse(source)
	if err != nil {
		return nil, fmt.Errorf("invalid URL %s: %w", source, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid URL %s: %w", source, err)
	}
	resp, err := u.client().Do(req)
	if err != nil {
		return nil, fmt.Errorf("could not fetch URL %s: %w", source, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("could not fetch URL %s: HTTP %d", source, resp.StatusCode)
	}

	article, err := readability.FromReader(io.LimitReader(resp.Body, maxInputSize), parsed)
	if err != nil {
		return nil, fmt.Errorf("could not extract article from %s: %w", source, err)
	}
	return newContent(article.TextContent, article.Title, source)
}
