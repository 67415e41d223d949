// Package lambdaurl runs an http.Handler behind an AWS Lambda function URL.
package lambdaurl

import (
	"context"
	"encoding/base64"
	"fmt"
	"mime"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"

	"github.com/aws/aws-lambda-go/events"
)

// HandlerFunc is the Lambda entry point signature for function URLs.
type HandlerFunc func(context.Context, events.LambdaFunctionURLRequest) (events.LambdaFunctionURLResponse, error)

// Option configures Wrap.
type Option func(*wrapper)

type wrapper struct {
	after []func(context.Context)
}

// AfterEach runs fn once the response for an invocation is ready, before it
// is handed back to Lambda. The environment may freeze right after, so this
// is where buffered telemetry gets flushed.
func AfterEach(fn func(context.Context)) Option {
	return func(w *wrapper) { w.after = append(w.after, fn) }
}

// Wrap adapts h so each function URL invocation is served as one request.
func Wrap(h http.Handler, opts ...Option) HandlerFunc {
	var w wrapper
	for _, opt := range opts {
		opt(&w)
	}
	return func(ctx context.Context, req events.LambdaFunctionURLRequest) (events.LambdaFunctionURLResponse, error) {
		defer func() {
			for _, fn := range w.after {
				fn(ctx)
			}
		}()
		r, err := toHTTPRequest(ctx, req)
		if err != nil {
			return events.LambdaFunctionURLResponse{
				StatusCode: http.StatusBadRequest,
				Headers:    map[string]string{"Content-Type": "application/json"},
				Body:       `{"success":false,"message":"Invalid request"}`,
			}, nil
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, r)
		return toLambdaResponse(rec), nil
	}
}

func toHTTPRequest(ctx context.Context, req events.LambdaFunctionURLRequest) (*http.Request, error) {
	body := req.Body
	if req.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(req.Body)
		if err != nil {
			return nil, fmt.Errorf("decode body: %w", err)
		}
		body = string(decoded)
	}

	path := req.RawPath
	if path == "" {
		path = req.RequestContext.HTTP.Path
	}
	if path == "" {
		path = "/"
	}
	u := &url.URL{
		Scheme:   "https",
		Host:     req.RequestContext.DomainName,
		Path:     path,
		RawQuery: req.RawQueryString,
	}

	method := req.RequestContext.HTTP.Method
	if method == "" {
		method = http.MethodGet
	}
	r, err := http.NewRequestWithContext(ctx, method, u.String(), strings.NewReader(body))
	if err != nil {
		return nil, err
	}
	for k, v := range req.Headers {
		r.Header.Set(k, v)
	}
	for _, c := range req.Cookies {
		r.Header.Add("Cookie", c)
	}
	r.RequestURI = u.RequestURI()
	r.RemoteAddr = req.RequestContext.HTTP.SourceIP
	return r, nil
}

func toLambdaResponse(rec *httptest.ResponseRecorder) events.LambdaFunctionURLResponse {
	res := rec.Result()
	headers := make(map[string]string, len(res.Header))
	for k, v := range res.Header {
		if k == "Set-Cookie" {
			continue
		}
		headers[k] = strings.Join(v, ",")
	}

	out := events.LambdaFunctionURLResponse{
		StatusCode: res.StatusCode,
		Headers:    headers,
		Cookies:    res.Header.Values("Set-Cookie"),
	}
	if isText(res.Header.Get("Content-Type")) {
		out.Body = rec.Body.String()
	} else {
		out.Body = base64.StdEncoding.EncodeToString(rec.Body.Bytes())
		out.IsBase64Encoded = true
	}
	return out
}

func isText(contentType string) bool {
	if contentType == "" {
		return true
	}
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return strings.HasPrefix(mt, "text/") || mt == "application/json" || strings.HasSuffix(mt, "+json")
}
