// Package fetch resolves the club news document.
//
// Resolution walks three tiers: the remote feed, the local cache, and the
// embedded default document. Failures in the first two are classified as
// *Error values, recorded in the Result, and never returned to the caller.
package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

// Format selects how a fetched body is parsed.
type Format string

const (
	FormatJSON Format = "json"
	FormatRSS  Format = "rss"
)

// DefaultUserAgent is sent when no user agent is configured.
const DefaultUserAgent = "clubnews/1.0 (+https://github.com/abelbrown/clubnews)"

// maxBody caps how much of a feed response is read.
const maxBody = 8 << 20

// Fetcher retrieves and parses the remote feed document.
type Fetcher struct {
	client    *http.Client
	userAgent string
	format    Format
}

// NewFetcher creates a Fetcher whose HTTP requests time out after timeout.
// An empty userAgent uses DefaultUserAgent; an empty format means JSON.
func NewFetcher(timeout time.Duration, userAgent string, format Format) *Fetcher {
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	if format == "" {
		format = FormatJSON
	}
	return &Fetcher{
		client:    &http.Client{Timeout: timeout},
		userAgent: userAgent,
		format:    format,
	}
}

// Format returns the parse format of the fetcher.
func (f *Fetcher) Format() Format {
	return f.format
}

// Fetch loads rawURL and returns the decoded document in the generic form
// produced by json.Unmarshal into an `any`. http(s) URLs are fetched over the
// network; file:// URLs are read from disk.
//
// Errors are always *Error values.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (any, error) {
	if ctx.Err() != nil {
		return nil, newError(KindNetwork, "fetch", ctx.Err())
	}

	body, err := f.read(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	text, err := DecodeBody(body)
	if err != nil {
		return nil, err
	}

	if f.format == FormatRSS {
		return parseRSS(text)
	}

	var raw any
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, newError(KindParse, "parse", err)
	}
	return raw, nil
}

func (f *Fetcher) read(ctx context.Context, rawURL string) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, newError(KindNetwork, "fetch", fmt.Errorf("invalid feed url: %w", err))
	}

	switch strings.ToLower(u.Scheme) {
	case "file":
		b, err := os.ReadFile(FilePath(u))
		if err != nil {
			return nil, newError(KindNetwork, "fetch", err)
		}
		return b, nil
	case "http", "https":
	default:
		return nil, newError(KindNetwork, "fetch", fmt.Errorf("unsupported scheme %q", u.Scheme))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, newError(KindNetwork, "fetch", fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("User-Agent", f.userAgent)
	if f.format == FormatRSS {
		req.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/xml;q=0.9")
	} else {
		req.Header.Set("Accept", "application/json")
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, newError(KindNetwork, "fetch", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, newError(KindNetwork, "fetch", fmt.Errorf("HTTP %d", resp.StatusCode))
	}

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, newError(KindNetwork, "fetch", fmt.Errorf("read body: %w", err))
	}
	return b, nil
}

// FilePath returns the local path named by a file:// URL. Both
// file:///abs/path and the host-relative file://rel/path forms are accepted.
func FilePath(u *url.URL) string {
	if u.Host != "" && u.Host != "localhost" {
		return u.Host + u.Path
	}
	return u.Path
}

// LocalPath returns the path for a file:// feed URL and whether rawURL is one.
func LocalPath(rawURL string) (string, bool) {
	u, err := url.Parse(rawURL)
	if err != nil || !strings.EqualFold(u.Scheme, "file") {
		return "", false
	}
	return FilePath(u), true
}
