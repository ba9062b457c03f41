package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/artbyte/assetcache/internal/apperrors"
)

// HTTPLoader fetches assets with a single GET against a base URL. It performs
// no retries or backoff; callers wanting those wrap the injected client.
type HTTPLoader struct {
	client    *http.Client
	baseURL   string
	userAgent string
}

// NewHTTPLoader creates a loader for the given origin. When client is nil a
// default one is built with the given timeout (30s if zero) on a clone of
// http.DefaultTransport, preserving its connection pooling and HTTP/2
// settings.
func NewHTTPLoader(baseURL, userAgent string, timeout time.Duration, client *http.Client) *HTTPLoader {
	if client == nil {
		if timeout == 0 {
			timeout = 30 * time.Second
		}
		client = &http.Client{
			Timeout:   timeout,
			Transport: http.DefaultTransport.(*http.Transport).Clone(),
		}
	}
	return &HTTPLoader{
		client:    client,
		baseURL:   baseURL,
		userAgent: userAgent,
	}
}

// Fetch implements Loader. HTTP 404 and 410 map to ErrSourceNotFound; any
// other non-2xx status is an ordinary fetch error.
func (l *HTTPLoader) Fetch(ctx context.Context, assetID string) ([]byte, error) {
	u, err := l.assetURL(assetID)
	if err != nil {
		return nil, fmt.Errorf("build asset URL for %q: %w", assetID, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build request for %q: %w", assetID, err)
	}
	if l.userAgent != "" {
		req.Header.Set("User-Agent", l.userAgent)
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %q: %w", assetID, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return nil, apperrors.NewSourceNotFoundError(assetID)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, fmt.Errorf("fetch %q: unexpected status %s", assetID, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body for %q: %w", assetID, err)
	}
	return data, nil
}

func (l *HTTPLoader) assetURL(assetID string) (string, error) {
	base, err := url.Parse(l.baseURL)
	if err != nil {
		return "", err
	}
	ref, err := url.Parse(strings.TrimPrefix(assetID, "/"))
	if err != nil {
		return "", err
	}
	base.Path = strings.TrimRight(base.Path, "/") + "/"
	return base.ResolveReference(ref).String(), nil
}
