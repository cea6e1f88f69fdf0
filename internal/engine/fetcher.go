package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/tartampluch/go-ivu-ics/internal/config"
)

var (
	// ErrPortalAuth is returned when the portal answers 401 or 403.
	ErrPortalAuth = errors.New(config.ErrPortalAuth)

	// ErrTooLarge is returned by the body reader once a page passes the size cap.
	ErrTooLarge = errors.New(config.ErrTooLarge)
)

// DocumentFetcher retrieves schedule pages from the portal.
type DocumentFetcher interface {
	Fetch(ctx context.Context, url, user, pass string) (io.ReadCloser, error)
}

// HTTPFetcher implements DocumentFetcher over net/http.
type HTTPFetcher struct {
	Client *http.Client

	// MaxBytes caps the page size; zero means config.MaxHTTPResponseSize.
	MaxBytes int64
}

// NewHTTPFetcher returns a fetcher with the default timeout and size cap.
func NewHTTPFetcher() *HTTPFetcher {
	return &HTTPFetcher{
		Client:   &http.Client{Timeout: config.HTTPTimeout},
		MaxBytes: config.MaxHTTPResponseSize,
	}
}

// IsRemote reports whether an input argument names an HTTP(S) resource
// rather than a local file.
func IsRemote(input string) bool {
	lower := strings.ToLower(input)
	return strings.HasPrefix(lower, config.SchemeHTTP+"://") || strings.HasPrefix(lower, config.SchemeHTTPS+"://")
}

// Fetch requests one schedule page. Credentials, when present, go out as
// HTTP Basic Auth. Query parameters never reach the logs since the portal
// puts session tokens there.
func (f *HTTPFetcher) Fetch(ctx context.Context, pageURL, user, pass string) (io.ReadCloser, error) {
	u, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrInvalidURL, err)
	}
	if u.Scheme != config.SchemeHTTP && u.Scheme != config.SchemeHTTPS {
		return nil, fmt.Errorf("%s: %s", config.ErrProtocol, u.Scheme)
	}

	log := slog.With(
		slog.String(config.LogKeyComponent, config.CompFetcher),
		slog.String(config.LogKeyURL, u.Scheme+"://"+u.Host+u.Path),
		slog.Bool(config.LogKeyAuth, user != ""),
	)
	log.Debug(config.MsgFetchStart)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrRequestBuild, err)
	}
	req.Header.Set(config.HeaderUserAgent, config.UserAgent)
	req.Header.Set(config.HeaderAccept, config.MimeHTML)
	if user != "" || pass != "" {
		req.SetBasicAuth(user, pass)
	}

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrNetwork, err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized, http.StatusForbidden:
		_ = resp.Body.Close()
		log.Warn(config.MsgFetchStatus, slog.Int(config.LogKeyStatus, resp.StatusCode))
		return nil, fmt.Errorf("%w: %s", ErrPortalAuth, resp.Status)
	default:
		_ = resp.Body.Close()
		log.Warn(config.MsgFetchStatus, slog.Int(config.LogKeyStatus, resp.StatusCode))
		return nil, fmt.Errorf("%s: %s", config.ErrHTTPStatus, resp.Status)
	}

	limit := f.MaxBytes
	if limit <= 0 {
		limit = config.MaxHTTPResponseSize
	}
	if resp.ContentLength > limit {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("%w: %d > %d", ErrTooLarge, resp.ContentLength, limit)
	}

	log.Debug(config.MsgFetchOK, slog.Int64(config.LogKeySizeBytes, resp.ContentLength))

	return &cappedBody{body: resp.Body, left: limit}, nil
}

// cappedBody fails with ErrTooLarge instead of truncating, so a cut-off page
// never yields a partial schedule.
type cappedBody struct {
	body io.ReadCloser
	left int64
}

func (c *cappedBody) Read(p []byte) (int, error) {
	if c.left <= 0 {
		// One probe byte tells a body that ends exactly at the cap from one that goes on.
		var probe [1]byte
		n, err := c.body.Read(probe[:])
		if n > 0 {
			return 0, ErrTooLarge
		}
		return 0, err
	}
	if int64(len(p)) > c.left {
		p = p[:c.left]
	}
	n, err := c.body.Read(p)
	c.left -= int64(n)
	return n, err
}

func (c *cappedBody) Close() error {
	return c.body.Close()
}
