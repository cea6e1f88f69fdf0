package server

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-ivu-ics/internal/config"
)

// -----------------------------------------------------------------------------
// Unit Tests (White-Box Testing of Handler Logic)
// -----------------------------------------------------------------------------

func serve(srv *FeedServer, req *http.Request) *http.Response {
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	return w.Result()
}

func TestHandler_ServingContent(t *testing.T) {
	srv := NewFeedServer("0", "schema.ics")
	expectedICS := []byte(config.StubVCalendar)
	srv.Update(expectedICS)

	for _, path := range []string{"/", "/schema.ics"} {
		t.Run(path, func(t *testing.T) {
			resp := serve(srv, httptest.NewRequest(http.MethodGet, path, nil))
			defer func() { _ = resp.Body.Close() }()

			assert.Equal(t, http.StatusOK, resp.StatusCode)
			assert.Equal(t, config.MimeTextCalendar, resp.Header.Get(config.HeaderContentType))
			assert.Equal(t, config.MimeNoSniff, resp.Header.Get(config.HeaderXContentType))
			assert.Contains(t, resp.Header.Get(config.HeaderCacheControl), "no-cache")
			assert.NotEmpty(t, resp.Header.Get(config.HeaderETag))

			body, _ := io.ReadAll(resp.Body)
			assert.Equal(t, expectedICS, body)
		})
	}
}

func TestHandler_UnknownPath(t *testing.T) {
	srv := NewFeedServer("0", "schema.ics")
	srv.Update([]byte(config.StubVCalendar))

	resp := serve(srv, httptest.NewRequest(http.MethodGet, "/other.ics", nil))
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHandler_Head(t *testing.T) {
	srv := NewFeedServer("0", "schema.ics")
	srv.Update([]byte(config.StubVCalendar))

	resp := serve(srv, httptest.NewRequest(http.MethodHead, "/", nil))
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Empty(t, body)
}

// TestHandler_Caching verifies ETag-based 304 responses.
func TestHandler_Caching(t *testing.T) {
	srv := NewFeedServer("0", "schema.ics")
	srv.Update([]byte("DATA_VERSION_1"))

	first := serve(srv, httptest.NewRequest(http.MethodGet, "/", nil))
	etag := first.Header.Get(config.HeaderETag)
	_ = first.Body.Close()
	require.NotEmpty(t, etag, "Server must provide an ETag")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(config.HeaderIfNoneMatch, etag)
	resp := serve(srv, req)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusNotModified, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Empty(t, body, "Body must be empty on 304 Not Modified")

	// A new calendar invalidates the old ETag.
	srv.Update([]byte("DATA_VERSION_2"))
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(config.HeaderIfNoneMatch, etag)
	resp2 := serve(srv, req)
	defer func() { _ = resp2.Body.Close() }()
	assert.Equal(t, http.StatusOK, resp2.StatusCode)
}

func TestHandler_IfModifiedSince(t *testing.T) {
	srv := NewFeedServer("0", "schema.ics")
	srv.Update([]byte("DATA"))

	future := time.Now().Add(time.Hour).UTC().Format(http.TimeFormat)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(config.HeaderIfModifiedSince, future)
	resp := serve(srv, req)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusNotModified, resp.StatusCode)

	past := time.Now().Add(-time.Hour).UTC().Format(http.TimeFormat)
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(config.HeaderIfModifiedSince, past)
	resp2 := serve(srv, req)
	defer func() { _ = resp2.Body.Close() }()
	assert.Equal(t, http.StatusOK, resp2.StatusCode)
}

func TestHandler_MethodNotAllowed(t *testing.T) {
	srv := NewFeedServer("0", "schema.ics")

	resp := serve(srv, httptest.NewRequest(http.MethodPost, "/", nil))
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	assert.Equal(t, config.AllowedMethods, resp.Header.Get(config.HeaderAllow))
}

func TestHandler_Initializing(t *testing.T) {
	srv := NewFeedServer("0", "schema.ics")

	resp := serve(srv, httptest.NewRequest(http.MethodGet, "/", nil))
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, config.RetryAfterSeconds, resp.Header.Get(config.HeaderRetryAfter))
}

func TestStart_PortRequired(t *testing.T) {
	srv := NewFeedServer("", "schema.ics")
	err := srv.Start(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), config.ErrPortRequired)
}

// -----------------------------------------------------------------------------
// Concurrency Tests (Race Detection)
// -----------------------------------------------------------------------------

// TestServer_RaceCondition exercises concurrent Update and reads.
// Run this with `go test -race`.
func TestServer_RaceCondition(t *testing.T) {
	srv := NewFeedServer("0", "schema.ics")
	var wg sync.WaitGroup

	end := time.Now().Add(300 * time.Millisecond)

	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for i := 0; time.Now().Before(end); i++ {
				srv.Update([]byte(fmt.Sprintf("VERSION:%d-%d", id, i)))
				time.Sleep(time.Microsecond)
			}
		}(w)
	}

	for r := 0; r < 10; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for time.Now().Before(end) {
				w := httptest.NewRecorder()
				srv.handleFeed(w, httptest.NewRequest(http.MethodGet, "/", nil))
				if w.Code != http.StatusOK && w.Code != http.StatusServiceUnavailable {
					t.Errorf("Unexpected status code during race test: %d", w.Code)
				}
			}
		}()
	}

	wg.Wait()
}

// -----------------------------------------------------------------------------
// Integration Tests (Real TCP Lifecycle)
// -----------------------------------------------------------------------------

// TestServer_Lifecycle binds a real listener and checks graceful shutdown.
func TestServer_Lifecycle(t *testing.T) {
	const port = "18099"

	srv := NewFeedServer(port, "schema.ics")
	ctx, cancel := context.WithCancel(context.Background())
	errChan := make(chan error, 1)

	go func() {
		errChan <- srv.Serve(ctx, []byte(config.StubVCalendar))
	}()

	url := "http://127.0.0.1:" + port + "/schema.ics"

	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return true
	}, 2*time.Second, 50*time.Millisecond, "Server failed to bind/listen in time")

	resp, err := http.Get(url)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	assert.NoError(t, err)
	assert.Equal(t, config.StubVCalendar, string(body))

	cancel()

	select {
	case err := <-errChan:
		assert.NoError(t, err, "Server should shutdown gracefully without error")
	case <-time.After(5 * time.Second):
		t.Fatal("Server shutdown timed out")
	}
}
