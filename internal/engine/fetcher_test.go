package engine_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-ivu-ics/internal/config"
	"github.com/tartampluch/go-ivu-ics/internal/engine"
)

// TestHTTPFetcher_Fetch_Success verifies a complete successful download flow.
// It checks correct headers (User-Agent, Basic Auth) and response body integrity.
func TestHTTPFetcher_Fetch_Success(t *testing.T) {
	expectedUser := "anna"
	expectedPass := "securepass"

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok, "Basic auth header should be present")
		assert.Equal(t, expectedUser, user, "Username mismatch")
		assert.Equal(t, expectedPass, pass, "Password mismatch")

		assert.Equal(t, config.UserAgent, r.Header.Get("User-Agent"), "User-Agent mismatch")
		assert.Equal(t, config.MimeHTML, r.Header.Get("Accept"))

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(shiftPage))
	}))
	defer ts.Close()

	fetcher := engine.NewHTTPFetcher()
	rc, err := fetcher.Fetch(context.Background(), ts.URL, expectedUser, expectedPass)

	require.NoError(t, err)
	defer func() { _ = rc.Close() }()

	body, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, shiftPage, string(body))
}

// TestHTTPFetcher_Fetch_NoAuth ensures no Authorization header is sent without credentials.
func TestHTTPFetcher_Fetch_NoAuth(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _, ok := r.BasicAuth()
		assert.False(t, ok)
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	rc, err := engine.NewHTTPFetcher().Fetch(context.Background(), ts.URL, "", "")
	require.NoError(t, err)
	_ = rc.Close()
}

// TestHTTPFetcher_Fetch_Errors verifies proper error handling for non-200 statuses.
func TestHTTPFetcher_Fetch_Errors(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		wantErr    string
	}{
		{"NotFound", http.StatusNotFound, "404"},
		{"ServerError", http.StatusInternalServerError, "500"},
		{"BadGateway", http.StatusBadGateway, "502"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.statusCode)
			}))
			defer ts.Close()

			rc, err := engine.NewHTTPFetcher().Fetch(context.Background(), ts.URL, "", "")

			assert.Error(t, err)
			assert.Nil(t, rc)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

// TestHTTPFetcher_Fetch_AuthRejected maps 401 and 403 to ErrPortalAuth.
func TestHTTPFetcher_Fetch_AuthRejected(t *testing.T) {
	for _, code := range []int{http.StatusUnauthorized, http.StatusForbidden} {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(code)
		}))

		rc, err := engine.NewHTTPFetcher().Fetch(context.Background(), ts.URL, "anna", "wrong")
		ts.Close()

		assert.Nil(t, rc)
		assert.ErrorIs(t, err, engine.ErrPortalAuth, "status %d", code)
	}
}

// TestHTTPFetcher_Fetch_SizeCap verifies that oversized pages fail rather than truncate.
func TestHTTPFetcher_Fetch_SizeCap(t *testing.T) {
	page := strings.Repeat("x", 64)

	t.Run("DeclaredLength", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(page))
		}))
		defer ts.Close()

		f := engine.NewHTTPFetcher()
		f.MaxBytes = 16
		_, err := f.Fetch(context.Background(), ts.URL, "", "")
		assert.ErrorIs(t, err, engine.ErrTooLarge)
	})

	t.Run("Streamed", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.(http.Flusher).Flush()
			_, _ = w.Write([]byte(page))
		}))
		defer ts.Close()

		f := engine.NewHTTPFetcher()
		f.MaxBytes = 16
		rc, err := f.Fetch(context.Background(), ts.URL, "", "")
		require.NoError(t, err)
		defer func() { _ = rc.Close() }()

		_, err = io.ReadAll(rc)
		assert.ErrorIs(t, err, engine.ErrTooLarge)
	})

	t.Run("ExactlyAtCap", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.(http.Flusher).Flush()
			_, _ = w.Write([]byte(page))
		}))
		defer ts.Close()

		f := engine.NewHTTPFetcher()
		f.MaxBytes = int64(len(page))
		rc, err := f.Fetch(context.Background(), ts.URL, "", "")
		require.NoError(t, err)
		defer func() { _ = rc.Close() }()

		body, err := io.ReadAll(rc)
		require.NoError(t, err)
		assert.Equal(t, page, string(body))
	})
}

// TestHTTPFetcher_Fetch_Timeout ensures the client respects context deadlines.
func TestHTTPFetcher_Fetch_Timeout(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := engine.NewHTTPFetcher().Fetch(ctx, ts.URL, "", "")

	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded, "Should return context deadline exceeded error")
}

// TestHTTPFetcher_Fetch_InvalidURL ensures malformed URLs are caught early.
func TestHTTPFetcher_Fetch_InvalidURL(t *testing.T) {
	_, err := engine.NewHTTPFetcher().Fetch(context.Background(), string([]byte{0x7f}), "", "")

	require.Error(t, err)
	assert.Contains(t, err.Error(), config.ErrInvalidURL)
}

// TestHTTPFetcher_Fetch_ProtocolSecurity enforces HTTP/HTTPS only.
func TestHTTPFetcher_Fetch_ProtocolSecurity(t *testing.T) {
	_, err := engine.NewHTTPFetcher().Fetch(context.Background(), "ftp://example.com/schema.html", "", "")

	require.Error(t, err)
	assert.Contains(t, err.Error(), config.ErrProtocol)
}

func TestIsRemote(t *testing.T) {
	assert.True(t, engine.IsRemote("https://portal.example/x"))
	assert.True(t, engine.IsRemote("HTTP://portal.example/x"))
	assert.False(t, engine.IsRemote("schema.html"))
	assert.False(t, engine.IsRemote("/tmp/http:/odd.html"))
	assert.False(t, engine.IsRemote("ftp://portal.example/x"))
}
