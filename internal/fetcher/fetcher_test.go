package fetcher

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchHTTP(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.Header.Get("User-Agent"), "Mozilla")
		_, _ = w.Write([]byte(`{"sites": []}`))
	}))
	defer server.Close()

	f := New(Options{})
	body, err := f.Fetch(t.Context(), server.URL)
	require.NoError(t, err)
	assert.JSONEq(t, `{"sites": []}`, string(body))
}

func TestFetchRetriesTransientFailures(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer server.Close()

	f := New(Options{MaxTries: 3, Timeout: 5 * time.Second})
	body, err := f.Fetch(t.Context(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, "ok", string(body))
	assert.Equal(t, int32(2), calls.Load())
}

func TestFetchDoesNotRetryClientErrors(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	f := New(Options{MaxTries: 3})
	_, err := f.Fetch(t.Context(), server.URL)
	require.Error(t, err)
	assert.True(t, IsUnreachable(err))
	assert.Equal(t, int32(1), calls.Load(), "4xx must not be retried")

	var ue *UnreachableError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, http.StatusNotFound, ue.StatusCode)
}

func TestFetchExhaustsRetries(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	f := New(Options{MaxTries: 2})
	_, err := f.Fetch(t.Context(), server.URL)
	require.Error(t, err)
	assert.True(t, IsUnreachable(err))
	assert.Equal(t, int32(2), calls.Load())
}

func TestFetchLocalFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"sites": []}`), 0600))

	f := New(Options{})

	body, err := f.Fetch(t.Context(), path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"sites": []}`, string(body))

	body, err = f.Fetch(t.Context(), "file://"+path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"sites": []}`, string(body))
}

func TestFetchLocalFileMissing(t *testing.T) {
	t.Parallel()

	f := New(Options{})
	_, err := f.Fetch(t.Context(), filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
	assert.True(t, IsUnreachable(err))
}

func TestFetchEmptyRef(t *testing.T) {
	t.Parallel()

	f := New(Options{})
	_, err := f.Fetch(t.Context(), "")
	assert.Error(t, err)
}

func TestIsLocalRef(t *testing.T) {
	t.Parallel()

	assert.True(t, isLocalRef("/data/config.json"))
	assert.True(t, isLocalRef("file:///data/config.json"))
	assert.True(t, isLocalRef("relative/config.json"))
	assert.False(t, isLocalRef("http://example.com/config.json"))
	assert.False(t, isLocalRef("https://example.com/config.json"))
}
