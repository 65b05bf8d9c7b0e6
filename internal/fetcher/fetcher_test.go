package fetcher

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

const body = "camera_id,location_name,latitude,longitude,status,installation_date\n"

func fastOptions() Options {
	return Options{
		MaxRetries: 3,
		Backoff:    time.Millisecond,
		Limiter:    rate.NewLimiter(rate.Inf, 1),
	}
}

func readAll(t *testing.T, rc io.ReadCloser) string {
	t.Helper()
	defer rc.Close() //nolint:errcheck
	b, err := io.ReadAll(rc)
	require.NoError(t, err)
	return string(b)
}

func TestOpen_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cameras.csv")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	rc, err := Open(context.Background(), path, Options{})
	require.NoError(t, err)
	assert.Equal(t, body, readAll(t, rc))
}

func TestOpen_MissingFile(t *testing.T) {
	_, err := Open(context.Background(), filepath.Join(t.TempDir(), "nope.csv"), Options{})
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestOpen_Empty(t *testing.T) {
	_, err := Open(context.Background(), "", Options{})
	assert.Error(t, err)
}

func TestIsRemote(t *testing.T) {
	assert.True(t, IsRemote("https://data.cityofnewyork.us/cameras.csv"))
	assert.True(t, IsRemote("http://localhost:8080/cameras.csv"))
	assert.False(t, IsRemote("cameras.csv"))
	assert.False(t, IsRemote(Stdin))
}

func TestDownload_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "camera-coverage/1.0", r.Header.Get("User-Agent"))
		_, _ = io.WriteString(w, body)
	}))
	defer srv.Close()

	rc, err := Open(context.Background(), srv.URL+"/cameras.csv", fastOptions())
	require.NoError(t, err)
	assert.Equal(t, body, readAll(t, rc))
}

func TestDownload_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = io.WriteString(w, body)
	}))
	defer srv.Close()

	rc, err := Download(context.Background(), srv.URL, fastOptions())
	require.NoError(t, err)
	assert.Equal(t, body, readAll(t, rc))
	assert.Equal(t, int32(3), calls.Load())
}

func TestDownload_RetriesExhausted(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := Download(context.Background(), srv.URL, fastOptions())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "3 attempts exhausted")
	assert.Equal(t, int32(3), calls.Load())
}

func TestDownload_ClientErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := Download(context.Background(), srv.URL, fastOptions())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 404")
	assert.Equal(t, int32(1), calls.Load())
}

func TestDownload_Cancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	opts := fastOptions()
	opts.Backoff = time.Hour
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := Download(ctx, srv.URL, opts)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBackoff(t *testing.T) {
	for attempt := range 4 {
		d := backoff(time.Second, attempt)
		base := time.Second << attempt
		assert.GreaterOrEqual(t, d, base)
		assert.Less(t, d, base+base/2+1)
	}
	assert.Less(t, backoff(time.Second, 10), 46*time.Second)
}
