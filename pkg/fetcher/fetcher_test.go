package fetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"banksentinel/config"
	"banksentinel/pkg/cache"
	"banksentinel/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFetcher(t *testing.T, cfg config.Fetcher) Fetcher {
	t.Helper()
	log, err := logger.New(&config.Config{Log: config.Logger{Level: "error", Encoding: "console"}})
	require.NoError(t, err)
	return New(cfg, log, cache.NewCache(time.Minute, time.Minute))
}

func baseCfg() config.Fetcher {
	return config.Fetcher{
		Timeout:           5 * time.Second,
		MaxRetries:        3,
		BaseBackoff:       10 * time.Millisecond,
		MaxBackoff:        50 * time.Millisecond,
		DomainMinInterval: 10 * time.Millisecond,
		CacheTTL:          time.Minute,
	}
}

func TestCacheKey_NamespacedAndHeaderSensitive(t *testing.T) {
	plain := cacheKey(Request{URL: "https://example.gov/feed"})
	assert.Equal(t, "fetch:https://example.gov/feed", plain)

	withHeader := cacheKey(Request{
		URL:     "https://example.gov/feed",
		Headers: map[string]string{"Accept": "application/json"},
	})
	assert.Equal(t, "fetch:https://example.gov/feed|Accept=application/json", withHeader)
	assert.NotEqual(t, plain, withHeader)
}

func TestFetch_RetriesTransientThenSucceeds(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	f := newTestFetcher(t, baseCfg())
	resp, err := f.Fetch(context.Background(), Request{URL: srv.URL})

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.Status)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
	assert.False(t, resp.FromCache)
}

func TestFetch_ClientErrorNotRetried(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	f := newTestFetcher(t, baseCfg())
	resp, err := f.Fetch(context.Background(), Request{URL: srv.URL})

	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.Status)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestFetch_ExhaustedRetriesReturnsFetchError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	cfg := baseCfg()
	cfg.MaxRetries = 2
	f := newTestFetcher(t, cfg)

	_, err := f.Fetch(context.Background(), Request{URL: srv.URL})

	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, 3, fetchErr.Attempts)
}

func TestFetch_CachedSecondRequest(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Write([]byte("payload"))
	}))
	defer srv.Close()

	f := newTestFetcher(t, baseCfg())

	first, err := f.Fetch(context.Background(), Request{URL: srv.URL, UseCache: true})
	require.NoError(t, err)
	assert.False(t, first.FromCache)

	second, err := f.Fetch(context.Background(), Request{URL: srv.URL, UseCache: true})
	require.NoError(t, err)
	assert.True(t, second.FromCache)
	assert.Equal(t, first.Content, second.Content)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestFetch_SameDomainRequestsSpaced(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	cfg := baseCfg()
	cfg.DomainMinInterval = 100 * time.Millisecond
	f := newTestFetcher(t, cfg)

	start := time.Now()
	_, err := f.Fetch(context.Background(), Request{URL: srv.URL})
	require.NoError(t, err)
	_, err = f.Fetch(context.Background(), Request{URL: srv.URL})
	require.NoError(t, err)

	assert.GreaterOrEqual(t, time.Since(start), 100*time.Millisecond)
}
