package fetcher

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"banksentinel/config"
	"banksentinel/pkg/cache"
	"banksentinel/pkg/common"
	"banksentinel/pkg/logger"
	"banksentinel/pkg/ratelimit"

	"github.com/go-resty/resty/v2"
)

// Request describes a single retrieval. UseCache only applies to GET.
type Request struct {
	URL      string
	Method   string
	Headers  map[string]string
	Body     interface{}
	UseCache bool
}

type Response struct {
	Content   []byte
	Status    int
	Headers   http.Header
	FetchedAt time.Time
	FromCache bool
}

// FetchError is returned once every retry has been exhausted.
type FetchError struct {
	URL      string
	Attempts int
	LastErr  error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s failed after %d attempts: %v", e.URL, e.Attempts, e.LastErr)
}

func (e *FetchError) Unwrap() error {
	return e.LastErr
}

type Fetcher interface {
	Fetch(ctx context.Context, req Request) (*Response, error)
}

type resilientFetcher struct {
	cfg      config.Fetcher
	log      *logger.Logger
	client   *resty.Client
	limiters *ratelimit.LimiterStore
	cache    cache.Cache
}

func New(cfg config.Fetcher, log *logger.Logger, c cache.Cache) Fetcher {
	client := resty.New().
		SetTimeout(cfg.Timeout).
		SetRetryCount(0). // retries are handled here, with per-domain throttling in between
		SetHeader("Accept", "application/json")

	return &resilientFetcher{
		cfg:      cfg,
		log:      log,
		client:   client,
		limiters: ratelimit.NewLimiterStore(cfg.DomainMinInterval, 1),
		cache:    c,
	}
}

type cacheEntry struct {
	content   []byte
	status    int
	headers   http.Header
	fetchedAt time.Time
	expiresAt time.Time
}

func (f *resilientFetcher) Fetch(ctx context.Context, req Request) (*Response, error) {
	if req.Method == "" {
		req.Method = http.MethodGet
	}

	cacheable := req.UseCache && req.Method == http.MethodGet
	key := cacheKey(req)

	if cacheable {
		if entry, ok := f.lookupCache(key); ok {
			return &Response{
				Content:   entry.content,
				Status:    entry.status,
				Headers:   entry.headers,
				FetchedAt: entry.fetchedAt,
				FromCache: true,
			}, nil
		}
	}

	domain, err := domainOf(req.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid url %q: %w", req.URL, err)
	}

	var lastErr error
	attempts := 0
	for attempt := 0; attempt <= f.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			if err := f.sleepBackoff(ctx, attempt); err != nil {
				return nil, err
			}
		}

		if err := f.limiters.Wait(ctx, domain); err != nil {
			return nil, err
		}

		attempts++
		resp, err := f.execute(ctx, req)
		if err != nil {
			lastErr = err
			f.log.WarnContext(ctx, "Fetch transport error",
				logger.StringField("url", req.URL),
				logger.IntField("attempt", attempts),
				logger.ErrorField(err),
			)
			continue
		}

		if isTransientStatus(resp.Status) {
			lastErr = fmt.Errorf("server returned status %d", resp.Status)
			f.log.WarnContext(ctx, "Fetch transient status",
				logger.StringField("url", req.URL),
				logger.IntField("status", resp.Status),
				logger.IntField("attempt", attempts),
			)
			continue
		}

		// Client errors are definitive, hand them straight back.
		if cacheable && resp.Status >= 200 && resp.Status < 300 {
			f.storeCache(key, resp)
		}
		return resp, nil
	}

	return nil, &FetchError{URL: req.URL, Attempts: attempts, LastErr: lastErr}
}

func (f *resilientFetcher) execute(ctx context.Context, req Request) (*Response, error) {
	r := f.client.R().SetContext(ctx)
	if req.Headers != nil {
		r.SetHeaders(req.Headers)
	}
	if req.Body != nil {
		r.SetBody(req.Body)
	}

	resp, err := r.Execute(req.Method, req.URL)
	if err != nil {
		return nil, err
	}

	return &Response{
		Content:   resp.Body(),
		Status:    resp.StatusCode(),
		Headers:   resp.Header(),
		FetchedAt: time.Now(),
	}, nil
}

func (f *resilientFetcher) sleepBackoff(ctx context.Context, attempt int) error {
	delay := f.cfg.BaseBackoff << (attempt - 1)
	if delay > f.cfg.MaxBackoff {
		delay = f.cfg.MaxBackoff
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(delay):
		return nil
	}
}

func (f *resilientFetcher) lookupCache(key string) (*cacheEntry, bool) {
	val, found := f.cache.Get(key)
	if !found {
		return nil, false
	}
	entry, ok := val.(*cacheEntry)
	if !ok {
		return nil, false
	}
	if time.Now().After(entry.expiresAt) {
		f.cache.Delete(key)
		return nil, false
	}
	return entry, true
}

func (f *resilientFetcher) storeCache(key string, resp *Response) {
	f.cache.Set(key, &cacheEntry{
		content:   resp.Content,
		status:    resp.Status,
		headers:   resp.Headers,
		fetchedAt: resp.FetchedAt,
		expiresAt: time.Now().Add(f.cfg.CacheTTL),
	}, f.cfg.CacheTTL)
}

func isTransientStatus(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}

func domainOf(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	if u.Hostname() == "" {
		return "", fmt.Errorf("url has no host")
	}
	return u.Hostname(), nil
}

func cacheKey(req Request) string {
	if len(req.Headers) == 0 {
		return fmt.Sprintf(common.KEY_FETCH_CACHE, req.URL)
	}
	keys := make([]string, 0, len(req.Headers))
	for k := range req.Headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(req.URL)
	for _, k := range keys {
		b.WriteString("|")
		b.WriteString(k)
		b.WriteString("=")
		b.WriteString(req.Headers[k])
	}
	return fmt.Sprintf(common.KEY_FETCH_CACHE, b.String())
}
