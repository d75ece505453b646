package source

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/sitegraph/pkg/cache"
	"github.com/matzehuels/sitegraph/pkg/errors"
	"github.com/matzehuels/sitegraph/pkg/graph"
	"github.com/matzehuels/sitegraph/pkg/httputil"
	"github.com/matzehuels/sitegraph/pkg/observability"
)

const (
	httpTimeout = 10 * time.Second
	// maxBody bounds a snapshot response.
	maxBody = 64 << 20
)

// HTTPSource GETs a snapshot from the backend.
type HTTPSource struct {
	url     string
	client  *http.Client
	cache   cache.Cache
	keyer   cache.Keyer
	ttl     time.Duration
	headers map[string]string
	logger  *log.Logger

	attempts int
	delay    time.Duration
}

// HTTPOption configures an HTTPSource.
type HTTPOption func(*HTTPSource)

// WithHTTPClient replaces the default client (10s timeout).
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(s *HTTPSource) { s.client = c }
}

// WithCache caches raw responses in c for ttl. A zero ttl uses
// cache.TTLSnapshot.
func WithCache(c cache.Cache, keyer cache.Keyer, ttl time.Duration) HTTPOption {
	return func(s *HTTPSource) {
		s.cache = c
		if keyer != nil {
			s.keyer = keyer
		}
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithHeader adds a request header.
func WithHeader(key, value string) HTTPOption {
	return func(s *HTTPSource) { s.headers[key] = value }
}

// WithRetry sets the attempt count and initial backoff.
func WithRetry(attempts int, delay time.Duration) HTTPOption {
	return func(s *HTTPSource) { s.attempts, s.delay = attempts, delay }
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) HTTPOption {
	return func(s *HTTPSource) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewHTTPSource validates url and applies opts.
func NewHTTPSource(url string, opts ...HTTPOption) (*HTTPSource, error) {
	if err := errors.ValidateURL(url); err != nil {
		return nil, err
	}
	s := &HTTPSource{
		url:      url,
		client:   &http.Client{Timeout: httpTimeout},
		cache:    cache.NewNullCache(),
		keyer:    cache.NewDefaultKeyer(),
		ttl:      cache.TTLSnapshot,
		headers:  map[string]string{"Accept": "application/json"},
		logger:   log.Default(),
		attempts: 3,
		delay:    time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *HTTPSource) String() string { return s.url }

// Fetch returns the cached snapshot if fresh, otherwise fetches it.
func (s *HTTPSource) Fetch(ctx context.Context) (graph.Snapshot, error) {
	return s.fetch(ctx, false)
}

// Refresh bypasses the cache and stores the fresh response.
func (s *HTTPSource) Refresh(ctx context.Context) (graph.Snapshot, error) {
	return s.fetch(ctx, true)
}

func (s *HTTPSource) fetch(ctx context.Context, refresh bool) (graph.Snapshot, error) {
	key := s.keyer.SnapshotKey(s.url)
	if !refresh {
		if data, hit, err := s.cache.Get(ctx, key); err == nil && hit {
			if snap, err := graph.UnmarshalSnapshot(data); err == nil {
				s.logger.Debug("snapshot cache hit", "url", s.url)
				return snap, nil
			}
		}
	}

	var body []byte
	err := httputil.Retry(ctx, s.attempts, s.delay, func() error {
		var err error
		body, err = s.get(ctx)
		return err
	})
	if err != nil {
		var rerr *httputil.RetryableError
		if stderrors.As(err, &rerr) {
			err = rerr.Err
		}
		return graph.Snapshot{}, err
	}

	snap, err := graph.UnmarshalSnapshot(body)
	if err != nil {
		return graph.Snapshot{}, err
	}
	if err := s.cache.Set(ctx, key, body, s.ttl); err != nil {
		s.logger.Warn("snapshot cache write failed", "err", err)
	}
	return snap, nil
}

func (s *HTTPSource) get(ctx context.Context) ([]byte, error) {
	hooks := observability.HTTP()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "build request")
	}
	for k, v := range s.headers {
		req.Header.Set(k, v)
	}

	hooks.OnRequest(ctx, req.Method, req.URL.Host, req.URL.Path)
	start := time.Now()
	resp, err := s.client.Do(req)
	if err != nil {
		hooks.OnError(ctx, req.Method, req.URL.Host, req.URL.Path, err)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if isTimeout(err) {
			return nil, httputil.Retryable(errors.Wrap(errors.ErrCodeTimeout, err, "fetch %s", s.url))
		}
		return nil, httputil.Retryable(errors.Wrap(errors.ErrCodeNetwork, err, "fetch %s", s.url))
	}
	defer resp.Body.Close()
	hooks.OnResponse(ctx, req.Method, req.URL.Host, req.URL.Path, resp.StatusCode, time.Since(start))

	if err := checkStatus(resp, s.url); err != nil {
		return nil, err
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBody+1))
	if err != nil {
		return nil, httputil.Retryable(errors.Wrap(errors.ErrCodeNetwork, err, "read %s", s.url))
	}
	if len(data) > maxBody {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "snapshot from %s exceeds %d bytes", s.url, maxBody)
	}
	return data, nil
}

func checkStatus(resp *http.Response, url string) error {
	code := resp.StatusCode
	switch {
	case code == http.StatusOK:
		return nil
	case code == http.StatusNotFound:
		return errors.New(errors.ErrCodeNotFound, "%s: status %d", url, code)
	case code == http.StatusTooManyRequests:
		err := errors.New(errors.ErrCodeRateLimited, "%s: status %d", url, code)
		return httputil.RetryAfter(err, httputil.ParseRetryAfter(resp.Header.Get("Retry-After")))
	case code >= 500:
		return httputil.Retryable(errors.New(errors.ErrCodeNetwork, "%s: status %d", url, code))
	default:
		return errors.New(errors.ErrCodeNetwork, "%s: %s", url, fmt.Sprint(code, " ", http.StatusText(code)))
	}
}

func isTimeout(err error) bool {
	var ne net.Error
	return stderrors.As(err, &ne) && ne.Timeout()
}
