package arxiv

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/diogo-cruz/literature-review/internal/logging"
)

const (
	defaultPDFBase  = "https://arxiv.org/pdf"
	defaultAPIBase  = "https://export.arxiv.org/api/query"
	defaultInterval = 3 * time.Second
	defaultPageSize = 100
	userAgent       = "litreview (+https://github.com/diogo-cruz/literature-review)"
)

var (
	// ErrNotRetrievable is wrapped by every Download failure.
	ErrNotRetrievable = errors.New("paper not retrievable")
	// ErrNotFound is returned by Metadata when the API knows no such paper.
	ErrNotFound = errors.New("paper not found")
)

// Client talks to arXiv.
type Client struct {
	http      *http.Client
	papersDir string
	pdfBase   string
	apiBase   string
	pageSize  int
	limiter   *rate.Limiter
	breaker   *gobreaker.CircuitBreaker
	logger    *slog.Logger
	sleeper   func(time.Duration)
	now       func() time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client used for every request.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithBaseURLs points the client at different PDF and API endpoints.
func WithBaseURLs(pdfBase, apiBase string) Option {
	return func(c *Client) {
		c.pdfBase = pdfBase
		c.apiBase = apiBase
	}
}

// WithInterval sets the minimum spacing between requests. Zero disables pacing.
func WithInterval(d time.Duration) Option {
	return func(c *Client) {
		if d <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		c.limiter = rate.NewLimiter(rate.Every(d), 1)
	}
}

// WithPageSize sets how many results each search request asks for.
func WithPageSize(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.pageSize = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithSleeper replaces the wait between collection chunks (useful for tests).
func WithSleeper(sleeper func(time.Duration)) Option {
	return func(c *Client) { c.sleeper = sleeper }
}

// WithClock sets the time source used to compute collection windows.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

// New creates a Client that stores PDFs under papersDir.
func New(papersDir string, opts ...Option) *Client {
	c := &Client{
		http:      &http.Client{Timeout: 2 * time.Minute},
		papersDir: papersDir,
		pdfBase:   defaultPDFBase,
		apiBase:   defaultAPIBase,
		pageSize:  defaultPageSize,
		limiter:   rate.NewLimiter(rate.Every(defaultInterval), 1),
		logger:    logging.NewNop(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "arxiv",
		Timeout: time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.logger.Warn("circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
	})
	return c
}

// PapersDir returns where downloaded PDFs are stored.
func (c *Client) PapersDir() string {
	return c.papersDir
}

// Path returns where the PDF for id is stored.
func (c *Client) Path(id string) string {
	return filepath.Join(c.papersDir, id+".pdf")
}

// Download returns the local PDF for link, fetching it only when absent.
func (c *Client) Download(ctx context.Context, link string) (string, error) {
	id, err := ParseID(link)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrNotRetrievable, err)
	}
	path := c.Path(id)
	if _, err := os.Stat(path); err == nil {
		c.logger.Debug("paper already downloaded", "id", id, "path", path)
		return path, nil
	}
	if err := os.MkdirAll(c.papersDir, 0o755); err != nil {
		return "", fmt.Errorf("%w: creating papers directory: %w", ErrNotRetrievable, err)
	}

	url := c.pdfBase + "/" + id
	_, err = c.breaker.Execute(func() (any, error) {
		return nil, c.fetchTo(ctx, url, path)
	})
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrNotRetrievable, id, err)
	}
	c.logger.Info("downloaded paper", "id", id, "path", path)
	return path, nil
}

func (c *Client) fetchTo(ctx context.Context, url, path string) error {
	resp, err := c.get(ctx, url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	tmp, err := os.CreateTemp(filepath.Dir(path), ".download-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		return fmt.Errorf("reading %s: %w", url, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	return os.Rename(tmpName, path)
}

// get performs a paced GET and returns the response when the status is 200.
func (c *Client) get(ctx context.Context, url string) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sending request: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		resp.Body.Close()
		return nil, &StatusError{URL: url, StatusCode: resp.StatusCode, Body: string(body)}
	}
	return resp, nil
}

func (c *Client) sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	if c.sleeper != nil {
		c.sleeper(d)
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// StatusError reports a non-200 response from arXiv.
type StatusError struct {
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: status %d", e.URL, e.StatusCode)
}
