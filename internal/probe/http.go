package probe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/ladder/internal/domain/types"
	"github.com/okian/ladder/pkg/logger"
)

// ErrStatus is returned when the service answers with an unexpected status.
var ErrStatus = errors.New("unexpected status")

// HTTPClient wraps http.Client with the service base URL.
type HTTPClient struct {
	client  *http.Client
	baseURL string
}

// newHTTPClient creates a new HTTP client with timeout.
func newHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
	}
}

// do sends a request and decodes a JSON body into out when the status is want.
func (c *HTTPClient) do(ctx context.Context, method, path string, want int, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, http.NoBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if resp.StatusCode != want {
		return fmt.Errorf("%s %s: %w %d: %s", method, path, ErrStatus, resp.StatusCode, body)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// Health fetches /healthz.
func (c *HTTPClient) Health(ctx context.Context) (types.Health, error) {
	var h types.Health
	err := c.do(ctx, http.MethodGet, "/healthz", StatusOK, &h)
	return h, err
}

// Reload posts /reload and returns the queued generation.
func (c *HTTPClient) Reload(ctx context.Context) (uint64, error) {
	var resp struct {
		Generation uint64 `json:"generation"`
	}
	err := c.do(ctx, http.MethodPost, "/reload?reason=probe", StatusAccepted, &resp)
	return resp.Generation, err
}

// Tabs fetches /tabs.
func (c *HTTPClient) Tabs(ctx context.Context) ([]types.Tab, error) {
	var tabs []types.Tab
	err := c.do(ctx, http.MethodGet, "/tabs", StatusOK, &tabs)
	return tabs, err
}

// SubGroups fetches /subgroups for tab.
func (c *HTTPClient) SubGroups(ctx context.Context, tab int) ([]string, error) {
	var jobs []string
	err := c.do(ctx, http.MethodGet, "/subgroups?tab="+strconv.Itoa(tab), StatusOK, &jobs)
	return jobs, err
}

// View fetches /view with the encoded query.
func (c *HTTPClient) View(ctx context.Context, query string) (types.View, error) {
	var v types.View
	path := "/view"
	if query != "" {
		path += "?" + query
	}
	err := c.do(ctx, http.MethodGet, path, StatusOK, &v)
	return v, err
}

// viewQuery encodes a selection as /view query parameters.
func viewQuery(tab int, job, sort string) string {
	q := url.Values{}
	if tab != 0 {
		q.Set("tab", strconv.Itoa(tab))
	}
	if job != "" {
		q.Set("job", job)
	}
	if sort != "" && sort != "none" {
		q.Set("sort", sort)
	}
	return q.Encode()
}

// fetchViews retrieves the requested views concurrently using a worker
// pool. Failed fetches are logged and counted; the rest keep their order.
func fetchViews(ctx context.Context, config *Config, client *HTTPClient, requests []Fetched, stats *Stats) []Fetched {
	logger.Get().Info(ctx, "fetching views",
		logger.Int("views", len(requests)),
		logger.Int("workers", config.Workers))

	results := make([]Fetched, len(requests))
	ok := make([]bool, len(requests))
	var failed int64

	indexChan := make(chan int, config.Workers*WorkerChannelMultiplier)
	var wg sync.WaitGroup

	for i := 0; i < config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for index := range indexChan {
				if ctx.Err() != nil {
					return
				}
				req := requests[index]
				view, err := client.View(ctx, req.Query)
				if err != nil {
					atomic.AddInt64(&failed, 1)
					logger.Get().Warn(ctx, "view fetch failed",
						logger.String("view", req.Name),
						logger.Error(err))
					continue
				}
				req.View = view
				results[index] = req
				ok[index] = true
				logger.Get().Debug(ctx, "view fetched",
					logger.String("view", req.Name),
					logger.Int("rows", len(view.Rows)))
			}
		}()
	}

	go func() {
		defer close(indexChan)
		for i := range requests {
			select {
			case <-ctx.Done():
				return
			case indexChan <- i:
			}
		}
	}()

	wg.Wait()

	fetched := make([]Fetched, 0, len(requests))
	for i, r := range results {
		if ok[i] {
			fetched = append(fetched, r)
			stats.RowsSeen += len(r.View.Rows)
		}
	}
	stats.ViewsFetched = len(fetched)
	stats.ViewsFailed = int(atomic.LoadInt64(&failed))
	return fetched
}
