package source

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/okian/ladder/internal/domain/model"
	"github.com/okian/ladder/pkg/metrics"
)

// Default HTTP source configuration constants.
const (
	defaultTimeout      = 15 * time.Second
	defaultMaxBodyBytes = 32 << 20
	sheetParam          = "sheet"
)

// HTTPSource reads the sheet's JSON endpoint. The payload is an object whose
// sheetKey member is the array of records.
type HTTPSource struct {
	url          string
	sheetKey     string
	client       *http.Client
	timeout      time.Duration
	maxBodyBytes int64
}

// NewHTTPSource builds a source for endpoint. The sheet key is appended as
// the "sheet" query parameter unless endpoint already carries one.
func NewHTTPSource(endpoint, sheetKey string, opts ...Option) (*HTTPSource, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse source url: %w", err)
	}
	q := u.Query()
	if q.Get(sheetParam) == "" && sheetKey != "" {
		q.Set(sheetParam, sheetKey)
		u.RawQuery = q.Encode()
	}

	s := &HTTPSource{
		url:          u.String(),
		sheetKey:     sheetKey,
		client:       http.DefaultClient,
		timeout:      defaultTimeout,
		maxBodyBytes: defaultMaxBodyBytes,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Kind implements Source.
func (s *HTTPSource) Kind() string { return KindHTTP }

// URL returns the resolved request URL.
func (s *HTTPSource) URL() string { return s.url }

// Fetch implements Source.
func (s *HTTPSource) Fetch(ctx context.Context) ([]model.RawRecord, error) {
	start := time.Now()
	records, err := s.fetch(ctx)
	ms := float64(time.Since(start).Milliseconds())

	if err != nil {
		metrics.RecordSourceFetch(KindHTTP, outcome(err), ms)
		metrics.RecordErrorByComponent("source", outcome(err))
		return nil, err
	}
	metrics.RecordSourceFetch(KindHTTP, "ok", ms)
	metrics.UpdateSourceRecords(KindHTTP, len(records))
	return records, nil
}

func (s *HTTPSource) fetch(ctx context.Context) ([]model.RawRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		return nil, fmt.Errorf("%w: %s", ErrUpstreamStatus, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, s.maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", ErrTransport, err)
	}
	return decodeSheet(body, s.sheetKey)
}

// decodeSheet extracts the record array stored under sheetKey. Numbers are
// kept as json.Number so large integers survive. Array elements that are
// not objects are skipped.
func decodeSheet(body []byte, sheetKey string) ([]model.RawRecord, error) {
	var top map[string]json.RawMessage
	if err := unmarshal(body, &top); err != nil {
		return nil, fmt.Errorf("%w: payload is not an object: %w", ErrShape, err)
	}
	raw, ok := top[sheetKey]
	if !ok {
		return nil, fmt.Errorf("%w: missing %q", ErrShape, sheetKey)
	}

	var items []json.RawMessage
	if err := unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("%w: %q is not an array", ErrShape, sheetKey)
	}

	out := make([]model.RawRecord, 0, len(items))
	for _, item := range items {
		var rec map[string]any
		if err := unmarshal(item, &rec); err != nil || rec == nil {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

func unmarshal(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec.Decode(v)
}

// outcome maps an error to a metric label.
func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrUpstreamStatus):
		return "status"
	case errors.Is(err, ErrShape):
		return "shape"
	case errors.Is(err, ErrTransport):
		return "transport"
	default:
		return "error"
	}
}
