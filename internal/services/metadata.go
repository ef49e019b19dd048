package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/musicmeta/internal/models"
	"github.com/desertthunder/musicmeta/internal/shared"
)

const (
	DefaultFetchTimeout  = 5 * time.Second
	DefaultHealthTimeout = 3 * time.Second
)

// MetadataClient fetches track details from the catalog service and never fails loudly.
type MetadataClient struct {
	baseURL       string
	httpClient    *http.Client
	logger        *log.Logger
	fetchTimeout  time.Duration
	healthTimeout time.Duration
}

// MetadataOption configures a [MetadataClient].
type MetadataOption func(*MetadataClient)

// WithHTTPClient replaces http.DefaultClient.
func WithHTTPClient(c *http.Client) MetadataOption {
	return func(m *MetadataClient) {
		if c != nil {
			m.httpClient = c
		}
	}
}

// WithTimeouts overrides the per-item fetch timeout and the health timeout. Non-positive values are ignored.
func WithTimeouts(fetch, health time.Duration) MetadataOption {
	return func(m *MetadataClient) {
		if fetch > 0 {
			m.fetchTimeout = fetch
		}
		if health > 0 {
			m.healthTimeout = health
		}
	}
}

// NewMetadataClient creates a client for the catalog service at baseURL.
func NewMetadataClient(baseURL string, logger *log.Logger, opts ...MetadataOption) *MetadataClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	m := &MetadataClient{
		baseURL:       strings.TrimRight(baseURL, "/"),
		httpClient:    http.DefaultClient,
		logger:        logger,
		fetchTimeout:  DefaultFetchTimeout,
		healthTimeout: DefaultHealthTimeout,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// BaseURL returns the catalog address this client talks to.
func (m *MetadataClient) BaseURL() string {
	return m.baseURL
}

// FetchOne retrieves one track. Any failure is logged and reported as false.
func (m *MetadataClient) FetchOne(ctx context.Context, id string) (models.Track, bool) {
	track, err := m.fetch(ctx, id)
	if err != nil {
		m.logger.Warn("failed to fetch track", "id", id, "error", err)
		return models.Track{}, false
	}
	return track, true
}

// FetchMany retrieves every id concurrently and waits for all of them.
// The result has one entry per id, in input order, with placeholders for failures.
func (m *MetadataClient) FetchMany(ctx context.Context, ids []string) []models.Track {
	tracks := make([]models.Track, len(ids))

	var wg sync.WaitGroup
	for i, id := range ids {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			if t, ok := m.FetchOne(ctx, id); ok {
				tracks[i] = t
				return
			}
			tracks[i] = models.NewPlaceholderTrack(id)
		}(i, id)
	}
	wg.Wait()

	return tracks
}

// HealthCheck reports whether the catalog answers GET /health with a 2xx status.
func (m *MetadataClient) HealthCheck(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, m.healthTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.baseURL+"/health", nil)
	if err != nil {
		m.logger.Warn("catalog health check failed", "error", err)
		return false
	}

	resp, err := m.httpClient.Do(req)
	if err != nil {
		m.logger.Warn("catalog offline", "url", m.baseURL, "error", err)
		return false
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		m.logger.Warn("catalog unhealthy", "url", m.baseURL, "status", resp.StatusCode)
		return false
	}
	return true
}

// trackEnvelope is the catalog's response envelope for a single track.
type trackEnvelope struct {
	Success bool            `json:"sucesso"`
	Message string          `json:"mensagem"`
	Data    json.RawMessage `json:"dados"`
}

func (m *MetadataClient) fetch(ctx context.Context, id string) (models.Track, error) {
	ctx, cancel := context.WithTimeout(ctx, m.fetchTimeout)
	defer cancel()

	endpoint := m.baseURL + "/musicas/" + url.PathEscape(id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return models.Track{}, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	resp, err := m.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return models.Track{}, fmt.Errorf("%w: %v", shared.ErrTimeout, err)
		}
		return models.Track{}, fmt.Errorf("%w: %v", shared.ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return models.Track{}, fmt.Errorf("%w: failed to read response: %v", shared.ErrAPIRequest, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return models.Track{}, fmt.Errorf("%w: status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	var env trackEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return models.Track{}, fmt.Errorf("%w: failed to decode response: %v", shared.ErrAPIRequest, err)
	}
	if !env.Success {
		return models.Track{}, fmt.Errorf("%w: %s", shared.ErrAPIRequest, env.Message)
	}

	data := bytes.TrimSpace(env.Data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return models.Track{}, fmt.Errorf("%w: empty track payload", shared.ErrAPIRequest)
	}

	var track models.Track
	if err := json.Unmarshal(data, &track); err != nil {
		return models.Track{}, fmt.Errorf("%w: failed to decode track: %v", shared.ErrAPIRequest, err)
	}
	return track, nil
}
