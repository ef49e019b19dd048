// package testing contains shared testing utilities
package testing

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/desertthunder/musicmeta/internal/models"
)

// CountingTrackRepository wraps a [models.TrackRepository] and counts store reads.
// When Err is set every call fails with it.
type CountingTrackRepository struct {
	models.TrackRepository
	Err   error
	finds atomic.Int64
	lists atomic.Int64
}

func NewCountingTrackRepository(inner models.TrackRepository) *CountingTrackRepository {
	return &CountingTrackRepository{TrackRepository: inner}
}

func (c *CountingTrackRepository) Find(id string) (models.Track, error) {
	c.finds.Add(1)
	if c.Err != nil {
		return models.Track{}, c.Err
	}
	return c.TrackRepository.Find(id)
}

func (c *CountingTrackRepository) List() ([]models.Track, error) {
	c.lists.Add(1)
	if c.Err != nil {
		return nil, c.Err
	}
	return c.TrackRepository.List()
}

func (c *CountingTrackRepository) Create(in models.TrackInput) (models.Track, error) {
	if c.Err != nil {
		return models.Track{}, c.Err
	}
	return c.TrackRepository.Create(in)
}

func (c *CountingTrackRepository) Update(id string, patch models.TrackPatch) (models.Track, error) {
	if c.Err != nil {
		return models.Track{}, c.Err
	}
	return c.TrackRepository.Update(id, patch)
}

func (c *CountingTrackRepository) Delete(id string) (bool, error) {
	if c.Err != nil {
		return false, c.Err
	}
	return c.TrackRepository.Delete(id)
}

func (c *CountingTrackRepository) Finds() int64 { return c.finds.Load() }
func (c *CountingTrackRepository) Lists() int64 { return c.lists.Load() }

// CatalogStub is an httptest server answering GET /musicas/{id} and GET /health
// with the catalog's response envelope.
type CatalogStub struct {
	*httptest.Server

	mu       sync.Mutex
	tracks   map[string]models.Track
	failing  map[string]int // id -> status code
	delays   map[string]time.Duration
	requests atomic.Int64
	healthy  bool
}

// NewCatalogStub starts a stub serving tracks. Close it with t.Cleanup or defer.
func NewCatalogStub(t *testing.T, tracks ...models.Track) *CatalogStub {
	t.Helper()

	s := &CatalogStub{
		tracks:  make(map[string]models.Track),
		failing: make(map[string]int),
		delays:  make(map[string]time.Duration),
		healthy: true,
	}
	for _, tr := range tracks {
		s.tracks[tr.ID] = tr
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(s.Close)
	return s
}

// Fail makes requests for id answer with status.
func (s *CatalogStub) Fail(id string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failing[id] = status
}

// Delay holds requests for id for d before answering.
func (s *CatalogStub) Delay(id string, d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delays[id] = d
}

// SetHealthy toggles the /health answer.
func (s *CatalogStub) SetHealthy(ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.healthy = ok
}

// Requests returns how many track lookups the stub has served.
func (s *CatalogStub) Requests() int64 {
	return s.requests.Load()
}

func (s *CatalogStub) serve(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.URL.Path == "/health" {
		s.mu.Lock()
		healthy := s.healthy
		s.mu.Unlock()
		if !healthy {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		writeEnvelope(w, http.StatusOK, true, "Serviço saudável", map[string]string{"status": "ok"})
		return
	}

	id, ok := strings.CutPrefix(r.URL.Path, "/musicas/")
	if !ok || r.Method != http.MethodGet {
		writeEnvelope(w, http.StatusNotFound, false, "Rota "+r.URL.Path+" não encontrada", nil)
		return
	}
	s.requests.Add(1)

	s.mu.Lock()
	track, found := s.tracks[id]
	status, failing := s.failing[id]
	delay := s.delays[id]
	s.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-r.Context().Done():
			return
		}
	}

	switch {
	case failing:
		writeEnvelope(w, status, false, "Erro interno", nil)
	case !found:
		writeEnvelope(w, http.StatusNotFound, false, "Música com ID "+id+" não encontrada", nil)
	default:
		writeEnvelope(w, http.StatusOK, true, "Música recuperada com sucesso", track)
	}
}

func writeEnvelope(w http.ResponseWriter, status int, ok bool, msg string, data any) {
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{
		"sucesso":   ok,
		"mensagem":  msg,
		"dados":     data,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
