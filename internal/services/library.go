package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/desertthunder/musicmeta/internal/models"
	"github.com/desertthunder/musicmeta/internal/shared"
)

// DefaultLibraryURL is the library service's default address.
const DefaultLibraryURL = "http://localhost:3003"

// Envelope is the response body both services answer with.
type Envelope[T any] struct {
	Success   bool   `json:"sucesso"`
	Message   string `json:"mensagem"`
	Data      T      `json:"dados"`
	Error     string `json:"erro,omitempty"`
	Timestamp string `json:"timestamp"`
}

// DecodeEnvelope unwraps the dados field of resp.
//
// A 404 maps to notFound (when non-nil), any other failure to [shared.ErrAPIRequest] with the server's message.
func DecodeEnvelope[T any](resp *APIResponse, notFound error) (T, error) {
	var env Envelope[T]
	if err := json.Unmarshal(resp.Body, &env); err != nil {
		return env.Data, fmt.Errorf("%w: status %d: failed to decode response: %v", shared.ErrAPIRequest, resp.StatusCode, err)
	}

	if resp.StatusCode == http.StatusNotFound && notFound != nil {
		return env.Data, fmt.Errorf("%w: %s", notFound, env.Message)
	}
	if !resp.OK() || !env.Success {
		return env.Data, fmt.Errorf("%w: status %d: %s", shared.ErrAPIRequest, resp.StatusCode, env.Message)
	}
	return env.Data, nil
}

// LibraryClient reads playlists from the library service.
type LibraryClient struct {
	api *APIService
}

// NewLibraryClient creates a client for the library service at baseURL.
func NewLibraryClient(baseURL string, client *http.Client) *LibraryClient {
	if baseURL == "" {
		baseURL = DefaultLibraryURL
	}
	return &LibraryClient{api: NewAPIService(baseURL, client)}
}

// Playlist fetches a playlist with its resolved tracks.
func (l *LibraryClient) Playlist(ctx context.Context, id string) (*models.PlaylistDetails, error) {
	resp, err := l.api.Get(ctx, "/playlist/"+url.PathEscape(id))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrServiceUnavailable, err)
	}

	details, err := DecodeEnvelope[models.PlaylistDetails](resp, shared.ErrPlaylistNotFound)
	if err != nil {
		return nil, err
	}
	return &details, nil
}

// PlaylistsByOwner lists the playlists of ownerID without track details.
func (l *LibraryClient) PlaylistsByOwner(ctx context.Context, ownerID string) ([]models.Playlist, error) {
	resp, err := l.api.Get(ctx, "/playlist/usuario/"+url.PathEscape(ownerID))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrServiceUnavailable, err)
	}
	return DecodeEnvelope[[]models.Playlist](resp, nil)
}
