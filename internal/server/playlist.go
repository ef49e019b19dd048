package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/musicmeta/internal/models"
)

const (
	routeCreatePlaylist = "POST /playlist/criar"
	routeListByOwner    = "GET /playlist/usuario/{usuarioId}"
	routeListByOwnerAlt = "GET /playlist/list/{usuarioId}"
	routeGetPlaylist    = "GET /playlist/{playlistId}"
	routeAddTrack       = "POST /playlist/add"
	routeRemoveTrack    = "POST /playlist/remover"
	routeUpdatePlaylist = "PUT /playlist/{playlistId}"
	routeDeletePlaylist = "DELETE /playlist/{playlistId}"
)

// PlaylistLibrary is the library behavior the HTTP layer depends on.
type PlaylistLibrary interface {
	Create(ownerID, name, description string) (models.Playlist, error)
	ListByOwner(ownerID string) ([]models.Playlist, error)
	Get(ctx context.Context, id string) (models.PlaylistDetails, error)
	AddTrack(playlistID, trackID string) (models.Playlist, error)
	RemoveTrack(playlistID, trackID string) (models.Playlist, error)
	Update(id string, patch models.PlaylistPatch) (models.Playlist, error)
	Delete(id string) error
}

type createPlaylistRequest struct {
	UserID      string `json:"usuarioId"`
	Name        string `json:"nome"`
	Description string `json:"descricao"`
}

type playlistTrackRequest struct {
	PlaylistID string `json:"playlistId"`
	TrackID    string `json:"musicaId"`
}

// PlaylistHandler serves the playlist endpoints.
type PlaylistHandler struct {
	library PlaylistLibrary
	logger  *log.Logger
}

func NewPlaylistHandler(library PlaylistLibrary, logger *log.Logger) *PlaylistHandler {
	return &PlaylistHandler{library: library, logger: logger}
}

func (h *PlaylistHandler) Routes() []string {
	return []string{
		routeCreatePlaylist,
		routeListByOwner,
		routeListByOwnerAlt,
		routeGetPlaylist,
		routeAddTrack,
		routeRemoveTrack,
		routeUpdatePlaylist,
		routeDeletePlaylist,
	}
}

func (h *PlaylistHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Pattern {
	case routeCreatePlaylist:
		h.create(w, r)
	case routeListByOwner, routeListByOwnerAlt:
		h.listByOwner(w, r)
	case routeGetPlaylist:
		h.get(w, r)
	case routeAddTrack:
		h.changeTracks(w, r, h.library.AddTrack, "Música adicionada à playlist com sucesso")
	case routeRemoveTrack:
		h.changeTracks(w, r, h.library.RemoveTrack, "Música removida da playlist com sucesso")
	case routeUpdatePlaylist:
		h.update(w, r)
	case routeDeletePlaylist:
		h.delete(w, r)
	default:
		NotFound(w, r)
	}
}

func (h *PlaylistHandler) create(w http.ResponseWriter, r *http.Request) {
	var req createPlaylistRequest
	if err := decodeBody(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "UsuarioId e nome são obrigatórios", err)
		return
	}

	p, err := h.library.Create(req.UserID, req.Name, req.Description)
	if err != nil {
		h.fail(w, err, "UsuarioId e nome são obrigatórios", "")
		return
	}
	respond(w, http.StatusCreated, "Playlist criada com sucesso", p)
}

func (h *PlaylistHandler) listByOwner(w http.ResponseWriter, r *http.Request) {
	playlists, err := h.library.ListByOwner(r.PathValue("usuarioId"))
	if err != nil {
		h.fail(w, err, "UsuarioId é obrigatório", "")
		return
	}
	respond(w, http.StatusOK, "Playlists recuperadas com sucesso", playlists)
}

func (h *PlaylistHandler) get(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("playlistId")
	details, err := h.library.Get(r.Context(), id)
	if err != nil {
		h.fail(w, err, "PlaylistId é obrigatório", id)
		return
	}
	respond(w, http.StatusOK, "Playlist recuperada com sucesso", details)
}

func (h *PlaylistHandler) changeTracks(w http.ResponseWriter, r *http.Request, op func(playlistID, trackID string) (models.Playlist, error), message string) {
	var req playlistTrackRequest
	if err := decodeBody(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "PlaylistId e MusicaId são obrigatórios", err)
		return
	}

	p, err := op(req.PlaylistID, req.TrackID)
	if err != nil {
		h.fail(w, err, "PlaylistId e MusicaId são obrigatórios", req.PlaylistID)
		return
	}
	respond(w, http.StatusOK, message, p)
}

func (h *PlaylistHandler) update(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("playlistId")

	var patch models.PlaylistPatch
	if err := decodeBody(w, r, &patch); err != nil {
		respondError(w, http.StatusBadRequest, "Dados inválidos para atualização", err)
		return
	}

	p, err := h.library.Update(id, patch)
	if err != nil {
		h.fail(w, err, "Dados inválidos para atualização", id)
		return
	}
	respond(w, http.StatusOK, "Playlist atualizada com sucesso", p)
}

func (h *PlaylistHandler) delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("playlistId")
	if err := h.library.Delete(id); err != nil {
		h.fail(w, err, "PlaylistId é obrigatório", id)
		return
	}
	respond(w, http.StatusOK, "Playlist deletada com sucesso", nil)
}

func (h *PlaylistHandler) fail(w http.ResponseWriter, err error, badRequest, id string) {
	switch status := statusFor(err); status {
	case http.StatusNotFound:
		respondError(w, status, fmt.Sprintf("Playlist com ID %s não encontrada", id), nil)
	case http.StatusBadRequest:
		respondError(w, status, badRequest, err)
	default:
		h.logger.Error("playlist request failed", "error", err)
		respondError(w, status, "Erro interno do servidor", err)
	}
}
