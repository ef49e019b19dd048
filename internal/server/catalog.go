package server

import (
	"fmt"
	"net/http"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/musicmeta/internal/cache"
	"github.com/desertthunder/musicmeta/internal/models"
)

const (
	routeListTracks  = "GET /musicas"
	routeGetTrack    = "GET /musicas/{id}"
	routeCreateTrack = "POST /musicas"
	routeUpdateTrack = "PUT /musicas/{id}"
	routeDeleteTrack = "DELETE /musicas/{id}"
	routeCacheStats  = "GET /cache/stats"
	routeCacheClear  = "POST /cache/limpar"
)

// TrackCatalog is the catalog behavior the HTTP layer depends on.
type TrackCatalog interface {
	GetByID(id string) (models.Track, error)
	GetAll() ([]models.Track, error)
	Create(in models.TrackInput) (models.Track, error)
	Update(id string, patch models.TrackPatch) (models.Track, error)
	Delete(id string) (bool, error)
	CacheStats() cache.Stats
	ClearCache()
}

// CatalogHandler serves the track and cache endpoints.
type CatalogHandler struct {
	catalog TrackCatalog
	logger  *log.Logger
}

func NewCatalogHandler(catalog TrackCatalog, logger *log.Logger) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, logger: logger}
}

func (h *CatalogHandler) Routes() []string {
	return []string{
		routeListTracks,
		routeGetTrack,
		routeCreateTrack,
		routeUpdateTrack,
		routeDeleteTrack,
		routeCacheStats,
		routeCacheClear,
	}
}

func (h *CatalogHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Pattern {
	case routeListTracks:
		h.list(w, r)
	case routeGetTrack:
		h.get(w, r)
	case routeCreateTrack:
		h.create(w, r)
	case routeUpdateTrack:
		h.update(w, r)
	case routeDeleteTrack:
		h.delete(w, r)
	case routeCacheStats:
		respond(w, http.StatusOK, "Estatísticas do cache", h.catalog.CacheStats())
	case routeCacheClear:
		h.catalog.ClearCache()
		respond(w, http.StatusOK, "Cache limpo com sucesso", nil)
	default:
		NotFound(w, r)
	}
}

func (h *CatalogHandler) list(w http.ResponseWriter, _ *http.Request) {
	tracks, err := h.catalog.GetAll()
	if err != nil {
		h.fail(w, err, "Erro ao recuperar músicas", "")
		return
	}
	respond(w, http.StatusOK, "Músicas recuperadas com sucesso", tracks)
}

func (h *CatalogHandler) get(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	track, err := h.catalog.GetByID(id)
	if err != nil {
		h.fail(w, err, "Erro ao recuperar música", id)
		return
	}
	respond(w, http.StatusOK, "Música recuperada com sucesso", track)
}

func (h *CatalogHandler) create(w http.ResponseWriter, r *http.Request) {
	var in models.TrackInput
	if err := decodeBody(w, r, &in); err != nil {
		respondError(w, http.StatusBadRequest, "Campos obrigatórios: titulo, artista, duracao", err)
		return
	}

	track, err := h.catalog.Create(in)
	if err != nil {
		h.fail(w, err, "Campos obrigatórios: titulo, artista, duracao", "")
		return
	}
	respond(w, http.StatusCreated, "Música criada com sucesso", track)
}

func (h *CatalogHandler) update(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var patch models.TrackPatch
	if err := decodeBody(w, r, &patch); err != nil {
		respondError(w, http.StatusBadRequest, "Dados inválidos para atualização", err)
		return
	}

	track, err := h.catalog.Update(id, patch)
	if err != nil {
		h.fail(w, err, "Dados inválidos para atualização", id)
		return
	}
	respond(w, http.StatusOK, "Música atualizada com sucesso", track)
}

func (h *CatalogHandler) delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	removed, err := h.catalog.Delete(id)
	if err != nil {
		h.fail(w, err, "Erro ao deletar música", id)
		return
	}
	if !removed {
		respondError(w, http.StatusNotFound, notFoundTrack(id), nil)
		return
	}
	respond(w, http.StatusOK, "Música deletada com sucesso", nil)
}

// fail writes the envelope for err. badRequest is the message used for validation errors.
func (h *CatalogHandler) fail(w http.ResponseWriter, err error, badRequest, id string) {
	switch status := statusFor(err); status {
	case http.StatusNotFound:
		respondError(w, status, notFoundTrack(id), nil)
	case http.StatusBadRequest:
		respondError(w, status, badRequest, err)
	default:
		h.logger.Error("catalog request failed", "error", err)
		respondError(w, status, "Erro interno do servidor", err)
	}
}

func notFoundTrack(id string) string {
	return fmt.Sprintf("Música com ID %s não encontrada", id)
}
