package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/okian/muziki/internal/adapters/repository"
	"github.com/okian/muziki/pkg/logger"
)

// SongHandler serves a single song addressed by id.
type SongHandler struct {
	songs SongService
	log   logger.Logger
}

// NewSongHandler creates a new song handler.
func NewSongHandler(songs SongService, log logger.Logger) *SongHandler {
	return &SongHandler{songs: songs, log: log}
}

// songID parses the {id} path value. A value that is not a positive
// integer cannot name a song and is reported as not found.
func songID(r *http.Request) (uint, string, bool) {
	raw := r.PathValue("id")
	id, err := strconv.ParseUint(raw, 10, strconv.IntSize)
	if err != nil || id == 0 {
		return 0, raw, false
	}
	return uint(id), raw, true
}

func writeSongNotFound(w http.ResponseWriter, raw string) {
	writeError(w, http.StatusNotFound, "not_found", fmt.Sprintf("Song with id: %s does not exist", raw))
}

// HandleGet handles GET /v1/songs/{id}/ requests.
func (h *SongHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	const op = "api.SongHandler.HandleGet"
	id, raw, ok := songID(r)
	if !ok {
		writeSongNotFound(w, raw)
		return
	}
	song, err := h.songs.GetSong(r.Context(), id)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		writeSongNotFound(w, raw)
	case err != nil:
		writeInternal(w, r, h.log, op, err)
	default:
		writeJSON(w, http.StatusOK, song)
	}
}

// HandleUpdate handles PUT /v1/songs/{id}/ requests. The body is validated
// before the song is looked up.
func (h *SongHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	const op = "api.SongHandler.HandleUpdate"
	var req songRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", msgInvalidJSON)
		return
	}
	if msg, err := validateSong(&req); err != nil {
		writeSongValidation(w, r, h.log, op, msg, err)
		return
	}
	id, raw, ok := songID(r)
	if !ok {
		writeSongNotFound(w, raw)
		return
	}
	song, err := h.songs.UpdateSong(r.Context(), id, req.Title, req.Artist)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		writeSongNotFound(w, raw)
	case err != nil:
		writeInternal(w, r, h.log, op, err)
	default:
		writeJSON(w, http.StatusOK, song)
	}
}

// HandleDelete handles DELETE /v1/songs/{id}/ requests.
func (h *SongHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	const op = "api.SongHandler.HandleDelete"
	id, raw, ok := songID(r)
	if !ok {
		writeSongNotFound(w, raw)
		return
	}
	err := h.songs.DeleteSong(r.Context(), id)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		writeSongNotFound(w, raw)
	case err != nil:
		writeInternal(w, r, h.log, op, err)
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}
