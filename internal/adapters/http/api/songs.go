package api

import (
	"errors"
	"net/http"

	"github.com/okian/muziki/internal/domain/model"
	"github.com/okian/muziki/pkg/logger"
)

// SongsHandler serves the song collection.
type SongsHandler struct {
	songs SongService
	log   logger.Logger
}

// NewSongsHandler creates a new songs handler.
func NewSongsHandler(songs SongService, log logger.Logger) *SongsHandler {
	return &SongsHandler{songs: songs, log: log}
}

// HandleList handles GET /v1/songs/ requests.
func (h *SongsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	const op = "api.SongsHandler.HandleList"
	songs, err := h.songs.ListSongs(r.Context())
	if err != nil {
		writeInternal(w, r, h.log, op, err)
		return
	}
	if songs == nil {
		songs = []model.Song{}
	}
	writeJSON(w, http.StatusOK, songs)
}

// HandleCreate handles POST /v1/songs/ requests.
func (h *SongsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	const op = "api.SongsHandler.HandleCreate"
	var req songRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", msgInvalidJSON)
		return
	}
	if msg, err := validateSong(&req); err != nil {
		writeSongValidation(w, r, h.log, op, msg, err)
		return
	}
	song, err := h.songs.CreateSong(r.Context(), req.Title, req.Artist)
	if err != nil {
		writeInternal(w, r, h.log, op, err)
		return
	}
	writeJSON(w, http.StatusCreated, song)
}

func writeSongValidation(w http.ResponseWriter, r *http.Request, log logger.Logger, op, msg string, err error) {
	if !errors.Is(err, ErrValidation) {
		writeInternal(w, r, log, op, err)
		return
	}
	writeError(w, http.StatusBadRequest, "validation_error", msg)
}
