package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Client-facing validation messages.
const (
	msgSongFieldsRequired  = "Both title and artist are required to add a song"
	msgSongFieldsTooLong   = "title and artist must be at most 255 characters"
	msgRegisterAllRequired = "username, password and email is required"
	msgInvalidJSON         = "request body must be a JSON object"
)

const (
	maxRequestBodyBytes    = 1 << 20
	validationTagRequired  = "required"
	validationTagMaxLength = "max"
)

var validate = validator.New(validator.WithRequiredStructEnabled()) //nolint:gochecknoglobals // validator caches struct metadata

type songRequest struct {
	Title  string `json:"title" validate:"required,max=255"`
	Artist string `json:"artist" validate:"required,max=255"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type registerRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
}

// decodeJSON reads a single JSON value from the request body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	const op = "api.decodeJSON"
	body := http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)
	dec := json.NewDecoder(body)
	if err := dec.Decode(dst); err != nil {
		return WrapKind(op, ErrBadRequest, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return NewKind(op, ErrBadRequest)
	}
	return nil
}

// normalize trims surrounding whitespace so blank fields count as missing.
func (s *songRequest) normalize() {
	s.Title = strings.TrimSpace(s.Title)
	s.Artist = strings.TrimSpace(s.Artist)
}

// validateSong returns an ErrValidation error carrying the client message.
func validateSong(req *songRequest) (string, error) {
	const op = "api.validateSong"
	req.normalize()
	err := validate.Struct(req)
	if err == nil {
		return "", nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "", Wrap(op, err)
	}
	msg := msgSongFieldsRequired
	for _, fe := range verrs {
		if fe.Tag() == validationTagMaxLength {
			msg = msgSongFieldsTooLong
		}
		if fe.Tag() == validationTagRequired {
			msg = msgSongFieldsRequired
			break
		}
	}
	return msg, WrapKind(op, ErrValidation, verrs)
}

// validateRegister enforces the lenient registration rule: a request is
// rejected here only when username, password and email are ALL empty.
// Partial requests pass through and the user store enforces its own
// constraints (a non-empty, unique username).
func validateRegister(req *registerRequest) error {
	const op = "api.validateRegister"
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	if req.Username == "" && req.Password == "" && req.Email == "" {
		return NewKind(op, ErrValidation)
	}
	return nil
}
