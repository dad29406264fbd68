package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/okian/muziki/internal/adapters/http/api"
	"github.com/okian/muziki/internal/adapters/repository"
	"github.com/okian/muziki/internal/auth"
	"github.com/okian/muziki/internal/domain/model"
	"github.com/okian/muziki/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(logger.WithOutput(io.Discard)); err != nil {
		panic(err)
	}
}

const validToken = "valid-token"

// mockDependencies is an in-memory catalog and user table.
type mockDependencies struct {
	mu     sync.Mutex
	songs  map[uint]model.Song
	nextID uint
	users  map[string]model.User
	pass   map[string]string

	listErr error
}

func newMockDependencies() *mockDependencies {
	return &mockDependencies{
		songs:  make(map[uint]model.Song),
		nextID: 1,
		users:  map[string]model.User{"validuser": {ID: 1, Username: "validuser", Email: "valid@example.com"}},
		pass:   map[string]string{"validuser": "validpass"},
	}
}

func (m *mockDependencies) ListSongs(ctx context.Context) ([]model.Song, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []model.Song
	for _, s := range m.songs {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *mockDependencies) GetSong(ctx context.Context, id uint) (model.Song, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.songs[id]
	if !ok {
		return model.Song{}, repository.ErrNotFound
	}
	return s, nil
}

func (m *mockDependencies) CreateSong(ctx context.Context, title, artist string) (model.Song, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := model.Song{ID: m.nextID, Title: title, Artist: artist}
	m.songs[s.ID] = s
	m.nextID++
	return s, nil
}

func (m *mockDependencies) UpdateSong(ctx context.Context, id uint, title, artist string) (model.Song, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.songs[id]; !ok {
		return model.Song{}, repository.ErrNotFound
	}
	s := model.Song{ID: id, Title: title, Artist: artist}
	m.songs[id] = s
	return s, nil
}

func (m *mockDependencies) DeleteSong(ctx context.Context, id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.songs[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.songs, id)
	return nil
}

func (m *mockDependencies) Login(ctx context.Context, username, password string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.pass[username]; !ok || p != password {
		return "", auth.ErrInvalidCredentials
	}
	return validToken, nil
}

func (m *mockDependencies) Register(ctx context.Context, username, password, email string) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if username == "" {
		return model.User{}, repository.ErrEmptyUsername
	}
	if _, ok := m.users[username]; ok {
		return model.User{}, repository.ErrDuplicateUsername
	}
	u := model.User{ID: uint(len(m.users) + 1), Username: username, Email: email, PasswordHash: "hashed"}
	m.users[username] = u
	m.pass[username] = password
	return u, nil
}

func (m *mockDependencies) Authenticate(ctx context.Context, token string) (*auth.Claims, error) {
	if token != validToken {
		return nil, auth.ErrInvalidToken
	}
	return &auth.Claims{UserID: 1, Username: "validuser"}, nil
}

type mockStatsProvider struct {
	stats map[string]interface{}
}

func (m *mockStatsProvider) GetStats(ctx context.Context) map[string]interface{} {
	return m.stats
}

func newTestMux(deps *mockDependencies) *http.ServeMux {
	server := api.NewServer(deps, &mockStatsProvider{stats: map[string]interface{}{"started": true}})
	mux := http.NewServeMux()
	server.Register(context.Background(), mux)
	return mux
}

func do(mux *http.ServeMux, method, path, body string, authorized bool) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if authorized {
		req.Header.Set("Authorization", "Bearer "+validToken)
	}
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func decodeBody(w *httptest.ResponseRecorder) map[string]interface{} {
	var body map[string]interface{}
	So(json.Unmarshal(w.Body.Bytes(), &body), ShouldBeNil)
	return body
}

func TestServer_Register(t *testing.T) {
	Convey("Given a registered API server", t, func() {
		mux := newTestMux(newMockDependencies())

		Convey("The health endpoint serves metrics", func() {
			w := do(mux, http.MethodGet, "/healthz", "", false)
			So(w.Code, ShouldEqual, http.StatusOK)
		})

		Convey("The stats endpoint serves JSON", func() {
			w := do(mux, http.MethodGet, "/stats", "", false)
			So(w.Code, ShouldEqual, http.StatusOK)
			So(decodeBody(w)["started"], ShouldEqual, true)
		})

		Convey("Every response carries a request id", func() {
			w := do(mux, http.MethodGet, "/v1/songs/1/", "", false)
			So(w.Header().Get(api.RequestIDHeader), ShouldNotBeEmpty)
		})

		Convey("A caller supplied request id is echoed", func() {
			req := httptest.NewRequest(http.MethodGet, "/v1/songs/1/", nil)
			req.Header.Set(api.RequestIDHeader, "abc-123")
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)
			So(w.Header().Get(api.RequestIDHeader), ShouldEqual, "abc-123")
		})

		Convey("A wrong method on a known path is rejected", func() {
			w := do(mux, http.MethodPatch, "/v1/songs/1/", `{}`, false)
			So(w.Code, ShouldEqual, http.StatusMethodNotAllowed)
		})
	})
}

func TestSongCollection(t *testing.T) {
	Convey("Given the songs collection", t, func() {
		deps := newMockDependencies()
		mux := newTestMux(deps)

		Convey("Listing without credentials is unauthorized", func() {
			w := do(mux, http.MethodGet, "/v1/songs/", "", false)
			So(w.Code, ShouldEqual, http.StatusUnauthorized)
			body := decodeBody(w)
			So(body["code"], ShouldEqual, "unauthorized")
			So(body["message"], ShouldEqual, "authentication credentials were not provided")
		})

		Convey("Listing with an invalid token is unauthorized", func() {
			req := httptest.NewRequest(http.MethodGet, "/v1/songs/", nil)
			req.Header.Set("Authorization", "Bearer nope")
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)
			So(w.Code, ShouldEqual, http.StatusUnauthorized)
		})

		Convey("An unknown authorization scheme is unauthorized", func() {
			req := httptest.NewRequest(http.MethodGet, "/v1/songs/", nil)
			req.Header.Set("Authorization", "Basic "+validToken)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)
			So(w.Code, ShouldEqual, http.StatusUnauthorized)
		})

		Convey("The JWT scheme is accepted", func() {
			req := httptest.NewRequest(http.MethodGet, "/v1/songs/", nil)
			req.Header.Set("Authorization", "JWT "+validToken)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)
			So(w.Code, ShouldEqual, http.StatusOK)
		})

		Convey("An empty catalog lists as an empty array", func() {
			w := do(mux, http.MethodGet, "/v1/songs/", "", true)
			So(w.Code, ShouldEqual, http.StatusOK)
			So(strings.TrimSpace(w.Body.String()), ShouldEqual, "[]")
		})

		Convey("Creating a song returns 201 and the new record", func() {
			w := do(mux, http.MethodPost, "/v1/songs/", `{"title":"Kwangwaru","artist":"Gold Platnumz"}`, true)
			So(w.Code, ShouldEqual, http.StatusCreated)
			body := decodeBody(w)
			So(body["id"], ShouldEqual, float64(1))
			So(body["title"], ShouldEqual, "Kwangwaru")
			So(body["artist"], ShouldEqual, "Gold Platnumz")

			Convey("And the song is retrievable", func() {
				w := do(mux, http.MethodGet, "/v1/songs/1/", "", false)
				So(w.Code, ShouldEqual, http.StatusOK)
				So(decodeBody(w)["title"], ShouldEqual, "Kwangwaru")
			})

			Convey("And the list contains it", func() {
				w := do(mux, http.MethodGet, "/v1/songs", "", true)
				So(w.Code, ShouldEqual, http.StatusOK)
				var songs []model.Song
				So(json.Unmarshal(w.Body.Bytes(), &songs), ShouldBeNil)
				So(songs, ShouldHaveLength, 1)
				So(songs[0].String(), ShouldEqual, "Kwangwaru - Gold Platnumz")
			})
		})

		Convey("Creating without an artist is a validation error", func() {
			w := do(mux, http.MethodPost, "/v1/songs/", `{"title":"Kwangwaru"}`, true)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(decodeBody(w)["message"], ShouldEqual, "Both title and artist are required to add a song")
			So(deps.songs, ShouldBeEmpty)
		})

		Convey("A whitespace-only title counts as missing", func() {
			w := do(mux, http.MethodPost, "/v1/songs/", `{"title":"   ","artist":"X"}`, true)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("An over-long title is rejected", func() {
			long := strings.Repeat("a", 256)
			w := do(mux, http.MethodPost, "/v1/songs/", `{"title":"`+long+`","artist":"X"}`, true)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(decodeBody(w)["message"], ShouldEqual, "title and artist must be at most 255 characters")
		})

		Convey("Malformed JSON is a bad request", func() {
			w := do(mux, http.MethodPost, "/v1/songs/", `{"title":`, true)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(decodeBody(w)["code"], ShouldEqual, "bad_request")
		})

		Convey("A store failure is a generic internal error", func() {
			deps.listErr = errors.New("disk on fire")
			w := do(mux, http.MethodGet, "/v1/songs/", "", true)
			So(w.Code, ShouldEqual, http.StatusInternalServerError)
			body := decodeBody(w)
			So(body["code"], ShouldEqual, "internal_error")
			So(w.Body.String(), ShouldNotContainSubstring, "disk on fire")
		})
	})
}

func TestSongItem(t *testing.T) {
	Convey("Given a catalog with one song", t, func() {
		deps := newMockDependencies()
		mux := newTestMux(deps)
		So(do(mux, http.MethodPost, "/v1/songs/", `{"title":"Old","artist":"Someone"}`, true).Code, ShouldEqual, http.StatusCreated)

		Convey("Getting an unknown id returns 404 naming the id", func() {
			w := do(mux, http.MethodGet, "/v1/songs/42/", "", false)
			So(w.Code, ShouldEqual, http.StatusNotFound)
			So(decodeBody(w)["message"], ShouldEqual, "Song with id: 42 does not exist")
		})

		Convey("A non-integer id is reported as not found", func() {
			w := do(mux, http.MethodGet, "/v1/songs/abc/", "", false)
			So(w.Code, ShouldEqual, http.StatusNotFound)
			So(decodeBody(w)["message"], ShouldContainSubstring, "abc")
		})

		Convey("PUT replaces both fields", func() {
			w := do(mux, http.MethodPut, "/v1/songs/1/", `{"title":"New","artist":"Other"}`, false)
			So(w.Code, ShouldEqual, http.StatusOK)
			body := decodeBody(w)
			So(body["title"], ShouldEqual, "New")
			So(body["artist"], ShouldEqual, "Other")

			w = do(mux, http.MethodGet, "/v1/songs/1", "", false)
			So(decodeBody(w)["title"], ShouldEqual, "New")
		})

		Convey("PUT validates the body before looking the song up", func() {
			w := do(mux, http.MethodPut, "/v1/songs/42/", `{"title":""}`, false)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(deps.songs[1].Title, ShouldEqual, "Old")
		})

		Convey("PUT on an unknown id returns 404", func() {
			w := do(mux, http.MethodPut, "/v1/songs/42/", `{"title":"T","artist":"A"}`, false)
			So(w.Code, ShouldEqual, http.StatusNotFound)
			So(decodeBody(w)["message"], ShouldContainSubstring, "42")
		})

		Convey("DELETE returns 204 and a later GET returns 404", func() {
			w := do(mux, http.MethodDelete, "/v1/songs/1/", "", false)
			So(w.Code, ShouldEqual, http.StatusNoContent)
			So(w.Body.Len(), ShouldEqual, 0)

			w = do(mux, http.MethodGet, "/v1/songs/1/", "", false)
			So(w.Code, ShouldEqual, http.StatusNotFound)

			w = do(mux, http.MethodDelete, "/v1/songs/1/", "", false)
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestAuthEndpoints(t *testing.T) {
	Convey("Given the auth endpoints", t, func() {
		mux := newTestMux(newMockDependencies())

		Convey("Valid credentials return a token", func() {
			w := do(mux, http.MethodPost, "/v1/auth/login/", `{"username":"validuser","password":"validpass"}`, false)
			So(w.Code, ShouldEqual, http.StatusOK)
			So(decodeBody(w)["token"], ShouldNotBeEmpty)
		})

		Convey("A wrong password returns 401 with no body", func() {
			w := do(mux, http.MethodPost, "/v1/auth/login/", `{"username":"validuser","password":"nope"}`, false)
			So(w.Code, ShouldEqual, http.StatusUnauthorized)
			So(w.Body.Len(), ShouldEqual, 0)
		})

		Convey("Malformed login JSON returns 401", func() {
			w := do(mux, http.MethodPost, "/v1/auth/login", `not json`, false)
			So(w.Code, ShouldEqual, http.StatusUnauthorized)
		})

		Convey("Register with all fields empty returns 400", func() {
			w := do(mux, http.MethodPost, "/v1/auth/register/", `{"username":"","password":"","email":""}`, false)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(decodeBody(w)["message"], ShouldEqual, "username, password and email is required")
		})

		Convey("Register with valid fields returns 201 without a password", func() {
			w := do(mux, http.MethodPost, "/v1/auth/register/", `{"username":"newbie","password":"pw","email":"n@example.com"}`, false)
			So(w.Code, ShouldEqual, http.StatusCreated)
			body := decodeBody(w)
			So(body["username"], ShouldEqual, "newbie")
			So(body["email"], ShouldEqual, "n@example.com")
			So(w.Body.String(), ShouldNotContainSubstring, "password")
			So(w.Body.String(), ShouldNotContainSubstring, "hashed")
		})

		Convey("Register with only an email reaches the store and fails on the username", func() {
			w := do(mux, http.MethodPost, "/v1/auth/register/", `{"email":"n@example.com"}`, false)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(decodeBody(w)["message"], ShouldEqual, "username must be set")
		})

		Convey("Register with a taken username returns 400", func() {
			w := do(mux, http.MethodPost, "/v1/auth/register/", `{"username":"validuser","password":"x","email":""}`, false)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(decodeBody(w)["message"], ShouldEqual, "a user with that username already exists")
		})
	})
}
