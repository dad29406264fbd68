package smoketest

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/okian/muziki/pkg/logger"
)

// check is one named end-to-end assertion.
type check struct {
	name string
	run  func(ctx context.Context, s *session) error
}

// session carries state shared between checks.
type session struct {
	anon     *Client
	authed   *Client
	username string
	password string
}

// checks run in order; later ones rely on the token obtained by "login".
var checks = []check{ //nolint:gochecknoglobals // ordered check table
	{"register rejects all-empty body", checkRegisterEmpty},
	{"register creates a user", checkRegister},
	{"login rejects a wrong password", checkLoginWrongPassword},
	{"login issues a token", checkLogin},
	{"song list requires a token", checkListRequiresToken},
	{"song create requires title and artist", checkCreateValidation},
	{"song lifecycle", checkSongLifecycle},
	{"unknown song id is reported", checkUnknownSong},
}

func newSession(client *Client) *session {
	return &session{
		anon:     client,
		username: "smoke-" + uuid.NewString(),
		password: uuid.NewString(),
	}
}

// runChecks executes every check and stops at the first failure.
func runChecks(ctx context.Context, cfg *Config, s *session, stats *Stats) error {
	log := logger.Get()
	for _, c := range checks {
		if err := c.run(ctx, s); err != nil {
			log.Error(ctx, "check failed", logger.String("check", c.name), logger.Error(err))
			return fmt.Errorf("%w: %s: %w", ErrCheckFailed, c.name, err)
		}
		stats.ChecksPassed++
		if cfg.Verbose {
			log.Info(ctx, "check passed", logger.String("check", c.name))
		}
	}
	return nil
}

func checkRegisterEmpty(ctx context.Context, s *session) error {
	resp, err := s.anon.expect(ctx, http.MethodPost, "/v1/auth/register/", credentials{}, http.StatusBadRequest)
	if err != nil {
		return err
	}
	var e errorResponse
	if err := resp.decode(&e); err != nil {
		return err
	}
	if e.Message != "username, password and email is required" {
		return fmt.Errorf("unexpected message %q", e.Message)
	}
	return nil
}

func checkRegister(ctx context.Context, s *session) error {
	body := credentials{Username: s.username, Password: s.password, Email: s.username + "@example.com"}
	resp, err := s.anon.expect(ctx, http.MethodPost, "/v1/auth/register/", body, http.StatusCreated)
	if err != nil {
		return err
	}
	if strings.Contains(string(resp.body), "password") {
		return fmt.Errorf("register response exposes a password field")
	}
	var u User
	if err := resp.decode(&u); err != nil {
		return err
	}
	if u.Username != s.username || u.ID == 0 {
		return fmt.Errorf("unexpected user %+v", u)
	}
	return nil
}

func checkLoginWrongPassword(ctx context.Context, s *session) error {
	body := credentials{Username: s.username, Password: s.password + "-wrong"}
	_, err := s.anon.expect(ctx, http.MethodPost, "/v1/auth/login/", body, http.StatusUnauthorized)
	return err
}

func checkLogin(ctx context.Context, s *session) error {
	body := credentials{Username: s.username, Password: s.password}
	resp, err := s.anon.expect(ctx, http.MethodPost, "/v1/auth/login/", body, http.StatusOK)
	if err != nil {
		return err
	}
	var tok tokenResponse
	if err := resp.decode(&tok); err != nil {
		return err
	}
	if tok.Token == "" {
		return fmt.Errorf("empty token")
	}
	s.authed = s.anon.WithToken(tok.Token)
	return nil
}

func checkListRequiresToken(ctx context.Context, s *session) error {
	_, err := s.anon.expect(ctx, http.MethodGet, "/v1/songs/", nil, http.StatusUnauthorized)
	return err
}

func checkCreateValidation(ctx context.Context, s *session) error {
	_, err := s.authed.expect(ctx, http.MethodPost, "/v1/songs/", songInput{Title: "Kwangwaru"}, http.StatusBadRequest)
	return err
}

func checkSongLifecycle(ctx context.Context, s *session) error {
	resp, err := s.authed.expect(ctx, http.MethodPost, "/v1/songs/",
		songInput{Title: "Kwangwaru", Artist: "Gold Platnumz"}, http.StatusCreated)
	if err != nil {
		return err
	}
	var created Song
	if err := resp.decode(&created); err != nil {
		return err
	}
	path := "/v1/songs/" + strconv.FormatUint(uint64(created.ID), 10) + "/"

	resp, err = s.anon.expect(ctx, http.MethodGet, path, nil, http.StatusOK)
	if err != nil {
		return err
	}
	var got Song
	if err := resp.decode(&got); err != nil {
		return err
	}
	if got != created {
		return fmt.Errorf("retrieved %+v, created %+v", got, created)
	}

	resp, err = s.anon.expect(ctx, http.MethodPut, path, songInput{Title: "Jeje", Artist: "Diamond Platnumz"}, http.StatusOK)
	if err != nil {
		return err
	}
	var updated Song
	if err := resp.decode(&updated); err != nil {
		return err
	}
	if updated.ID != created.ID || updated.Title != "Jeje" || updated.Artist != "Diamond Platnumz" {
		return fmt.Errorf("update returned %+v", updated)
	}

	if _, err := s.anon.expect(ctx, http.MethodDelete, path, nil, http.StatusNoContent); err != nil {
		return err
	}
	return expectSongMissing(ctx, s.anon, created.ID)
}

func checkUnknownSong(ctx context.Context, s *session) error {
	return expectSongMissing(ctx, s.anon, uint(1<<31))
}

func expectSongMissing(ctx context.Context, c *Client, id uint) error {
	raw := strconv.FormatUint(uint64(id), 10)
	resp, err := c.expect(ctx, http.MethodGet, "/v1/songs/"+raw+"/", nil, http.StatusNotFound)
	if err != nil {
		return err
	}
	var e errorResponse
	if err := resp.decode(&e); err != nil {
		return err
	}
	if !strings.Contains(e.Message, raw) {
		return fmt.Errorf("not-found message %q does not name id %s", e.Message, raw)
	}
	return nil
}
