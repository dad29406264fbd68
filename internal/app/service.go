// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/okian/muziki/internal/adapters/repository"
	"github.com/okian/muziki/internal/auth"
	"github.com/okian/muziki/internal/domain/model"
	"github.com/okian/muziki/pkg/logger"
	"github.com/okian/muziki/pkg/metrics"
	"golang.org/x/crypto/bcrypt"
)

type account struct {
	username string
	password string
	email    string
}

// Service implements the API dependencies for the song catalog.
type Service struct {
	mu sync.RWMutex

	// Core components
	db       *repository.DB
	songs    repository.SongStore
	users    repository.UserStore
	hasher   auth.Hasher
	verifier auth.Verifier
	issuer   auth.Issuer

	// Configuration
	dbDriver      string
	dbDSN         string
	maxOpenConns  int
	slowThreshold time.Duration
	jwtSecret     string
	jwtIssuer     string
	jwtTTL        time.Duration
	bcryptCost    int
	superuser     account

	started bool
	now     func() time.Time

	logger logger.Logger
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		dbDriver:      repository.DriverSQLite,
		dbDSN:         "muziki.db",
		slowThreshold: 200 * time.Millisecond,
		jwtIssuer:     "muziki",
		jwtTTL:        5 * time.Minute,
		bcryptCost:    bcrypt.DefaultCost,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start opens the database and builds the auth components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting catalog service...", logger.String("driver", s.dbDriver))

	db, err := repository.Open(ctx, s.dbDriver, s.dbDSN,
		repository.WithLogger(s.logger),
		repository.WithSlowThreshold(s.slowThreshold),
		repository.WithMaxOpenConns(s.maxOpenConns),
	)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}

	issuer, err := auth.NewJWTIssuer(s.jwtSecret,
		auth.WithIssuerName(s.jwtIssuer),
		auth.WithTTL(s.jwtTTL),
		auth.WithClock(s.now),
	)
	if err != nil {
		_ = db.Close()
		return fmt.Errorf("token issuer: %w", err)
	}

	s.db = db
	s.songs = db.Songs()
	s.users = db.Users()
	s.hasher = auth.NewBcryptHasher(s.bcryptCost)
	s.verifier = auth.NewPasswordVerifier(db.Users(), s.hasher)
	s.issuer = issuer

	if err := s.ensureSuperuser(ctx); err != nil {
		_ = db.Close()
		return err
	}

	s.started = true
	s.logger.Info(ctx, "catalog service started",
		logger.String("driver", s.dbDriver),
		logger.Duration("tokenTTL", s.jwtTTL),
	)
	return nil
}

// Stop closes the database.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.logger.Info(context.Background(), "stopping catalog service...")
	if err := s.db.Close(); err != nil {
		s.logger.Warn(context.Background(), "closing database failed", logger.Error(err))
	}
	s.started = false
	s.logger.Info(context.Background(), "catalog service stopped")
}

func (s *Service) ensureSuperuser(ctx context.Context) error {
	if s.superuser.username == "" {
		return nil
	}
	if _, err := s.users.GetByUsername(ctx, s.superuser.username); err == nil {
		s.logger.Debug(ctx, "superuser already present", logger.String("username", s.superuser.username))
		return nil
	} else if !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("look up superuser: %w", err)
	}

	hash, err := s.hasher.Hash(s.superuser.password)
	if err != nil {
		return err
	}
	u := &model.User{
		Username:     s.superuser.username,
		PasswordHash: hash,
		Email:        s.superuser.email,
		IsSuperuser:  true,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return fmt.Errorf("create superuser: %w", err)
	}
	s.logger.Info(ctx, "superuser created", logger.String("username", u.Username), logger.Uint("id", u.ID))
	return nil
}

func (s *Service) ready() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return ErrNotStarted
	}
	return nil
}

// ListSongs returns the whole catalog in insertion order.
func (s *Service) ListSongs(ctx context.Context) ([]model.Song, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	return s.songs.List(ctx)
}

// GetSong returns one song or repository.ErrNotFound.
func (s *Service) GetSong(ctx context.Context, id uint) (model.Song, error) {
	if err := s.ready(); err != nil {
		return model.Song{}, err
	}
	return s.songs.Get(ctx, id)
}

// CreateSong stores a new song. Inputs are expected to be validated by the caller.
func (s *Service) CreateSong(ctx context.Context, title, artist string) (model.Song, error) {
	if err := s.ready(); err != nil {
		return model.Song{}, err
	}
	song, err := s.songs.Create(ctx, title, artist)
	if err != nil {
		return model.Song{}, err
	}
	metrics.RecordSongCreated()
	s.logger.Debug(ctx, "song created", logger.Uint("id", song.ID), logger.String("song", song.String()))
	return song, nil
}

// UpdateSong replaces title and artist of an existing song.
func (s *Service) UpdateSong(ctx context.Context, id uint, title, artist string) (model.Song, error) {
	if err := s.ready(); err != nil {
		return model.Song{}, err
	}
	song, err := s.songs.Update(ctx, id, title, artist)
	if err != nil {
		return model.Song{}, err
	}
	metrics.RecordSongUpdated()
	return song, nil
}

// DeleteSong removes a song.
func (s *Service) DeleteSong(ctx context.Context, id uint) error {
	if err := s.ready(); err != nil {
		return err
	}
	if err := s.songs.Delete(ctx, id); err != nil {
		return err
	}
	metrics.RecordSongDeleted()
	return nil
}

// Login verifies credentials, records the login time and issues a token.
// Bad credentials yield auth.ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, username, password string) (string, error) {
	if err := s.ready(); err != nil {
		return "", err
	}
	user, err := s.verifier.Verify(ctx, username, password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		metrics.RecordLogin(metrics.ResultRejected)
		return "", err
	}
	if err != nil {
		metrics.RecordLogin(metrics.ResultError)
		return "", fmt.Errorf("verify credentials: %w", err)
	}

	if err := s.users.TouchLastLogin(ctx, user.ID, s.now()); err != nil {
		metrics.RecordLogin(metrics.ResultError)
		return "", fmt.Errorf("record login: %w", err)
	}
	token, err := s.issuer.Issue(ctx, user)
	if err != nil {
		metrics.RecordLogin(metrics.ResultError)
		return "", err
	}
	metrics.RecordLogin(metrics.ResultSuccess)
	s.logger.Debug(ctx, "user logged in", logger.String("username", user.Username))
	return token, nil
}

// Register creates a non-privileged user.
// Store constraints surface as repository.ErrEmptyUsername or repository.ErrDuplicateUsername.
func (s *Service) Register(ctx context.Context, username, password, email string) (model.User, error) {
	if err := s.ready(); err != nil {
		return model.User{}, err
	}
	hash, err := s.hasher.Hash(password)
	if err != nil {
		metrics.RecordRegistration(metrics.ResultError)
		return model.User{}, err
	}
	u := model.User{Username: username, PasswordHash: hash, Email: email}
	if err := s.users.Create(ctx, &u); err != nil {
		if errors.Is(err, repository.ErrDuplicateUsername) || errors.Is(err, repository.ErrEmptyUsername) {
			metrics.RecordRegistration(metrics.ResultRejected)
		} else {
			metrics.RecordRegistration(metrics.ResultError)
		}
		return model.User{}, err
	}
	metrics.RecordRegistration(metrics.ResultSuccess)
	s.logger.Info(ctx, "user registered", logger.String("username", u.Username), logger.Uint("id", u.ID))
	return u, nil
}

// Authenticate validates a bearer token and returns its claims.
func (s *Service) Authenticate(ctx context.Context, token string) (*auth.Claims, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	return s.issuer.Parse(ctx, token)
}

// GetStats returns service statistics for monitoring and refreshes the size gauges.
func (s *Service) GetStats(ctx context.Context) map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":         s.started,
		"database_driver": s.dbDriver,
	}
	if !s.started {
		return stats
	}

	if n, err := s.songs.Count(ctx); err == nil {
		stats["songs"] = n
		metrics.UpdateCatalogSize(n)
	} else {
		s.logger.Warn(ctx, "counting songs failed", logger.Error(err))
	}
	if n, err := s.users.Count(ctx); err == nil {
		stats["users"] = n
		metrics.UpdateUsersTotal(n)
	} else {
		s.logger.Warn(ctx, "counting users failed", logger.Error(err))
	}
	return stats
}
