// Package repository defines the catalog and user stores and their GORM implementation.
package repository

import (
	"context"
	"time"

	"github.com/okian/muziki/internal/domain/model"
)

// SongStore provides read/write access to the song catalog.
type SongStore interface {
	// List returns every song ordered by id, oldest first.
	List(ctx context.Context) ([]model.Song, error)
	// Get returns ErrNotFound if no song has the id.
	Get(ctx context.Context, id uint) (model.Song, error)
	Create(ctx context.Context, title, artist string) (model.Song, error)
	// Update overwrites title and artist. Returns ErrNotFound if the id is unknown.
	Update(ctx context.Context, id uint, title, artist string) (model.Song, error)
	// Delete returns ErrNotFound if the id is unknown.
	Delete(ctx context.Context, id uint) error
	Count(ctx context.Context) (int64, error)
}

// UserStore provides access to user accounts.
type UserStore interface {
	// Create inserts u and fills in its id. Usernames must be non-empty and unique.
	Create(ctx context.Context, u *model.User) error
	Get(ctx context.Context, id uint) (model.User, error)
	GetByUsername(ctx context.Context, username string) (model.User, error)
	TouchLastLogin(ctx context.Context, id uint, at time.Time) error
	Count(ctx context.Context) (int64, error)
}
