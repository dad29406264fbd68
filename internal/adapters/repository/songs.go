package repository

import (
	"context"
	"errors"
	"time"

	"github.com/okian/muziki/internal/domain/model"
	"github.com/okian/muziki/pkg/metrics"
	"gorm.io/gorm"
)

// SongRepository is the GORM backed SongStore.
type SongRepository struct {
	db *gorm.DB
}

var _ SongStore = (*SongRepository)(nil)

// NewSongRepository returns a SongStore over db.
func NewSongRepository(db *gorm.DB) *SongRepository {
	return &SongRepository{db: db}
}

// List returns every song ordered by id.
func (r *SongRepository) List(ctx context.Context) (songs []model.Song, err error) {
	defer observe("song.list", time.Now(), &err)
	songs = make([]model.Song, 0)
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&songs).Error; err != nil {
		return nil, err
	}
	return songs, nil
}

// Get returns the song with id.
func (r *SongRepository) Get(ctx context.Context, id uint) (song model.Song, err error) {
	defer observe("song.get", time.Now(), &err)
	if err := r.db.WithContext(ctx).First(&song, id).Error; err != nil {
		return model.Song{}, translate(err)
	}
	return song, nil
}

// Create inserts a new song and returns it with its assigned id.
func (r *SongRepository) Create(ctx context.Context, title, artist string) (song model.Song, err error) {
	defer observe("song.create", time.Now(), &err)
	song = model.Song{Title: title, Artist: artist}
	if err := r.db.WithContext(ctx).Create(&song).Error; err != nil {
		return model.Song{}, err
	}
	return song, nil
}

// Update replaces title and artist of an existing song.
func (r *SongRepository) Update(ctx context.Context, id uint, title, artist string) (song model.Song, err error) {
	defer observe("song.update", time.Now(), &err)
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&song, id).Error; err != nil {
			return translate(err)
		}
		song.Title = title
		song.Artist = artist
		return tx.Save(&song).Error
	})
	if err != nil {
		return model.Song{}, err
	}
	return song, nil
}

// Delete removes the song with id.
func (r *SongRepository) Delete(ctx context.Context, id uint) (err error) {
	defer observe("song.delete", time.Now(), &err)
	res := r.db.WithContext(ctx).Delete(&model.Song{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Count returns the number of songs.
func (r *SongRepository) Count(ctx context.Context) (n int64, err error) {
	defer observe("song.count", time.Now(), &err)
	err = r.db.WithContext(ctx).Model(&model.Song{}).Count(&n).Error
	return n, err
}

// translate maps GORM errors onto this package's sentinels.
func translate(err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicateUsername
	default:
		return err
	}
}

// observe records latency for every call and counts failures other than the expected kinds.
func observe(op string, start time.Time, errp *error) {
	metrics.RecordRepositoryQueryLatency(op, float64(time.Since(start).Microseconds())/1000)
	if err := *errp; err != nil &&
		!errors.Is(err, ErrNotFound) &&
		!errors.Is(err, ErrDuplicateUsername) &&
		!errors.Is(err, ErrEmptyUsername) {
		metrics.RecordRepositoryError(op)
	}
}
