package auth

import (
	"context"
	"errors"
	"sync"

	"github.com/okian/muziki/internal/adapters/repository"
	"github.com/okian/muziki/internal/domain/model"
)

// UserLookup is the slice of the user store the verifier needs.
type UserLookup interface {
	GetByUsername(ctx context.Context, username string) (model.User, error)
}

// PasswordVerifier checks credentials against stored password hashes.
type PasswordVerifier struct {
	users  UserLookup
	hasher Hasher

	dummyOnce sync.Once
	dummyHash string
}

var _ Verifier = (*PasswordVerifier)(nil)

// NewPasswordVerifier returns a Verifier backed by users and hasher.
func NewPasswordVerifier(users UserLookup, hasher Hasher) *PasswordVerifier {
	return &PasswordVerifier{users: users, hasher: hasher}
}

// Verify looks the user up and compares the password.
// Unknown users still pay for one hash comparison so timing does not reveal which usernames exist.
func (v *PasswordVerifier) Verify(ctx context.Context, username, password string) (model.User, error) {
	u, err := v.users.GetByUsername(ctx, username)
	if errors.Is(err, repository.ErrNotFound) {
		_ = v.hasher.Compare(v.dummy(), password)
		return model.User{}, ErrInvalidCredentials
	}
	if err != nil {
		return model.User{}, err
	}
	if err := v.hasher.Compare(u.PasswordHash, password); err != nil {
		return model.User{}, ErrInvalidCredentials
	}
	return u, nil
}

func (v *PasswordVerifier) dummy() string {
	v.dummyOnce.Do(func() {
		v.dummyHash, _ = v.hasher.Hash("muziki-dummy-password")
	})
	return v.dummyHash
}
