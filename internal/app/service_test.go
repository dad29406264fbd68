package service_test

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/okian/muziki/internal/adapters/repository"
	service "github.com/okian/muziki/internal/app"
	"github.com/okian/muziki/internal/auth"
	"github.com/okian/muziki/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
	_ = logger.SetLevelString("error")
}

func newStartedService(t *testing.T, opts ...service.Option) *service.Service {
	t.Helper()
	base := []service.Option{
		service.WithDatabase(repository.DriverSQLite, filepath.Join(t.TempDir(), "svc.db")),
		service.WithJWT("test-secret", "test", time.Minute),
		service.WithBcryptCost(bcrypt.MinCost),
	}
	svc := service.New(append(base, opts...)...)
	if err := svc.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	t.Cleanup(svc.Stop)
	return svc
}

func TestService_Lifecycle(t *testing.T) {
	Convey("Given a service that has not been started", t, func() {
		svc := service.New(service.WithJWT("s", "", 0))
		ctx := context.Background()

		Convey("Then every operation should report it is not started", func() {
			_, err := svc.ListSongs(ctx)
			So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
			_, err = svc.Login(ctx, "u", "p")
			So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
			So(svc.GetStats(ctx)["started"], ShouldEqual, false)
		})

		Convey("And stopping it should be a no-op", func() {
			So(func() { svc.Stop() }, ShouldNotPanic)
		})
	})

	Convey("Given a service without a token secret", t, func() {
		svc := service.New(
			service.WithDatabase(repository.DriverSQLite, filepath.Join(t.TempDir(), "svc.db")),
		)

		Convey("Then starting should fail", func() {
			err := svc.Start(context.Background())
			So(errors.Is(err, auth.ErrEmptySecret), ShouldBeTrue)
		})
	})

	Convey("Given a started service", t, func() {
		svc := newStartedService(t)

		Convey("Then starting twice should be harmless", func() {
			So(svc.Start(context.Background()), ShouldBeNil)
			stats := svc.GetStats(context.Background())
			So(stats["started"], ShouldEqual, true)
			So(stats["songs"], ShouldEqual, int64(0))
			So(stats["users"], ShouldEqual, int64(0))
			So(stats["database_driver"], ShouldEqual, "sqlite")
		})
	})
}

func TestService_Songs(t *testing.T) {
	Convey("Given a started service", t, func() {
		ctx := context.Background()
		svc := newStartedService(t)

		Convey("When creating a song", func() {
			song, err := svc.CreateSong(ctx, "Kwangwaru", "Gold Platnumz")
			So(err, ShouldBeNil)

			Convey("Then it should be retrievable", func() {
				got, err := svc.GetSong(ctx, song.ID)
				So(err, ShouldBeNil)
				So(got.ID, ShouldEqual, uint(1))
				So(got.String(), ShouldEqual, "Kwangwaru - Gold Platnumz")
			})

			Convey("And listing should contain it", func() {
				list, err := svc.ListSongs(ctx)
				So(err, ShouldBeNil)
				So(list, ShouldHaveLength, 1)
			})

			Convey("And an update should overwrite both fields", func() {
				updated, err := svc.UpdateSong(ctx, song.ID, "Tetema", "Rayvanny")
				So(err, ShouldBeNil)
				So(updated.Title, ShouldEqual, "Tetema")
				So(updated.Artist, ShouldEqual, "Rayvanny")
			})

			Convey("And delete followed by get should report not found", func() {
				So(svc.DeleteSong(ctx, song.ID), ShouldBeNil)
				_, err := svc.GetSong(ctx, song.ID)
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
			})
		})

		Convey("When updating or deleting an unknown song", func() {
			_, updErr := svc.UpdateSong(ctx, 42, "t", "a")
			delErr := svc.DeleteSong(ctx, 42)

			Convey("Then not found should be reported", func() {
				So(errors.Is(updErr, repository.ErrNotFound), ShouldBeTrue)
				So(errors.Is(delErr, repository.ErrNotFound), ShouldBeTrue)
			})
		})
	})
}

func TestService_Auth(t *testing.T) {
	Convey("Given a started service with a registered user", t, func() {
		ctx := context.Background()
		svc := newStartedService(t)
		user, err := svc.Register(ctx, "validuser", "validpass", "valid@example.com")
		So(err, ShouldBeNil)

		Convey("Then the user should be a plain account", func() {
			So(user.ID, ShouldBeGreaterThan, 0)
			So(user.IsSuperuser, ShouldBeFalse)
			So(user.PasswordHash, ShouldNotEqual, "validpass")
		})

		Convey("When logging in with the right password", func() {
			token, err := svc.Login(ctx, "validuser", "validpass")

			Convey("Then a token for the user should be issued", func() {
				So(err, ShouldBeNil)
				So(token, ShouldNotBeEmpty)

				claims, err := svc.Authenticate(ctx, token)
				So(err, ShouldBeNil)
				So(claims.Username, ShouldEqual, "validuser")
				So(claims.UserID, ShouldEqual, user.ID)
				So(claims.Email, ShouldEqual, "valid@example.com")
			})
		})

		Convey("When logging in with a wrong password", func() {
			_, err := svc.Login(ctx, "validuser", "wrong")
			So(errors.Is(err, auth.ErrInvalidCredentials), ShouldBeTrue)
		})

		Convey("When logging in as an unknown user", func() {
			_, err := svc.Login(ctx, "ghost", "validpass")
			So(errors.Is(err, auth.ErrInvalidCredentials), ShouldBeTrue)
		})

		Convey("When registering the same username again", func() {
			_, err := svc.Register(ctx, "validuser", "other", "")
			So(errors.Is(err, repository.ErrDuplicateUsername), ShouldBeTrue)
		})

		Convey("When registering without a username", func() {
			_, err := svc.Register(ctx, "", "pw", "e@example.com")
			So(errors.Is(err, repository.ErrEmptyUsername), ShouldBeTrue)
		})

		Convey("When registering with a password longer than 72 bytes", func() {
			long := strings.Repeat("p", 73)
			u, err := svc.Register(ctx, "longpw", long, "l@example.com")

			Convey("Then the account should be created and usable", func() {
				So(err, ShouldBeNil)
				So(u.Username, ShouldEqual, "longpw")
				token, err := svc.Login(ctx, "longpw", long)
				So(err, ShouldBeNil)
				So(token, ShouldNotBeEmpty)
			})

			Convey("And the 72-byte prefix alone should not log in", func() {
				_, err := svc.Login(ctx, "longpw", long[:72])
				So(errors.Is(err, auth.ErrInvalidCredentials), ShouldBeTrue)
			})
		})

		Convey("When authenticating a forged token", func() {
			_, err := svc.Authenticate(ctx, "forged")
			So(errors.Is(err, auth.ErrInvalidToken), ShouldBeTrue)
		})
	})
}

func TestService_Superuser(t *testing.T) {
	Convey("Given a superuser with a password longer than 72 bytes", t, func() {
		ctx := context.Background()
		long := strings.Repeat("a", 100)
		svc := service.New(
			service.WithDatabase(repository.DriverSQLite, filepath.Join(t.TempDir(), "admin.db")),
			service.WithJWT("test-secret", "test", time.Minute),
			service.WithBcryptCost(bcrypt.MinCost),
			service.WithSuperuser("admin", long, "admin@example.com"),
		)

		Convey("Then the service should start and the superuser should log in", func() {
			So(svc.Start(ctx), ShouldBeNil)
			defer svc.Stop()
			_, err := svc.Login(ctx, "admin", long)
			So(err, ShouldBeNil)
		})
	})

	Convey("Given a service configured with a superuser", t, func() {
		ctx := context.Background()
		dsn := filepath.Join(t.TempDir(), "admin.db")
		opts := []service.Option{
			service.WithDatabase(repository.DriverSQLite, dsn),
			service.WithJWT("test-secret", "test", time.Minute),
			service.WithBcryptCost(bcrypt.MinCost),
			service.WithSuperuser("admin", "adminpass", "admin@example.com"),
		}
		svc := service.New(opts...)
		So(svc.Start(ctx), ShouldBeNil)

		Convey("Then the superuser should be able to log in", func() {
			token, err := svc.Login(ctx, "admin", "adminpass")
			So(err, ShouldBeNil)
			So(token, ShouldNotBeEmpty)
			svc.Stop()
		})

		Convey("And restarting against the same database should keep one account", func() {
			svc.Stop()
			again := service.New(opts...)
			So(again.Start(ctx), ShouldBeNil)
			defer again.Stop()
			So(again.GetStats(ctx)["users"], ShouldEqual, int64(1))
		})
	})
}
