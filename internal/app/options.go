package service

import (
	"time"

	"github.com/okian/muziki/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithDatabase selects the driver and DSN of the relational store.
func WithDatabase(driver, dsn string) Option {
	return func(s *Service) {
		if driver != "" {
			s.dbDriver = driver
		}
		if dsn != "" {
			s.dbDSN = dsn
		}
	}
}

// WithMaxOpenConns caps the database connection pool.
func WithMaxOpenConns(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxOpenConns = n
		}
	}
}

// WithSlowQueryThreshold sets the duration above which queries are logged as slow.
func WithSlowQueryThreshold(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.slowThreshold = d
		}
	}
}

// WithJWT configures token signing.
func WithJWT(secret, issuer string, ttl time.Duration) Option {
	return func(s *Service) {
		if secret != "" {
			s.jwtSecret = secret
		}
		if issuer != "" {
			s.jwtIssuer = issuer
		}
		if ttl > 0 {
			s.jwtTTL = ttl
		}
	}
}

// WithBcryptCost sets the password hashing work factor.
func WithBcryptCost(cost int) Option {
	return func(s *Service) {
		if cost > 0 {
			s.bcryptCost = cost
		}
	}
}

// WithSuperuser makes Start create this superuser if the username is free.
func WithSuperuser(username, password, email string) Option {
	return func(s *Service) {
		s.superuser = account{username: username, password: password, email: email}
	}
}
