// Package smoketest drives a running muziki server through its public API
// and checks the catalog and auth behaviour end to end.
package smoketest

import "time"

// Config holds configuration for a smoke run.
type Config struct {
	BaseURL  string        // Base URL of the service
	NumSongs int           // Number of songs to seed concurrently
	Workers  int           // Number of concurrent seeding workers
	Timeout  time.Duration // HTTP request timeout
	Verbose  bool          // Log every check
}

// Song mirrors the API's song representation.
type Song struct {
	ID     uint   `json:"id"`
	Title  string `json:"title"`
	Artist string `json:"artist"`
}

// User mirrors the API's user representation.
type User struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type songInput struct {
	Title  string `json:"title"`
	Artist string `json:"artist"`
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email,omitempty"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Stats holds smoke run statistics.
type Stats struct {
	ChecksPassed int
	SongsSeeded  int
	SeedFailures int
	SongsListed  int
	StartTime    time.Time
	EndTime      time.Time
	Duration     time.Duration
}
