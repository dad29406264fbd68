package smoketest

import "os"

// ShowHelp prints usage information for the smoke tool.
func ShowHelp() {
	os.Stdout.WriteString(`muziki smoke tool
=================

Runs end-to-end checks against a running muziki server, then seeds songs
concurrently and verifies the catalog listing.

Usage:
  go run ./cmd/smoke [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:8000")
  -songs int
        Number of songs to seed concurrently (default 200)
  -workers int
        Number of concurrent workers (default CPU cores * 2)
  -timeout duration
        HTTP request timeout (default 10s)
  -log-format string
        Log output format, text or json (default "text")
  -verbose
        Log every check and failed request
  -help
        Show this help message

Examples:
  go run ./cmd/smoke
  go run ./cmd/smoke -songs 5000 -workers 32 -url http://localhost:8080
`)
}
