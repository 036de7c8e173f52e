// Package journal defines the optional persistent log of page fetches. Every
// attempt to pull one result page produces one Record, whether it succeeded,
// failed, or was challenged.
package journal

import (
	"context"
	"time"
)

// Record represents one result page fetch attempt.
type Record struct {
	ID           string
	Word         string
	Query        string
	Engine       string
	Page         int
	URL          string
	StatusCode   int
	Duration     time.Duration
	Domains      int // hostnames extracted from this page
	Challenged   bool
	ChallengeSrc string // e.g. "RateLimit", "CAPTCHA", "Cloudflare"
	CreatedAt    time.Time
	Error        string // non-empty if the fetch failed before an HTTP response
}

// Filter allows querying for specific Records.
type Filter struct {
	Word       string
	Engine     string
	Challenged *bool
	Since      *time.Time
	Limit      int
	Offset     int
}

// Backend defines the interface for storing and querying fetch records.
type Backend interface {
	Save(ctx context.Context, rec *Record) error
	Query(ctx context.Context, filter Filter) ([]*Record, error)
	Close() error
}
