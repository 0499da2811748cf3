package storage

import (
	"fmt"
	"strings"
	"time"
)

// Package storage keeps the ledger of listing ids that were already announced
// downstream. Listing content is never stored.

// Store remembers announced listing ids per source.
type Store interface {
	Close() error
	// Unseen returns the ids, in input order, that are not recorded for sourceID.
	Unseen(sourceID string, ids []string) ([]string, error)
	// Mark records ids for sourceID until the retention period passes.
	Mark(sourceID string, ids []string) error
}

// Options controls retention characteristics for concrete store implementations.
type Options struct {
	ListingTTL      time.Duration
	CleanupInterval time.Duration
}

const (
	defaultListingTTL      = 180 * 24 * time.Hour
	defaultCleanupInterval = 24 * time.Hour
)

// NewStore creates the configured storage backend.
func NewStore(typ, path string, opts Options) (Store, error) {
	typ = strings.TrimSpace(strings.ToLower(typ))
	opts = normalizeOptions(opts)

	switch typ {
	case "", "none", "disabled":
		return noopStore{}, nil
	case "bbolt":
		if strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("bbolt storage requires a path")
		}
		return openBolt(path, opts)
	default:
		return nil, fmt.Errorf("unsupported storage type %q", typ)
	}
}

func normalizeOptions(opts Options) Options {
	if opts.ListingTTL <= 0 {
		opts.ListingTTL = defaultListingTTL
	}
	if opts.CleanupInterval <= 0 {
		opts.CleanupInterval = defaultCleanupInterval
	}
	return opts
}

// noopStore treats every id as unseen, so announcements repeat on each load.
type noopStore struct{}

func (noopStore) Close() error                                    { return nil }
func (noopStore) Unseen(_ string, ids []string) ([]string, error) { return ids, nil }
func (noopStore) Mark(string, []string) error                     { return nil }
