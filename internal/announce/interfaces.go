package announce

import (
	"context"

	"github.com/samvad-hq/scholarship-directory/pkg/publishers"
)

// Ledger remembers which listing ids were already announced per source.
type Ledger interface {
	Unseen(sourceID string, ids []string) ([]string, error)
	Mark(sourceID string, ids []string) error
}

// EventPublisher delivers events and reports how many sinks accepted each one.
type EventPublisher interface {
	Publish(ctx context.Context, evt publishers.Event) (int, error)
	Size() int
}
