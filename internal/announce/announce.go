package announce

import (
	"context"
	"errors"
	"fmt"

	"github.com/samvad-hq/scholarship-directory/internal/catalog"
	"github.com/samvad-hq/scholarship-directory/internal/catalog/fallback"
	"github.com/samvad-hq/scholarship-directory/internal/domain"
	"github.com/samvad-hq/scholarship-directory/internal/logger"
	"github.com/samvad-hq/scholarship-directory/pkg/publishers"
)

// Announcer emits listing.added events for listings not announced before.
type Announcer struct {
	ledger Ledger
	pub    EventPublisher
	log    logger.Logger
}

// New wires an announcer. A nil publisher disables announcements.
func New(ledger Ledger, pub EventPublisher, log logger.Logger) *Announcer {
	return &Announcer{ledger: ledger, pub: pub, log: logger.Ensure(log)}
}

// Enabled reports whether any downstream sink is configured.
func (a *Announcer) Enabled() bool {
	return a != nil && a.pub != nil && a.pub.Size() > 0
}

// Announce publishes one event per unseen listing of a ready snapshot and
// records the ids that reached at least one sink. Degraded and fallback
// snapshots are ignored. It returns the number of listings announced.
func (a *Announcer) Announce(ctx context.Context, snap *catalog.Snapshot) (int, error) {
	if !a.Enabled() || snap == nil {
		return 0, nil
	}
	if snap.State != catalog.StateReady || snap.SourceID == fallback.SourceID {
		return 0, nil
	}

	fresh, err := a.filterUnseen(snap.SourceID, snap.Listings)
	if err != nil {
		return 0, err
	}
	if len(fresh) == 0 {
		a.log.DebugObj("no new listings to announce", "announce_meta", map[string]any{
			"source_id": snap.SourceID,
			"listings":  len(snap.Listings),
		})
		return 0, nil
	}

	var errs []error
	delivered := make([]string, 0, len(fresh))
	for _, listing := range fresh {
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}
		evt := publishers.NewListingAdded(snap.SourceID, listing)
		n, err := a.pub.Publish(ctx, evt)
		if err != nil {
			errs = append(errs, fmt.Errorf("listing %s: %w", listing.ID, err))
		}
		if n > 0 {
			delivered = append(delivered, listing.ID)
		}
	}

	if a.ledger != nil {
		if err := a.ledger.Mark(snap.SourceID, delivered); err != nil {
			errs = append(errs, fmt.Errorf("mark announced listings: %w", err))
		}
	}

	a.log.InfoObj("listings announced", "announce_meta", map[string]any{
		"source_id": snap.SourceID,
		"new":       len(fresh),
		"delivered": len(delivered),
	})
	return len(delivered), errors.Join(errs...)
}

// filterUnseen keeps the listings whose ids the ledger has not recorded.
func (a *Announcer) filterUnseen(sourceID string, listings []domain.Listing) ([]domain.Listing, error) {
	if a.ledger == nil {
		return listings, nil
	}

	ids := make([]string, len(listings))
	for i, l := range listings {
		ids[i] = l.ID
	}
	unseen, err := a.ledger.Unseen(sourceID, ids)
	if err != nil {
		return nil, fmt.Errorf("ledger lookup for source %s: %w", sourceID, err)
	}

	keep := make(map[string]struct{}, len(unseen))
	for _, id := range unseen {
		keep[id] = struct{}{}
	}
	out := make([]domain.Listing, 0, len(unseen))
	for _, l := range listings {
		if _, ok := keep[l.ID]; ok {
			out = append(out, l)
		}
	}
	return out, nil
}
