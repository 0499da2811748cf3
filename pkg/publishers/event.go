package publishers

import (
	"time"

	"github.com/google/uuid"
	"github.com/samvad-hq/scholarship-directory/internal/domain"
)

// EventListingAdded is emitted the first time a listing id is seen for a source.
const EventListingAdded = "listing.added"

// Event represents the payload published downstream.
type Event struct {
	ID          string         `json:"id"`
	Type        string         `json:"type"`
	SourceID    string         `json:"source_id"`
	Listing     domain.Listing `json:"listing"`
	CollectedAt time.Time      `json:"collected_at"`
}

// NewListingAdded builds a listing.added event with a fresh id.
func NewListingAdded(sourceID string, listing domain.Listing) Event {
	return Event{
		ID:          uuid.NewString(),
		Type:        EventListingAdded,
		SourceID:    sourceID,
		Listing:     listing,
		CollectedAt: time.Now().UTC(),
	}
}

// attributes are the routing hints every broker publisher attaches.
func (e Event) attributes() map[string]string {
	return map[string]string{
		"event_type": e.Type,
		"source_id":  e.SourceID,
		"listing_id": e.Listing.ID,
	}
}
