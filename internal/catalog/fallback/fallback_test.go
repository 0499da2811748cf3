package fallback

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListingsParseBundledDataset(t *testing.T) {
	got := Listings()
	require.Len(t, got, 50)

	first := got[0]
	assert.Equal(t, "1", first.ID)
	assert.Equal(t, "Chevening Scholarships - UK", first.Name.EN)
	assert.NotEmpty(t, first.Name.AR)
	assert.Equal(t, "engineering", first.Field)
	assert.Equal(t, "2025-11-02", first.Deadline)
	assert.True(t, first.DeadlineValid)
	assert.Equal(t, SourceID, first.Source)
	require.NotNil(t, first.Destination)
	assert.Equal(t, "UK", first.Destination.EN)

	seen := make(map[string]bool, len(got))
	for _, l := range got {
		assert.False(t, seen[l.ID], "duplicate id %s", l.ID)
		seen[l.ID] = true
		assert.False(t, l.Name.Empty(), "listing %s has no name", l.ID)
	}
}

func TestListingsReturnsCopy(t *testing.T) {
	a := Listings()
	a[0].Name.EN = "mutated"

	b := Listings()
	assert.NotEqual(t, "mutated", b[0].Name.EN)
}
