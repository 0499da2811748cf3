package fallback

import (
	_ "embed"
	"fmt"
	"sync"

	"github.com/samvad-hq/scholarship-directory/internal/domain"
	"github.com/samvad-hq/scholarship-directory/internal/normalize"
	"github.com/samvad-hq/scholarship-directory/pkg/sources"
)

// SourceID marks listings that come from the bundled dataset.
const SourceID = "fallback"

//go:embed scholarships.csv
var bundledCSV string

var (
	once     sync.Once
	listings []domain.Listing
)

// Listings returns a copy of the bundled dataset. The embedded CSV goes
// through the same tokenizer and assembler as live feeds.
func Listings() []domain.Listing {
	once.Do(func() {
		parsed, err := sources.ParseCSVListings(bundledCSV, normalize.Assembler{
			Prefix: SourceID,
			Source: SourceID,
		})
		if err != nil {
			panic(fmt.Sprintf("bundled scholarships dataset is invalid: %v", err))
		}
		listings = normalize.UniqueIDs(parsed)
	})

	out := make([]domain.Listing, len(listings))
	copy(out, listings)
	return out
}

// CSV returns the raw bundled dataset.
func CSV() string { return bundledCSV }
