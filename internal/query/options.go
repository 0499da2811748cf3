package query

import (
	"sort"

	"github.com/samvad-hq/scholarship-directory/internal/domain"
	"github.com/samvad-hq/scholarship-directory/internal/normalize"
)

// Dimension names a filterable listing attribute.
type Dimension string

const (
	DimensionField       Dimension = "field"
	DimensionDegreeLevel Dimension = "degree_level"
	DimensionDestination Dimension = "destination"
)

// DefaultFields are always offered as field options.
var DefaultFields = []string{
	"engineering", "medicine", "business", "arts", "science",
	"technology", "law", "education", "various",
}

// DistinctOptions derives the sorted option set for a dimension. Field and
// degree level options are lower-cased and include the default vocabulary;
// destinations come only from the data, in the active language, and keep
// their spelling.
func DistinctOptions(listings []domain.Listing, dim Dimension, lang string) []string {
	lang = normalizeLang(lang)
	set := make(map[string]struct{})

	switch dim {
	case DimensionField:
		for _, d := range DefaultFields {
			set[d] = struct{}{}
		}
		for _, l := range listings {
			for _, tok := range normalize.SplitLower(l.Field) {
				set[tok] = struct{}{}
			}
		}
	case DimensionDegreeLevel:
		for _, d := range normalize.DegreeLevels {
			set[d] = struct{}{}
		}
		for _, l := range listings {
			for _, tok := range normalize.SplitLower(l.DegreeLevel) {
				set[tok] = struct{}{}
			}
		}
	case DimensionDestination:
		for _, l := range listings {
			for _, tok := range normalize.Split(l.DestinationIn(lang)) {
				set[tok] = struct{}{}
			}
		}
	default:
		return nil
	}

	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Options bundles every dimension's option set.
type Options struct {
	Fields       []string `json:"fields"`
	DegreeLevels []string `json:"degree_levels"`
	Destinations []string `json:"destinations"`
}

// AllOptions derives the option sets for every dimension.
func AllOptions(listings []domain.Listing, lang string) Options {
	return Options{
		Fields:       DistinctOptions(listings, DimensionField, lang),
		DegreeLevels: DistinctOptions(listings, DimensionDegreeLevel, lang),
		Destinations: DistinctOptions(listings, DimensionDestination, lang),
	}
}
