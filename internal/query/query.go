package query

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/samvad-hq/scholarship-directory/internal/domain"
	"github.com/samvad-hq/scholarship-directory/internal/normalize"
)

// Sort keys.
const (
	SortDeadline    = "deadline"
	SortName        = "name"
	SortDestination = "destination"
)

// All disables a categorical filter, like an empty value.
const All = "all"

// Params is a filter/sort request against the record set.
type Params struct {
	Text        string
	Field       string
	DegreeLevel string
	Destination string
	Sort        string
	Lang        string
}

// Run filters and orders listings. The input slice is not modified. Ties keep
// their original relative order.
func Run(listings []domain.Listing, p Params) []domain.Listing {
	lang := normalizeLang(p.Lang)
	text := strings.ToLower(strings.TrimSpace(p.Text))

	out := make([]domain.Listing, 0, len(listings))
	for _, l := range listings {
		if text != "" && !matchesText(l, text) {
			continue
		}
		if active(p.Field) && !containsToken(l.Field, p.Field) {
			continue
		}
		if active(p.DegreeLevel) && !containsToken(l.DegreeLevel, p.DegreeLevel) {
			continue
		}
		if active(p.Destination) && !containsToken(l.DestinationIn(lang), p.Destination) {
			continue
		}
		out = append(out, l)
	}

	sortListings(out, p.Sort, lang)
	return out
}

func active(filter string) bool {
	f := strings.TrimSpace(filter)
	return f != "" && !strings.EqualFold(f, All)
}

// containsToken reports whether any split token of raw equals want, ignoring case.
func containsToken(raw, want string) bool {
	want = strings.ToLower(strings.TrimSpace(want))
	for _, tok := range normalize.SplitLower(raw) {
		if tok == want {
			return true
		}
	}
	return false
}

// matchesText searches names and descriptions in both languages, plus the
// individual destination and field tokens.
func matchesText(l domain.Listing, q string) bool {
	for _, s := range []string{l.Name.EN, l.Name.AR, l.Description.EN, l.Description.AR} {
		if strings.Contains(strings.ToLower(s), q) {
			return true
		}
	}
	if l.Destination != nil {
		for _, side := range []string{l.Destination.EN, l.Destination.AR} {
			for _, tok := range normalize.SplitLower(side) {
				if strings.Contains(tok, q) {
					return true
				}
			}
		}
	}
	for _, tok := range normalize.SplitLower(l.Field) {
		if strings.Contains(tok, q) {
			return true
		}
	}
	return false
}

// sortListings applies key; an empty key means deadline and unknown keys
// fall back to name order.
func sortListings(ls []domain.Listing, key, lang string) {
	switch strings.ToLower(strings.TrimSpace(key)) {
	case "", SortDeadline:
		sort.SliceStable(ls, func(i, j int) bool {
			return deadlineLess(ls[i], ls[j])
		})
	case SortDestination:
		col := collatorFor(lang)
		sort.SliceStable(ls, func(i, j int) bool {
			return col.CompareString(firstDestination(ls[i], lang), firstDestination(ls[j], lang)) < 0
		})
	default:
		col := collatorFor(lang)
		sort.SliceStable(ls, func(i, j int) bool {
			return col.CompareString(ls[i].Name.In(lang), ls[j].Name.In(lang)) < 0
		})
	}
}

// deadlineLess orders by calendar date; listings without a valid date go last.
func deadlineLess(a, b domain.Listing) bool {
	ta, okA := a.DeadlineTime()
	tb, okB := b.DeadlineTime()
	switch {
	case okA && okB:
		return ta.Before(tb)
	case okA:
		return true
	default:
		return false
	}
}

// firstDestination is the first lower-cased destination token, or "" which
// sorts first.
func firstDestination(l domain.Listing, lang string) string {
	tokens := normalize.SplitLower(l.DestinationIn(lang))
	if len(tokens) == 0 {
		return ""
	}
	return tokens[0]
}

func collatorFor(lang string) *collate.Collator {
	tag := language.English
	if lang == domain.LangAR {
		tag = language.Arabic
	}
	return collate.New(tag)
}

func normalizeLang(lang string) string {
	if strings.EqualFold(strings.TrimSpace(lang), domain.LangAR) {
		return domain.LangAR
	}
	return domain.LangEN
}
