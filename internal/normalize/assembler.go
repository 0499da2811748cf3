package normalize

import (
	"fmt"
	"strings"

	"github.com/samvad-hq/scholarship-directory/internal/domain"
)

// DefaultField is used when a row carries no field of study.
const DefaultField = "general"

// Assembler turns header-keyed rows into canonical listings.
type Assembler struct {
	// Prefix is used to synthesize ids for rows without one, e.g. "csv".
	Prefix string

	// Source is stamped on every assembled listing.
	Source string

	Variants Variants
}

// Assemble builds the listing for the row at idx (zero-based among data rows).
// ok is false when the row has no name in either language.
func (a Assembler) Assemble(row Row, idx int) (domain.Listing, bool) {
	pick := func(key string) string { return Pick(row, a.Variants.For(key)) }

	name := domain.Text{EN: pick(KeyNameEN), AR: pick(KeyNameAR)}
	if name.Empty() {
		return domain.Listing{}, false
	}

	id := pick(KeyID)
	if id == "" {
		id = SyntheticID(a.Prefix, idx)
	}

	field := pick(KeyField)
	if field == "" {
		field = DefaultField
	}

	l := domain.Listing{
		ID:          id,
		Name:        name,
		Field:       strings.ToLower(field),
		DegreeLevel: DegreeLevel(pick(KeyDegreeLevel)),
		Destination: Destination(pick(KeyDestinationEN), pick(KeyDestinationAR), pick(KeyDestination)),
		Deadline:    pick(KeyDeadline),
		ApplyURL:    pick(KeyApplyURL),
		Description: domain.Text{EN: pick(KeyDescriptionEN), AR: pick(KeyDescriptionAR)},
		Source:      a.Source,
	}
	_, l.DeadlineValid = domain.ParseDeadline(l.Deadline)
	return l, true
}

// Table assembles every data row of a parsed sheet whose first row is the
// header. Blank rows are skipped; dropped counts nameless rows.
func (a Assembler) Table(rows [][]string) (listings []domain.Listing, dropped int) {
	if len(rows) < 2 {
		return nil, 0
	}
	headers := Headers(rows[0])

	idx := 0
	for _, cells := range rows[1:] {
		if BlankRow(cells) {
			continue
		}
		l, ok := a.Assemble(RowFromCells(headers, cells), idx)
		idx++
		if !ok {
			dropped++
			continue
		}
		listings = append(listings, l)
	}
	return listings, dropped
}

// SyntheticID builds "<prefix>-<idx+1>".
func SyntheticID(prefix string, idx int) string {
	if prefix == "" {
		prefix = "row"
	}
	return fmt.Sprintf("%s-%d", prefix, idx+1)
}

// Destination resolves the bilingual destination. Language-specific values
// win; the generic value fills whichever side is missing. It returns nil when
// nothing is known.
func Destination(en, ar, generic string) *domain.Text {
	en, ar, generic = strings.TrimSpace(en), strings.TrimSpace(ar), strings.TrimSpace(generic)
	if en == "" {
		en = generic
	}
	if ar == "" {
		ar = generic
	}
	if en == "" && ar == "" {
		return nil
	}
	return &domain.Text{EN: en, AR: ar}
}

// UniqueIDs makes ids unique within the set by suffixing repeats with -2, -3...
// The slice is modified in place and returned.
func UniqueIDs(listings []domain.Listing) []domain.Listing {
	seen := make(map[string]int, len(listings))
	for i := range listings {
		id := listings[i].ID
		n := seen[id]
		seen[id] = n + 1
		if n == 0 {
			continue
		}
		candidate := fmt.Sprintf("%s-%d", id, n+1)
		for seen[candidate] > 0 {
			n++
			candidate = fmt.Sprintf("%s-%d", id, n+1)
		}
		seen[candidate] = 1
		listings[i].ID = candidate
	}
	return listings
}
