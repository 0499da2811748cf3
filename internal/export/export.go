package export

import (
	"github.com/samvad-hq/scholarship-directory/internal/domain"
	"github.com/samvad-hq/scholarship-directory/pkg/tabular"
)

// Columns is the canonical export header. It round-trips through the CSV
// source without any synonym lookups.
var Columns = []string{
	"id",
	"name_en",
	"name_ar",
	"field",
	"degree_level",
	"destination",
	"deadline",
	"apply_url",
	"description_en",
	"description_ar",
}

// Row flattens one listing in Columns order. Destination is written from the
// English side, falling back to Arabic.
func Row(l domain.Listing) []string {
	return []string{
		l.ID,
		l.Name.EN,
		l.Name.AR,
		l.Field,
		l.DegreeLevel,
		l.DestinationIn(domain.LangEN),
		l.Deadline,
		l.ApplyURL,
		l.Description.EN,
		l.Description.AR,
	}
}

// CSV renders listings as CSV text with the canonical header.
func CSV(listings []domain.Listing) string {
	rows := make([][]string, len(listings))
	for i, l := range listings {
		rows[i] = Row(l)
	}
	return tabular.Encode(Columns, rows)
}
