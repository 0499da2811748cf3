package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samvad-hq/scholarship-directory/internal/domain"
)

func ids(ls []domain.Listing) []string {
	out := make([]string, 0, len(ls))
	for _, l := range ls {
		out = append(out, l.ID)
	}
	return out
}

func withDeadline(id, deadline string) domain.Listing {
	_, ok := domain.ParseDeadline(deadline)
	return domain.Listing{ID: id, Name: domain.Text{EN: id}, Deadline: deadline, DeadlineValid: ok}
}

func TestRunSortsByDeadlineWithInvalidLast(t *testing.T) {
	in := []domain.Listing{
		withDeadline("x", "not a date"),
		withDeadline("late", "2026-03-01"),
		withDeadline("y", ""),
		withDeadline("early", "2025-11-02"),
		withDeadline("mid", "2026-01-15T00:00:00"),
	}

	got := Run(in, Params{})
	assert.Equal(t, []string{"early", "mid", "late", "x", "y"}, ids(got))
	assert.Equal(t, "x", in[0].ID, "input must not be reordered")
}

func TestRunCategoricalFilters(t *testing.T) {
	in := []domain.Listing{
		{ID: "1", Field: "engineering, medicine", DegreeLevel: "masters"},
		{ID: "2", Field: "business", DegreeLevel: "bachelor, masters"},
		{ID: "3", Field: "Medicine", DegreeLevel: "phd"},
	}

	assert.Equal(t, []string{"1", "3"}, ids(Run(in, Params{Field: "medicine"})))
	assert.Equal(t, []string{"1", "2"}, ids(Run(in, Params{DegreeLevel: "masters"})))
	assert.Equal(t, []string{"1", "2", "3"}, ids(Run(in, Params{Field: All, DegreeLevel: "ALL"})))
	assert.Empty(t, Run(in, Params{Field: "law"}))
}

func TestRunTextSearch(t *testing.T) {
	in := []domain.Listing{
		{
			ID:          "1",
			Name:        domain.Text{EN: "Chevening Scholarships", AR: "منح تشيفنينج"},
			Description: domain.Text{EN: "Fully funded study in the UK"},
			Destination: &domain.Text{EN: "UK", AR: "المملكة المتحدة"},
			Field:       "engineering",
		},
		{
			ID:          "2",
			Name:        domain.Text{EN: "DAAD Grant"},
			Destination: &domain.Text{EN: "Germany, Austria"},
			Field:       "science",
		},
	}

	cases := map[string][]string{
		"chevening": {"1"},
		"تشيفنينج":  {"1"},
		"FUNDED":    {"1"},
		"austria":   {"2"},
		"scien":     {"2"},
		"المتحدة":   {"1"},
		"nothing":   {},
	}
	for q, want := range cases {
		got := ids(Run(in, Params{Text: q, Sort: SortName}))
		assert.Equal(t, want, got, "query %q", q)
	}
}

func TestRunDestinationFilterUsesActiveLanguage(t *testing.T) {
	in := []domain.Listing{
		{ID: "1", Destination: &domain.Text{EN: "Egypt, Lebanon", AR: "مصر، لبنان"}},
		{ID: "2", Destination: &domain.Text{EN: "Sudan", AR: "السودان"}},
		{ID: "3"},
	}

	assert.Equal(t, []string{"1"}, ids(Run(in, Params{Destination: "lebanon"})))
	assert.Equal(t, []string{"1"}, ids(Run(in, Params{Destination: "لبنان", Lang: "ar"})))
	assert.Empty(t, Run(in, Params{Destination: "لبنان", Lang: "en"}))
}

func TestRunSortsByDestination(t *testing.T) {
	in := []domain.Listing{
		{ID: "s", Destination: &domain.Text{EN: "Sudan"}},
		{ID: "none"},
		{ID: "e", Destination: &domain.Text{EN: "egypt, Zambia"}},
	}

	got := Run(in, Params{Sort: SortDestination})
	assert.Equal(t, []string{"none", "e", "s"}, ids(got))
}

func TestRunSortsByNameAndFallsBackForUnknownKeys(t *testing.T) {
	in := []domain.Listing{
		{ID: "b", Name: domain.Text{EN: "beta"}},
		{ID: "a", Name: domain.Text{EN: "Alpha"}},
		{ID: "c", Name: domain.Text{EN: "Gamma"}},
	}

	assert.Equal(t, []string{"a", "b", "c"}, ids(Run(in, Params{Sort: SortName})))
	assert.Equal(t, []string{"a", "b", "c"}, ids(Run(in, Params{Sort: "popularity"})))
}

func TestDistinctOptions(t *testing.T) {
	in := []domain.Listing{
		{Field: "Engineering, Robotics", DegreeLevel: "masters", Destination: &domain.Text{EN: "UK", AR: "المملكة المتحدة"}},
		{Field: "medicine", DegreeLevel: "phd, masters", Destination: &domain.Text{EN: "Egypt, UK"}},
	}

	fields := DistinctOptions(in, DimensionField, "en")
	assert.Contains(t, fields, "robotics")
	assert.Contains(t, fields, "various")
	assert.NotContains(t, fields, "Engineering")
	assert.IsNonDecreasing(t, fields)

	degrees := DistinctOptions(in, DimensionDegreeLevel, "en")
	assert.Contains(t, degrees, "internship")
	assert.Contains(t, degrees, "masters")

	assert.Equal(t, []string{"Egypt", "UK"}, DistinctOptions(in, DimensionDestination, "en"))
	assert.Equal(t, []string{"Egypt", "UK", "المملكة المتحدة"}, DistinctOptions(in, DimensionDestination, "ar"))
	assert.Nil(t, DistinctOptions(in, Dimension("unknown"), "en"))
}

func TestAllOptionsWithoutListings(t *testing.T) {
	opts := AllOptions(nil, "ar")
	require.Len(t, opts.Fields, len(DefaultFields))
	assert.Empty(t, opts.Destinations)
}

func TestRunNameSortFallsBackToOtherLanguage(t *testing.T) {
	in := []domain.Listing{
		{ID: "b", Name: domain.Text{EN: "beta"}},
		{ID: "a", Name: domain.Text{EN: "Alpha"}},
	}

	assert.Equal(t, []string{"a", "b"}, ids(Run(in, Params{Sort: SortName, Lang: "ar"})))
}
