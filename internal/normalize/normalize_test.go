package normalize

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samvad-hq/scholarship-directory/internal/domain"
)

func TestHeader(t *testing.T) {
	cases := map[string]string{
		"Name (EN)":        "name_en",
		"  name_en ":       "name_en",
		"NameEN":           "nameen",
		"Name(EN)":         "nameen",
		"Application  URL": "application_url",
		"Deadline*":        "deadline",
	}
	for in, want := range cases {
		assert.Equal(t, want, Header(in), "header %q", in)
	}
}

func TestPickResolvesSynonymHeaders(t *testing.T) {
	for _, header := range []string{"Name (EN)", "name_en", "NameEN"} {
		row := RowFromCells(Headers([]string{header}), []string{" Chevening "})
		assert.Equal(t, "Chevening", Pick(row, DefaultVariants().For(KeyNameEN)), "header %q", header)
	}
}

func TestPickHonoursPriority(t *testing.T) {
	row := Row{"title": "Generic", "name_en": "Specific"}
	assert.Equal(t, "Specific", Pick(row, DefaultVariants()[KeyNameEN]))
	assert.Empty(t, Pick(row, []string{"missing"}))
}

func TestRowFromCellsKeepsNonBlankDuplicate(t *testing.T) {
	row := RowFromCells([]string{"name", "name", "extra"}, []string{"first", "  ", "x", "ignored"})
	assert.Equal(t, "first", row["name"])
	assert.Equal(t, "x", row["extra"])
	assert.Len(t, row, 2)

	row = RowFromCells([]string{"name", "name"}, []string{"first", "second"})
	assert.Equal(t, "second", row["name"])
}

func TestDegreeLevel(t *testing.T) {
	cases := map[string]string{
		"Bachelors":          "bachelor",
		"undergraduate":      "bachelor",
		" Masters ":          "masters",
		"PhD":                "phd",
		"workshop":           "workshop",
		"":                   "",
		"Bachelors, Masters": "bachelor, masters",
	}
	for in, want := range cases {
		assert.Equal(t, want, DegreeLevel(in), "degree %q", in)
	}
	assert.Equal(t, "bachelor, phd", DegreeLevel("undergraduate،Doctorate"))
}

func TestSplitMixedDelimiters(t *testing.T) {
	assert.Equal(t, []string{"Egypt", "Lebanon", "Sudan"}, Split("Egypt، Lebanon, Sudan"))
	assert.Equal(t, []string{"a", "b"}, Split(" a ,, b ,"))
	assert.Nil(t, Split("   "))
	assert.Equal(t, []string{"uk", "usa"}, SplitLower("UK, USA"))
}

func TestAssembleDropsNamelessRows(t *testing.T) {
	rows := [][]string{
		{"Name (EN)", "name_ar", "Category", "Deadline"},
		{"", "", "engineering", "2025-01-01"},
		{"", "", "", ""},
		{"", "منحة", "", "not a date"},
		{"Alpha", "", "Medicine, Law", "2025-02-30"},
	}

	listings, dropped := Assembler{Prefix: "csv", Source: "sheet"}.Table(rows)
	require.Len(t, listings, 2)
	assert.Equal(t, 1, dropped)

	ar := listings[0]
	assert.Equal(t, "csv-2", ar.ID)
	assert.Equal(t, "منحة", ar.Name.AR)
	assert.Equal(t, DefaultField, ar.Field)
	assert.False(t, ar.DeadlineValid)
	assert.Nil(t, ar.Destination)
	assert.Equal(t, "sheet", ar.Source)

	en := listings[1]
	assert.Equal(t, "csv-3", en.ID)
	assert.Equal(t, "medicine, law", en.Field)
	assert.False(t, en.DeadlineValid, "February 30th is not a calendar date")
}

func TestAssembleDestinationSides(t *testing.T) {
	row := Row{"name": "X", "destination_ar": "مصر", "country": "Egypt"}
	l, ok := Assembler{}.Assemble(row, 0)
	require.True(t, ok)
	require.NotNil(t, l.Destination)
	assert.Equal(t, "Egypt", l.Destination.EN)
	assert.Equal(t, "مصر", l.Destination.AR)
	assert.Equal(t, "row-1", l.ID)
}

func TestUniqueIDs(t *testing.T) {
	var listings []domain.Listing
	for _, id := range []string{"a", "a", "b", "a", "a-2"} {
		listings = append(listings, domain.Listing{ID: id})
	}

	var got []string
	for _, l := range UniqueIDs(listings) {
		got = append(got, l.ID)
	}
	assert.Equal(t, []string{"a", "a-2", "b", "a-3", "a-2-2"}, got)
}

func TestLoadVariantsExtendsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "synonyms.yaml")
	require.NoError(t, os.WriteFile(path, []byte("variants:\n  name.en:\n    - Scholarship Name\n    - name\n"), 0o644))

	v, err := LoadVariants(path)
	require.NoError(t, err)
	list := v.For(KeyNameEN)
	assert.Equal(t, "scholarship_name", list[len(list)-1])
	assert.Equal(t, DefaultVariants()[KeyNameEN], list[:len(list)-1])

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("variants:\n  sponsor: [x]\n"), 0o644))
	_, err = LoadVariants(bad)
	assert.Error(t, err)
}
