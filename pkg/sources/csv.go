package sources

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/samvad-hq/scholarship-directory/internal/domain"
	"github.com/samvad-hq/scholarship-directory/internal/normalize"
	"github.com/samvad-hq/scholarship-directory/pkg/tabular"
)

// Errors describing CSV payloads that parse but carry no usable data.
var (
	ErrNoRows     = errors.New("CSV is empty after parsing")
	ErrHeaderOnly = errors.New("CSV has headers but no data rows")
	ErrNoDataRows = errors.New("no valid data rows found in CSV")
	ErrNoListings = errors.New("no valid scholarships found after parsing")
)

// csvFetcher implements Fetcher for spreadsheets published as CSV.
type csvFetcher struct {
	client   HTTPClient
	variants normalize.Variants
}

// NewCSVFetcher builds a fetcher for CSV exports.
func NewCSVFetcher(client HTTPClient, variants normalize.Variants) Fetcher {
	if client == nil {
		client = DefaultHTTPClient()
	}
	return &csvFetcher{client: client, variants: variants}
}

func (f *csvFetcher) Type() string { return TypeCSV }

func (f *csvFetcher) Fetch(ctx context.Context, src Source) ([]domain.Listing, error) {
	if strings.TrimSpace(src.URL) == "" {
		return nil, fmt.Errorf("source %q url is empty", src.ID)
	}

	headers := mergeHeaders(Headers(src), map[string]string{"Accept": "text/csv"})
	body, err := fetchBody(ctx, f.client, CSVExportURL(src.URL), "CSV", headers)
	if err != nil {
		return nil, err
	}

	return ParseCSVListings(string(body), normalize.Assembler{
		Prefix:   "csv",
		Source:   src.ID,
		Variants: f.variants,
	})
}

// ParseCSVListings runs CSV text through the tokenizer and assembler. It fails
// only when nothing usable remains.
func ParseCSVListings(text string, asm normalize.Assembler) ([]domain.Listing, error) {
	if strings.TrimSpace(strings.TrimPrefix(text, "\ufeff")) == "" {
		return nil, ErrEmptyBody
	}

	rows := tabular.Parse(text)
	switch len(rows) {
	case 0:
		return nil, ErrNoRows
	case 1:
		return nil, ErrHeaderOnly
	}

	nonBlank := 0
	for _, r := range rows[1:] {
		if !normalize.BlankRow(r) {
			nonBlank++
		}
	}
	if nonBlank == 0 {
		return nil, ErrNoDataRows
	}

	listings, _ := asm.Table(rows)
	if len(listings) == 0 {
		return nil, ErrNoListings
	}
	return listings, nil
}
