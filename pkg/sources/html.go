package sources

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/samvad-hq/scholarship-directory/internal/domain"
	"github.com/samvad-hq/scholarship-directory/internal/normalize"
)

// maxHTMLBodyBytes caps a published sheet; larger pages are rejected rather
// than parsed partially.
var maxHTMLBodyBytes = 4 << 20 // 4 MiB

// ErrBodyTooLarge is returned when a published sheet exceeds maxHTMLBodyBytes.
var ErrBodyTooLarge = errors.New("published sheet is too large")

// htmlFetcher implements Fetcher for sheets published to the web as HTML.
type htmlFetcher struct {
	client   HTTPClient
	variants normalize.Variants
}

// NewHTMLFetcher builds a fetcher for published HTML tables.
func NewHTMLFetcher(client HTTPClient, variants normalize.Variants) Fetcher {
	if client == nil {
		client = DefaultHTTPClient()
	}
	return &htmlFetcher{client: client, variants: variants}
}

func (f *htmlFetcher) Type() string { return TypeHTML }

func (f *htmlFetcher) Fetch(ctx context.Context, src Source) ([]domain.Listing, error) {
	if strings.TrimSpace(src.URL) == "" {
		return nil, fmt.Errorf("source %q url is empty", src.ID)
	}

	headers := mergeHeaders(Headers(src), map[string]string{"Accept": "text/html"})
	body, err := fetchBody(ctx, f.client, src.URL, "published sheet", headers)
	if err != nil {
		return nil, err
	}
	if len(body) > maxHTMLBodyBytes {
		return nil, fmt.Errorf("%w: %d bytes exceeds %d", ErrBodyTooLarge, len(body), maxHTMLBodyBytes)
	}

	rows, err := parseHTMLTable(body)
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return nil, ErrHeaderOnly
	}

	listings, _ := normalize.Assembler{
		Prefix:   "html",
		Source:   src.ID,
		Variants: f.variants,
	}.Table(rows)
	if len(listings) == 0 {
		return nil, ErrNoListings
	}
	return listings, nil
}

// parseHTMLTable extracts the first table's rows. Google's published sheets
// prefix rows with a row-number <th> and add a letter header row; both are
// dropped so the first remaining non-blank row is the sheet's own header.
func parseHTMLTable(body []byte) ([][]string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	table := doc.Find("table").First()
	if table.Length() == 0 {
		return nil, fmt.Errorf("published sheet has no table")
	}

	var rows [][]string
	table.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		cells := tr.Find("td")
		if cells.Length() == 0 {
			return
		}
		row := make([]string, 0, cells.Length())
		cells.Each(func(_ int, td *goquery.Selection) {
			row = append(row, strings.TrimSpace(td.Text()))
		})
		if len(rows) == 0 && normalize.BlankRow(row) {
			return
		}
		rows = append(rows, row)
	})
	return rows, nil
}
