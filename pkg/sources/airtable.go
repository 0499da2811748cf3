package sources

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/samvad-hq/scholarship-directory/internal/domain"
	"github.com/samvad-hq/scholarship-directory/internal/normalize"
)

const defaultAirtableEndpoint = "https://api.airtable.com"

// maxAirtablePages bounds paging; a table still offering an offset after it
// fails the load instead of returning a truncated set.
var maxAirtablePages = 100

// ErrTooManyPages is returned when a table has more than maxAirtablePages pages.
var ErrTooManyPages = errors.New("airtable table exceeds page limit")

type airtablePage struct {
	Records []airtableRecord `json:"records"`
	Offset  string           `json:"offset"`
}

type airtableRecord struct {
	ID     string         `json:"id"`
	Fields map[string]any `json:"fields"`
}

// airtableFetcher implements Fetcher for the record-store API.
type airtableFetcher struct {
	client   HTTPClient
	variants normalize.Variants
}

// NewAirtableFetcher builds a fetcher for Airtable tables.
func NewAirtableFetcher(client HTTPClient, variants normalize.Variants) Fetcher {
	if client == nil {
		client = DefaultHTTPClient()
	}
	return &airtableFetcher{client: client, variants: variants}
}

func (f *airtableFetcher) Type() string { return TypeAirtable }

func (f *airtableFetcher) Fetch(ctx context.Context, src Source) ([]domain.Listing, error) {
	if src.Airtable == nil {
		return nil, fmt.Errorf("source %q missing airtable configuration", src.ID)
	}
	cfg := *src.Airtable
	key := cfg.Key()
	if key == "" {
		return nil, fmt.Errorf("source %q airtable api key is empty", src.ID)
	}

	headers := mergeHeaders(Headers(src), map[string]string{
		"Authorization": "Bearer " + key,
		"Accept":        "application/json",
	})

	var records []airtableRecord
	offset := ""
	for page := 0; ; page++ {
		if page == maxAirtablePages {
			return nil, fmt.Errorf("%w (%d pages)", ErrTooManyPages, maxAirtablePages)
		}
		body, err := fetchBody(ctx, f.client, airtableURL(cfg, offset), "Airtable", headers)
		if err != nil {
			return nil, err
		}
		var p airtablePage
		if err := json.Unmarshal(body, &p); err != nil {
			return nil, fmt.Errorf("decode airtable page: %w", err)
		}
		records = append(records, p.Records...)
		if p.Offset == "" {
			break
		}
		offset = p.Offset
	}

	listings := mapAirtableRecords(records, normalize.Assembler{
		Prefix:   "at",
		Source:   src.ID,
		Variants: f.variants,
	})
	if len(listings) == 0 {
		return nil, ErrNoListings
	}
	return listings, nil
}

func airtableURL(cfg AirtableConfig, offset string) string {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = defaultAirtableEndpoint
	}
	u := fmt.Sprintf("%s/v0/%s/%s", endpoint, url.PathEscape(cfg.BaseID), url.PathEscape(cfg.TableID))
	if offset != "" {
		u += "?offset=" + url.QueryEscape(offset)
	}
	return u
}

// mapAirtableRecords normalizes field names the same way spreadsheet headers
// are normalized ("DestinationEN" -> "destinationen") so records share the
// header synonym table. The record id always wins over any id field.
func mapAirtableRecords(records []airtableRecord, asm normalize.Assembler) []domain.Listing {
	out := make([]domain.Listing, 0, len(records))
	for idx, rec := range records {
		row := make(normalize.Row, len(rec.Fields))
		for name, val := range rec.Fields {
			key := normalize.Header(name)
			if text := airtableText(val); text != "" || row[key] == "" {
				row[key] = text
			}
		}
		l, ok := asm.Assemble(row, idx)
		if !ok {
			continue
		}
		if id := strings.TrimSpace(rec.ID); id != "" {
			l.ID = id
		}
		out = append(out, l)
	}
	return out
}

// airtableText flattens a field value. Multi-select and lookup fields arrive
// as arrays and are comma-joined.
func airtableText(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	case []any:
		parts := make([]string, 0, len(val))
		for _, item := range val {
			if s := airtableText(item); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	default:
		return strings.TrimSpace(fmt.Sprint(val))
	}
}
