package sources

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/samvad-hq/scholarship-directory/internal/domain"
	"github.com/samvad-hq/scholarship-directory/internal/normalize"
)

// Positional gviz columns.
const (
	gvizColID = iota
	gvizColNameEN
	gvizColNameAR
	gvizColField
	gvizColDegreeLevel
	gvizColDestinationEN
	gvizColDestinationAR
	gvizColDeadline
	gvizColApplyURL
	gvizColDescriptionEN
	gvizColDescriptionAR
)

var (
	gvizEnvelope = regexp.MustCompile(`(?s)google\.visualization\.Query\.setResponse\((.*)\)`)
	gvizDate     = regexp.MustCompile(`^Date\((\d+),(\d+),(\d+)`)

	// ErrGvizEnvelope is returned when the body is not a setResponse(...) payload.
	ErrGvizEnvelope = errors.New("invalid Google Sheets response format")
)

type gvizResponse struct {
	Status string `json:"status"`
	Errors []struct {
		Reason          string `json:"reason"`
		Message         string `json:"message"`
		DetailedMessage string `json:"detailed_message"`
	} `json:"errors"`
	Table *struct {
		Rows []struct {
			C []*gvizCell `json:"c"`
		} `json:"rows"`
	} `json:"table"`
}

type gvizCell struct {
	V any    `json:"v"`
	F string `json:"f"`
}

// gvizFetcher implements Fetcher for the tabular-query JSON protocol.
type gvizFetcher struct {
	client HTTPClient
}

// NewGvizFetcher builds a fetcher for gviz/tq endpoints.
func NewGvizFetcher(client HTTPClient) Fetcher {
	if client == nil {
		client = DefaultHTTPClient()
	}
	return &gvizFetcher{client: client}
}

func (f *gvizFetcher) Type() string { return TypeGviz }

func (f *gvizFetcher) Fetch(ctx context.Context, src Source) ([]domain.Listing, error) {
	if strings.TrimSpace(src.URL) == "" {
		return nil, fmt.Errorf("source %q url is empty", src.ID)
	}

	body, err := fetchBody(ctx, f.client, NormalizeSheetURL(src.URL), "Google Sheets", Headers(src))
	if err != nil {
		return nil, err
	}

	listings, err := ParseGviz(body, src.ID)
	if err != nil {
		return nil, err
	}
	if len(listings) == 0 {
		return nil, ErrNoListings
	}
	return listings, nil
}

// ParseGviz unwraps the callback envelope and maps cells positionally.
func ParseGviz(body []byte, sourceID string) ([]domain.Listing, error) {
	m := gvizEnvelope.FindSubmatch(body)
	if m == nil {
		return nil, ErrGvizEnvelope
	}

	var resp gvizResponse
	if err := json.Unmarshal(m[1], &resp); err != nil {
		return nil, fmt.Errorf("decode gviz payload: %w", err)
	}
	if strings.EqualFold(resp.Status, "error") {
		msgs := make([]string, 0, len(resp.Errors))
		for _, e := range resp.Errors {
			msgs = append(msgs, strings.TrimSpace(e.Reason+": "+e.DetailedMessage))
		}
		return nil, fmt.Errorf("gviz query error: %s", strings.Join(msgs, "; "))
	}
	if resp.Table == nil {
		return nil, fmt.Errorf("gviz payload has no table")
	}

	listings := make([]domain.Listing, 0, len(resp.Table.Rows))
	for idx, row := range resp.Table.Rows {
		cell := func(i int) string {
			if i >= len(row.C) {
				return ""
			}
			return row.C[i].text()
		}

		name := domain.Text{EN: cell(gvizColNameEN), AR: cell(gvizColNameAR)}
		if name.Empty() {
			continue
		}

		id := cell(gvizColID)
		if id == "" {
			id = normalize.SyntheticID("gs", idx)
		}
		field := cell(gvizColField)
		if field == "" {
			field = normalize.DefaultField
		}

		// Each destination side mirrors the other when one is missing.
		destEN, destAR := cell(gvizColDestinationEN), cell(gvizColDestinationAR)
		var dest *domain.Text
		if destEN != "" || destAR != "" {
			dest = normalize.Destination(destEN, destAR, "")
			if dest.EN == "" {
				dest.EN = destAR
			}
			if dest.AR == "" {
				dest.AR = destEN
			}
		}

		l := domain.Listing{
			ID:          id,
			Name:        name,
			Field:       strings.ToLower(field),
			DegreeLevel: normalize.DegreeLevel(cell(gvizColDegreeLevel)),
			Destination: dest,
			Deadline:    gvizDeadline(row.C, gvizColDeadline),
			ApplyURL:    cell(gvizColApplyURL),
			Description: domain.Text{EN: cell(gvizColDescriptionEN), AR: cell(gvizColDescriptionAR)},
			Source:      sourceID,
		}
		_, l.DeadlineValid = domain.ParseDeadline(l.Deadline)
		listings = append(listings, l)
	}
	return listings, nil
}

func (c *gvizCell) text() string {
	if c == nil || c.V == nil {
		return ""
	}
	switch v := c.V.(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

// gvizDeadline converts date cells, which gviz encodes as "Date(y,m,d)" with a
// zero-based month, to ISO dates. Other values pass through.
func gvizDeadline(cells []*gvizCell, i int) string {
	if i >= len(cells) {
		return ""
	}
	raw := cells[i].text()
	m := gvizDate.FindStringSubmatch(raw)
	if m == nil {
		return raw
	}
	y, _ := strconv.Atoi(m[1])
	mon, _ := strconv.Atoi(m[2])
	d, _ := strconv.Atoi(m[3])
	return fmt.Sprintf("%04d-%02d-%02d", y, mon+1, d)
}
