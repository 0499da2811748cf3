package sources

import (
	"context"
	"errors"
	"strings"
	"testing"
)

const gvizBody = `/*O_o*/
google.visualization.Query.setResponse({"version":"0.6","status":"ok","table":{"rows":[
{"c":[{"v":"s1"},{"v":"Erasmus Mundus"},{"v":"إيراسموس"},{"v":"Engineering"},{"v":"Bachelors"},{"v":"Europe"},null,{"v":"Date(2025,1,15)","f":"2/15/2025"},{"v":"https://example.org"},{"v":"Joint master"},{"v":"ماجستير"}]},
{"c":[null,null,null,{"v":"science"}]},
{"c":[{"v":42},{"v":"Numeric id"},null,null,null,null,{"v":"ألمانيا"},{"v":"2025-10-31"}]},
{"c":[null,{"v":"No id"}]}
]}});`

func TestParseGvizMapsColumnsPositionally(t *testing.T) {
	listings, err := ParseGviz([]byte(gvizBody), "gs-sheet")
	if err != nil {
		t.Fatalf("ParseGviz: %v", err)
	}
	if len(listings) != 3 {
		t.Fatalf("expected 3 listings, got %d", len(listings))
	}

	first := listings[0]
	if first.ID != "s1" || first.Field != "engineering" || first.DegreeLevel != "bachelor" {
		t.Errorf("unexpected first listing %+v", first)
	}
	if first.Deadline != "2025-02-15" || !first.DeadlineValid {
		t.Errorf("date cell not converted: %q", first.Deadline)
	}
	if first.Destination == nil || first.Destination.AR != "Europe" {
		t.Errorf("missing arabic destination should mirror english, got %+v", first.Destination)
	}

	second := listings[1]
	if second.ID != "42" || second.Field != "general" {
		t.Errorf("unexpected second listing %+v", second)
	}
	if second.Destination == nil || second.Destination.EN != "ألمانيا" {
		t.Errorf("missing english destination should mirror arabic, got %+v", second.Destination)
	}

	if listings[2].ID != "gs-4" || listings[2].Destination != nil {
		t.Errorf("synthetic id should use the row position, got %+v", listings[2])
	}
}

func TestParseGvizRejectsBadPayloads(t *testing.T) {
	if _, err := ParseGviz([]byte("<html>login</html>"), "s"); !errors.Is(err, ErrGvizEnvelope) {
		t.Fatalf("expected ErrGvizEnvelope, got %v", err)
	}

	errBody := `google.visualization.Query.setResponse({"status":"error","errors":[{"reason":"access_denied","detailed_message":"Sheet is private"}]});`
	_, err := ParseGviz([]byte(errBody), "s")
	if err == nil || !strings.Contains(err.Error(), "Sheet is private") {
		t.Fatalf("expected gviz error message, got %v", err)
	}
}

func TestGvizFetcherNormalizesSharingLinks(t *testing.T) {
	const want = "https://docs.google.com/spreadsheets/d/abc123/gviz/tq?tqx=out:json"
	client := &mockHTTPClient{t: t, replies: map[string]stubReply{want: {body: gvizBody}}}

	listings, err := NewGvizFetcher(client).Fetch(context.Background(), Source{
		ID:  "sheet",
		URL: "https://docs.google.com/spreadsheets/d/abc123/edit#gid=0",
	})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(listings) != 3 || listings[0].Source != "sheet" {
		t.Fatalf("unexpected listings %+v", listings)
	}
}
