package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samvad-hq/scholarship-directory/internal/catalog"
	"github.com/samvad-hq/scholarship-directory/internal/domain"
	"github.com/samvad-hq/scholarship-directory/pkg/sources"
)

type fakeDirectory struct {
	snap       *catalog.Snapshot
	reloadErr  error
	reloadedTo string
}

func (f *fakeDirectory) Snapshot() *catalog.Snapshot { return f.snap }

func (f *fakeDirectory) Reload(_ context.Context, sourceID string) (catalog.Result, error) {
	if f.reloadErr != nil {
		return catalog.Result{}, f.reloadErr
	}
	f.reloadedTo = sourceID
	return catalog.Result{Snapshot: f.snap, Committed: true}, nil
}

func newFakeDirectory() *fakeDirectory {
	listings := []domain.Listing{
		{ID: "1", Name: domain.Text{EN: "Bravo", AR: "ب"}, Field: "engineering, medicine", Deadline: "2025-03-01", DeadlineValid: true, Destination: &domain.Text{EN: "UK", AR: "المملكة المتحدة"}},
		{ID: "2", Name: domain.Text{EN: "Alpha", AR: "أ"}, Field: "business", Deadline: "2025-01-15", DeadlineValid: true, Destination: &domain.Text{EN: "Germany", AR: "ألمانيا"}},
	}
	return &fakeDirectory{snap: &catalog.Snapshot{
		Listings:   listings,
		State:      catalog.StateDegraded,
		SourceID:   "fallback",
		Diagnostic: "Failed to load scholarships from Google Sheets (CSV): status 500. Using local data.",
	}}
}

func doRequest(t *testing.T, h http.Handler, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func TestListScholarshipsFiltersAndSorts(t *testing.T) {
	h := NewHandler(newFakeDirectory(), nil)

	rec := doRequest(t, h, http.MethodGet, "/api/scholarships?field=medicine")
	require.Equal(t, http.StatusOK, rec.Code)

	var body ListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Items, 1)
	assert.Equal(t, "1", body.Items[0].ID)
	assert.Equal(t, catalog.StateDegraded, body.State)
	assert.Contains(t, body.Diagnostic, "Using local data.")
	assert.Equal(t, 2, body.Count)

	rec = doRequest(t, h, http.MethodGet, "/api/scholarships?sort=deadline")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Items, 2)
	assert.Equal(t, "2", body.Items[0].ID)
}

func TestListScholarshipsFlagsClosingSoon(t *testing.T) {
	now := time.Now().UTC()
	dir := &fakeDirectory{snap: &catalog.Snapshot{
		State: catalog.StateReady,
		Listings: []domain.Listing{
			{ID: "soon", Name: domain.Text{EN: "Soon"}, Deadline: now.AddDate(0, 0, 10).Format(domain.DeadlineLayout)},
			{ID: "later", Name: domain.Text{EN: "Later"}, Deadline: now.AddDate(0, 0, 90).Format(domain.DeadlineLayout)},
			{ID: "past", Name: domain.Text{EN: "Past"}, Deadline: now.AddDate(0, 0, -5).Format(domain.DeadlineLayout)},
			{ID: "bad", Name: domain.Text{EN: "Bad"}, Deadline: "soon"},
		},
	}}

	rec := doRequest(t, NewHandler(dir, nil), http.MethodGet, "/api/scholarships")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"closing_soon":true`)

	var body ListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	flags := make(map[string]bool, len(body.Items))
	for _, item := range body.Items {
		flags[item.ID] = item.ClosingSoon
	}
	assert.Equal(t, map[string]bool{"soon": true, "later": false, "past": false, "bad": false}, flags)
}

func TestOptionsUseRequestedLanguage(t *testing.T) {
	h := NewHandler(newFakeDirectory(), nil)

	rec := doRequest(t, h, http.MethodGet, "/api/options?lang=ar")
	require.Equal(t, http.StatusOK, rec.Code)

	var opts struct {
		Destinations []string `json:"destinations"`
		Fields       []string `json:"fields"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &opts))
	assert.Contains(t, opts.Destinations, "ألمانيا")
	assert.Contains(t, opts.Fields, "various")
}

func TestReloadSwitchesSource(t *testing.T) {
	dir := newFakeDirectory()
	h := NewHandler(dir, nil)

	rec := doRequest(t, h, http.MethodPost, "/api/reload?source=airtable")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "airtable", dir.reloadedTo)

	var st Status
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &st))
	assert.False(t, st.Stale)
}

func TestReloadUnknownSourceIsNotFound(t *testing.T) {
	dir := newFakeDirectory()
	dir.reloadErr = fmt.Errorf("source %q: %w", "nope", sources.ErrUnknownSource)

	rec := doRequest(t, NewHandler(dir, nil), http.MethodPost, "/api/reload?source=nope")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestReloadFailureIsServerError(t *testing.T) {
	dir := newFakeDirectory()
	dir.reloadErr = errors.New("registry closed")

	rec := doRequest(t, NewHandler(dir, nil), http.MethodPost, "/api/reload")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestReloadRequiresPost(t *testing.T) {
	rec := doRequest(t, NewHandler(newFakeDirectory(), nil), http.MethodGet, "/api/reload")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHealthz(t *testing.T) {
	rec := doRequest(t, NewHandler(newFakeDirectory(), nil), http.MethodGet, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}
