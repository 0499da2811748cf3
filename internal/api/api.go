package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/samvad-hq/scholarship-directory/internal/catalog"
	"github.com/samvad-hq/scholarship-directory/internal/domain"
	"github.com/samvad-hq/scholarship-directory/internal/logger"
	"github.com/samvad-hq/scholarship-directory/internal/query"
	"github.com/samvad-hq/scholarship-directory/pkg/sources"
)

// Directory is the runtime the handlers read from and reload through.
type Directory interface {
	Snapshot() *catalog.Snapshot
	Reload(ctx context.Context, sourceID string) (catalog.Result, error)
}

// Status describes the current snapshot without its listings.
type Status struct {
	State      catalog.State `json:"state"`
	Diagnostic string        `json:"diagnostic,omitempty"`
	SourceID   string        `json:"source_id"`
	Count      int           `json:"count"`
	Generation uint64        `json:"generation"`
	LoadedAt   time.Time     `json:"loaded_at"`
	Stale      bool          `json:"stale,omitempty"`
}

// Item is a listing as served, with flags derived at request time.
type Item struct {
	domain.Listing
	ClosingSoon bool `json:"closing_soon"`
}

// ListResponse is the payload of the scholarships endpoint.
type ListResponse struct {
	Status
	Lang  string `json:"lang"`
	Total int    `json:"total"`
	Items []Item `json:"items"`
}

type handler struct {
	dir Directory
	log logger.Logger
	now func() time.Time
}

// NewHandler returns the JSON read API.
func NewHandler(dir Directory, log logger.Logger) http.Handler {
	h := &handler{dir: dir, log: logger.Ensure(log), now: time.Now}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("GET /api/scholarships", h.listScholarships)
	mux.HandleFunc("GET /api/options", h.options)
	mux.HandleFunc("GET /api/status", h.status)
	mux.HandleFunc("POST /api/reload", h.reload)
	return mux
}

func (h *handler) listScholarships(w http.ResponseWriter, r *http.Request) {
	snap := h.dir.Snapshot()
	q := r.URL.Query()
	params := query.Params{
		Text:        q.Get("q"),
		Field:       q.Get("field"),
		DegreeLevel: q.Get("degree_level"),
		Destination: q.Get("destination"),
		Sort:        q.Get("sort"),
		Lang:        langParam(r),
	}

	listings := query.Run(snap.Listings, params)
	now := h.now()
	items := make([]Item, len(listings))
	for i, l := range listings {
		items[i] = Item{Listing: l, ClosingSoon: l.ClosingSoon(now)}
	}
	h.writeJSON(w, http.StatusOK, ListResponse{
		Status: statusOf(snap),
		Lang:   params.Lang,
		Total:  len(items),
		Items:  items,
	})
}

func (h *handler) options(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, query.AllOptions(h.dir.Snapshot().Listings, langParam(r)))
}

func (h *handler) status(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, statusOf(h.dir.Snapshot()))
}

func (h *handler) reload(w http.ResponseWriter, r *http.Request) {
	sourceID := strings.TrimSpace(r.URL.Query().Get("source"))
	res, err := h.dir.Reload(r.Context(), sourceID)
	switch {
	case errors.Is(err, sources.ErrUnknownSource):
		h.writeError(w, http.StatusNotFound, err)
		return
	case err != nil:
		h.log.ErrorObj("reload failed", "api_reload", map[string]any{
			"source_id": sourceID,
			"error":     err.Error(),
		})
		h.writeError(w, http.StatusInternalServerError, err)
		return
	}

	st := statusOf(res.Snapshot)
	st.Stale = !res.Committed
	h.writeJSON(w, http.StatusOK, st)
}

func statusOf(snap *catalog.Snapshot) Status {
	if snap == nil {
		return Status{State: catalog.StateIdle}
	}
	return Status{
		State:      snap.State,
		Diagnostic: snap.Diagnostic,
		SourceID:   snap.SourceID,
		Count:      snap.Count(),
		Generation: snap.Generation,
		LoadedAt:   snap.LoadedAt,
	}
}

func langParam(r *http.Request) string {
	if strings.EqualFold(strings.TrimSpace(r.URL.Query().Get("lang")), domain.LangAR) {
		return domain.LangAR
	}
	return domain.LangEN
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.log.WarnObj("write response failed", "api_error", err.Error())
	}
}

func (h *handler) writeError(w http.ResponseWriter, status int, err error) {
	h.writeJSON(w, status, map[string]string{"error": err.Error()})
}
