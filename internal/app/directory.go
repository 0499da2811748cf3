package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/samvad-hq/scholarship-directory/internal/announce"
	"github.com/samvad-hq/scholarship-directory/internal/api"
	"github.com/samvad-hq/scholarship-directory/internal/catalog"
	"github.com/samvad-hq/scholarship-directory/internal/config"
	"github.com/samvad-hq/scholarship-directory/internal/logger"
	"github.com/samvad-hq/scholarship-directory/internal/normalize"
	"github.com/samvad-hq/scholarship-directory/internal/storage"
	"github.com/samvad-hq/scholarship-directory/pkg/httpclient"
	"github.com/samvad-hq/scholarship-directory/pkg/publishers"
	"github.com/samvad-hq/scholarship-directory/pkg/sources"
)

const shutdownTimeout = 10 * time.Second

// Directory is the scholarship directory runtime. It owns the catalog, keeps
// it fresh on a ticker, announces new listings, and serves the read API.
type Directory struct {
	cfg       *config.Config
	sources   *sources.Registry
	catalog   *catalog.Catalog
	announcer *announce.Announcer
	fanout    *publishers.Fanout
	store     storage.Store
	log       logger.Logger

	mu       sync.Mutex
	activeID string
}

// NewDirectory builds the runtime from config files.
func NewDirectory(ctx context.Context, cfg *config.Config, log logger.Logger) (*Directory, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	log = logger.Ensure(log)
	if ctx == nil {
		ctx = context.Background()
	}

	srcReg, err := loadSources(cfg.SourcesFile)
	if err != nil {
		return nil, fmt.Errorf("load sources registry: %w", err)
	}
	if cfg.ActiveSource != "" {
		if _, ok := srcReg.ByID(cfg.ActiveSource); !ok {
			return nil, fmt.Errorf("active_source %q: %w", cfg.ActiveSource, sources.ErrUnknownSource)
		}
	}
	srcList := srcReg.All()
	srcIDs := make([]string, 0, len(srcList))
	for _, s := range srcList {
		srcIDs = append(srcIDs, s.ID)
	}
	log.InfoObj("sources registry loaded", "sources_meta", map[string]any{
		"count":  len(srcIDs),
		"ids":    srcIDs,
		"active": cfg.ActiveSource,
	})

	variants, err := normalize.LoadVariants(cfg.SynonymsFile)
	if err != nil {
		return nil, fmt.Errorf("load synonyms: %w", err)
	}
	fetchers := sources.DefaultFetcherRegistry(httpclient.NewRestyClient(cfg.HTTPTimeout), variants)

	fanout, err := buildFanout(ctx, cfg.PublishersFile, log)
	if err != nil {
		return nil, err
	}

	store, err := storage.NewStore(cfg.StorageType, cfg.BBoltPath, storage.Options{
		ListingTTL:      cfg.StorageTTL,
		CleanupInterval: cfg.StorageCleanupInterval,
	})
	if err != nil {
		_ = fanout.Close()
		return nil, fmt.Errorf("init storage: %w", err)
	}
	log.InfoObj("storage initialized", "storage_config", map[string]any{
		"type":                     cfg.StorageType,
		"path":                     cfg.BBoltPath,
		"listing_ttl_seconds":      int(cfg.StorageTTL.Seconds()),
		"cleanup_interval_seconds": int(cfg.StorageCleanupInterval.Seconds()),
	})

	return &Directory{
		cfg:       cfg,
		sources:   srcReg,
		catalog:   catalog.New(fetchers, log),
		announcer: announce.New(store, fanout, log),
		fanout:    fanout,
		store:     store,
		log:       log,
		activeID:  cfg.ActiveSource,
	}, nil
}

func loadSources(path string) (*sources.Registry, error) {
	if strings.TrimSpace(path) == "" {
		return sources.NewRegistry(nil)
	}
	return sources.LoadRegistry(path)
}

func buildFanout(ctx context.Context, path string, log logger.Logger) (*publishers.Fanout, error) {
	reg, err := publishers.LoadRegistry(path)
	if err != nil {
		return nil, fmt.Errorf("load publishers registry: %w", err)
	}
	enabled := reg.Enabled()
	pubs, err := publishers.BuildAll(ctx, publishers.DefaultRegistry(), enabled, log)
	if err != nil {
		return nil, fmt.Errorf("build publishers: %w", err)
	}

	summaries := make([]map[string]string, 0, len(enabled))
	for _, p := range enabled {
		summaries = append(summaries, map[string]string{"id": p.ID, "type": p.Type})
	}
	log.InfoObj("publishers registry loaded", "publishers_meta", map[string]any{
		"count":      len(summaries),
		"publishers": summaries,
	})
	return publishers.NewFanout(pubs), nil
}

// Snapshot returns the record set currently served.
func (d *Directory) Snapshot() *catalog.Snapshot {
	return d.catalog.Snapshot()
}

// Reload switches to sourceID (when non-empty) and loads it. The returned
// result may be uncommitted when a newer load overtook this one.
func (d *Directory) Reload(ctx context.Context, sourceID string) (catalog.Result, error) {
	sourceID = strings.TrimSpace(sourceID)
	if sourceID != "" {
		if _, ok := d.sources.ByID(sourceID); !ok {
			return catalog.Result{}, fmt.Errorf("source %q: %w", sourceID, sources.ErrUnknownSource)
		}
		d.mu.Lock()
		d.activeID = sourceID
		d.mu.Unlock()
	}
	return d.refresh(ctx), nil
}

// Handler exposes the read API backed by this directory.
func (d *Directory) Handler() http.Handler {
	return api.NewHandler(d, d.log)
}

// Run serves the API and refreshes the catalog until ctx is cancelled.
func (d *Directory) Run(ctx context.Context) error {
	if d == nil || d.catalog == nil {
		return fmt.Errorf("directory is not initialized")
	}
	defer d.close()

	srv := &http.Server{
		Addr:              d.cfg.HTTPAddr,
		Handler:           d.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	serveErr := make(chan error, 1)
	go func() {
		d.log.InfoObj("http server listening", "http_addr", d.cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	d.log.InfoObj("directory loop starting", "directory_state", map[string]any{
		"sources_count":    len(d.sources.All()),
		"publishers_count": d.fanout.Size(),
		"refresh_interval": d.cfg.RefreshInterval.String(),
	})
	d.refresh(ctx)

	var tick <-chan time.Time
	if d.cfg.RefreshInterval > 0 {
		ticker := time.NewTicker(d.cfg.RefreshInterval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			d.log.InfoObj("directory loop exiting", "reason", ctx.Err())
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("http shutdown: %w", err)
			}
			return nil
		case err, ok := <-serveErr:
			if ok && err != nil {
				return fmt.Errorf("http server: %w", err)
			}
			serveErr = nil
		case <-tick:
			d.refresh(ctx)
		}
	}
}

// refresh loads the active source and announces new listings when the load
// committed a ready snapshot.
func (d *Directory) refresh(ctx context.Context) catalog.Result {
	d.mu.Lock()
	id := d.activeID
	d.mu.Unlock()

	var src *sources.Source
	if s, ok := d.sources.Active(id); ok {
		src = &s
	}

	res := d.catalog.Load(ctx, src)
	if !res.Committed {
		return res
	}
	if _, err := d.announcer.Announce(ctx, res.Snapshot); err != nil {
		d.log.ErrorObj("announce failed", "announce_error", map[string]any{
			"source_id": res.Snapshot.SourceID,
			"error":     err.Error(),
		})
	}
	return res
}

// close releases publishers and the ledger, logging any errors encountered.
func (d *Directory) close() {
	if err := d.fanout.Close(); err != nil {
		d.log.ErrorObj("publisher close failed", "error", err)
	}
	if d.store == nil {
		return
	}
	if err := d.store.Close(); err != nil {
		d.log.ErrorObj("storage close failed", "error", err)
	}
}
