package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/samvad-hq/scholarship-directory/internal/catalog"
	"github.com/samvad-hq/scholarship-directory/internal/catalog/fallback"
	"github.com/samvad-hq/scholarship-directory/internal/config"
	"github.com/samvad-hq/scholarship-directory/internal/export"
	"github.com/samvad-hq/scholarship-directory/internal/logger"
	"github.com/samvad-hq/scholarship-directory/internal/normalize"
	"github.com/samvad-hq/scholarship-directory/pkg/httpclient"
	"github.com/samvad-hq/scholarship-directory/pkg/sftpupload"
	"github.com/samvad-hq/scholarship-directory/pkg/sources"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "export failed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		sourceID    = flag.String("source", "", "source id to export (empty = active source, \"fallback\" = bundled data)")
		sourcesFile = flag.String("sources-file", "", "sources file (defaults to sources_file from config)")
		outPath     = flag.String("out", "scholarships.csv", "output csv path")
		strict      = flag.Bool("strict", false, "fail instead of exporting bundled data when the source cannot be loaded")
		uploadSFTP  = flag.Bool("sftp", false, "upload the generated CSV via SFTP")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log, err := logger.Init(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Close()

	if *sourcesFile == "" {
		*sourcesFile = cfg.SourcesFile
	}
	if *sourceID == "" {
		*sourceID = cfg.ActiveSource
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	src, err := resolveSource(*sourcesFile, *sourceID)
	if err != nil {
		return err
	}

	variants, err := normalize.LoadVariants(cfg.SynonymsFile)
	if err != nil {
		return fmt.Errorf("load synonyms: %w", err)
	}
	fetchers := sources.DefaultFetcherRegistry(httpclient.NewRestyClient(cfg.HTTPTimeout), variants)

	res := catalog.New(fetchers, log).Load(ctx, src)
	snap := res.Snapshot
	if snap.State == catalog.StateDegraded {
		if *strict {
			return fmt.Errorf("%s", snap.Diagnostic)
		}
		logger.WarnObj("exporting bundled data", "export_meta", map[string]any{"diagnostic": snap.Diagnostic})
	}

	body := export.CSV(snap.Listings)
	if err := os.WriteFile(*outPath, []byte(body), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", *outPath, err)
	}
	logger.InfoObj("export written", "export_meta", map[string]any{
		"path":      *outPath,
		"listings":  snap.Count(),
		"source_id": snap.SourceID,
		"state":     snap.State,
	})

	if !*uploadSFTP {
		return nil
	}

	upCfg := sftpupload.Config{
		Host:                  cfg.SFTPHost,
		Port:                  cfg.SFTPPort,
		User:                  cfg.SFTPUser,
		Pass:                  cfg.SFTPPass,
		RemoteDir:             cfg.SFTPDir,
		KnownHostsFile:        cfg.SFTPKnownHosts,
		InsecureIgnoreHostKey: cfg.SFTPInsecureIgnoreHostKey,
	}
	upCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	remoteName := filepath.Base(*outPath)
	if err := sftpupload.Upload(upCtx, upCfg, bytes.NewReader([]byte(body)), remoteName); err != nil {
		return err
	}
	logger.InfoObj("export uploaded", "export_meta", map[string]any{
		"remote": fmt.Sprintf("sftp://%s:%d%s/%s", upCfg.Host, upCfg.Port, upCfg.RemoteDir, remoteName),
	})
	return nil
}

// resolveSource returns nil for the bundled dataset.
func resolveSource(path, id string) (*sources.Source, error) {
	if id == fallback.SourceID {
		return nil, nil
	}
	if path == "" {
		if id != "" {
			return nil, fmt.Errorf("source %q: %w", id, sources.ErrUnknownSource)
		}
		return nil, nil
	}

	reg, err := sources.LoadRegistry(path)
	if err != nil {
		return nil, fmt.Errorf("load sources registry: %w", err)
	}
	src, ok := reg.Active(id)
	if !ok {
		if id != "" {
			return nil, fmt.Errorf("source %q: %w", id, sources.ErrUnknownSource)
		}
		return nil, nil
	}
	return &src, nil
}
