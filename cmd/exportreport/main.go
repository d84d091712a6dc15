// Command exportreport writes an attendance export to disk without the web UI.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go.uber.org/zap"

	"accessdash/internal/apiclient"
	"accessdash/internal/auth"
	"accessdash/internal/config"
	"accessdash/internal/export"
	"accessdash/internal/format"
	"accessdash/internal/logging"
)

func main() {
	var (
		start  = flag.String("start", "", "first day of the report (YYYY-MM-DD)")
		end    = flag.String("end", "", "last day of the report (YYYY-MM-DD)")
		kind   = flag.String("format", "csv", "report format: csv, xlsx, or attendance for today's CSV")
		outDir = flag.String("out", ".", "directory to write the file into")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger, err := logging.New(cfg.Env)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	api := apiclient.New(cfg.APIBaseURL, cfg.RequestTimeout)
	api.Token = auth.NewServiceToken(cfg.ServiceJWTKey, cfg.ServiceJWTIssuer, cfg.ServiceJWTTTL)

	f, err := build(ctx, api, *kind, *start, *end, time.Now().In(cfg.Location()))
	if err != nil {
		logger.Fatal("export failed", zap.String("format", *kind), zap.Error(err))
	}

	path := filepath.Join(*outDir, f.Name)
	if err := os.WriteFile(path, f.Body, 0o644); err != nil {
		logger.Fatal("write export", zap.String("path", path), zap.Error(err))
	}
	logger.Info("export written", zap.String("path", path), zap.Int("bytes", len(f.Body)))
}

func build(ctx context.Context, src export.Source, kind, start, end string, now time.Time) (export.File, error) {
	switch kind {
	case "attendance":
		return export.Attendance(ctx, src, format.Date(now))
	case "csv":
		return export.ReportCSV(ctx, src, start, end)
	case "xlsx":
		return export.ReportXLSX(ctx, src, start, end)
	default:
		return export.File{}, fmt.Errorf("unknown format %q", kind)
	}
}
