package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/hamudi896/LagerAppENV/internal/adapter/archive"
	"github.com/hamudi896/LagerAppENV/internal/adapter/spreadsheet"
	"github.com/hamudi896/LagerAppENV/internal/adapter/storage"
	"github.com/hamudi896/LagerAppENV/internal/config"
	"github.com/hamudi896/LagerAppENV/internal/core/service"
	"github.com/hamudi896/LagerAppENV/internal/metrics"
	"github.com/hamudi896/LagerAppENV/internal/port"
)

type app struct {
	cfg     config.Config
	logger  *slog.Logger
	store   port.EntityStore
	rdb     *redis.Client
	metrics *metrics.Recorder

	catalog    *service.CatalogService
	ledger     *service.LedgerService
	aggregator *service.Aggregator
	exporter   *service.Exporter
}

func newApp(ctx context.Context, cfg config.Config, logger *slog.Logger) (*app, error) {
	a := &app{cfg: cfg, logger: logger, metrics: metrics.New()}

	pool := storage.PoolConfig{
		MaxOpenConns:    cfg.Store.MaxOpenConns,
		MaxIdleConns:    cfg.Store.MaxIdleConns,
		ConnMaxLifetime: cfg.Store.ConnMaxLifetime,
	}
	store, err := storage.Open(ctx, cfg.Store.Driver, cfg.Store.DSN, pool)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Store.Driver, err)
	}
	a.store = store
	logger.Info("store ready", "driver", cfg.Store.Driver)

	opts := []service.Option{
		service.WithLogger(logger),
		service.WithMetrics(a.metrics),
		service.WithExportLabels(service.ExportLabels{
			Category: cfg.Export.CategoryLabel,
			Item:     cfg.Export.ItemLabel,
			Sheet:    cfg.Export.Sheet,
			FileName: cfg.Export.FileName,
		}),
	}

	if cfg.Redis.Addr != "" {
		a.rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		})
		if err := a.rdb.Ping(ctx).Err(); err != nil {
			a.Close()
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		logger.Info("connected to redis", "addr", cfg.Redis.Addr)
		// Each process marks its own keys so a release never drops another
		// instance's claim.
		idem := storage.NewRedisAdapter(a.rdb, cfg.Redis.IdempotencyTTL, uuid.NewString())
		opts = append(opts, service.WithIdempotency(idem))
	}

	reportArchive, err := openArchive(ctx, cfg.Archive)
	if err != nil {
		a.Close()
		return nil, err
	}
	if reportArchive != nil {
		opts = append(opts, service.WithArchive(reportArchive))
	}

	policy, err := service.ParseDeletePolicy(cfg.Catalog.CategoryDeletePolicy)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.catalog, err = service.NewCatalogService(store, policy, opts...)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.ledger = service.NewLedgerService(store, opts...)
	a.aggregator = service.NewAggregator(store, opts...)
	a.exporter = service.NewExporter(a.aggregator, spreadsheet.NewExcelEncoder(), opts...)
	return a, nil
}

func openArchive(ctx context.Context, cfg config.ArchiveConfig) (port.ReportArchive, error) {
	switch cfg.Driver {
	case "fs":
		return archive.NewFSArchive(cfg.Dir)
	case "s3":
		return archive.NewS3Archive(ctx, archive.S3Config{
			Bucket:          cfg.S3.Bucket,
			Region:          cfg.S3.Region,
			Endpoint:        cfg.S3.Endpoint,
			Prefix:          cfg.S3.Prefix,
			PathStyle:       cfg.S3.PathStyle,
			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
		})
	default:
		return nil, nil
	}
}

func (a *app) Close() error {
	var errs []error
	if a.rdb != nil {
		errs = append(errs, a.rdb.Close())
	}
	if a.store != nil {
		errs = append(errs, a.store.Close())
	}
	return errors.Join(errs...)
}
