package cli

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"

	"wahlnetz-service/internal/app"
	"wahlnetz-service/internal/config"
	"wahlnetz-service/internal/domain"
	"wahlnetz-service/internal/infra/file"
	"wahlnetz-service/internal/infra/memory"
	pgloader "wahlnetz-service/internal/infra/postgres"
	redisrepo "wahlnetz-service/internal/infra/redis"
	"wahlnetz-service/internal/share"
)

// backends holds the optional external connections named in the config.
type backends struct {
	redis *redis.Client
	pool  *pgxpool.Pool
}

func openBackends(ctx context.Context, cfg config.Config) (*backends, error) {
	b := &backends{}
	if cfg.Redis.Addr != "" {
		b.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}
	if cfg.Postgres.URL != "" {
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			b.Close()
			return nil, err
		}
		b.pool = pool
	}
	return b, nil
}

func (b *backends) Close() {
	if b.redis != nil {
		b.redis.Close()
	}
	if b.pool != nil {
		b.pool.Close()
	}
}

// fallbackLoader asks primary first and falls back when it does not know the dataset.
type fallbackLoader struct {
	primary  memory.DatasetLoader
	fallback memory.DatasetLoader
}

func (l fallbackLoader) LoadDataset(ctx context.Context, datasetID string) (domain.Dataset, error) {
	ds, err := l.primary.LoadDataset(ctx, datasetID)
	if errors.Is(err, domain.ErrDatasetNotFound) {
		return l.fallback.LoadDataset(ctx, datasetID)
	}
	return ds, err
}

func datasetRepository(cfg config.Config, b *backends) app.DatasetRepository {
	var loader memory.DatasetLoader = file.NewDatasetLoader(cfg.Dataset.Dir)
	if b.pool != nil {
		loader = fallbackLoader{primary: pgloader.NewDatasetLoader(b.pool), fallback: loader}
	}
	ttl := config.TTLDuration(cfg.Dataset.TTL, 10*time.Minute)
	if b.redis != nil {
		return redisrepo.NewDatasetRepository(b.redis, loader, ttl)
	}
	return memory.NewDatasetRepository(loader, ttl)
}

func sessionRepository(cfg config.Config, b *backends) app.SessionRepository {
	if b.redis != nil {
		return redisrepo.NewSessionStore(b.redis, cfg.SessionTTL())
	}
	return memory.NewSessionStore(cfg.SessionTTL())
}

func defaultDatasetID(cfg config.Config) string {
	if cfg.Dataset.ID != "" {
		return cfg.Dataset.ID
	}
	return file.DefaultDatasetID
}

func chartExporter(cfg config.Config) *share.Exporter {
	quality := cfg.Share.JPEGQuality
	if quality <= 0 {
		quality = share.DefaultJPEGQuality
	}
	return share.NewExporter(share.RadarRenderer{
		Width:  cfg.Share.Width,
		Height: cfg.Share.Height,
		Title:  "Wahlnetz",
	}, quality)
}

// sharing returns a nil uploader when no image host is configured.
func sharing(cfg config.Config) (*share.HostUploader, share.Linker) {
	linker := share.Linker{Text: cfg.Share.Text, PageURL: cfg.Share.PageURL}
	if cfg.Share.UploadURL == "" {
		return nil, linker
	}
	uploader := share.NewHostUploader(cfg.Share.UploadURL, cfg.Share.APIKey,
		config.TTLDuration(cfg.Share.Timeout, 15*time.Second))
	return uploader, linker
}

// sessionSweeper is implemented by session stores that drop idle sessions.
type sessionSweeper interface {
	Run(ctx context.Context, interval time.Duration)
}

func serviceOptions(cfg config.Config, logger *slog.Logger) []app.Option {
	opts := []app.Option{
		app.WithDefaultDataset(defaultDatasetID(cfg)),
		app.WithExporter(chartExporter(cfg)),
		app.WithLogger(logger),
	}
	if uploader, linker := sharing(cfg); uploader != nil {
		opts = append(opts, app.WithSharing(uploader, linker))
	}
	return opts
}

func surveyService(cfg config.Config, sessions app.SessionRepository, datasets app.DatasetRepository, logger *slog.Logger) *app.SurveyService {
	return app.NewSurveyService(sessions, datasets, serviceOptions(cfg, logger)...)
}

// localService serves one in-process session, so the terminal commands export
// and share through the same pipeline as the HTTP API.
func localService(ctx context.Context, cfg config.Config, session *app.Session, logger *slog.Logger) (*app.SurveyService, error) {
	store := memory.NewSessionStore(0)
	if err := store.Add(ctx, session); err != nil {
		return nil, err
	}
	datasets := memory.NewDatasetRepository(memory.NewStaticDatasetLoader(session.Dataset()), 0)
	return surveyService(cfg, store, datasets, logger), nil
}
