// Package bootstrap provides dependency initialization for the video API.
package bootstrap

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/maauso/ffmpeg-api/internal/config"
	"github.com/maauso/ffmpeg-api/internal/download"
	"github.com/maauso/ffmpeg-api/internal/media"
	"github.com/maauso/ffmpeg-api/internal/service"
	"github.com/maauso/ffmpeg-api/internal/storage"
)

// Dependencies holds all initialized dependencies shared by the transports.
type Dependencies struct {
	Service *service.VideoService
}

// NewDependencies creates and initializes all dependencies for the application.
func NewDependencies(cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	store, err := initStore(cfg, logger)
	if err != nil {
		return nil, err
	}

	fetcher, err := download.NewFetcher(cfg.TempDir,
		download.WithHTTPClient(&http.Client{Timeout: cfg.DownloadTimeout}),
		download.WithMaxBytes(cfg.MaxDownloadBytes()),
	)
	if err != nil {
		return nil, fmt.Errorf("create fetcher: %w", err)
	}

	processor := media.NewFFmpegProcessor(cfg.FFmpegPath, cfg.FFprobePath)

	svc := service.NewVideoService(processor, fetcher, store, logger)

	return &Dependencies{Service: svc}, nil
}

// initStore creates the appropriate publishing backend based on configuration.
func initStore(cfg *config.Config, logger *slog.Logger) (storage.Store, error) {
	if cfg.S3Enabled() {
		s3Cfg := storage.S3Config{
			Bucket:          cfg.S3Bucket,
			Region:          cfg.S3Region,
			Endpoint:        cfg.S3Endpoint,
			AccessKeyID:     cfg.AWSAccessKeyID,
			SecretAccessKey: cfg.AWSSecretAccessKey,
		}
		s3Store, err := storage.NewS3Store(cfg.PublicDir, s3Cfg)
		if err != nil {
			return nil, fmt.Errorf("create S3 store: %w", err)
		}
		logger.Info("S3 publishing configured",
			slog.String("bucket", cfg.S3Bucket),
			slog.String("region", cfg.S3Region),
		)
		return s3Store, nil
	}

	localStore, err := storage.NewLocalStore(cfg.PublicDir)
	if err != nil {
		return nil, fmt.Errorf("create local store: %w", err)
	}
	logger.Info("local publishing configured",
		slog.String("public_dir", cfg.PublicDir),
	)
	return localStore, nil
}
