// Package service implements the stateless video operations exposed by the
// API. Every call validates its inputs, stages remote sources when needed,
// runs a single ffmpeg invocation, and returns the outcome. Nothing survives
// a call: there are no jobs, no queues, no shared state.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/maauso/ffmpeg-api/internal/download"
	"github.com/maauso/ffmpeg-api/internal/media"
	"github.com/maauso/ffmpeg-api/internal/storage"
)

// ErrInputNotFound is returned when an input file does not exist on local
// disk. Operations other than ExtractAudio also reject URLs with it.
var ErrInputNotFound = errors.New("input file does not exist")

// Default values applied when optional parameters are omitted.
const (
	DefaultAudioFormat = "mp3"
	DefaultThumbnailAt = "00:00:05"
)

// DefaultWatermarkArea is the delogo rectangle used when no region is given.
var DefaultWatermarkArea = media.DelogoArea{X: 590, Y: 1200, Width: 100, Height: 40}

// Source values reported by ExtractAudio.
const (
	SourceLocal  = "local"
	SourceRemote = "remote"
)

// Result is the outcome of an output-producing operation.
type Result struct {
	// OutputPath is where ffmpeg wrote the result.
	OutputPath string
	// Source reports whether the input came from a URL or local disk.
	// Only ExtractAudio sets it.
	Source string
	// Published is set when the caller asked for the output to be published.
	Published *storage.Published
}

// ConvertInput contains the parameters for a container format conversion.
type ConvertInput struct {
	InputPath  string
	OutputPath string
	// Format optionally forces the output container. Empty lets ffmpeg
	// infer it from the output extension.
	Format  string
	Publish bool
}

// ExtractAudioInput contains the parameters for an audio extraction.
type ExtractAudioInput struct {
	// Source is a local path or an http(s) URL. Remote sources are
	// downloaded to the temp workspace for the duration of the call.
	Source     string
	OutputPath string
	// Format defaults to DefaultAudioFormat. "aac" copies the stream
	// without re-encoding.
	Format  string
	Publish bool
}

// ThumbnailInput contains the parameters for a single-frame grab.
type ThumbnailInput struct {
	InputPath  string
	OutputPath string
	// Timestamp defaults to DefaultThumbnailAt.
	Timestamp string
	Publish   bool
}

// RemoveWatermarkInput contains the parameters for a delogo pass.
type RemoveWatermarkInput struct {
	InputPath  string
	OutputPath string
	Area       media.DelogoArea
	Publish    bool
}

// ConcatInput contains the parameters for joining videos.
type ConcatInput struct {
	InputPaths []string
	OutputPath string
	Publish    bool
}

// VideoService executes video operations against the injected processor.
// It is safe for concurrent use; calls share nothing.
type VideoService struct {
	processor media.Processor
	fetcher   download.Fetcher
	store     storage.Store
	logger    *slog.Logger
}

// NewVideoService creates a new VideoService.
func NewVideoService(processor media.Processor, fetcher download.Fetcher, store storage.Store, logger *slog.Logger) *VideoService {
	if logger == nil {
		logger = slog.Default()
	}
	return &VideoService{
		processor: processor,
		fetcher:   fetcher,
		store:     store,
		logger:    logger,
	}
}

// Version reports the installed ffmpeg version banner.
func (s *VideoService) Version(ctx context.Context) (string, error) {
	version, err := s.processor.Version(ctx)
	if err != nil {
		s.logger.Error("failed to read ffmpeg version", slog.String("error", err.Error()))
		return "", err
	}
	return version, nil
}

// Convert transcodes a local file into the requested container format.
func (s *VideoService) Convert(ctx context.Context, in ConvertInput) (*Result, error) {
	if err := s.checkLocalInput(in.InputPath); err != nil {
		return nil, err
	}
	if err := ensureOutputDir(in.OutputPath); err != nil {
		return nil, err
	}

	s.logger.Info("converting video",
		slog.String("input", in.InputPath),
		slog.String("output", in.OutputPath),
		slog.String("format", in.Format),
	)

	if err := s.processor.Convert(ctx, in.InputPath, in.OutputPath, in.Format); err != nil {
		s.logger.Error("convert failed", slog.String("error", err.Error()))
		return nil, err
	}

	return s.finish(ctx, &Result{OutputPath: in.OutputPath}, in.Publish)
}

// ExtractAudio writes the audio track of a local or remote video to a file.
func (s *VideoService) ExtractAudio(ctx context.Context, in ExtractAudioInput) (*Result, error) {
	format := in.Format
	if format == "" {
		format = DefaultAudioFormat
	}

	input := in.Source
	source := SourceLocal

	if download.IsURL(in.Source) {
		local, err := s.fetcher.Fetch(ctx, in.Source)
		if err != nil {
			s.logger.Error("failed to download source",
				slog.String("url", in.Source),
				slog.String("error", err.Error()),
			)
			return nil, err
		}
		// The downloaded copy is only needed for this call
		defer func() {
			if err := s.store.CleanupTemp(context.WithoutCancel(ctx), []string{local}); err != nil {
				s.logger.Warn("failed to clean up downloaded input",
					slog.String("path", local),
					slog.String("error", err.Error()),
				)
			}
		}()
		input = local
		source = SourceRemote
	} else if err := s.checkLocalInput(in.Source); err != nil {
		return nil, err
	}

	if err := ensureOutputDir(in.OutputPath); err != nil {
		return nil, err
	}

	s.logger.Info("extracting audio",
		slog.String("input", in.Source),
		slog.String("output", in.OutputPath),
		slog.String("format", format),
		slog.String("source", source),
	)

	if err := s.processor.ExtractAudio(ctx, input, in.OutputPath, format); err != nil {
		s.logger.Error("audio extraction failed", slog.String("error", err.Error()))
		return nil, err
	}

	return s.finish(ctx, &Result{OutputPath: in.OutputPath, Source: source}, in.Publish)
}

// Thumbnail grabs a single frame from a local video.
func (s *VideoService) Thumbnail(ctx context.Context, in ThumbnailInput) (*Result, error) {
	timestamp := in.Timestamp
	if timestamp == "" {
		timestamp = DefaultThumbnailAt
	}

	if err := s.checkLocalInput(in.InputPath); err != nil {
		return nil, err
	}
	if err := ensureOutputDir(in.OutputPath); err != nil {
		return nil, err
	}

	s.logger.Info("creating thumbnail",
		slog.String("input", in.InputPath),
		slog.String("output", in.OutputPath),
		slog.String("timestamp", timestamp),
	)

	if err := s.processor.Thumbnail(ctx, in.InputPath, in.OutputPath, timestamp); err != nil {
		s.logger.Error("thumbnail failed", slog.String("error", err.Error()))
		return nil, err
	}

	return s.finish(ctx, &Result{OutputPath: in.OutputPath}, in.Publish)
}

// RemoveWatermark blurs out a rectangle of a local video.
func (s *VideoService) RemoveWatermark(ctx context.Context, in RemoveWatermarkInput) (*Result, error) {
	if err := s.checkLocalInput(in.InputPath); err != nil {
		return nil, err
	}
	if err := ensureOutputDir(in.OutputPath); err != nil {
		return nil, err
	}

	s.logger.Info("removing watermark",
		slog.String("input", in.InputPath),
		slog.String("output", in.OutputPath),
		slog.Int("x", in.Area.X),
		slog.Int("y", in.Area.Y),
		slog.Int("width", in.Area.Width),
		slog.Int("height", in.Area.Height),
	)

	if err := s.processor.RemoveWatermark(ctx, in.InputPath, in.OutputPath, in.Area); err != nil {
		s.logger.Error("watermark removal failed", slog.String("error", err.Error()))
		return nil, err
	}

	return s.finish(ctx, &Result{OutputPath: in.OutputPath}, in.Publish)
}

// Concat joins two or more local videos into one file. Missing inputs are
// all reported in a single error.
func (s *VideoService) Concat(ctx context.Context, in ConcatInput) (*Result, error) {
	var missing []string
	for _, p := range in.InputPaths {
		if err := s.checkLocalInput(p); err != nil {
			missing = append(missing, p)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrInputNotFound, strings.Join(missing, ", "))
	}

	if err := ensureOutputDir(in.OutputPath); err != nil {
		return nil, err
	}

	s.logger.Info("concatenating videos",
		slog.Int("inputs", len(in.InputPaths)),
		slog.String("output", in.OutputPath),
	)

	if err := s.processor.Concat(ctx, in.InputPaths, in.OutputPath); err != nil {
		s.logger.Error("concat failed", slog.String("error", err.Error()))
		return nil, err
	}

	return s.finish(ctx, &Result{OutputPath: in.OutputPath}, in.Publish)
}

// Probe returns container and stream metadata for a local media file.
func (s *VideoService) Probe(ctx context.Context, path string) (*media.MediaInfo, error) {
	if err := s.checkLocalInput(path); err != nil {
		return nil, err
	}

	s.logger.Info("probing media", slog.String("input", path))

	info, err := s.processor.Probe(ctx, path)
	if err != nil {
		s.logger.Error("probe failed", slog.String("error", err.Error()))
		return nil, err
	}
	return info, nil
}

// finish optionally publishes the produced output.
func (s *VideoService) finish(ctx context.Context, res *Result, publish bool) (*Result, error) {
	if !publish {
		return res, nil
	}

	pub, err := s.store.Publish(ctx, res.OutputPath)
	if err != nil {
		s.logger.Error("failed to publish output",
			slog.String("path", res.OutputPath),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("publish output: %w", err)
	}
	res.Published = pub

	return res, nil
}

// checkLocalInput verifies that path exists on local disk. URLs fail the
// check; remote sources are only staged by ExtractAudio.
func (s *VideoService) checkLocalInput(path string) error {
	if download.IsURL(path) {
		return fmt.Errorf("%w: %s", ErrInputNotFound, path)
	}

	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return fmt.Errorf("%w: %s", ErrInputNotFound, path)
	}
	return nil
}

// ensureOutputDir creates the directory the output file will be written to.
func ensureOutputDir(output string) error {
	dir := filepath.Dir(output)
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	return nil
}
