// Package media provides video and audio processing backed by the ffmpeg CLI.
package media

import "context"

// Processor defines the interface for video and audio processing operations.
// Implementations shell out to ffmpeg and ffprobe for the actual work.
type Processor interface {
	// Version returns the version banner of the underlying ffmpeg binary
	// (the first line of `ffmpeg -version`).
	Version(ctx context.Context) (string, error)

	// Convert transcodes input into output. When format is non-empty it is
	// passed to ffmpeg as an explicit container format (-f); otherwise the
	// container is inferred from the output extension.
	Convert(ctx context.Context, input, output, format string) error

	// ExtractAudio strips the video stream from input and writes the audio
	// track to output. AAC audio is copied without re-encoding; any other
	// requested format is encoded with libmp3lame.
	ExtractAudio(ctx context.Context, input, output, format string) error

	// Thumbnail grabs a single frame from input at the given time position
	// and writes it to output as an image.
	Thumbnail(ctx context.Context, input, output, timestamp string) error

	// RemoveWatermark blurs out the given rectangle using ffmpeg's delogo
	// filter. The audio track is copied untouched.
	RemoveWatermark(ctx context.Context, input, output string, area DelogoArea) error

	// Concat joins two or more videos into a single output file, re-encoding
	// with libx264/aac so inputs with mismatched codecs still concatenate.
	Concat(ctx context.Context, inputs []string, output string) error

	// Probe returns container and stream metadata for a media file.
	Probe(ctx context.Context, path string) (*MediaInfo, error)
}
