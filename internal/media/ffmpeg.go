package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/maauso/ffmpeg-api/internal/timeutil"
)

// Static errors for media operations.
var (
	// ErrTooFewInputs is returned when fewer than two files are given to Concat.
	ErrTooFewInputs = errors.New("concat requires at least two input files")
	// ErrInvalidWatermarkArea is returned when the delogo rectangle is degenerate.
	ErrInvalidWatermarkArea = errors.New("invalid watermark area: width and height must be positive")
	// ErrFFmpegNotFound is returned when the ffmpeg binary cannot be located.
	ErrFFmpegNotFound = errors.New("ffmpeg binary not found")
	// ErrFFprobeNotFound is returned when the ffprobe binary cannot be located.
	ErrFFprobeNotFound = errors.New("ffprobe binary not found")
	// ErrFFprobeExecution is returned when the ffprobe command fails.
	ErrFFprobeExecution = errors.New("ffprobe execution failed")
)

// DelogoArea is the rectangle handed to ffmpeg's delogo filter. X and Y are
// the top-left corner of the watermark in pixels.
type DelogoArea struct {
	X      int
	Y      int
	Width  int
	Height int
}

// FFmpegProcessor implements Processor using the ffmpeg and ffprobe CLIs.
type FFmpegProcessor struct {
	// ffmpegPath is the path to the ffmpeg binary. Defaults to "ffmpeg".
	ffmpegPath string
	// ffprobePath is the path to the ffprobe binary. Defaults to "ffprobe".
	ffprobePath string
}

// NewFFmpegProcessor creates a new FFmpegProcessor.
// Empty paths default to "ffmpeg" and "ffprobe" (found via PATH).
func NewFFmpegProcessor(ffmpegPath, ffprobePath string) *FFmpegProcessor {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	return &FFmpegProcessor{ffmpegPath: ffmpegPath, ffprobePath: ffprobePath}
}

// convertArgs builds the argument list for a container format conversion.
// The -f flag is only added when an explicit format was requested.
func convertArgs(input, output, format string) []string {
	args := []string{
		"-y", // Overwrite output file without asking
		"-i", input,
	}
	if format != "" {
		args = append(args, "-f", format)
	}
	return append(args, output)
}

// audioCodec maps the requested audio format to an ffmpeg codec argument.
// AAC tracks are stream-copied; everything else is encoded with libmp3lame.
func audioCodec(format string) string {
	if format == "aac" {
		return "copy"
	}
	return "libmp3lame"
}

// extractAudioArgs builds the argument list for an audio extraction.
func extractAudioArgs(input, output, format string) []string {
	return []string{
		"-y",
		"-i", input,
		"-vn", // Drop the video stream
		"-acodec", audioCodec(format),
		output,
	}
}

// thumbnailArgs builds the argument list for a single-frame grab.
func thumbnailArgs(input, output, timestamp string) []string {
	return []string{
		"-y",
		"-i", input,
		"-ss", timestamp, // Seek to the requested position
		"-frames:v", "1", // Output a single frame
		output,
	}
}

// removeWatermarkArgs builds the argument list for a delogo pass.
func removeWatermarkArgs(input, output string, area DelogoArea) []string {
	filter := fmt.Sprintf("delogo=x=%d:y=%d:w=%d:h=%d:show=0", area.X, area.Y, area.Width, area.Height)
	return []string{
		"-y",
		"-i", input,
		"-vf", filter,
		"-c:a", "copy", // Keep the audio track untouched
		output,
	}
}

// concatArgs builds the argument list for joining the files listed in
// listFile. Inputs are always re-encoded so mismatched codecs still join.
func concatArgs(listFile, output string) []string {
	return []string{
		"-y",
		"-f", "concat", // Use concat demuxer
		"-safe", "0", // Allow absolute paths
		"-i", listFile,
		"-c:v", "libx264",
		"-preset", "medium",
		"-c:a", "aac",
		output,
	}
}

// Version returns the version banner of the ffmpeg binary. A missing binary
// is reported without spawning anything.
func (p *FFmpegProcessor) Version(ctx context.Context) (string, error) {
	if _, err := exec.LookPath(p.ffmpegPath); err != nil {
		return "", fmt.Errorf("%w: %s", ErrFFmpegNotFound, p.ffmpegPath)
	}

	// #nosec G204 - ffmpegPath is set by the application, not user input
	cmd := exec.CommandContext(ctx, p.ffmpegPath, "-version")

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("ffmpeg cancelled: %w", ctx.Err())
		}
		return "", &FFmpegError{
			Args:   []string{"-version"},
			Stderr: stderr.String(),
			Err:    err,
		}
	}

	banner, _, _ := strings.Cut(stdout.String(), "\n")
	return strings.TrimSpace(banner), nil
}

// Convert transcodes input into output, optionally forcing the container
// format with -f.
func (p *FFmpegProcessor) Convert(ctx context.Context, input, output, format string) error {
	return p.runFFmpeg(ctx, convertArgs(input, output, format))
}

// ExtractAudio writes the audio track of input to output. See audioCodec for
// the format to codec mapping.
func (p *FFmpegProcessor) ExtractAudio(ctx context.Context, input, output, format string) error {
	return p.runFFmpeg(ctx, extractAudioArgs(input, output, format))
}

// Thumbnail grabs a single frame from input at the given time position.
// The timestamp must be a valid ffmpeg time position such as "00:00:05".
func (p *FFmpegProcessor) Thumbnail(ctx context.Context, input, output, timestamp string) error {
	if _, err := timeutil.ParseTimestamp(timestamp); err != nil {
		return err
	}
	return p.runFFmpeg(ctx, thumbnailArgs(input, output, timestamp))
}

// RemoveWatermark runs input through the delogo filter to blur out the given
// rectangle and writes the result to output.
func (p *FFmpegProcessor) RemoveWatermark(ctx context.Context, input, output string, area DelogoArea) error {
	if area.Width <= 0 || area.Height <= 0 || area.X < 0 || area.Y < 0 {
		return fmt.Errorf("%w: x=%d, y=%d, w=%d, h=%d", ErrInvalidWatermarkArea, area.X, area.Y, area.Width, area.Height)
	}
	return p.runFFmpeg(ctx, removeWatermarkArgs(input, output, area))
}

// Concat joins two or more videos into a single output file using the concat
// demuxer, re-encoding with libx264/aac.
func (p *FFmpegProcessor) Concat(ctx context.Context, inputs []string, output string) error {
	if len(inputs) < 2 {
		return fmt.Errorf("%w: got %d", ErrTooFewInputs, len(inputs))
	}

	listFile, err := p.createConcatList(inputs)
	if err != nil {
		return fmt.Errorf("create concat list: %w", err)
	}
	defer func() { _ = os.Remove(listFile) }()

	return p.runFFmpeg(ctx, concatArgs(listFile, output))
}

// createConcatList creates a temporary file containing the list of video
// files in the format required by ffmpeg's concat demuxer.
func (p *FFmpegProcessor) createConcatList(videoPaths []string) (string, error) {
	f, err := os.CreateTemp("", "ffmpeg-concat-*.txt")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer func() { _ = f.Close() }()

	for _, path := range videoPaths {
		// Convert to absolute path for safety
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("get absolute path for %s: %w", path, err)
		}
		// Escape single quotes in path
		escapedPath := strings.ReplaceAll(absPath, "'", "'\\''")
		if _, err := fmt.Fprintf(f, "file '%s'\n", escapedPath); err != nil {
			return "", fmt.Errorf("write to concat list: %w", err)
		}
	}

	return f.Name(), nil
}

// runFFmpeg executes ffmpeg with the given arguments and returns an error
// containing stderr output if the command fails. A missing binary is
// reported without spawning anything.
func (p *FFmpegProcessor) runFFmpeg(ctx context.Context, args []string) error {
	if _, err := exec.LookPath(p.ffmpegPath); err != nil {
		return fmt.Errorf("%w: %s", ErrFFmpegNotFound, p.ffmpegPath)
	}

	// #nosec G204 - ffmpegPath is set by the application, not user input
	cmd := exec.CommandContext(ctx, p.ffmpegPath, args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil {
		// Check if context was cancelled
		if ctx.Err() != nil {
			return fmt.Errorf("ffmpeg cancelled: %w", ctx.Err())
		}
		return &FFmpegError{
			Args:   args,
			Stderr: stderr.String(),
			Err:    err,
		}
	}

	return nil
}

// FFmpegError represents an error from running ffmpeg, including the stderr output.
type FFmpegError struct {
	Args   []string
	Stderr string
	Err    error
}

func (e *FFmpegError) Error() string {
	return fmt.Sprintf("ffmpeg error: %v\nargs: %v\nstderr: %s", e.Err, e.Args, e.Stderr)
}

func (e *FFmpegError) Unwrap() error {
	return e.Err
}
