package media

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

// MediaInfo summarizes the container and streams of a media file.
type MediaInfo struct {
	Filename string       `json:"filename"`
	Format   string       `json:"format"`
	Duration float64      `json:"duration"`
	Size     int64        `json:"size"`
	BitRate  int64        `json:"bit_rate"`
	Streams  []StreamInfo `json:"streams"`
}

// StreamInfo describes a single stream inside a media container. Video and
// audio streams fill different subsets of the optional fields.
type StreamInfo struct {
	Type          string `json:"type"`
	Codec         string `json:"codec"`
	CodecLongName string `json:"codec_long_name"`

	// Video stream fields.
	Width    int     `json:"width,omitempty"`
	Height   int     `json:"height,omitempty"`
	FPS      float64 `json:"fps,omitempty"`
	BitDepth string  `json:"bit_depth,omitempty"`
	PixFmt   string  `json:"pix_fmt,omitempty"`

	// Audio stream fields.
	SampleRate    string `json:"sample_rate,omitempty"`
	Channels      int    `json:"channels,omitempty"`
	ChannelLayout string `json:"channel_layout,omitempty"`
}

// probeOutput mirrors the JSON document printed by
// ffprobe -print_format json -show_format -show_streams.
type probeOutput struct {
	Format  probeFormat   `json:"format"`
	Streams []probeStream `json:"streams"`
}

// probeFormat holds the container-level fields. ffprobe prints the numeric
// ones as JSON strings, hence the ",string" tags.
type probeFormat struct {
	FormatName string  `json:"format_name"`
	Duration   float64 `json:"duration,string"`
	Size       int64   `json:"size,string"`
	BitRate    int64   `json:"bit_rate,string"`
}

type probeStream struct {
	CodecType        string `json:"codec_type"`
	CodecName        string `json:"codec_name"`
	CodecLongName    string `json:"codec_long_name"`
	Width            int    `json:"width"`
	Height           int    `json:"height"`
	RFrameRate       string `json:"r_frame_rate"`
	BitsPerRawSample string `json:"bits_per_raw_sample"`
	PixFmt           string `json:"pix_fmt"`
	SampleRate       string `json:"sample_rate"`
	Channels         int    `json:"channels"`
	ChannelLayout    string `json:"channel_layout"`
}

// Probe runs ffprobe against path and maps its JSON output into a MediaInfo.
// A missing binary is reported without spawning anything.
func (p *FFmpegProcessor) Probe(ctx context.Context, path string) (*MediaInfo, error) {
	if _, err := exec.LookPath(p.ffprobePath); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrFFprobeNotFound, p.ffprobePath)
	}

	// #nosec G204 - ffprobePath is set by the application, not user input
	cmd := exec.CommandContext(ctx, p.ffprobePath,
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		path,
	)

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("ffprobe cancelled: %w", ctx.Err())
		}
		return nil, fmt.Errorf("%w: %w, stderr: %s", ErrFFprobeExecution, err, stderr.String())
	}

	var out probeOutput
	if err := json.Unmarshal(stdout.Bytes(), &out); err != nil {
		return nil, fmt.Errorf("parse ffprobe output: %w", err)
	}

	info := &MediaInfo{
		Filename: filepath.Base(path),
		Format:   out.Format.FormatName,
		Duration: out.Format.Duration,
		Size:     out.Format.Size,
		BitRate:  out.Format.BitRate,
	}

	for _, s := range out.Streams {
		stream := StreamInfo{
			Type:          s.CodecType,
			Codec:         s.CodecName,
			CodecLongName: s.CodecLongName,
		}
		switch s.CodecType {
		case "video":
			stream.Width = s.Width
			stream.Height = s.Height
			stream.FPS = parseFrameRate(s.RFrameRate)
			stream.BitDepth = s.BitsPerRawSample
			stream.PixFmt = s.PixFmt
		case "audio":
			stream.SampleRate = s.SampleRate
			stream.Channels = s.Channels
			stream.ChannelLayout = s.ChannelLayout
		}
		info.Streams = append(info.Streams, stream)
	}

	return info, nil
}

// parseFrameRate converts ffprobe's fractional frame rate ("30000/1001") to
// a float. Malformed fractions and zero denominators yield 0.
func parseFrameRate(rate string) float64 {
	num, den, found := strings.Cut(rate, "/")
	if !found {
		return 0
	}
	n, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0
	}
	d, err := strconv.ParseFloat(den, 64)
	if err != nil || d == 0 {
		return 0
	}
	return n / d
}
