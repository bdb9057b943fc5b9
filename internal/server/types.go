// Package server provides the HTTP transport for the video API.
// It includes handlers, middleware, routes, and DTOs separated from domain
// types. The stdio transport reuses the same request and response shapes.
package server

import (
	"github.com/maauso/ffmpeg-api/internal/media"
	"github.com/maauso/ffmpeg-api/internal/service"
)

// ConvertRequest is the HTTP request body for POST /convert.
type ConvertRequest struct {
	// InputPath is the local path of the video to convert.
	InputPath string `json:"input_path" validate:"required"`
	// OutputPath is where the converted file will be written.
	OutputPath string `json:"output_path" validate:"required"`
	// Format optionally forces the output container. Empty lets ffmpeg
	// infer it from the output extension.
	Format string `json:"format,omitempty"`
	// Publish copies the output into the public artifacts area.
	Publish bool `json:"publish"`
}

// ExtractAudioRequest is the HTTP request body for POST /extract-audio.
type ExtractAudioRequest struct {
	// InputPath is a local path or an http(s) URL. Remote inputs are
	// downloaded for the duration of the call.
	InputPath string `json:"input_path" validate:"required"`
	// OutputPath is where the audio file will be written.
	OutputPath string `json:"output_path" validate:"required"`
	// AudioFormat selects the target codec. Defaults to mp3; aac copies
	// the stream without re-encoding.
	AudioFormat string `json:"audio_format,omitempty"`
	// Publish copies the output into the public artifacts area.
	Publish bool `json:"publish"`
}

// ThumbnailRequest is the HTTP request body for POST /thumbnail.
type ThumbnailRequest struct {
	// InputPath is the local path of the source video.
	InputPath string `json:"input_path" validate:"required"`
	// OutputPath is where the image will be written.
	OutputPath string `json:"output_path" validate:"required"`
	// TimePosition is the frame to grab, as HH:MM:SS[.mmm] or plain
	// seconds. Defaults to 00:00:05.
	TimePosition string `json:"time_position,omitempty"`
	// Publish copies the output into the public artifacts area.
	Publish bool `json:"publish"`
}

// RemoveWatermarkRequest is the HTTP request body for POST /remove-watermark.
type RemoveWatermarkRequest struct {
	// InputPath is the local path of the source video.
	InputPath string `json:"input_path" validate:"required"`
	// OutputPath is where the cleaned video will be written.
	OutputPath string `json:"output_path" validate:"required"`
	// X is the left edge of the watermark region. Defaults to 590.
	X *int `json:"x,omitempty" validate:"omitempty,min=0"`
	// Y is the top edge of the watermark region. Defaults to 1200.
	Y *int `json:"y,omitempty" validate:"omitempty,min=0"`
	// Width is the region width in pixels. Defaults to 100.
	Width *int `json:"width,omitempty" validate:"omitempty,min=1"`
	// Height is the region height in pixels. Defaults to 40.
	Height *int `json:"height,omitempty" validate:"omitempty,min=1"`
	// Publish copies the output into the public artifacts area.
	Publish bool `json:"publish"`
}

// Area builds the delogo rectangle, filling in the defaults for omitted
// fields. An explicit zero origin is honored; an explicit zero size never
// gets here, validation rejects it.
func (r RemoveWatermarkRequest) Area() media.DelogoArea {
	area := service.DefaultWatermarkArea
	if r.X != nil {
		area.X = *r.X
	}
	if r.Y != nil {
		area.Y = *r.Y
	}
	if r.Width != nil {
		area.Width = *r.Width
	}
	if r.Height != nil {
		area.Height = *r.Height
	}
	return area
}

// ProbeRequest is the HTTP request body for POST /probe.
type ProbeRequest struct {
	// InputPath is the local path of the media file to inspect.
	InputPath string `json:"input_path" validate:"required"`
}

// ConcatRequest is the HTTP request body for POST /concat.
type ConcatRequest struct {
	// InputPaths lists the videos to join, in order. At least two.
	InputPaths []string `json:"input_paths" validate:"required,min=2"`
	// OutputPath is where the joined video will be written.
	OutputPath string `json:"output_path" validate:"required"`
	// Publish copies the output into the public artifacts area.
	Publish bool `json:"publish"`
}

// OperationResponse is the HTTP response for output-producing operations.
type OperationResponse struct {
	// OutputPath is where the result was written.
	OutputPath string `json:"output_path"`
	// Source reports whether the input was downloaded ("remote") or read
	// from local disk ("local"). Only extract-audio sets it.
	Source string `json:"source,omitempty"`
	// PublishedPath is the local public copy (if publish=true and the
	// local store is active).
	PublishedPath string `json:"published_path,omitempty"`
	// PublishedURL is the S3 URL of the public copy (if publish=true and
	// S3 is configured).
	PublishedURL string `json:"published_url,omitempty"`
}

// NewOperationResponse maps a service result onto the wire shape.
func NewOperationResponse(res *service.Result) OperationResponse {
	resp := OperationResponse{
		OutputPath: res.OutputPath,
		Source:     res.Source,
	}
	if res.Published != nil {
		resp.PublishedPath = res.Published.Path
		resp.PublishedURL = res.Published.URL
	}
	return resp
}

// VersionResponse is the HTTP response for GET /version.
type VersionResponse struct {
	// Version is the first line of the ffmpeg version banner.
	Version string `json:"version"`
}

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	// Error is the human-readable error message.
	Error string `json:"error"`
	// Code is the error code for programmatic handling.
	Code string `json:"code"`
}

// HealthResponse is the HTTP response for the health check endpoint.
type HealthResponse struct {
	// Status is the health status of the service.
	Status string `json:"status"`
}
