package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/maauso/ffmpeg-api/internal/download"
	"github.com/maauso/ffmpeg-api/internal/media"
	"github.com/maauso/ffmpeg-api/internal/service"
	"github.com/maauso/ffmpeg-api/internal/timeutil"
)

// Handlers contains the HTTP handlers for the API.
type Handlers struct {
	service   *service.VideoService
	validator *validator.Validate
	logger    *slog.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(svc *service.VideoService, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handlers{
		service:   svc,
		validator: validator.New(),
		logger:    logger,
	}
}

// Health handles GET /health requests.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// Version handles GET /version requests.
func (h *Handlers) Version(w http.ResponseWriter, r *http.Request) {
	version, err := h.service.Version(r.Context())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, VersionResponse{Version: version})
}

// Convert handles POST /convert requests.
func (h *Handlers) Convert(w http.ResponseWriter, r *http.Request) {
	var req ConvertRequest
	if !h.decodeRequest(w, r, &req) {
		return
	}

	res, err := h.service.Convert(r.Context(), service.ConvertInput{
		InputPath:  req.InputPath,
		OutputPath: req.OutputPath,
		Format:     req.Format,
		Publish:    req.Publish,
	})
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, NewOperationResponse(res))
}

// ExtractAudio handles POST /extract-audio requests.
func (h *Handlers) ExtractAudio(w http.ResponseWriter, r *http.Request) {
	var req ExtractAudioRequest
	if !h.decodeRequest(w, r, &req) {
		return
	}

	res, err := h.service.ExtractAudio(r.Context(), service.ExtractAudioInput{
		Source:     req.InputPath,
		OutputPath: req.OutputPath,
		Format:     req.AudioFormat,
		Publish:    req.Publish,
	})
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, NewOperationResponse(res))
}

// Thumbnail handles POST /thumbnail requests.
func (h *Handlers) Thumbnail(w http.ResponseWriter, r *http.Request) {
	var req ThumbnailRequest
	if !h.decodeRequest(w, r, &req) {
		return
	}

	res, err := h.service.Thumbnail(r.Context(), service.ThumbnailInput{
		InputPath:  req.InputPath,
		OutputPath: req.OutputPath,
		Timestamp:  req.TimePosition,
		Publish:    req.Publish,
	})
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, NewOperationResponse(res))
}

// RemoveWatermark handles POST /remove-watermark requests.
func (h *Handlers) RemoveWatermark(w http.ResponseWriter, r *http.Request) {
	var req RemoveWatermarkRequest
	if !h.decodeRequest(w, r, &req) {
		return
	}

	res, err := h.service.RemoveWatermark(r.Context(), service.RemoveWatermarkInput{
		InputPath:  req.InputPath,
		OutputPath: req.OutputPath,
		Area:       req.Area(),
		Publish:    req.Publish,
	})
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, NewOperationResponse(res))
}

// Probe handles POST /probe requests.
func (h *Handlers) Probe(w http.ResponseWriter, r *http.Request) {
	var req ProbeRequest
	if !h.decodeRequest(w, r, &req) {
		return
	}

	info, err := h.service.Probe(r.Context(), req.InputPath)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, info)
}

// Concat handles POST /concat requests.
func (h *Handlers) Concat(w http.ResponseWriter, r *http.Request) {
	var req ConcatRequest
	if !h.decodeRequest(w, r, &req) {
		return
	}

	res, err := h.service.Concat(r.Context(), service.ConcatInput{
		InputPaths: req.InputPaths,
		OutputPath: req.OutputPath,
		Publish:    req.Publish,
	})
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, NewOperationResponse(res))
}

// decodeRequest decodes and validates a JSON request body. It writes the
// error response itself and reports whether the request can proceed.
func (h *Handlers) decodeRequest(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.logger.Warn("failed to decode request body",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusBadRequest, "invalid JSON body", "INVALID_JSON")
		return false
	}

	if err := h.validator.Struct(dst); err != nil {
		h.logger.Warn("request validation failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusBadRequest, err.Error(), "VALIDATION_ERROR")
		return false
	}

	return true
}

// writeServiceError maps service errors onto HTTP statuses and stable codes.
// Invalid inputs map to 400, ffmpeg failures to 422 with the captured stderr
// relayed verbatim, download failures to 502.
func (h *Handlers) writeServiceError(w http.ResponseWriter, err error) {
	var ffErr *media.FFmpegError

	switch {
	case errors.Is(err, service.ErrInputNotFound):
		writeError(w, http.StatusBadRequest, err.Error(), "INPUT_NOT_FOUND")
	case errors.Is(err, media.ErrTooFewInputs),
		errors.Is(err, media.ErrInvalidWatermarkArea),
		errors.Is(err, timeutil.ErrInvalidTimestamp),
		errors.Is(err, download.ErrUnsupportedURL):
		writeError(w, http.StatusBadRequest, err.Error(), "INVALID_INPUT")
	case errors.Is(err, download.ErrTooLarge):
		writeError(w, http.StatusBadRequest, err.Error(), "DOWNLOAD_TOO_LARGE")
	case errors.Is(err, download.ErrServerError),
		errors.Is(err, download.ErrRateLimited),
		errors.Is(err, download.ErrRequestFailed):
		writeError(w, http.StatusBadGateway, err.Error(), "DOWNLOAD_FAILED")
	case errors.Is(err, media.ErrFFmpegNotFound),
		errors.Is(err, media.ErrFFprobeNotFound):
		writeError(w, http.StatusInternalServerError, err.Error(), "TOOL_UNAVAILABLE")
	case errors.As(err, &ffErr):
		message := ffErr.Stderr
		if message == "" {
			message = ffErr.Error()
		}
		writeError(w, http.StatusUnprocessableEntity, message, "TOOL_FAILED")
	case errors.Is(err, media.ErrFFprobeExecution):
		writeError(w, http.StatusUnprocessableEntity, err.Error(), "TOOL_FAILED")
	default:
		h.logger.Error("operation failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
	}
}

// writeError writes an error response in the standard format.
func writeError(w http.ResponseWriter, status int, message, code string) {
	writeJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}
