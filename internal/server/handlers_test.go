package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/maauso/ffmpeg-api/internal/download"
	"github.com/maauso/ffmpeg-api/internal/media"
	"github.com/maauso/ffmpeg-api/internal/service"
	"github.com/maauso/ffmpeg-api/internal/storage"
	"github.com/maauso/ffmpeg-api/internal/timeutil"
)

// mockProcessor implements media.Processor for testing.
type mockProcessor struct {
	mock.Mock
}

func (m *mockProcessor) Version(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *mockProcessor) Convert(ctx context.Context, input, output, format string) error {
	args := m.Called(ctx, input, output, format)
	return args.Error(0)
}

func (m *mockProcessor) ExtractAudio(ctx context.Context, input, output, format string) error {
	args := m.Called(ctx, input, output, format)
	return args.Error(0)
}

func (m *mockProcessor) Thumbnail(ctx context.Context, input, output, timestamp string) error {
	args := m.Called(ctx, input, output, timestamp)
	return args.Error(0)
}

func (m *mockProcessor) RemoveWatermark(ctx context.Context, input, output string, area media.DelogoArea) error {
	args := m.Called(ctx, input, output, area)
	return args.Error(0)
}

func (m *mockProcessor) Concat(ctx context.Context, inputs []string, output string) error {
	args := m.Called(ctx, inputs, output)
	return args.Error(0)
}

func (m *mockProcessor) Probe(ctx context.Context, path string) (*media.MediaInfo, error) {
	args := m.Called(ctx, path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*media.MediaInfo), args.Error(1)
}

// mockFetcher implements download.Fetcher for testing.
type mockFetcher struct {
	mock.Mock
}

func (m *mockFetcher) Fetch(ctx context.Context, url string) (string, error) {
	args := m.Called(ctx, url)
	return args.String(0), args.Error(1)
}

// mockStore implements storage.Store for testing.
type mockStore struct {
	mock.Mock
}

func (m *mockStore) Publish(ctx context.Context, path string) (*storage.Published, error) {
	args := m.Called(ctx, path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.Published), args.Error(1)
}

func (m *mockStore) CleanupTemp(ctx context.Context, paths []string) error {
	args := m.Called(ctx, paths)
	return args.Error(0)
}

func newTestHandlers(t *testing.T) (*Handlers, *mockProcessor, *mockFetcher, *mockStore) {
	t.Helper()

	processor := &mockProcessor{}
	fetcher := &mockFetcher{}
	store := &mockStore{}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	svc := service.NewVideoService(processor, fetcher, store, logger)

	return NewHandlers(svc, logger), processor, fetcher, store
}

// createInputFile writes a placeholder video file and returns its path.
func createInputFile(t *testing.T, name string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte("fake video data"), 0o600))

	return path
}

func postJSON(t *testing.T, h http.HandlerFunc, target string, body any) *httptest.ResponseRecorder {
	t.Helper()

	bodyJSON, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, target, bytes.NewReader(bodyJSON))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	h(rec, req)

	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()

	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))

	return resp
}

func TestHealth(t *testing.T) {
	h, _, _, _ := newTestHandlers(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()

	h.Health(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp HealthResponse
	err := json.NewDecoder(rec.Body).Decode(&resp)
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Status)
}

func TestVersionHandler_Success(t *testing.T) {
	h, processor, _, _ := newTestHandlers(t)
	processor.On("Version", mock.Anything).Return("ffmpeg version 7.0.1", nil)

	req := httptest.NewRequest(http.MethodGet, "/version", nil)
	rec := httptest.NewRecorder()

	h.Version(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp VersionResponse
	err := json.NewDecoder(rec.Body).Decode(&resp)
	require.NoError(t, err)
	assert.Equal(t, "ffmpeg version 7.0.1", resp.Version)
}

func TestVersionHandler_ToolMissing(t *testing.T) {
	h, processor, _, _ := newTestHandlers(t)
	processor.On("Version", mock.Anything).Return("", fmt.Errorf("%w: ffmpeg", media.ErrFFmpegNotFound))

	req := httptest.NewRequest(http.MethodGet, "/version", nil)
	rec := httptest.NewRecorder()

	h.Version(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "TOOL_UNAVAILABLE", decodeError(t, rec).Code)
}

func TestConvertHandler_Success(t *testing.T) {
	h, processor, _, _ := newTestHandlers(t)
	input := createInputFile(t, "input.avi")
	output := filepath.Join(t.TempDir(), "output.mp4")

	processor.On("Convert", mock.Anything, input, output, "mp4").Return(nil)

	rec := postJSON(t, h.Convert, "/convert", ConvertRequest{
		InputPath:  input,
		OutputPath: output,
		Format:     "mp4",
	})

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp OperationResponse
	err := json.NewDecoder(rec.Body).Decode(&resp)
	require.NoError(t, err)
	assert.Equal(t, output, resp.OutputPath)
	assert.Empty(t, resp.PublishedPath)
	processor.AssertExpectations(t)
}

func TestConvertHandler_InvalidJSON(t *testing.T) {
	h, processor, _, _ := newTestHandlers(t)

	req := httptest.NewRequest(http.MethodPost, "/convert", bytes.NewReader([]byte("invalid json")))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	h.Convert(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_JSON", decodeError(t, rec).Code)
	processor.AssertNotCalled(t, "Convert")
}

func TestConvertHandler_ValidationError_MissingFields(t *testing.T) {
	h, processor, _, _ := newTestHandlers(t)

	rec := postJSON(t, h.Convert, "/convert", ConvertRequest{Format: "mp4"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", decodeError(t, rec).Code)
	processor.AssertNotCalled(t, "Convert")
}

func TestConvertHandler_InputNotFound(t *testing.T) {
	h, processor, _, _ := newTestHandlers(t)

	rec := postJSON(t, h.Convert, "/convert", ConvertRequest{
		InputPath:  "/nonexistent/input.avi",
		OutputPath: filepath.Join(t.TempDir(), "output.mp4"),
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INPUT_NOT_FOUND", decodeError(t, rec).Code)
	processor.AssertNotCalled(t, "Convert")
}

func TestConvertHandler_ToolFailure_RelaysStderr(t *testing.T) {
	h, processor, _, _ := newTestHandlers(t)
	input := createInputFile(t, "input.avi")
	output := filepath.Join(t.TempDir(), "output.xyz")

	stderr := "Unable to choose an output format for 'output.xyz'"
	processor.On("Convert", mock.Anything, input, output, "").
		Return(&media.FFmpegError{Stderr: stderr})

	rec := postJSON(t, h.Convert, "/convert", ConvertRequest{
		InputPath:  input,
		OutputPath: output,
	})

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	resp := decodeError(t, rec)
	assert.Equal(t, "TOOL_FAILED", resp.Code)
	assert.Equal(t, stderr, resp.Error)
}

// TestConvertHandler_ToolUnavailable drives a real processor pointed at a
// missing binary; operations other than version must report it the same way.
func TestConvertHandler_ToolUnavailable(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	processor := media.NewFFmpegProcessor("/nonexistent/ffmpeg", "/nonexistent/ffprobe")
	svc := service.NewVideoService(processor, &mockFetcher{}, &mockStore{}, logger)
	h := NewHandlers(svc, logger)

	rec := postJSON(t, h.Convert, "/convert", ConvertRequest{
		InputPath:  createInputFile(t, "input.avi"),
		OutputPath: filepath.Join(t.TempDir(), "output.mp4"),
	})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "TOOL_UNAVAILABLE", decodeError(t, rec).Code)
}

func TestConvertHandler_Publish(t *testing.T) {
	h, processor, _, store := newTestHandlers(t)
	input := createInputFile(t, "input.avi")
	output := filepath.Join(t.TempDir(), "output.mp4")

	processor.On("Convert", mock.Anything, input, output, "").Return(nil)
	store.On("Publish", mock.Anything, output).
		Return(&storage.Published{Path: "public/clip_a1b2c3d4.mp4"}, nil)

	rec := postJSON(t, h.Convert, "/convert", ConvertRequest{
		InputPath:  input,
		OutputPath: output,
		Publish:    true,
	})

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp OperationResponse
	err := json.NewDecoder(rec.Body).Decode(&resp)
	require.NoError(t, err)
	assert.Equal(t, "public/clip_a1b2c3d4.mp4", resp.PublishedPath)
	store.AssertExpectations(t)
}

func TestExtractAudioHandler_DefaultFormat(t *testing.T) {
	h, processor, _, _ := newTestHandlers(t)
	input := createInputFile(t, "input.mp4")
	output := filepath.Join(t.TempDir(), "audio.mp3")

	processor.On("ExtractAudio", mock.Anything, input, output, "mp3").Return(nil)

	rec := postJSON(t, h.ExtractAudio, "/extract-audio", ExtractAudioRequest{
		InputPath:  input,
		OutputPath: output,
	})

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp OperationResponse
	err := json.NewDecoder(rec.Body).Decode(&resp)
	require.NoError(t, err)
	assert.Equal(t, "local", resp.Source)
	processor.AssertExpectations(t)
}

func TestExtractAudioHandler_RemoteSource(t *testing.T) {
	h, processor, fetcher, store := newTestHandlers(t)
	staged := createInputFile(t, "video_deadbeef.mp4")
	output := filepath.Join(t.TempDir(), "audio.aac")

	fetcher.On("Fetch", mock.Anything, "https://example.com/clip.mp4").Return(staged, nil)
	processor.On("ExtractAudio", mock.Anything, staged, output, "aac").Return(nil)
	store.On("CleanupTemp", mock.Anything, []string{staged}).Return(nil)

	rec := postJSON(t, h.ExtractAudio, "/extract-audio", ExtractAudioRequest{
		InputPath:   "https://example.com/clip.mp4",
		OutputPath:  output,
		AudioFormat: "aac",
	})

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp OperationResponse
	err := json.NewDecoder(rec.Body).Decode(&resp)
	require.NoError(t, err)
	assert.Equal(t, "remote", resp.Source)
	fetcher.AssertExpectations(t)
	store.AssertExpectations(t)
}

func TestExtractAudioHandler_DownloadFailed(t *testing.T) {
	h, processor, fetcher, _ := newTestHandlers(t)

	fetcher.On("Fetch", mock.Anything, "https://example.com/clip.mp4").
		Return("", fmt.Errorf("%w: status 503", download.ErrServerError))

	rec := postJSON(t, h.ExtractAudio, "/extract-audio", ExtractAudioRequest{
		InputPath:  "https://example.com/clip.mp4",
		OutputPath: filepath.Join(t.TempDir(), "audio.mp3"),
	})

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "DOWNLOAD_FAILED", decodeError(t, rec).Code)
	processor.AssertNotCalled(t, "ExtractAudio")
}

// TestExtractAudioHandler_UnreachableHost drives a real fetcher so the error
// reaches the handler through the retry wrapping, not through a stub.
func TestExtractAudioHandler_UnreachableHost(t *testing.T) {
	processor := &mockProcessor{}
	store := &mockStore{}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	fetcher, err := download.NewFetcher(t.TempDir(), download.WithMaxRetries(0))
	require.NoError(t, err)

	h := NewHandlers(service.NewVideoService(processor, fetcher, store, logger), logger)

	// Closing the server first guarantees a connection failure on its port.
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL + "/clip.mp4"
	srv.Close()

	rec := postJSON(t, h.ExtractAudio, "/extract-audio", ExtractAudioRequest{
		InputPath:  url,
		OutputPath: filepath.Join(t.TempDir(), "audio.mp3"),
	})

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "DOWNLOAD_FAILED", decodeError(t, rec).Code)
	processor.AssertNotCalled(t, "ExtractAudio")
}

func TestThumbnailHandler_DefaultTimePosition(t *testing.T) {
	h, processor, _, _ := newTestHandlers(t)
	input := createInputFile(t, "input.mp4")
	output := filepath.Join(t.TempDir(), "thumb.jpg")

	processor.On("Thumbnail", mock.Anything, input, output, "00:00:05").Return(nil)

	rec := postJSON(t, h.Thumbnail, "/thumbnail", ThumbnailRequest{
		InputPath:  input,
		OutputPath: output,
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	processor.AssertExpectations(t)
}

func TestThumbnailHandler_MalformedTimePosition(t *testing.T) {
	h, processor, _, _ := newTestHandlers(t)
	input := createInputFile(t, "input.mp4")
	output := filepath.Join(t.TempDir(), "thumb.jpg")

	processor.On("Thumbnail", mock.Anything, input, output, "banana").
		Return(fmt.Errorf("%w: %q", timeutil.ErrInvalidTimestamp, "banana"))

	rec := postJSON(t, h.Thumbnail, "/thumbnail", ThumbnailRequest{
		InputPath:    input,
		OutputPath:   output,
		TimePosition: "banana",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_INPUT", decodeError(t, rec).Code)
}

func TestRemoveWatermarkHandler_Defaults(t *testing.T) {
	h, processor, _, _ := newTestHandlers(t)
	input := createInputFile(t, "input.mp4")
	output := filepath.Join(t.TempDir(), "clean.mp4")

	want := media.DelogoArea{X: 590, Y: 1200, Width: 100, Height: 40}
	processor.On("RemoveWatermark", mock.Anything, input, output, want).Return(nil)

	rec := postJSON(t, h.RemoveWatermark, "/remove-watermark", RemoveWatermarkRequest{
		InputPath:  input,
		OutputPath: output,
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	processor.AssertExpectations(t)
}

func TestRemoveWatermarkHandler_ExplicitZeroOrigin(t *testing.T) {
	h, processor, _, _ := newTestHandlers(t)
	input := createInputFile(t, "input.mp4")
	output := filepath.Join(t.TempDir(), "clean.mp4")

	zero := 0
	width := 50
	height := 20
	want := media.DelogoArea{X: 0, Y: 0, Width: 50, Height: 20}
	processor.On("RemoveWatermark", mock.Anything, input, output, want).Return(nil)

	rec := postJSON(t, h.RemoveWatermark, "/remove-watermark", RemoveWatermarkRequest{
		InputPath:  input,
		OutputPath: output,
		X:          &zero,
		Y:          &zero,
		Width:      &width,
		Height:     &height,
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	processor.AssertExpectations(t)
}

func TestRemoveWatermarkHandler_NegativeOrigin(t *testing.T) {
	h, processor, _, _ := newTestHandlers(t)

	negative := -5
	rec := postJSON(t, h.RemoveWatermark, "/remove-watermark", RemoveWatermarkRequest{
		InputPath:  "/tmp/input.mp4",
		OutputPath: "/tmp/clean.mp4",
		X:          &negative,
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", decodeError(t, rec).Code)
	processor.AssertNotCalled(t, "RemoveWatermark")
}

func TestRemoveWatermarkHandler_ExplicitZeroSize(t *testing.T) {
	h, processor, _, _ := newTestHandlers(t)

	zero := 0
	rec := postJSON(t, h.RemoveWatermark, "/remove-watermark", RemoveWatermarkRequest{
		InputPath:  "/tmp/input.mp4",
		OutputPath: "/tmp/clean.mp4",
		Width:      &zero,
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", decodeError(t, rec).Code)
	processor.AssertNotCalled(t, "RemoveWatermark")
}

func TestProbeHandler_Success(t *testing.T) {
	h, processor, _, _ := newTestHandlers(t)
	input := createInputFile(t, "input.mp4")

	info := &media.MediaInfo{
		Filename: "input.mp4",
		Format:   "mov,mp4,m4a,3gp,3g2,mj2",
		Duration: 12.5,
		Streams: []media.StreamInfo{
			{Type: "video", Codec: "h264", Width: 1920, Height: 1080},
		},
	}
	processor.On("Probe", mock.Anything, input).Return(info, nil)

	rec := postJSON(t, h.Probe, "/probe", ProbeRequest{InputPath: input})

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp media.MediaInfo
	err := json.NewDecoder(rec.Body).Decode(&resp)
	require.NoError(t, err)
	assert.Equal(t, "input.mp4", resp.Filename)
	assert.InDelta(t, 12.5, resp.Duration, 0.001)
	require.Len(t, resp.Streams, 1)
	assert.Equal(t, 1920, resp.Streams[0].Width)
}

func TestProbeHandler_ToolMissing(t *testing.T) {
	h, processor, _, _ := newTestHandlers(t)
	input := createInputFile(t, "input.mp4")

	processor.On("Probe", mock.Anything, input).
		Return(nil, fmt.Errorf("%w: ffprobe", media.ErrFFprobeNotFound))

	rec := postJSON(t, h.Probe, "/probe", ProbeRequest{InputPath: input})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "TOOL_UNAVAILABLE", decodeError(t, rec).Code)
}

func TestConcatHandler_TooFewInputs(t *testing.T) {
	h, processor, _, _ := newTestHandlers(t)
	only := createInputFile(t, "only.mp4")

	rec := postJSON(t, h.Concat, "/concat", ConcatRequest{
		InputPaths: []string{only},
		OutputPath: filepath.Join(t.TempDir(), "joined.mp4"),
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", decodeError(t, rec).Code)
	processor.AssertNotCalled(t, "Concat")
}

func TestConcatHandler_MissingInputsReportedTogether(t *testing.T) {
	h, processor, _, _ := newTestHandlers(t)

	rec := postJSON(t, h.Concat, "/concat", ConcatRequest{
		InputPaths: []string{"/nonexistent/a.mp4", "/nonexistent/b.mp4"},
		OutputPath: filepath.Join(t.TempDir(), "joined.mp4"),
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	resp := decodeError(t, rec)
	assert.Equal(t, "INPUT_NOT_FOUND", resp.Code)
	assert.Contains(t, resp.Error, "/nonexistent/a.mp4")
	assert.Contains(t, resp.Error, "/nonexistent/b.mp4")
	processor.AssertNotCalled(t, "Concat")
}

func TestConcatHandler_Success(t *testing.T) {
	h, processor, _, _ := newTestHandlers(t)
	first := createInputFile(t, "first.mp4")
	second := createInputFile(t, "second.mp4")
	output := filepath.Join(t.TempDir(), "joined.mp4")

	processor.On("Concat", mock.Anything, []string{first, second}, output).Return(nil)

	rec := postJSON(t, h.Concat, "/concat", ConcatRequest{
		InputPaths: []string{first, second},
		OutputPath: output,
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	processor.AssertExpectations(t)
}

func TestRouter_Integration(t *testing.T) {
	h, processor, _, _ := newTestHandlers(t)
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	router := NewRouter(h, logger, DefaultConfig())

	// Health endpoint
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	// Version endpoint
	processor.On("Version", mock.Anything).Return("ffmpeg version 7.0.1", nil)
	req = httptest.NewRequest(http.MethodGet, "/version", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	// Convert through the full chain
	input := createInputFile(t, "input.avi")
	output := filepath.Join(t.TempDir(), "output.mp4")
	processor.On("Convert", mock.Anything, input, output, "").Return(nil)

	body, _ := json.Marshal(ConvertRequest{InputPath: input, OutputPath: output})
	req = httptest.NewRequest(http.MethodPost, "/convert", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	// Wrong method is rejected by the mux
	req = httptest.NewRequest(http.MethodGet, "/convert", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestCORSMiddleware(t *testing.T) {
	h, _, _, _ := newTestHandlers(t)
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	cfg := Config{AllowedOrigins: []string{"https://example.com"}}
	router := NewRouter(h, logger, cfg)

	// Allowed origin
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://example.com")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, "https://example.com", rec.Header().Get("Access-Control-Allow-Origin"))

	// Disallowed origin gets no CORS headers
	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))

	// OPTIONS preflight
	req = httptest.NewRequest(http.MethodOptions, "/convert", nil)
	req.Header.Set("Origin", "https://example.com")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRecoveryMiddleware(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	panicHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("test panic")
	})

	handler := RecoveryMiddleware(logger)(panicHandler)

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	rec := httptest.NewRecorder()

	// Should not panic
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "INTERNAL_ERROR", decodeError(t, rec).Code)
}
