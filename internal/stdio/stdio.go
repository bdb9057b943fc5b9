// Package stdio implements the line-delimited JSON-RPC 2.0 transport used
// by local mode. Requests arrive one per line on stdin, responses leave one
// per line on stdout, and the process exits when stdin closes. Requests are
// handled strictly in order.
package stdio

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/go-playground/validator/v10"

	"github.com/maauso/ffmpeg-api/internal/download"
	"github.com/maauso/ffmpeg-api/internal/media"
	"github.com/maauso/ffmpeg-api/internal/server"
	"github.com/maauso/ffmpeg-api/internal/service"
	"github.com/maauso/ffmpeg-api/internal/timeutil"
)

// Method names accepted by the dispatcher.
const (
	MethodVersion         = "version"
	MethodConvert         = "convert"
	MethodExtractAudio    = "extract_audio"
	MethodThumbnail       = "thumbnail"
	MethodRemoveWatermark = "remove_watermark"
	MethodProbe           = "probe"
	MethodConcat          = "concat"
)

// JSON-RPC 2.0 error codes. codeToolFailed and codeDownloadFailed are the
// implementation-defined codes for ffmpeg/ffprobe failures and for failed
// fetches of remote inputs.
const (
	codeParseError     = -32700
	codeInvalidRequest = -32600
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeInternalError  = -32603
	codeToolFailed     = -32000
	codeDownloadFailed = -32001
)

const jsonRPCVersion = "2.0"

// maxLineBytes bounds a single request line.
const maxLineBytes = 1 << 20

type request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

type response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  any             `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Server reads JSON-RPC requests from in and writes responses to out.
type Server struct {
	service   *service.VideoService
	validator *validator.Validate
	logger    *slog.Logger
	in        io.Reader
	out       io.Writer
}

// NewServer creates a new stdio Server.
func NewServer(svc *service.VideoService, in io.Reader, out io.Writer, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		service:   svc,
		validator: validator.New(),
		logger:    logger,
		in:        in,
		out:       out,
	}
}

// Run serves requests until in is exhausted or ctx is cancelled. A closed
// stdin is the normal way for a client to end the session; Run returns nil
// in that case.
func (s *Server) Run(ctx context.Context) error {
	scanner := bufio.NewScanner(s.in)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	encoder := json.NewEncoder(s.out)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}

		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		resp := s.handleLine(ctx, line)
		if resp == nil {
			continue
		}
		if err := encoder.Encode(resp); err != nil {
			return fmt.Errorf("write response: %w", err)
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read request: %w", err)
	}
	return ctx.Err()
}

// handleLine parses and dispatches a single request line. It returns nil
// for notifications, which must not be answered.
func (s *Server) handleLine(ctx context.Context, line []byte) *response {
	var req request
	if err := json.Unmarshal(line, &req); err != nil {
		s.logger.Warn("failed to parse request",
			slog.String("error", err.Error()),
		)
		return errorResponse(nil, codeParseError, "parse error: "+err.Error())
	}

	if req.JSONRPC != jsonRPCVersion || req.Method == "" {
		return errorResponse(req.ID, codeInvalidRequest, `request must carry jsonrpc "2.0" and a method`)
	}

	s.logger.Info("rpc request", slog.String("method", req.Method))

	result, rpcErr := s.dispatch(ctx, &req)

	if len(req.ID) == 0 {
		// Notification: execute but never reply
		return nil
	}
	if rpcErr != nil {
		return errorResponse(req.ID, rpcErr.Code, rpcErr.Message)
	}
	return &response{JSONRPC: jsonRPCVersion, ID: req.ID, Result: result}
}

func (s *Server) dispatch(ctx context.Context, req *request) (any, *rpcError) {
	switch req.Method {
	case MethodVersion:
		version, err := s.service.Version(ctx)
		if err != nil {
			return nil, serviceError(err)
		}
		return server.VersionResponse{Version: version}, nil

	case MethodConvert:
		var params server.ConvertRequest
		if rpcErr := s.decodeParams(req.Params, &params); rpcErr != nil {
			return nil, rpcErr
		}
		res, err := s.service.Convert(ctx, service.ConvertInput{
			InputPath:  params.InputPath,
			OutputPath: params.OutputPath,
			Format:     params.Format,
			Publish:    params.Publish,
		})
		if err != nil {
			return nil, serviceError(err)
		}
		return server.NewOperationResponse(res), nil

	case MethodExtractAudio:
		var params server.ExtractAudioRequest
		if rpcErr := s.decodeParams(req.Params, &params); rpcErr != nil {
			return nil, rpcErr
		}
		res, err := s.service.ExtractAudio(ctx, service.ExtractAudioInput{
			Source:     params.InputPath,
			OutputPath: params.OutputPath,
			Format:     params.AudioFormat,
			Publish:    params.Publish,
		})
		if err != nil {
			return nil, serviceError(err)
		}
		return server.NewOperationResponse(res), nil

	case MethodThumbnail:
		var params server.ThumbnailRequest
		if rpcErr := s.decodeParams(req.Params, &params); rpcErr != nil {
			return nil, rpcErr
		}
		res, err := s.service.Thumbnail(ctx, service.ThumbnailInput{
			InputPath:  params.InputPath,
			OutputPath: params.OutputPath,
			Timestamp:  params.TimePosition,
			Publish:    params.Publish,
		})
		if err != nil {
			return nil, serviceError(err)
		}
		return server.NewOperationResponse(res), nil

	case MethodRemoveWatermark:
		var params server.RemoveWatermarkRequest
		if rpcErr := s.decodeParams(req.Params, &params); rpcErr != nil {
			return nil, rpcErr
		}
		res, err := s.service.RemoveWatermark(ctx, service.RemoveWatermarkInput{
			InputPath:  params.InputPath,
			OutputPath: params.OutputPath,
			Area:       params.Area(),
			Publish:    params.Publish,
		})
		if err != nil {
			return nil, serviceError(err)
		}
		return server.NewOperationResponse(res), nil

	case MethodProbe:
		var params server.ProbeRequest
		if rpcErr := s.decodeParams(req.Params, &params); rpcErr != nil {
			return nil, rpcErr
		}
		info, err := s.service.Probe(ctx, params.InputPath)
		if err != nil {
			return nil, serviceError(err)
		}
		return info, nil

	case MethodConcat:
		var params server.ConcatRequest
		if rpcErr := s.decodeParams(req.Params, &params); rpcErr != nil {
			return nil, rpcErr
		}
		res, err := s.service.Concat(ctx, service.ConcatInput{
			InputPaths: params.InputPaths,
			OutputPath: params.OutputPath,
			Publish:    params.Publish,
		})
		if err != nil {
			return nil, serviceError(err)
		}
		return server.NewOperationResponse(res), nil

	default:
		return nil, &rpcError{Code: codeMethodNotFound, Message: fmt.Sprintf("unknown method %q", req.Method)}
	}
}

// decodeParams decodes and validates the params object of a request.
func (s *Server) decodeParams(raw json.RawMessage, dst any) *rpcError {
	if len(raw) == 0 {
		return &rpcError{Code: codeInvalidParams, Message: "params are required"}
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return &rpcError{Code: codeInvalidParams, Message: "malformed params: " + err.Error()}
	}
	if err := s.validator.Struct(dst); err != nil {
		return &rpcError{Code: codeInvalidParams, Message: err.Error()}
	}
	return nil
}

// serviceError maps service errors onto JSON-RPC error codes. Invalid
// inputs map to -32602, tool failures to -32000 with the captured stderr
// relayed verbatim, failed downloads of remote inputs to -32001.
func serviceError(err error) *rpcError {
	var ffErr *media.FFmpegError

	switch {
	case errors.Is(err, service.ErrInputNotFound),
		errors.Is(err, media.ErrTooFewInputs),
		errors.Is(err, media.ErrInvalidWatermarkArea),
		errors.Is(err, timeutil.ErrInvalidTimestamp),
		errors.Is(err, download.ErrUnsupportedURL),
		errors.Is(err, download.ErrTooLarge):
		return &rpcError{Code: codeInvalidParams, Message: err.Error()}
	case errors.Is(err, download.ErrServerError),
		errors.Is(err, download.ErrRateLimited),
		errors.Is(err, download.ErrRequestFailed):
		return &rpcError{Code: codeDownloadFailed, Message: err.Error()}
	case errors.As(err, &ffErr):
		message := ffErr.Stderr
		if message == "" {
			message = ffErr.Error()
		}
		return &rpcError{Code: codeToolFailed, Message: message}
	case errors.Is(err, media.ErrFFprobeExecution),
		errors.Is(err, media.ErrFFmpegNotFound),
		errors.Is(err, media.ErrFFprobeNotFound):
		return &rpcError{Code: codeToolFailed, Message: err.Error()}
	default:
		return &rpcError{Code: codeInternalError, Message: err.Error()}
	}
}

func errorResponse(id json.RawMessage, code int, message string) *response {
	if len(id) == 0 {
		id = json.RawMessage("null")
	}
	return &response{
		JSONRPC: jsonRPCVersion,
		ID:      id,
		Error:   &rpcError{Code: code, Message: message},
	}
}
