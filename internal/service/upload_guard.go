package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/bcpschool/portal-api/internal/observability"
)

var (
	// ErrUploadTooLarge indicates the file exceeded the configured size ceiling.
	ErrUploadTooLarge = errors.New("file exceeds maximum allowed size")
	// ErrUploadTypeNotAllowed indicates the file extension is outside the allow-list.
	ErrUploadTypeNotAllowed = errors.New("file type not allowed")
)

// FileStorage abstracts upload destinations so the validation logic tests
// without real disk or network I/O.
type FileStorage interface {
	Upload(ctx context.Context, name string, reader io.Reader) (string, error)
}

// Office-document and PDF extensions accepted for attachments and submissions.
var allowedUploadExtensions = map[string]struct{}{
	".pdf":  {},
	".doc":  {},
	".docx": {},
	".ppt":  {},
	".pptx": {},
	".xls":  {},
	".xlsx": {},
}

// Content types that are rejected outright even when the extension passes.
var deniedContentPrefixes = []string{
	"application/x-executable",
	"application/x-elf",
	"application/x-mach-binary",
	"application/vnd.microsoft.portable-executable",
	"application/x-msdownload",
}

// UploadGuard validates incoming files against the extension allow-list and
// size ceiling before handing them to the configured storage backend.
type UploadGuard struct {
	storage FileStorage
	maxSize int64
	logger  zerolog.Logger
	tracer  trace.Tracer
}

// NewUploadGuard constructs an upload guard. maxSizeMB defaults to 5.
func NewUploadGuard(storage FileStorage, maxSizeMB int, logger zerolog.Logger) *UploadGuard {
	if maxSizeMB <= 0 {
		maxSizeMB = 5
	}
	return &UploadGuard{
		storage: storage,
		maxSize: int64(maxSizeMB) * 1024 * 1024,
		logger:  logger.With().Str("component", "upload_guard").Logger(),
		tracer:  otel.Tracer("github.com/bcpschool/portal-api/internal/service"),
	}
}

// Store validates the file and persists it under the given folder, returning
// the relative path to record on the owning row.
func (g *UploadGuard) Store(ctx context.Context, folder string, file *multipart.FileHeader) (string, error) {
	ctx, span := g.tracer.Start(ctx, "upload.store")
	defer span.End()

	start := time.Now()
	defer func() {
		observability.UploadLatency().Observe(time.Since(start).Seconds())
	}()

	span.SetAttributes(
		attribute.String("upload.original_name", strings.TrimSpace(file.Filename)),
		attribute.Int64("upload.request_size", file.Size),
	)

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if _, ok := allowedUploadExtensions[ext]; !ok {
		observability.UploadRejected().WithLabelValues("extension").Inc()
		span.RecordError(ErrUploadTypeNotAllowed)
		span.SetStatus(codes.Error, "extension not allowed")
		return "", ErrUploadTypeNotAllowed
	}

	if file.Size > g.maxSize {
		observability.UploadRejected().WithLabelValues("size").Inc()
		span.RecordError(ErrUploadTooLarge)
		span.SetStatus(codes.Error, "payload too large")
		return "", ErrUploadTooLarge
	}

	handle, err := file.Open()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "open failed")
		return "", err
	}
	defer handle.Close()

	buf := bytes.NewBuffer(nil)
	if _, err := io.Copy(buf, io.LimitReader(handle, g.maxSize+1)); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "read failed")
		return "", err
	}
	if int64(buf.Len()) > g.maxSize {
		observability.UploadRejected().WithLabelValues("size").Inc()
		span.RecordError(ErrUploadTooLarge)
		span.SetStatus(codes.Error, "payload too large")
		return "", ErrUploadTooLarge
	}

	detected := mimetype.Detect(buf.Bytes())
	for _, denied := range deniedContentPrefixes {
		if strings.HasPrefix(detected.String(), denied) {
			observability.UploadRejected().WithLabelValues("content").Inc()
			span.RecordError(ErrUploadTypeNotAllowed)
			span.SetStatus(codes.Error, "content type denied")
			return "", ErrUploadTypeNotAllowed
		}
	}
	if !strings.EqualFold(detected.Extension(), ext) {
		// Extension decides acceptance; a disagreeing sniff is only logged.
		g.logger.Warn().
			Str("filename", file.Filename).
			Str("detected", detected.String()).
			Msg("upload content type disagrees with extension")
	}

	name := strings.Trim(folder, "/") + "/" + filepath.Base(file.Filename)
	path, err := g.storage.Upload(ctx, name, bytes.NewReader(buf.Bytes()))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "storage failed")
		return "", err
	}

	span.SetAttributes(attribute.String("upload.stored_path", path))

	return path, nil
}
