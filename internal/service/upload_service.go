package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/whrcat/cpplearn-api/internal/dto"
)

// ErrUploadTooLarge indicates the payload exceeded the configured limit.
var ErrUploadTooLarge = errors.New("file exceeds maximum allowed size")

// ErrUploadTypeNotAllowed indicates the MIME type is not permitted.
var ErrUploadTypeNotAllowed = errors.New("file type not allowed")

// allowedAvatarTypes are the image types accepted for avatars.
var allowedAvatarTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
	"image/webp": {},
}

// FileStorage abstracts upload destinations.
type FileStorage interface {
	Upload(ctx context.Context, name string, reader io.Reader) (string, error)
}

// UploadService handles validation and storage of avatar uploads.
type UploadService interface {
	UploadAvatar(ctx context.Context, file *multipart.FileHeader, userID uint) (dto.UploadResponse, error)
}

type uploadService struct {
	storage FileStorage
	logger  zerolog.Logger
	maxSize int64
	tracer  trace.Tracer
}

// NewUploadService constructs an upload service.
func NewUploadService(storage FileStorage, maxSizeMB int, logger zerolog.Logger) UploadService {
	if maxSizeMB <= 0 {
		maxSizeMB = 2
	}
	return &uploadService{
		storage: storage,
		logger:  logger.With().Str("component", "upload_service").Logger(),
		maxSize: int64(maxSizeMB) * 1024 * 1024,
		tracer:  otel.Tracer("github.com/whrcat/cpplearn-api/internal/service/upload"),
	}
}

func (s *uploadService) UploadAvatar(ctx context.Context, file *multipart.FileHeader, userID uint) (dto.UploadResponse, error) {
	ctx, span := s.tracer.Start(ctx, "upload.avatar")
	defer span.End()

	if file == nil {
		return dto.UploadResponse{}, fmt.Errorf("no file provided")
	}

	span.SetAttributes(
		attribute.String("upload.original_name", strings.TrimSpace(file.Filename)),
		attribute.Int64("upload.request_size", file.Size),
	)

	if file.Size > s.maxSize {
		return dto.UploadResponse{}, ErrUploadTooLarge
	}

	source, err := file.Open()
	if err != nil {
		return dto.UploadResponse{}, fmt.Errorf("open upload: %w", err)
	}
	defer source.Close()

	content, err := io.ReadAll(io.LimitReader(source, s.maxSize+1))
	if err != nil {
		return dto.UploadResponse{}, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(content)) > s.maxSize {
		return dto.UploadResponse{}, ErrUploadTooLarge
	}

	detected := mimetype.Detect(content)
	if _, ok := allowedAvatarTypes[detected.String()]; !ok {
		span.SetStatus(codes.Error, "type not allowed")
		return dto.UploadResponse{}, ErrUploadTypeNotAllowed
	}

	name := fmt.Sprintf("avatar-%d-%s%s", userID, uuid.NewString(), filepath.Ext(file.Filename))
	url, err := s.storage.Upload(ctx, name, bytes.NewReader(content))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return dto.UploadResponse{}, fmt.Errorf("store upload: %w", err)
	}

	s.logger.Info().Uint("user_id", userID).Str("mime", detected.String()).Msg("avatar uploaded")
	return dto.UploadResponse{URL: url}, nil
}
