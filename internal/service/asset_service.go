package service

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/sefazor/brandkit-backend/internal/apperrors"
	"github.com/sefazor/brandkit-backend/internal/formtype"
	"github.com/sefazor/brandkit-backend/pkg/logger"
	"go.uber.org/zap"
)

var assetExtensions = map[string]string{
	"image/png":       ".png",
	"image/jpeg":      ".jpg",
	"image/webp":      ".webp",
	"image/svg+xml":   ".svg",
	"application/pdf": ".pdf",
}

type UploadedAsset struct {
	Key         string `json:"key"`
	URL         string `json:"url"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}

// AssetService stores logo and brand files so their URL can be saved as a
// form field value.
type AssetService struct {
	storage  AssetStorage
	registry *formtype.Registry
	maxBytes int64
	log      *zap.Logger
}

func NewAssetService(storage AssetStorage, registry *formtype.Registry, maxBytes int64, log *zap.Logger) *AssetService {
	return &AssetService{
		storage:  storage,
		registry: registry,
		maxBytes: maxBytes,
		log:      log,
	}
}

func (s *AssetService) Upload(ctx context.Context, userID uint, formType, filename, contentType string, size int64, r io.Reader) (*UploadedAsset, error) {
	if s.storage == nil {
		return nil, apperrors.New(apperrors.CodeInternalError, "File storage is not configured", apperrors.ErrInternal.HTTPCode)
	}
	if userID == 0 {
		return nil, apperrors.Validation("user id is required")
	}
	if _, ok := s.registry.Get(formType); !ok {
		return nil, apperrors.Validation(fmt.Sprintf("unknown form type %q", formType))
	}

	contentType = strings.ToLower(strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0]))
	ext, ok := assetExtensions[contentType]
	if !ok {
		return nil, apperrors.ValidationFields("unsupported file", map[string]string{
			"file": "must be png, jpeg, webp, svg or pdf",
		})
	}
	if size <= 0 || size > s.maxBytes {
		return nil, apperrors.ValidationFields("unsupported file", map[string]string{
			"file": fmt.Sprintf("size must be between 1 and %d bytes", s.maxBytes),
		})
	}
	if e := strings.ToLower(path.Ext(filename)); e == ".jpeg" && ext == ".jpg" {
		ext = e
	}

	key := fmt.Sprintf("brand-assets/%d/%s/%s%s", userID, formType, uuid.NewString(), ext)
	if err := s.storage.Upload(ctx, key, contentType, r, size); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeStoreUnavailable, "File storage temporarily unavailable", apperrors.ErrStoreUnavailable.HTTPCode)
	}

	logger.FromContext(ctx, s.log).Info("asset uploaded",
		zap.String("key", key),
		zap.Int64("size", size),
	)
	return &UploadedAsset{
		Key:         key,
		URL:         s.storage.PublicURL(key),
		ContentType: contentType,
		Size:        size,
	}, nil
}
