package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"

	"github.com/disintegration/imaging"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/nfnt/resize"
	"github.com/pkg/errors"
	"github.com/techagentng/bookclub/db"
	errs "github.com/techagentng/bookclub/errors"
	"github.com/techagentng/bookclub/storage"
	"go.uber.org/zap"
)

const (
	MaxProfileImageSize = 5 << 20
	profileImageSize    = 512
	thumbnailSize       = 161
)

var allowedImageTypes = []string{"image/jpeg", "image/png", "image/gif"}

// ImageResult holds the stored locations of one processed upload.
type ImageResult struct {
	ImageURL     string
	ThumbnailURL string
}

type MediaService interface {
	UploadProfilePicture(ctx context.Context, userID uuid.UUID, header *multipart.FileHeader) (*ImageResult, error)
	RemoveProfilePicture(ctx context.Context, userID uuid.UUID) error
}

type mediaService struct {
	store    storage.Storage
	authRepo db.AuthRepository
	logger   *zap.SugaredLogger
}

func NewMediaService(store storage.Storage, authRepo db.AuthRepository, logger *zap.SugaredLogger) MediaService {
	return &mediaService{store: store, authRepo: authRepo, logger: logger}
}

func (s *mediaService) UploadProfilePicture(ctx context.Context, userID uuid.UUID, header *multipart.FileHeader) (*ImageResult, error) {
	if header == nil {
		return nil, errs.Validation("image is required")
	}
	if header.Size > MaxProfileImageSize {
		return nil, errs.Validation("image must be 5MB or smaller")
	}
	file, err := header.Open()
	if err != nil {
		return nil, errs.Validation("unable to read image")
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, MaxProfileImageSize+1))
	if err != nil {
		return nil, errs.Validation("unable to read image")
	}
	if len(data) > MaxProfileImageSize {
		return nil, errs.Validation("image must be 5MB or smaller")
	}
	if !isAllowedImage(data) {
		return nil, errs.Validation("Only JPEG, PNG and GIF images are allowed")
	}

	full, thumb, err := processImage(data)
	if err != nil {
		return nil, errs.Validation("unable to decode image")
	}

	base := fmt.Sprintf("profiles/%s/%s", userID, uuid.NewString())
	imageURL, err := s.store.Put(ctx, base+".jpg", "image/jpeg", full)
	if err != nil {
		s.logger.Errorw("store profile image", "userId", userID, "error", err)
		return nil, errs.Storage("unable to upload image", err)
	}
	thumbURL, err := s.store.Put(ctx, base+"_thumb.jpg", "image/jpeg", thumb)
	if err != nil {
		s.logger.Errorw("store profile thumbnail", "userId", userID, "error", err)
		return nil, errs.Storage("unable to upload image", err)
	}

	if err := s.authRepo.UpdateUserImage(userID, imageURL, thumbURL); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, errs.NotFound("User not found")
		}
		s.logger.Errorw("save profile image", "userId", userID, "error", err)
		return nil, errs.Storage("unable to save image", err)
	}
	return &ImageResult{ImageURL: imageURL, ThumbnailURL: thumbURL}, nil
}

func (s *mediaService) RemoveProfilePicture(ctx context.Context, userID uuid.UUID) error {
	if err := s.authRepo.ClearUserImage(userID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return errs.NotFound("User not found")
		}
		s.logger.Errorw("remove profile image", "userId", userID, "error", err)
		return errs.Storage("unable to remove image", err)
	}
	return nil
}

func isAllowedImage(data []byte) bool {
	detected := mimetype.Detect(data)
	for _, t := range allowedImageTypes {
		if detected.Is(t) {
			return true
		}
	}
	return false
}

// processImage crops a square profile picture and a small thumbnail, both as JPEG.
func processImage(data []byte) ([]byte, []byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to decode image")
	}

	full := imaging.Fill(img, profileImageSize, profileImageSize, imaging.Center, imaging.Lanczos)
	thumb := resize.Thumbnail(thumbnailSize, thumbnailSize, img, resize.Lanczos3)

	var fullBuf, thumbBuf bytes.Buffer
	if err := imaging.Encode(&fullBuf, full, imaging.JPEG); err != nil {
		return nil, nil, errors.Wrap(err, "encode image")
	}
	if err := imaging.Encode(&thumbBuf, thumb, imaging.JPEG); err != nil {
		return nil, nil, errors.Wrap(err, "encode thumbnail")
	}
	return fullBuf.Bytes(), thumbBuf.Bytes(), nil
}
