package service

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png" // register PNG decoder
	"mime"
	"net/http"
	"strings"

	"waverider/internal/blob"
	"waverider/internal/config"
	"waverider/internal/middleware"
	"waverider/internal/models"
	"waverider/internal/repository"

	"github.com/chai2010/webp"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // register WebP decoder
)

const (
	DefaultImageMaxUploadSizeMB = 10
	MasterMaxSize               = 2048
	ThumbMaxSize                = 256
	JPEGQuality                 = 82
	WebPQuality                 = 70
)

// UploadImageInput carries a decoded multipart file into the image pipeline.
type UploadImageInput struct {
	UserID      uint
	Filename    string
	ContentType string
	Content     []byte
}

// ImageService turns uploaded bytes into content-addressed blobs plus a
// metadata row. The hash is the sha256 of the re-encoded master, so the
// same picture uploaded twice collapses into one stored object.
type ImageService struct {
	repo               repository.ImageRepository
	store              blob.Store
	maxUploadSizeBytes int64
}

func NewImageService(repo repository.ImageRepository, store blob.Store, cfg *config.Config) *ImageService {
	maxUploadSizeMB := DefaultImageMaxUploadSizeMB
	if cfg != nil && cfg.ImageMaxUploadSizeMB > 0 {
		maxUploadSizeMB = cfg.ImageMaxUploadSizeMB
	}
	return &ImageService{
		repo:               repo,
		store:              store,
		maxUploadSizeBytes: int64(maxUploadSizeMB) * 1024 * 1024,
	}
}

// Upload validates, normalizes, and stores an image. Blob writes happen
// before the metadata write so a crash can strand at worst an unreferenced
// blob, never a metadata row pointing at nothing.
func (s *ImageService) Upload(ctx context.Context, in UploadImageInput) (*models.Image, error) {
	if len(in.Content) == 0 {
		return nil, models.NewValidationError("No file uploaded")
	}
	if int64(len(in.Content)) > s.maxUploadSizeBytes {
		return nil, models.NewValidationError(fmt.Sprintf("File too large (max %dMB)", s.maxUploadSizeBytes/(1024*1024)))
	}

	detectedType := http.DetectContentType(in.Content)
	if !isAllowedImageMIME(detectedType) {
		return nil, models.NewValidationError("Invalid image type")
	}
	if provided := normalizeContentType(in.ContentType); strings.HasPrefix(provided, "image/") && !isMatchingContentType(provided, detectedType) {
		return nil, models.NewValidationError("Image content type mismatch")
	}

	decoded, _, err := image.Decode(bytes.NewReader(in.Content))
	if err != nil {
		return nil, models.NewValidationError("Invalid image file")
	}

	master := resizeToFit(decoded, MasterMaxSize, MasterMaxSize)
	masterJPG, err := encodeJPEG(master, JPEGQuality)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	thumb := resizeToFit(master, ThumbMaxSize, ThumbMaxSize)
	thumbWebP, err := encodeWebP(thumb, WebPQuality)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	sum := sha256.Sum256(masterJPG)
	hash := hex.EncodeToString(sum[:])

	if existing, getErr := s.repo.GetByHash(ctx, hash); getErr != nil {
		return nil, getErr
	} else if existing != nil {
		return existing, nil
	}

	originalKey := blob.OriginalKey(hash, "jpg")
	thumbKey := blob.ThumbKey(hash)
	if err := s.store.Put(ctx, originalKey, "image/jpeg", masterJPG); err != nil {
		return nil, err
	}
	if err := s.store.Put(ctx, thumbKey, "image/webp", thumbWebP); err != nil {
		s.removeBestEffort(ctx, originalKey)
		return nil, err
	}

	bounds := master.Bounds()
	record := &models.Image{
		Hash:         hash,
		ContentType:  "image/jpeg",
		Bytes:        int64(len(masterJPG)),
		Width:        bounds.Dx(),
		Height:       bounds.Dy(),
		OriginalKey:  originalKey,
		ThumbKey:     thumbKey,
		URL:          s.store.URL(originalKey),
		UploadedByID: in.UserID,
	}
	if err := s.repo.Create(ctx, record); err != nil {
		s.removeBestEffort(ctx, originalKey)
		s.removeBestEffort(ctx, thumbKey)
		return nil, err
	}
	return record, nil
}

// Release drops the blobs and metadata for a hash no live post references.
// Blob removal failures are logged, not returned: the metadata row is the
// source of truth and an orphaned blob is harmless.
func (s *ImageService) Release(ctx context.Context, hash string) error {
	if !isValidImageHash(hash) {
		return models.NewValidationError("Invalid image hash")
	}
	img, err := s.repo.GetByHash(ctx, hash)
	if err != nil {
		return err
	}
	if img == nil {
		return nil
	}

	s.removeBestEffort(ctx, img.OriginalKey)
	if img.ThumbKey != "" {
		s.removeBestEffort(ctx, img.ThumbKey)
	}
	return s.repo.DeleteByHash(ctx, hash)
}

func (s *ImageService) removeBestEffort(ctx context.Context, key string) {
	if err := s.store.Remove(ctx, key); err != nil {
		middleware.Logger.WarnContext(ctx, "blob remove failed", "key", key, "error", err)
	}
}

// isValidImageHash checks that the hash is strictly lowercase hex
// (SHA-256 style). This prevents path traversal via crafted hash values.
func isValidImageHash(hash string) bool {
	if len(hash) != 64 {
		return false
	}
	for _, c := range hash {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}

func resizeToFit(src image.Image, maxWidth, maxHeight int) image.Image {
	bounds := src.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()
	if w <= 0 || h <= 0 {
		return src
	}
	if w <= maxWidth && h <= maxHeight {
		return src
	}

	scaleW := float64(maxWidth) / float64(w)
	scaleH := float64(maxHeight) / float64(h)
	scale := scaleW
	if scaleH < scale {
		scale = scaleH
	}
	newW := int(float64(w) * scale)
	newH := int(float64(h) * scale)
	if newW < 1 {
		newW = 1
	}
	if newH < 1 {
		newH = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, xdraw.Over, nil)
	return dst
}

func encodeJPEG(img image.Image, quality int) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeWebP(img image.Image, quality int) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	if err := webp.Encode(buf, img, &webp.Options{Quality: float32(quality)}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func isAllowedImageMIME(contentType string) bool {
	switch normalizeContentType(contentType) {
	case "image/jpeg", "image/jpg", "image/png", "image/webp":
		return true
	default:
		return false
	}
}

func normalizeContentType(contentType string) string {
	if contentType == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(contentType))
	}
	return strings.ToLower(strings.TrimSpace(mediaType))
}

func isMatchingContentType(provided, detected string) bool {
	p := normalizeContentType(provided)
	d := normalizeContentType(detected)
	if p == d {
		return true
	}
	return (p == "image/jpg" && d == "image/jpeg") || (p == "image/jpeg" && d == "image/jpg")
}
