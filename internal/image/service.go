package image

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Objects are stored as delivered; the source system always labeled them jpeg.
const objectContentType = "image/jpeg"

type metadataStore interface {
	Put(ctx context.Context, meta Metadata) error
	Get(ctx context.Context, imageID string) (Metadata, error)
	Delete(ctx context.Context, imageID string) error
	Scan(ctx context.Context, opts ScanOptions) (ScanPage, error)
}

type objectStore interface {
	PutObject(ctx context.Context, bucket, key string, data []byte, contentType string) error
	RemoveObject(ctx context.Context, bucket, key string) error
	PresignedGetObject(ctx context.Context, bucket, key string, expiry time.Duration, reqParams url.Values) (*url.URL, error)
}

// ScanOptions narrows and paginates a metadata scan. StartAfter is the
// exclusive resume key; empty means scan from the beginning.
type ScanOptions struct {
	UserID     string
	Tag        string
	Limit      int
	StartAfter string
}

// ScanPage is one page of scan results in store order. LastKey is the key of
// the final returned item and is only meaningful when HasMore is set.
type ScanPage struct {
	Items   []Metadata
	LastKey string
	HasMore bool
}

// Service coordinates image lifecycle operations across the object store and
// the metadata store. Each method is a stateless request handler; the two
// backing writes are sequenced, not transactional.
type Service struct {
	repo         metadataStore
	objects      objectStore
	bucket       string
	urlExpiry    time.Duration
	defaultLimit int
}

// NewService constructs an image service.
func NewService(repo metadataStore, objects objectStore, bucket string, urlExpiry time.Duration, defaultLimit int) *Service {
	if defaultLimit <= 0 {
		defaultLimit = 100
	}
	return &Service{
		repo:         repo,
		objects:      objects,
		bucket:       bucket,
		urlExpiry:    urlExpiry,
		defaultLimit: defaultLimit,
	}
}

// Upload validates input, writes the decoded binary to the object store and
// then the metadata record. If the metadata write fails the just-written
// object is removed as best-effort compensation.
func (s *Service) Upload(ctx context.Context, in UploadInput) (Metadata, error) {
	if strings.TrimSpace(in.UserID) == "" || in.ImageData == "" {
		return Metadata{}, fmt.Errorf("%w: user_id and image_data are required", ErrValidation)
	}

	data, err := base64.StdEncoding.DecodeString(in.ImageData)
	if err != nil {
		return Metadata{}, fmt.Errorf("%w: invalid image data: %v", ErrValidation, err)
	}

	imageID := uuid.NewString()
	key := in.UserID + "/" + imageID
	now := time.Now().UTC()

	if err := s.objects.PutObject(ctx, s.bucket, key, data, objectContentType); err != nil {
		return Metadata{}, fmt.Errorf("%w: %v", ErrStorageWrite, err)
	}

	tags := in.Tags
	if tags == nil {
		tags = []string{}
	}

	meta := Metadata{
		ImageID:     imageID,
		UserID:      in.UserID,
		Title:       in.Title,
		Description: in.Description,
		Tags:        tags,
		S3Key:       key,
		S3URL:       fmt.Sprintf("s3://%s/%s", s.bucket, key),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Put(ctx, meta); err != nil {
		// Compensate so the object does not outlive its missing record. A
		// failure here leaves a dangling object and must not mask the
		// metadata error.
		if rmErr := s.objects.RemoveObject(ctx, s.bucket, key); rmErr != nil {
			log.Printf("compensating object delete failed for %s: %v", key, rmErr)
		}
		return Metadata{}, fmt.Errorf("%w: %v", ErrMetadataWrite, err)
	}

	return meta, nil
}

// List scans metadata records applying the optional user and tag filters,
// bounded by limit, resuming from the supplied pagination token.
func (s *Service) List(ctx context.Context, in ListInput) (ListResult, error) {
	if in.Limit < 0 {
		return ListResult{}, fmt.Errorf("%w: limit must be a positive integer", ErrValidation)
	}
	limit := in.Limit
	if limit == 0 {
		limit = s.defaultLimit
	}

	startAfter, err := decodePageToken(in.LastEvaluatedKey)
	if err != nil {
		return ListResult{}, fmt.Errorf("%w: invalid last_evaluated_key", ErrValidation)
	}

	page, err := s.repo.Scan(ctx, ScanOptions{
		UserID:     in.UserID,
		Tag:        in.Tag,
		Limit:      limit,
		StartAfter: startAfter,
	})
	if err != nil {
		return ListResult{}, fmt.Errorf("%w: %v", ErrStorageRead, err)
	}

	result := ListResult{
		Images:  page.Items,
		Count:   len(page.Items),
		HasMore: page.HasMore,
	}
	if result.Images == nil {
		result.Images = []Metadata{}
	}
	if page.HasMore {
		result.LastEvaluatedKey = encodePageToken(page.LastKey)
	}
	return result, nil
}

// View fetches the metadata record and generates a time-limited access URL
// for its object. The download flag hints attachment-style delivery.
func (s *Service) View(ctx context.Context, imageID string, download bool) (ViewResult, error) {
	if imageID == "" {
		return ViewResult{}, fmt.Errorf("%w: image_id is required", ErrValidation)
	}

	meta, err := s.repo.Get(ctx, imageID)
	if err != nil {
		if isNotFound(err) {
			return ViewResult{}, ErrNotFound
		}
		return ViewResult{}, fmt.Errorf("%w: %v", ErrStorageRead, err)
	}

	reqParams := make(url.Values)
	if download {
		filename := meta.Title
		if filename == "" {
			filename = meta.ImageID
		}
		reqParams.Set("response-content-disposition", fmt.Sprintf("attachment; filename=%q", filename+".jpg"))
	}

	u, err := s.objects.PresignedGetObject(ctx, s.bucket, meta.S3Key, s.urlExpiry, reqParams)
	if err != nil {
		return ViewResult{}, fmt.Errorf("%w: %v", ErrStorageRead, err)
	}

	return ViewResult{
		Metadata:     meta,
		PresignedURL: u.String(),
		ExpiresIn:    int(s.urlExpiry.Seconds()),
	}, nil
}

// Delete removes the object first and the metadata record second. An object
// delete failure aborts the operation with the record intact; a metadata
// delete failure after the object is gone is surfaced, not repaired.
func (s *Service) Delete(ctx context.Context, imageID string) error {
	if imageID == "" {
		return fmt.Errorf("%w: image_id is required", ErrValidation)
	}

	meta, err := s.repo.Get(ctx, imageID)
	if err != nil {
		if isNotFound(err) {
			return ErrNotFound
		}
		return fmt.Errorf("%w: %v", ErrStorageRead, err)
	}

	if err := s.objects.RemoveObject(ctx, s.bucket, meta.S3Key); err != nil {
		return fmt.Errorf("%w: %v", ErrStorageDelete, err)
	}

	if err := s.repo.Delete(ctx, imageID); err != nil {
		return fmt.Errorf("%w: %v", ErrMetadataDelete, err)
	}

	return nil
}

func isNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// Pagination tokens are opaque to callers: base64url over the exclusive
// resume key, mirroring the serialized LastEvaluatedKey of the source system.
func encodePageToken(lastKey string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(lastKey))
}

func decodePageToken(token string) (string, error) {
	if token == "" {
		return "", nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
