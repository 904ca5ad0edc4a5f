package image

import "time"

// Metadata is the stored record describing one uploaded image. Field names
// follow the at-rest shape: the object key and display locator keep their
// historical s3_* names.
type Metadata struct {
	ImageID     string    `json:"image_id"`
	UserID      string    `json:"user_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Tags        []string  `json:"tags"`
	S3Key       string    `json:"s3_key"`
	S3URL       string    `json:"s3_url"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// HasTag reports whether the record carries the exact tag (case-sensitive).
func (m Metadata) HasTag(tag string) bool {
	for _, t := range m.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// UploadInput carries the caller-supplied fields for an upload.
type UploadInput struct {
	UserID      string
	ImageData   string // base64-encoded binary
	Title       string
	Description string
	Tags        []string
}

// ListInput carries listing filters and pagination parameters.
type ListInput struct {
	UserID           string
	Tag              string
	Limit            int
	LastEvaluatedKey string
}

// ListResult is one page of matching records.
type ListResult struct {
	Images           []Metadata
	Count            int
	HasMore          bool
	LastEvaluatedKey string
}

// ViewResult bundles a record with a time-limited access URL.
type ViewResult struct {
	Metadata     Metadata
	PresignedURL string
	ExpiresIn    int
}
