package image

import "errors"

var (
	// ErrValidation indicates malformed or missing input; no store was touched.
	ErrValidation = errors.New("validation error")
	// ErrNotFound signals that no metadata record exists for the requested id.
	ErrNotFound = errors.New("image not found")
	// ErrStorageWrite signals an object store write failure.
	ErrStorageWrite = errors.New("object store write failed")
	// ErrStorageRead signals an object store read or URL generation failure.
	ErrStorageRead = errors.New("object store read failed")
	// ErrStorageDelete signals an object store delete failure.
	ErrStorageDelete = errors.New("object store delete failed")
	// ErrMetadataWrite signals a metadata store write failure.
	ErrMetadataWrite = errors.New("metadata store write failed")
	// ErrMetadataDelete signals a metadata store delete failure.
	ErrMetadataDelete = errors.New("metadata store delete failed")
)
