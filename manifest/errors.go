package manifest

import "errors"

var (
	// ErrIncompatibleVersion is returned when the manifest version is not supported.
	ErrIncompatibleVersion = errors.New("incompatible manifest version")

	// ErrNotFound is returned when no manifest exists in the store.
	ErrNotFound = errors.New("manifest not found")

	// ErrInvalid is returned by Validate for inconsistent manifests.
	ErrInvalid = errors.New("invalid manifest")
)
