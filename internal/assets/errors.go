package assets

import "errors"

var (
	// ErrStyleNotFound is returned when no loader has a stylesheet by that name.
	ErrStyleNotFound = errors.New("style not found")

	// ErrInvalidAssetName covers malformed names and names that resolve
	// outside the style directory.
	ErrInvalidAssetName = errors.New("invalid asset name")

	// ErrInvalidBasePath is returned when a custom style root is not a directory.
	ErrInvalidBasePath = errors.New("invalid base path")
)
