package assets

import "errors"

// Sentinel errors for asset operations.
var (
	ErrStyleNotFound     = errors.New("style not found")
	ErrPromptSetNotFound = errors.New("prompt set not found")

	// ErrInvalidAssetName indicates the asset name contains path separators
	// or traversal sequences.
	ErrInvalidAssetName = errors.New("invalid asset name")

	ErrInvalidBasePath = errors.New("invalid base path")
	ErrAssetRead       = errors.New("failed to read asset")
	ErrPathTraversal   = errors.New("path traversal detected")
)
