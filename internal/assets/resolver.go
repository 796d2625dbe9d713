package assets

import "errors"

// AssetResolver tries a custom loader first and falls back to the embedded
// assets when the custom directory does not have the requested asset.
type AssetResolver struct {
	custom   AssetLoader // nil if no custom path configured
	embedded AssetLoader
}

// NewAssetResolver creates an AssetResolver. An empty customBasePath uses
// embedded assets only; an invalid one is an error.
func NewAssetResolver(customBasePath string) (*AssetResolver, error) {
	resolver := &AssetResolver{
		embedded: NewEmbeddedLoader(),
	}

	if customBasePath != "" {
		fsLoader, err := NewFilesystemLoader(customBasePath)
		if err != nil {
			return nil, err
		}
		resolver.custom = fsLoader
	}

	return resolver, nil
}

func (r *AssetResolver) LoadStyle(name string) (string, error) {
	return loadWithFallback(r, func(l AssetLoader) (string, error) {
		return l.LoadStyle(name)
	})
}

func (r *AssetResolver) LoadPromptSet(name string) ([]byte, error) {
	return loadWithFallback(r, func(l AssetLoader) ([]byte, error) {
		return l.LoadPromptSet(name)
	})
}

func loadWithFallback[T any](r *AssetResolver, load func(AssetLoader) (T, error)) (T, error) {
	if r.custom == nil {
		return load(r.embedded)
	}

	content, err := load(r.custom)
	if err == nil {
		return content, nil
	}

	// Validation and I/O errors are not masked by the fallback.
	if !isNotFoundError(err) {
		var zero T
		return zero, err
	}
	return load(r.embedded)
}

func isNotFoundError(err error) bool {
	return errors.Is(err, ErrStyleNotFound) || errors.Is(err, ErrPromptSetNotFound)
}

// Compile-time interface check.
var _ AssetLoader = (*AssetResolver)(nil)
