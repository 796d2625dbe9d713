package assets

import (
	"embed"
	"fmt"
)

//go:embed styles/*.css
var styles embed.FS

//go:embed prompts/*.yaml
var prompts embed.FS

// EmbeddedLoader loads assets compiled into the binary.
type EmbeddedLoader struct{}

func NewEmbeddedLoader() *EmbeddedLoader {
	return &EmbeddedLoader{}
}

func (e *EmbeddedLoader) LoadStyle(name string) (string, error) {
	if err := ValidateAssetName(name); err != nil {
		return "", err
	}

	content, err := styles.ReadFile("styles/" + name + ".css")
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrStyleNotFound, name)
	}
	return string(content), nil
}

func (e *EmbeddedLoader) LoadPromptSet(name string) ([]byte, error) {
	if err := ValidateAssetName(name); err != nil {
		return nil, err
	}

	content, err := prompts.ReadFile("prompts/" + name + ".yaml")
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrPromptSetNotFound, name)
	}
	return content, nil
}

// Compile-time interface check.
var _ AssetLoader = (*EmbeddedLoader)(nil)
