package assets

import (
	"fmt"
	"strings"
)

// Built-in asset names.
const (
	DefaultStyleName     = "report"
	DefaultPromptSetName = "default"
)

// AssetLoader loads report styles and prompt sets by name.
type AssetLoader interface {
	// LoadStyle returns the CSS for name (without .css).
	LoadStyle(name string) (string, error)

	// LoadPromptSet returns the raw YAML for name (without .yaml).
	LoadPromptSet(name string) ([]byte, error)
}

// ValidateAssetName rejects empty names and names carrying a path separator
// or a dot, so a name can never select a file outside its asset directory.
func ValidateAssetName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidAssetName)
	}
	if strings.ContainsAny(name, "/\\.") {
		return fmt.Errorf("%w: %q", ErrInvalidAssetName, name)
	}
	return nil
}
