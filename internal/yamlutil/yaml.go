// Package yamlutil decodes the YAML documents read by dbcopilot: the strict
// configuration file and the key/value prompt file.
package yamlutil

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/goccy/go-yaml"
)

// MaxInputSize limits YAML input to prevent memory exhaustion (default 1MB).
var MaxInputSize = 1 << 20

var (
	ErrNilData        = errors.New("yamlutil: nil or empty data")
	ErrNilDestination = errors.New("yamlutil: nil destination pointer")
	ErrInputTooLarge  = errors.New("yamlutil: input exceeds maximum size")
	ErrNotStringValue = errors.New("yamlutil: value is not a string")
)

func validateInput(data []byte, v any) error {
	if len(data) == 0 {
		return ErrNilData
	}
	if len(data) > MaxInputSize {
		return fmt.Errorf("%w: %d bytes (max %d)", ErrInputTooLarge, len(data), MaxInputSize)
	}
	if v == nil {
		return ErrNilDestination
	}
	return nil
}

func Unmarshal(data []byte, v any) error {
	if err := validateInput(data, v); err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, v); err != nil {
		return fmt.Errorf("yamlutil: %w", err)
	}
	return nil
}

// UnmarshalStrict rejects unknown fields in the input.
func UnmarshalStrict(data []byte, v any) error {
	if err := validateInput(data, v); err != nil {
		return err
	}
	if err := yaml.UnmarshalWithOptions(data, v, yaml.Strict()); err != nil {
		return fmt.Errorf("yamlutil: %w", err)
	}
	return nil
}

// StringMap decodes a flat mapping whose values must all be strings, such
// as a prompt file. Keys are returned as written.
func StringMap(data []byte) (map[string]string, error) {
	var raw map[string]any
	if err := Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	out := make(map[string]string, len(raw))
	var bad []string
	for k, v := range raw {
		s, ok := v.(string)
		if !ok {
			bad = append(bad, k)
			continue
		}
		out[k] = s
	}
	if len(bad) > 0 {
		sort.Strings(bad)
		return nil, fmt.Errorf("%w: %v", ErrNotStringValue, bad)
	}
	return out, nil
}

// ReadStringMap reads path and decodes it with StringMap.
func ReadStringMap(path string) (map[string]string, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path comes from config or flags
	if err != nil {
		return nil, err
	}
	return StringMap(data)
}
