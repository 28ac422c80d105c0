package session

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"nc-param-manager/internal/common/errors"
	"nc-param-manager/internal/parameters"

	"gopkg.in/yaml.v3"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat accepts "json", "yaml" or "yml".
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", errors.NewPreconditionFailedError(fmt.Sprintf("Unsupported format %q", name))
	}
}

// FormatFromPath picks the format from a file extension, defaulting to JSON.
func FormatFromPath(path string) Format {
	if f, err := ParseFormat(strings.TrimPrefix(filepath.Ext(path), ".")); err == nil {
		return f
	}
	return FormatJSON
}

type ImportOptions struct {
	// SkipUnknown drops keys the loaded schema does not declare.
	SkipUnknown bool
}

// ExportValues encodes the current value map.
func (s *Session) ExportValues(format Format) ([]byte, error) {
	values := s.Values()
	switch format {
	case FormatJSON:
		return json.MarshalIndent(values, "", "  ")
	case FormatYAML:
		return yaml.Marshal(values)
	default:
		return nil, errors.NewPreconditionFailedError(fmt.Sprintf("Unsupported format %q", format))
	}
}

// ImportValues decodes a value map and merges it like a preset. It returns
// the number of values applied.
func (s *Session) ImportValues(data []byte, format Format, opts ImportOptions) (int, error) {
	var incoming parameters.ValueMap
	var err error
	switch format {
	case FormatJSON:
		err = json.Unmarshal(data, &incoming)
	case FormatYAML:
		err = yaml.Unmarshal(data, &incoming)
	default:
		return 0, errors.NewPreconditionFailedError(fmt.Sprintf("Unsupported format %q", format))
	}
	if err != nil {
		return 0, errors.NewInvalidInputError(fmt.Sprintf("decode %s values: %v", format, err))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requirePackageLocked(); err != nil {
		return 0, err
	}

	applied := parameters.ValueMap{}
	for key, v := range incoming {
		if opts.SkipUnknown && !s.schema.Has(key) {
			s.log.Debug("Skipping unknown parameter", map[string]interface{}{"key": key})
			continue
		}
		applied[key] = v
	}
	s.values.Merge(applied)
	s.triggerValidationLocked()
	return len(applied), nil
}
