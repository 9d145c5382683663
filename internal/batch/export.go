package batch

import (
	"errors"
	"fmt"
	"os"

	"github.com/tidwall/gjson"
)

// ErrNotArray is returned when an export is valid JSON but not a top-level array.
var ErrNotArray = errors.New("export must be a JSON array")

// ExtractPayloads returns the value at field for every element of a JSON array,
// in order. field is a gjson path, so nested values such as "request.body" are
// reachable. Missing or null values become the empty string; non-string values
// are rendered as their JSON text.
func ExtractPayloads(data []byte, field string) ([]string, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("export is not valid JSON")
	}
	root := gjson.ParseBytes(data)
	if !root.IsArray() {
		return nil, ErrNotArray
	}

	payloads := make([]string, 0)
	root.ForEach(func(_, entry gjson.Result) bool {
		value := entry.Get(field)
		switch value.Type {
		case gjson.Null:
			payloads = append(payloads, "")
		case gjson.String:
			payloads = append(payloads, value.Str)
		default:
			payloads = append(payloads, value.Raw)
		}
		return true
	})
	return payloads, nil
}

// LoadExport reads path and extracts its payloads.
func LoadExport(path, field string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read export %s: %w", path, err)
	}
	payloads, err := ExtractPayloads(data, field)
	if err != nil {
		return nil, fmt.Errorf("parse export %s: %w", path, err)
	}
	return payloads, nil
}
