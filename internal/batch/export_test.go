package batch

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractPayloads(t *testing.T) {
	tests := []struct {
		name     string
		data     string
		field    string
		expected []string
	}{
		{
			name:     "string payloads",
			data:     `[{"payload":"<script>"},{"payload":"' OR 1=1 --"}]`,
			field:    "payload",
			expected: []string{"<script>", "' OR 1=1 --"},
		},
		{
			name:     "missing and null become empty",
			data:     `[{"other":1},{"payload":null},{"payload":"x"}]`,
			field:    "payload",
			expected: []string{"", "", "x"},
		},
		{
			name:     "non-string values keep their JSON text",
			data:     `[{"payload":42},{"payload":{"a":1}},{"payload":true}]`,
			field:    "payload",
			expected: []string{"42", `{"a":1}`, "true"},
		},
		{
			name:     "nested path",
			data:     `[{"request":{"body":"id=1"}}]`,
			field:    "request.body",
			expected: []string{"id=1"},
		},
		{
			name:     "non-object entries",
			data:     `["bare", 1]`,
			field:    "payload",
			expected: []string{"", ""},
		},
		{
			name:     "empty array",
			data:     `[]`,
			field:    "payload",
			expected: []string{},
		},
		{
			name:     "unicode is preserved",
			data:     `[{"payload":"日本語 ☺"}]`,
			field:    "payload",
			expected: []string{"日本語 ☺"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractPayloads([]byte(tt.data), tt.field)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestExtractPayloadsRejectsInvalidInput(t *testing.T) {
	_, err := ExtractPayloads([]byte(`{"payload":"x"}`), "payload")
	assert.ErrorIs(t, err, ErrNotArray)

	_, err = ExtractPayloads([]byte(`[{"payload":`), "payload")
	assert.Error(t, err)
}

func TestLoadExport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"payload":"a"}]`), 0o644))

	got, err := LoadExport(path, "payload")
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, got)

	_, err = LoadExport(filepath.Join(t.TempDir(), "missing.json"), "payload")
	assert.Error(t, err)
}
