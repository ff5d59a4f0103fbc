package secrets

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/irrigo/internal/errors"
)

func TestExpandString(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		envVars map[string]string
		want    string
		wantErr string
	}{
		{name: "empty string", input: "", want: ""},
		{name: "literal string", input: "literal-value", want: "literal-value"},
		{name: "bare dollar kept", input: "pa$$word$X", want: "pa$$word$X"},
		{
			name:    "simple reference",
			input:   "${IRRIGO_TEST_TOKEN}",
			envVars: map[string]string{"IRRIGO_TEST_TOKEN": "secret123"},
			want:    "secret123",
		},
		{
			name:    "reference inside a URL",
			input:   "telegram://${IRRIGO_TEST_TOKEN}@telegram?chats=@farm",
			envVars: map[string]string{"IRRIGO_TEST_TOKEN": "abc"},
			want:    "telegram://abc@telegram?chats=@farm",
		},
		{
			name:    "default used when unset",
			input:   "${IRRIGO_TEST_UNSET:-fallback}",
			want:    "fallback",
		},
		{
			name:    "empty default",
			input:   "x${IRRIGO_TEST_UNSET:-}y",
			want:    "xy",
		},
		{
			name:    "missing variables listed",
			input:   "${IRRIGO_TEST_A}:${IRRIGO_TEST_B}",
			wantErr: "IRRIGO_TEST_A, IRRIGO_TEST_B",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}

			got, err := ExpandString(tt.input)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				assert.True(t, errors.IsCategory(err, errors.CategoryConfiguration))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func writeSecret(t *testing.T, content string, mode os.FileMode) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "secret")
	require.NoError(t, os.WriteFile(path, []byte(content), mode))
	return path
}

func TestReadFile(t *testing.T) {
	t.Parallel()

	t.Run("trims trailing newlines", func(t *testing.T) {
		t.Parallel()
		got, err := ReadFile(writeSecret(t, " key with spaces \r\n\n", 0o600))
		require.NoError(t, err)
		assert.Equal(t, " key with spaces ", got)
	})

	t.Run("permissive file still read", func(t *testing.T) {
		t.Parallel()
		got, err := ReadFile(writeSecret(t, "key", 0o644))
		require.NoError(t, err)
		assert.Equal(t, "key", got)
	})

	t.Run("empty file", func(t *testing.T) {
		t.Parallel()
		_, err := ReadFile(writeSecret(t, "\n", 0o600))
		require.Error(t, err)
		assert.True(t, errors.IsCategory(err, errors.CategoryFileIO))
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()
		_, err := ReadFile(filepath.Join(t.TempDir(), "nope"))
		require.Error(t, err)
	})

	t.Run("directory", func(t *testing.T) {
		t.Parallel()
		_, err := ReadFile(t.TempDir())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not a regular file")
	})

	t.Run("too large", func(t *testing.T) {
		t.Parallel()
		big := make([]byte, maxSecretFileSize+1)
		for i := range big {
			big[i] = 'a'
		}
		_, err := ReadFile(writeSecret(t, string(big), 0o600))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "too large")
	})

	t.Run("empty path", func(t *testing.T) {
		t.Parallel()
		_, err := ReadFile("")
		require.Error(t, err)
	})
}

func TestResolve(t *testing.T) {
	t.Setenv("IRRIGO_TEST_TOKEN", "from-env")
	file := writeSecret(t, "from-file\n", 0o600)

	got, err := Resolve(file, "${IRRIGO_TEST_TOKEN}")
	require.NoError(t, err)
	assert.Equal(t, "from-file", got, "file takes precedence")

	got, err = Resolve("", "${IRRIGO_TEST_TOKEN}")
	require.NoError(t, err)
	assert.Equal(t, "from-env", got)

	got, err = Resolve("", "literal")
	require.NoError(t, err)
	assert.Equal(t, "literal", got)

	got, err = Resolve("", "")
	require.NoError(t, err)
	assert.Empty(t, got)
}
