// internal/common/resources/reader_test.go
package resources

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"connectorgen/internal/common/logger"
)

func TestReader_ReadText(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "rest"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "rest", "endpoints.txt"), []byte("list endpoints"), 0o644))

	r := NewReader(logger.NewNoOpLogger(), map[string]string{"prompts": root})

	t.Run("existing file", func(t *testing.T) {
		assert.Equal(t, "list endpoints", r.ReadText("prompts", "rest/endpoints.txt"))
	})

	t.Run("missing file degrades to empty", func(t *testing.T) {
		assert.Equal(t, "", r.ReadText("prompts", "rest/nope.txt"))
	})

	t.Run("unknown namespace degrades to empty", func(t *testing.T) {
		assert.Equal(t, "", r.ReadText("docs", "rest/endpoints.txt"))
	})

	t.Run("path traversal degrades to empty", func(t *testing.T) {
		assert.Equal(t, "", r.ReadText("prompts", "../../etc/passwd"))
	})
}
