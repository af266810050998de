// internal/common/resources/reader.go
package resources

import (
	"os"
	"path/filepath"
	"strings"

	"connectorgen/internal/common/logger"
)

// Reader loads prompt templates and bundled documentation from a root
// directory per namespace. Missing or unreadable files degrade to an
// empty string so a prompt gap never takes a pipeline down.
type Reader struct {
	roots map[string]string
	log   logger.Logger
}

func NewReader(log logger.Logger, roots map[string]string) *Reader {
	return &Reader{roots: roots, log: log}
}

// ReadText returns the contents of relPath under the namespace root, or ""
// when the namespace is unknown, the path escapes the root, or the file
// cannot be read.
func (r *Reader) ReadText(namespace, relPath string) string {
	root, ok := r.roots[namespace]
	if !ok {
		r.log.Warn("Unknown resource namespace", map[string]interface{}{
			"namespace": namespace,
			"path":      relPath,
		})
		return ""
	}

	full := filepath.Join(root, filepath.Clean("/"+relPath))
	if !strings.HasPrefix(full, filepath.Clean(root)+string(os.PathSeparator)) {
		r.log.Warn("Resource path escapes namespace root", map[string]interface{}{
			"namespace": namespace,
			"path":      relPath,
		})
		return ""
	}

	data, err := os.ReadFile(full)
	if err != nil {
		r.log.Warn("Resource not readable", map[string]interface{}{
			"namespace": namespace,
			"path":      relPath,
			"error":     err.Error(),
		})
		return ""
	}
	return string(data)
}
