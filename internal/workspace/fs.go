package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var _ FileReader = (*FSReader)(nil)

// FSReader reads files from a project working tree.
type FSReader struct {
	rootPath string
}

func NewFSReader(rootPath string) *FSReader {
	return &FSReader{rootPath: filepath.Clean(rootPath)}
}

func (r *FSReader) ReadFile(relPath string) ([]byte, error) {
	absPath := filepath.Clean(filepath.Join(r.rootPath, relPath))

	// パストラバーサル防止
	if absPath != r.rootPath && !strings.HasPrefix(absPath, r.rootPath+string(filepath.Separator)) {
		return nil, fmt.Errorf("path %q is outside project root", relPath)
	}

	return os.ReadFile(absPath)
}
