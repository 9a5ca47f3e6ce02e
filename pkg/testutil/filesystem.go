package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kyleterry/vhttp/pkg/files/store/backends"
)

// NewTempFilesystem returns a backends.Filesystem configured with a temporary
// directory and a cleanup callback function.
func NewTempFilesystem(t *testing.T) (string, *backends.Filesystem, func()) {
	tmp, err := os.MkdirTemp("", "github.com-kyleterry-vhttp")
	require.NoError(t, err)

	fs := backends.NewFilesystem(backends.FilesystemOptions{Path: tmp})

	return tmp, fs, func() {
		require.NoError(t, os.RemoveAll(tmp))
	}
}

// WriteFiles writes each name/content pair into dir.
func WriteFiles(t *testing.T, dir string, contents map[string]string) {
	for name, content := range contents {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
	}
}
