package backends_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kyleterry/vhttp/pkg/files/errors"
	"github.com/kyleterry/vhttp/pkg/files/store"
	"github.com/kyleterry/vhttp/pkg/files/store/backends"
	"github.com/kyleterry/vhttp/pkg/testutil"
)

func TestFilesystemGet(t *testing.T) {
	tmpdir, fs, cleanup := testutil.NewTempFilesystem(t)
	defer cleanup()

	testutil.WriteFiles(t, tmpdir, map[string]string{"abc123": "test payload"})

	r, err := fs.Get("abc123")
	require.NoError(t, err)

	require.Equal(t, "test payload", string(r.Content))
	require.Equal(t, int64(12), r.Size)
	// no extension, so the type is sniffed from the content
	require.Contains(t, r.ContentType, "text/plain")

	_, err = fs.Get("missing")
	require.True(t, errors.IsNotFound(err))
}

func TestFilesystemLoad(t *testing.T) {
	tmpdir, fs, cleanup := testutil.NewTempFilesystem(t)
	defer cleanup()

	testutil.WriteFiles(t, tmpdir, map[string]string{
		"b.json": `{"b":1}`,
		"a.txt":  "a",
		"empty":  "",
	})
	require.NoError(t, os.Mkdir(filepath.Join(tmpdir, "subdir"), 0755))

	entries, err := fs.Load()
	require.NoError(t, err)
	require.Len(t, entries, 3)

	require.Equal(t, "a.txt", entries[0].Key)
	require.Equal(t, "b.json", entries[1].Key)
	require.Equal(t, "empty", entries[2].Key)
	require.Equal(t, "application/json", entries[1].Record.ContentType)
	require.Equal(t, "", entries[2].Record.ContentType)

	require.NoError(t, store.New().ReplaceAll(entries))
}

func TestFilesystemLoadFollowsSymlinks(t *testing.T) {
	tmpdir, fs, cleanup := testutil.NewTempFilesystem(t)
	defer cleanup()

	outside := t.TempDir()
	testutil.WriteFiles(t, outside, map[string]string{"target.txt": "linked content"})
	require.NoError(t, os.Mkdir(filepath.Join(outside, "dir"), 0755))

	testutil.WriteFiles(t, tmpdir, map[string]string{"plain.txt": "plain"})
	require.NoError(t, os.Symlink(filepath.Join(outside, "target.txt"), filepath.Join(tmpdir, "link.txt")))
	require.NoError(t, os.Symlink(filepath.Join(outside, "dir"), filepath.Join(tmpdir, "linkdir")))
	require.NoError(t, os.Symlink(filepath.Join(outside, "gone.txt"), filepath.Join(tmpdir, "dangling.txt")))

	entries, err := fs.Load()
	require.NoError(t, err)
	require.Len(t, entries, 2)

	require.Equal(t, "link.txt", entries[0].Key)
	require.Equal(t, "linked content", string(entries[0].Record.Content))
	require.Equal(t, int64(len("linked content")), entries[0].Record.Size)
	require.Equal(t, "plain.txt", entries[1].Key)
}

func TestFilesystemLoadMissingDirectory(t *testing.T) {
	fs := backends.NewFilesystem(backends.FilesystemOptions{Path: filepath.Join(os.TempDir(), "does-not-exist-vhttp")})

	_, err := fs.Load()
	require.Error(t, err)
}

func TestLoadManifest(t *testing.T) {
	tmpdir, _, cleanup := testutil.NewTempFilesystem(t)
	defer cleanup()

	require.NoError(t, os.Mkdir(filepath.Join(tmpdir, "docs"), 0755))
	testutil.WriteFiles(t, tmpdir, map[string]string{
		"docs/report.pdf": "%PDF-1.4",
		"notes.txt":       "notes",
	})

	manifest := `files:
  - path: docs/report.pdf
  - name: notes
    path: notes.txt
    contentType: text/markdown
    lastModified: 2024-01-02T15:04:05Z
`
	path := filepath.Join(tmpdir, "manifest.yaml")
	require.NoError(t, os.WriteFile(path, []byte(manifest), 0644))

	entries, err := backends.LoadManifest(path)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	require.Equal(t, "report.pdf", entries[0].Key)
	require.Equal(t, "application/pdf", entries[0].Record.ContentType)

	require.Equal(t, "notes", entries[1].Key)
	require.Equal(t, "notes", entries[1].Record.Name)
	require.Equal(t, "text/markdown", entries[1].Record.ContentType)
	require.Equal(t, time.Date(2024, time.January, 2, 15, 4, 5, 0, time.UTC), entries[1].Record.LastModified.UTC())

	require.NoError(t, store.New().ReplaceAll(entries))
}

func TestLoadManifestErrors(t *testing.T) {
	tmpdir, _, cleanup := testutil.NewTempFilesystem(t)
	defer cleanup()

	var cases = []struct {
		desc     string
		manifest string
	}{
		{"malformed yaml", "files: [unterminated"},
		{"missing path", "files:\n  - name: x\n"},
		{"missing file", "files:\n  - path: nope.txt\n"},
	}

	for _, c := range cases {
		t.Run(c.desc, func(t *testing.T) {
			path := filepath.Join(tmpdir, "manifest.yaml")
			require.NoError(t, os.WriteFile(path, []byte(c.manifest), 0644))

			_, err := backends.LoadManifest(path)
			require.Error(t, err)
		})
	}
}

func TestLoadManifestMissingFileIsNotFound(t *testing.T) {
	tmpdir, _, cleanup := testutil.NewTempFilesystem(t)
	defer cleanup()

	path := filepath.Join(tmpdir, "manifest.yaml")
	require.NoError(t, os.WriteFile(path, []byte("files:\n  - path: nope.txt\n"), 0644))

	_, err := backends.LoadManifest(path)
	require.True(t, errors.IsNotFound(err), err)
}

func TestPlaceholderIsValidSnapshot(t *testing.T) {
	s := store.New()

	require.NoError(t, s.ReplaceAll(backends.Placeholder()))
	require.Equal(t, len(backends.Placeholder()), s.Size())

	rec, err := s.Get("LICENSE")
	require.NoError(t, err)
	require.Equal(t, "", rec.ContentType)
}
