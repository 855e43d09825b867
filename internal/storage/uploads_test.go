package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveSameNameDoesNotCollide(t *testing.T) {
	s, err := NewUploadStorage(filepath.Join(t.TempDir(), "uploads"))
	require.NoError(t, err)

	first, err := s.Save("outfit.jpg", strings.NewReader("first"))
	require.NoError(t, err)
	second, err := s.Save("outfit.jpg", strings.NewReader("second"))
	require.NoError(t, err)

	assert.NotEqual(t, first.Path, second.Path)
	assert.Equal(t, "outfit.jpg", filepath.Base(first.Path))

	data, err := os.ReadFile(first.Path)
	require.NoError(t, err)
	assert.Equal(t, "first", string(data))
	assert.Equal(t, int64(len("first")), first.Size)

	data, err = os.ReadFile(second.Path)
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))
}

func TestRemoveDeletesRequestDir(t *testing.T) {
	s, err := NewUploadStorage(t.TempDir())
	require.NoError(t, err)

	upload, err := s.Save("a.png", strings.NewReader("x"))
	require.NoError(t, err)
	require.NoError(t, upload.Remove())

	_, err = os.Stat(filepath.Dir(upload.Path))
	assert.True(t, os.IsNotExist(err))

	var nilUpload *StoredUpload
	assert.NoError(t, nilUpload.Remove())
}

func TestSaveStaysInsideBaseDir(t *testing.T) {
	base := t.TempDir()
	s, err := NewUploadStorage(base)
	require.NoError(t, err)

	upload, err := s.Save("../../etc/passwd", strings.NewReader("x"))
	require.NoError(t, err)

	rel, err := filepath.Rel(base, upload.Path)
	require.NoError(t, err)
	assert.False(t, strings.HasPrefix(rel, ".."))
	assert.Equal(t, "passwd", filepath.Base(upload.Path))
}

func TestSanitizeFilename(t *testing.T) {
	cases := map[string]string{
		"photo.jpg":          "photo.jpg",
		"dir/photo.jpg":      "photo.jpg",
		`C:\Users\me\a.webp`: "a.webp",
		"..":                 "upload",
		"   ":                "upload",
		"/":                  "upload",
	}
	for in, want := range cases {
		assert.Equal(t, want, SanitizeFilename(in), "input %q", in)
	}
}
