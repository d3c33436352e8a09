package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	photoutils "github.com/the-little-hackers/photo-utils"
)

// A structurally valid JPEG with no Exif block at all.
var bareJPEG = []byte{0xFF, 0xD8, 0xFF, 0xD9}

func writePhoto(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestResolvePhotoStrictMissingCaptureTime(t *testing.T) {
	path := writePhoto(t, "photo.jpg", bareJPEG)

	res := resolvePhoto(path, ProgramOptions{})
	require.ErrorIs(t, res.Err, photoutils.ErrCaptureTimeMissing)
	require.False(t, res.HasTime)
}

func TestResolvePhotoLenientMissingCaptureTime(t *testing.T) {
	path := writePhoto(t, "photo.jpg", bareJPEG)

	res := resolvePhoto(path, ProgramOptions{Lenient: true})
	require.NoError(t, res.Err)
	require.False(t, res.HasTime)
}

func TestResolvePhotoLenientChecksum(t *testing.T) {
	path := writePhoto(t, "photo.jpg", bareJPEG)

	res := resolvePhoto(path, ProgramOptions{Lenient: true, WithChecksum: true})
	require.NoError(t, res.Err)

	sum, err := contentChecksum(path)
	require.NoError(t, err)
	require.Len(t, sum, 64)
	require.Equal(t, sum, res.Checksum)
}

func TestEnumeratePhotos(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.jpg"), bareJPEG, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.NEF"), bareJPEG, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "nested"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "nested", "c.tiff"), bareJPEG, 0o644))

	results := make(chan enumerationResult, 1)
	enumeratePhotos(dir, zerolog.Nop(), results)

	res := <-results
	require.Equal(t, dir, res.sourceDir)
	require.Len(t, res.paths, 3)
}
