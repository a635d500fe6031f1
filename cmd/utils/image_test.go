package utils

import (
	"bytes"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// uploadedFile builds a multipart file/header pair the way an HTTP upload
// would deliver it.
func uploadedFile(t *testing.T, filename string, content []byte) (multipart.File, *multipart.FileHeader) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("image", filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	form, err := multipart.NewReader(&buf, mw.Boundary()).ReadForm(32 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { form.RemoveAll() })

	headers := form.File["image"]
	require.Len(t, headers, 1)

	file, err := headers[0].Open()
	require.NoError(t, err)
	t.Cleanup(func() { file.Close() })

	return file, headers[0]
}

func chTempDir(t *testing.T) {
	t.Helper()

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { os.Chdir(wd) })
}

func TestSaveImage_StoresFileAndReturnsURL(t *testing.T) {
	chTempDir(t)

	file, header := uploadedFile(t, "avatar.png", []byte("not-really-a-png"))

	url, err := SaveImage(file, header)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "/images/"), "got %q", url)
	assert.True(t, strings.HasSuffix(url, ".png"), "got %q", url)
	// Client filename must not leak into the stored name.
	assert.NotContains(t, url, "avatar")

	stored, err := os.ReadFile(filepath.Join(ImagePath, filepath.Base(url)))
	require.NoError(t, err)
	assert.Equal(t, []byte("not-really-a-png"), stored)
}

func TestSaveImage_RejectsUnsupportedType(t *testing.T) {
	chTempDir(t)

	file, header := uploadedFile(t, "notes.txt", []byte("hello"))

	_, err := SaveImage(file, header)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported image type")
}

func TestSaveImage_RejectsOversize(t *testing.T) {
	chTempDir(t)

	file, header := uploadedFile(t, "big.jpg", []byte("x"))
	header.Size = MaxImageSize + 1

	_, err := SaveImage(file, header)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "limit")
}

func TestDeleteImage(t *testing.T) {
	chTempDir(t)

	file, header := uploadedFile(t, "gone.gif", []byte("x"))
	url, err := SaveImage(file, header)
	require.NoError(t, err)

	require.NoError(t, DeleteImage(url))
	_, err = os.Stat(filepath.Join(ImagePath, filepath.Base(url)))
	assert.True(t, os.IsNotExist(err))

	// Deleting twice is a no-op.
	require.NoError(t, DeleteImage(url))
}
