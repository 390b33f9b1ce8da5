package services

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/chachabrian/hilot-backend/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func multipartFile(t *testing.T, field, name string, content []byte) *multipart.FileHeader {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	part, err := w.CreateFormFile(field, name)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/", body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))
	return req.MultipartForm.File[field][0]
}

func TestLocalStorageUpload(t *testing.T) {
	dir := t.TempDir()
	s, err := NewStorage(StorageConfig{UploadDir: dir, BaseURL: "https://api.hilot.test/"}, logging.Discard())
	require.NoError(t, err)
	assert.False(t, s.UsingS3())
	assert.Equal(t, dir, s.UploadDir())

	url, err := s.Upload(context.Background(), multipartFile(t, "license", "PRC.PDF", []byte("%PDF-1.4")), "licenses")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "https://api.hilot.test/uploads/licenses/"), url)
	assert.True(t, strings.HasSuffix(url, ".pdf"), url)

	stored, err := os.ReadFile(filepath.Join(dir, "licenses", filepath.Base(url)))
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4", string(stored))
}

func TestUploadRejectsLargeFiles(t *testing.T) {
	s, err := NewStorage(StorageConfig{UploadDir: t.TempDir()}, logging.Discard())
	require.NoError(t, err)

	fh := multipartFile(t, "license", "big.png", []byte("x"))
	fh.Size = maxDocumentSize + 1
	_, err = s.Upload(context.Background(), fh, "licenses")
	assert.Error(t, err)
}
