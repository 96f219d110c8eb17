package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorage_UploadDownloadDelete(t *testing.T) {
	// Setup
	ctx := context.Background()
	s, err := NewLocalStorage(t.TempDir(), "http://localhost:8080/uploads/")
	require.NoError(t, err)

	// Act
	path, err := s.Save(ctx, "employees/1/contract.pdf", strings.NewReader("contract"))
	require.NoError(t, err)

	// Assert
	assert.Equal(t, "employees/1/contract.pdf", path)

	rc, err := s.Open(ctx, path)
	require.NoError(t, err)
	body, err := io.ReadAll(rc)
	require.NoError(t, rc.Close())
	require.NoError(t, err)
	assert.Equal(t, "contract", string(body))

	url, err := s.URL(path)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/uploads/employees/1/contract.pdf", url)

	require.NoError(t, s.Remove(ctx, path))
	exists, err := s.Exists(ctx, path)
	require.NoError(t, err)
	assert.False(t, exists)

	// Deleting again is a no-op.
	assert.NoError(t, s.Remove(ctx, path))
}

func TestLocalStorage_RejectsTraversal(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocalStorage(t.TempDir(), "")
	require.NoError(t, err)

	_, err = s.Save(ctx, "../../etc/passwd", strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrInvalidPath)

	_, err = s.Open(ctx, "..")
	assert.ErrorIs(t, err, ErrInvalidPath)
}

func TestLocalStorage_Download_NotFound(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir(), "")
	require.NoError(t, err)

	_, err = s.Open(context.Background(), "missing.pdf")

	assert.ErrorIs(t, err, ErrFileNotFound)
}

func TestUploadOptions_Validate(t *testing.T) {
	assert.NoError(t, DocumentUploadOptions.Validate("cv.PDF", 1024))
	assert.ErrorIs(t, DocumentUploadOptions.Validate("cv.exe", 1024), ErrExtensionDenied)
	assert.ErrorIs(t, DocumentUploadOptions.Validate("cv.pdf", 11<<20), ErrFileTooLarge)
}

func TestLocalStorage_Save_TooLarge(t *testing.T) {
	// Setup
	ctx := context.Background()
	s, err := NewLocalStorage(t.TempDir(), "")
	require.NoError(t, err)
	s.maxSize = 4

	// Act
	_, err = s.Save(ctx, "employees/1/scan.pdf", strings.NewReader("too many bytes"))

	// Assert
	assert.ErrorIs(t, err, ErrFileTooLarge)
	exists, err := s.Exists(ctx, "employees/1/scan.pdf")
	require.NoError(t, err)
	assert.False(t, exists)
	leftovers, err := os.ReadDir(filepath.Join(s.root, "employees", "1"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}
