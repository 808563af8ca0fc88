package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/snacks-api/internal/domain"
	"github.com/jhoicas/snacks-api/pkg/config"
)

func TestSave(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "uploads")
	s, err := NewLocalStorage(config.UploadConfig{Dir: dir, BaseURL: "/uploads/"})
	require.NoError(t, err)

	url, err := s.Save(context.Background(), "abc.png", "image/png", strings.NewReader("png-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "/uploads/abc.png", url)

	b, err := os.ReadFile(filepath.Join(dir, "abc.png"))
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(b))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no quedan temporales")
}

func TestSave_NombreInvalido(t *testing.T) {
	s, err := NewLocalStorage(config.UploadConfig{Dir: t.TempDir(), BaseURL: "/uploads"})
	require.NoError(t, err)

	for _, name := range []string{"", "../x.png", "a/b.png", ".hidden"} {
		_, err := s.Save(context.Background(), name, "image/png", strings.NewReader("x"))
		assert.ErrorIs(t, err, domain.ErrInvalidInput, name)
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("conexión cortada") }

func TestSave_LecturaFallidaNoPublica(t *testing.T) {
	dir := t.TempDir()
	s, err := NewLocalStorage(config.UploadConfig{Dir: dir, BaseURL: "/uploads"})
	require.NoError(t, err)

	_, err = s.Save(context.Background(), "x.png", "image/png", failingReader{})
	require.Error(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
