package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorage_Lifecycle(t *testing.T) {
	ctx := context.Background()
	base := t.TempDir()
	s, err := NewLocalStorage(base)
	require.NoError(t, err)

	clock := time.Date(2025, 12, 1, 10, 0, 0, 0, time.UTC)
	s.now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}

	first, err := s.Save(ctx, "extrato-novembro.csv", "text/csv", strings.NewReader("Data,Descricao,Valor\n"))
	require.NoError(t, err)
	assert.Equal(t, int64(21), first.Size)
	assert.Equal(t, "extrato-novembro.csv", first.Name)
	assert.Len(t, first.SHA256, 64)
	assert.FileExists(t, filepath.Join(base, first.Path))

	second, err := s.Save(ctx, "extrato.pdf", "application/pdf", strings.NewReader("%PDF-1.4"))
	require.NoError(t, err)

	files, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, second.ID, files[0].ID)
	assert.Equal(t, first.ID, files[1].ID)

	rc, info, err := s.Open(ctx, first.ID)
	require.NoError(t, err)
	content, err := io.ReadAll(rc)
	require.NoError(t, rc.Close())
	require.NoError(t, err)
	assert.Equal(t, "Data,Descricao,Valor\n", string(content))
	assert.Equal(t, "text/csv", info.ContentType)

	require.NoError(t, s.Delete(ctx, first.ID))
	_, err = s.GetInfo(ctx, first.ID)
	assert.ErrorIs(t, err, ErrFileNotFound)
	assert.NoFileExists(t, filepath.Join(base, first.Path))

	assert.ErrorIs(t, s.Delete(ctx, uuid.New()), ErrFileNotFound)
	_, _, err = s.Open(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrFileNotFound)
}

func TestLocalStorage_MissingPayload(t *testing.T) {
	ctx := context.Background()
	base := t.TempDir()
	s, err := NewLocalStorage(base)
	require.NoError(t, err)

	info, err := s.Save(ctx, "a.csv", "text/csv", strings.NewReader("x"))
	require.NoError(t, err)
	require.NoError(t, os.Remove(filepath.Join(base, info.Path)))

	_, _, err = s.Open(ctx, info.ID)
	assert.ErrorIs(t, err, ErrFileNotFound)
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"extrato.pdf", "extrato.pdf"},
		{"../../etc/passwd", "passwd"},
		{`C:\Users\ana\extrato.csv`, "extrato.csv"},
		{"a:b*c?.csv", "a_b_c_.csv"},
		{"", "upload"},
		{"..", "upload"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, sanitizeFilename(tt.in))
		})
	}
}
