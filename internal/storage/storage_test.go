package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalFileProvider(t *testing.T) {
	dir := t.TempDir()
	provider := NewLocalFileProvider(dir)
	ctx := context.Background()

	t.Run("read missing file fails", func(t *testing.T) {
		_, err := provider.Read(ctx, "missing.json")
		assert.Error(t, err)
	})

	t.Run("exists on missing file", func(t *testing.T) {
		exists, err := provider.Exists(ctx, "missing.json")
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("write then read round trip", func(t *testing.T) {
		err := provider.Write(ctx, "schemas/hr.json", []byte(`{"tables":{}}`))
		require.NoError(t, err)

		exists, err := provider.Exists(ctx, "schemas/hr.json")
		require.NoError(t, err)
		assert.True(t, exists)

		data, err := provider.Read(ctx, "schemas/hr.json")
		require.NoError(t, err)
		assert.Equal(t, `{"tables":{}}`, string(data))
	})

	t.Run("list returns relative paths", func(t *testing.T) {
		require.NoError(t, provider.Write(ctx, "audit/a.json", []byte("{}")))
		require.NoError(t, provider.Write(ctx, "audit/b.json", []byte("{}")))

		files, err := provider.List(ctx, "audit")
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"audit/a.json", "audit/b.json"}, files)
	})

	t.Run("list on missing prefix is empty", func(t *testing.T) {
		files, err := provider.List(ctx, "nothing-here")
		require.NoError(t, err)
		assert.Empty(t, files)
	})
}

func TestPrefixedFileProvider(t *testing.T) {
	dir := t.TempDir()
	base := NewLocalFileProvider(dir)
	prefixed := NewPrefixedFileProvider(base, "tenant-a")
	ctx := context.Background()

	require.NoError(t, prefixed.Write(ctx, "doc.json", []byte("x")))

	// Visible through the base provider under the prefix
	exists, err := base.Exists(ctx, "tenant-a/doc.json")
	require.NoError(t, err)
	assert.True(t, exists)

	// And through the prefixed provider without it
	data, err := prefixed.Read(ctx, "doc.json")
	require.NoError(t, err)
	assert.Equal(t, "x", string(data))

	files, err := prefixed.List(ctx, "")
	require.NoError(t, err)
	assert.Contains(t, files, "doc.json")
}

func TestNewFileProvider(t *testing.T) {
	ctx := context.Background()

	t.Run("local backend", func(t *testing.T) {
		provider, err := NewFileProvider(ctx, Settings{Backend: BackendLocal, BaseDir: t.TempDir()})
		require.NoError(t, err)
		assert.IsType(t, &LocalFileProvider{}, provider)
	})

	t.Run("empty backend defaults to local", func(t *testing.T) {
		provider, err := NewFileProvider(ctx, Settings{BaseDir: t.TempDir()})
		require.NoError(t, err)
		assert.IsType(t, &LocalFileProvider{}, provider)
	})

	t.Run("local without base dir fails", func(t *testing.T) {
		_, err := NewFileProvider(ctx, Settings{Backend: BackendLocal})
		assert.Error(t, err)
	})

	t.Run("s3 without bucket fails", func(t *testing.T) {
		_, err := NewFileProvider(ctx, Settings{Backend: BackendS3})
		assert.Error(t, err)
	})

	t.Run("unknown backend fails", func(t *testing.T) {
		_, err := NewFileProvider(ctx, Settings{Backend: "ftp"})
		assert.Error(t, err)
	})
}
