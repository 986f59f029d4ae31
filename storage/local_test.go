package storage

import (
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveOpenRemove(t *testing.T) {
	st, err := NewLocal(t.TempDir())
	require.NoError(t, err)

	path, err := st.Save(strings.NewReader("lecture bytes"), "Lecture 1.mp4")
	require.NoError(t, err)
	assert.Equal(t, ".mp4", filepath.Ext(path))

	f, err := st.Open(path)
	require.NoError(t, err)
	data, err := io.ReadAll(f)
	require.NoError(t, err)
	require.NoError(t, f.Close())
	assert.Equal(t, "lecture bytes", string(data))

	require.NoError(t, st.Remove(path))
	_, err = st.Open(path)
	assert.Error(t, err)

	// removing twice is fine
	assert.NoError(t, st.Remove(path))
}

func TestSaveGeneratesUniqueNames(t *testing.T) {
	st, err := NewLocal(t.TempDir())
	require.NoError(t, err)

	a, err := st.Save(strings.NewReader("a"), "notes.pdf")
	require.NoError(t, err)
	b, err := st.Save(strings.NewReader("b"), "notes.pdf")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestPathConfinement(t *testing.T) {
	dir := t.TempDir()
	st, err := NewLocal(dir)
	require.NoError(t, err)

	_, err = st.Open(filepath.Join(dir, "..", "etc", "passwd"))
	assert.Error(t, err)
	assert.Error(t, st.Remove("/etc/passwd"))
}

func TestOddExtensionDropped(t *testing.T) {
	st, err := NewLocal(t.TempDir())
	require.NoError(t, err)
	path, err := st.Save(strings.NewReader("x"), "weird.name with spaces")
	require.NoError(t, err)
	assert.Equal(t, "", filepath.Ext(path))
}
