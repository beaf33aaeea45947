package webserver

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDirFileReaderReadsUnderRoot(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "hello.txt"), []byte("hi"), 0o644))

	r := dirFileReader{root: dir}
	data, err := r.ReadFile("hello.txt")
	require.NoError(t, err)
	require.Equal(t, []byte("hi"), data.Buf)
}

func TestDirFileReaderRejectsTraversal(t *testing.T) {
	dir := t.TempDir()
	r := dirFileReader{root: dir}
	_, err := r.ReadFile("../../../../etc/passwd")
	require.Error(t, err)
}

func TestDirFileReaderMissingFile(t *testing.T) {
	dir := t.TempDir()
	r := dirFileReader{root: dir}
	_, err := r.ReadFile("nope.txt")
	require.Error(t, err)
}
