package workspace

import (
	"archive/zip"
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLocal_CreatesBaseDir(t *testing.T) {
	base := filepath.Join(t.TempDir(), "out")
	ws, err := NewLocal(base)
	require.NoError(t, err)
	assert.DirExists(t, ws.BaseDir())
}

func TestNewLocal_EmptyBaseDir(t *testing.T) {
	_, err := NewLocal("")
	var wsErr *Error
	require.ErrorAs(t, err, &wsErr)
}

func TestWrite_CreatesParents(t *testing.T) {
	ws, err := NewLocal(t.TempDir())
	require.NoError(t, err)

	err = ws.Write("batch_req_20260101_000000/jane_20260101_000000/record.json", []byte(`{}`))
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(ws.BaseDir(), "batch_req_20260101_000000", "jane_20260101_000000", "record.json"))
	require.NoError(t, err)
	assert.Equal(t, []byte(`{}`), data)
}

func TestEnsureDir_Idempotent(t *testing.T) {
	ws, err := NewLocal(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, ws.EnsureDir("run/candidate"))
	require.NoError(t, ws.EnsureDir("run/candidate"))
	assert.DirExists(t, filepath.Join(ws.BaseDir(), "run", "candidate"))
}

func TestResolve_RejectsEscapes(t *testing.T) {
	ws, err := NewLocal(t.TempDir())
	require.NoError(t, err)

	for _, path := range []string{"../outside", "/etc/passwd", "a/../../b", ""} {
		err := ws.Write(path, []byte("x"))
		var wsErr *Error
		require.ErrorAs(t, err, &wsErr, "path %q", path)
	}
}

func TestArchive(t *testing.T) {
	ws, err := NewLocal(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, ws.Write("run_root/a.json", []byte(`{"a":1}`)))
	require.NoError(t, ws.Write("run_root/sub/b.html", []byte("<html></html>")))

	data, err := ws.Archive("run_root")
	require.NoError(t, err)

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	entries := make(map[string]string, len(zr.File))
	for _, f := range zr.File {
		rc, err := f.Open()
		require.NoError(t, err)
		content, err := io.ReadAll(rc)
		require.NoError(t, err)
		require.NoError(t, rc.Close())
		entries[f.Name] = string(content)
	}

	assert.Equal(t, map[string]string{
		"run_root/a.json":     `{"a":1}`,
		"run_root/sub/b.html": "<html></html>",
	}, entries)
}

func TestArchive_MissingRoot(t *testing.T) {
	ws, err := NewLocal(t.TempDir())
	require.NoError(t, err)

	_, err = ws.Archive("does_not_exist")
	var wsErr *Error
	require.ErrorAs(t, err, &wsErr)
}

func TestArchiveToFile(t *testing.T) {
	ws, err := NewLocal(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, ws.Write("run_root/a.json", []byte(`{}`)))

	path, err := ws.ArchiveToFile("run_root")
	require.NoError(t, err)
	assert.Equal(t, "run_root.zip", path)
	assert.FileExists(t, filepath.Join(ws.BaseDir(), "run_root.zip"))
}
