package workspace

import (
	"archive/zip"
	"bytes"
	"io/fs"
	"os"
	"path/filepath"
)

// Archive bundles every artifact under root into a zip payload. Entry names
// are slash-separated paths relative to root's parent, so the archive
// unpacks into the run folder itself.
func (w *Local) Archive(root string) ([]byte, error) {
	rootAbs, err := w.resolve(root)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(rootAbs); err != nil {
		return nil, &Error{Path: root, Message: "run folder not found", Cause: err}
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	base := filepath.Dir(rootAbs)
	walkErr := filepath.WalkDir(rootAbs, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(base, path)
		if err != nil {
			return err
		}
		entry, err := zw.Create(filepath.ToSlash(rel))
		if err != nil {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		_, err = entry.Write(data)
		return err
	})
	if walkErr != nil {
		_ = zw.Close()
		return nil, &Error{Path: root, Message: "failed to build archive", Cause: walkErr}
	}
	if err := zw.Close(); err != nil {
		return nil, &Error{Path: root, Message: "failed to finalize archive", Cause: err}
	}

	return buf.Bytes(), nil
}

// ArchiveToFile bundles the run folder into a zip written alongside it and
// returns the archive's workspace-relative path.
func (w *Local) ArchiveToFile(root string) (string, error) {
	data, err := w.Archive(root)
	if err != nil {
		return "", err
	}
	path := root + ".zip"
	if err := w.Write(path, data); err != nil {
		return "", err
	}
	return path, nil
}
