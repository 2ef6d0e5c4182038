// Package upload stores multipart files on disk under per-feature
// subdirectories and hands back the generated filename and public URL.
package upload

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

type Store struct {
	BaseDir string
}

type SavedFile struct {
	Filename     string
	URL          string
	OriginalName string
}

// Save writes the uploaded file under BaseDir/subdir with a uuid-prefixed
// filename, creating the directory if needed.
func (s *Store) Save(subdir string, fh *multipart.FileHeader) (*SavedFile, error) {
	src, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("upload: open multipart file: %w", err)
	}
	defer src.Close()

	originalName := filepath.Base(fh.Filename)
	filename := uuid.NewString() + filepath.Ext(originalName)

	dir := filepath.Join(s.BaseDir, subdir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("upload: create dir: %w", err)
	}

	dst, err := os.Create(filepath.Join(dir, filename))
	if err != nil {
		return nil, fmt.Errorf("upload: create file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return nil, fmt.Errorf("upload: write file: %w", err)
	}

	return &SavedFile{
		Filename:     filename,
		URL:          "/uploads/" + subdir + "/" + filename,
		OriginalName: originalName,
	}, nil
}

// Delete removes a stored file; a missing file is not an error.
func (s *Store) Delete(subdir, filename string) error {
	err := os.Remove(filepath.Join(s.BaseDir, subdir, filepath.Base(filename)))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
