package lantern

import (
	"errors"
	"io/fs"
	"os"
	"strings"
)

// DirEntry is one listing entry returned by FileSystem.ListDirectory.
type DirEntry struct {
	Name  string
	IsDir bool
}

// FileSystem is the read-only filesystem capability consumed by the asset
// loader. Paths are slash-separated and rooted at "/".
type FileSystem interface {
	Exists(p string) bool
	IsFile(p string) bool
	IsDirectory(p string) bool
	ListDirectory(p string) ([]DirEntry, error)
	ReadBinaryFile(p string) ([]byte, error)
}

// FSFileSystem adapts an fs.FS to FileSystem. The path "/a/b" names "a/b"
// inside FS.
type FSFileSystem struct {
	FS fs.FS
}

// NewOSFileSystem exposes the directory root as "/".
func NewOSFileSystem(root string) FSFileSystem {
	return FSFileSystem{FS: os.DirFS(root)}
}

func (f FSFileSystem) name(p string) string {
	p = strings.Trim(p, "/")
	if p == "" {
		return "."
	}
	return p
}

func (f FSFileSystem) Exists(p string) bool {
	_, err := fs.Stat(f.FS, f.name(p))
	return err == nil
}

func (f FSFileSystem) IsFile(p string) bool {
	info, err := fs.Stat(f.FS, f.name(p))
	return err == nil && info.Mode().IsRegular()
}

func (f FSFileSystem) IsDirectory(p string) bool {
	info, err := fs.Stat(f.FS, f.name(p))
	return err == nil && info.IsDir()
}

func (f FSFileSystem) ListDirectory(p string) ([]DirEntry, error) {
	entries, err := fs.ReadDir(f.FS, f.name(p))
	if err != nil {
		return nil, mapFSError(err)
	}
	out := make([]DirEntry, len(entries))
	for i, e := range entries {
		out[i] = DirEntry{Name: e.Name(), IsDir: e.IsDir()}
	}
	return out, nil
}

func (f FSFileSystem) ReadBinaryFile(p string) ([]byte, error) {
	data, err := fs.ReadFile(f.FS, f.name(p))
	if err != nil {
		return nil, mapFSError(err)
	}
	return data, nil
}

func mapFSError(err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return errors.Join(ErrNotFound, err)
	}
	if errors.Is(err, fs.ErrInvalid) {
		return errors.Join(ErrInvalidArgument, err)
	}
	return err
}
