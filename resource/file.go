// Package resource ships the built-in Resource/Provider/ResourceChecker
// implementations: a filesystem resource backed by *os.File, and a shared
// in-memory map resource. They are ordinary consumers of package
// piebuild's interfaces, not special-cased by the engine.
//
// Grounded on the filesystem resource of the project's research pack
// (original_source/pie/src/resource/file.rs and .../file/hash_checker.rs):
// the open-for-read/open-for-write split, the "file, directory, or
// nonexistent" reader shape, and the rewind-after-hash discipline are
// carried over; directory hashing sorts entry names the same way (Go's
// os.ReadDir already returns entries sorted by name).
package resource

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"os"

	"piebuild"
)

// File is a filesystem path resource. Only regular files may be opened for
// writing; directories may only be read (their listing, not their bytes).
type File struct {
	Path string
}

// NewFile returns a File resource for path.
func NewFile(path string) File { return File{Path: path} }

func (f File) Key() piebuild.ResourceKey {
	return piebuild.ResourceKey{Kind: "file", ID: f.Path}
}

// OpenFile is what FileSystem.Reader returns: a path that may currently be
// a regular file (with an open handle), a directory (no handle, just
// info), or nothing at all.
type OpenFile struct {
	Path string
	Info os.FileInfo // nil if the path does not exist
	File *os.File    // non-nil only when Info is a regular file
}

// Exists reports whether anything exists at Path.
func (o *OpenFile) Exists() bool { return o.Info != nil }

// IsDir reports whether Path is a directory.
func (o *OpenFile) IsDir() bool { return o.Info != nil && o.Info.IsDir() }

// Close releases the underlying handle, if any was opened.
func (o *OpenFile) Close() error {
	if o.File != nil {
		return o.File.Close()
	}
	return nil
}

// FileSystem is the Provider backing File resources.
type FileSystem struct{}

// NewFileSystem constructs a FileSystem provider.
func NewFileSystem() *FileSystem { return &FileSystem{} }

func (*FileSystem) Reader(key piebuild.ResourceKey) (any, error) {
	path := key.ID
	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return &OpenFile{Path: path}, nil
	}
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return &OpenFile{Path: path, Info: info}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return &OpenFile{Path: path, Info: info, File: f}, nil
}

func (*FileSystem) Writer(key piebuild.ResourceKey) (any, error) {
	path := key.ID
	if info, err := os.Stat(path); err == nil {
		if info.IsDir() {
			return nil, fmt.Errorf("resource: %s is a directory, cannot open for writing", path)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	// Opened with read access too, so checkers can inspect the freshly
	// written contents from the same handle (stampWriter).
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, err
	}
	return f, nil
}

func statPath(path string) (os.FileInfo, bool, error) {
	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return info, true, nil
}

// Exists is a ResourceChecker that treats a file's existence as its whole
// state: a task depending on it re-executes only when the file starts or
// stops existing, regardless of content changes.
type Exists struct{}

func (Exists) Stamp(key piebuild.ResourceKey, _ any) (piebuild.Stamp, error) {
	_, ok, err := statPath(key.ID)
	return ok, err
}

func (Exists) StampReader(r any) (piebuild.Stamp, error) {
	return r.(*OpenFile).Exists(), nil
}

func (Exists) StampWriter(w any) (piebuild.Stamp, error) {
	_, ok, err := statPath(w.(*os.File).Name())
	return ok, err
}

func (e Exists) Check(key piebuild.ResourceKey, state any, prior piebuild.Stamp) (*piebuild.Inconsistency, error) {
	cur, err := e.Stamp(key, state)
	if err != nil {
		return nil, err
	}
	if cur == prior {
		return nil, nil
	}
	return &piebuild.Inconsistency{Reason: "file existence changed", Prior: prior, Current: cur}, nil
}

// modStamp is the Modified checker's stamp: whether the path existed, and
// its last-modified time if so.
type modStamp struct {
	Exists  bool
	ModTime int64 // UnixNano; avoids depending on time.Time's monotonic reading
}

// Modified is a ResourceChecker comparing a file or directory's last
// modified time.
type Modified struct{}

func (Modified) Stamp(key piebuild.ResourceKey, _ any) (piebuild.Stamp, error) {
	info, ok, err := statPath(key.ID)
	if err != nil || !ok {
		return modStamp{}, err
	}
	return modStamp{Exists: true, ModTime: info.ModTime().UnixNano()}, nil
}

func (Modified) StampReader(r any) (piebuild.Stamp, error) {
	of := r.(*OpenFile)
	if !of.Exists() {
		return modStamp{}, nil
	}
	return modStamp{Exists: true, ModTime: of.Info.ModTime().UnixNano()}, nil
}

func (Modified) StampWriter(w any) (piebuild.Stamp, error) {
	f := w.(*os.File)
	// Re-stat by name: f.Stat() would return the metadata from when the
	// handle was opened, which is stale if the file was since removed.
	info, ok, err := statPath(f.Name())
	if err != nil || !ok {
		return modStamp{}, err
	}
	return modStamp{Exists: true, ModTime: info.ModTime().UnixNano()}, nil
}

func (m Modified) Check(key piebuild.ResourceKey, state any, prior piebuild.Stamp) (*piebuild.Inconsistency, error) {
	cur, err := m.Stamp(key, state)
	if err != nil {
		return nil, err
	}
	if cur == prior {
		return nil, nil
	}
	return &piebuild.Inconsistency{Reason: "file modified", Prior: prior, Current: cur}, nil
}

// hashStamp is the Hash checker's stamp.
type hashStamp struct {
	Exists bool
	Sum    [32]byte
}

// Hash is a ResourceChecker comparing file contents (or, for a directory,
// its sorted entry-name listing) by SHA-256 digest.
type Hash struct{}

func (h Hash) Stamp(key piebuild.ResourceKey, _ any) (piebuild.Stamp, error) {
	info, ok, err := statPath(key.ID)
	if err != nil || !ok {
		return hashStamp{}, err
	}
	if info.IsDir() {
		sum, err := hashDirectory(key.ID)
		if err != nil {
			return hashStamp{}, err
		}
		return hashStamp{Exists: true, Sum: sum}, nil
	}
	f, err := os.Open(key.ID)
	if err != nil {
		return hashStamp{}, err
	}
	defer f.Close()
	sum, err := hashFile(f)
	if err != nil {
		return hashStamp{}, err
	}
	return hashStamp{Exists: true, Sum: sum}, nil
}

func (h Hash) StampReader(r any) (piebuild.Stamp, error) {
	of := r.(*OpenFile)
	if !of.Exists() {
		return hashStamp{}, nil
	}
	if of.IsDir() {
		sum, err := hashDirectory(of.Path)
		if err != nil {
			return hashStamp{}, err
		}
		return hashStamp{Exists: true, Sum: sum}, nil
	}
	sum, err := hashFile(of.File)
	if err != nil {
		return hashStamp{}, err
	}
	// Rewind so the handle is fresh for whatever the task does with it next.
	if _, err := of.File.Seek(0, io.SeekStart); err != nil {
		return hashStamp{}, err
	}
	return hashStamp{Exists: true, Sum: sum}, nil
}

func (h Hash) StampWriter(w any) (piebuild.Stamp, error) {
	f := w.(*os.File)
	if _, ok, err := statPath(f.Name()); err != nil || !ok {
		return hashStamp{}, err
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return hashStamp{}, err
	}
	sum, err := hashFile(f)
	if err != nil {
		return hashStamp{}, err
	}
	return hashStamp{Exists: true, Sum: sum}, nil
}

func (h Hash) Check(key piebuild.ResourceKey, state any, prior piebuild.Stamp) (*piebuild.Inconsistency, error) {
	cur, err := h.Stamp(key, state)
	if err != nil {
		return nil, err
	}
	if cur == prior {
		return nil, nil
	}
	return &piebuild.Inconsistency{Reason: "file hash changed", Prior: prior, Current: cur}, nil
}

func hashFile(r io.Reader) ([32]byte, error) {
	hasher := sha256.New()
	if _, err := io.Copy(hasher, r); err != nil {
		return [32]byte{}, err
	}
	var sum [32]byte
	copy(sum[:], hasher.Sum(nil))
	return sum, nil
}

func hashDirectory(path string) ([32]byte, error) {
	entries, err := os.ReadDir(path) // already sorted by name
	if err != nil {
		return [32]byte{}, err
	}
	hasher := sha256.New()
	for _, e := range entries {
		hasher.Write([]byte(e.Name()))
	}
	var sum [32]byte
	copy(sum[:], hasher.Sum(nil))
	return sum, nil
}
