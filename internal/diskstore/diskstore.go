// Package diskstore is a minimal reference implementation of the
// storage-server disk backend that spec.md places out of scope for
// this module: local file I/O and local directory creation/deletion
// backing the Storage and Command capabilities. It exists so
// cmd/storage-server has something real to serve and so the naming
// server's integration tests have a real Command/Storage pair to
// register and exercise — it is demonstration plumbing, not a spec
// deliverable.
package diskstore

import (
	"io"
	"os"
	"path/filepath"

	"github.com/ashraghunath/DSD-Assignment3-DFS-RMI/dfserrors"
	"github.com/ashraghunath/DSD-Assignment3-DFS-RMI/dfspath"
	"github.com/ashraghunath/DSD-Assignment3-DFS-RMI/dfsstore"
)

// Store backs both the Storage and Command capabilities with a local
// directory tree rooted at Root.
type Store struct {
	Root string
}

var (
	_ dfsstore.Storage = (*Store)(nil)
	_ dfsstore.Command = (*Store)(nil)
)

// New returns a Store rooted at root, creating root if it does not
// already exist.
func New(root string) (*Store, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, dfserrors.E(dfserrors.Transport, err)
	}
	return &Store{Root: root}, nil
}

func (s *Store) localPath(p dfspath.Path) string {
	return p.ToFile(s.Root)
}

// Create implements dfsstore.Command.
func (s *Store) Create(p dfspath.Path) (bool, error) {
	name := s.localPath(p)
	if err := os.MkdirAll(filepath.Dir(name), 0o755); err != nil {
		return false, dfserrors.E(dfserrors.Transport, err)
	}
	f, err := os.OpenFile(name, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return false, nil
		}
		return false, dfserrors.E(dfserrors.Transport, err)
	}
	return true, f.Close()
}

// Delete implements dfsstore.Command.
func (s *Store) Delete(p dfspath.Path) (bool, error) {
	name := s.localPath(p)
	if err := os.RemoveAll(name); err != nil {
		return false, dfserrors.E(dfserrors.Transport, err)
	}
	return true, nil
}

// Copy implements dfsstore.Command: fetch p's bytes from the Storage
// capability source and write them locally.
func (s *Store) Copy(p dfspath.Path, source dfsstore.Storage) (bool, error) {
	const op = "diskstore.Copy"
	size, err := source.Size(p)
	if err != nil {
		return false, dfserrors.E(op, err)
	}
	data, err := source.Read(p, 0, size)
	if err != nil {
		return false, dfserrors.E(op, err)
	}
	return s.Write(p, 0, data)
}

// Size implements dfsstore.Storage.
func (s *Store) Size(p dfspath.Path) (int64, error) {
	info, err := os.Stat(s.localPath(p))
	if os.IsNotExist(err) {
		return 0, dfserrors.E(dfserrors.NotFound, err)
	}
	if err != nil {
		return 0, dfserrors.E(dfserrors.Transport, err)
	}
	return info.Size(), nil
}

// Read implements dfsstore.Storage.
func (s *Store) Read(p dfspath.Path, offset, length int64) ([]byte, error) {
	f, err := os.Open(s.localPath(p))
	if os.IsNotExist(err) {
		return nil, dfserrors.E(dfserrors.NotFound, err)
	}
	if err != nil {
		return nil, dfserrors.E(dfserrors.Transport, err)
	}
	defer f.Close()

	buf := make([]byte, length)
	n, err := f.ReadAt(buf, offset)
	if err != nil && err != io.EOF {
		return nil, dfserrors.E(dfserrors.Transport, err)
	}
	return buf[:n], nil
}

// Write implements dfsstore.Storage.
func (s *Store) Write(p dfspath.Path, offset int64, data []byte) (bool, error) {
	f, err := os.OpenFile(s.localPath(p), os.O_WRONLY, 0o644)
	if os.IsNotExist(err) {
		return false, dfserrors.E(dfserrors.NotFound, err)
	}
	if err != nil {
		return false, dfserrors.E(dfserrors.Transport, err)
	}
	defer f.Close()
	if _, err := f.WriteAt(data, offset); err != nil {
		return false, dfserrors.E(dfserrors.Transport, err)
	}
	return true, nil
}
