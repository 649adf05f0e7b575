// Package dfsstore declares the two capability interfaces a storage
// server must expose to the naming server — Storage (byte I/O) and
// Command (file mutation) — and the client-side stubs the naming
// server dials to reach them. The storage server's own implementation
// of these capabilities (its local disk backend) is out of scope for
// this module; see internal/diskstore for a minimal reference backend
// used by the bundled cmd/storage-server and by integration tests.
package dfsstore

import (
	"encoding/gob"

	"github.com/ashraghunath/DSD-Assignment3-DFS-RMI/dfspath"
	"github.com/ashraghunath/DSD-Assignment3-DFS-RMI/dfsrpc"
)

// Command is the filesystem-mutation capability a storage server
// exposes to the naming server.
type Command interface {
	// Create creates an empty file at p on the storage server.
	Create(p dfspath.Path) (bool, error)
	// Delete removes the file at p from the storage server.
	Delete(p dfspath.Path) (bool, error)
	// Copy instructs the storage server to fetch the contents of p
	// from the Storage capability source and store them locally.
	Copy(p dfspath.Path, source Storage) (bool, error)
}

// Storage is the byte-I/O capability a storage server exposes to the
// naming server (and, once located via Service.GetStorage, to clients
// directly).
type Storage interface {
	// Size returns the size in bytes of the file at p.
	Size(p dfspath.Path) (int64, error)
	// Read returns length bytes of the file at p starting at offset.
	Read(p dfspath.Path, offset, length int64) ([]byte, error)
	// Write stores data at offset in the file at p.
	Write(p dfspath.Path, offset int64, data []byte) (bool, error)
}

// CommandInterface and StorageInterface are the shared descriptors
// every Command/Storage skeleton and stub in this system speaks.
var (
	CommandInterface = dfsrpc.MustDescribe("Command", (*Command)(nil))
	StorageInterface = dfsrpc.MustDescribe("Storage", (*Storage)(nil))
)

func init() {
	gob.Register([]dfspath.Path(nil))
	// storageStub is the concrete type that fills the Storage-typed
	// source argument of Command.Copy when it crosses the wire.
	gob.Register(storageStub{})
}

// commandStub implements Command by forwarding every call over a
// dfsrpc.Stub.
type commandStub struct{ dfsrpc.Stub }

// NewCommandStub returns a Command that performs every call as a
// remote invocation against the Command skeleton at endpoint.
func NewCommandStub(endpoint dfsrpc.Endpoint) (Command, error) {
	s, err := dfsrpc.NewStub(CommandInterface, endpoint)
	if err != nil {
		return nil, err
	}
	return commandStub{s}, nil
}

func (c commandStub) Create(p dfspath.Path) (bool, error) {
	v, err := c.Call("Create", p)
	if err != nil {
		return false, err
	}
	return v.(bool), nil
}

func (c commandStub) Delete(p dfspath.Path) (bool, error) {
	v, err := c.Call("Delete", p)
	if err != nil {
		return false, err
	}
	return v.(bool), nil
}

func (c commandStub) Copy(p dfspath.Path, source Storage) (bool, error) {
	v, err := c.Call("Copy", p, source)
	if err != nil {
		return false, err
	}
	return v.(bool), nil
}

// storageStub implements Storage by forwarding every call over a
// dfsrpc.Stub.
type storageStub struct{ dfsrpc.Stub }

// NewStorageStub returns a Storage that performs every call as a
// remote invocation against the Storage skeleton at endpoint.
func NewStorageStub(endpoint dfsrpc.Endpoint) (Storage, error) {
	s, err := dfsrpc.NewStub(StorageInterface, endpoint)
	if err != nil {
		return nil, err
	}
	return storageStub{s}, nil
}

func (s storageStub) Size(p dfspath.Path) (int64, error) {
	v, err := s.Call("Size", p)
	if err != nil {
		return 0, err
	}
	return v.(int64), nil
}

func (s storageStub) Read(p dfspath.Path, offset, length int64) ([]byte, error) {
	v, err := s.Call("Read", p, offset, length)
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

func (s storageStub) Write(p dfspath.Path, offset int64, data []byte) (bool, error) {
	v, err := s.Call("Write", p, offset, data)
	if err != nil {
		return false, err
	}
	return v.(bool), nil
}
