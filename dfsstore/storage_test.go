package dfsstore

import (
	"bytes"
	"os"
	"testing"

	"github.com/ashraghunath/DSD-Assignment3-DFS-RMI/dfspath"
	"github.com/ashraghunath/DSD-Assignment3-DFS-RMI/dfsrpc"
	"github.com/ashraghunath/DSD-Assignment3-DFS-RMI/internal/diskstore"
)

// startStore binds real Storage and Command skeletons over a fresh
// diskstore.Store, returning the resulting stubs and a cleanup func.
func startStore(t *testing.T) (Storage, Command, func()) {
	t.Helper()
	root, err := os.MkdirTemp("", "dfsstore-*")
	if err != nil {
		t.Fatal(err)
	}
	store, err := diskstore.New(root)
	if err != nil {
		t.Fatal(err)
	}

	storageSk, err := dfsrpc.NewSkeleton("Storage", (*Storage)(nil), store, "localhost:0")
	if err != nil {
		t.Fatal(err)
	}
	commandSk, err := dfsrpc.NewSkeleton("Command", (*Command)(nil), store, "localhost:0")
	if err != nil {
		t.Fatal(err)
	}
	if err := storageSk.Start(); err != nil {
		t.Fatal(err)
	}
	if err := commandSk.Start(); err != nil {
		storageSk.Stop()
		t.Fatal(err)
	}

	storageStub, err := NewStorageStub(storageSk.Addr())
	if err != nil {
		t.Fatal(err)
	}
	commandStub, err := NewCommandStub(commandSk.Addr())
	if err != nil {
		t.Fatal(err)
	}

	return storageStub, commandStub, func() {
		storageSk.Stop()
		commandSk.Stop()
		os.RemoveAll(root)
	}
}

// TestCopyAcceptsStorageCapability exercises Command.Copy end to end
// across two independent storage servers, with the source argument
// travelling as a live Storage stub rather than a bare endpoint — the
// case that requires Stub's GobEncode/GobDecode and the package's
// interface-name registry to round-trip correctly.
func TestCopyAcceptsStorageCapability(t *testing.T) {
	srcStorage, srcCommand, srcCleanup := startStore(t)
	defer srcCleanup()
	dstStorage, dstCommand, dstCleanup := startStore(t)
	defer dstCleanup()

	p := dfspath.MustParse("/greeting")
	if ok, err := srcCommand.Create(p); err != nil || !ok {
		t.Fatalf("source Create(%q) = %v, %v; want true, nil", p, ok, err)
	}
	want := []byte("hello, distributed world")
	if ok, err := srcStorage.Write(p, 0, want); err != nil || !ok {
		t.Fatalf("source Write(%q) = %v, %v; want true, nil", p, ok, err)
	}

	if ok, err := dstCommand.Create(p); err != nil || !ok {
		t.Fatalf("dest Create(%q) = %v, %v; want true, nil", p, ok, err)
	}
	if ok, err := dstCommand.Copy(p, srcStorage); err != nil || !ok {
		t.Fatalf("dest Copy(%q, source) = %v, %v; want true, nil", p, ok, err)
	}

	got, err := dstStorage.Read(p, 0, int64(len(want)))
	if err != nil {
		t.Fatalf("dest Read(%q): %v", p, err)
	}
	if !bytes.Equal(got, want) {
		t.Fatalf("dest contents = %q, want %q", got, want)
	}
}
