package naming

import (
	"os"
	"testing"

	"github.com/ashraghunath/DSD-Assignment3-DFS-RMI/dfserrors"
	"github.com/ashraghunath/DSD-Assignment3-DFS-RMI/dfspath"
	"github.com/ashraghunath/DSD-Assignment3-DFS-RMI/dfsrpc"
	"github.com/ashraghunath/DSD-Assignment3-DFS-RMI/dfsstore"
	"github.com/ashraghunath/DSD-Assignment3-DFS-RMI/internal/diskstore"
)

// startStorageServer binds real Command and Storage skeletons over a
// diskstore.Store rooted at a fresh temp directory, returning their
// endpoints and a cleanup func.
func startStorageServer(t *testing.T) (storage, command dfsrpc.Endpoint, cleanup func()) {
	t.Helper()
	root, err := os.MkdirTemp("", "dfs-storage-*")
	if err != nil {
		t.Fatal(err)
	}
	store, err := diskstore.New(root)
	if err != nil {
		t.Fatal(err)
	}

	storageSk, err := dfsrpc.NewSkeleton("Storage", (*dfsstore.Storage)(nil), store, "localhost:0")
	if err != nil {
		t.Fatal(err)
	}
	commandSk, err := dfsrpc.NewSkeleton("Command", (*dfsstore.Command)(nil), store, "localhost:0")
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

	return storageSk.Addr(), commandSk.Addr(), func() {
		storageSk.Stop()
		commandSk.Stop()
		os.RemoveAll(root)
	}
}

func startNamingServer(t *testing.T) (*Server, func()) {
	t.Helper()
	srv := NewServer("localhost:0", "localhost:0")
	if err := srv.Start(); err != nil {
		t.Fatal(err)
	}
	return srv, srv.Stop
}

func TestServerLifecycleDoubleStart(t *testing.T) {
	srv := NewServer("localhost:0", "localhost:0")
	if err := srv.Start(); err != nil {
		t.Fatal(err)
	}
	defer srv.Stop()
	if err := srv.Start(); dfserrors.KindOf(err) != dfserrors.IllegalState {
		t.Fatalf("second Start: got %v, want IllegalState", err)
	}
	if srv.ServiceAddr() == "" || srv.RegistrationAddr() == "" {
		t.Fatal("expected non-empty bound addresses")
	}
}

func TestServerStopIsIdempotent(t *testing.T) {
	srv := NewServer("localhost:0", "localhost:0")
	if err := srv.Start(); err != nil {
		t.Fatal(err)
	}
	srv.Stop()
	srv.Stop() // must not panic or block
}

func TestRegisterThenCreateFileAndDelete(t *testing.T) {
	srv, stopNaming := startNamingServer(t)
	defer stopNaming()

	storageEP, commandEP, stopStorage := startStorageServer(t)
	defer stopStorage()

	reg, err := NewRegistrationStub(srv.RegistrationAddr())
	if err != nil {
		t.Fatal(err)
	}
	dup, err := reg.Register(storageEP, commandEP, nil)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if len(dup) != 0 {
		t.Fatalf("Register returned unexpected duplicates: %v", dup)
	}

	svc, err := NewServiceStub(srv.ServiceAddr())
	if err != nil {
		t.Fatal(err)
	}

	ok, err := svc.CreateDirectory(dfspath.MustParse("/docs"))
	if err != nil || !ok {
		t.Fatalf("CreateDirectory(/docs) = %v, %v", ok, err)
	}
	ok, err = svc.CreateFile(dfspath.MustParse("/docs/readme"))
	if err != nil || !ok {
		t.Fatalf("CreateFile(/docs/readme) = %v, %v", ok, err)
	}

	names, err := svc.List(dfspath.MustParse("/docs"))
	if err != nil || len(names) != 1 || names[0] != "readme" {
		t.Fatalf("List(/docs) = %v, %v", names, err)
	}

	ep, err := svc.GetStorage(dfspath.MustParse("/docs/readme"))
	if err != nil || ep != storageEP {
		t.Fatalf("GetStorage(/docs/readme) = %v, %v; want %v", ep, err, storageEP)
	}

	store, err := dfsstore.NewStorageStub(storageEP)
	if err != nil {
		t.Fatal(err)
	}
	if wrote, err := store.Write(dfspath.MustParse("/docs/readme"), 0, []byte("hello")); err != nil || !wrote {
		t.Fatalf("Write: %v, %v", wrote, err)
	}
	size, err := store.Size(dfspath.MustParse("/docs/readme"))
	if err != nil || size != 5 {
		t.Fatalf("Size: %v, %v", size, err)
	}

	ok, err = svc.Delete(dfspath.MustParse("/docs"))
	if err != nil || !ok {
		t.Fatalf("Delete(/docs) = %v, %v", ok, err)
	}
	if _, err := svc.IsDirectory(dfspath.MustParse("/docs")); dfserrors.KindOf(err) != dfserrors.NotFound {
		t.Fatalf("IsDirectory(/docs) after delete: got %v, want NotFound", err)
	}
}

func TestRegisterRejectsDuplicateStorageServer(t *testing.T) {
	srv, stop := startNamingServer(t)
	defer stop()

	storageEP, commandEP, stopStorage := startStorageServer(t)
	defer stopStorage()

	reg, err := NewRegistrationStub(srv.RegistrationAddr())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := reg.Register(storageEP, commandEP, nil); err != nil {
		t.Fatalf("first Register: %v", err)
	}
	if _, err := reg.Register(storageEP, commandEP, nil); dfserrors.KindOf(err) != dfserrors.IllegalState {
		t.Fatalf("second Register: got %v, want IllegalState", err)
	}
}

func TestCreateFileWithNoStorageServersRegistered(t *testing.T) {
	srv, stop := startNamingServer(t)
	defer stop()

	svc, err := NewServiceStub(srv.ServiceAddr())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.CreateFile(dfspath.MustParse("/x")); dfserrors.KindOf(err) != dfserrors.NotFound {
		t.Fatalf("CreateFile with no storage servers: got %v, want NotFound", err)
	}
}
