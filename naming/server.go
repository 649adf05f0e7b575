package naming

import (
	"math/rand"
	"sync"

	"github.com/ashraghunath/DSD-Assignment3-DFS-RMI/dfserrors"
	"github.com/ashraghunath/DSD-Assignment3-DFS-RMI/dfslog"
	"github.com/ashraghunath/DSD-Assignment3-DFS-RMI/dfspath"
	"github.com/ashraghunath/DSD-Assignment3-DFS-RMI/dfsrpc"
)

// Service is the naming server's client-facing operation set.
type Service interface {
	IsDirectory(p dfspath.Path) (bool, error)
	List(p dfspath.Path) ([]string, error)
	CreateFile(p dfspath.Path) (bool, error)
	CreateDirectory(p dfspath.Path) (bool, error)
	Delete(p dfspath.Path) (bool, error)
	// GetStorage returns the Storage-capability endpoint of the
	// replica a client should read or write p through next.
	GetStorage(p dfspath.Path) (dfsrpc.Endpoint, error)
}

// Registration is the naming server's storage-server-facing operation
// set.
type Registration interface {
	// Register announces a storage server's two capability endpoints
	// and the files it already hosts. It returns the subset of files
	// the naming server rejected (because the path was already known,
	// or one of its prefixes already names a file); the storage server is expected to
	// delete those locally.
	Register(storage, command dfsrpc.Endpoint, files []dfspath.Path) ([]dfspath.Path, error)
}

// ServiceInterface and RegistrationInterface are the shared descriptors
// bound by the naming server's two skeletons and dialed by client and
// storage-server stubs, respectively.
var (
	ServiceInterface      = dfsrpc.MustDescribe("Service", (*Service)(nil))
	RegistrationInterface = dfsrpc.MustDescribe("Registration", (*Registration)(nil))
)

// Server is the naming server: one object implementing both Service
// and Registration over a single Tree.
type Server struct {
	tree     *Tree
	cmdStubs *commandStubCache

	serviceAddr      string
	registrationAddr string

	mu        sync.Mutex
	running   bool
	service   *dfsrpc.Skeleton
	registrar *dfsrpc.Skeleton

	// Stopped is called once both skeletons have stopped.
	Stopped func(cause error)
}

var (
	_ Service      = (*Server)(nil)
	_ Registration = (*Server)(nil)
)

// NewServer returns a naming server whose Service and Registration
// skeletons will bind to serviceAddr and registrationAddr respectively
// when Start is called.
func NewServer(serviceAddr, registrationAddr string) *Server {
	return &Server{
		tree:             NewTree(),
		cmdStubs:         newCommandStubCache(),
		serviceAddr:      serviceAddr,
		registrationAddr: registrationAddr,
	}
}

// Start creates and starts the two skeletons on their configured
// addresses. It fails with dfserrors.IllegalState if already running.
func (s *Server) Start() error {
	const op = "naming.Server.Start"
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return dfserrors.E(op, dfserrors.IllegalState)
	}

	service, err := dfsrpc.NewSkeleton("Service", (*Service)(nil), s, s.serviceAddr)
	if err != nil {
		return dfserrors.E(op, err)
	}
	registrar, err := dfsrpc.NewSkeleton("Registration", (*Registration)(nil), s, s.registrationAddr)
	if err != nil {
		return dfserrors.E(op, err)
	}
	if err := service.Start(); err != nil {
		return dfserrors.E(op, err)
	}
	if err := registrar.Start(); err != nil {
		service.Stop()
		return dfserrors.E(op, err)
	}

	s.service = service
	s.registrar = registrar
	s.running = true
	return nil
}

// ServiceAddr returns the bound address of the Service skeleton. Only
// meaningful after a successful Start.
func (s *Server) ServiceAddr() dfsrpc.Endpoint {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.service == nil {
		return ""
	}
	return s.service.Addr()
}

// RegistrationAddr returns the bound address of the Registration
// skeleton. Only meaningful after a successful Start.
func (s *Server) RegistrationAddr() dfsrpc.Endpoint {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.registrar == nil {
		return ""
	}
	return s.registrar.Addr()
}

// Stop stops both skeletons and resets lifecycle state. The tree and
// the storage-server registry are kept in memory: a Server started
// again serves the same namespace.
func (s *Server) Stop() {
	s.mu.Lock()
	running := s.running
	service, registrar := s.service, s.registrar
	s.running = false
	s.mu.Unlock()

	if !running {
		return
	}
	service.Stop()
	registrar.Stop()
	if s.Stopped != nil {
		s.Stopped(nil)
	}
}

// IsDirectory implements Service.
func (s *Server) IsDirectory(p dfspath.Path) (bool, error) {
	return s.tree.IsDirectory(p)
}

// List implements Service.
func (s *Server) List(p dfspath.Path) ([]string, error) {
	return s.tree.List(p)
}

// CreateDirectory implements Service. create_directory never contacts
// storage servers.
func (s *Server) CreateDirectory(p dfspath.Path) (bool, error) {
	if p.IsRoot() {
		return false, nil
	}
	return s.tree.CreateDirectory(p)
}

// CreateFile implements Service: pick one registered storage server at
// random, insert the file into the tree, then call Command.Create on
// that server. If the remote create fails, roll back the tree entry
// and return false.
func (s *Server) CreateFile(p dfspath.Path) (bool, error) {
	const op = "naming.Server.CreateFile"
	if p.IsRoot() {
		return false, nil
	}
	handle, err := s.tree.randomReplica(rand.Intn)
	if err != nil {
		return false, dfserrors.E(op, err)
	}

	created, err := s.tree.CreateFile(p, handle)
	if err != nil {
		return false, dfserrors.E(op, err)
	}
	if !created {
		return false, nil
	}

	cmd, err := s.cmdStubs.get(handle.Command)
	if err != nil {
		s.tree.removeFile(p)
		return false, dfserrors.E(op, err)
	}
	ok, err := cmd.Create(p)
	if err != nil || !ok {
		s.tree.removeFile(p)
		if err != nil {
			dfslog.Error.Printf("naming: Command.Create(%s) on %s: %v", p, handle.Command, err)
		}
		return false, nil
	}
	return true, nil
}

// Delete implements Service: remove the node at p from the tree, then
// notify every replica that hosted a file under p, outside the tree
// lock.
func (s *Server) Delete(p dfspath.Path) (bool, error) {
	replicas, err := s.tree.Delete(p)
	if err != nil {
		return false, err
	}
	notifyDeletes(s.cmdStubs, replicas)
	return true, nil
}

// GetStorage implements Service.
func (s *Server) GetStorage(p dfspath.Path) (dfsrpc.Endpoint, error) {
	h, err := s.tree.GetStorage(p)
	if err != nil {
		return "", err
	}
	return h.Storage, nil
}
