package naming

import (
	"github.com/ashraghunath/DSD-Assignment3-DFS-RMI/dfserrors"
	"github.com/ashraghunath/DSD-Assignment3-DFS-RMI/dfspath"
	"github.com/ashraghunath/DSD-Assignment3-DFS-RMI/dfsrpc"
)

// Register implements Registration. Inputs must be non-empty; a
// duplicate (storage, command) pair is rejected with
// dfserrors.IllegalState. Every submitted path (other than root) is
// registered into the tree via RegisterRecursive; any path the tree
// rejected as a duplicate is returned to the caller, which is expected
// to delete it locally.
func (s *Server) Register(storage, command dfsrpc.Endpoint, files []dfspath.Path) ([]dfspath.Path, error) {
	const op = "naming.Server.Register"
	if storage == "" || command == "" {
		return nil, dfserrors.E(op, dfserrors.NullArgument)
	}

	handle := StorageHandle{Storage: storage, Command: command}
	if err := s.tree.registerHandle(handle); err != nil {
		return nil, dfserrors.E(op, err)
	}

	var duplicates []dfspath.Path
	for _, p := range files {
		if p.IsRoot() {
			continue
		}
		ok, err := s.tree.RegisterRecursive(p, handle)
		if err != nil {
			return nil, dfserrors.E(op, err)
		}
		if !ok {
			duplicates = append(duplicates, p)
		}
	}
	return duplicates, nil
}
