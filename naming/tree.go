// Package naming implements the in-memory namespace directory and the
// naming server that fronts it with two RPC-facing roles: Service for
// clients, and Registration for storage servers.
package naming

import (
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/ashraghunath/DSD-Assignment3-DFS-RMI/dfserrors"
	"github.com/ashraghunath/DSD-Assignment3-DFS-RMI/dfslog"
	"github.com/ashraghunath/DSD-Assignment3-DFS-RMI/dfspath"
	"github.com/ashraghunath/DSD-Assignment3-DFS-RMI/dfsrpc"
)

// StorageHandle is an opaque pair of remote capabilities obtained at
// registration: the endpoints of a storage server's Storage and
// Command skeletons. Equality uses both endpoints.
type StorageHandle struct {
	Storage dfsrpc.Endpoint
	Command dfsrpc.Endpoint
}

// Equal reports whether h and o name the same storage server.
func (h StorageHandle) Equal(o StorageHandle) bool {
	return h.Storage == o.Storage && h.Command == o.Command
}

// node is one entry of the directory tree. A node is a directory (its
// children map is non-nil, replicas is nil) or a file (replicas is a
// non-empty ordered list, children is nil); never both.
type node struct {
	children map[string]*node // non-nil iff this is a directory
	replicas []StorageHandle  // non-nil and non-empty iff this is a file
	cursor   int              // round-robin read/write dispatch cursor
}

func newDirNode() *node {
	return &node{children: make(map[string]*node)}
}

func newFileNode(replica StorageHandle) *node {
	return &node{replicas: []StorageHandle{replica}}
}

func (n *node) isDir() bool { return n.children != nil }

// Tree is the in-memory namespace, rooted always at a directory. All
// mutations are serialized under a single coarse lock, matching the
// reference semantics: tree mutations are linearisable with respect to
// each other and to reads at the same path.
type Tree struct {
	mu   sync.RWMutex
	root *node

	regMu    sync.Mutex // guards registry, independent of the tree lock
	registry []StorageHandle
}

// NewTree returns an empty Tree: a single directory node at root.
func NewTree() *Tree {
	return &Tree{root: newDirNode()}
}

// walk resolves p against the tree, returning the final node and its
// parent directory node (nil for root). It does not acquire the lock;
// callers must hold it.
func (t *Tree) walk(p dfspath.Path) (n, parent *node, err error) {
	n = t.root
	for _, name := range p.Elems() {
		if !n.isDir() {
			return nil, nil, dfserrors.E(dfserrors.NotFound)
		}
		child, ok := n.children[name]
		if !ok {
			return nil, nil, dfserrors.E(dfserrors.NotFound)
		}
		parent = n
		n = child
	}
	return n, parent, nil
}

// IsDirectory reports whether p names a directory. Root is always a
// directory.
func (t *Tree) IsDirectory(p dfspath.Path) (bool, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	n, _, err := t.walk(p)
	if err != nil {
		return false, err
	}
	return n.isDir(), nil
}

// List returns the immediate child names of the directory at p, in no
// particular order. It fails with dfserrors.NotFound if p does not
// exist or does not name a directory.
func (t *Tree) List(p dfspath.Path) ([]string, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	n, _, err := t.walk(p)
	if err != nil {
		return nil, err
	}
	if !n.isDir() {
		return nil, dfserrors.E(dfserrors.NotFound)
	}
	names := make([]string, 0, len(n.children))
	for name := range n.children {
		names = append(names, name)
	}
	return names, nil
}

// resolveParentDir resolves p's parent and returns it, failing with
// dfserrors.NotFound unless the parent chain fully exists and every
// intermediate is a directory. Root has no parent and is rejected by
// the caller before this is reached.
func (t *Tree) resolveParentDir(p dfspath.Path) (*node, string, error) {
	parentPath, err := p.Parent()
	if err != nil {
		return nil, "", err
	}
	last, err := p.Last()
	if err != nil {
		return nil, "", err
	}
	parent, _, err := t.walk(parentPath)
	if err != nil {
		return nil, "", err
	}
	if !parent.isDir() {
		return nil, "", dfserrors.E(dfserrors.NotFound)
	}
	return parent, last, nil
}

// CreateDirectory inserts an empty directory node at p. p must not be
// root and its parent chain must already exist and be directories.
// Returns false (not an error) if a node already exists at p.
func (t *Tree) CreateDirectory(p dfspath.Path) (bool, error) {
	const op = "naming.Tree.CreateDirectory"
	if p.IsRoot() {
		return false, nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	parent, last, err := t.resolveParentDir(p)
	if err != nil {
		return false, dfserrors.E(op, err)
	}
	if _, exists := parent.children[last]; exists {
		return false, nil
	}
	parent.children[last] = newDirNode()
	return true, nil
}

// CreateFile inserts a file node at p whose sole replica is replica.
// Same existence rules as CreateDirectory.
func (t *Tree) CreateFile(p dfspath.Path, replica StorageHandle) (bool, error) {
	const op = "naming.Tree.CreateFile"
	if p.IsRoot() {
		return false, nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	parent, last, err := t.resolveParentDir(p)
	if err != nil {
		return false, dfserrors.E(op, err)
	}
	if _, exists := parent.children[last]; exists {
		return false, nil
	}
	parent.children[last] = newFileNode(replica)
	return true, nil
}

// removeFile removes the file entry created by CreateFile; used to
// roll back a failed Command.Create during Service.CreateFile.
func (t *Tree) removeFile(p dfspath.Path) {
	t.mu.Lock()
	defer t.mu.Unlock()
	parentPath, err := p.Parent()
	if err != nil {
		return
	}
	last, err := p.Last()
	if err != nil {
		return
	}
	parent, _, err := t.walk(parentPath)
	if err != nil || !parent.isDir() {
		return
	}
	delete(parent.children, last)
}

// RegisterRecursive walks p, creating missing intermediate directories
// along the way. If p is already present (as file or directory), it
// returns false, signaling to the caller that the submitting storage
// server should delete this path locally. Otherwise it inserts a file
// leaf for p with replica and returns true.
func (t *Tree) RegisterRecursive(p dfspath.Path, replica StorageHandle) (bool, error) {
	if p.IsRoot() {
		return false, nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	n := t.root
	elems := p.Elems()
	for _, name := range elems[:len(elems)-1] {
		if !n.isDir() {
			// A prefix of p already names a file: the whole
			// registration is rejected.
			return false, nil
		}
		child, ok := n.children[name]
		if !ok {
			child = newDirNode()
			n.children[name] = child
		}
		n = child
	}
	if !n.isDir() {
		return false, nil
	}
	last := elems[len(elems)-1]
	if _, exists := n.children[last]; exists {
		return false, nil
	}
	n.children[last] = newFileNode(replica)
	return true, nil
}

// GetStorage resolves p to a file and returns the next replica by
// advancing its round-robin cursor. Fails with dfserrors.NotFound if p
// is missing or names a directory.
func (t *Tree) GetStorage(p dfspath.Path) (StorageHandle, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	n, _, err := t.walk(p)
	if err != nil {
		return StorageHandle{}, err
	}
	if n.isDir() {
		return StorageHandle{}, dfserrors.E(dfserrors.NotFound)
	}
	h := n.replicas[n.cursor%len(n.replicas)]
	n.cursor++
	return h, nil
}

// collectReplicas gathers every distinct replica hosting a file under
// (or at) n, recording the path each one serves.
func collectReplicas(n *node, at dfspath.Path, out map[StorageHandle][]dfspath.Path) {
	if !n.isDir() {
		for _, r := range n.replicas {
			out[r] = append(out[r], at)
		}
		return
	}
	for name, child := range n.children {
		childPath, err := at.Join(name)
		if err != nil {
			continue
		}
		collectReplicas(child, childPath, out)
	}
}

// Delete removes the node at p. It fails with dfserrors.NotFound if p
// does not exist, and with dfserrors.InvalidArgument if p is root.
// On success it returns the map of replica -> paths that replica
// hosted under p, so the caller can issue Command.Delete to each
// replica after releasing the tree lock.
func (t *Tree) Delete(p dfspath.Path) (map[StorageHandle][]dfspath.Path, error) {
	const op = "naming.Tree.Delete"
	if p.IsRoot() {
		return nil, dfserrors.E(op, dfserrors.InvalidArgument, dfserrors.Str("cannot delete root"))
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	parentPath, _ := p.Parent()
	last, _ := p.Last()
	parent, _, err := t.walk(parentPath)
	if err != nil {
		return nil, dfserrors.E(op, err)
	}
	n, ok := parent.children[last]
	if !ok {
		return nil, dfserrors.E(op, dfserrors.NotFound)
	}

	replicas := make(map[StorageHandle][]dfspath.Path)
	collectReplicas(n, p, replicas)
	delete(parent.children, last)
	return replicas, nil
}

// notifyDeletes issues Command.Delete to every replica in replicas for
// the paths it hosted, concurrently, logging (but never failing on)
// transport errors: the local removal has already committed by the
// time this runs. It is called after the tree lock has been released.
func notifyDeletes(cache *commandStubCache, replicas map[StorageHandle][]dfspath.Path) {
	var g errgroup.Group
	for handle, paths := range replicas {
		handle, paths := handle, paths
		g.Go(func() error {
			cmd, err := cache.get(handle.Command)
			if err != nil {
				dfslog.Error.Printf("naming: building Command stub for %s: %v", handle.Command, err)
				return nil
			}
			for _, p := range paths {
				if _, err := cmd.Delete(p); err != nil {
					dfslog.Error.Printf("naming: Command.Delete(%s) on %s: %v", p, handle.Command, err)
				}
			}
			return nil
		})
	}
	_ = g.Wait() // errors are logged individually above; never returned
}

// registerHandle appends handle to the replica registry, failing with
// dfserrors.IllegalState if (storage, command) was already registered.
func (t *Tree) registerHandle(handle StorageHandle) error {
	t.regMu.Lock()
	defer t.regMu.Unlock()
	for _, h := range t.registry {
		if h.Equal(handle) {
			return dfserrors.E(dfserrors.IllegalState, dfserrors.Str("storage server already registered"))
		}
	}
	t.registry = append(t.registry, handle)
	return nil
}

// randomReplica returns a uniformly random registered storage server.
// Fails with dfserrors.NotFound if none are registered.
func (t *Tree) randomReplica(rnd func(n int) int) (StorageHandle, error) {
	t.regMu.Lock()
	defer t.regMu.Unlock()
	if len(t.registry) == 0 {
		return StorageHandle{}, dfserrors.E(dfserrors.NotFound, dfserrors.Str("no storage servers registered"))
	}
	return t.registry[rnd(len(t.registry))], nil
}
