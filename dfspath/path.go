// Package dfspath provides the immutable hierarchical path value shared
// by the naming server, storage servers, and clients.
//
// A path is an ordered sequence of non-empty string components. No
// component may contain '/' or the reserved character ':', and no
// component may be empty. The root path has zero components and
// stringifies as "/"; any other path stringifies as "/" followed by
// its components joined by "/".
package dfspath

import (
	"bytes"
	"encoding/gob"
	"hash/fnv"
	"os"
	"path/filepath"
	"strings"

	"github.com/ashraghunath/DSD-Assignment3-DFS-RMI/dfserrors"
)

func gobEncode(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func gobDecode(b []byte, v interface{}) error {
	return gob.NewDecoder(bytes.NewReader(b)).Decode(v)
}

func init() {
	// Path crosses the wire inside dfsrpc request/response interface{}
	// slots; register it, and teach gob to encode it as its component
	// list (the "stringified path plus its precomputed component list"
	// wire representation the spec calls for) rather than via its
	// unexported field.
	gob.Register(Path{})
}

// wirePath is Path's wire form: the stringified path together with its
// component list.
type wirePath struct {
	Str   string
	Elems []string
}

// GobEncode implements gob.GobEncoder, encoding a Path as its string
// form plus its component list.
func (p Path) GobEncode() ([]byte, error) {
	return gobEncode(wirePath{Str: p.String(), Elems: p.elems})
}

// GobDecode implements gob.GobDecoder. The Path is rebuilt from the
// component list.
func (p *Path) GobDecode(b []byte) error {
	var w wirePath
	if err := gobDecode(b, &w); err != nil {
		return err
	}
	p.elems = w.Elems
	return nil
}

// reserved is the character forbidden in path components in addition
// to the '/' delimiter itself.
const reserved = ':'

// Path is an immutable, structurally-comparable hierarchical path
// value. The zero value is the root path.
type Path struct {
	// elems is never mutated after construction; every operation that
	// "changes" a Path allocates a new slice.
	elems []string
}

// Root is the path with zero components.
var Root = Path{}

// Parse constructs a Path from its string form. Runs of consecutive '/'
// are collapsed and empty components are dropped. Parse fails with
// dfserrors.InvalidArgument if s is empty, does not start with '/', or
// contains the reserved character ':'.
func Parse(s string) (Path, error) {
	const op = "dfspath.Parse"
	if s == "" {
		return Path{}, dfserrors.E(op, dfserrors.InvalidArgument, dfserrors.Str("empty path"))
	}
	if s[0] != '/' {
		return Path{}, dfserrors.E(op, dfserrors.InvalidArgument, dfserrors.Str("path must start with '/'"))
	}
	if strings.IndexByte(s, reserved) >= 0 {
		return Path{}, dfserrors.E(op, dfserrors.InvalidArgument, dfserrors.Str("path contains reserved character ':'"))
	}
	var elems []string
	for _, c := range strings.Split(s, "/") {
		if c == "" {
			continue
		}
		elems = append(elems, c)
	}
	return Path{elems: elems}, nil
}

// MustParse is like Parse but panics on error. It exists for tests and
// for constructing well-known constant paths.
func MustParse(s string) Path {
	p, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return p
}

// validComponent reports whether a single component is acceptable on
// its own, outside the context of a full path string.
func validComponent(c string) bool {
	return c != "" && !strings.ContainsAny(c, "/:")
}

// Join returns a new path formed by appending component to p. It fails
// with dfserrors.InvalidArgument if component is empty or contains '/'
// or ':'.
func (p Path) Join(component string) (Path, error) {
	const op = "dfspath.Join"
	if !validComponent(component) {
		return Path{}, dfserrors.E(op, dfserrors.InvalidArgument, dfserrors.Str("invalid path component "+component))
	}
	elems := make([]string, len(p.elems)+1)
	copy(elems, p.elems)
	elems[len(p.elems)] = component
	return Path{elems: elems}, nil
}

// NElem returns the number of components in p.
func (p Path) NElem() int {
	return len(p.elems)
}

// IsRoot reports whether p is the root path.
func (p Path) IsRoot() bool {
	return len(p.elems) == 0
}

// Elem returns the nth component of p. It panics if n is out of range,
// mirroring the teacher's Parsed.Elem.
func (p Path) Elem(n int) string {
	return p.elems[n]
}

// Elems returns the path's components as a restartable slice. Callers
// must not mutate the returned slice.
func (p Path) Elems() []string {
	return p.elems
}

// Iter returns a finite, restartable iterator over p's components, in
// path order, as required by the "iterate components" operation.
func (p Path) Iter() func(func(string) bool) {
	return func(yield func(string) bool) {
		for _, e := range p.elems {
			if !yield(e) {
				return
			}
		}
	}
}

// Parent returns the path with the last component removed. It fails
// with dfserrors.InvalidArgument on the root path.
func (p Path) Parent() (Path, error) {
	const op = "dfspath.Parent"
	if p.IsRoot() {
		return Path{}, dfserrors.E(op, dfserrors.InvalidArgument, dfserrors.Str("root has no parent"))
	}
	elems := make([]string, len(p.elems)-1)
	copy(elems, p.elems[:len(p.elems)-1])
	return Path{elems: elems}, nil
}

// Last returns the last component of p. It fails with
// dfserrors.InvalidArgument on the root path.
func (p Path) Last() (string, error) {
	const op = "dfspath.Last"
	if p.IsRoot() {
		return "", dfserrors.E(op, dfserrors.InvalidArgument, dfserrors.Str("root has no last component"))
	}
	return p.elems[len(p.elems)-1], nil
}

// IsSubpath reports whether other's component sequence is a (not
// necessarily proper) prefix of p's, i.e. whether p lies within the
// subtree rooted at other. Unlike the source this is derived from,
// matching is component-wise, never substring-wise: Path("/ab") is
// never a subpath of Path("/a").
func (p Path) IsSubpath(other Path) bool {
	if len(other.elems) > len(p.elems) {
		return false
	}
	for i, e := range other.elems {
		if p.elems[i] != e {
			return false
		}
	}
	return true
}

// String renders p in canonical form: "/" for root, or "/" followed by
// its components joined by "/".
func (p Path) String() string {
	if p.IsRoot() {
		return "/"
	}
	return "/" + strings.Join(p.elems, "/")
}

// Equal reports whether p and q have identical component sequences.
func (p Path) Equal(q Path) bool {
	if len(p.elems) != len(q.elems) {
		return false
	}
	for i, e := range p.elems {
		if q.elems[i] != e {
			return false
		}
	}
	return true
}

// Hash combines p's components into a value suitable for use as a map
// key or in a hash set of paths, consistent with Equal: equal paths
// hash equal, matching the pattern used for dfsrpc.Stub.Hash.
func (p Path) Hash() uint64 {
	h := fnv.New64a()
	for _, e := range p.elems {
		h.Write([]byte(e))
		h.Write([]byte{0})
	}
	return h.Sum64()
}

// ToFile concatenates root with p's string form, yielding the local
// filesystem path a storage backend would use to store p's bytes.
func (p Path) ToFile(root string) string {
	return filepath.Join(root, filepath.FromSlash(p.String()))
}

// ListLocal enumerates all regular files under a local directory root,
// returning their paths relative to that root. It fails with
// dfserrors.NotFound if root does not exist, and with
// dfserrors.InvalidArgument if root exists but is not a directory.
func ListLocal(root string) ([]Path, error) {
	const op = "dfspath.ListLocal"
	info, err := os.Stat(root)
	if os.IsNotExist(err) {
		return nil, dfserrors.E(op, dfserrors.NotFound, err)
	}
	if err != nil {
		return nil, dfserrors.E(op, dfserrors.Transport, err)
	}
	if !info.IsDir() {
		return nil, dfserrors.E(op, dfserrors.InvalidArgument, dfserrors.Str(root+" is not a directory"))
	}

	var out []Path
	walkErr := filepath.Walk(root, func(name string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if fi.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, name)
		if err != nil {
			return err
		}
		p, err := Parse("/" + filepath.ToSlash(rel))
		if err != nil {
			return err
		}
		out = append(out, p)
		return nil
	})
	if walkErr != nil {
		return nil, dfserrors.E(op, dfserrors.Transport, walkErr)
	}
	return out, nil
}
