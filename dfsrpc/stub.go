package dfsrpc

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"hash/fnv"
	"net"
	"reflect"

	"github.com/ashraghunath/DSD-Assignment3-DFS-RMI/dfserrors"
)

// Stub is the client-side proxy core shared by every concrete,
// interface-specific stub type in this module (commandStub, storageStub,
// serviceStub, registrationStub, ...). A concrete stub type embeds Stub
// and implements its target Go interface with one-line methods that
// forward to Call.
//
// Stub is stateless apart from its configuration: every Call opens a
// fresh TCP connection, per spec.
type Stub struct {
	Iface    *Interface
	Endpoint Endpoint
}

// NewStub validates (iface, endpoint) and returns a Stub core. Concrete
// per-interface stub constructors (e.g. dfsstore.NewCommandStub) call
// this and wrap the result in a type implementing the target interface.
func NewStub(iface *Interface, endpoint Endpoint) (Stub, error) {
	const op = "dfsrpc.NewStub"
	if iface == nil {
		return Stub{}, dfserrors.E(op, dfserrors.NullArgument)
	}
	if endpoint == "" {
		return Stub{}, dfserrors.E(op, dfserrors.NullArgument)
	}
	return Stub{Iface: iface, Endpoint: endpoint}, nil
}

// NewStubFromSkeleton is the convenience form: build a stub bound to a
// skeleton already running in this process, reusing its bound address.
// It fails with dfserrors.IllegalState if sk has not yet been started
// (its Addr is empty).
func NewStubFromSkeleton(iface *Interface, sk *Skeleton) (Stub, error) {
	const op = "dfsrpc.NewStubFromSkeleton"
	if sk == nil {
		return Stub{}, dfserrors.E(op, dfserrors.NullArgument)
	}
	addr := sk.Addr()
	if addr == "" {
		return Stub{}, dfserrors.E(op, dfserrors.IllegalState, dfserrors.Str("skeleton has no bound endpoint"))
	}
	return NewStub(iface, addr)
}

// NewStubFromSkeletonHost is the rebind form: build a stub bound to a
// skeleton already running in this process, but addressed by hostname
// instead of the loopback/bind address the skeleton reports — for a
// skeleton bound to "0.0.0.0:0" or "localhost:0" and reached from
// another host under a different name. It substitutes hostname for the
// host portion of sk.Addr(), keeping the bound port.
func NewStubFromSkeletonHost(iface *Interface, sk *Skeleton, hostname string) (Stub, error) {
	const op = "dfsrpc.NewStubFromSkeletonHost"
	if sk == nil {
		return Stub{}, dfserrors.E(op, dfserrors.NullArgument)
	}
	if hostname == "" {
		return Stub{}, dfserrors.E(op, dfserrors.NullArgument)
	}
	addr := sk.Addr()
	if addr == "" {
		return Stub{}, dfserrors.E(op, dfserrors.IllegalState, dfserrors.Str("skeleton has no bound endpoint"))
	}
	_, port, err := net.SplitHostPort(string(addr))
	if err != nil {
		return Stub{}, dfserrors.E(op, dfserrors.Transport, err)
	}
	return NewStub(iface, Endpoint(net.JoinHostPort(hostname, port)))
}

// Equal reports whether two stubs reference the same interface and
// endpoint, per the "stub equality" testable property.
func (s Stub) Equal(o Stub) bool {
	return s.Iface == o.Iface && s.Endpoint == o.Endpoint
}

// Hash combines interface identity and endpoint into a value suitable
// for use as a map key or in a hash set of stubs.
func (s Stub) Hash() uint64 {
	h := fnv.New64a()
	fmt.Fprintf(h, "%p|%s", s.Iface, s.Endpoint)
	return h.Sum64()
}

// String renders the stub as "Remote Interface: <iface>\nRemote
// Address: <endpoint>\n", the one local (non-remote) stringify
// operation defined on stubs.
func (s Stub) String() string {
	name := "<nil>"
	if s.Iface != nil {
		name = s.Iface.name
	}
	return fmt.Sprintf("Remote Interface: %s\nRemote Address: %s\n", name, s.Endpoint)
}

// wireStub is Stub's wire form: *Interface can't round-trip through gob
// directly (its fields are unexported reflect.Type/reflect.Value data),
// so only the interface's name crosses the wire; GobDecode resolves it
// back to the shared *Interface value via the package's name registry.
type wireStub struct {
	IfaceName string
	Endpoint  Endpoint
}

// GobEncode implements gob.GobEncoder, letting a Stub (and any concrete
// stub type that embeds it, such as a Storage capability passed to
// Command.Copy) travel as an RPC argument or return value in its own
// right.
func (s Stub) GobEncode() ([]byte, error) {
	name := ""
	if s.Iface != nil {
		name = s.Iface.name
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(wireStub{IfaceName: name, Endpoint: s.Endpoint}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// GobDecode implements gob.GobDecoder, the inverse of GobEncode.
func (s *Stub) GobDecode(data []byte) error {
	var w wireStub
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&w); err != nil {
		return err
	}
	ifc, ok := lookupInterface(w.IfaceName)
	if !ok {
		return dfserrors.E(dfserrors.BadInterface, dfserrors.Str("unknown remote interface "+w.IfaceName))
	}
	s.Iface = ifc
	s.Endpoint = w.Endpoint
	return nil
}

// Call performs one remote method invocation: dial the endpoint, write
// the method name, parameter types, and arguments, read back the
// status and payload, and close. It is the one non-local operation
// every concrete stub method performs.
func (s Stub) Call(method string, args ...interface{}) (interface{}, error) {
	const op = "dfsrpc.Call"
	m, ok := s.Iface.method(method)
	if !ok {
		return nil, dfserrors.E(op, method, dfserrors.NoSuchMethod)
	}

	conn, err := net.Dial("tcp", string(s.Endpoint))
	if err != nil {
		return nil, dfserrors.E(op, method, dfserrors.Transport, err)
	}
	defer conn.Close()

	req := request{
		Method:     method,
		ParamTypes: paramTypeNames(m.In),
		Args:       args,
	}
	enc := gob.NewEncoder(conn)
	if err := enc.Encode(&req); err != nil {
		return nil, dfserrors.E(op, method, dfserrors.Transport, err)
	}

	var resp response
	dec := gob.NewDecoder(conn)
	if err := dec.Decode(&resp); err != nil {
		return nil, dfserrors.E(op, method, dfserrors.Transport, err)
	}

	switch resp.Status {
	case StatusOK:
		return resp.Value, nil
	case StatusRemoteError:
		if resp.Err == nil {
			return nil, dfserrors.E(op, method, dfserrors.Transport, dfserrors.Str("malformed RemoteError response"))
		}
		return nil, resp.Err.asError()
	default:
		return nil, dfserrors.E(op, method, dfserrors.Transport, dfserrors.Str("unknown status tag "+resp.Status))
	}
}

func paramTypeNames(in []reflect.Type) []string {
	names := make([]string, len(in))
	for i, t := range in {
		names[i] = t.String()
	}
	return names
}
