// Package dfsrpc implements the remote-method-invocation transport that
// binds the naming server, storage servers, and clients together: a
// multi-threaded skeleton (server endpoint) and a stub (client proxy)
// generated at runtime from a Go interface value, exchanging a single
// self-describing frame per call over TCP.
package dfsrpc

import (
	"reflect"
	"sync"

	"github.com/ashraghunath/DSD-Assignment3-DFS-RMI/dfserrors"
)

// Endpoint is the network address of a skeleton, in "host:port" form.
// It is the unit both stubs and the wire protocol address services by.
type Endpoint string

// named holds every *Interface built by Describe, keyed by name, so a
// Stub travelling as an RPC argument (e.g. a Storage capability passed
// to Command.Copy) can be reconstructed on decode: the wire only
// carries the interface's name, not the unexported descriptor itself.
var named = struct {
	mu sync.Mutex
	m  map[string]*Interface
}{m: make(map[string]*Interface)}

func registerInterface(ifc *Interface) {
	named.mu.Lock()
	defer named.mu.Unlock()
	named.m[ifc.name] = ifc
}

func lookupInterface(name string) (*Interface, bool) {
	named.mu.Lock()
	defer named.mu.Unlock()
	ifc, ok := named.m[name]
	return ifc, ok
}

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// Method describes one operation of a remote interface: its name, the
// types of its arguments (excluding the trailing error), and the type
// of its non-error return value, if any.
type Method struct {
	Name string
	In   []reflect.Type
	Out  reflect.Type // nil if the method returns only error
}

// Interface is a declared set of named remote operations. It is built
// once per name and Go interface type (by Describe) and shared by every stub and
// skeleton that speaks it; two stubs are equal only if they reference
// the identical *Interface value.
type Interface struct {
	name    string
	goType  reflect.Type
	methods map[string]Method
	order   []string // method names, in declaration order, for stringification
}

// Name returns the interface's declared name.
func (ifc *Interface) Name() string { return ifc.name }

func (ifc *Interface) method(name string) (Method, bool) {
	m, ok := ifc.methods[name]
	return m, ok
}

// Describe builds an Interface descriptor from a typed nil pointer to a
// Go interface, e.g. Describe("Service", (*Service)(nil)). It fails with
// dfserrors.BadInterface if ifacePtr does not point to an interface
// type, or if any method's return signature does not end in error —
// the transport-level-error declaration every remote operation must
// carry (spec-level "valid remote interface" rule). Describing the same
// name and Go interface type again returns the descriptor already built.
func Describe(name string, ifacePtr interface{}) (*Interface, error) {
	const op = "dfsrpc.Describe"
	if ifacePtr == nil {
		return nil, dfserrors.E(op, dfserrors.NullArgument)
	}
	ptrType := reflect.TypeOf(ifacePtr)
	if ptrType.Kind() != reflect.Ptr || ptrType.Elem().Kind() != reflect.Interface {
		return nil, dfserrors.E(op, dfserrors.BadInterface, dfserrors.Str("not a pointer to an interface type"))
	}
	t := ptrType.Elem()
	if ifc, ok := lookupInterface(name); ok && ifc.goType == t {
		return ifc, nil
	}

	ifc := &Interface{
		name:    name,
		goType:  t,
		methods: make(map[string]Method, t.NumMethod()),
	}
	for i := 0; i < t.NumMethod(); i++ {
		m := t.Method(i)
		ft := m.Type
		nOut := ft.NumOut()
		if nOut == 0 || ft.Out(nOut-1) != errorType {
			return nil, dfserrors.E(op, dfserrors.BadInterface,
				dfserrors.Str("method "+m.Name+" does not declare a transport-level error return"))
		}
		method := Method{Name: m.Name}
		for j := 0; j < ft.NumIn(); j++ {
			method.In = append(method.In, ft.In(j))
		}
		if nOut == 2 {
			method.Out = ft.Out(0)
		} else if nOut > 2 {
			return nil, dfserrors.E(op, dfserrors.BadInterface,
				dfserrors.Str("method "+m.Name+" returns more than (value, error)"))
		}
		ifc.methods[m.Name] = method
		ifc.order = append(ifc.order, m.Name)
	}
	registerInterface(ifc)
	return ifc, nil
}

// MustDescribe is like Describe but panics on error. It is used at
// package-init time to build the well-known descriptors for Service,
// Registration, Storage, and Command, where a bad descriptor is a
// programming error, not a runtime condition.
func MustDescribe(name string, ifacePtr interface{}) *Interface {
	ifc, err := Describe(name, ifacePtr)
	if err != nil {
		panic(err)
	}
	return ifc
}
