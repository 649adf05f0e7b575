package dfsrpc

import (
	"encoding/gob"
	"net"
	"reflect"
	"sync"

	"github.com/google/uuid"

	"github.com/ashraghunath/DSD-Assignment3-DFS-RMI/dfserrors"
	"github.com/ashraghunath/DSD-Assignment3-DFS-RMI/dfslog"
)

// Skeleton is a server-side endpoint bound to a TCP listener. It holds
// the interface descriptor being served and a target server object
// implementing every operation of that descriptor, and dispatches each
// accepted connection to a fresh service goroutine.
//
// Lifecycle: stopped -> running -> stopped, and a Skeleton is
// restartable: Start may be called again after Stop.
type Skeleton struct {
	iface  *Interface
	server interface{}
	addr   string // requested bind address; "" or ending in ":0" means system-assigned

	// ListenError is consulted when Accept fails while the skeleton is
	// not being stopped; returning false ends the listener loop.
	ListenError func(err error) bool
	// ServiceError is called whenever a service goroutine fails to
	// complete a call, including when the target method itself errors.
	ServiceError func(err error)
	// Stopped is called once the listener has exited, whatever the
	// cause (explicit Stop, or a listen error the hook chose not to
	// continue past).
	Stopped func(cause error)

	mu      sync.Mutex
	ln      net.Listener
	running bool
	wg      sync.WaitGroup // the listener goroutine
}

// NewSkeleton constructs a Skeleton for ifacePtr (e.g. (*Service)(nil))
// bound to addr (which may be "" to listen on all interfaces at a
// system-assigned port, or "host:0" to request a system-assigned port).
// It fails with dfserrors.NullArgument if server is nil, and with
// dfserrors.BadInterface if the interface is invalid or if server does
// not implement every operation of the interface.
func NewSkeleton(name string, ifacePtr interface{}, server interface{}, addr string) (*Skeleton, error) {
	const op = "dfsrpc.NewSkeleton"
	if server == nil {
		return nil, dfserrors.E(op, dfserrors.NullArgument)
	}
	iface, err := Describe(name, ifacePtr)
	if err != nil {
		return nil, err
	}
	ifaceGoType := reflect.TypeOf(ifacePtr).Elem()
	if !reflect.TypeOf(server).Implements(ifaceGoType) {
		return nil, dfserrors.E(op, dfserrors.BadInterface,
			dfserrors.Str("server does not implement "+name))
	}
	return &Skeleton{iface: iface, server: server, addr: addr}, nil
}

// Interface returns the descriptor this skeleton serves.
func (sk *Skeleton) Interface() *Interface { return sk.iface }

// Addr returns the skeleton's bound endpoint, or "" if Start has not yet
// bound a listener.
func (sk *Skeleton) Addr() Endpoint {
	sk.mu.Lock()
	defer sk.mu.Unlock()
	if sk.ln == nil {
		return ""
	}
	return Endpoint(sk.ln.Addr().String())
}

// Start binds a TCP listener (a system-assigned port if addr was empty
// or had port 0) and spawns the listener goroutine, returning as soon
// as it has been spawned. It fails with dfserrors.IllegalState if the
// skeleton is already running, and dfserrors.Transport if binding
// fails.
func (sk *Skeleton) Start() error {
	const op = "dfsrpc.Skeleton.Start"
	sk.mu.Lock()
	if sk.running {
		sk.mu.Unlock()
		return dfserrors.E(op, dfserrors.IllegalState)
	}
	ln, err := net.Listen("tcp", sk.addr)
	if err != nil {
		sk.mu.Unlock()
		return dfserrors.E(op, dfserrors.Transport, err)
	}
	sk.ln = ln
	sk.running = true
	sk.mu.Unlock()

	sk.wg.Add(1)
	go sk.listen()
	return nil
}

// Stop closes the listener, which wakes the listener goroutine, then
// waits for it to finish. In-flight service goroutines are allowed to
// run to completion; Stop does not wait for them. Stop on an
// already-stopped skeleton is a no-op.
func (sk *Skeleton) Stop() {
	sk.mu.Lock()
	if !sk.running {
		sk.mu.Unlock()
		return
	}
	sk.running = false
	ln := sk.ln
	sk.mu.Unlock()

	ln.Close()
	sk.wg.Wait()
}

func (sk *Skeleton) listen() {
	defer sk.wg.Done()
	var cause error
	for {
		conn, err := sk.ln.Accept()
		if err != nil {
			sk.mu.Lock()
			stopping := !sk.running
			sk.mu.Unlock()
			if stopping {
				break // a deliberate Stop() closed the listener; exit silently
			}
			cont := true
			if sk.ListenError != nil {
				cont = sk.ListenError(err)
			}
			if !cont {
				cause = err
				break
			}
			continue
		}
		go sk.serve(conn)
	}
	if sk.Stopped != nil {
		sk.Stopped(cause)
	}
}

// serve handles exactly one connection: read the request, dispatch to
// the server object, write the response, close. Each connection gets a
// correlation ID, carried into every log line this call produces, so a
// slow or failing service goroutine can be picked out of a busy
// skeleton's logs.
func (sk *Skeleton) serve(conn net.Conn) {
	defer conn.Close()
	connID := uuid.NewString()

	dec := gob.NewDecoder(conn)
	enc := gob.NewEncoder(conn)

	var req request
	if err := dec.Decode(&req); err != nil {
		sk.reportError(connID, err)
		sendRemoteError(enc, &wireError{WireKind: wireKindTransport, Message: err.Error()})
		return
	}

	m, ok := sk.iface.method(req.Method)
	if !ok || !sameParamTypes(m.In, req.ParamTypes) {
		sendRemoteError(enc, &wireError{
			WireKind: wireKindTransport,
			Kind:     dfserrors.NoSuchMethod,
			Message:  "no such method: " + req.Method,
		})
		return
	}

	val, callErr, dispatchErr := sk.dispatch(m, req.Args)
	if dispatchErr != nil {
		sk.reportError(connID, dispatchErr)
		sendRemoteError(enc, &wireError{WireKind: wireKindTransport, Message: dispatchErr.Error()})
		return
	}
	if callErr != nil {
		sk.reportError(connID, callErr)
		sendRemoteError(enc, &wireError{
			WireKind: wireKindMethodThrew,
			Kind:     dfserrors.KindOf(callErr),
			Message:  callErr.Error(),
		})
		return
	}

	if err := enc.Encode(&response{Status: StatusOK, Value: val}); err != nil {
		sk.reportError(connID, err)
	}
}

// dispatch invokes the named method on the target server object via
// reflection, resolving it purely from the interface descriptor and
// the decoded argument values: no interface-specific switch statement
// is needed on this side of the transport.
func (sk *Skeleton) dispatch(m Method, args []interface{}) (value interface{}, callErr, dispatchErr error) {
	if len(args) != len(m.In) {
		return nil, nil, dfserrors.E(dfserrors.Transport, dfserrors.Str("argument count mismatch"))
	}
	fn := reflect.ValueOf(sk.server).MethodByName(m.Name)
	if !fn.IsValid() {
		return nil, nil, dfserrors.E(dfserrors.NoSuchMethod)
	}

	in := make([]reflect.Value, len(args))
	for i, a := range args {
		want := m.In[i]
		if a == nil {
			in[i] = reflect.Zero(want)
			continue
		}
		v := reflect.ValueOf(a)
		if !v.Type().AssignableTo(want) {
			if v.Type().ConvertibleTo(want) {
				v = v.Convert(want)
			} else {
				return nil, nil, dfserrors.E(dfserrors.Transport,
					dfserrors.Str("argument "+want.String()+" mismatch"))
			}
		}
		in[i] = v
	}

	out := fn.Call(in)
	errOut := out[len(out)-1]
	if !errOut.IsNil() {
		return nil, errOut.Interface().(error), nil
	}
	if len(out) == 2 {
		value = out[0].Interface()
	}
	return value, nil, nil
}

func (sk *Skeleton) reportError(connID string, err error) {
	if sk.ServiceError != nil {
		sk.ServiceError(err)
		return
	}
	dfslog.Error.Printf("dfsrpc: [%s] service error: %v", connID, err)
}

func sendRemoteError(enc *gob.Encoder, we *wireError) {
	enc.Encode(&response{Status: StatusRemoteError, Err: we})
}

func sameParamTypes(in []reflect.Type, names []string) bool {
	if len(in) != len(names) {
		return false
	}
	for i, t := range in {
		if t.String() != names[i] {
			return false
		}
	}
	return true
}
