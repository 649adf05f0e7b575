package dfsrpc

import (
	"encoding/gob"

	"github.com/ashraghunath/DSD-Assignment3-DFS-RMI/dfserrors"
)

// Status tags for the server-to-client half of the frame, per the
// normative choice of two tags (no third EXCEPTION variant).
const (
	StatusOK          = "OK"
	StatusRemoteError = "RemoteError"
)

// Error kinds carried in a wireError, distinguishing a failure of the
// transport itself from the target method's own declared error.
const (
	wireKindTransport   = "transport"
	wireKindMethodThrew = "method-threw"
)

// request is the client-to-server half of the frame: method name,
// parameter type descriptors, and marshalled arguments, in that order.
type request struct {
	Method     string
	ParamTypes []string
	Args       []interface{}
}

// wireError is the marshalled error value carried by a RemoteError
// response: either a transport failure or the target method's own
// thrown error (preserving its Kind so the stub can re-raise it
// faithfully).
type wireError struct {
	WireKind string
	Kind     dfserrors.Kind
	Message  string
}

func (e *wireError) asError() error {
	if e.WireKind == wireKindTransport {
		return dfserrors.E(dfserrors.Transport, dfserrors.Str(e.Message))
	}
	return dfserrors.E(e.Kind, dfserrors.Str(e.Message))
}

// response is the server-to-client half of the frame: a status tag and
// a payload whose meaning depends on the tag.
type response struct {
	Status string
	Value  interface{}
	Err    *wireError
}

func init() {
	// Concrete types that travel inside the Args/Value interface{}
	// slots must be registered so gob can recover their dynamic type
	// on decode. dfspath.Path and domain-specific value types register
	// themselves in their own package init().
	gob.Register("")
	gob.Register(int(0))
	gob.Register(int64(0))
	gob.Register(true)
	gob.Register([]byte(nil))
	gob.Register([]string(nil))
	gob.Register(wireError{})
	gob.Register(Endpoint(""))
}
