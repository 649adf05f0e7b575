// Package dfserrors defines the error handling used across the naming
// server, storage servers, and the RPC transport that binds them.
package dfserrors

import (
	"bytes"
	"fmt"
	"runtime"

	"github.com/ashraghunath/DSD-Assignment3-DFS-RMI/dfslog"
)

// PathName is the string form of a path, given its own type (as the
// teacher does with upspin.PathName) so errors.E can distinguish a path
// argument from an Op argument, both of which are otherwise strings.
type PathName string

// Error is the type that implements the error interface for this system.
// An Error value may leave some fields unset.
type Error struct {
	// Path is the path of the item being accessed, if any.
	Path PathName
	// Op is the operation being performed, usually the method being
	// invoked (CreateFile, Register, etc.)
	Op string
	// Kind classifies the error per the transport-level error kinds.
	Kind Kind
	// Err is the underlying error that triggered this one, if any.
	Err error
}

var _ error = (*Error)(nil)

// Kind defines the kind of failure this error represents. Kinds are
// the vocabulary both ends of the RPC transport agree on; a RemoteError
// frame carries one.
type Kind uint8

// The error kinds named in the specification.
const (
	Other          Kind = iota // Unclassified.
	NullArgument               // A required argument was absent.
	InvalidArgument            // Malformed path component or path string.
	IllegalState               // Lifecycle violation.
	BadInterface               // Interface descriptor is not a valid remote interface.
	NoSuchMethod               // Method/parameter-types did not resolve.
	NotFound                   // Path does not exist, or is the wrong kind.
	Transport                  // I/O, connect, or framing failure on the RPC channel.
	MethodThrew                // The target method raised its own declared error.
)

func (k Kind) String() string {
	switch k {
	case NullArgument:
		return "null argument"
	case InvalidArgument:
		return "invalid argument"
	case IllegalState:
		return "illegal state"
	case BadInterface:
		return "bad interface"
	case NoSuchMethod:
		return "no such method"
	case NotFound:
		return "not found"
	case Transport:
		return "transport error"
	case MethodThrew:
		return "method threw"
	case Other:
		return "other error"
	}
	return "unknown error kind"
}

// E builds an error value from its arguments.
// The type of each argument determines its meaning. Only one argument of
// each type may be present; if more than one is given, the last wins.
//
// The types are:
//	string
//		The operation being performed.
//	PathName
//		The path of the item being accessed.
//	Kind
//		The kind of error.
//	error
//		The underlying error that triggered this one.
func E(args ...interface{}) error {
	if len(args) == 0 {
		return nil
	}
	e := &Error{}
	for _, arg := range args {
		switch arg := arg.(type) {
		case string:
			e.Op = arg
		case PathName:
			e.Path = arg
		case Kind:
			e.Kind = arg
		case error:
			e.Err = arg
		default:
			_, file, line, _ := runtime.Caller(1)
			dfslog.Error.Printf("dfserrors.E: bad call from %s:%d: %v", file, line, args)
			return fmt.Errorf("unknown type %T, value %v in error call", arg, arg)
		}
	}
	return e
}

// KindOf returns the kind of the given error. If the error is not of type
// *Error, or is nil, it returns Other.
func KindOf(err error) Kind {
	e, ok := err.(*Error)
	if !ok || e == nil {
		return Other
	}
	if e.Kind != Other {
		return e.Kind
	}
	if e.Err != nil {
		return KindOf(e.Err)
	}
	return Other
}

// Is reports whether err is an *Error of the given kind, looking through
// wrapped causes.
func Is(kind Kind, err error) bool {
	return KindOf(err) == kind
}

func pad(b *bytes.Buffer, str string) {
	if b.Len() == 0 {
		return
	}
	b.WriteString(str)
}

func (e *Error) Error() string {
	b := new(bytes.Buffer)
	if e.Path != "" {
		b.WriteString(string(e.Path))
	}
	if e.Op != "" {
		pad(b, ": ")
		b.WriteString(e.Op)
	}
	if e.Kind != Other {
		pad(b, ": ")
		b.WriteString(e.Kind.String())
	}
	if e.Err != nil {
		if _, ok := e.Err.(*Error); ok {
			pad(b, ":\n\t")
		} else {
			pad(b, ": ")
		}
		b.WriteString(e.Err.Error())
	}
	if b.Len() == 0 {
		return "no error"
	}
	return b.String()
}

// Unwrap allows errors.Is/errors.As to see through an *Error to its cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Str is a trivial implementation of error that does not require a
// mutable struct, used where a fixed sentinel error value is wanted,
// mirroring the teacher's own errors.Str helper.
func Str(s string) error {
	return &errorString{s}
}

type errorString struct{ s string }

func (e *errorString) Error() string { return e.s }
