package dfsrpc

import (
	"net"
	"testing"
	"time"

	"github.com/ashraghunath/DSD-Assignment3-DFS-RMI/dfserrors"
)

// Echo is a minimal remote interface used to exercise the transport
// independently of any domain package.
type Echo interface {
	Add(a, b int64) (int64, error)
	Shout(s string) (string, error)
	Boom() error
}

var echoInterface = MustDescribe("Echo", (*Echo)(nil))

type echoImpl struct {
	shoutErr error
}

func (e *echoImpl) Add(a, b int64) (int64, error) { return a + b, nil }
func (e *echoImpl) Shout(s string) (string, error) {
	if e.shoutErr != nil {
		return "", e.shoutErr
	}
	return s + "!", nil
}
func (e *echoImpl) Boom() error {
	return dfserrors.E("Boom", dfserrors.InvalidArgument, dfserrors.Str("kaboom"))
}

var _ Echo = (*echoImpl)(nil)

type echoStub struct{ Stub }

func (s echoStub) Add(a, b int64) (int64, error) {
	v, err := s.Call("Add", a, b)
	if err != nil {
		return 0, err
	}
	return v.(int64), nil
}
func (s echoStub) Shout(str string) (string, error) {
	v, err := s.Call("Shout", str)
	if err != nil {
		return "", err
	}
	return v.(string), nil
}
func (s echoStub) Boom() error {
	_, err := s.Call("Boom")
	return err
}

var _ Echo = echoStub{}

func startEchoSkeleton(t *testing.T, impl *echoImpl) (*Skeleton, Endpoint) {
	t.Helper()
	sk, err := NewSkeleton("Echo", (*Echo)(nil), impl, "127.0.0.1:0")
	if err != nil {
		t.Fatalf("NewSkeleton: %v", err)
	}
	if err := sk.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(sk.Stop)
	return sk, sk.Addr()
}

func TestRoundTrip(t *testing.T) {
	impl := &echoImpl{}
	_, addr := startEchoSkeleton(t, impl)

	stub, err := NewStub(echoInterface, addr)
	if err != nil {
		t.Fatalf("NewStub: %v", err)
	}
	client := echoStub{stub}

	sum, err := client.Add(2, 3)
	if err != nil || sum != 5 {
		t.Fatalf("Add(2,3) = %v, %v; want 5, nil", sum, err)
	}

	s, err := client.Shout("hi")
	if err != nil || s != "hi!" {
		t.Fatalf("Shout(hi) = %q, %v; want hi!, nil", s, err)
	}
}

func TestMethodThrewPropagatesKind(t *testing.T) {
	impl := &echoImpl{}
	_, addr := startEchoSkeleton(t, impl)
	stub, _ := NewStub(echoInterface, addr)
	client := echoStub{stub}

	err := client.Boom()
	if err == nil {
		t.Fatal("Boom(): expected error, got nil")
	}
	if dfserrors.KindOf(err) != dfserrors.InvalidArgument {
		t.Fatalf("Boom(): kind = %v, want InvalidArgument", dfserrors.KindOf(err))
	}
}

func TestTransportErrorOnDeadEndpoint(t *testing.T) {
	stub, _ := NewStub(echoInterface, "127.0.0.1:1")
	client := echoStub{stub}
	_, err := client.Add(1, 1)
	if dfserrors.KindOf(err) != dfserrors.Transport {
		t.Fatalf("Add against dead endpoint: kind = %v, want Transport", dfserrors.KindOf(err))
	}
}

func TestStubEquality(t *testing.T) {
	a, _ := NewStub(echoInterface, "127.0.0.1:9000")
	b, _ := NewStub(echoInterface, "127.0.0.1:9000")
	c, _ := NewStub(echoInterface, "127.0.0.1:9001")
	otherIface := MustDescribe("Echo2", (*Echo)(nil))
	d, _ := NewStub(otherIface, "127.0.0.1:9000")

	if !a.Equal(b) {
		t.Error("stubs with identical interface and endpoint should be equal")
	}
	if a.Hash() != b.Hash() {
		t.Error("equal stubs should hash equal")
	}
	if a.Equal(c) {
		t.Error("stubs with different endpoints should not be equal")
	}
	if a.Equal(d) {
		t.Error("stubs with different interfaces should not be equal")
	}
}

func TestSkeletonLifecycle(t *testing.T) {
	impl := &echoImpl{}
	sk, err := NewSkeleton("Echo", (*Echo)(nil), impl, "127.0.0.1:0")
	if err != nil {
		t.Fatalf("NewSkeleton: %v", err)
	}
	if err := sk.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if sk.Addr() == "" {
		t.Fatal("expected a bound address after Start")
	}

	if err := sk.Start(); dfserrors.KindOf(err) != dfserrors.IllegalState {
		t.Fatalf("Start while running: got %v, want IllegalState", err)
	}

	done := make(chan struct{})
	go func() {
		sk.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Stop() did not return within bound")
	}

	// Stop on an already-stopped skeleton is a no-op.
	sk.Stop()

	// Restartable.
	if err := sk.Start(); err != nil {
		t.Fatalf("Start after Stop: %v", err)
	}
	sk.Stop()
}

func TestNoSuchMethod(t *testing.T) {
	impl := &echoImpl{}
	_, addr := startEchoSkeleton(t, impl)
	stub, _ := NewStub(echoInterface, addr)

	_, err := stub.Call("DoesNotExist")
	if dfserrors.KindOf(err) != dfserrors.NoSuchMethod {
		t.Fatalf("Call(DoesNotExist): kind = %v, want NoSuchMethod", dfserrors.KindOf(err))
	}
}

func TestBadInterfaceRejected(t *testing.T) {
	type NotAnError interface {
		DoThing() string // does not return error
	}
	if _, err := Describe("NotAnError", (*NotAnError)(nil)); dfserrors.KindOf(err) != dfserrors.BadInterface {
		t.Fatalf("Describe of interface missing error return: got %v, want BadInterface", err)
	}
}

func TestNewStubFromSkeleton(t *testing.T) {
	impl := &echoImpl{}
	sk, addr := startEchoSkeleton(t, impl)

	stub, err := NewStubFromSkeleton(echoInterface, sk)
	if err != nil {
		t.Fatalf("NewStubFromSkeleton: %v", err)
	}
	if stub.Endpoint != addr {
		t.Fatalf("stub.Endpoint = %q, want %q", stub.Endpoint, addr)
	}
	client := echoStub{stub}
	if sum, err := client.Add(4, 5); err != nil || sum != 9 {
		t.Fatalf("Add(4,5) = %v, %v; want 9, nil", sum, err)
	}
}

func TestNewStubFromSkeletonNotStarted(t *testing.T) {
	sk, err := NewSkeleton("Echo", (*Echo)(nil), &echoImpl{}, "127.0.0.1:0")
	if err != nil {
		t.Fatalf("NewSkeleton: %v", err)
	}
	if _, err := NewStubFromSkeleton(echoInterface, sk); dfserrors.KindOf(err) != dfserrors.IllegalState {
		t.Fatalf("NewStubFromSkeleton on unstarted skeleton: got %v, want IllegalState", err)
	}
}

func TestNewStubFromSkeletonHost(t *testing.T) {
	impl := &echoImpl{}
	sk, addr := startEchoSkeleton(t, impl)

	_, port, err := net.SplitHostPort(string(addr))
	if err != nil {
		t.Fatalf("SplitHostPort(%q): %v", addr, err)
	}

	stub, err := NewStubFromSkeletonHost(echoInterface, sk, "127.0.0.1")
	if err != nil {
		t.Fatalf("NewStubFromSkeletonHost: %v", err)
	}
	want := Endpoint(net.JoinHostPort("127.0.0.1", port))
	if stub.Endpoint != want {
		t.Fatalf("stub.Endpoint = %q, want %q", stub.Endpoint, want)
	}

	if _, err := NewStubFromSkeletonHost(echoInterface, sk, ""); dfserrors.KindOf(err) != dfserrors.NullArgument {
		t.Fatalf("NewStubFromSkeletonHost with empty hostname: got %v, want NullArgument", err)
	}
}

func TestStubGobRoundTrip(t *testing.T) {
	impl := &echoImpl{}
	_, addr := startEchoSkeleton(t, impl)
	stub, err := NewStub(echoInterface, addr)
	if err != nil {
		t.Fatalf("NewStub: %v", err)
	}

	encoded, err := stub.GobEncode()
	if err != nil {
		t.Fatalf("GobEncode: %v", err)
	}
	var decoded Stub
	if err := decoded.GobDecode(encoded); err != nil {
		t.Fatalf("GobDecode: %v", err)
	}
	if !decoded.Equal(stub) {
		t.Fatalf("decoded stub %v, want %v", decoded, stub)
	}
}
