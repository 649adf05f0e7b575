package naming

import (
	"github.com/ashraghunath/DSD-Assignment3-DFS-RMI/dfspath"
	"github.com/ashraghunath/DSD-Assignment3-DFS-RMI/dfsrpc"
)

// serviceStub implements Service for clients, forwarding every call
// over a dfsrpc.Stub bound to a naming server's Service skeleton.
type serviceStub struct{ dfsrpc.Stub }

// NewServiceStub returns a Service stub dialing the naming server's
// Service endpoint.
func NewServiceStub(endpoint dfsrpc.Endpoint) (Service, error) {
	s, err := dfsrpc.NewStub(ServiceInterface, endpoint)
	if err != nil {
		return nil, err
	}
	return serviceStub{s}, nil
}

func (s serviceStub) IsDirectory(p dfspath.Path) (bool, error) {
	v, err := s.Call("IsDirectory", p)
	if err != nil {
		return false, err
	}
	return v.(bool), nil
}

func (s serviceStub) List(p dfspath.Path) ([]string, error) {
	v, err := s.Call("List", p)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, nil
	}
	return v.([]string), nil
}

func (s serviceStub) CreateFile(p dfspath.Path) (bool, error) {
	v, err := s.Call("CreateFile", p)
	if err != nil {
		return false, err
	}
	return v.(bool), nil
}

func (s serviceStub) CreateDirectory(p dfspath.Path) (bool, error) {
	v, err := s.Call("CreateDirectory", p)
	if err != nil {
		return false, err
	}
	return v.(bool), nil
}

func (s serviceStub) Delete(p dfspath.Path) (bool, error) {
	v, err := s.Call("Delete", p)
	if err != nil {
		return false, err
	}
	return v.(bool), nil
}

func (s serviceStub) GetStorage(p dfspath.Path) (dfsrpc.Endpoint, error) {
	v, err := s.Call("GetStorage", p)
	if err != nil {
		return "", err
	}
	return v.(dfsrpc.Endpoint), nil
}

// registrationStub implements Registration for storage servers,
// forwarding the single Register call over a dfsrpc.Stub bound to a
// naming server's Registration skeleton.
type registrationStub struct{ dfsrpc.Stub }

// NewRegistrationStub returns a Registration stub dialing the naming
// server's Registration endpoint.
func NewRegistrationStub(endpoint dfsrpc.Endpoint) (Registration, error) {
	s, err := dfsrpc.NewStub(RegistrationInterface, endpoint)
	if err != nil {
		return nil, err
	}
	return registrationStub{s}, nil
}

func (r registrationStub) Register(storage, command dfsrpc.Endpoint, files []dfspath.Path) ([]dfspath.Path, error) {
	v, err := r.Call("Register", storage, command, files)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, nil
	}
	return v.([]dfspath.Path), nil
}
