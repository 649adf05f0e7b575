package naming

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/ashraghunath/DSD-Assignment3-DFS-RMI/dfsrpc"
	"github.com/ashraghunath/DSD-Assignment3-DFS-RMI/dfsstore"
)

// commandStubCacheSize bounds how many distinct storage servers' Command
// stubs the naming server keeps built. A cascading delete that touches
// the same replica for many paths, or a busy CreateFile path, would
// otherwise re-run dfsstore.NewCommandStub's validation on every single
// call for no benefit: the stub itself carries no per-call state.
const commandStubCacheSize = 256

// commandStubCache memoizes dfsstore.NewCommandStub by endpoint.
type commandStubCache struct {
	cache *lru.Cache[dfsrpc.Endpoint, dfsstore.Command]
}

func newCommandStubCache() *commandStubCache {
	c, err := lru.New[dfsrpc.Endpoint, dfsstore.Command](commandStubCacheSize)
	if err != nil {
		// Only returns an error for a non-positive size, which
		// commandStubCacheSize never is.
		panic(err)
	}
	return &commandStubCache{cache: c}
}

func (c *commandStubCache) get(endpoint dfsrpc.Endpoint) (dfsstore.Command, error) {
	if cmd, ok := c.cache.Get(endpoint); ok {
		return cmd, nil
	}
	cmd, err := dfsstore.NewCommandStub(endpoint)
	if err != nil {
		return nil, err
	}
	c.cache.Add(endpoint, cmd)
	return cmd, nil
}
