package common

import (
	"context"
	"fmt"
	"sync"

	"github.com/whosonfirst/go-reader/v2"
)

var readers = make(map[string]reader.Reader)
var readers_mu = new(sync.RWMutex)

// NewReader returns the whosonfirst/go-reader.Reader used to load curator inputs (override tables, rules
// and gazetteers) from 'uri'. Every caller asking for the same URI shares one instance.
func NewReader(ctx context.Context, uri string) (reader.Reader, error) {

	readers_mu.RLock()
	r, ok := readers[uri]
	readers_mu.RUnlock()

	if ok {
		return r, nil
	}

	readers_mu.Lock()
	defer readers_mu.Unlock()

	r, ok = readers[uri]

	if ok {
		return r, nil
	}

	r, err := reader.NewReader(ctx, uri)

	if err != nil {
		return nil, fmt.Errorf("Failed to create curator input reader for %s, %w", uri, err)
	}

	readers[uri] = r
	return r, nil
}
