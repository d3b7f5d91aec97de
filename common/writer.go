package common

import (
	"context"
	"fmt"
	"sync"

	"github.com/whosonfirst/go-writer/v3"
)

var writers = make(map[string]writer.Writer)
var writers_mu = new(sync.RWMutex)

// NewWriter returns the whosonfirst/go-writer.Writer a GeoJSON FeatureCollection is published to for 'uri'.
// Every caller asking for the same URI shares one instance.
func NewWriter(ctx context.Context, uri string) (writer.Writer, error) {

	writers_mu.RLock()
	wr, ok := writers[uri]
	writers_mu.RUnlock()

	if ok {
		return wr, nil
	}

	writers_mu.Lock()
	defer writers_mu.Unlock()

	wr, ok = writers[uri]

	if ok {
		return wr, nil
	}

	wr, err := writer.NewWriter(ctx, uri)

	if err != nil {
		return nil, fmt.Errorf("Failed to create GeoJSON writer for %s, %w", uri, err)
	}

	writers[uri] = wr
	return wr, nil
}
