// Package remove provides methods for deleting thumbnails that are no longer referenced by any feature.
package remove

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"gocloud.dev/blob"
)

// type Removal deletes files under a prefix in a bucket that are not in a list of keys to keep.
type Removal struct {
	Prefix string
	Dryrun bool
	bucket *blob.Bucket
}

// NewRemoval returns a new `Removal` instance for files under 'prefix' in 'bucket'.
func NewRemoval(bucket *blob.Bucket, prefix string) *Removal {

	prefix = strings.TrimRight(prefix, "/") + "/"

	r := &Removal{
		Prefix: prefix,
		Dryrun: false,
		bucket: bucket,
	}

	return r
}

// RemoveStale deletes every file under the removal's prefix whose key is not in 'keep'. It returns the
// keys that were (or, in dryrun mode, would have been) deleted.
func (r *Removal) RemoveStale(ctx context.Context, keep map[string]bool) ([]string, error) {

	list_opts := &blob.ListOptions{
		Prefix: r.Prefix,
	}

	stale := make([]string, 0)

	iter := r.bucket.List(list_opts)

	for {

		obj, err := iter.Next(ctx)

		if err == io.EOF {
			break
		}

		if err != nil {
			return nil, fmt.Errorf("Failed to list %s, %w", r.Prefix, err)
		}

		if obj.IsDir || keep[obj.Key] {
			continue
		}

		stale = append(stale, obj.Key)
	}

	for _, key := range stale {

		if r.Dryrun {
			slog.Info("[dryrun] Delete stale file", "key", key)
			continue
		}

		err := r.bucket.Delete(ctx, key)

		if err != nil {
			return nil, fmt.Errorf("Failed to delete %s, %w", key, err)
		}

		slog.Debug("Deleted stale file", "key", key)
	}

	return stale, nil
}
