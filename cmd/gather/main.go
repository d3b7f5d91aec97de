// gather emits a JSON summary (fingerprint, mimetype, perceptual hashes and any EXIF location) for every image
// in one or more gocloud.dev/blob buckets, one record per line.
package main

import (
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/s3blob"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
)

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"log/slog"
	"os"
	"sync"

	"github.com/sfomuseum/go-dropbox-photomap/common"
	"github.com/sfomuseum/go-dropbox-photomap/operations/gather"
	"github.com/sfomuseum/go-flags/flagset"
)

func main() {

	var hash_images bool
	var verbose bool

	fs := flagset.NewFlagSet("gather")

	fs.BoolVar(&hash_images, "hash-images", true, "Compute perceptual hashes for each image.")
	fs.BoolVar(&verbose, "verbose", false, "Enable verbose (debug) logging.")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Emit a JSON summary for every image in one or more gocloud.dev/blob buckets.\n")
		fmt.Fprintf(os.Stderr, "Usage:\n\t %s [options] bucket-uri(N) bucket-uri(N)\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Valid options are:\n")
		fs.PrintDefaults()
	}

	flagset.Parse(fs)

	if verbose {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}

	ctx := context.Background()

	mu := new(sync.Mutex)
	enc := json.NewEncoder(os.Stdout)

	cb := func(ctx context.Context, rsp *gather.GatherImagesResponse) error {

		mu.Lock()
		defer mu.Unlock()

		return enc.Encode(rsp)
	}

	opts := &gather.GatherImagesOptions{
		Callback:   cb,
		HashImages: hash_images,
	}

	for _, uri := range fs.Args() {

		slog.Debug("Gather images", "bucket", uri)

		bucket, err := common.OpenBucket(ctx, uri)

		if err != nil {
			log.Fatalf("Failed to open %s, %v", uri, err)
		}

		err = gather.GatherImagesWithOptions(ctx, bucket, opts)

		bucket.Close()

		if err != nil {
			log.Fatalf("Failed to gather images for %s, %v", uri, err)
		}
	}
}
