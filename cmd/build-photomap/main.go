package main

import (
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/s3blob"
	_ "gocloud.dev/runtimevar/awsparamstore"
	_ "gocloud.dev/runtimevar/constantvar"
	_ "gocloud.dev/runtimevar/filevar"
	_ "image/gif"
	_ "image/png"
)

import (
	"context"
	"log"

	"github.com/sfomuseum/go-dropbox-photomap/app/build"
)

func main() {

	ctx := context.Background()

	err := build.Run(ctx)

	if err != nil {
		log.Fatalf("Failed to build photo map, %v", err)
	}
}
