package build

import (
	"context"
	"log/slog"

	"github.com/sfomuseum/go-dropbox-photomap/operations/build"
)

func runCommandLine(ctx context.Context, opts *build.BuildOptions) error {

	summary, err := build.Build(ctx, opts)

	if err != nil {
		return err
	}

	summary.Log(slog.Default())
	return nil
}
