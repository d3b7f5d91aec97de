package build

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/sfomuseum/go-dropbox-photomap/operations/build"
)

func runLambda(ctx context.Context, opts *build.BuildOptions) error {

	handler := func(ctx context.Context) (*build.Summary, error) {

		summary, err := build.Build(ctx, opts)

		if err != nil {
			return nil, fmt.Errorf("Failed to build map, %w", err)
		}

		summary.Log(slog.Default())
		return summary, nil
	}

	lambda.Start(handler)
	return nil
}
