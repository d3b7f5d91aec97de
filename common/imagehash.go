package common

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"

	"github.com/corona10/goimagehash"
)

// ImageHashRsp is a struct representing the results of an image hashing operation.
type ImageHashRsp struct {
	// String label describing the image hashing procedure used.
	Approach string
	// The hexidecimal hash of an image.
	Hash string
}

// ImageHashesWithBytes decodes 'body' and returns a list of ImageHashRsp instances for it
// using the corona10/goimagehash package.
func ImageHashesWithBytes(ctx context.Context, body []byte, approaches ...string) ([]*ImageHashRsp, error) {

	im, _, err := image.Decode(bytes.NewReader(body))

	if err != nil {
		return nil, fmt.Errorf("Failed to decode image, %w", err)
	}

	return ImageHashes(ctx, im, approaches...)
}

// ImageHashes returns a list of ImageHashRsp instances for 'im'. If no approaches are
// specified then "avg" and "diff" are used.
func ImageHashes(ctx context.Context, im image.Image, approaches ...string) ([]*ImageHashRsp, error) {

	if len(approaches) == 0 {
		approaches = []string{
			"avg",
			"diff",
			// don't bother with this for now since it appears to return the same string hash as "avg" : "ext",
		}
	}

	hashes := make([]*ImageHashRsp, 0)

	for _, a := range approaches {

		rsp, err := imageHash(ctx, im, a)

		if err != nil {
			slog.Debug("Failed to derive image hash", "approach", a, "error", err)
			continue
		}

		if rsp == nil {
			continue
		}

		hashes = append(hashes, rsp)
	}

	if len(hashes) == 0 {
		return nil, fmt.Errorf("Failed to derive any image hashes")
	}

	return hashes, nil
}

func imageHash(ctx context.Context, im image.Image, approach string) (*ImageHashRsp, error) {

	select {
	case <-ctx.Done():
		return nil, nil
	default:
		// pass
	}

	var h *goimagehash.ImageHash
	var err error

	switch approach {
	case "avg":
		h, err = goimagehash.AverageHash(im)
	case "diff":
		h, err = goimagehash.DifferenceHash(im)
	case "perception":
		h, err = goimagehash.PerceptionHash(im)
	default:
		err = errors.New("Unknown approach")
	}

	if err != nil {
		return nil, fmt.Errorf("Failed to process image hash appoach '%s', %w", approach, err)
	}

	rsp := &ImageHashRsp{
		Approach: approach,
		Hash:     h.ToString(),
	}

	return rsp, nil
}
