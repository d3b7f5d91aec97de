package dropbox

import (
	"context"
	"fmt"
	"io"

	sdk "github.com/dropbox/dropbox-sdk-go-unofficial/v6/dropbox"
	"github.com/dropbox/dropbox-sdk-go-unofficial/v6/dropbox/files"
	"github.com/sfomuseum/go-dropbox-photomap/media"
	"github.com/sfomuseum/go-dropbox-photomap/thumbnail"
)

// type PathThumbnails implements the `thumbnail.Provider` interface by requesting a server-rendered
// thumbnail for a record's path (or, for shared links, its path relative to the link).
type PathThumbnails struct {
	thumbnail.Provider
	client *Client
}

// type IDThumbnails implements the `thumbnail.Provider` interface by requesting a server-rendered
// thumbnail for a record's file id.
type IDThumbnails struct {
	thumbnail.Provider
	client *Client
}

// PathThumbnails returns a `thumbnail.Provider` that addresses files by path or shared link.
func (c *Client) PathThumbnails() *PathThumbnails {
	return &PathThumbnails{client: c}
}

// IDThumbnails returns a `thumbnail.Provider` that addresses files by id.
func (c *Client) IDThumbnails() *IDThumbnails {
	return &IDThumbnails{client: c}
}

func (p *PathThumbnails) Thumbnail(ctx context.Context, rec *media.Record) (io.ReadCloser, error) {

	var resource *files.PathOrLink

	if p.client.source.IsSharedLink() {

		resource = &files.PathOrLink{
			Tagged: sdk.Tagged{Tag: files.PathOrLinkLink},
			Link: &files.SharedLinkFileInfo{
				Url:  p.client.source.SharedLink,
				Path: rec.DisplayPath,
			},
		}

	} else {

		if rec.PathKey == "" {
			return nil, fmt.Errorf("Record has no path")
		}

		resource = pathResource(rec.PathKey)
	}

	return p.client.thumbnail(ctx, resource)
}

func (p *IDThumbnails) Thumbnail(ctx context.Context, rec *media.Record) (io.ReadCloser, error) {

	if rec.ID == "" {
		return nil, fmt.Errorf("Record has no id")
	}

	return p.client.thumbnail(ctx, pathResource(rec.ID))
}

func pathResource(path string) *files.PathOrLink {

	return &files.PathOrLink{
		Tagged: sdk.Tagged{Tag: files.PathOrLinkPath},
		Path:   path,
	}
}

func (c *Client) thumbnail(ctx context.Context, resource *files.PathOrLink) (io.ReadCloser, error) {

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	arg := files.NewThumbnailV2Arg(resource)

	arg.Format = &files.ThumbnailFormat{
		Tagged: sdk.Tagged{Tag: files.ThumbnailFormatJpeg},
	}

	arg.Size = &files.ThumbnailSize{
		Tagged: sdk.Tagged{Tag: files.ThumbnailSizeW640h480},
	}

	_, r, err := c.files.GetThumbnailV2(arg)

	if err != nil {
		return nil, fmt.Errorf("Failed to retrieve thumbnail, %w", err)
	}

	return r, nil
}
