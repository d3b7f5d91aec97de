package dropbox

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/dropbox/dropbox-sdk-go-unofficial/v6/dropbox/sharing"
	"github.com/sfomuseum/go-dropbox-photomap/media"
	"github.com/sfomuseum/go-dropbox-photomap/thumbnail"
)

// type Links implements the `thumbnail.LinkProvider` interface returning directly-embeddable ("raw=1")
// Dropbox URLs for records.
type Links struct {
	thumbnail.LinkProvider
	client *Client
}

// Links returns a `thumbnail.LinkProvider` for the client's source.
func (c *Client) Links() *Links {
	return &Links{client: c}
}

// ExternalURL returns a raw image URL for 'rec'. For shared folder links this is the folder link with
// a "path" parameter. Otherwise a shared link is created for the file, or an existing one reused.
func (l *Links) ExternalURL(ctx context.Context, rec *media.Record) (string, error) {

	if l.client.source.IsSharedLink() {
		return FileLinkURL(l.client.source.SharedLink, rec.DisplayPath)
	}

	if ctx.Err() != nil {
		return "", ctx.Err()
	}

	path := rec.PathKey

	if path == "" {
		path = rec.ID
	}

	if path == "" {
		return "", fmt.Errorf("Record has no path or id")
	}

	link, err := l.client.sharedLink(path)

	if err != nil {
		return "", err
	}

	return RawURL(link)
}

func (c *Client) sharedLink(path string) (string, error) {

	arg := sharing.NewCreateSharedLinkWithSettingsArg(path)

	rsp, err := c.sharing.CreateSharedLinkWithSettings(arg)

	if err == nil {

		link, ok := linkURL(rsp)

		if ok {
			return link, nil
		}
	}

	// Most likely shared_link_already_exists
	slog.Debug("Failed to create shared link, checking existing links", "path", path, "error", err)

	list_arg := sharing.NewListSharedLinksArg()
	list_arg.Path = path
	list_arg.DirectOnly = true

	list_rsp, err := c.sharing.ListSharedLinks(list_arg)

	if err != nil {
		return "", fmt.Errorf("Failed to list shared links for %s, %w", path, err)
	}

	for _, l := range list_rsp.Links {

		link, ok := linkURL(l)

		if ok {
			return link, nil
		}
	}

	return "", fmt.Errorf("No shared link for %s", path)
}

func linkURL(m sharing.IsSharedLinkMetadata) (string, bool) {

	switch l := m.(type) {
	case *sharing.FileLinkMetadata:
		return l.Url, l.Url != ""
	case *sharing.SharedLinkMetadata:
		return l.Url, l.Url != ""
	default:
		return "", false
	}
}

// RawURL rewrites a Dropbox shared link so that it serves the file itself rather than a preview page.
func RawURL(link string) (string, error) {

	u, err := url.Parse(link)

	if err != nil {
		return "", fmt.Errorf("Failed to parse link, %w", err)
	}

	q := u.Query()
	q.Del("dl")
	q.Set("raw", "1")

	u.RawQuery = q.Encode()
	return u.String(), nil
}

// FileLinkURL returns a raw URL for the file at 'path' inside the shared folder 'link'.
func FileLinkURL(link string, path string) (string, error) {

	u, err := url.Parse(link)

	if err != nil {
		return "", fmt.Errorf("Failed to parse link, %w", err)
	}

	q := u.Query()
	q.Set("path", path)

	u.RawQuery = q.Encode()

	return RawURL(u.String())
}
