package dropbox

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"path"
	"path/filepath"
	"strings"

	"github.com/dropbox/dropbox-sdk-go-unofficial/v6/dropbox/files"
	"github.com/dropbox/dropbox-sdk-go-unofficial/v6/dropbox/sharing"
	"github.com/sfomuseum/go-dropbox-photomap/media"
)

// List enumerates every image in the client's source folder, including subfolders. Files are kept if
// their extension maps to an "image/*" mimetype. Listing errors are returned as-is.
func (c *Client) List(ctx context.Context) ([]*media.Record, error) {

	records := make([]*media.Record, 0)

	if c.source.IsSharedLink() {

		err := c.listSharedLink(ctx, "", &records)

		if err != nil {
			return nil, err
		}

		return records, nil
	}

	root := c.source.Path

	if root == "/" {
		root = ""
	}

	arg := files.NewListFolderArg(root)
	arg.Recursive = true
	arg.IncludeMediaInfo = true

	err := c.listFolder(ctx, arg, func(e files.IsMetadata) error {

		switch m := e.(type) {
		case *files.FileMetadata:

			rec, ok := c.pathRecord(m)

			if ok {
				records = append(records, rec)
			}
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	return records, nil
}

// listSharedLink enumerates 'dir' (relative to the shared link) and recurses into subfolders manually
// since recursive listings are not supported for shared links.
func (c *Client) listSharedLink(ctx context.Context, dir string, records *[]*media.Record) error {

	arg := files.NewListFolderArg(dir)
	arg.SharedLink = files.NewSharedLink(c.source.SharedLink)
	arg.IncludeMediaInfo = true

	folders := make([]string, 0)

	err := c.listFolder(ctx, arg, func(e files.IsMetadata) error {

		switch m := e.(type) {
		case *files.FolderMetadata:
			folders = append(folders, JoinPath(dir, m.Name))
		case *files.FileMetadata:

			rec, ok := c.linkRecord(dir, m)

			if ok {
				*records = append(*records, rec)
			}
		}

		return nil
	})

	if err != nil {
		return err
	}

	for _, sub := range folders {

		err := c.listSharedLink(ctx, sub, records)

		if err != nil {
			return err
		}
	}

	return nil
}

// listFolder pages through a folder listing, following the cursor until there are no more results.
func (c *Client) listFolder(ctx context.Context, arg *files.ListFolderArg, cb func(files.IsMetadata) error) error {

	logger := slog.Default()
	logger = logger.With("path", arg.Path)

	rsp, err := c.files.ListFolder(arg)

	if err != nil {
		return fmt.Errorf("Failed to list folder '%s', %w", arg.Path, err)
	}

	for {

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			// pass
		}

		logger.Debug("List folder page", "count", len(rsp.Entries), "has_more", rsp.HasMore)

		for _, e := range rsp.Entries {

			err := cb(e)

			if err != nil {
				return err
			}
		}

		if !rsp.HasMore {
			break
		}

		rsp, err = c.files.ListFolderContinue(files.NewListFolderContinueArg(rsp.Cursor))

		if err != nil {
			return fmt.Errorf("Failed to continue listing folder '%s', %w", arg.Path, err)
		}
	}

	return nil
}

func (c *Client) pathRecord(m *files.FileMetadata) (*media.Record, bool) {

	mimetype, ok := ImageMimeType(m.Name)

	if !ok {
		return nil, false
	}

	// Fetch by id, when present, rather than path
	fetch_path := m.PathLower

	if m.Id != "" {
		fetch_path = m.Id
	}

	fetch := func(ctx context.Context) ([]byte, error) {

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		arg := files.NewDownloadArg(fetch_path)

		_, r, err := c.files.Download(arg)

		if err != nil {
			return nil, err
		}

		defer r.Close()

		return readAll(ctx, r)
	}

	rec := media.NewRecord(m.Name, m.PathLower, m.PathDisplay, fetch)
	rec.ID = m.Id
	rec.MimeType = mimetype
	rec.Embedded = LocationFromMediaInfo(m.MediaInfo)

	return rec, true
}

func (c *Client) linkRecord(dir string, m *files.FileMetadata) (*media.Record, bool) {

	mimetype, ok := ImageMimeType(m.Name)

	if !ok {
		return nil, false
	}

	// Listings via a shared link omit path_lower and path_display
	display_path := JoinPath(dir, m.Name)

	fetch := func(ctx context.Context) ([]byte, error) {

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		arg := sharing.NewGetSharedLinkMetadataArg(c.source.SharedLink)
		arg.Path = display_path

		_, r, err := c.sharing.GetSharedLinkFile(arg)

		if err != nil {
			return nil, err
		}

		defer r.Close()

		return readAll(ctx, r)
	}

	rec := media.NewRecord(m.Name, strings.ToLower(display_path), display_path, fetch)
	rec.ID = m.Id
	rec.MimeType = mimetype
	rec.Embedded = LocationFromMediaInfo(m.MediaInfo)

	return rec, true
}

func readAll(ctx context.Context, r io.Reader) ([]byte, error) {

	body, err := io.ReadAll(r)

	if err != nil {
		return nil, err
	}

	return body, ctx.Err()
}

// JoinPath joins a folder path (relative to a shared link, or absolute) and a filename. The result
// always starts with "/".
func JoinPath(dir string, name string) string {
	return path.Join("/", dir, name)
}

// ImageMimeType returns the mimetype for 'name' and true if it is an "image/*" type.
func ImageMimeType(name string) (string, bool) {

	ext := strings.ToLower(filepath.Ext(name))

	if ext == "" {
		return "", false
	}

	mimetype := mime.TypeByExtension(ext)

	if mimetype == "" {
		return "", false
	}

	mimetype, _, _ = strings.Cut(mimetype, ";")

	if !strings.HasPrefix(mimetype, "image/") {
		return "", false
	}

	return mimetype, true
}

// LocationFromMediaInfo converts Dropbox photo or video metadata into a `media.Location`. It returns nil if
// the metadata is pending, absent or has no valid GPS coordinates.
func LocationFromMediaInfo(mi *files.MediaInfo) *media.Location {

	if mi == nil || mi.Tag != files.MediaInfoMetadata {
		return nil
	}

	var mm *files.MediaMetadata

	switch m := mi.Metadata.(type) {
	case *files.PhotoMetadata:
		mm = &m.MediaMetadata
	case *files.VideoMetadata:
		mm = &m.MediaMetadata
	case *files.MediaMetadata:
		mm = m
	}

	if mm == nil || mm.Location == nil {
		return nil
	}

	loc := &media.Location{
		Latitude:  mm.Location.Latitude,
		Longitude: mm.Location.Longitude,
		Time:      mm.TimeTaken,
	}

	if !loc.IsValid() {
		return nil
	}

	if loc.Latitude == 0.0 && loc.Longitude == 0.0 {
		return nil
	}

	return loc
}
