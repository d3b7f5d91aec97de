package dropbox

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/url"
	"testing"
	"time"

	sdk "github.com/dropbox/dropbox-sdk-go-unofficial/v6/dropbox"
	"github.com/dropbox/dropbox-sdk-go-unofficial/v6/dropbox/files"
	"github.com/dropbox/dropbox-sdk-go-unofficial/v6/dropbox/sharing"
	"github.com/sfomuseum/go-dropbox-photomap/media"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFile(name string, path_display string, mi *files.MediaInfo) *files.FileMetadata {

	fm := &files.FileMetadata{
		Id:        "id:" + name,
		MediaInfo: mi,
	}

	fm.Name = name
	fm.PathDisplay = path_display

	if path_display != "" {
		fm.PathLower = string(bytes.ToLower([]byte(path_display)))
	}

	return fm
}

func newTestFolder(name string) *files.FolderMetadata {

	fm := &files.FolderMetadata{}
	fm.Name = name

	return fm
}

func photoInfo(lat float64, lon float64, ts *time.Time) *files.MediaInfo {

	pm := &files.PhotoMetadata{}
	pm.Location = &files.GpsCoordinates{Latitude: lat, Longitude: lon}
	pm.TimeTaken = ts

	return &files.MediaInfo{
		Tagged:   sdk.Tagged{Tag: files.MediaInfoMetadata},
		Metadata: pm,
	}
}

type fakeFiles struct {
	files.Client
	pages     map[string][]*files.ListFolderResult
	listed    []*files.ListFolderArg
	downloads []string
	thumbs    []*files.PathOrLink
}

func (f *fakeFiles) ListFolder(arg *files.ListFolderArg) (*files.ListFolderResult, error) {

	f.listed = append(f.listed, arg)

	pages, ok := f.pages[arg.Path]

	if !ok {
		return nil, errors.New("path/not_found")
	}

	return pages[0], nil
}

func (f *fakeFiles) ListFolderContinue(arg *files.ListFolderContinueArg) (*files.ListFolderResult, error) {

	for _, pages := range f.pages {
		for i, p := range pages {
			if p.Cursor == arg.Cursor && i+1 < len(pages) {
				return pages[i+1], nil
			}
		}
	}

	return nil, errors.New("reset")
}

func (f *fakeFiles) Download(arg *files.DownloadArg) (*files.FileMetadata, io.ReadCloser, error) {
	f.downloads = append(f.downloads, arg.Path)
	return nil, io.NopCloser(bytes.NewReader([]byte("jpeg bytes"))), nil
}

func (f *fakeFiles) GetThumbnailV2(arg *files.ThumbnailV2Arg) (*files.PreviewResult, io.ReadCloser, error) {
	f.thumbs = append(f.thumbs, arg.Resource)
	return nil, io.NopCloser(bytes.NewReader([]byte("thumb"))), nil
}

type fakeSharing struct {
	sharing.Client
	create_err error
	existing   []sharing.IsSharedLinkMetadata
	link_paths []string
}

func (f *fakeSharing) GetSharedLinkFile(arg *sharing.GetSharedLinkMetadataArg) (sharing.IsSharedLinkMetadata, io.ReadCloser, error) {
	f.link_paths = append(f.link_paths, arg.Path)
	return nil, io.NopCloser(bytes.NewReader([]byte("linked bytes"))), nil
}

func (f *fakeSharing) CreateSharedLinkWithSettings(arg *sharing.CreateSharedLinkWithSettingsArg) (sharing.IsSharedLinkMetadata, error) {

	if f.create_err != nil {
		return nil, f.create_err
	}

	l := &sharing.FileLinkMetadata{}
	l.Url = "https://www.dropbox.com/s/new/" + arg.Path + "?dl=0"

	return l, nil
}

func (f *fakeSharing) ListSharedLinks(arg *sharing.ListSharedLinksArg) (*sharing.ListSharedLinksResult, error) {
	return &sharing.ListSharedLinksResult{Links: f.existing}, nil
}

func TestParseSource(t *testing.T) {

	s, ok := ParseSource("dropbox:///Photos/Romania/")
	require.True(t, ok)
	assert.False(t, s.IsSharedLink())
	assert.Equal(t, "/Photos/Romania", s.Path)

	s, ok = ParseSource("dropbox://")
	require.True(t, ok)
	assert.Equal(t, "", s.Path)

	s, ok = ParseSource("https://www.dropbox.com/scl/fo/abc123/xyz?rlkey=k&dl=0")
	require.True(t, ok)
	assert.True(t, s.IsSharedLink())

	for _, uri := range []string{"file:///tmp/photos", "s3://bucket", "https://example.com/dropbox.com", "photos"} {
		_, ok = ParseSource(uri)
		assert.False(t, ok, uri)
	}
}

func TestResolveToken(t *testing.T) {

	ctx := context.Background()

	token, err := ResolveToken(ctx, " sl.abc123 ")
	require.NoError(t, err)
	assert.Equal(t, "sl.abc123", token)

	token, err = ResolveToken(ctx, "constant://?val=sl.fromvar&decoder=string")
	require.NoError(t, err)
	assert.Equal(t, "sl.fromvar", token)

	_, err = ResolveToken(ctx, "")
	assert.Error(t, err)
}

func TestListPathPaging(t *testing.T) {

	ctx := context.Background()

	ts := time.Date(2019, 8, 12, 9, 30, 0, 0, time.UTC)

	f := &fakeFiles{
		pages: map[string][]*files.ListFolderResult{
			"/Photos": {
				{
					Entries: []files.IsMetadata{
						newTestFile("Bicaz.jpg", "/Photos/Romania/Bicaz.jpg", photoInfo(46.9130, 26.0856, &ts)),
						newTestFile("notes.txt", "/Photos/notes.txt", nil),
					},
					Cursor:  "c1",
					HasMore: true,
				},
				{
					Entries: []files.IsMetadata{
						newTestFolder("Romania"),
						newTestFile("Sibiu.PNG", "/Photos/Sibiu.PNG", nil),
					},
					Cursor:  "c2",
					HasMore: false,
				},
			},
		},
	}

	c := NewClientWithAPI(f, &fakeSharing{}, &Source{Path: "/Photos"})

	records, err := c.List(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2)

	require.Len(t, f.listed, 1)
	assert.True(t, f.listed[0].Recursive)
	assert.True(t, f.listed[0].IncludeMediaInfo)

	assert.Equal(t, "Bicaz.jpg", records[0].Name)
	assert.Equal(t, "/photos/romania/bicaz.jpg", records[0].PathKey)
	assert.Equal(t, "/Photos/Romania/Bicaz.jpg", records[0].DisplayPath)
	assert.Equal(t, "image/jpeg", records[0].MimeType)
	require.NotNil(t, records[0].Embedded)
	assert.Equal(t, 46.9130, records[0].Embedded.Latitude)
	assert.Equal(t, &ts, records[0].Embedded.Time)

	assert.Equal(t, "image/png", records[1].MimeType)
	assert.Nil(t, records[1].Embedded)

	body, err := records[0].Bytes(ctx)
	require.NoError(t, err)
	assert.Equal(t, []byte("jpeg bytes"), body)
	assert.Equal(t, []string{"id:Bicaz.jpg"}, f.downloads)
}

func TestListSharedLinkRecurses(t *testing.T) {

	ctx := context.Background()

	link := "https://www.dropbox.com/scl/fo/abc123/xyz?rlkey=k&dl=0"

	f := &fakeFiles{
		pages: map[string][]*files.ListFolderResult{
			"": {
				{
					Entries: []files.IsMetadata{
						newTestFile("Bicaz.jpg", "", nil),
						newTestFolder("Romania"),
					},
				},
			},
			"/Romania": {
				{
					Entries: []files.IsMetadata{
						newTestFile("Lacul Rosu.jpg", "", nil),
					},
				},
			},
		},
	}

	s := &fakeSharing{}
	c := NewClientWithAPI(f, s, &Source{SharedLink: link})

	records, err := c.List(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2)

	require.Len(t, f.listed, 2)
	assert.False(t, f.listed[0].Recursive)
	require.NotNil(t, f.listed[0].SharedLink)
	assert.Equal(t, link, f.listed[0].SharedLink.Url)

	assert.Equal(t, "/Bicaz.jpg", records[0].DisplayPath)
	assert.Equal(t, "/Romania/Lacul Rosu.jpg", records[1].DisplayPath)
	assert.Equal(t, "/romania/lacul rosu.jpg", records[1].PathKey)

	body, err := records[1].Bytes(ctx)
	require.NoError(t, err)
	assert.Equal(t, []byte("linked bytes"), body)
	assert.Equal(t, []string{"/Romania/Lacul Rosu.jpg"}, s.link_paths)
}

func TestListFailure(t *testing.T) {

	c := NewClientWithAPI(&fakeFiles{}, &fakeSharing{}, &Source{Path: "/Missing"})

	_, err := c.List(context.Background())
	assert.Error(t, err)
}

func TestThumbnails(t *testing.T) {

	ctx := context.Background()

	f := &fakeFiles{}

	c := NewClientWithAPI(f, &fakeSharing{}, &Source{Path: "/Photos"})

	rec := &media.Record{PathKey: "/photos/bicaz.jpg", DisplayPath: "/Photos/Bicaz.jpg", ID: "id:1"}

	r, err := c.PathThumbnails().Thumbnail(ctx, rec)
	require.NoError(t, err)
	r.Close()

	r, err = c.IDThumbnails().Thumbnail(ctx, rec)
	require.NoError(t, err)
	r.Close()

	_, err = c.IDThumbnails().Thumbnail(ctx, &media.Record{PathKey: "/a.jpg"})
	assert.Error(t, err)

	require.Len(t, f.thumbs, 2)
	assert.Equal(t, files.PathOrLinkPath, f.thumbs[0].Tag)
	assert.Equal(t, "/photos/bicaz.jpg", f.thumbs[0].Path)
	assert.Equal(t, "id:1", f.thumbs[1].Path)

	link := "https://www.dropbox.com/scl/fo/abc123/xyz?rlkey=k&dl=0"
	c = NewClientWithAPI(f, &fakeSharing{}, &Source{SharedLink: link})

	r, err = c.PathThumbnails().Thumbnail(ctx, rec)
	require.NoError(t, err)
	r.Close()

	res := f.thumbs[2]
	assert.Equal(t, files.PathOrLinkLink, res.Tag)
	require.NotNil(t, res.Link)
	assert.Equal(t, link, res.Link.Url)
	assert.Equal(t, "/Photos/Bicaz.jpg", res.Link.Path)
}

func TestExternalURL(t *testing.T) {

	ctx := context.Background()

	rec := &media.Record{PathKey: "/photos/bicaz.jpg", DisplayPath: "/Photos/Bicaz.jpg"}

	c := NewClientWithAPI(&fakeFiles{}, &fakeSharing{}, &Source{Path: "/Photos"})

	u, err := c.Links().ExternalURL(ctx, rec)
	require.NoError(t, err)
	assert.Equal(t, "https://www.dropbox.com/s/new//photos/bicaz.jpg?raw=1", u)

	existing := &sharing.FileLinkMetadata{}
	existing.Url = "https://www.dropbox.com/s/old/bicaz.jpg?dl=0"

	s := &fakeSharing{
		create_err: errors.New("shared_link_already_exists"),
		existing:   []sharing.IsSharedLinkMetadata{existing},
	}

	c = NewClientWithAPI(&fakeFiles{}, s, &Source{Path: "/Photos"})

	u, err = c.Links().ExternalURL(ctx, rec)
	require.NoError(t, err)
	assert.Equal(t, "https://www.dropbox.com/s/old/bicaz.jpg?raw=1", u)

	c = NewClientWithAPI(&fakeFiles{}, &fakeSharing{create_err: errors.New("access_denied")}, &Source{Path: "/Photos"})

	_, err = c.Links().ExternalURL(ctx, rec)
	assert.Error(t, err)
}

func TestFileLinkURL(t *testing.T) {

	u, err := FileLinkURL("https://www.dropbox.com/scl/fo/abc123/xyz?rlkey=k&dl=0", "/Romania/Lacul Rosu.jpg")
	require.NoError(t, err)

	parsed, err := url.Parse(u)
	require.NoError(t, err)

	q := parsed.Query()
	assert.Equal(t, "1", q.Get("raw"))
	assert.Equal(t, "k", q.Get("rlkey"))
	assert.Equal(t, "/Romania/Lacul Rosu.jpg", q.Get("path"))
	assert.False(t, q.Has("dl"))
}

func TestLocationFromMediaInfo(t *testing.T) {

	ts := time.Date(2019, 8, 12, 9, 30, 0, 0, time.UTC)

	loc := LocationFromMediaInfo(photoInfo(46.8136, 25.8236, &ts))
	require.NotNil(t, loc)
	assert.Equal(t, 25.8236, loc.Longitude)

	assert.Nil(t, LocationFromMediaInfo(nil))
	assert.Nil(t, LocationFromMediaInfo(photoInfo(0, 0, nil)))
	assert.Nil(t, LocationFromMediaInfo(photoInfo(120, 0, nil)))

	pending := &files.MediaInfo{Tagged: sdk.Tagged{Tag: files.MediaInfoPending}}
	assert.Nil(t, LocationFromMediaInfo(pending))

	no_gps := &files.MediaInfo{Tagged: sdk.Tagged{Tag: files.MediaInfoMetadata}, Metadata: &files.PhotoMetadata{}}
	assert.Nil(t, LocationFromMediaInfo(no_gps))
}

func TestImageMimeType(t *testing.T) {

	tests := map[string]bool{
		"a.jpg":    true,
		"a.JPEG":   true,
		"a.png":    true,
		"a.gif":    true,
		"a.txt":    false,
		"a.mov":    false,
		"noext":    false,
		"a.tar.gz": false,
	}

	for name, expected := range tests {
		_, ok := ImageMimeType(name)
		assert.Equal(t, expected, ok, name)
	}
}
