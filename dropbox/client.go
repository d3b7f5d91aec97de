// Package dropbox provides methods for listing, fetching, thumbnailing and sharing images stored in a Dropbox folder
// or shared link.
package dropbox

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	sdk "github.com/dropbox/dropbox-sdk-go-unofficial/v6/dropbox"
	"github.com/dropbox/dropbox-sdk-go-unofficial/v6/dropbox/files"
	"github.com/dropbox/dropbox-sdk-go-unofficial/v6/dropbox/sharing"
	"github.com/sfomuseum/runtimevar"
	_ "gocloud.dev/runtimevar/constantvar"
	_ "gocloud.dev/runtimevar/filevar"
)

// SCHEME is the URI scheme used to address a folder in the authenticated user's Dropbox, for example
// "dropbox:///Photos/Romania".
const SCHEME string = "dropbox"

// DEFAULT_TIMEOUT is the default per-request timeout for Dropbox API calls.
const DEFAULT_TIMEOUT time.Duration = 30 * time.Second

// type Source describes the Dropbox folder to enumerate. Exactly one of SharedLink or Path is set.
type Source struct {
	// A Dropbox shared folder URL.
	SharedLink string
	// A folder path in the authenticated user's Dropbox. The empty string is the root folder.
	Path string
}

// IsSharedLink returns true if the source is a shared folder link.
func (s *Source) IsSharedLink() bool {
	return s.SharedLink != ""
}

// ParseSource parses 'uri' as a Dropbox source. It returns false if 'uri' is neither a Dropbox shared link
// nor a "dropbox://" URI.
func ParseSource(uri string) (*Source, bool) {

	u, err := url.Parse(uri)

	if err != nil {
		return nil, false
	}

	switch u.Scheme {
	case SCHEME:

		path := u.Host + u.Path
		path = strings.TrimRight(path, "/")

		if path != "" && !strings.HasPrefix(path, "/") {
			path = "/" + path
		}

		return &Source{Path: path}, true

	case "http", "https":

		host := strings.ToLower(u.Host)

		if host == "dropbox.com" || strings.HasSuffix(host, ".dropbox.com") {
			return &Source{SharedLink: uri}, true
		}
	}

	return nil, false
}

// ResolveToken returns 'token' as-is unless it looks like a URI, in which case it is dereferenced as
// a gocloud.dev/runtimevar variable.
func ResolveToken(ctx context.Context, token string) (string, error) {

	token = strings.TrimSpace(token)

	if token == "" {
		return "", fmt.Errorf("Missing Dropbox access token")
	}

	if !strings.Contains(token, "://") {
		return token, nil
	}

	v, err := runtimevar.StringVar(ctx, token)

	if err != nil {
		return "", fmt.Errorf("Failed to derive Dropbox access token from runtimevar, %w", err)
	}

	v = strings.TrimSpace(v)

	if v == "" {
		return "", fmt.Errorf("Dropbox access token runtimevar is empty")
	}

	return v, nil
}

// type ClientOptions is a struct containing configuration options for the `NewClient` method.
type ClientOptions struct {
	// A valid Dropbox access token.
	Token string
	// The folder to enumerate.
	Source *Source
	// The per-request timeout. Default is DEFAULT_TIMEOUT.
	Timeout time.Duration
}

// type Client wraps the Dropbox files and sharing APIs for a single source folder.
type Client struct {
	files   files.Client
	sharing sharing.Client
	source  *Source
}

// NewClient returns a new `Client` instance configured by 'opts'.
func NewClient(ctx context.Context, opts *ClientOptions) (*Client, error) {

	if opts.Source == nil {
		return nil, fmt.Errorf("Missing source")
	}

	if opts.Token == "" {
		return nil, fmt.Errorf("Missing Dropbox access token")
	}

	timeout := opts.Timeout

	if timeout <= 0 {
		timeout = DEFAULT_TIMEOUT
	}

	cfg := sdk.Config{
		Token:    opts.Token,
		LogLevel: sdk.LogOff,
		Client: &http.Client{
			Timeout: timeout,
		},
	}

	return NewClientWithAPI(files.New(cfg), sharing.New(cfg), opts.Source), nil
}

// NewClientWithAPI returns a new `Client` instance using existing files and sharing API clients.
func NewClientWithAPI(files_client files.Client, sharing_client sharing.Client, source *Source) *Client {

	c := &Client{
		files:   files_client,
		sharing: sharing_client,
		source:  source,
	}

	return c
}

// Source returns the folder the client enumerates.
func (c *Client) Source() *Source {
	return c.source
}
