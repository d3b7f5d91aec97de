package geocode

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/paulmach/orb"
	"github.com/sfomuseum/go-dropbox-photomap/media"
	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"
)

// type ClientOptions is a struct containing configuration options for the `NewClient` method.
type ClientOptions struct {
	// The Nominatim endpoint. Default is DEFAULT_ENDPOINT.
	Endpoint string
	// The User-Agent header sent with every request. Required.
	UserAgent string
	// The per-request timeout. Default is DEFAULT_TIMEOUT.
	Timeout time.Duration
	// An optional limiter. Default is the process-global DefaultLimiter().
	Limiter *rate.Limiter
	// An optional HTTP client. Default is http.DefaultClient.
	HTTPClient *http.Client
}

// type Client implements the `Geocoder` interface for a Nominatim endpoint.
type Client struct {
	endpoint    string
	user_agent  string
	timeout     time.Duration
	limiter     *rate.Limiter
	http_client *http.Client
}

// NewClient returns a new `Client` instance configured by 'opts'.
func NewClient(opts *ClientOptions) (*Client, error) {

	user_agent := strings.TrimSpace(opts.UserAgent)

	if user_agent == "" {
		return nil, fmt.Errorf("Missing user agent")
	}

	endpoint := opts.Endpoint

	if endpoint == "" {
		endpoint = DEFAULT_ENDPOINT
	}

	_, err := url.Parse(endpoint)

	if err != nil {
		return nil, fmt.Errorf("Failed to parse endpoint, %w", err)
	}

	timeout := opts.Timeout

	if timeout <= 0 {
		timeout = DEFAULT_TIMEOUT
	}

	limiter := opts.Limiter

	if limiter == nil {
		limiter = DefaultLimiter()
	}

	http_client := opts.HTTPClient

	if http_client == nil {
		http_client = http.DefaultClient
	}

	c := &Client{
		endpoint:    strings.TrimRight(endpoint, "/"),
		user_agent:  user_agent,
		timeout:     timeout,
		limiter:     limiter,
		http_client: http_client,
	}

	return c, nil
}

// Search returns the coordinates of the first Nominatim result for 'query'.
func (c *Client) Search(ctx context.Context, query string) (orb.Point, bool, error) {

	query = strings.TrimSpace(query)

	if query == "" {
		return orb.Point{}, false, nil
	}

	q := url.Values{}
	q.Set("q", query)
	q.Set("format", "json")
	q.Set("limit", "1")

	body, ok, err := c.get(ctx, "search", q)

	if err != nil || !ok {
		return orb.Point{}, false, err
	}

	rsp := gjson.ParseBytes(body)

	if !rsp.IsArray() || len(rsp.Array()) == 0 {
		return orb.Point{}, false, nil
	}

	// Nominatim returns lat and lon as strings
	lat, err := strconv.ParseFloat(rsp.Get("0.lat").String(), 64)

	if err != nil {
		return orb.Point{}, false, nil
	}

	lon, err := strconv.ParseFloat(rsp.Get("0.lon").String(), 64)

	if err != nil {
		return orb.Point{}, false, nil
	}

	if !media.ValidCoordinate(lat, lon) {
		return orb.Point{}, false, nil
	}

	return orb.Point{lon, lat}, true, nil
}

// Reverse returns the Nominatim display name for 'pt'.
func (c *Client) Reverse(ctx context.Context, pt orb.Point) (string, bool, error) {

	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(pt.Lat(), 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(pt.Lon(), 'f', -1, 64))
	q.Set("format", "json")

	body, ok, err := c.get(ctx, "reverse", q)

	if err != nil || !ok {
		return "", false, err
	}

	name_rsp := gjson.GetBytes(body, "display_name")

	if !name_rsp.Exists() || name_rsp.String() == "" {
		return "", false, nil
	}

	return name_rsp.String(), true, nil
}

// get issues a rate-limited request for 'path' and returns its body. 429 and 5xx responses return
// ErrUnavailable. Other non-2xx responses and invalid JSON are reported as no match.
func (c *Client) get(ctx context.Context, path string, q url.Values) ([]byte, bool, error) {

	logger := slog.Default()
	logger = logger.With("path", path)

	err := c.limiter.Wait(ctx)

	if err != nil {
		return nil, false, fmt.Errorf("Failed to wait for rate limiter, %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	uri := fmt.Sprintf("%s/%s?%s", c.endpoint, path, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)

	if err != nil {
		return nil, false, fmt.Errorf("Failed to create request, %w", err)
	}

	req.Header.Set("User-Agent", c.user_agent)
	req.Header.Set("Accept", "application/json")

	rsp, err := c.http_client.Do(req)

	if err != nil {
		return nil, false, fmt.Errorf("Failed to execute request, %w", err)
	}

	defer rsp.Body.Close()

	if rsp.StatusCode == http.StatusTooManyRequests || rsp.StatusCode >= 500 {
		return nil, false, fmt.Errorf("%w, status %d", ErrUnavailable, rsp.StatusCode)
	}

	if rsp.StatusCode < 200 || rsp.StatusCode > 299 {
		logger.Debug("Geocoder returned non-2xx status", "status", rsp.StatusCode)
		return nil, false, nil
	}

	body, err := io.ReadAll(rsp.Body)

	if err != nil {
		return nil, false, fmt.Errorf("Failed to read response, %w", err)
	}

	if !gjson.ValidBytes(body) {
		logger.Debug("Geocoder returned invalid JSON")
		return nil, false, nil
	}

	return body, true, nil
}
