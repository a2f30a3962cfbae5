// Package bunny is a client for the Bunny Stream video library API.
package bunny

import (
	"context"
	"coursehub/apperrors"
	"coursehub/metrics"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	DefaultBaseURL = "https://video.bunnycdn.com"
	defaultTimeout = 30 * time.Second
	maxErrorBody   = 64 << 10

	// StatusReady is the remote status code of a fully encoded video.
	StatusReady = 4
)

// Credentials select the video library and the key used to access it.
type Credentials struct {
	LibraryID string
	APIKey    string
}

// ResolveCredentials applies per-course overrides on top of the defaults. A
// course key is only used together with a course library.
func ResolveCredentials(libraryID, apiKey *string, defaults Credentials) Credentials {
	lib := deref(libraryID)
	key := deref(apiKey)

	switch {
	case lib != "" && key != "":
		return Credentials{LibraryID: lib, APIKey: key}
	case lib != "":
		return Credentials{LibraryID: lib, APIKey: defaults.APIKey}
	default:
		return defaults
	}
}

// RemoteVideo is the subset of the remote video object the coordinator reads.
// Raw keeps the full payload for mirroring into local metadata.
type RemoteVideo struct {
	GUID   string          `json:"guid"`
	Title  string          `json:"title"`
	Status int             `json:"status"`
	Length *int64          `json:"length"`
	Raw    json.RawMessage `json:"-"`
}

func (v RemoteVideo) IsReady() bool {
	return v.Status == StatusReady
}

// VideoUpdate patches remote metadata. Nil fields are not sent.
type VideoUpdate struct {
	Title    *string `json:"title,omitempty"`
	IsPublic *bool   `json:"isPublic,omitempty"`
}

type Option func(*options)

type options struct {
	baseURL string
	timeout time.Duration
}

func WithBaseURL(url string) Option {
	return func(o *options) {
		if url != "" {
			o.baseURL = url
		}
	}
}

// WithTimeout bounds JSON calls. Uploads are never bounded.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// Pool owns the HTTP transport shared by every library client. Build one per
// process and hand out per-library clients with Client.
type Pool struct {
	baseURL string
	api     *resty.Client
	upload  *http.Client
}

func NewPool(opts ...Option) *Pool {
	o := options{baseURL: DefaultBaseURL, timeout: defaultTimeout}
	for _, opt := range opts {
		opt(&o)
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()

	api := resty.NewWithClient(&http.Client{Transport: transport}).
		SetBaseURL(strings.TrimRight(o.baseURL, "/")).
		SetTimeout(o.timeout).
		SetHeader("Accept", "application/json")

	return &Pool{
		baseURL: strings.TrimRight(o.baseURL, "/"),
		api:     api,
		upload:  &http.Client{Transport: transport},
	}
}

// Client binds the pool to one library. It allocates no connections.
func (p *Pool) Client(creds Credentials) *Client {
	return &Client{creds: creds, pool: p}
}

type Client struct {
	creds Credentials
	pool  *Pool
}

// NewClient builds a client on a private pool. Long-lived callers should
// share a Pool instead.
func NewClient(creds Credentials, opts ...Option) *Client {
	return NewPool(opts...).Client(creds)
}

func (c *Client) request(ctx context.Context) *resty.Request {
	return c.pool.api.R().
		SetContext(ctx).
		SetHeader("AccessKey", c.creds.APIKey).
		SetPathParam("library", c.creds.LibraryID)
}

func (c *Client) Credentials() Credentials {
	return c.creds
}

func (c *Client) CreateVideo(ctx context.Context, title string) (RemoteVideo, error) {
	started := time.Now()
	resp, err := c.request(ctx).
		SetBody(map[string]string{"title": title}).
		Post("/library/{library}/videos")
	video, err := decodeVideo("create video", resp, err)
	metrics.ObserveProvider("create", started, err)
	return video, err
}

func (c *Client) GetVideo(ctx context.Context, guid string) (RemoteVideo, error) {
	started := time.Now()
	resp, err := c.request(ctx).
		SetPathParam("guid", guid).
		Get("/library/{library}/videos/{guid}")
	video, err := decodeVideo("get video", resp, err)
	metrics.ObserveProvider("get", started, err)
	return video, err
}

// UpdateVideo returns the raw response body, which the host may leave empty.
func (c *Client) UpdateVideo(ctx context.Context, guid string, update VideoUpdate) (json.RawMessage, error) {
	started := time.Now()
	resp, err := c.request(ctx).
		SetPathParam("guid", guid).
		SetBody(update).
		Put("/library/{library}/videos/{guid}")
	err = check("update video", resp, err)
	metrics.ObserveProvider("update", started, err)
	if err != nil {
		return nil, err
	}
	return rawBody(resp), nil
}

func (c *Client) DeleteVideo(ctx context.Context, guid string) error {
	started := time.Now()
	resp, err := c.request(ctx).
		SetPathParam("guid", guid).
		Delete("/library/{library}/videos/{guid}")
	err = check("delete video", resp, err)
	metrics.ObserveProvider("delete", started, err)
	return err
}

// UploadBinary streams body as the video file. size may be -1 when unknown,
// in which case the request is sent chunked. The body goes straight to the
// transport so it is never buffered.
func (c *Client) UploadBinary(ctx context.Context, guid string, body io.Reader, size int64) error {
	const op = "upload video"
	started := time.Now()
	err := c.upload(ctx, op, guid, body, size)
	metrics.ObserveProvider("upload", started, err)
	return err
}

func (c *Client) upload(ctx context.Context, op, guid string, body io.Reader, size int64) error {
	endpoint := c.pool.baseURL + "/library/" + url.PathEscape(c.creds.LibraryID) + "/videos/" + url.PathEscape(guid)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, endpoint, io.NopCloser(body))
	if err != nil {
		return &apperrors.ProviderError{Op: op, Message: err.Error(), Err: err}
	}
	req.ContentLength = size
	req.Header.Set("AccessKey", c.creds.APIKey)
	req.Header.Set("Content-Type", "application/octet-stream")
	req.Header.Set("Accept", "application/json")

	resp, err := c.pool.upload.Do(req)
	if err != nil {
		return &apperrors.ProviderError{Op: op, Message: err.Error(), Err: err}
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return checkStatus(op, resp.StatusCode, raw)
}

func decodeVideo(op string, resp *resty.Response, err error) (RemoteVideo, error) {
	if err := check(op, resp, err); err != nil {
		return RemoteVideo{}, err
	}

	var video RemoteVideo
	if err := json.Unmarshal(resp.Body(), &video); err != nil {
		return RemoteVideo{}, &apperrors.ProviderError{
			Op:         op,
			StatusCode: resp.StatusCode(),
			Message:    "invalid response body",
			Err:        err,
		}
	}
	video.Raw = rawBody(resp)
	return video, nil
}

func check(op string, resp *resty.Response, err error) error {
	if err != nil {
		return &apperrors.ProviderError{Op: op, Message: err.Error(), Err: err}
	}
	return checkStatus(op, resp.StatusCode(), resp.Body())
}

func checkStatus(op string, status int, body []byte) error {
	if status < 200 || status > 299 {
		return &apperrors.ProviderError{
			Op:         op,
			StatusCode: status,
			Message:    upstreamMessage(status, body),
		}
	}
	return nil
}

func upstreamMessage(status int, raw []byte) string {
	var body struct {
		Message      string `json:"message"`
		MessageUpper string `json:"Message"`
	}
	if json.Unmarshal(raw, &body) == nil {
		if body.Message != "" {
			return body.Message
		}
		if body.MessageUpper != "" {
			return body.MessageUpper
		}
	}
	if s := strings.TrimSpace(string(raw)); s != "" {
		return s
	}
	return fmt.Sprintf("unexpected status %d", status)
}

func rawBody(resp *resty.Response) json.RawMessage {
	b := resp.Body()
	if len(b) == 0 || !json.Valid(b) {
		return nil
	}
	out := make(json.RawMessage, len(b))
	copy(out, b)
	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}
