// ABOUTME: Main client for the Quill API providing typed calls for every blog operation
// ABOUTME: Wires the catalog, prober, dispatcher and fetch pool behind a small method set

package quill

import (
	"context"
	"errors"
	"io"
	"mime"
	"net/url"
	"path/filepath"
	"strconv"
	"sync/atomic"

	"github.com/richochetclementine1315/Quill/core/catalog"
	"github.com/richochetclementine1315/Quill/core/dispatch"
	"github.com/richochetclementine1315/Quill/core/domain"
	qerrors "github.com/richochetclementine1315/Quill/core/errors"
	"github.com/richochetclementine1315/Quill/core/interfaces"
	"github.com/richochetclementine1315/Quill/core/probe"
	"github.com/richochetclementine1315/Quill/core/retry"
	"github.com/richochetclementine1315/Quill/core/workers"
	"github.com/richochetclementine1315/Quill/pkg/config"
	"github.com/richochetclementine1315/Quill/pkg/featureflags"
)

// Client is the main entry point for talking to the Quill backend
type Client struct {
	dispatcher *dispatch.Dispatcher
	prober     *probe.Prober
	pool       *workers.FetchPool
	deps       interfaces.Dependencies

	closers []io.Closer
	closed  atomic.Bool
}

// NewClient creates a new client with the given options
func NewClient(options ...Option) (*Client, error) {
	opts := Options{}
	for _, opt := range options {
		if err := opt(&opts); err != nil {
			return nil, err
		}
	}

	if opts.Settings == nil {
		opts.Settings = config.Default()
	}
	settings := opts.Settings
	if opts.Logger == nil {
		opts.Logger = DefaultLogger(settings.Log)
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = DefaultHTTPClient(settings, opts.Logger)
	}
	if opts.Credentials == nil {
		creds, err := DefaultCredentials()
		if err != nil {
			return nil, err
		}
		opts.Credentials = creds
	}
	if opts.Flags == nil {
		opts.Flags = featureflags.NewStaticManager(nil)
	}
	if opts.Catalog == nil {
		opts.Catalog = catalog.Default()
	}

	c := &Client{}

	if opts.Cache == nil && opts.cacheFromSettings {
		cache, err := NewCache(settings.Cache)
		if err != nil {
			return nil, err
		}
		if closer, ok := cache.(io.Closer); ok {
			c.closers = append(c.closers, closer)
		}
		opts.Cache = cache
	}

	c.deps = interfaces.Dependencies{
		HTTPClient:  opts.HTTPClient,
		Credentials: opts.Credentials,
		Cache:       opts.Cache,
		Logger:      opts.Logger,
		Metrics:     opts.Metrics,
		Tracer:      opts.Tracer,
	}

	ctx := context.Background()
	c.prober = probe.NewProber(probe.Config{
		URL:       settings.API.HealthURL,
		Timeout:   settings.API.ProbeTimeout,
		UserAgent: settings.API.UserAgent,
	}, c.deps)

	c.dispatcher = dispatch.NewDispatcher(dispatch.Config{
		BaseURL:        settings.API.BaseURL,
		RequestTimeout: settings.API.RequestTimeout,
		Policy: retry.Policy{
			MaxRetries: settings.API.MaxRetries,
			BaseDelay:  settings.API.BackoffBase,
			MaxDelay:   settings.API.BackoffCap,
			Jitter:     settings.API.BackoffJitter,
		},
		ProbeBeforeFirstCall: opts.Flags.IsEnabled(ctx, featureflags.ProbeBeforeFirstCall),
		StaleReads:           opts.Flags.IsEnabled(ctx, featureflags.StaleReads),
		StaleTTL:             settings.Cache.TTL,
	}, opts.Catalog, c.prober, c.deps)

	pool, err := workers.NewFetchPool(workers.PoolConfig{MaxWorkers: settings.API.FetchWorkers}, opts.Logger)
	if err != nil {
		c.closeOwned()
		return nil, err
	}
	c.pool = pool

	return c, nil
}

// Close releases the fetch pool and any cache the client created
func (c *Client) Close() error {
	if c.closed.Swap(true) {
		return nil
	}
	err := c.pool.Close()
	if cerr := c.closeOwned(); err == nil {
		err = cerr
	}
	return err
}

func (c *Client) closeOwned() error {
	var errs []error
	for _, closer := range c.closers {
		errs = append(errs, closer.Close())
	}
	return errors.Join(errs...)
}

// Probe wakes the backend and reports whether it answered
func (c *Client) Probe(ctx context.Context) bool {
	return c.prober.Probe(ctx)
}

// Awake reports the memoized probe result without any I/O
func (c *Client) Awake() (awake, resolved bool) {
	return c.prober.Awake()
}

// ResetProbe forgets the probe result so the next call probes again
func (c *Client) ResetProbe() {
	c.prober.Reset()
}

// Send performs a catalog operation and returns the raw result
func (c *Client) Send(ctx context.Context, name string, params dispatch.Params) (*dispatch.Result, error) {
	if c.closed.Load() {
		return nil, c.closedError(name)
	}
	return c.dispatcher.Send(ctx, name, params)
}

func (c *Client) closedError(name string) *qerrors.DispatchError {
	return qerrors.New(qerrors.KindCanceled, name, "client is closed").WithCause(ErrClientClosed)
}

// call sends and decodes into out
func (c *Client) call(ctx context.Context, name string, params dispatch.Params, out interface{}, opts []CallOption) error {
	co := applyCallOptions(opts)
	params.IdempotencyKey = co.idempotencyKey

	result, err := c.Send(ctx, name, params)
	if err != nil {
		return err
	}
	if co.info != nil {
		*co.info = ResultInfo{Status: result.Status, Attempts: result.Attempts, Stale: result.Stale}
	}
	if out == nil {
		return nil
	}
	return result.Decode(out)
}

// Register creates an account
func (c *Client) Register(ctx context.Context, req domain.RegisterRequest, opts ...CallOption) (*domain.AuthResponse, error) {
	var resp domain.AuthResponse
	if err := c.call(ctx, catalog.Register, dispatch.Params{Body: req}, &resp, opts); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Login signs in; the session cookie is kept by the credentials provider
func (c *Client) Login(ctx context.Context, req domain.LoginRequest, opts ...CallOption) (*domain.AuthResponse, error) {
	var resp domain.AuthResponse
	if err := c.call(ctx, catalog.Login, dispatch.Params{Body: req}, &resp, opts); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListPosts returns one page of the public listing; pages start at 1
func (c *Client) ListPosts(ctx context.Context, page int, opts ...CallOption) (*domain.PostPage, error) {
	if page < 1 {
		page = 1
	}
	var resp domain.PostPage
	params := dispatch.Params{Query: url.Values{"page": {strconv.Itoa(page)}}}
	if err := c.call(ctx, catalog.ListPosts, params, &resp, opts); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetPost returns a single post
func (c *Client) GetPost(ctx context.Context, id uint, opts ...CallOption) (*domain.Post, error) {
	var resp domain.PostEnvelope
	if err := c.call(ctx, catalog.GetPost, idParams(id), &resp, opts); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

// GetPosts fetches several posts concurrently, bounded by the fetch pool.
// The result is aligned with ids; failed entries are nil and their errors joined.
func (c *Client) GetPosts(ctx context.Context, ids []uint) ([]*domain.Post, error) {
	if c.closed.Load() {
		return nil, c.closedError(catalog.GetPost)
	}
	if err := ctx.Err(); err != nil {
		return nil, qerrors.New(qerrors.KindCanceled, catalog.GetPost, err.Error()).WithCause(err)
	}

	posts := make([]*domain.Post, len(ids))
	errs, err := c.pool.Run(ctx, len(ids), func(ctx context.Context, i int) error {
		post, err := c.GetPost(ctx, ids[i])
		posts[i] = post
		return err
	})
	if err != nil {
		return nil, poolError(err)
	}
	for i := range errs {
		errs[i] = poolError(errs[i])
	}
	return posts, errors.Join(errs...)
}

// poolError types an error the fetch pool produced itself instead of a call.
// Such a task was abandoned, so it is reported as canceled.
func poolError(err error) error {
	if err == nil || qerrors.KindOf(err) != "" {
		return err
	}
	typed := qerrors.New(qerrors.KindCanceled, catalog.GetPost, err.Error())
	if errors.Is(err, workers.ErrWorkerNotRunning) {
		return typed.WithCause(ErrClientClosed)
	}
	return typed.WithCause(err)
}

// CreatePost publishes a new post. It is not retried unless an idempotency key is given.
func (c *Client) CreatePost(ctx context.Context, input domain.PostInput, opts ...CallOption) (*domain.CreatePostResponse, error) {
	if err := input.Validate(); err != nil {
		return nil, qerrors.New(qerrors.KindInvalidRequest, catalog.CreatePost, err.Error())
	}
	var resp domain.CreatePostResponse
	if err := c.call(ctx, catalog.CreatePost, dispatch.Params{Body: input}, &resp, opts); err != nil {
		return nil, err
	}
	return &resp, nil
}

// UpdatePost replaces the writable fields of a post
func (c *Client) UpdatePost(ctx context.Context, id uint, input domain.PostInput, opts ...CallOption) (*domain.Post, error) {
	if err := input.Validate(); err != nil {
		return nil, qerrors.New(qerrors.KindInvalidRequest, catalog.UpdatePost, err.Error())
	}
	params := idParams(id)
	params.Body = input
	var resp domain.Post
	if err := c.call(ctx, catalog.UpdatePost, params, &resp, opts); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DeletePost removes a post
func (c *Client) DeletePost(ctx context.Context, id uint, opts ...CallOption) (*domain.MessageResponse, error) {
	var resp domain.MessageResponse
	if err := c.call(ctx, catalog.DeletePost, idParams(id), &resp, opts); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListMyPosts returns the posts of the signed-in user
func (c *Client) ListMyPosts(ctx context.Context, opts ...CallOption) ([]domain.Post, error) {
	var resp []domain.Post
	if err := c.call(ctx, catalog.UniquePosts, dispatch.Params{}, &resp, opts); err != nil {
		return nil, err
	}
	return resp, nil
}

// UploadImage uploads an image and returns its public URL.
// It is not retried unless an idempotency key is given.
func (c *Client) UploadImage(ctx context.Context, filename string, r io.Reader, opts ...CallOption) (*domain.UploadResult, error) {
	file := &dispatch.File{
		Name:        filepath.Base(filename),
		ContentType: mime.TypeByExtension(filepath.Ext(filename)),
		Reader:      r,
	}
	var resp domain.UploadResult
	if err := c.call(ctx, catalog.UploadImage, dispatch.Params{File: file}, &resp, opts); err != nil {
		return nil, err
	}
	return &resp, nil
}

func idParams(id uint) dispatch.Params {
	return dispatch.Params{Path: map[string]string{"id": strconv.FormatUint(uint64(id), 10)}}
}
