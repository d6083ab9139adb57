package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/Mdhelaluddin3391/quickdash-go/location"
	"github.com/Mdhelaluddin3391/quickdash-go/sessions"
)

const (
	headerAuthorization  = "Authorization"
	headerIdempotencyKey = "Idempotency-Key"
	headerAddressID      = "X-Address-ID"
	headerLocationLat    = "X-Location-Lat"
	headerLocationLng    = "X-Location-Lng"

	contentTypeJSON = "application/json"

	conflictCodeWarehouseMismatch = "WAREHOUSE_MISMATCH"
	defaultMismatchMessage        = "Your location has changed. Clear cart to proceed?"

	refreshEndpoint = "/auth/refresh/"
)

// ConflictPrompter surfaces the warehouse-mismatch decision to the user. The
// client cannot resolve the conflict unilaterally; Confirm returns whether the
// user accepted clearing the cart (which forces a reload of the active view).
type ConflictPrompter interface {
	ConfirmWarehouseMismatch(message string) bool
}

// Client is the single entry point for all backend calls. It injects auth,
// idempotency, and location headers, recovers 401s through the refresh
// protocol, and routes warehouse-mismatch 409s through the prompter.
type Client struct {
	baseURL    string
	httpClient *http.Client
	store      *sessions.Store
	locations  *location.Manager
	log        zerolog.Logger

	keyFunc          func() string
	prompter         ConflictPrompter
	currentPath      func() string
	onRedirect       func(loginURL string)
	onReload         func()
	privatePaths     []string
	loginRoute       string
	reloadLockWindow time.Duration

	refresh refreshState
}

// ClientOption defines a function type to modify the Client instance.
type ClientOption func(*Client)

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) ClientOption {
	return func(cl *Client) {
		cl.log = l
	}
}

// WithConflictPrompter sets the warehouse-mismatch prompter. Without one,
// conflicts are rejected.
func WithConflictPrompter(p ConflictPrompter) ClientOption {
	return func(cl *Client) {
		cl.prompter = p
	}
}

// WithKeyFunc sets the idempotency key generator (primarily for testing).
func WithKeyFunc(fn func() string) ClientOption {
	return func(cl *Client) {
		cl.keyFunc = fn
	}
}

// WithNavigation wires the environment hooks used on session expiry:
// currentPath reports the active view, redirect sends the user to the login
// route, reload refreshes the active view.
func WithNavigation(currentPath func() string, redirect func(loginURL string), reload func()) ClientOption {
	return func(cl *Client) {
		if currentPath != nil {
			cl.currentPath = currentPath
		}
		if redirect != nil {
			cl.onRedirect = redirect
		}
		if reload != nil {
			cl.onReload = reload
		}
	}
}

// WithPrivatePaths replaces the set of path fragments that require auth.
func WithPrivatePaths(paths []string) ClientOption {
	return func(cl *Client) {
		cl.privatePaths = paths
	}
}

// WithLoginRoute sets the route redirected to on unrecoverable auth failure.
func WithLoginRoute(route string) ClientOption {
	return func(cl *Client) {
		cl.loginRoute = route
	}
}

// WithReloadLockWindow sets the reload-storm suppression window.
func WithReloadLockWindow(d time.Duration) ClientOption {
	return func(cl *Client) {
		cl.reloadLockWindow = d
	}
}

// NewClient creates the API client with required dependencies.
func NewClient(baseURL string, store *sessions.Store, locations *location.Manager, options ...ClientOption) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("[NewClient] baseURL is required")
	}
	if store == nil {
		return nil, errors.New("[NewClient] store is required")
	}
	if locations == nil {
		return nil, errors.New("[NewClient] locations is required")
	}

	c := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{},
		store:      store,
		locations:  locations,
		log:        zerolog.Nop(),
		keyFunc:    uuid.NewString,
		currentPath: func() string {
			return "/"
		},
		onRedirect: func(string) {},
		onReload:   func() {},
		privatePaths: []string{
			"/profile", "/orders", "/checkout",
			"/addresses", "/order_detail", "/track_order",
		},
		loginRoute:       "/auth",
		reloadLockWindow: 10 * time.Second,
	}
	for _, opt := range options {
		opt(c)
	}
	return c, nil
}

// Request performs an API call with a JSON body and decodes the response into
// out (which may be nil). It is the sole network entry point; the verb
// helpers below are thin wrappers.
func (c *Client) Request(ctx context.Context, method, path string, body, out any) error {
	var payload []byte
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return errors.Wrapf(err, "[Client.Request] marshal body for %s %s", method, path)
		}
		payload = data
	}
	return c.do(ctx, method, path, payload, contentTypeJSON, out, false)
}

// Get performs a GET with optional query parameters.
func (c *Client) Get(ctx context.Context, path string, params url.Values, out any) error {
	if len(params) > 0 {
		sep := "?"
		if strings.Contains(path, "?") {
			sep = "&"
		}
		path = path + sep + params.Encode()
	}
	return c.Request(ctx, http.MethodGet, path, nil, out)
}

// Post performs a POST with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.Request(ctx, http.MethodPost, path, body, out)
}

// Put performs a PUT with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.Request(ctx, http.MethodPut, path, body, out)
}

// Patch performs a PATCH with a JSON body.
func (c *Client) Patch(ctx context.Context, path string, body, out any) error {
	return c.Request(ctx, http.MethodPatch, path, body, out)
}

// Delete performs a DELETE.
func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.Request(ctx, http.MethodDelete, path, nil, out)
}

// Upload performs a multipart file upload. The JSON content type is omitted;
// everything else (auth, idempotency, location headers, 401/409 handling)
// behaves exactly like Request.
func (c *Client) Upload(ctx context.Context, path, field, filename string, r io.Reader, out any) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile(field, filename)
	if err != nil {
		return errors.Wrap(err, "[Client.Upload] create form file")
	}
	if _, err := io.Copy(part, r); err != nil {
		return errors.Wrap(err, "[Client.Upload] copy file")
	}
	if err := w.Close(); err != nil {
		return errors.Wrap(err, "[Client.Upload] close multipart writer")
	}
	return c.do(ctx, http.MethodPost, path, buf.Bytes(), w.FormDataContentType(), out, false)
}

func (c *Client) do(ctx context.Context, method, path string, payload []byte, contentType string, out any, isRetry bool) error {
	endpoint := path
	if !strings.HasPrefix(endpoint, "/") {
		endpoint = "/" + endpoint
	}

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, body)
	if err != nil {
		return errors.Wrapf(err, "[Client.request] %s %s", method, endpoint)
	}
	c.setHeaders(req.Header, method, contentType, payload != nil)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrapf(err, "[Client.request] %s %s", method, endpoint)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrapf(err, "[Client.request] read response for %s %s", method, endpoint)
	}

	if resp.StatusCode == http.StatusConflict {
		if handled, conflictErr := c.handleConflict(data); handled {
			return conflictErr
		}
	}

	if resp.StatusCode == http.StatusUnauthorized {
		if isRetry {
			// The replay after a successful refresh still came back 401:
			// the session is unrecoverable.
			c.handleAuthFailure()
			return ErrSessionExpired
		}
		ok, leader := c.awaitRefresh(ctx)
		if ok {
			return c.do(ctx, method, path, payload, contentType, out, true)
		}
		if leader {
			c.handleAuthFailure()
		}
		return ErrSessionExpired
	}

	parsed := parseBody(data)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := newError(resp.StatusCode, parsed)
		c.log.Debug().Int("status", apiErr.Status).Str("method", method).Str("endpoint", endpoint).Msg(apiErr.Message)
		return apiErr
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return errors.Wrapf(err, "[Client.request] decode response for %s %s", method, endpoint)
	}
	return nil
}

// setHeaders injects auth, idempotency, and location headers for every
// request. At most one of the L1/L2 identities contributes, per the derived
// context invariant.
func (c *Client) setHeaders(h http.Header, method, contentType string, hasBody bool) {
	if hasBody && contentType != "" {
		h.Set("Content-Type", contentType)
	}

	if token := c.store.AccessToken(); token != "" {
		h.Set(headerAuthorization, "Bearer "+token)
	}

	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		h.Set(headerIdempotencyKey, c.keyFunc())
	}

	loc := c.locations.Context()
	if loc.Type == location.ContextL2 && loc.AddressID != "" {
		h.Set(headerAddressID, loc.AddressID)
	}
	if loc.HasCoordinates() {
		h.Set(headerLocationLat, strconv.FormatFloat(loc.Lat, 'f', -1, 64))
		h.Set(headerLocationLng, strconv.FormatFloat(loc.Lng, 'f', -1, 64))
	}
}

// handleConflict inspects a 409 body. Only WAREHOUSE_MISMATCH is a recognized
// programmatic code; anything else falls through to the generic error path.
func (c *Client) handleConflict(data []byte) (bool, error) {
	var conflict struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &conflict); err != nil || conflict.Code != conflictCodeWarehouseMismatch {
		return false, nil
	}

	message := conflict.Message
	if message == "" {
		message = defaultMismatchMessage
	}
	if c.prompter != nil && c.prompter.ConfirmWarehouseMismatch(message) {
		c.onReload()
	}
	return true, errors.Wrap(ErrCartConflict, message)
}

// handleAuthFailure tears the session down: storage cleared, then either a
// redirect to login (private views, carrying the return path) or a single
// reload guarded against storms on public views.
func (c *Client) handleAuthFailure() {
	if err := c.store.ClearAuth(); err != nil {
		c.log.Error().Err(err).Msg("session clear failed")
	}

	path := c.currentPath()
	for _, private := range c.privatePaths {
		if strings.Contains(path, private) {
			c.onRedirect(c.loginRoute + "?next=" + url.QueryEscape(path))
			return
		}
	}

	if c.store.TryAcquireReloadLock(c.reloadLockWindow) {
		c.onReload()
	}
}

// parseBody decodes a response body as JSON where possible, else returns the
// opaque text. An empty body parses to nil.
func parseBody(data []byte) any {
	if len(data) == 0 {
		return nil
	}
	var parsed any
	if err := json.Unmarshal(data, &parsed); err != nil {
		return string(data)
	}
	return parsed
}
