// Package api is the typed client for the back-office REST backend.
//
// Every call returns (T, error); failures are always *Error. GET responses go through an
// optional query cache and every mutation invalidates the cached reads of its resource.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Veraticus/kantoor/internal/cache"
	"github.com/Veraticus/kantoor/internal/common"
	"github.com/Veraticus/kantoor/internal/service"
)

// DefaultMaxUploadBytes bounds uploads when no limit is configured.
const DefaultMaxUploadBytes = 20 << 20

// Config holds the connection settings for the backend.
type Config struct {
	BaseURL        string
	Token          string
	Timeout        time.Duration
	CacheTTL       time.Duration
	MaxUploadBytes int64
}

// Client talks to the backend.
type Client struct {
	httpClient *http.Client
	cache      service.QueryCache
	logger     *slog.Logger
	baseURL    *url.URL
	token      string
	cacheTTL   time.Duration
	maxUpload  int64
}

// Option customizes a Client.
type Option func(*Client)

// WithCache routes GET requests through store.
func WithCache(store service.QueryCache) Option {
	return func(c *Client) { c.cache = store }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) { c.httpClient = httpClient }
}

// WithLogger sets the logger used for request tracing.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// New creates a backend client.
func New(cfg Config, opts ...Option) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("%w: api.base_url is required", common.ErrMissingConfig)
	}

	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("%w: invalid api.base_url %q", common.ErrInvalidConfig, cfg.BaseURL)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	maxUpload := cfg.MaxUploadBytes
	if maxUpload <= 0 {
		maxUpload = DefaultMaxUploadBytes
	}

	c := &Client{
		baseURL:   base,
		token:     cfg.Token,
		cacheTTL:  cfg.CacheTTL,
		maxUpload: maxUpload,
		logger:    common.Component("api"),
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// MaxUploadBytes returns the configured upload limit.
func (c *Client) MaxUploadBytes() int64 {
	return c.maxUpload
}

// Blob is a downloaded file.
type Blob struct {
	ContentType string
	FileName    string
	Data        []byte
}

// filePart is a file attached to a multipart request.
type filePart struct {
	field    string
	fileName string
	content  []byte
}

// endpoint joins path (which may carry its own query string) onto the base URL.
func (c *Client) endpoint(path string, query url.Values) string {
	u := *c.baseURL
	path, rawQuery, _ := strings.Cut(path, "?")
	u.Path = c.baseURL.Path + path

	merged, _ := url.ParseQuery(rawQuery)
	for k, v := range query {
		merged[k] = append(merged[k], v...)
	}
	u.RawQuery = merged.Encode()
	return u.String()
}

// do performs one request and returns the body of a 2xx response.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body io.Reader, contentType string) (*http.Response, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path, query), body)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Token "+c.token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, nil, ctxErr
		}
		c.logger.Debug("request failed", "method", method, "path", path, "request_id", requestID, "error", err)
		return nil, nil, networkError(err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, networkError(err)
	}

	c.logger.Debug("request",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration", time.Since(start),
		"request_id", requestID)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp, nil, decodeError(resp.StatusCode, data)
	}

	return resp, data, nil
}

type freshKey struct{}

// Fresh marks ctx so reads skip the cached copy. The response still refreshes the cache.
func Fresh(ctx context.Context) context.Context {
	return context.WithValue(ctx, freshKey{}, true)
}

func isFresh(ctx context.Context) bool {
	fresh, _ := ctx.Value(freshKey{}).(bool)
	return fresh
}

// get decodes a JSON GET response into out, consulting the cache first.
func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	key := cache.Key(path, query)

	if c.cache != nil && !isFresh(ctx) {
		cached, found, err := c.cache.Get(ctx, key)
		if err != nil {
			c.logger.Warn("cache read failed", "key", key, "error", err)
		} else if found {
			if err := json.Unmarshal(cached, out); err == nil {
				return nil
			}
		}
	}

	_, data, err := c.do(ctx, http.MethodGet, path, query, nil, "")
	if err != nil {
		return err
	}

	if err := decode(data, out); err != nil {
		return err
	}

	if c.cache != nil {
		if err := c.cache.Set(ctx, key, data, c.cacheTTL); err != nil {
			c.logger.Warn("cache write failed", "key", key, "error", err)
		}
	}
	return nil
}

// send issues a JSON mutation and invalidates the cached reads of the resource.
func (c *Client) send(ctx context.Context, method, path string, in, out any) error {
	if err := c.sendJSON(ctx, method, path, in, out); err != nil {
		return err
	}
	c.invalidate(ctx, path)
	return nil
}

// post issues a JSON POST that leaves server state unchanged, so nothing is invalidated.
func (c *Client) post(ctx context.Context, path string, in, out any) error {
	return c.sendJSON(ctx, http.MethodPost, path, in, out)
}

func (c *Client) sendJSON(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	contentType := ""
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(payload)
		contentType = "application/json"
	}

	_, data, err := c.do(ctx, method, path, nil, body, contentType)
	if err != nil {
		return err
	}
	return decode(data, out)
}

// upload posts a multipart form with one file and invalidates the resource.
func (c *Client) upload(ctx context.Context, path string, fields map[string]string, file filePart, out any) error {
	if int64(len(file.content)) > c.maxUpload {
		return fmt.Errorf("%w: %s is %d bytes, limit is %d", common.ErrFileTooLarge, file.fileName, len(file.content), c.maxUpload)
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			return fmt.Errorf("failed to write field %s: %w", name, err)
		}
	}

	part, err := writer.CreateFormFile(file.field, file.fileName)
	if err != nil {
		return fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := part.Write(file.content); err != nil {
		return fmt.Errorf("failed to write form file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to close multipart writer: %w", err)
	}

	_, data, err := c.do(ctx, http.MethodPost, path, nil, &buf, writer.FormDataContentType())
	if err != nil {
		return err
	}

	c.invalidate(ctx, path)
	return decode(data, out)
}

// download fetches a binary response. Downloads are never cached.
func (c *Client) download(ctx context.Context, path string, query url.Values) (*Blob, error) {
	resp, data, err := c.do(ctx, http.MethodGet, path, query, nil, "")
	if err != nil {
		return nil, err
	}

	blob := &Blob{
		Data:        data,
		ContentType: resp.Header.Get("Content-Type"),
	}
	if disposition := resp.Header.Get("Content-Disposition"); disposition != "" {
		if _, params, err := mime.ParseMediaType(disposition); err == nil {
			blob.FileName = params["filename"]
		}
	}
	return blob, nil
}

func (c *Client) invalidate(ctx context.Context, path string) {
	if c.cache == nil {
		return
	}
	for _, prefix := range cache.Prefixes(path) {
		if err := c.cache.InvalidatePrefix(ctx, prefix); err != nil {
			c.logger.Warn("cache invalidation failed", "prefix", prefix, "error", err)
		}
	}
}

func decode(data []byte, out any) error {
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &Error{Code: "decode", Message: GenericMessage, cause: fmt.Errorf("failed to decode response: %w", err)}
	}
	return nil
}

// pageQuery adds the page parameter when a specific page is requested.
func pageQuery(query url.Values, page int) url.Values {
	if query == nil {
		query = url.Values{}
	}
	if page > 1 {
		query.Set("page", strconv.Itoa(page))
	}
	return query
}

func setIfNotEmpty(query url.Values, key, value string) {
	if value != "" {
		query.Set(key, value)
	}
}

func setIfPositive(query url.Values, key string, value int) {
	if value > 0 {
		query.Set(key, strconv.Itoa(value))
	}
}

// IsNetwork reports whether err is a transport failure.
func IsNetwork(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Code == CodeNetwork
}
