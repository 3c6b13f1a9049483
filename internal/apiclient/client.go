// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package apiclient is a thin JSON client for the organisation's backend REST API.
// It attaches a bearer token when one is present and turns every failure into a
// typed *Error so handlers can decide between empty states and error dialogs.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	// MaxResponseLen caps how much of a response body is read.
	MaxResponseLen = 10 << 20
	// UserAgent is sent with every backend request.
	UserAgent = "ngo-portal/1.0"
	// DefaultTimeout applies when no http.Client is supplied.
	DefaultTimeout = 15 * time.Second
)

// Client issues requests against the backend API. A Client is safe for
// concurrent use; WithToken derives a copy bound to one caller's credentials.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
	token      string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithTimeout sets the request timeout of the default http.Client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient = &http.Client{Timeout: d, Transport: c.httpClient.Transport}
		}
	}
}

// New creates a client for the API rooted at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithToken returns a copy of the client that sends token as a bearer credential.
// An empty token yields a client that sends no Authorization header.
func (c *Client) WithToken(token string) *Client {
	cp := *c
	cp.token = token
	return &cp
}

// Token returns the bearer token this client sends, if any.
func (c *Client) Token() string {
	return c.token
}

// BaseURL returns the API root this client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Get performs a GET and decodes the response into out.
func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, query, "", nil, out)
}

// Post sends body as JSON and decodes the response into out.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.sendJSON(ctx, http.MethodPost, path, body, out)
}

// Put sends body as JSON and decodes the response into out.
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.sendJSON(ctx, http.MethodPut, path, body, out)
}

// Patch sends body as JSON and decodes the response into out.
func (c *Client) Patch(ctx context.Context, path string, body, out any) error {
	return c.sendJSON(ctx, http.MethodPatch, path, body, out)
}

// Delete performs a DELETE and discards the response body.
func (c *Client) Delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, "", nil, nil)
}

// FilePart is a file attached to a multipart request.
type FilePart struct {
	Field       string
	Filename    string
	ContentType string
	Data        []byte
}

// PostMultipart sends fields and an optional file as multipart/form-data.
func (c *Client) PostMultipart(ctx context.Context, path string, fields map[string]string, file *FilePart, out any) error {
	return c.sendMultipart(ctx, http.MethodPost, path, fields, file, out)
}

// PutMultipart is the PUT variant of PostMultipart.
func (c *Client) PutMultipart(ctx context.Context, path string, fields map[string]string, file *FilePart, out any) error {
	return c.sendMultipart(ctx, http.MethodPut, path, fields, file, out)
}

func (c *Client) sendMultipart(ctx context.Context, method, path string, fields map[string]string, file *FilePart, out any) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			return c.wrap(method, path, KindUnknown, 0, "", fmt.Errorf("writing field %s: %w", k, err))
		}
	}
	if file != nil {
		part, err := mw.CreatePart(filePartHeader(file))
		if err != nil {
			return c.wrap(method, path, KindUnknown, 0, "", fmt.Errorf("creating file part: %w", err))
		}
		if _, err := part.Write(file.Data); err != nil {
			return c.wrap(method, path, KindUnknown, 0, "", fmt.Errorf("writing file part: %w", err))
		}
	}
	if err := mw.Close(); err != nil {
		return c.wrap(method, path, KindUnknown, 0, "", fmt.Errorf("closing multipart writer: %w", err))
	}
	return c.do(ctx, method, path, nil, mw.FormDataContentType(), &buf, out)
}

func (c *Client) sendJSON(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return c.wrap(method, path, KindUnknown, 0, "", fmt.Errorf("encoding request body: %w", err))
		}
		reader = bytes.NewReader(data)
	}
	return c.do(ctx, method, path, nil, "application/json", reader, out)
}

// do executes one request. It never retries.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, contentType string, body io.Reader, out any) error {
	endpoint := c.baseURL + "/" + strings.TrimPrefix(path, "/")
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return c.wrap(method, path, KindUnknown, 0, "", fmt.Errorf("creating request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", UserAgent)
	if contentType != "" && body != nil {
		req.Header.Set("Content-Type", contentType)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
		}
		return c.wrap(method, path, KindTransport, 0, "", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseLen))
	if err != nil {
		return c.wrap(method, path, KindTransport, resp.StatusCode, "", fmt.Errorf("reading response: %w", err))
	}

	c.logger.Debug("api request",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.wrap(method, path, kindForStatus(resp.StatusCode), resp.StatusCode, extractMessage(data),
			fmt.Errorf("unexpected status %s", resp.Status))
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := decodeInto(data, out); err != nil {
		return c.wrap(method, path, KindDecode, resp.StatusCode, "", err)
	}
	return nil
}

func (c *Client) wrap(method, path string, kind Kind, status int, message string, err error) error {
	return &Error{
		Kind:     kind,
		Status:   status,
		Method:   method,
		Endpoint: path,
		Message:  message,
		Err:      err,
	}
}

// decodeInto unwraps an optional {"data": ...} envelope and decodes into out.
func decodeInto(data []byte, out any) error {
	payload := unwrapEnvelope(data)
	dec := json.NewDecoder(bytes.NewReader(payload))
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// unwrapEnvelope returns the value under "data" when the payload is an
// object carrying that key, and the payload itself otherwise.
func unwrapEnvelope(data []byte) []byte {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return trimmed
	}
	var env map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return trimmed
	}
	if inner, ok := env["data"]; ok && len(inner) > 0 && string(inner) != "null" {
		return inner
	}
	return trimmed
}

// ErrNotList is returned when a collection endpoint does not answer with an array.
var ErrNotList = errors.New("response is not a list")

// List is a JSON collection that accepts either a bare array or an
// envelope object carrying the array under "data".
type List[T any] []T

// UnmarshalJSON implements json.Unmarshaler.
func (l *List[T]) UnmarshalJSON(data []byte) error {
	payload := unwrapEnvelope(data)
	if len(payload) == 0 || payload[0] != '[' {
		if string(payload) == "null" {
			*l = List[T]{}
			return nil
		}
		return ErrNotList
	}
	var items []T
	if err := json.Unmarshal(payload, &items); err != nil {
		return err
	}
	if items == nil {
		items = []T{}
	}
	*l = items
	return nil
}

func filePartHeader(f *FilePart) map[string][]string {
	contentType := f.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	field := f.Field
	if field == "" {
		field = "file"
	}
	return map[string][]string{
		"Content-Disposition": {fmt.Sprintf(`form-data; name=%q; filename=%q`, field, f.Filename)},
		"Content-Type":        {contentType},
	}
}
