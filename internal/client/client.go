// Package client talks to the file backend: it lists the stored files and
// uploads new ones.
package client

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// HeaderRequestID is set on every outgoing request.
const HeaderRequestID = "X-Request-ID"

// FormField is the multipart field holding the uploaded file.
const FormField = "file"

// Options configures a Client.
type Options struct {
	EndpointBase string
	FilesPath    string
	UploadPath   string
	// Timeout bounds each request. Zero means no timeout.
	Timeout time.Duration
	// LogRequests logs every request at info level instead of debug.
	LogRequests bool
	Logger      logrus.FieldLogger
	HTTPClient  *http.Client
}

// Client is safe for concurrent use.
type Client struct {
	filesURL    string
	uploadURL   string
	http        *http.Client
	log         logrus.FieldLogger
	logRequests bool
}

// New validates opts and creates a Client.
func New(opts Options) (*Client, error) {
	base, err := url.Parse(opts.EndpointBase)
	if err != nil {
		return nil, fmt.Errorf("parsing endpoint base: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("endpoint base must be an absolute URL: %q", opts.EndpointBase)
	}

	filesPath := opts.FilesPath
	if filesPath == "" {
		filesPath = "/files"
	}
	uploadPath := opts.UploadPath
	if uploadPath == "" {
		uploadPath = "/upload"
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}

	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	return &Client{
		filesURL:    base.JoinPath(filesPath).String(),
		uploadURL:   base.JoinPath(uploadPath).String(),
		http:        httpClient,
		log:         logger.WithField("component", "client"),
		logRequests: opts.LogRequests,
	}, nil
}

// FilesURL returns the absolute list endpoint.
func (c *Client) FilesURL() string { return c.filesURL }

// UploadURL returns the absolute upload endpoint.
func (c *Client) UploadURL() string { return c.uploadURL }

// ListFiles returns the file names currently stored by the backend, in the
// order the backend sent them. A body that is valid but not an array yields
// an empty list.
func (c *Client) ListFiles(ctx context.Context) ([]string, error) {
	requestID := uuid.New().String()
	log := c.log.WithFields(logrus.Fields{"request_id": requestID, "url": c.filesURL})

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.filesURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building list request: %w", err)
	}
	req.Header.Set(HeaderRequestID, requestID)
	req.Header.Set("Accept", "application/json, "+contentTypeMsgpack)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		log.WithError(err).Warn("list request failed")
		apiErr := newNetworkError("list request failed", err)
		apiErr.RequestID = requestID
		return nil, apiErr
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		apiErr := newNetworkError("reading list response", err)
		apiErr.RequestID = requestID
		return nil, apiErr
	}

	c.logRequest(log, http.MethodGet, resp.StatusCode, time.Since(start))

	if !ok(resp.StatusCode) {
		apiErr := newStatusError(CodeListFailed, resp.StatusCode, strings.TrimSpace(string(body)))
		apiErr.RequestID = requestID
		return nil, apiErr
	}

	files, err := decodeFileList(resp.Header.Get("Content-Type"), body)
	if err != nil {
		apiErr := newDecodeError(err)
		apiErr.RequestID = requestID
		return nil, apiErr
	}

	return files, nil
}

// UploadFile streams r to the backend as the multipart field "file" named name.
func (c *Client) UploadFile(ctx context.Context, name string, r io.Reader) error {
	requestID := uuid.New().String()
	log := c.log.WithFields(logrus.Fields{"request_id": requestID, "url": c.uploadURL, "file": name})

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		part, err := mw.CreateFormFile(FormField, name)
		if err != nil {
			pw.CloseWithError(err)
			return
		}
		if _, err := io.Copy(part, r); err != nil {
			pw.CloseWithError(fmt.Errorf("copying file body: %w", err))
			return
		}
		pw.CloseWithError(mw.Close())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.uploadURL, pr)
	if err != nil {
		pr.Close()
		return fmt.Errorf("building upload request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set(HeaderRequestID, requestID)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		log.WithError(err).Warn("upload request failed")
		apiErr := newNetworkError("upload request failed", err)
		apiErr.RequestID = requestID
		return apiErr
	}
	defer resp.Body.Close()

	c.logRequest(log, http.MethodPost, resp.StatusCode, time.Since(start))

	if !ok(resp.StatusCode) {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		apiErr := newStatusError(CodeUploadFailed, resp.StatusCode, strings.TrimSpace(string(body)))
		apiErr.RequestID = requestID
		return apiErr
	}

	io.Copy(io.Discard, resp.Body)
	return nil
}

func (c *Client) logRequest(log logrus.FieldLogger, method string, status int, took time.Duration) {
	entry := log.WithFields(logrus.Fields{
		"method":   method,
		"status":   status,
		"duration": took.String(),
	})
	if c.logRequests {
		entry.Info("request completed")
	} else {
		entry.Debug("request completed")
	}
}

func ok(status int) bool {
	return status >= 200 && status < 300
}
