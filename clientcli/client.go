package clientcli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/sagarc03/s3gateway"
)

// DefaultTimeout is the default HTTP client timeout.
const DefaultTimeout = 5 * time.Minute

// Client performs operations against an S3 gateway.
type Client struct {
	config     *Config
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// New creates a new Client with the given config and options.
func New(cfg *Config, opts ...Option) (*Client, error) {
	if cfg == nil {
		return nil, ErrConfigRequired
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cfg = cfg.WithDefaults()
	cfg.Endpoint = strings.TrimSuffix(cfg.Endpoint, "/")

	c := &Client{
		config:     cfg,
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Presign asks the gateway for a signed URL.
func (c *Client) Presign(ctx context.Context, opts PresignOptions) (*PresignResult, error) {
	method := strings.ToUpper(strings.TrimSpace(opts.Method))
	if method == "" {
		method = http.MethodGet
	}
	if method != http.MethodGet && method != http.MethodPut {
		return nil, fmt.Errorf("presign: %w", ErrInvalidMethod)
	}

	query, err := c.query(opts.Identifiers)
	if err != nil {
		return nil, fmt.Errorf("presign: %w", err)
	}
	query.Set("method", method)
	if err := setTTL(query, opts.TTL); err != nil {
		return nil, fmt.Errorf("presign: %w", err)
	}

	var obj s3gateway.PresignedObject
	if err := c.doJSON(ctx, http.MethodGet, "/api/presignedUrl", query, &obj); err != nil {
		return nil, err
	}
	if obj.URL == "" {
		return nil, ErrMissingURL
	}

	return &PresignResult{URL: obj.URL, Key: obj.FileName, Method: method}, nil
}

// Upload sends file(s) through the gateway proxy. For recursive uploads each
// file's path relative to LocalPath becomes its file name.
func (c *Client) Upload(ctx context.Context, opts UploadOptions) ([]UploadResult, error) {
	if opts.LocalPath == "" {
		return nil, fmt.Errorf("upload: %w", ErrEmptyPath)
	}
	if opts.Recursive {
		return c.uploadRecursive(ctx, opts)
	}

	ids := opts.Identifiers
	if strings.TrimSpace(ids.FileName) == "" {
		ids.FileName = filepath.Base(opts.LocalPath)
	}
	result, err := c.uploadSingle(ctx, opts.LocalPath, ids, opts.ContentType)
	if err != nil {
		return nil, err
	}
	return []UploadResult{result}, nil
}

func (c *Client) uploadRecursive(ctx context.Context, opts UploadOptions) ([]UploadResult, error) {
	info, err := os.Stat(opts.LocalPath)
	if err != nil {
		return nil, fmt.Errorf("stat local path: %w", err)
	}

	if !info.IsDir() {
		opts.Recursive = false
		return c.Upload(ctx, opts)
	}

	var results []UploadResult
	baseDir := opts.LocalPath

	walkErr := filepath.WalkDir(baseDir, func(path string, d fs.DirEntry, fileErr error) error {
		if fileErr != nil {
			return fileErr
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() {
			return nil
		}

		relPath, relErr := filepath.Rel(baseDir, path)
		if relErr != nil {
			results = append(results, UploadResult{
				LocalPath: path,
				Err:       fmt.Errorf("calculate relative path: %w", relErr),
			})
			return nil
		}

		ids := opts.Identifiers
		ids.FileName = NormalizeLocalToRemotePath(relPath)

		result, uploadErr := c.uploadSingle(ctx, path, ids, "")
		if uploadErr != nil {
			result = UploadResult{
				LocalPath: path,
				FileName:  ids.FileName,
				Err:       uploadErr,
			}
		}
		results = append(results, result)
		return nil
	})

	if walkErr != nil {
		return results, fmt.Errorf("walk directory: %w", walkErr)
	}

	return results, nil
}

func (c *Client) uploadSingle(ctx context.Context, localPath string, ids Identifiers, contentType string) (UploadResult, error) {
	file, err := os.Open(localPath) //#nosec G304 -- localPath is user-provided input
	if err != nil {
		return UploadResult{}, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	info, err := file.Stat()
	if err != nil {
		return UploadResult{}, fmt.Errorf("stat file: %w", err)
	}

	if contentType == "" {
		contentType = s3gateway.DetectContentType(localPath)
	}

	query, err := c.query(ids)
	if err != nil {
		return UploadResult{}, err
	}

	// Streams the file, no memory copy. The gateway needs a Content-Length, and
	// net/http only sends one for an empty body when the body is NoBody.
	body := io.Reader(file)
	if info.Size() == 0 {
		body = http.NoBody
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.endpoint("/resources", query), body)
	if err != nil {
		return UploadResult{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.ContentLength = info.Size()

	var resp uploadResponse
	if err := c.do(req, &resp); err != nil {
		return UploadResult{}, err
	}

	return UploadResult{
		LocalPath:   localPath,
		FileName:    ids.FileName,
		Key:         resp.Key,
		ContentType: resp.ContentType,
		ETag:        resp.ETag,
		Size:        resp.Size,
	}, nil
}

// Download fetches a signed URL from the gateway and reads the object from
// storage directly. If opts.LocalPath is "-", the content is returned via the
// io.ReadCloser and must be closed by the caller. Otherwise, the content is
// written to the file and the io.ReadCloser is nil.
func (c *Client) Download(ctx context.Context, opts DownloadOptions) (*DownloadResult, io.ReadCloser, error) {
	query, err := c.query(opts.Identifiers)
	if err != nil {
		return nil, nil, fmt.Errorf("download: %w", err)
	}

	var signed signedURLResponse
	if err := c.doJSON(ctx, http.MethodGet, "/download-url", query, &signed); err != nil {
		return nil, nil, err
	}
	if signed.URL == "" {
		return nil, nil, ErrMissingURL
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, signed.URL, http.NoBody)
	if err != nil {
		return nil, nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("do request: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		return nil, nil, parseServerError(resp.StatusCode, body)
	}

	fileName := opts.Identifiers.FileName
	result := &DownloadResult{
		FileName:    fileName,
		ETag:        strings.Trim(resp.Header.Get("ETag"), `"`),
		ContentType: resp.Header.Get("Content-Type"),
		Size:        resp.ContentLength,
	}

	if opts.LocalPath == "-" {
		result.LocalPath = "-"
		return result, resp.Body, nil
	}

	localPath := opts.LocalPath
	if localPath == "" {
		localPath = filepath.Base(fileName)
	}
	result.LocalPath = localPath

	dir := filepath.Dir(localPath)
	if dir != "" && dir != "." {
		if mkdirErr := os.MkdirAll(dir, 0o750); mkdirErr != nil {
			_ = resp.Body.Close()
			return nil, nil, fmt.Errorf("create directory: %w", mkdirErr)
		}
	}

	file, createErr := os.Create(localPath) //#nosec G304 -- localPath is user-provided input
	if createErr != nil {
		_ = resp.Body.Close()
		return nil, nil, fmt.Errorf("create file: %w", createErr)
	}

	written, copyErr := io.Copy(file, resp.Body)
	_ = resp.Body.Close()
	if copyErr != nil {
		_ = file.Close()
		return nil, nil, fmt.Errorf("write file: %w", copyErr)
	}

	if closeErr := file.Close(); closeErr != nil {
		return nil, nil, fmt.Errorf("close file: %w", closeErr)
	}

	result.Size = written
	return result, nil, nil
}

// Delete removes one object per file name. Continues on error, collecting
// results for all names.
func (c *Client) Delete(ctx context.Context, opts DeleteOptions) ([]DeleteResult, error) {
	if len(opts.FileNames) == 0 {
		return nil, ErrNoFiles
	}

	results := make([]DeleteResult, 0, len(opts.FileNames))

	for _, name := range opts.FileNames {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		ids := opts.Identifiers
		ids.FileName = name
		results = append(results, c.deleteSingle(ctx, ids))
	}

	return results, nil
}

func (c *Client) deleteSingle(ctx context.Context, ids Identifiers) DeleteResult {
	query, err := c.query(ids)
	if err != nil {
		return DeleteResult{FileName: ids.FileName, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.endpoint("/resources", query), http.NoBody)
	if err != nil {
		return DeleteResult{FileName: ids.FileName, Err: fmt.Errorf("create request: %w", err)}
	}

	if err := c.do(req, nil); err != nil {
		return DeleteResult{FileName: ids.FileName, Err: err}
	}

	return DeleteResult{FileName: ids.FileName, Deleted: true}
}

// HasDeleteErrors returns true if any delete operation failed.
func HasDeleteErrors(results []DeleteResult) bool {
	for _, r := range results {
		if r.Err != nil {
			return true
		}
	}
	return false
}

// HasUploadErrors returns true if any upload failed.
func HasUploadErrors(results []UploadResult) bool {
	for _, r := range results {
		if r.Err != nil {
			return true
		}
	}
	return false
}

// List lists the objects in the scope the identifiers resolve to.
func (c *Client) List(ctx context.Context, opts ListOptions) (*ListResult, error) {
	query, err := c.query(opts.Identifiers)
	if err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}
	if opts.Delimiter != "" {
		query.Set("delimiter", opts.Delimiter)
	}
	if opts.Versions {
		query.Set("versions", "true")
	}

	var result ListResult
	if err := c.doJSON(ctx, http.MethodGet, "/resources", query, &result); err != nil {
		return nil, err
	}

	return &result, nil
}

// TotalSize sums the reported sizes of a listing in bytes.
func TotalSize(r *ListResult) int64 {
	var total int64
	for _, res := range r.Resources {
		if res.Size != nil {
			total += *res.Size
		}
	}
	return total
}

// query encodes ids, with the config filling in blank tenant identifiers.
func (c *Client) query(ids Identifiers) (url.Values, error) {
	ids = c.config.Apply(ids)
	if strings.TrimSpace(ids.ClientID) == "" {
		return nil, ErrClientIDRequired
	}

	q := url.Values{}
	for name, value := range map[string]string{
		"client_id":      ids.ClientID,
		"container_type": ids.ContainerType,
		"container_id":   ids.ContainerID,
		"table_name":     ids.TableName,
		"record_id":      ids.RecordID,
		"column_name":    ids.ColumnName,
		"user_id":        ids.UserID,
		"role_id":        ids.RoleID,
		"file_name":      ids.FileName,
	} {
		if strings.TrimSpace(value) != "" {
			q.Set(name, value)
		}
	}
	return q, nil
}

func (c *Client) endpoint(path string, query url.Values) string {
	if len(query) == 0 {
		return c.config.Endpoint + path
	}
	return c.config.Endpoint + path + "?" + query.Encode()
}

func (c *Client) doJSON(ctx context.Context, method, path string, query url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path, query), http.NoBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	return c.do(req, out)
}

// do executes req and decodes a JSON body into out when out is non-nil.
func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return parseServerError(resp.StatusCode, body)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("parse response: %w: %w", ErrUnexpectedBody, err)
	}
	return nil
}

func setTTL(q url.Values, ttl time.Duration) error {
	if ttl == 0 {
		return nil
	}
	if ttl < time.Second || ttl > s3gateway.MaxTTL || ttl%time.Second != 0 {
		return ErrInvalidTTL
	}
	q.Set("seconds", strconv.FormatInt(int64(ttl/time.Second), 10))
	return nil
}

// NormalizeLocalToRemotePath converts a local path to a clean remote file name.
// It handles:
//   - Leading "./" is stripped (./foo/bar.txt -> foo/bar.txt)
//   - Leading "/" is stripped (/abs/path/file.txt -> abs/path/file.txt)
//   - Parent traversal is dropped (../sibling/file.txt -> sibling/file.txt)
//   - Backslashes are converted to forward slashes (Windows)
func NormalizeLocalToRemotePath(localPath string) string {
	path := filepath.ToSlash(filepath.Clean(filepath.ToSlash(localPath)))

	path = strings.TrimPrefix(path, "./")
	path = strings.TrimPrefix(path, "/")

	for strings.HasPrefix(path, "../") {
		path = strings.TrimPrefix(path, "../")
	}

	if path == ".." || path == "." {
		return ""
	}

	return path
}

// parseServerError builds an APIError from a response, reading the gateway's
// {"error","message"} envelope when present.
func parseServerError(statusCode int, body []byte) error {
	apiErr := &APIError{StatusCode: statusCode, Body: strings.TrimSpace(string(body))}

	var envelope struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &envelope) == nil {
		apiErr.Code = envelope.Error
		apiErr.Message = envelope.Message
	}

	return apiErr
}

// APIError represents an error response from the gateway or from storage.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	Body       string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return "server error: " + strconv.Itoa(e.StatusCode) + " " + e.Code + " - " + e.Message
	}
	return "server error: " + strconv.Itoa(e.StatusCode) + " - " + e.Body
}

// Is reports whether target is an *APIError with the same StatusCode.
func (e *APIError) Is(target error) bool {
	var t *APIError
	if !errors.As(target, &t) {
		return false
	}
	return t.StatusCode == e.StatusCode
}

// IsNotFound returns true if the error is a 404.
func (e *APIError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// Sentinel errors for common API error conditions.
// Use errors.Is() to check for these conditions.
var (
	// ErrBadRequest is returned when the gateway rejects the identifiers (400).
	ErrBadRequest = &APIError{StatusCode: http.StatusBadRequest}

	// ErrNotFound is returned when the requested object does not exist (404).
	ErrNotFound = &APIError{StatusCode: http.StatusNotFound}

	// ErrForbidden is returned when storage denies the request (403).
	ErrForbidden = &APIError{StatusCode: http.StatusForbidden}

	// ErrTooLarge is returned when an upload exceeds the gateway limit (413).
	ErrTooLarge = &APIError{StatusCode: http.StatusRequestEntityTooLarge}
)
