package s3gateway

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"path"
	"strings"
	"time"
)

// ObjectStore is the storage collaborator the gateway delegates to.
// Implementations are shared by concurrent requests and must be safe for
// concurrent use.
//
// All methods accept a context for cancellation and timeout control. When the
// inbound request goes away the in-flight call is abandoned.
type ObjectStore interface {
	// Sign returns a presigned URL for key.
	//
	// Parameters:
	//   - ctx: Context for cancellation and timeout
	//   - key: The derived object key
	//   - method: MethodGet or MethodPut
	//   - ttl: How long the URL stays valid
	//
	// Returns:
	//   - string: The presigned URL
	//   - error: ErrAccessDenied, ErrInvalidInput or other storage errors
	Sign(ctx context.Context, key string, method Method, ttl time.Duration) (string, error)

	// List enumerates objects whose key starts with prefix.
	//
	// Parameters:
	//   - ctx: Context for cancellation and timeout
	//   - prefix: The derived key prefix
	//   - opts: Delimiter and version listing switches
	//
	// Returns:
	//   - Listing: Every entry under prefix, all pages fetched
	//   - error: ErrNotFound if the bucket doesn't exist, or other storage errors
	List(ctx context.Context, prefix string, opts ListOptions) (Listing, error)

	// Delete removes the object stored at key.
	//
	// Parameters:
	//   - ctx: Context for cancellation and timeout
	//   - key: The derived object key
	//
	// Returns:
	//   - error: ErrNotFound, ErrAccessDenied or other storage errors
	Delete(ctx context.Context, key string) error
}

const (
	// DefaultTTL is the lifetime of a presigned URL when the caller gives none.
	DefaultTTL = 7 * 24 * time.Hour
	// MaxTTL is the longest lifetime S3 accepts for a presigned URL.
	MaxTTL = 7 * 24 * time.Hour
)

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithKeyPolicy sets the key derivation policy.
func WithKeyPolicy(p KeyPolicy) ServiceOption {
	return func(s *Service) {
		s.policy = p
	}
}

// WithDefaultTTL sets the presigned URL lifetime used when a request gives none.
func WithDefaultTTL(ttl time.Duration) ServiceOption {
	return func(s *Service) {
		s.defaultTTL = ttl
	}
}

// WithMaxTTL caps the presigned URL lifetime a request may ask for.
func WithMaxTTL(ttl time.Duration) ServiceOption {
	return func(s *Service) {
		s.maxTTL = ttl
	}
}

// WithHTTPClient sets the client used to relay proxied uploads.
func WithHTTPClient(c *http.Client) ServiceOption {
	return func(s *Service) {
		s.httpClient = c
	}
}

// WithLogger sets the logger for storage failures.
func WithLogger(l *slog.Logger) ServiceOption {
	return func(s *Service) {
		s.logger = l
	}
}

// WithRejectHook registers a callback invoked with every validation error.
func WithRejectHook(fn func(*ValidationError)) ServiceOption {
	return func(s *Service) {
		s.onReject = fn
	}
}

// Service is the gateway mediator. Every operation derives exactly one key or
// prefix and makes at most one call into the ObjectStore. It holds no mutable
// state and is safe for concurrent use.
type Service struct {
	store      ObjectStore
	policy     KeyPolicy
	defaultTTL time.Duration
	maxTTL     time.Duration
	httpClient *http.Client
	logger     *slog.Logger
	onReject   func(*ValidationError)
}

// NewService creates a Service over store.
func NewService(store ObjectStore, opts ...ServiceOption) (*Service, error) {
	if store == nil {
		return nil, errors.New("new service: store cannot be nil")
	}

	s := &Service{
		store:      store,
		policy:     DefaultKeyPolicy,
		defaultTTL: DefaultTTL,
		maxTTL:     MaxTTL,
		httpClient: &http.Client{Timeout: 5 * time.Minute},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.maxTTL <= 0 || s.maxTTL > MaxTTL {
		return nil, fmt.Errorf("new service: max ttl must be within (0, %s]", MaxTTL)
	}
	if s.defaultTTL <= 0 || s.defaultTTL > s.maxTTL {
		return nil, fmt.Errorf("new service: default ttl must be within (0, %s]", s.maxTTL)
	}

	return s, nil
}

// Policy returns the key policy the service derives keys with.
func (s *Service) Policy() KeyPolicy {
	return s.policy
}

// Presign derives the object key for ids and asks the store to sign it. A zero
// ttl selects the default lifetime.
func (s *Service) Presign(ctx context.Context, ids IdentifierSet, method Method, ttl time.Duration) (PresignedObject, error) {
	key, err := s.objectKey(ids)
	if err != nil {
		return PresignedObject{}, err
	}

	ttl, err = s.resolveTTL(ttl)
	if err != nil {
		return PresignedObject{}, err
	}

	url, err := s.store.Sign(ctx, key, method, ttl)
	if err != nil {
		return PresignedObject{}, s.storageFailure("sign", key, err)
	}

	return PresignedObject{URL: url, FileName: key}, nil
}

// ProxyUpload signs a PUT for the key derived from ids and relays content to it.
// The signed URL never leaves the gateway. S3 refuses chunked uploads, so size
// must be known; a negative size yields ErrLengthRequired.
func (s *Service) ProxyUpload(ctx context.Context, ids IdentifierSet, content io.Reader, size int64, contentType string) (UploadResult, error) {
	key, err := s.objectKey(ids)
	if err != nil {
		return UploadResult{}, err
	}
	if size < 0 {
		return UploadResult{}, ErrLengthRequired
	}

	url, err := s.store.Sign(ctx, key, MethodPut, s.defaultTTL)
	if err != nil {
		return UploadResult{}, s.storageFailure("sign", key, err)
	}

	if content == nil || size == 0 {
		content = http.NoBody
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, content)
	if err != nil {
		return UploadResult{}, s.storageFailure("upload", key, err)
	}
	req.ContentLength = size
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return UploadResult{}, s.storageFailure("upload", key, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return UploadResult{}, s.storageFailure("upload", key, fmt.Errorf("store responded %d: %s", resp.StatusCode, strings.TrimSpace(string(body))))
	}

	return UploadResult{
		Key:         key,
		ContentType: contentType,
		ETag:        strings.Trim(resp.Header.Get("ETag"), `"`),
		Size:        size,
	}, nil
}

// List derives the scope prefix for ids and lists the objects below it. The
// prefix sent to the store ends in "/" so that record 4 never matches keys
// under record 42.
func (s *Service) List(ctx context.Context, ids IdentifierSet, opts ListOptions) (ResourceList, error) {
	scope, err := s.policy.ScopePrefix(ids, true)
	if err != nil {
		return ResourceList{}, s.reject(err)
	}
	prefix := scope + "/"

	listing, err := s.store.List(ctx, prefix, opts)
	if err != nil {
		return ResourceList{}, s.storageFailure("list", prefix, err)
	}
	listing.Prefix = prefix

	return NewResourceList(listing), nil
}

// Delete derives the object key for ids and removes the object.
func (s *Service) Delete(ctx context.Context, ids IdentifierSet) error {
	key, err := s.objectKey(ids)
	if err != nil {
		return err
	}

	if err := s.store.Delete(ctx, key); err != nil {
		return s.storageFailure("delete", key, err)
	}

	return nil
}

// NewResourceList maps a raw listing to its response form.
func NewResourceList(listing Listing) ResourceList {
	resources := make([]Resource, 0, len(listing.Entries))
	for _, e := range listing.Entries {
		r := Resource{
			Name:           e.Name,
			ETag:           e.ETag,
			OwnerName:      e.OwnerName,
			Size:           e.Size,
			StorageClass:   e.StorageClass,
			IsLatest:       e.IsLatest,
			VersionID:      e.VersionID,
			UserMetadata:   e.UserMetadata,
			IsPrefix:       e.IsPrefix,
			IsDeleteMarker: e.IsDeleteMarker,
			EncodingType:   e.EncodingType,
		}
		if e.LastModified != nil {
			ts := e.LastModified.UTC().Format(LastModifiedLayout)
			r.LastModified = &ts
		}
		contentType := DetectContentType(e.Name)
		r.ContentType = &contentType
		resources = append(resources, r)
	}

	prefix := listing.Prefix
	return ResourceList{ParentFolder: &prefix, Resources: resources}
}

// DetectContentType guesses a MIME type from the extension of name.
func DetectContentType(name string) string {
	ext := path.Ext(name)
	if ext == "" {
		return "application/octet-stream"
	}

	mimeType := mime.TypeByExtension(ext)
	if mimeType == "" {
		return "application/octet-stream"
	}

	return mimeType
}

func (s *Service) objectKey(ids IdentifierSet) (string, error) {
	key, err := s.policy.ObjectKey(ids)
	if err != nil {
		return "", s.reject(err)
	}
	if !IsValidKey(key) {
		return "", s.reject(&ValidationError{Field: "file_name", Message: MsgInvalidStorageKey})
	}
	return key, nil
}

func (s *Service) resolveTTL(ttl time.Duration) (time.Duration, error) {
	if ttl == 0 {
		return s.defaultTTL, nil
	}
	if ttl < time.Second || ttl > s.maxTTL {
		return 0, s.reject(&ValidationError{Field: "seconds", Message: MsgInvalidExpiration})
	}
	return ttl, nil
}

func (s *Service) reject(err error) error {
	var verr *ValidationError
	if s.onReject != nil && errors.As(err, &verr) {
		s.onReject(verr)
	}
	return err
}

func (s *Service) storageFailure(op, key string, err error) error {
	s.logger.Warn("storage call failed", "op", op, "key", key, "err", err)
	return &StorageError{Op: op, Key: key, Err: err}
}
