package s3store

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/sagarc03/s3gateway"
	"github.com/sagarc03/s3gateway/metrics"
)

// Config describes the S3 bucket the gateway fronts.
type Config struct {
	Endpoint   string `mapstructure:"endpoint"`
	Bucket     string `mapstructure:"bucket"`
	AccessKey  string `mapstructure:"access_key"`
	SecretKey  string `mapstructure:"secret_key"`
	Region     string `mapstructure:"region" validate:"required"`
	UseSSL     bool   `mapstructure:"use_ssl"`
	CACertFile string `mapstructure:"ca_cert_file"`
	PathStyle  bool   `mapstructure:"path_style"`
}

// Missing returns the names of the settings a working store needs but cfg
// leaves empty.
func (c Config) Missing() []string {
	var missing []string
	if c.Endpoint == "" {
		missing = append(missing, "endpoint")
	}
	if c.Bucket == "" {
		missing = append(missing, "bucket")
	}
	if c.AccessKey == "" {
		missing = append(missing, "access_key")
	}
	if c.SecretKey == "" {
		missing = append(missing, "secret_key")
	}
	return missing
}

// Store is an s3gateway.ObjectStore backed by one S3 bucket.
type Store struct {
	client    *s3.Client
	presigner *s3.PresignClient
	bucket    string
}

var _ s3gateway.ObjectStore = (*Store)(nil)

// New builds a Store from cfg. It does not contact the server. A malformed
// endpoint or an unreadable CA bundle yields s3gateway.ErrInvalidConfig.
func New(ctx context.Context, cfg Config) (*Store, error) {
	endpoint, err := NormalizeEndpoint(cfg.Endpoint, cfg.UseSSL)
	if err != nil {
		return nil, err
	}

	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	loadOpts := []func(*config.LoadOptions) error{
		config.WithRegion(region),
	}
	if cfg.AccessKey != "" || cfg.SecretKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}
	if cfg.CACertFile != "" {
		bundle, err := os.Open(cfg.CACertFile)
		if err != nil {
			return nil, fmt.Errorf("%w: open ca bundle: %v", s3gateway.ErrInvalidConfig, err)
		}
		defer func() { _ = bundle.Close() }()
		loadOpts = append(loadOpts, config.WithCustomCABundle(bundle))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("%w: load aws config: %v", s3gateway.ErrInvalidConfig, err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
		o.UsePathStyle = cfg.PathStyle
	})

	return &Store{
		client:    client,
		presigner: s3.NewPresignClient(client),
		bucket:    cfg.Bucket,
	}, nil
}

// NormalizeEndpoint returns endpoint as an absolute URL. A bare host[:port]
// gets a scheme chosen by useSSL. An empty endpoint stays empty.
func NormalizeEndpoint(endpoint string, useSSL bool) (string, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return "", nil
	}

	if !strings.Contains(endpoint, "://") {
		scheme := "http://"
		if useSSL {
			scheme = "https://"
		}
		endpoint = scheme + endpoint
	}

	u, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("%w: endpoint %q: %v", s3gateway.ErrInvalidConfig, endpoint, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("%w: endpoint %q: unsupported scheme %q", s3gateway.ErrInvalidConfig, endpoint, u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("%w: endpoint %q: missing host", s3gateway.ErrInvalidConfig, endpoint)
	}

	return strings.TrimSuffix(u.String(), "/"), nil
}

// Sign presigns a GET or PUT of key valid for ttl.
func (s *Store) Sign(ctx context.Context, key string, method s3gateway.Method, ttl time.Duration) (signed string, err error) {
	op := "sign_" + strings.ToLower(string(method))
	start := time.Now()
	defer func() { metrics.RecordS3Operation(op, time.Since(start), err == nil) }()

	expires := func(o *s3.PresignOptions) { o.Expires = ttl }

	switch method {
	case s3gateway.MethodGet:
		req, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(key),
		}, expires)
		if err != nil {
			return "", wrapS3Error("presign get", err)
		}
		return req.URL, nil
	case s3gateway.MethodPut:
		req, err := s.presigner.PresignPutObject(ctx, &s3.PutObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(key),
		}, expires)
		if err != nil {
			return "", wrapS3Error("presign put", err)
		}
		return req.URL, nil
	default:
		return "", fmt.Errorf("sign %q: %w", method, s3gateway.ErrInvalidInput)
	}
}

// List returns every object under prefix, following continuation tokens
// until the listing is exhausted.
func (s *Store) List(ctx context.Context, prefix string, opts s3gateway.ListOptions) (listing s3gateway.Listing, err error) {
	op := "list"
	if opts.Versions {
		op = "list_versions"
	}
	start := time.Now()
	defer func() { metrics.RecordS3Operation(op, time.Since(start), err == nil) }()

	var entries []s3gateway.ObjectEntry
	if opts.Versions {
		entries, err = s.listVersions(ctx, prefix, opts.Delimiter)
	} else {
		entries, err = s.listObjects(ctx, prefix, opts.Delimiter)
	}
	if err != nil {
		return s3gateway.Listing{}, err
	}

	return s3gateway.Listing{Prefix: prefix, Entries: entries}, nil
}

func (s *Store) listObjects(ctx context.Context, prefix, delimiter string) ([]s3gateway.ObjectEntry, error) {
	input := &s3.ListObjectsV2Input{
		Bucket:     aws.String(s.bucket),
		Prefix:     aws.String(prefix),
		FetchOwner: aws.Bool(true),
	}
	if delimiter != "" {
		input.Delimiter = aws.String(delimiter)
	}

	var entries []s3gateway.ObjectEntry
	paginator := s3.NewListObjectsV2Paginator(s.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, wrapS3Error("list objects", err)
		}

		encoding := optionalString(string(page.EncodingType))
		for _, obj := range page.Contents {
			entries = append(entries, s3gateway.ObjectEntry{
				Name:         aws.ToString(obj.Key),
				LastModified: obj.LastModified,
				ETag:         trimETag(obj.ETag),
				OwnerName:    ownerName(obj.Owner),
				Size:         obj.Size,
				StorageClass: optionalString(string(obj.StorageClass)),
				EncodingType: encoding,
			})
		}
		entries = appendPrefixes(entries, page.CommonPrefixes, encoding)
	}

	return entries, nil
}

func (s *Store) listVersions(ctx context.Context, prefix, delimiter string) ([]s3gateway.ObjectEntry, error) {
	input := &s3.ListObjectVersionsInput{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(prefix),
	}
	if delimiter != "" {
		input.Delimiter = aws.String(delimiter)
	}

	var entries []s3gateway.ObjectEntry
	paginator := s3.NewListObjectVersionsPaginator(s.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, wrapS3Error("list versions", err)
		}

		encoding := optionalString(string(page.EncodingType))
		for _, v := range page.Versions {
			entries = append(entries, s3gateway.ObjectEntry{
				Name:         aws.ToString(v.Key),
				LastModified: v.LastModified,
				ETag:         trimETag(v.ETag),
				OwnerName:    ownerName(v.Owner),
				Size:         v.Size,
				StorageClass: optionalString(string(v.StorageClass)),
				IsLatest:     aws.ToBool(v.IsLatest),
				VersionID:    v.VersionId,
				EncodingType: encoding,
			})
		}
		for _, m := range page.DeleteMarkers {
			entries = append(entries, s3gateway.ObjectEntry{
				Name:           aws.ToString(m.Key),
				LastModified:   m.LastModified,
				OwnerName:      ownerName(m.Owner),
				IsLatest:       aws.ToBool(m.IsLatest),
				VersionID:      m.VersionId,
				IsDeleteMarker: true,
				EncodingType:   encoding,
			})
		}
		entries = appendPrefixes(entries, page.CommonPrefixes, encoding)
	}

	return entries, nil
}

// Delete removes key. S3 reports success for keys that don't exist.
func (s *Store) Delete(ctx context.Context, key string) (err error) {
	start := time.Now()
	defer func() { metrics.RecordS3Operation("delete", time.Since(start), err == nil) }()

	_, err = s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return wrapS3Error("delete object", err)
	}
	return nil
}

func appendPrefixes(entries []s3gateway.ObjectEntry, prefixes []types.CommonPrefix, encoding *string) []s3gateway.ObjectEntry {
	for _, p := range prefixes {
		entries = append(entries, s3gateway.ObjectEntry{
			Name:         aws.ToString(p.Prefix),
			IsPrefix:     true,
			EncodingType: encoding,
		})
	}
	return entries
}

func ownerName(o *types.Owner) *string {
	if o == nil {
		return nil
	}
	return o.DisplayName
}

func trimETag(etag *string) *string {
	if etag == nil {
		return nil
	}
	return aws.String(strings.Trim(*etag, `"`))
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
