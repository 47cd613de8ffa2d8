package clientcli

import (
	"time"

	"github.com/sagarc03/s3gateway"
)

// Identifiers is the identifier set sent with every gateway request. The file
// name travels separately on operations that take several files.
type Identifiers = s3gateway.IdentifierSet

// PresignOptions configures a presign request.
type PresignOptions struct {
	Identifiers Identifiers
	Method      string        // GET or PUT, empty means GET
	TTL         time.Duration // zero lets the gateway pick its default
}

// PresignResult is a signed URL and the key it addresses.
type PresignResult struct {
	URL    string `json:"url"`
	Key    string `json:"file_name"`
	Method string `json:"method"`
}

// UploadOptions configures an upload operation.
type UploadOptions struct {
	Identifiers Identifiers
	LocalPath   string
	ContentType string // optional, auto-detect if empty
	Recursive   bool
}

// UploadResult represents the result of uploading a single file.
type UploadResult struct {
	LocalPath   string `json:"local_path"`
	FileName    string `json:"file_name"`
	Key         string `json:"key"`
	ContentType string `json:"content_type"`
	ETag        string `json:"etag"`
	Size        int64  `json:"size_bytes"`
	Err         error  `json:"-"` // nil on success
}

// DownloadOptions configures a download operation.
type DownloadOptions struct {
	Identifiers Identifiers
	LocalPath   string // empty = file name, "-" = stdout
}

// DownloadResult represents the result of downloading a file.
type DownloadResult struct {
	FileName    string `json:"file_name"`
	LocalPath   string `json:"local_path"`
	ETag        string `json:"etag"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size_bytes"`
}

// DeleteOptions configures a delete operation. Each file name is combined
// with Identifiers to address one object.
type DeleteOptions struct {
	Identifiers Identifiers
	FileNames   []string
}

// DeleteResult represents the result of deleting a single file.
type DeleteResult struct {
	FileName string `json:"file_name"`
	Deleted  bool   `json:"deleted"`
	Err      error  `json:"-"` // nil on success
}

// ListOptions configures a list operation.
type ListOptions struct {
	Identifiers Identifiers
	Delimiter   string
	Versions    bool
}

// ListResult is the listing returned by the gateway.
type ListResult = s3gateway.ResourceList

// Resource is one entry of a ListResult.
type Resource = s3gateway.Resource

// uploadResponse mirrors the JSON body of a proxied upload.
type uploadResponse struct {
	Key         string `json:"key"`
	ContentType string `json:"content_type"`
	ETag        string `json:"etag"`
	Size        int64  `json:"size_bytes"`
}

// signedURLResponse mirrors the JSON body of the download-url route.
type signedURLResponse struct {
	URL string `json:"url"`
}
