package s3gateway

import (
	"fmt"
	"strings"
	"time"
)

// IdentifierSet is the raw input of key derivation. It is built fresh for each
// request and never stored. A field is absent when it is blank.
type IdentifierSet struct {
	ClientID      string `json:"client_id,omitempty"`
	ContainerType string `json:"container_type,omitempty"`
	ContainerID   string `json:"container_id,omitempty"`
	TableName     string `json:"table_name,omitempty"`
	RecordID      string `json:"record_id,omitempty"`
	ColumnName    string `json:"column_name,omitempty"`
	UserID        string `json:"user_id,omitempty"`
	RoleID        string `json:"role_id,omitempty"`
	FileName      string `json:"file_name,omitempty"`
}

// ContainerType is the kind of entity that groups objects.
type ContainerType string

const (
	ContainerWindow      ContainerType = "window"
	ContainerProcess     ContainerType = "process"
	ContainerReport      ContainerType = "report"
	ContainerBrowser     ContainerType = "browser"
	ContainerForm        ContainerType = "form"
	ContainerApplication ContainerType = "application"
	ContainerResource    ContainerType = "resource"
	ContainerAttachment  ContainerType = "attachment"
)

func (c ContainerType) IsValid() bool {
	switch c {
	case ContainerWindow, ContainerProcess, ContainerReport, ContainerBrowser,
		ContainerForm, ContainerApplication, ContainerResource, ContainerAttachment:
		return true
	default:
		return false
	}
}

// ParseContainerType parses a container type case-insensitively.
func ParseContainerType(s string) (ContainerType, error) {
	ct := ContainerType(strings.ToLower(strings.TrimSpace(s)))
	if !ct.IsValid() {
		return "", &ValidationError{Field: "container_type", Message: MsgInvalidContainerType}
	}
	return ct, nil
}

// Method is the HTTP method a presigned URL is valid for.
type Method string

const (
	MethodGet Method = "GET"
	MethodPut Method = "PUT"
)

// ParseMethod parses a presign method. An empty string means GET.
func ParseMethod(s string) (Method, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "GET":
		return MethodGet, nil
	case "PUT":
		return MethodPut, nil
	default:
		return "", fmt.Errorf("parse method %q: %w", s, ErrInvalidInput)
	}
}

// ObjectEntry is one item returned by ObjectStore.List. Optional fields are nil
// when the store did not report them.
type ObjectEntry struct {
	Name           string
	LastModified   *time.Time
	ETag           *string
	OwnerName      *string
	Size           *int64
	StorageClass   *string
	IsLatest       bool
	VersionID      *string
	UserMetadata   map[string]string
	IsPrefix       bool
	IsDeleteMarker bool
	EncodingType   *string
}

// ListOptions tunes a listing.
type ListOptions struct {
	// Delimiter groups keys below the prefix; "/" lists a single level.
	Delimiter string
	// Versions lists object versions and delete markers instead of objects.
	Versions bool
}

// Listing is the raw result of ObjectStore.List.
type Listing struct {
	Prefix  string
	Entries []ObjectEntry
}

// Resource is the response record for one listed object.
type Resource struct {
	Name           string            `json:"name"`
	LastModified   *string           `json:"last_modified"`
	ETag           *string           `json:"etag"`
	OwnerName      *string           `json:"owner_name"`
	Size           *int64            `json:"size"`
	StorageClass   *string           `json:"storage_class"`
	IsLatest       bool              `json:"is_latest"`
	VersionID      *string           `json:"version_id"`
	UserMetadata   map[string]string `json:"user_metadata"`
	IsPrefix       bool              `json:"is_prefix"`
	IsDeleteMarker bool              `json:"is_delete_marker"`
	EncodingType   *string           `json:"encoding_type"`
	ContentType    *string           `json:"content_type"`
}

// ResourceList is the response of a prefix listing.
type ResourceList struct {
	ParentFolder *string    `json:"parent_folder"`
	Resources    []Resource `json:"resources"`
}

// PresignedObject is the response of a sign request.
type PresignedObject struct {
	URL      string `json:"url"`
	FileName string `json:"file_name"`
}

// UploadResult describes an object written through the proxy.
type UploadResult struct {
	Key         string `json:"key"`
	ContentType string `json:"content_type,omitempty"`
	ETag        string `json:"etag,omitempty"`
	Size        int64  `json:"size_bytes"`
}

// LastModifiedLayout is the timestamp layout of Resource.LastModified.
const LastModifiedLayout = "2006-01-02 15:04:05"
