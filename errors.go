package s3gateway

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when the store reports a missing object or bucket
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")
	// ErrAccessDenied is returned when the store rejects the gateway's credentials
	ErrAccessDenied = errors.New("access denied")
	// ErrStorage is returned when the storage collaborator fails
	ErrStorage = errors.New("storage error")
	// ErrInvalidConfig is returned when a store cannot be built from its configuration
	ErrInvalidConfig = errors.New("invalid configuration")
	// ErrLengthRequired is returned when a proxied upload has no declared length
	ErrLengthRequired = errors.New("content length required")
)

// Validation messages. They reach API callers verbatim.
const (
	MsgClientIDMandatory        = "Client ID is Mandatory"
	MsgContainerTypeMandatory   = "Container Type is Mandatory"
	MsgInvalidContainerType     = "Invalid Container Type"
	MsgContainerIDMandatory     = "Container ID is Mandatory"
	MsgTableNameMandatory       = "Table Name is Mandatory"
	MsgRecordIDMandatory        = "Record ID is Mandatory"
	MsgAttachmentRequiresRecord = "Invalid Container Type (Mandatory Record ID and Table Name)"
	MsgFileNameMandatory        = "File Name is Mandatory"
	MsgInvalidFileName          = "Invalid File Name"
	MsgInvalidExpiration        = "Invalid Expiration"
	MsgInvalidStorageKey        = "Invalid Storage Key"
)

// ValidationError reports the first invariant an IdentifierSet violates.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Is makes every ValidationError match ErrInvalidInput.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// IsMissingFileName reports whether err is the missing file name validation error.
func IsMissingFileName(err error) bool {
	var verr *ValidationError
	return errors.As(err, &verr) && verr.Message == MsgFileNameMandatory
}

// StorageError wraps a failure of the storage collaborator.
type StorageError struct {
	Op  string
	Key string
	Err error
}

func (e *StorageError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// Is makes every StorageError match ErrStorage in addition to its cause.
func (e *StorageError) Is(target error) bool {
	return target == ErrStorage
}
