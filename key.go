package s3gateway

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	pathSegmentRegex = regexp.MustCompile(`[^A-Za-z0-9-]`)
	fileNameRegex    = regexp.MustCompile(`[^A-Za-z0-9._-]`)
)

// Scope segments of a derived key.
const (
	scopeUser   = "user"
	scopeRole   = "role"
	scopeClient = "client"
)

// KeyPolicy selects which optional rules apply when deriving keys. Deployments
// that share a bucket must share a policy, otherwise the same identifiers map
// to different keys.
type KeyPolicy struct {
	// PrivateScope allows user and role identifiers to scope keys privately.
	// When false every key uses the shared client scope.
	PrivateScope bool `mapstructure:"private_scope"`
	// AttachmentExempt lets attachment containers omit the container id.
	AttachmentExempt bool `mapstructure:"attachment_exempt"`
}

// DefaultKeyPolicy enables private scoping and the attachment exemption.
var DefaultKeyPolicy = KeyPolicy{PrivateScope: true, AttachmentExempt: true}

// DeriveScopePrefix derives a key prefix with DefaultKeyPolicy.
func DeriveScopePrefix(ids IdentifierSet, includeScope bool) (string, error) {
	return DefaultKeyPolicy.ScopePrefix(ids, includeScope)
}

// DeriveObjectKey derives a full object key with DefaultKeyPolicy.
func DeriveObjectKey(ids IdentifierSet) (string, error) {
	return DefaultKeyPolicy.ObjectKey(ids)
}

// ScopePrefix validates ids and returns the lower-cased key prefix
//
//	{client}/{scope}/{container_type}[/{container_id}][/{table}/{record}][/{column}]
//
// The file name is ignored. The user or role scope is used only when
// includeScope is set and the policy allows private scoping; a user wins over
// a role. The returned error is a *ValidationError naming the first rule that
// failed.
func (p KeyPolicy) ScopePrefix(ids IdentifierSet, includeScope bool) (string, error) {
	containerType, err := p.validate(ids)
	if err != nil {
		return "", err
	}

	segments := []string{SanitizePathSegment(ids.ClientID)}

	switch {
	case includeScope && p.PrivateScope && present(ids.UserID):
		segments = append(segments, scopeUser, SanitizePathSegment(ids.UserID))
	case includeScope && p.PrivateScope && present(ids.RoleID):
		segments = append(segments, scopeRole, SanitizePathSegment(ids.RoleID))
	default:
		segments = append(segments, scopeClient)
	}

	segments = append(segments, SanitizePathSegment(string(containerType)))
	if present(ids.ContainerID) {
		segments = append(segments, SanitizePathSegment(ids.ContainerID))
	}
	if present(ids.TableName) {
		segments = append(segments, SanitizePathSegment(ids.TableName), SanitizePathSegment(ids.RecordID))
	}
	if present(ids.ColumnName) {
		segments = append(segments, SanitizePathSegment(ids.ColumnName))
	}

	return strings.ToLower(strings.Join(segments, "/")), nil
}

// ObjectKey validates ids and returns the full object key: the scoped prefix
// followed by the sanitized file name.
func (p KeyPolicy) ObjectKey(ids IdentifierSet) (string, error) {
	if !present(ids.FileName) {
		return "", &ValidationError{Field: "file_name", Message: MsgFileNameMandatory}
	}

	prefix, err := p.ScopePrefix(ids, true)
	if err != nil {
		return "", err
	}

	file := SanitizeFileName(ids.FileName)
	if strings.Trim(file, ".") == "" {
		return "", &ValidationError{Field: "file_name", Message: MsgInvalidFileName}
	}

	return strings.ToLower(prefix + "/" + file), nil
}

// validate checks the identifier invariants in reporting order.
func (p KeyPolicy) validate(ids IdentifierSet) (ContainerType, error) {
	if !present(ids.ClientID) {
		return "", &ValidationError{Field: "client_id", Message: MsgClientIDMandatory}
	}
	if !present(ids.ContainerType) {
		return "", &ValidationError{Field: "container_type", Message: MsgContainerTypeMandatory}
	}

	containerType, err := ParseContainerType(ids.ContainerType)
	if err != nil {
		return "", err
	}

	attachment := containerType == ContainerAttachment
	if !present(ids.ContainerID) && !(attachment && p.AttachmentExempt) {
		return "", &ValidationError{Field: "container_id", Message: MsgContainerIDMandatory}
	}

	hasTable, hasRecord := present(ids.TableName), present(ids.RecordID)
	if hasRecord && !hasTable {
		return "", &ValidationError{Field: "table_name", Message: MsgTableNameMandatory}
	}
	if hasTable && !hasRecord {
		return "", &ValidationError{Field: "record_id", Message: MsgRecordIDMandatory}
	}
	if present(ids.ColumnName) && !hasTable {
		return "", &ValidationError{Field: "table_name", Message: MsgTableNameMandatory}
	}

	if attachment && !hasTable {
		return "", &ValidationError{Field: "container_type", Message: MsgAttachmentRequiresRecord}
	}

	return containerType, nil
}

// SanitizePathSegment replaces every character outside [A-Za-z0-9-] with an
// underscore.
func SanitizePathSegment(s string) string {
	return pathSegmentRegex.ReplaceAllString(s, "_")
}

// SanitizeFileName replaces every character outside [A-Za-z0-9._-] with an
// underscore.
func SanitizeFileName(s string) string {
	return fileNameRegex.ReplaceAllString(s, "_")
}

// IsValidKey reports whether key is safe to hand to the store. It checks that
// the key:
//   - is non-empty, relative and has no trailing slash
//   - has no empty, "." or ".." segments
//   - is valid UTF-8 without control characters or whitespace
func IsValidKey(key string) bool {
	if key == "" || key[0] == '/' || strings.HasSuffix(key, "/") {
		return false
	}

	if !utf8.ValidString(key) {
		return false
	}

	for _, segment := range strings.Split(key, "/") {
		if segment == "" || segment == "." || segment == ".." {
			return false
		}
	}

	for _, r := range key {
		if r < 0x20 || r == 0x7f || unicode.IsSpace(r) {
			return false
		}
	}

	return true
}

func present(s string) bool {
	return strings.TrimSpace(s) != ""
}
