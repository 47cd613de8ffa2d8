package clientcli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Formatter formats results for output.
type Formatter interface {
	FormatPresign(w io.Writer, result *PresignResult) error
	FormatUpload(w io.Writer, results []UploadResult) error
	FormatDownload(w io.Writer, result *DownloadResult) error
	FormatDelete(w io.Writer, results []DeleteResult) error
	FormatList(w io.Writer, result *ListResult) error
	FormatError(w io.Writer, err error) error
	FormatProfileList(w io.Writer, profiles []Profile, defaultName string) error
	FormatProfileShow(w io.Writer, profile Profile, isDefault bool) error
}

// NewFormatter returns the appropriate formatter based on flags.
func NewFormatter(jsonOutput, quiet bool) Formatter {
	if jsonOutput {
		return &JSONFormatter{}
	}
	return &HumanFormatter{Quiet: quiet}
}

// HumanFormatter outputs human-readable text.
type HumanFormatter struct {
	Quiet bool
}

// FormatPresign prints the signed URL. Quiet mode prints nothing else, so the
// output can be piped.
func (f *HumanFormatter) FormatPresign(w io.Writer, result *PresignResult) error {
	if !f.Quiet {
		_, _ = fmt.Fprintf(w, "Key:    %s\n", result.Key)
		_, _ = fmt.Fprintf(w, "Method: %s\n", result.Method)
	}
	_, _ = fmt.Fprintln(w, result.URL)
	return nil
}

// FormatUpload formats upload results as human-readable text.
func (f *HumanFormatter) FormatUpload(w io.Writer, results []UploadResult) error {
	for i := range results {
		r := &results[i]
		if r.Err != nil {
			_, _ = fmt.Fprintf(w, "Error: %s - %v\n", r.LocalPath, r.Err)
			continue
		}
		if !f.Quiet {
			_, _ = fmt.Fprintf(w, "Uploaded: %s -> %s (%s)\n", r.LocalPath, r.Key, formatSize(r.Size))
			if r.ETag != "" {
				_, _ = fmt.Fprintf(w, "  ETag: %s\n", r.ETag)
			}
		}
	}
	return nil
}

// FormatDownload formats download result as human-readable text.
func (f *HumanFormatter) FormatDownload(w io.Writer, result *DownloadResult) error {
	if f.Quiet {
		return nil
	}
	if result.LocalPath == "-" {
		_, _ = fmt.Fprintf(w, "Downloaded: %s (%s)\n", result.FileName, formatSize(result.Size))
	} else {
		_, _ = fmt.Fprintf(w, "Downloaded: %s -> %s (%s)\n", result.FileName, result.LocalPath, formatSize(result.Size))
	}
	if result.ETag != "" {
		_, _ = fmt.Fprintf(w, "  ETag: %s\n", result.ETag)
	}
	return nil
}

// FormatDelete formats delete results as human-readable text.
func (f *HumanFormatter) FormatDelete(w io.Writer, results []DeleteResult) error {
	for i := range results {
		r := &results[i]
		if r.Err != nil {
			_, _ = fmt.Fprintf(w, "Error: %s - %v\n", r.FileName, r.Err)
			continue
		}
		if !f.Quiet {
			_, _ = fmt.Fprintf(w, "Deleted: %s\n", r.FileName)
		}
	}
	return nil
}

// FormatList formats a listing as a table. Prefixes are shown as PRE rows.
func (f *HumanFormatter) FormatList(w io.Writer, result *ListResult) error {
	if len(result.Resources) == 0 {
		_, _ = fmt.Fprintln(w, "No objects found")
		return nil
	}

	if result.ParentFolder != nil && !f.Quiet {
		_, _ = fmt.Fprintf(w, "Prefix: %s\n\n", *result.ParentFolder)
	}

	maxNameLen := 4 // "NAME"
	for i := range result.Resources {
		if len(result.Resources[i].Name) > maxNameLen {
			maxNameLen = len(result.Resources[i].Name)
		}
	}
	if maxNameLen > 60 {
		maxNameLen = 60
	}

	_, _ = fmt.Fprintf(w, "%-*s  %10s  %s\n", maxNameLen, "NAME", "SIZE", "LAST MODIFIED")
	_, _ = fmt.Fprintf(w, "%s  %s  %s\n", strings.Repeat("-", maxNameLen), strings.Repeat("-", 10), strings.Repeat("-", 19))

	for i := range result.Resources {
		res := &result.Resources[i]
		name := res.Name
		if len(name) > maxNameLen {
			name = name[:maxNameLen-3] + "..."
		}

		size := "-"
		switch {
		case res.IsPrefix:
			size = "PRE"
		case res.IsDeleteMarker:
			size = "DEL"
		case res.Size != nil:
			size = formatSize(*res.Size)
		}

		modified := ""
		if res.LastModified != nil {
			modified = *res.LastModified
		}

		_, _ = fmt.Fprintf(w, "%-*s  %10s  %s\n", maxNameLen, name, size, modified)
	}

	_, _ = fmt.Fprintf(w, "\n%d object(s) (%s total)\n", len(result.Resources), formatSize(TotalSize(result)))

	return nil
}

// FormatError formats an error as human-readable text.
func (f *HumanFormatter) FormatError(w io.Writer, err error) error {
	_, _ = fmt.Fprintf(w, "Error: %v\n", err)
	return nil
}

// FormatProfileList formats a list of profiles as human-readable text.
func (f *HumanFormatter) FormatProfileList(w io.Writer, profiles []Profile, defaultName string) error {
	maxNameLen := 4     // "NAME"
	maxEndpointLen := 8 // "ENDPOINT"
	for i := range profiles {
		maxNameLen = max(maxNameLen, len(profiles[i].Name))
		maxEndpointLen = max(maxEndpointLen, len(profiles[i].Endpoint))
	}
	maxNameLen = min(maxNameLen, 20)
	maxEndpointLen = min(maxEndpointLen, 50)

	_, _ = fmt.Fprintf(w, "  %-*s  %-*s  %s\n", maxNameLen, "NAME", maxEndpointLen, "ENDPOINT", "CLIENT ID")
	_, _ = fmt.Fprintf(w, "  %s  %s  %s\n", strings.Repeat("-", maxNameLen), strings.Repeat("-", maxEndpointLen), strings.Repeat("-", 20))

	for i := range profiles {
		p := &profiles[i]
		marker := " "
		if p.Name == defaultName {
			marker = "*"
		}

		_, _ = fmt.Fprintf(w, "%s %-*s  %-*s  %s\n",
			marker,
			maxNameLen, truncate(p.Name, maxNameLen),
			maxEndpointLen, truncate(p.Endpoint, maxEndpointLen),
			orNotSet(p.ClientID),
		)
	}

	return nil
}

// FormatProfileShow formats a single profile as human-readable text.
func (f *HumanFormatter) FormatProfileShow(w io.Writer, profile Profile, isDefault bool) error {
	_, _ = fmt.Fprintf(w, "Name:      %s", profile.Name)
	if isDefault {
		_, _ = fmt.Fprintf(w, " (default)")
	}
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintf(w, "Endpoint:  %s\n", profile.Endpoint)
	_, _ = fmt.Fprintf(w, "Client ID: %s\n", orNotSet(profile.ClientID))
	_, _ = fmt.Fprintf(w, "User ID:   %s\n", orNotSet(profile.UserID))
	_, _ = fmt.Fprintf(w, "Role ID:   %s\n", orNotSet(profile.RoleID))
	return nil
}

// JSONFormatter outputs JSON.
type JSONFormatter struct{}

// FormatPresign formats a signed URL as JSON.
func (f *JSONFormatter) FormatPresign(w io.Writer, result *PresignResult) error {
	return writeJSON(w, result)
}

// FormatUpload formats upload results as JSON.
func (f *JSONFormatter) FormatUpload(w io.Writer, results []UploadResult) error {
	type jsonResult struct {
		LocalPath   string `json:"local_path"`
		FileName    string `json:"file_name"`
		Key         string `json:"key,omitempty"`
		ContentType string `json:"content_type,omitempty"`
		ETag        string `json:"etag,omitempty"`
		Size        int64  `json:"size_bytes,omitempty"`
		Error       string `json:"error,omitempty"`
	}

	output := make([]jsonResult, len(results))
	for i := range results {
		r := &results[i]
		jr := jsonResult{
			LocalPath: r.LocalPath,
			FileName:  r.FileName,
		}
		if r.Err != nil {
			jr.Error = r.Err.Error()
		} else {
			jr.Key = r.Key
			jr.ContentType = r.ContentType
			jr.ETag = r.ETag
			jr.Size = r.Size
		}
		output[i] = jr
	}

	return writeJSON(w, output)
}

// FormatDownload formats download result as JSON.
func (f *JSONFormatter) FormatDownload(w io.Writer, result *DownloadResult) error {
	return writeJSON(w, result)
}

// FormatDelete formats delete results as JSON.
func (f *JSONFormatter) FormatDelete(w io.Writer, results []DeleteResult) error {
	type jsonResult struct {
		FileName string `json:"file_name"`
		Deleted  bool   `json:"deleted"`
		Error    string `json:"error,omitempty"`
	}

	output := struct {
		Results []jsonResult `json:"results"`
	}{
		Results: make([]jsonResult, len(results)),
	}

	for i, r := range results {
		jr := jsonResult{FileName: r.FileName, Deleted: r.Deleted}
		if r.Err != nil {
			jr.Error = r.Err.Error()
		}
		output.Results[i] = jr
	}

	return writeJSON(w, output)
}

// FormatList formats a listing as JSON, in the gateway's response shape.
func (f *JSONFormatter) FormatList(w io.Writer, result *ListResult) error {
	return writeJSON(w, result)
}

// FormatError formats an error as JSON.
func (f *JSONFormatter) FormatError(w io.Writer, err error) error {
	output := struct {
		Error string `json:"error"`
	}{
		Error: err.Error(),
	}
	return writeJSON(w, output)
}

// FormatProfileList formats a list of profiles as JSON.
func (f *JSONFormatter) FormatProfileList(w io.Writer, profiles []Profile, defaultName string) error {
	type jsonProfile struct {
		Name     string `json:"name"`
		Endpoint string `json:"endpoint"`
		ClientID string `json:"client_id,omitempty"`
		UserID   string `json:"user_id,omitempty"`
		RoleID   string `json:"role_id,omitempty"`
		Default  bool   `json:"default,omitempty"`
	}

	output := struct {
		Profiles []jsonProfile `json:"profiles"`
	}{
		Profiles: make([]jsonProfile, len(profiles)),
	}

	for i := range profiles {
		p := &profiles[i]
		output.Profiles[i] = jsonProfile{
			Name:     p.Name,
			Endpoint: p.Endpoint,
			ClientID: p.ClientID,
			UserID:   p.UserID,
			RoleID:   p.RoleID,
			Default:  p.Name == defaultName,
		}
	}

	return writeJSON(w, output)
}

// FormatProfileShow formats a single profile as JSON.
func (f *JSONFormatter) FormatProfileShow(w io.Writer, profile Profile, isDefault bool) error {
	profile.Default = isDefault
	output := struct {
		Name     string `json:"name"`
		Endpoint string `json:"endpoint"`
		ClientID string `json:"client_id"`
		UserID   string `json:"user_id"`
		RoleID   string `json:"role_id"`
		Default  bool   `json:"default"`
	}(profile)
	return writeJSON(w, output)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// formatSize formats bytes as human-readable size.
func formatSize(bytes int64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
		TB = GB * 1024
	)

	switch {
	case bytes < 0:
		return "unknown"
	case bytes >= TB:
		return fmt.Sprintf("%.1f TB", float64(bytes)/TB)
	case bytes >= GB:
		return fmt.Sprintf("%.1f GB", float64(bytes)/GB)
	case bytes >= MB:
		return fmt.Sprintf("%.1f MB", float64(bytes)/MB)
	case bytes >= KB:
		return fmt.Sprintf("%.1f KB", float64(bytes)/KB)
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}

func orNotSet(s string) string {
	if s == "" {
		return "(not set)"
	}
	return s
}
