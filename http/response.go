package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/sagarc03/s3gateway"
)

// ErrorResponse represents a JSON error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// SignedURL is the body of the download-url and upload-url routes.
type SignedURL struct {
	URL string `json:"url"`
}

// legacyMissingFileName is the plain text body legacy clients match on.
const legacyMissingFileName = "File Name is mandatory"

// WriteError writes a JSON error response
func WriteError(w http.ResponseWriter, code int, errCode, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(ErrorResponse{
		Error:   errCode,
		Message: message,
	}); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}

// HandleError writes appropriate error response based on error type
func HandleError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *s3gateway.ValidationError
	if errors.As(err, &verr) {
		logger(r).Debug("request rejected", "field", verr.Field, "error", err)
		WriteError(w, http.StatusBadRequest, "invalid_input", verr.Message)
		return
	}

	if errors.Is(err, s3gateway.ErrInvalidInput) {
		logger(r).Debug("request rejected", "error", err)
		WriteError(w, http.StatusBadRequest, "invalid_input", "Invalid input")
		return
	}

	logRequestError(r, err)

	var serr *s3gateway.StorageError
	switch {
	case errors.Is(err, s3gateway.ErrLengthRequired):
		WriteError(w, http.StatusLengthRequired, "length_required", "Content-Length is required")
	case errors.Is(err, s3gateway.ErrNotFound):
		WriteError(w, http.StatusNotFound, "not_found", "Object not found")
	case errors.Is(err, s3gateway.ErrAccessDenied):
		WriteError(w, http.StatusForbidden, "access_denied", "Storage denied access")
	case errors.Is(err, context.DeadlineExceeded):
		WriteError(w, http.StatusGatewayTimeout, "timeout", "Storage did not respond in time")
	case errors.As(err, &serr):
		WriteError(w, http.StatusBadGateway, "storage_error", serr.Error())
	case errors.Is(err, s3gateway.ErrStorage):
		WriteError(w, http.StatusBadGateway, "storage_error", err.Error())
	default:
		WriteError(w, http.StatusInternalServerError, "internal_error", "Internal server error")
	}
}

// HandleLegacyError answers every failure with 500. A missing file name gets
// a plain text body, anything else the error text as a JSON string.
func HandleLegacyError(w http.ResponseWriter, r *http.Request, err error) {
	logRequestError(r, err)

	if s3gateway.IsMissingFileName(err) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, legacyMissingFileName)
		return
	}

	if err := WriteJSON(w, http.StatusInternalServerError, err.Error()); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}

// logRequestError logs err at error level unless it is a client mistake or a
// storage failure the service already reported.
func logRequestError(r *http.Request, err error) {
	var serr *s3gateway.StorageError
	if errors.As(err, &serr) {
		logger(r).Debug("storage failure returned", "op", serr.Op, "error", err)
		return
	}
	if errors.Is(err, s3gateway.ErrLengthRequired) {
		logger(r).Debug("request rejected", "error", err)
		return
	}
	logger(r).Error("request error", "error", err)
}

// WriteJSON writes a JSON response
func WriteJSON(w http.ResponseWriter, code int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	return json.NewEncoder(w).Encode(data)
}
