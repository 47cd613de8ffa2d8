package http

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/sagarc03/s3gateway"
)

type Service interface {
	Presign(ctx context.Context, ids s3gateway.IdentifierSet, method s3gateway.Method, ttl time.Duration) (s3gateway.PresignedObject, error)
	ProxyUpload(ctx context.Context, ids s3gateway.IdentifierSet, content io.Reader, size int64, contentType string) (s3gateway.UploadResult, error)
	List(ctx context.Context, ids s3gateway.IdentifierSet, opts s3gateway.ListOptions) (s3gateway.ResourceList, error)
	Delete(ctx context.Context, ids s3gateway.IdentifierSet) error
}

type CORSConfig struct {
	Enabled          bool     `mapstructure:"enabled"`
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	ExposedHeaders   []string `mapstructure:"exposed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age" validate:"min=0"`
}

type HandlerConfig struct {
	CORS CORSConfig
	// LegacyErrors answers every failure with 500 and a bare JSON string.
	LegacyErrors bool
	// MaxUploadSize caps proxied upload bodies in bytes. 0 means no limit.
	MaxUploadSize int64
	// Metrics is mounted at MetricsPath when set.
	Metrics     http.Handler
	MetricsPath string
	// Middleware wraps every route, outermost first.
	Middleware []func(http.Handler) http.Handler
}

// Handler exposes the gateway operations over HTTP.
type Handler struct {
	config  HandlerConfig
	service Service
}

// NewHandler creates a new Handler with the given configuration and service.
func NewHandler(config *HandlerConfig, service Service) *Handler {
	return &Handler{
		config:  *config,
		service: service,
	}
}

// Router returns an http.Handler with every gateway route mounted.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(RequestID)
	r.Use(RequestLogger)
	for _, mw := range h.config.Middleware {
		r.Use(mw)
	}

	if h.config.CORS.Enabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   h.config.CORS.AllowedOrigins,
			AllowedMethods:   h.config.CORS.AllowedMethods,
			AllowedHeaders:   h.config.CORS.AllowedHeaders,
			ExposedHeaders:   h.config.CORS.ExposedHeaders,
			AllowCredentials: h.config.CORS.AllowCredentials,
			MaxAge:           h.config.CORS.MaxAge,
		}))
	}

	r.NotFound(writeNotFound)
	r.MethodNotAllowed(writeMethodNotAllowed)

	r.Get("/healthz", h.handleHealth)
	if h.config.Metrics != nil && h.config.MetricsPath != "" {
		r.Method(http.MethodGet, h.config.MetricsPath, h.config.Metrics)
	}

	r.Route("/resources", func(r chi.Router) {
		r.Get("/", h.handleList)
		r.Put("/", h.handleUpload)
		r.Delete("/", h.handleDelete)
		r.Get("/{fileName}", h.handleRedirect)
		r.Put("/{fileName}", h.handleUpload)
		r.Delete("/{fileName}", h.handleDelete)
	})

	r.Get("/download-url", h.handleSignedURL(s3gateway.MethodGet))
	r.Get("/download-url/{fileName}", h.handleSignedURL(s3gateway.MethodGet))
	r.Get("/upload-url", h.handleSignedURL(s3gateway.MethodPut))
	r.Get("/upload-url/{fileName}", h.handleSignedURL(s3gateway.MethodPut))
	r.Get("/presigned-url/{clientId}/{containerId}/{fileName}", h.handlePresign)
	r.Get("/api/presignedUrl", h.handlePresign)

	return r
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	_ = WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts := s3gateway.ListOptions{Delimiter: q.Get("delimiter")}

	if v := q.Get("versions"); v != "" {
		versions, err := strconv.ParseBool(v)
		if err != nil {
			h.handleError(w, r, &s3gateway.ValidationError{Field: "versions", Message: "Invalid Versions Flag"})
			return
		}
		opts.Versions = versions
	}

	result, err := h.service.List(r.Context(), identifiersFromRequest(r), opts)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	_ = WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) handleRedirect(w http.ResponseWriter, r *http.Request) {
	ttl, err := ttlFromRequest(r)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	obj, err := h.service.Presign(r.Context(), identifiersFromRequest(r), s3gateway.MethodGet, ttl)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	http.Redirect(w, r, obj.URL, http.StatusFound)
}

func (h *Handler) handleSignedURL(method s3gateway.Method) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ttl, err := ttlFromRequest(r)
		if err != nil {
			h.handleError(w, r, err)
			return
		}

		obj, err := h.service.Presign(r.Context(), identifiersFromRequest(r), method, ttl)
		if err != nil {
			h.handleError(w, r, err)
			return
		}

		_ = WriteJSON(w, http.StatusOK, SignedURL{URL: obj.URL})
	}
}

func (h *Handler) handlePresign(w http.ResponseWriter, r *http.Request) {
	method, err := s3gateway.ParseMethod(r.URL.Query().Get("method"))
	if err != nil {
		h.handleError(w, r, &s3gateway.ValidationError{Field: "method", Message: "Invalid Method"})
		return
	}

	ttl, err := ttlFromRequest(r)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	obj, err := h.service.Presign(r.Context(), identifiersFromRequest(r), method, ttl)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	_ = WriteJSON(w, http.StatusOK, obj)
}

func (h *Handler) handleUpload(w http.ResponseWriter, r *http.Request) {
	size := r.ContentLength
	if size < 0 {
		h.handleError(w, r, s3gateway.ErrLengthRequired)
		return
	}
	body := io.Reader(r.Body)

	if limit := h.config.MaxUploadSize; limit > 0 {
		if size > limit {
			WriteError(w, http.StatusRequestEntityTooLarge, "too_large", "Upload exceeds size limit")
			return
		}
		body = http.MaxBytesReader(w, r.Body, limit)
	}

	result, err := h.service.ProxyUpload(r.Context(), identifiersFromRequest(r), body, size, r.Header.Get("Content-Type"))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) && !h.config.LegacyErrors {
			WriteError(w, http.StatusRequestEntityTooLarge, "too_large", "Upload exceeds size limit")
			return
		}
		h.handleError(w, r, err)
		return
	}

	_ = WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), identifiersFromRequest(r)); err != nil {
		h.handleError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	if h.config.LegacyErrors {
		HandleLegacyError(w, r, err)
		return
	}
	HandleError(w, r, err)
}

// identifiersFromRequest reads the identifier set from the query string. Path
// parameters take precedence over their query counterparts.
func identifiersFromRequest(r *http.Request) s3gateway.IdentifierSet {
	q := r.URL.Query()
	ids := s3gateway.IdentifierSet{
		ClientID:      q.Get("client_id"),
		ContainerType: q.Get("container_type"),
		ContainerID:   q.Get("container_id"),
		TableName:     q.Get("table_name"),
		RecordID:      q.Get("record_id"),
		ColumnName:    q.Get("column_name"),
		UserID:        q.Get("user_id"),
		RoleID:        q.Get("role_id"),
		FileName:      q.Get("file_name"),
	}

	if v := chi.URLParam(r, "clientId"); v != "" {
		ids.ClientID = v
	}
	if v := chi.URLParam(r, "containerId"); v != "" {
		ids.ContainerID = v
	}
	if v := chi.URLParam(r, "fileName"); v != "" {
		ids.FileName = v
	}

	return ids
}

// ttlFromRequest parses the optional "seconds" parameter. Absent means the
// service default.
func ttlFromRequest(r *http.Request) (time.Duration, error) {
	v := strings.TrimSpace(r.URL.Query().Get("seconds"))
	if v == "" {
		return 0, nil
	}

	seconds, err := strconv.ParseUint(v, 10, 32)
	if err != nil || seconds == 0 {
		return 0, &s3gateway.ValidationError{Field: "seconds", Message: s3gateway.MsgInvalidExpiration}
	}

	return time.Duration(seconds) * time.Second, nil
}
