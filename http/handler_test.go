package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sagarc03/s3gateway"
	gatewayhttp "github.com/sagarc03/s3gateway/http"
)

// MockService is a mock implementation of http.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) Presign(ctx context.Context, ids s3gateway.IdentifierSet, method s3gateway.Method, ttl time.Duration) (s3gateway.PresignedObject, error) {
	args := m.Called(ctx, ids, method, ttl)
	return args.Get(0).(s3gateway.PresignedObject), args.Error(1)
}

func (m *MockService) ProxyUpload(ctx context.Context, ids s3gateway.IdentifierSet, content io.Reader, size int64, contentType string) (s3gateway.UploadResult, error) {
	args := m.Called(ctx, ids, content, size, contentType)
	return args.Get(0).(s3gateway.UploadResult), args.Error(1)
}

func (m *MockService) List(ctx context.Context, ids s3gateway.IdentifierSet, opts s3gateway.ListOptions) (s3gateway.ResourceList, error) {
	args := m.Called(ctx, ids, opts)
	return args.Get(0).(s3gateway.ResourceList), args.Error(1)
}

func (m *MockService) Delete(ctx context.Context, ids s3gateway.IdentifierSet) error {
	args := m.Called(ctx, ids)
	return args.Error(0)
}

const identifierQuery = "client_id=Acme+Co&container_type=form&container_id=INV-01"

var formIDs = s3gateway.IdentifierSet{
	ClientID:      "Acme Co",
	ContainerType: "form",
	ContainerID:   "INV-01",
}

func withFile(ids s3gateway.IdentifierSet, name string) s3gateway.IdentifierSet {
	ids.FileName = name
	return ids
}

func newRouter(t *testing.T, cfg gatewayhttp.HandlerConfig) (http.Handler, *MockService) {
	t.Helper()
	service := new(MockService)
	return gatewayhttp.NewHandler(&cfg, service).Router(), service
}

func serve(h http.Handler, method, target string, body io.Reader) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, body)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) gatewayhttp.ErrorResponse {
	t.Helper()
	var resp gatewayhttp.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func TestHandler_List(t *testing.T) {
	router, service := newRouter(t, gatewayhttp.HandlerConfig{})

	parent := "acme_co/client/form/inv-01"
	size := int64(12)
	expected := s3gateway.ResourceList{
		ParentFolder: &parent,
		Resources:    []s3gateway.Resource{{Name: parent + "/a.pdf", Size: &size}},
	}
	service.On("List", mock.Anything, formIDs, s3gateway.ListOptions{Delimiter: "/", Versions: true}).
		Return(expected, nil).Once()

	rec := serve(router, http.MethodGet, "/resources?"+identifierQuery+"&delimiter=/&versions=true", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var got s3gateway.ResourceList
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	require.NotNil(t, got.ParentFolder)
	assert.Equal(t, parent, *got.ParentFolder)
	require.Len(t, got.Resources, 1)
	assert.Equal(t, parent+"/a.pdf", got.Resources[0].Name)
	service.AssertExpectations(t)
}

func TestHandler_List_InvalidVersions(t *testing.T) {
	router, service := newRouter(t, gatewayhttp.HandlerConfig{})

	rec := serve(router, http.MethodGet, "/resources?"+identifierQuery+"&versions=maybe", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	service.AssertNotCalled(t, "List", mock.Anything, mock.Anything, mock.Anything)
}

func TestHandler_List_ValidationError(t *testing.T) {
	router, service := newRouter(t, gatewayhttp.HandlerConfig{})
	service.On("List", mock.Anything, s3gateway.IdentifierSet{}, s3gateway.ListOptions{}).
		Return(s3gateway.ResourceList{}, &s3gateway.ValidationError{Field: "client_id", Message: s3gateway.MsgClientIDMandatory}).Once()

	rec := serve(router, http.MethodGet, "/resources", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeError(t, rec)
	assert.Equal(t, "invalid_input", resp.Error)
	assert.Equal(t, s3gateway.MsgClientIDMandatory, resp.Message)
}

func TestHandler_Redirect(t *testing.T) {
	router, service := newRouter(t, gatewayhttp.HandlerConfig{})
	service.On("Presign", mock.Anything, withFile(formIDs, "invoice 1.pdf"), s3gateway.MethodGet, time.Duration(0)).
		Return(s3gateway.PresignedObject{URL: "https://s3.example/signed?x=1", FileName: "k"}, nil).Once()

	rec := serve(router, http.MethodGet, "/resources/invoice%201.pdf?"+identifierQuery, nil)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "https://s3.example/signed?x=1", rec.Header().Get("Location"))
	service.AssertExpectations(t)
}

func TestHandler_DownloadURL(t *testing.T) {
	router, service := newRouter(t, gatewayhttp.HandlerConfig{})
	service.On("Presign", mock.Anything, withFile(formIDs, "a.pdf"), s3gateway.MethodGet, 60*time.Second).
		Return(s3gateway.PresignedObject{URL: "https://s3.example/get", FileName: "k"}, nil).Once()

	rec := serve(router, http.MethodGet, "/download-url/a.pdf?"+identifierQuery+"&seconds=60", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	var got gatewayhttp.SignedURL
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, "https://s3.example/get", got.URL)
	service.AssertExpectations(t)
}

func TestHandler_UploadURL_QueryFileName(t *testing.T) {
	router, service := newRouter(t, gatewayhttp.HandlerConfig{})
	service.On("Presign", mock.Anything, withFile(formIDs, "b.png"), s3gateway.MethodPut, time.Duration(0)).
		Return(s3gateway.PresignedObject{URL: "https://s3.example/put"}, nil).Once()

	rec := serve(router, http.MethodGet, "/upload-url?"+identifierQuery+"&file_name=b.png", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "https://s3.example/put")
	service.AssertExpectations(t)
}

func TestHandler_InvalidSeconds(t *testing.T) {
	router, service := newRouter(t, gatewayhttp.HandlerConfig{})

	for _, seconds := range []string{"abc", "-5", "0", "99999999999"} {
		t.Run(seconds, func(t *testing.T) {
			rec := serve(router, http.MethodGet, "/download-url/a.pdf?"+identifierQuery+"&seconds="+seconds, nil)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, s3gateway.MsgInvalidExpiration, decodeError(t, rec).Message)
		})
	}
	service.AssertNotCalled(t, "Presign", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestHandler_PresignedURL_PathParams(t *testing.T) {
	router, service := newRouter(t, gatewayhttp.HandlerConfig{})
	ids := s3gateway.IdentifierSet{
		ClientID:      "tenant",
		ContainerType: "window",
		ContainerID:   "143",
		UserID:        "u1",
		FileName:      "logo.png",
	}
	service.On("Presign", mock.Anything, ids, s3gateway.MethodPut, time.Duration(0)).
		Return(s3gateway.PresignedObject{URL: "https://s3.example/put", FileName: "tenant/user/u1/window/143/logo.png"}, nil).Once()

	rec := serve(router, http.MethodGet,
		"/presigned-url/tenant/143/logo.png?container_type=window&user_id=u1&client_id=ignored&method=put", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	var got s3gateway.PresignedObject
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, "tenant/user/u1/window/143/logo.png", got.FileName)
	service.AssertExpectations(t)
}

func TestHandler_PresignedURL_InvalidMethod(t *testing.T) {
	router, service := newRouter(t, gatewayhttp.HandlerConfig{})

	rec := serve(router, http.MethodGet, "/presigned-url/c/1/a.txt?container_type=form&method=DELETE", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid Method", decodeError(t, rec).Message)
	service.AssertNotCalled(t, "Presign", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestHandler_LegacyPresignRoute(t *testing.T) {
	router, service := newRouter(t, gatewayhttp.HandlerConfig{})
	service.On("Presign", mock.Anything, withFile(formIDs, "a.pdf"), s3gateway.MethodGet, time.Duration(0)).
		Return(s3gateway.PresignedObject{URL: "u", FileName: "k"}, nil).Once()

	rec := serve(router, http.MethodGet, "/api/presignedUrl?"+identifierQuery+"&file_name=a.pdf", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"url":"u","file_name":"k"}`, rec.Body.String())
}

func TestHandler_Upload(t *testing.T) {
	router, service := newRouter(t, gatewayhttp.HandlerConfig{})
	service.On("ProxyUpload", mock.Anything, withFile(formIDs, "a.txt"), mock.Anything, int64(5), "text/plain").
		Run(func(args mock.Arguments) {
			body, err := io.ReadAll(args.Get(2).(io.Reader))
			assert.NoError(t, err)
			assert.Equal(t, "hello", string(body))
		}).
		Return(s3gateway.UploadResult{Key: "acme_co/client/form/inv-01/a.txt", Size: 5}, nil).Once()

	req := httptest.NewRequest(http.MethodPut, "/resources/a.txt?"+identifierQuery, strings.NewReader("hello"))
	req.Header.Set("Content-Type", "text/plain")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var got s3gateway.UploadResult
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, "acme_co/client/form/inv-01/a.txt", got.Key)
	service.AssertExpectations(t)
}

func TestHandler_Upload_TooLarge(t *testing.T) {
	router, service := newRouter(t, gatewayhttp.HandlerConfig{MaxUploadSize: 4})

	rec := serve(router, http.MethodPut, "/resources/a.txt?"+identifierQuery, strings.NewReader("hello"))

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Equal(t, "too_large", decodeError(t, rec).Error)
	service.AssertNotCalled(t, "ProxyUpload", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

// drainingService reads the whole upload body like the real relay does.
type drainingService struct {
	MockService
}

func (d *drainingService) ProxyUpload(_ context.Context, _ s3gateway.IdentifierSet, content io.Reader, _ int64, _ string) (s3gateway.UploadResult, error) {
	_, err := io.ReadAll(content)
	return s3gateway.UploadResult{}, err
}

func TestHandler_Upload_TooLargeWhileStreaming(t *testing.T) {
	router := gatewayhttp.NewHandler(&gatewayhttp.HandlerConfig{MaxUploadSize: 4}, new(drainingService)).Router()

	req := httptest.NewRequest(http.MethodPut, "/resources/a.txt?"+identifierQuery, io.NopCloser(strings.NewReader("hello")))
	req.ContentLength = 3
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestHandler_Upload_LengthRequired(t *testing.T) {
	t.Run("chunked body", func(t *testing.T) {
		router, service := newRouter(t, gatewayhttp.HandlerConfig{})

		req := httptest.NewRequest(http.MethodPut, "/resources/a.txt?"+identifierQuery, io.NopCloser(strings.NewReader("hello")))
		req.ContentLength = -1
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusLengthRequired, rec.Code)
		assert.Equal(t, "length_required", decodeError(t, rec).Error)
		service.AssertNotCalled(t, "ProxyUpload", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("service refuses unknown length", func(t *testing.T) {
		router, service := newRouter(t, gatewayhttp.HandlerConfig{})
		service.On("ProxyUpload", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(s3gateway.UploadResult{}, s3gateway.ErrLengthRequired).Once()

		rec := serve(router, http.MethodPut, "/resources/a.txt?"+identifierQuery, strings.NewReader("hello"))

		assert.Equal(t, http.StatusLengthRequired, rec.Code)
	})
}

func TestHandler_Delete(t *testing.T) {
	router, service := newRouter(t, gatewayhttp.HandlerConfig{})
	service.On("Delete", mock.Anything, withFile(formIDs, "a.txt")).Return(nil).Once()

	rec := serve(router, http.MethodDelete, "/resources/a.txt?"+identifierQuery, nil)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
	service.AssertExpectations(t)
}

func TestHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantCode    string
		wantMessage string
	}{
		{
			name:       "validation",
			err:        &s3gateway.ValidationError{Field: "file_name", Message: s3gateway.MsgFileNameMandatory},
			wantStatus: http.StatusBadRequest,
			wantCode:   "invalid_input",
		},
		{
			name:       "not found",
			err:        &s3gateway.StorageError{Op: "delete", Key: "k", Err: s3gateway.ErrNotFound},
			wantStatus: http.StatusNotFound,
			wantCode:   "not_found",
		},
		{
			name:       "access denied",
			err:        &s3gateway.StorageError{Op: "delete", Key: "k", Err: s3gateway.ErrAccessDenied},
			wantStatus: http.StatusForbidden,
			wantCode:   "access_denied",
		},
		{
			name:       "deadline",
			err:        &s3gateway.StorageError{Op: "delete", Key: "k", Err: context.DeadlineExceeded},
			wantStatus: http.StatusGatewayTimeout,
			wantCode:   "timeout",
		},
		{
			name:        "other storage failure",
			err:         &s3gateway.StorageError{Op: "delete", Key: "k", Err: errors.New("connection refused")},
			wantStatus:  http.StatusBadGateway,
			wantCode:    "storage_error",
			wantMessage: "delete k: connection refused",
		},
		{
			name:       "unexpected",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "internal_error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, service := newRouter(t, gatewayhttp.HandlerConfig{})
			service.On("Delete", mock.Anything, mock.Anything).Return(tt.err).Once()

			rec := serve(router, http.MethodDelete, "/resources/a.txt?"+identifierQuery, nil)

			assert.Equal(t, tt.wantStatus, rec.Code)
			resp := decodeError(t, rec)
			assert.Equal(t, tt.wantCode, resp.Error)
			if tt.wantMessage != "" {
				assert.Equal(t, tt.wantMessage, resp.Message)
			}
		})
	}
}

func TestHandler_LegacyErrors(t *testing.T) {
	t.Run("missing file name is plain text", func(t *testing.T) {
		router, service := newRouter(t, gatewayhttp.HandlerConfig{LegacyErrors: true})
		service.On("Presign", mock.Anything, formIDs, s3gateway.MethodGet, time.Duration(0)).
			Return(s3gateway.PresignedObject{}, &s3gateway.ValidationError{Field: "file_name", Message: s3gateway.MsgFileNameMandatory}).Once()

		rec := serve(router, http.MethodGet, "/api/presignedUrl?"+identifierQuery, nil)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "File Name is mandatory", rec.Body.String())
		assert.Contains(t, rec.Header().Get("Content-Type"), "text/plain")
	})

	t.Run("other failures are json strings", func(t *testing.T) {
		router, service := newRouter(t, gatewayhttp.HandlerConfig{LegacyErrors: true})
		service.On("Presign", mock.Anything, mock.Anything, s3gateway.MethodGet, time.Duration(0)).
			Return(s3gateway.PresignedObject{}, &s3gateway.ValidationError{Field: "client_id", Message: s3gateway.MsgClientIDMandatory}).Once()

		rec := serve(router, http.MethodGet, "/api/presignedUrl?file_name=a.pdf", nil)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		var msg string
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&msg))
		assert.Equal(t, s3gateway.MsgClientIDMandatory, msg)
	})
}

func TestHandler_Health(t *testing.T) {
	router, _ := newRouter(t, gatewayhttp.HandlerConfig{})

	rec := serve(router, http.MethodGet, "/healthz", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestHandler_Metrics(t *testing.T) {
	metricsHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "metrics")
	})

	router, _ := newRouter(t, gatewayhttp.HandlerConfig{Metrics: metricsHandler, MetricsPath: "/metrics"})
	rec := serve(router, http.MethodGet, "/metrics", nil)
	assert.Equal(t, "metrics", rec.Body.String())

	router, _ = newRouter(t, gatewayhttp.HandlerConfig{})
	rec = serve(router, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandler_NotFoundAndMethodNotAllowed(t *testing.T) {
	router, _ := newRouter(t, gatewayhttp.HandlerConfig{})

	rec := serve(router, http.MethodGet, "/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", decodeError(t, rec).Error)

	rec = serve(router, http.MethodPost, "/resources/a.txt", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHandler_CORS(t *testing.T) {
	router, _ := newRouter(t, gatewayhttp.HandlerConfig{
		CORS: gatewayhttp.CORSConfig{
			Enabled:        true,
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "PUT", "POST", "DELETE"},
		},
	})

	req := httptest.NewRequest(http.MethodOptions, "/resources/a.txt", nil)
	req.Header.Set("Origin", "https://app.example")
	req.Header.Set("Access-Control-Request-Method", "PUT")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "PUT")
}
