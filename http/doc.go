// Package http exposes the s3gateway mediator as a JSON HTTP API.
//
// Every route reads the identifier set from the query string: client_id,
// container_type, container_id, table_name, record_id, column_name, user_id,
// role_id and file_name. Path parameters override their query counterparts.
//
// # Routes
//
//	GET    /resources                  list objects under the derived prefix
//	GET    /resources/{fileName}       302 redirect to a signed GET URL
//	PUT    /resources/{fileName}       relay the request body to a signed PUT URL
//	DELETE /resources/{fileName}       delete the derived key
//	GET    /download-url/{fileName}    {"url": ...} signed for GET
//	GET    /upload-url/{fileName}      {"url": ...} signed for PUT
//	GET    /presigned-url/{clientId}/{containerId}/{fileName}
//	GET    /api/presignedUrl           query-only form of presigned-url
//	GET    /healthz
//
// The signing routes accept "seconds" to override the URL lifetime, and the
// presigned-url routes accept "method" (GET or PUT, default GET).
//
// # Errors
//
// Failures are JSON envelopes:
//
//	{"error": "invalid_input", "message": "Client ID is Mandatory"}
//
// Validation errors are 400, missing objects 404, storage access denial 403,
// storage timeouts 504 and other storage failures 502. With
// HandlerConfig.LegacyErrors every failure is a 500 carrying the message as a
// JSON string, and a missing file name is the plain text "File Name is
// mandatory".
//
// # Usage
//
//	handler := http.NewHandler(&http.HandlerConfig{
//	    CORS: http.CORSConfig{Enabled: true, AllowedOrigins: []string{"*"}},
//	}, service)
//	srv := &nethttp.Server{Addr: ":7878", Handler: handler.Router()}
//
// Every request gets an X-Request-Id and one log line through RequestID and
// RequestLogger.
package http
