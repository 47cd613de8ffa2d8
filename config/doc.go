// Package config provides configuration loading and validation for s3gateway.
//
// The package handles YAML configuration files, environment variables, and CLI flags
// with automatic merging and validation using go-playground/validator.
//
// # Configuration Precedence
//
// Values are loaded in this order (later sources override earlier ones):
//
//  1. Default values
//  2. Legacy environment variables (S3_URL, BUCKET_NAME, ...)
//  3. Configuration file(s) - multiple files merged left-to-right
//  4. Environment variables (S3GATEWAY_ prefix)
//  5. CLI flags
//
// # Usage
//
//	cfg, err := config.Load([]string{"config.yaml"}, cmd.Flags())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Store in context for subcommands
//	ctx = config.WithContext(ctx, cfg)
//
//	// Retrieve later
//	cfg, err = config.FromContext(ctx)
//
// # Environment Variables
//
// All config keys map to environment variables with S3GATEWAY_ prefix:
//   - server.addr → S3GATEWAY_SERVER_ADDR
//   - storage.bucket → S3GATEWAY_STORAGE_BUCKET
//   - presign.default_ttl → S3GATEWAY_PRESIGN_DEFAULT_TTL
//
// The variables of earlier deployments are still read, with lower priority:
//   - S3_URL → storage.endpoint
//   - BUCKET_NAME → storage.bucket
//   - API_KEY, SECRET_KEY → storage.access_key, storage.secret_key
//   - MANAGE_HTTPS ("Y") → storage.use_ssl
//   - SSL_CERT_FILE → storage.ca_cert_file
//   - HOST → server.addr
//   - ALLOWED_ORIGIN → cors.allowed_origins
//
// # Configuration Structure
//
// The Config struct contains:
//   - Server: listen address, timeouts and the legacy error mode
//   - Storage: S3 endpoint, bucket, credentials, region and TLS settings
//   - Keys: key derivation policy (private scope, attachment exemption)
//   - Presign: default and maximum URL lifetime
//   - Proxy: upload relay timeout and body size limit
//   - CORS: cross-origin resource sharing settings
//   - Metrics: Prometheus endpoint
//   - Log: logging level
//
// # Validation
//
// Configuration is validated using struct tags:
//   - Address must be host:port
//   - Default TTL must not exceed max TTL, and max TTL is at most 7 days
//   - Log level must be debug, info, warn, or error
//
// Missing storage settings are not validation errors. Call Config.WarnMissing
// to report them.
package config
