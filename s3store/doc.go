// Package s3store implements s3gateway.ObjectStore on top of aws-sdk-go-v2.
//
// A Store is built once from Config and shared by every request. It works
// against AWS S3 and any S3-compatible server such as MinIO:
//
//	store, err := s3store.New(ctx, s3store.Config{
//	    Endpoint:  "minio:9000",
//	    Bucket:    "attachments",
//	    AccessKey: "minioadmin",
//	    SecretKey: "minioadmin",
//	    PathStyle: true,
//	})
//
// An endpoint without a scheme gets https:// when UseSSL is set and http://
// otherwise. An empty endpoint targets AWS for the configured region.
//
// Errors reported by S3 are classified into s3gateway.ErrNotFound and
// s3gateway.ErrAccessDenied where the error code allows it. Every call is
// recorded in the metrics package.
package s3store
