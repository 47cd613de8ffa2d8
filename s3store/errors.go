package s3store

import (
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/sagarc03/s3gateway"
)

// wrapS3Error classifies err by its S3 error code. Unclassified errors keep
// their chain so callers can still match context errors.
func wrapS3Error(op string, err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NoSuchBucket", "NotFound":
			return fmt.Errorf("%s: %w: %v", op, s3gateway.ErrNotFound, err)
		case "AccessDenied", "Forbidden", "InvalidAccessKeyId", "SignatureDoesNotMatch":
			return fmt.Errorf("%s: %w: %v", op, s3gateway.ErrAccessDenied, err)
		}
	}

	var noBucket *types.NoSuchBucket
	if errors.As(err, &noBucket) {
		return fmt.Errorf("%s: %w: %v", op, s3gateway.ErrNotFound, err)
	}

	return fmt.Errorf("%s: %w", op, err)
}
