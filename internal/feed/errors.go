package feed

import "codeberg.org/mutker/envstation/internal/errors"

const (
	// Configuration Errors
	ErrInvalidConfig = errors.ErrorCode("feed_invalid_config")

	// Request Errors
	ErrRequestFailed = errors.ErrorCode("feed_request_failed")
	ErrRateLimited   = errors.ErrorCode("feed_rate_limited")
	ErrServerError   = errors.ErrorCode("feed_server_error")
	ErrUnavailable   = errors.ErrorCode("feed_unavailable")

	// Response Errors
	ErrDecodeFailed = errors.ErrorCode("feed_decode_failed")
)
