package transport

import "codeberg.org/mutker/envstation/internal/errors"

const (
	// Configuration Errors
	ErrInvalidConfig = errors.ErrorCode("transport_invalid_config")

	// Session Errors
	ErrConnectFailed = errors.ErrorCode("transport_connect_failed")
	ErrNotConnected  = errors.ErrorCode("transport_not_connected")
	ErrClosed        = errors.ErrorCode("transport_closed")

	// Publish Errors
	ErrPublishFailed   = errors.ErrorCode("transport_publish_failed")
	ErrPublishTimeout  = errors.ErrorCode("transport_publish_timeout")
	ErrPublishRejected = errors.ErrorCode("transport_publish_rejected")
	ErrAuthFailed      = errors.ErrorCode("transport_auth_failed")
)
