package status

import "codeberg.org/mutker/envstation/internal/errors"

const (
	ErrInvalidConfig = errors.ErrorCode("status_invalid_config")
	ErrServerFailed  = errors.ErrorCode("status_server_failed")
)
