package errors

// Common error codes
const (
	// System errors
	ErrInternal        ErrorCode = "internal_error"
	ErrInvalidArgument ErrorCode = "invalid_argument"
	ErrTimeout         ErrorCode = "operation_timeout"

	// Configuration errors
	ErrInvalidConfig      ErrorCode = "invalid_configuration"
	ErrMissingConfig      ErrorCode = "missing_configuration"
	ErrMissingCredentials ErrorCode = "missing_credentials"
	ErrBindFlags          ErrorCode = "bind_flags_failed"
	ErrReadConfig         ErrorCode = "read_config_failed"
	ErrInvalidInterval    ErrorCode = "invalid_interval"
	ErrInvalidTransport   ErrorCode = "invalid_transport"
	ErrInvalidChannel     ErrorCode = "invalid_channel"

	// Logging errors
	ErrInvalidLogLevel ErrorCode = "invalid_log_level"

	// Application errors
	ErrInitApp     ErrorCode = "init_app_failed"
	ErrMainLoop    ErrorCode = "main_loop_failed"
	ErrInitStation ErrorCode = "init_station_failed"
)

// Common error messages
var errorMessages = map[ErrorCode]string{
	ErrInternal:           "Internal error occurred",
	ErrInvalidArgument:    "Invalid argument provided",
	ErrTimeout:            "Operation timed out",
	ErrInvalidConfig:      "Invalid configuration",
	ErrMissingConfig:      "Missing configuration",
	ErrMissingCredentials: "Missing required credentials",
	ErrBindFlags:          "Failed to bind flags",
	ErrReadConfig:         "Failed to read configuration",
	ErrInvalidInterval:    "Invalid interval value",
	ErrInvalidTransport:   "Unknown transport preference",
	ErrInvalidChannel:     "Unknown sensor channel",
	ErrInitApp:            "Failed to initialize application",
	ErrMainLoop:           "Error in main loop",
	ErrInitStation:        "Failed to initialize station",
}

// GetErrorMessage returns the message for a given error code
func GetErrorMessage(code ErrorCode) string {
	if msg, ok := errorMessages[code]; ok {
		return msg
	}

	return string(code)
}
