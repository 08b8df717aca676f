package apperror

// messages maps error codes to human-readable messages
var messages = map[Code]string{
	// General validation
	CodeRequiredField:   "Required field is missing",
	CodeInvalidInput:    "Invalid input provided",
	CodeInvalidFormat:   "Invalid data format",
	CodeInvalidState:    "Invalid state for this operation",
	CodeNotFound:        "Resource not found",
	CodeValidationError: "Validation error",

	// Configuration
	CodeConfigurationError: "Configuration error",

	// External service errors
	CodeExternalServiceError: "External service error",
	CodeServiceTimeout:       "Service request timeout",
	CodeServiceUnavailable:   "Service temporarily unavailable",
	CodeRateLimitExceeded:    "Rate limit exceeded",

	// System errors
	CodeInternalError: "Internal server error",
	CodeUnknownError:  "An unknown error occurred",

	// Auth errors
	CodeAuthFailed:       "Authentication request failed",
	CodeAuthUnauthorized: "Unauthorized: invalid API key",
	CodeTokenExpired:     "Session token expired",
	CodeTokenRefreshFail: "Failed to refresh session token",

	// WebSocket / session errors
	CodeWebSocketConnectionError: "WebSocket connection error",
	CodeWebSocketReconnecting:    "WebSocket reconnecting",
	CodeWebSocketClosed:          "WebSocket connection closed",
	CodeWebSocketSendError:       "Failed to send WebSocket message",
	CodeSessionStopped:           "Session has been stopped",
	CodeBackoffExhausted:         "Reconnect backoff schedule exhausted",

	// Subscription errors
	CodeChannelInvalid:     "Invalid channel",
	CodeChannelNameTooLong: "Channel name exceeds maximum length",
	CodeProviderUnknown:    "Unknown sub-provider",

	// Wire codec errors
	CodeFrameTruncated:     "Frame truncated before expected length",
	CodeMessageTypeUnknown: "Unknown message type byte",
	CodeCodecDecodeError:   "Failed to decode wire message",

	// Replay errors
	CodeReplayFileNotFound:  "Replay tick file not found",
	CodeReplayDownloadError: "Failed to download replay tick file",
	CodeReplayCorruptFile:   "Replay tick file is corrupt",

	// Circuit breaker errors
	CodeCircuitOpen:     "Circuit breaker is open",
	CodeCircuitHalfOpen: "Circuit breaker is half-open",
}
