// Package errors provides structured error handling for Nexus.
//
// Error codes follow the pattern ERR_XXX_DESCRIPTION where:
//   - 1XX: Configuration errors
//   - 2XX: Index source and storage errors
//   - 3XX: IPC errors
//   - 4XX: Query and launch errors
//   - 5XX: Internal errors
//   - 6XX: Lifecycle errors (instance, hotkey, tray, watchdog)
package errors

// Category defines error categories for classification.
type Category string

const (
	// CategoryConfig indicates configuration-related errors.
	CategoryConfig Category = "CONFIG"
	// CategoryIO indicates index source and storage errors.
	CategoryIO Category = "IO"
	// CategoryIPC indicates errors talking to the resident instance.
	CategoryIPC Category = "IPC"
	// CategoryQuery indicates query and launch errors.
	CategoryQuery Category = "QUERY"
	// CategoryInternal indicates unexpected internal errors.
	CategoryInternal Category = "INTERNAL"
	// CategoryLifecycle indicates process lifecycle errors.
	CategoryLifecycle Category = "LIFECYCLE"
)

// Severity defines error severity levels.
type Severity string

const (
	// SeverityFatal indicates unrecoverable error, must abort.
	SeverityFatal Severity = "FATAL"
	// SeverityError indicates operation failed but can continue.
	SeverityError Severity = "ERROR"
	// SeverityWarning indicates degraded operation, continuing.
	SeverityWarning Severity = "WARNING"
	// SeverityInfo indicates informational only.
	SeverityInfo Severity = "INFO"
)

// Error codes organized by category.
const (
	// Config errors (100-199)
	ErrCodeConfigNotFound = "ERR_101_CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid  = "ERR_102_CONFIG_INVALID"

	// Index source and storage errors (200-299)
	ErrCodeIndexSourceUnavailable = "ERR_201_INDEX_SOURCE_UNAVAILABLE"
	ErrCodeMRUStorage             = "ERR_202_MRU_STORAGE"

	// IPC errors (300-399)
	ErrCodeIPCUnavailable = "ERR_301_IPC_UNAVAILABLE"
	ErrCodeIPCTimeout     = "ERR_302_IPC_TIMEOUT"

	// Query and launch errors (400-499)
	ErrCodeQueryStale   = "ERR_401_QUERY_STALE"
	ErrCodeLaunchFailed = "ERR_402_LAUNCH_FAILED"
	ErrCodeInvalidInput = "ERR_403_INVALID_INPUT"

	// Internal errors (500-599)
	ErrCodeInternal = "ERR_501_INTERNAL"

	// Lifecycle errors (600-699)
	ErrCodeInstanceAlreadyRunning   = "ERR_601_INSTANCE_ALREADY_RUNNING"
	ErrCodeHotkeyRegistrationFailed = "ERR_602_HOTKEY_REGISTRATION_FAILED"
	ErrCodeTrayUnavailable          = "ERR_603_TRAY_UNAVAILABLE"
	ErrCodeWatchdogExhausted        = "ERR_604_WATCHDOG_RESTART_EXHAUSTED"
)

// categoryFromCode extracts category from error code.
func categoryFromCode(code string) Category {
	if len(code) < 7 {
		return CategoryInternal
	}

	// Extract numeric portion (e.g., "101" from "ERR_101_CONFIG_NOT_FOUND")
	switch code[4] {
	case '1':
		return CategoryConfig
	case '2':
		return CategoryIO
	case '3':
		return CategoryIPC
	case '4':
		return CategoryQuery
	case '6':
		return CategoryLifecycle
	default:
		return CategoryInternal
	}
}

// severityFromCode determines severity based on error code.
func severityFromCode(code string) Severity {
	switch code {
	case ErrCodeWatchdogExhausted:
		return SeverityFatal
	case ErrCodeInstanceAlreadyRunning, ErrCodeQueryStale:
		return SeverityInfo
	case ErrCodeIndexSourceUnavailable, ErrCodeHotkeyRegistrationFailed, ErrCodeTrayUnavailable:
		return SeverityWarning
	}

	if isRetryableCode(code) {
		return SeverityWarning
	}
	return SeverityError
}

// isRetryableCode checks if an error code represents a retryable error.
func isRetryableCode(code string) bool {
	switch code {
	case ErrCodeIPCTimeout, ErrCodeHotkeyRegistrationFailed, ErrCodeMRUStorage:
		return true
	default:
		return false
	}
}
