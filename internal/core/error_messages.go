package core

// error_messages.go maps technical errors to user-friendly messages with
// codes for support reference.
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - Empty file: The file has no content
//	          Patterns: "empty input"
//	FILE002 - Unreadable file: No encoding/delimiter combination produced a table
//	          Patterns: "unreadable file"
//	FILE003 - File too large: File exceeds the configured size limit
//	          Patterns: "file too large"
//	FILE004 - No file loaded: The operation needs a loaded CSV file
//	          Patterns: "no file loaded"
//	FILE005 - No file: No file was provided
//	          Patterns: "no file provided"
//
// # Mapping Errors (MAP001-MAP099)
//
//	MAP001 - Unknown field: The field is not part of the target schema
//	         Patterns: "unknown field"
//	MAP002 - Column out of range: The column does not exist in the loaded file
//	         Patterns: "column out of range"
//	MAP003 - Template not found
//	         Patterns: "template not found"
//
// # Export Errors (EXP001-EXP099)
//
//	EXP001 - Driver unavailable: The export target is not available on this host
//	         Patterns: "driver unavailable"
//	EXP002 - Unknown format
//	         Patterns: "unknown export format"
//	EXP003 - No fallback: No fallback export was offered
//	         Patterns: "no fallback offered"
//	EXP004 - System busy: Too many exports in progress
//	         Patterns: "too many exports"
//	EXP005 - Permission denied
//	         Patterns: "permission denied"
//	EXP006 - Disk full
//	         Patterns: "no space left"
//	EXP007 - Database login failed
//	         Patterns: "password authentication failed"
//	EXP008 - Table in use: The target table belongs to something else
//	         Patterns: "table not created by fieldmap"
//
// # Session Errors (SES001-SES099)
//
//	SES001 - Session not found
//	         Patterns: "session not found"
//	SES002 - Too many sessions
//	         Patterns: "too many sessions"
//	SES003 - Request cancelled
//	         Patterns: "context canceled"
//	SES004 - Request timeout
//	         Patterns: "context deadline exceeded"
//
// # Request Errors (REQ001-REQ099)
//
//	REQ001 - Invalid request: The request body or parameters are malformed
//	         Patterns: "invalid request"
//
// # Default Error (ERR000)
//
// Fallback when no specific pattern matches. Check application logs for the
// original technical error.
//
// Patterns are matched case-insensitively using strings.Contains against the
// full wrapped error text. The first matching pattern in the table wins, so
// more specific patterns are listed before general ones.

import (
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string `json:"message"` // What happened (user-friendly)
	Action  string `json:"action"`  // What to do about it
	Code    string `json:"code"`    // Error code for support reference
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	// =========================================================================
	// Request Errors (REQ001), first: their details may quote other patterns
	// =========================================================================
	{
		pattern: "invalid request",
		msg: UserMessage{
			Message: "The request could not be understood",
			Action:  "Check the request body and parameters",
			Code:    "REQ001",
		},
	},

	// =========================================================================
	// File Errors (FILE001-FILE005)
	// =========================================================================
	{
		pattern: "empty input",
		msg: UserMessage{
			Message: "The file is empty",
			Action:  "Choose a CSV file with a header row",
			Code:    "FILE001",
		},
	},
	{
		pattern: "unreadable file",
		msg: UserMessage{
			Message: "The file could not be read as CSV",
			Action:  "Check that the file is text with comma, semicolon, tab or pipe delimiters",
			Code:    "FILE002",
		},
	},
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "File exceeds the maximum size limit",
			Action:  "Split the file into smaller chunks",
			Code:    "FILE003",
		},
	},
	{
		pattern: "no file loaded",
		msg: UserMessage{
			Message: "No file has been loaded",
			Action:  "Load a CSV file first",
			Code:    "FILE004",
		},
	},
	{
		pattern: "no file provided",
		msg: UserMessage{
			Message: "No file was provided",
			Action:  "Please select a CSV file to upload",
			Code:    "FILE005",
		},
	},

	// =========================================================================
	// Mapping Errors (MAP001-MAP003)
	// =========================================================================
	{
		pattern: "unknown field",
		msg: UserMessage{
			Message: "The field is not part of the target schema",
			Action:  "Use a field name listed by the schema",
			Code:    "MAP001",
		},
	},
	{
		pattern: "column out of range",
		msg: UserMessage{
			Message: "The column does not exist in the loaded file",
			Action:  "Pick a column from the file header",
			Code:    "MAP002",
		},
	},
	{
		pattern: "template not found",
		msg: UserMessage{
			Message: "Mapping template not found",
			Action:  "Check the template name",
			Code:    "MAP003",
		},
	},

	// =========================================================================
	// Export Errors (EXP001-EXP008)
	// =========================================================================
	{
		pattern: "driver unavailable",
		msg: UserMessage{
			Message: "The export target is not available on this system",
			Action:  "Export to the offered fallback format instead",
			Code:    "EXP001",
		},
	},
	{
		pattern: "unknown export format",
		msg: UserMessage{
			Message: "Unknown export format",
			Action:  "Choose one of the listed formats",
			Code:    "EXP002",
		},
	},
	{
		pattern: "no fallback offered",
		msg: UserMessage{
			Message: "No fallback export is pending",
			Action:  "Run the primary export first",
			Code:    "EXP003",
		},
	},
	{
		pattern: "too many exports",
		msg: UserMessage{
			Message: "System is busy with other exports",
			Action:  "Please wait a moment and try again",
			Code:    "EXP004",
		},
	},
	{
		pattern: "permission denied",
		msg: UserMessage{
			Message: "Permission denied writing the output",
			Action:  "Choose a location you can write to",
			Code:    "EXP005",
		},
	},
	{
		pattern: "no space left",
		msg: UserMessage{
			Message: "The disk is full",
			Action:  "Free up space or choose another location",
			Code:    "EXP006",
		},
	},
	{
		pattern: "password authentication failed",
		msg: UserMessage{
			Message: "Database login failed",
			Action:  "Check the database credentials",
			Code:    "EXP007",
		},
	},
	{
		pattern: "table not created by fieldmap",
		msg: UserMessage{
			Message: "A table with that name already exists and was not created by fieldmap",
			Action:  "Choose another export name",
			Code:    "EXP008",
		},
	},

	// =========================================================================
	// Session Errors (SES001-SES004)
	// =========================================================================
	{
		pattern: "session not found",
		msg: UserMessage{
			Message: "Mapping session not found",
			Action:  "The session may have expired. Please start a new one",
			Code:    "SES001",
		},
	},
	{
		pattern: "too many sessions",
		msg: UserMessage{
			Message: "Too many open mapping sessions",
			Action:  "Close unused sessions or try again later",
			Code:    "SES002",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "SES003",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Try a smaller file or check your connection",
			Code:    "SES004",
		},
	},
}

// defaultMessage is returned when no pattern matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// It returns the first pattern match, or the ERR000 fallback.
//
// Example:
//
//	msg := MapError(fmt.Errorf("load: %w", ErrUnreadableFile))
//	// msg.Code == "FILE002"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	errStr := strings.ToLower(err.Error())

	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err matches a known pattern rather than the
// generic ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError pairs a technical error with its user-facing message.
// The original error is preserved for logging and errors.Is.
type UserError struct {
	Technical error       // Original technical error for logging
	User      UserMessage // User-friendly message for display
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError maps err to a UserError. Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
