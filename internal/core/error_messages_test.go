package core

import (
	"errors"
	"fmt"
	"testing"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantCode    string
		wantMessage string
	}{
		{
			name:        "nil error returns empty",
			err:         nil,
			wantCode:    "",
			wantMessage: "",
		},
		{
			name:        "empty input wins over unreadable file",
			err:         fmt.Errorf("%w: empty input", ErrUnreadableFile),
			wantCode:    "FILE001",
			wantMessage: "The file is empty",
		},
		{
			name:        "unreadable file maps correctly",
			err:         fmt.Errorf("load survey.csv: %w: utf-8: invalid utf-8 at byte 3", ErrUnreadableFile),
			wantCode:    "FILE002",
			wantMessage: "The file could not be read as CSV",
		},
		{
			name:        "file too large maps correctly",
			err:         fmt.Errorf("%w: limit is 10 bytes", ErrFileTooLarge),
			wantCode:    "FILE003",
			wantMessage: "File exceeds the maximum size limit",
		},
		{
			name:        "unknown field maps correctly",
			err:         fmt.Errorf("%w: %q", ErrUnknownField, "Nope"),
			wantCode:    "MAP001",
			wantMessage: "The field is not part of the target schema",
		},
		{
			name:        "driver unavailable wins over connection details",
			err:         fmt.Errorf("%w: dial tcp 127.0.0.1:5432: connection refused", ErrDriverUnavailable),
			wantCode:    "EXP001",
			wantMessage: "The export target is not available on this system",
		},
		{
			name:        "permission denied maps correctly",
			err:         errors.New("open /root/out.xlsx: permission denied"),
			wantCode:    "EXP005",
			wantMessage: "Permission denied writing the output",
		},
		{
			name:        "session not found maps correctly",
			err:         ErrSessionNotFound,
			wantCode:    "SES001",
			wantMessage: "Mapping session not found",
		},
		{
			name:        "unknown error returns default",
			err:         errors.New("some random internal error"),
			wantCode:    "ERR000",
			wantMessage: "An unexpected error occurred",
		},
		{
			name:        "case insensitive matching",
			err:         errors.New("UNKNOWN EXPORT FORMAT parquet"),
			wantCode:    "EXP002",
			wantMessage: "Unknown export format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			if got.Code != tt.wantCode {
				t.Errorf("MapError() code = %q, want %q", got.Code, tt.wantCode)
			}
			if got.Message != tt.wantMessage {
				t.Errorf("MapError() message = %q, want %q", got.Message, tt.wantMessage)
			}
		})
	}
}

func TestMapError_EverySentinelIsUserFacing(t *testing.T) {
	sentinels := []error{
		ErrUnreadableFile, ErrFileTooLarge, ErrUnknownField, ErrColumnOutOfRange,
		ErrNoTable, ErrDriverUnavailable, ErrUnknownFormat, ErrNoFallback, ErrTableNotOwned,
		ErrSessionNotFound, ErrTooManySessions, ErrTemplateNotFound, ErrTooManyExports,
	}
	for _, err := range sentinels {
		if !IsUserFacing(err) {
			t.Errorf("sentinel %q maps to ERR000", err)
		}
	}
}

func TestFormatUserError(t *testing.T) {
	result := FormatUserError(ErrNoTable)

	expected := "No file has been loaded (Code: FILE004). Load a CSV file first"
	if result != expected {
		t.Errorf("FormatUserError() = %q, want %q", result, expected)
	}
}

func TestIsUserFacing(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "nil error is not user facing",
			err:  nil,
			want: false,
		},
		{
			name: "known error is user facing",
			err:  errors.New("column out of range: 9"),
			want: true,
		},
		{
			name: "unknown error is not user facing",
			err:  errors.New("random internal error xyz"),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IsUserFacing(tt.err)
			if got != tt.want {
				t.Errorf("IsUserFacing() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewUserError(t *testing.T) {
	t.Run("nil error returns nil", func(t *testing.T) {
		if got := NewUserError(nil); got != nil {
			t.Errorf("NewUserError(nil) = %v, want nil", got)
		}
	})

	t.Run("wraps technical error with user message", func(t *testing.T) {
		techErr := fmt.Errorf("set: %w", ErrUnknownField)
		userErr := NewUserError(techErr)

		if userErr.Error() != "The field is not part of the target schema" {
			t.Errorf("Error() = %q, want user message", userErr.Error())
		}

		if !errors.Is(userErr, ErrUnknownField) {
			t.Error("Unwrap() should return original error")
		}
	})
}
