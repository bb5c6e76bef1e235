package decode

import "errors"

// DecodeError is returned when supplied bytes cannot be turned into a waveform
type DecodeError struct {
	Format  Format `json:"format"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Cause   error  `json:"-"`
}

func (e *DecodeError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *DecodeError) Unwrap() error {
	return e.Cause
}

// Decode error codes
const (
	ErrCodeInvalidPayload    = "INVALID_PAYLOAD"
	ErrCodeUnsupportedFormat = "UNSUPPORTED_FORMAT"
	ErrCodeDecoding          = "DECODING_FAILED"
	ErrCodeEmptyAudio        = "EMPTY_AUDIO"
)

// NewDecodeError creates a new decode error
func NewDecodeError(format Format, code, message string, cause error) *DecodeError {
	return &DecodeError{
		Format:  format,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// IsDecodeError reports whether err wraps a *DecodeError
func IsDecodeError(err error) bool {
	var de *DecodeError
	return errors.As(err, &de)
}

// Code returns the decode error code carried by err, or "" when err is not
// a decode failure
func Code(err error) string {
	var de *DecodeError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}
