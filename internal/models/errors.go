package models

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind tags a pipeline failure so callers can branch on the stage that
// produced it instead of matching error strings.
type ErrorKind string

const (
	ErrKindValidation     ErrorKind = "validation"      // Policy violation, raised before any I/O
	ErrKindNotFound       ErrorKind = "not_found"       // Object key absent in the store
	ErrKindContentInvalid ErrorKind = "content_invalid" // Bytes do not match the claimed MIME family
	ErrKindInfected       ErrorKind = "infected"        // Scanner reported a threat
	ErrKindStorage        ErrorKind = "storage"         // Object store failure
	ErrKindProcessing     ErrorKind = "processing"      // Any other pipeline failure
)

// UploadError is the typed failure returned by the upload pipeline.
type UploadError struct {
	Kind    ErrorKind
	Message string
	Threats []string // Set when Kind is ErrKindInfected
	Err     error
}

func (e *UploadError) Error() string {
	msg := e.Message
	if len(e.Threats) > 0 {
		msg += ": " + strings.Join(e.Threats, ", ")
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *UploadError) Unwrap() error { return e.Err }

func NewValidationError(format string, args ...any) *UploadError {
	return &UploadError{Kind: ErrKindValidation, Message: fmt.Sprintf(format, args...)}
}

func NewNotFoundError(objectKey string) *UploadError {
	return &UploadError{Kind: ErrKindNotFound, Message: fmt.Sprintf("object %s not found", objectKey)}
}

func NewContentInvalidError(mimeType string) *UploadError {
	return &UploadError{Kind: ErrKindContentInvalid, Message: fmt.Sprintf("content does not match claimed type %s", mimeType)}
}

func NewInfectedError(threats []string) *UploadError {
	return &UploadError{Kind: ErrKindInfected, Message: "file failed malware scan", Threats: threats}
}

func NewStorageError(msg string, cause error) *UploadError {
	return &UploadError{Kind: ErrKindStorage, Message: msg, Err: cause}
}

func NewProcessingError(msg string, cause error) *UploadError {
	return &UploadError{Kind: ErrKindProcessing, Message: msg, Err: cause}
}

// ErrorKindOf extracts the kind from an error chain; unknown errors map to
// ErrKindProcessing.
func ErrorKindOf(err error) ErrorKind {
	var ue *UploadError
	if errors.As(err, &ue) {
		return ue.Kind
	}
	return ErrKindProcessing
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind ErrorKind) bool {
	return err != nil && ErrorKindOf(err) == kind
}
