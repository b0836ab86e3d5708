package services

import (
	"errors"
	"fmt"
)

// ErrDocxUnlicensed means unioffice has no license loaded. It is a server
// fault, never the client's.
var ErrDocxUnlicensed = errors.New("unioffice license required")

type RejectReason string

const (
	ReasonInvalidFileType RejectReason = "invalid_file_type"
	ReasonWordCount       RejectReason = "word_count"
	ReasonUnreadable      RejectReason = "unreadable_document"
	ReasonBadChapters     RejectReason = "bad_chapters"
	ReasonEmptyMessage    RejectReason = "empty_message"
	ReasonMissingFile     RejectReason = "missing_file"
	ReasonTooLarge        RejectReason = "too_large"
)

// ClientInputError is a rejection the caller can fix by changing the request.
type ClientInputError struct {
	Reason RejectReason
	Detail string
}

func (e *ClientInputError) Error() string {
	return e.Detail
}

type AuthReason string

const (
	AuthMissing AuthReason = "missing"
	AuthScheme  AuthReason = "scheme"
	AuthToken   AuthReason = "token"
)

// AuthError is returned by the bearer gate.
type AuthError struct {
	Reason AuthReason
}

func (e *AuthError) Error() string {
	switch e.Reason {
	case AuthMissing:
		return "Not authenticated"
	case AuthScheme:
		return "Invalid authentication scheme."
	default:
		return "Invalid or expired token."
	}
}

// ExtractionError means the upload is not a readable Word package.
type ExtractionError struct {
	Err error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract docx text: %v", e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// GatewayError wraps any failure talking to the model provider.
type GatewayError struct {
	Op  string
	Err error
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("openai %s: %v", e.Op, e.Err)
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}
