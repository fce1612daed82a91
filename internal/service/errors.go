package service

import "errors"

// ErrorKind classifies service failures so callers can branch without
// string matching: validation errors are never retried, conflicts may be
// retried against a different room or token, transient store errors are
// retried only by the background scheduler.
type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindValidation
	KindConflict
	KindNotFound
	KindTransient
)

// Stable machine-readable codes surfaced to API clients.
const (
	CodeInvalidCodeFormat   = "INVALID_CODE_FORMAT"
	CodeValidationFailed    = "VALIDATION_FAILED"
	CodeSessionNotFound     = "SESSION_NOT_FOUND"
	CodeSessionNotScheduled = "SESSION_NOT_SCHEDULED"
	CodeSessionNotActive    = "SESSION_NOT_ACTIVE"
	CodeSessionFull         = "SESSION_FULL"
	CodeRoomNotFound        = "ROOM_NOT_FOUND"
	CodeRoomFull            = "ROOM_FULL"
	CodeInviteNotFound      = "INVITE_NOT_FOUND"
	CodeInviteExpired       = "INVITE_EXPIRED"
	CodeInviteAlreadyUsed   = "INVITE_ALREADY_USED"
	CodeAlreadyInSession    = "ALREADY_IN_SESSION"
	CodeParticipantNotFound = "PARTICIPANT_NOT_FOUND"
	CodeMessageNotFound     = "MESSAGE_NOT_FOUND"
	CodeDuplicateMessage    = "DUPLICATE_MESSAGE"
	CodeStoreUnavailable    = "STORE_UNAVAILABLE"
	CodeInternal            = "INTERNAL_ERROR"
)

type Error struct {
	Kind    ErrorKind
	Code    string
	Field   string
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.cause != nil {
		return e.cause.Error()
	}
	return e.Code
}

func (e *Error) Unwrap() error { return e.cause }

func Validation(field, message string) *Error {
	return &Error{Kind: KindValidation, Code: CodeValidationFailed, Field: field, Message: message}
}

func ValidationCode(code, field, message string) *Error {
	return &Error{Kind: KindValidation, Code: code, Field: field, Message: message}
}

func Conflict(code, message string) *Error {
	return &Error{Kind: KindConflict, Code: code, Message: message}
}

func NotFound(code, message string) *Error {
	return &Error{Kind: KindNotFound, Code: code, Message: message}
}

func Transient(err error) *Error {
	return &Error{Kind: KindTransient, Code: CodeStoreUnavailable, Message: "store unavailable", cause: err}
}

func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Code: CodeInternal, Message: "internal error", cause: err}
}

// KindOf extracts the kind from any error in the chain, defaulting to
// internal for unclassified errors.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// CodeOf extracts the machine code, defaulting to INTERNAL_ERROR.
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}
