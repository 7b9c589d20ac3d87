package errors

import (
	"errors"
	"net/http"
)

// default error is internal service error at handler level
// if error has different status code use ErrorWithStatusCode.
// Code is the stable numeric code clients key their copy on;
// it never changes once shipped.
type ErrorWithStatusCode struct {
	Message    string
	StatusCode int
	Code       int
}

func (e *ErrorWithStatusCode) Error() string {
	return e.Message
}

// Stable app codes. Values are part of the client contract.
const (
	CodeInternal          = -1
	CodeInvalidCreds      = 3
	CodeEmailNotConfirmed = 4
	CodeUnauthenticated   = 9
	CodePrivateDocument   = 181
	CodeAuditingDisabled  = 182
	CodeSelfAudit         = 183
	CodeNotOwner          = 184
	CodeDisposableEmail   = 397
	CodeNotFound          = 404
	CodeThrottled         = 871
	CodeBadVisibility     = 993
	CodeMalformedAudit    = 1238
)

func New(message string, statusCode, code int) *ErrorWithStatusCode {
	return &ErrorWithStatusCode{Message: message, StatusCode: statusCode, Code: code}
}

func NotFound(message string) *ErrorWithStatusCode {
	return &ErrorWithStatusCode{Message: message, StatusCode: http.StatusNotFound, Code: CodeNotFound}
}

func IsNotFound(err error) bool {
	var e *ErrorWithStatusCode
	if errors.As(err, &e) {
		return e.StatusCode == http.StatusNotFound
	}
	return false
}

// StatusAndCode maps any error to the (status, code) pair written to clients.
// Untagged errors are internal: generic 500, no detail leaks.
func StatusAndCode(err error) (int, int) {
	var e *ErrorWithStatusCode
	if errors.As(err, &e) {
		code := e.Code
		if code == 0 {
			code = CodeInternal
		}
		return e.StatusCode, code
	}
	return http.StatusInternalServerError, CodeInternal
}
