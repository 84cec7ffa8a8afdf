package server

import (
	"github.com/signalzero/symbolstore/internal/errortypes"
)

// Stable error codes surfaced in tool response envelopes.
const (
	CodeInvalidArgument = "invalid_argument"
	CodeNotFound        = "not_found"
	CodeRemoteError     = "remote_error"
	CodeConfigError     = "config_error"
	CodeInternalError   = "internal_error"
)

// errorCode maps an error to the stable code reported to tool callers.
func errorCode(err error) string {
	switch errortypes.TypeOf(err) {
	case errortypes.ErrorTypeInvalidArgument:
		return CodeInvalidArgument
	case errortypes.ErrorTypeNotFound:
		return CodeNotFound
	case errortypes.ErrorTypeRemote:
		return CodeRemoteError
	case errortypes.ErrorTypeConfiguration:
		return CodeConfigError
	default:
		return CodeInternalError
	}
}
