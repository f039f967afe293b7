package agent

import "errors"

// Outcome codes for failed calls. These travel inside structured error
// results so callers always receive a well-formed response body.
const (
	CodeUnreachable      = "unreachable"
	CodeTimeout          = "timeout"
	CodeMalformedPayload = "malformed_payload"
	CodeHandlerFault     = "handler_fault"
)

type CallError struct {
	Code   string
	Detail string
}

func (e *CallError) Error() string {
	if e.Detail == "" {
		return e.Code
	}
	return e.Code + ": " + e.Detail
}

func IsTimeout(err error) bool     { return hasCode(err, CodeTimeout) }
func IsUnreachable(err error) bool { return hasCode(err, CodeUnreachable) }

func hasCode(err error, code string) bool {
	var ce *CallError
	if errors.As(err, &ce) {
		return ce.Code == code
	}
	return false
}

// ErrorResult is the delivered form of a failure: handlers and the runtime
// fulfil waits with this instead of letting transport errors escape.
func ErrorResult(code string, detail string) map[string]interface{} {
	return map[string]interface{}{
		"error": detail,
		"code":  code,
	}
}

// IsErrorResult reports whether a delivered value is an error result.
func IsErrorResult(v interface{}) bool {
	m, ok := v.(map[string]interface{})
	if !ok {
		return false
	}
	_, hasErr := m["error"]
	return hasErr
}
