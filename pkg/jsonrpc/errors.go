package jsonrpc

import (
	"strconv"
)

const (
	CodeParseError       = -32700
	CodeInvalidRequest   = -32600
	CodeMethodNotFound   = -32601
	CodeInvalidParams    = -32602
	CodeInternalError    = -32603
	CodeServerError      = -32000
	CodeApplicationError = -32500
)

const DefaultErrorMessage = "application error detected"

// Error is the JSON-RPC error object. Handlers may return one directly to
// signal a structured application error; the dispatcher responds with it
// under "id":null.
type Error struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func (e *Error) Error() string {
	return e.Message
}

func NewError(code int, message string) *Error {
	return &Error{Code: code, Message: message}
}

func NewAppError(code int, message string, data interface{}) *Error {
	return &Error{Code: code, Message: message, Data: data}
}

// Normalize converts an ad-hoc error description into a well-formed error
// object. Missing codes default to the application error code and missing
// messages to a generic string; data passes through verbatim.
func Normalize(raw interface{}) *Error {
	switch val := raw.(type) {
	case *Error:
		out := &Error{Code: val.Code, Message: val.Message, Data: val.Data}
		if out.Code == 0 {
			out.Code = CodeApplicationError
		}
		if out.Message == "" {
			out.Message = DefaultErrorMessage
		}
		return out
	case map[string]interface{}:
		out := &Error{
			Code:    CodeApplicationError,
			Message: DefaultErrorMessage,
		}
		if code, ok := asInt(val["code"]); ok {
			out.Code = code
		}
		if msg, ok := val["message"].(string); ok {
			out.Message = msg
		}
		if data, ok := val["data"]; ok {
			out.Data = data
		}
		return out
	default:
		out := &Error{
			Code:    CodeApplicationError,
			Message: DefaultErrorMessage,
		}
		if raw != nil {
			out.Data = raw
		}
		return out
	}
}

func asInt(raw interface{}) (int, bool) {
	switch val := raw.(type) {
	case float64:
		return int(val), true
	case int:
		return val, true
	case int64:
		return int(val), true
	case string:
		parsed, err := strconv.Atoi(val)
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}
