package jsonrpc

import (
	"encoding/json"
	)

const Version = "2.0"

// InternalError is the canned body sent when response serialization itself
// fails and nothing better can be said.
const InternalError = "{\"jsonrpc\":\"2.0\",\"id\":null,\"error\":{\"code\":-32603,\"message\":\"internal error\"}}"

var nullID = json.RawMessage("null")

// Request is the JSON-RPC 2.0 request envelope. Id is a pointer so that an
// absent id (a notification) is distinguishable from an explicit "id":null.
type Request struct {
	Jsonrpc string           `json:"jsonrpc"`
	Method  string           `json:"method"`
	Params  json.RawMessage  `json:"params,omitempty"`
	Id      *json.RawMessage `json:"id,omitempty"`
}

func (r *Request) IsNotification() bool {
	return r.Id == nil
}

type Response struct {
	Jsonrpc string          `json:"jsonrpc"`
	Id      json.RawMessage `json:"id"`
	Result  json.RawMessage `json:"result"`
}

type ErrorResponse struct {
	Jsonrpc string          `json:"jsonrpc"`
	Id      json.RawMessage `json:"id"`
	Error   *Error          `json:"error"`
}

// ResultBody builds a success envelope around an already-serialized result.
func ResultBody(id *json.RawMessage, result json.RawMessage) ([]byte, error) {
	return json.Marshal(&Response{
		Jsonrpc: Version,
		Id:      echoID(id),
		Result:  result,
	})
}

// ErrorBody builds an error envelope. A nil id serializes as "id":null.
func ErrorBody(id *json.RawMessage, errObj *Error) []byte {
	body, err := json.Marshal(&ErrorResponse{
		Jsonrpc: Version,
		Id:      echoID(id),
		Error:   errObj,
	})
	if err != nil {
		// error data was unserializable; drop it rather than the response
		errObj.Data = nil
		body, err = json.Marshal(&ErrorResponse{
			Jsonrpc: Version,
			Id:      echoID(id),
			Error:   errObj,
		})
		if err != nil {
			return []byte(InternalError)
		}
	}

	return body
}

func echoID(id *json.RawMessage) json.RawMessage {
	if id == nil {
		return nullID
	}

	return *id
}
