package jsonrpc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/cyking/JsonRPC/pkg/concurrent"
	"github.com/cyking/JsonRPC/pkg/log"
)

var logger = log.NewLog("jsonrpc/dispatcher")

// Dispatcher executes raw JSON-RPC payloads against a registry. It never
// returns an error to its caller: every failure becomes an error envelope,
// and notifications produce an empty string.
type Dispatcher struct {
	registry           *Registry
	detectOutputErrors bool
	batchConcurrency   int
}

// NewDispatcher wires a dispatcher to a fully-populated registry. When
// detectOutputErrors is set, a handler result that is a map containing an
// "error" key is treated as an application error. batchConcurrency bounds
// how many batch elements run at once; output order is always preserved.
func NewDispatcher(registry *Registry, detectOutputErrors bool, batchConcurrency int) *Dispatcher {
	if batchConcurrency < 1 {
		batchConcurrency = 1
	}

	return &Dispatcher{
		registry:           registry,
		detectOutputErrors: detectOutputErrors,
		batchConcurrency:   batchConcurrency,
	}
}

func (d *Dispatcher) Dispatch(ctx context.Context, body []byte) string {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || !json.Valid(trimmed) {
		return string(ErrorBody(nil, NewError(CodeParseError, "parse error")))
	}

	switch trimmed[0] {
	case '[':
		var elems []json.RawMessage
		if err := json.Unmarshal(trimmed, &elems); err != nil {
			return string(ErrorBody(nil, NewError(CodeParseError, "parse error")))
		}
		return d.dispatchBatch(ctx, elems)
	case '{':
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &fields); err != nil {
			return string(ErrorBody(nil, NewError(CodeParseError, "parse error")))
		}
		// an object keyed 0..n-1 is an array in disguise, dispatch it
		// as a batch
		if elems, ok := sequentialKeys(fields); ok && len(fields) > 0 {
			return d.dispatchBatch(ctx, elems)
		}
		return d.dispatchElement(ctx, trimmed)
	default:
		return string(ErrorBody(nil, NewError(CodeInvalidRequest, "invalid request")))
	}
}

func (d *Dispatcher) dispatchBatch(ctx context.Context, elems []json.RawMessage) string {
	logger.Debug("dispatching batch", log.WithRequestID(ctx, "count", len(elems))...)
	out := make([]string, len(elems))
	if d.batchConcurrency > 1 {
		concurrent.ConsumeIndexes(len(elems), func(i int) {
			out[i] = d.dispatchElement(ctx, elems[i])
		}, d.batchConcurrency)
	} else {
		for i, elem := range elems {
			out[i] = d.dispatchElement(ctx, elem)
		}
	}

	var buf bytes.Buffer
	for _, body := range out {
		if body == "" {
			continue
		}
		if buf.Len() > 0 {
			buf.WriteString(",")
		}
		buf.WriteString(body)
	}

	// a batch of nothing but notifications yields no output at all
	if buf.Len() == 0 {
		return ""
	}

	return "[" + buf.String() + "]"
}

// dispatchElement runs one pre-parsed request through envelope validation,
// resolution, binding and invocation. Requests without an id field are
// notifications: they execute but never produce output.
func (d *Dispatcher) dispatchElement(ctx context.Context, raw json.RawMessage) string {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return string(ErrorBody(nil, NewError(CodeInvalidRequest, "invalid request")))
	}

	var id *json.RawMessage
	if idRaw, ok := fields["id"]; ok {
		id = &idRaw
	}

	var req Request
	if err := json.Unmarshal(raw, &req); err != nil || !validEnvelope(&req, fields) {
		if id == nil {
			return ""
		}
		return string(ErrorBody(id, NewError(CodeInvalidRequest, "invalid request")))
	}
	req.Id = id

	body := d.execute(ctx, &req)
	if req.IsNotification() {
		return ""
	}

	return string(body)
}

func validEnvelope(req *Request, fields map[string]json.RawMessage) bool {
	if req.Jsonrpc != Version {
		return false
	}
	if req.Method == "" {
		return false
	}

	if pRaw, ok := fields["params"]; ok {
		trimmed := bytes.TrimSpace(pRaw)
		if len(trimmed) == 0 || (trimmed[0] != '[' && trimmed[0] != '{') {
			return false
		}
	}

	return true
}

func (d *Dispatcher) execute(ctx context.Context, req *Request) []byte {
	handler, rpcErr := d.registry.Resolve(req.Method)
	if rpcErr != nil {
		return ErrorBody(req.Id, rpcErr)
	}

	supplied, err := decodeParams(req.Params)
	if err != nil {
		return ErrorBody(req.Id, NewError(CodeInvalidParams, "invalid params"))
	}

	required, max := arity(handler.Params)
	args, rpcErr := bindArgs(supplied, handler.Params, required, max)
	if rpcErr != nil {
		return ErrorBody(req.Id, rpcErr)
	}

	result, err := d.invoke(ctx, req.Method, handler, args)
	if err != nil {
		var appErr *Error
		if errors.As(err, &appErr) {
			// structured application errors respond under a null id,
			// matching the legacy contract
			return ErrorBody(nil, Normalize(appErr))
		}
		return ErrorBody(req.Id, &Error{
			Code:    CodeServerError,
			Message: "server error",
			Data:    err.Error(),
		})
	}

	if d.detectOutputErrors {
		if m, ok := result.(map[string]interface{}); ok {
			if rawErr, found := m["error"]; found {
				return ErrorBody(nil, Normalize(rawErr))
			}
		}
	}

	serialized, err := json.Marshal(result)
	if err != nil {
		logger.Error("failed to serialize handler result", log.WithRequestID(ctx, "method", req.Method, "err", err)...)
		return []byte(InternalError)
	}
	body, err := ResultBody(req.Id, serialized)
	if err != nil {
		return []byte(InternalError)
	}

	return body
}

func (d *Dispatcher) invoke(ctx context.Context, method string, h *Handler, args []interface{}) (result interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("handler panicked", log.WithRequestID(ctx, "method", method, "err", r)...)
			err = fmt.Errorf("%v", r)
		}
	}()

	return h.Fn(ctx, args)
}
