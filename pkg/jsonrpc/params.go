package jsonrpc

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Param describes one declared handler parameter. Parameters without a
// default are required.
type Param struct {
	Name       string
	HasDefault bool
	Default    interface{}
}

func RequiredParam(name string) Param {
	return Param{Name: name}
}

func OptionalParam(name string, def interface{}) Param {
	return Param{Name: name, HasDefault: true, Default: def}
}

func arity(params []Param) (required int, max int) {
	for _, p := range params {
		if !p.HasDefault {
			required++
		}
	}

	return required, len(params)
}

// sequentialKeys reports whether the keys of m are exactly "0".."n-1" and, if
// so, returns the values in index order. This single rule decides both batch
// detection for object-shaped payloads and positional detection for
// object-shaped params.
func sequentialKeys(m map[string]json.RawMessage) ([]json.RawMessage, bool) {
	out := make([]json.RawMessage, len(m))
	for key, val := range m {
		idx, err := strconv.Atoi(key)
		if err != nil || idx < 0 || idx >= len(m) {
			return nil, false
		}
		out[idx] = val
	}

	return out, true
}

type suppliedParams struct {
	positional []interface{}
	named      map[string]interface{}
}

func (s *suppliedParams) count() int {
	if s.named != nil {
		return len(s.named)
	}

	return len(s.positional)
}

// decodeParams classifies a raw params value as positional or named. JSON
// arrays are positional; objects whose keys are exactly 0..n-1 are treated as
// positional too, any other object is named.
func decodeParams(raw json.RawMessage) (*suppliedParams, error) {
	if len(raw) == 0 {
		return &suppliedParams{}, nil
	}

	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err == nil {
		positional, err := decodeEach(elems)
		if err != nil {
			return nil, err
		}
		return &suppliedParams{positional: positional}, nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}

	if elems, ok := sequentialKeys(fields); ok && len(fields) > 0 {
		positional, err := decodeEach(elems)
		if err != nil {
			return nil, err
		}
		return &suppliedParams{positional: positional}, nil
	}

	named := make(map[string]interface{}, len(fields))
	for key, val := range fields {
		var decoded interface{}
		if err := json.Unmarshal(val, &decoded); err != nil {
			return nil, err
		}
		named[key] = decoded
	}

	return &suppliedParams{named: named}, nil
}

func decodeEach(elems []json.RawMessage) ([]interface{}, error) {
	out := make([]interface{}, len(elems))
	for i, elem := range elems {
		var decoded interface{}
		if err := json.Unmarshal(elem, &decoded); err != nil {
			return nil, err
		}
		out[i] = decoded
	}

	return out, nil
}

// bindArgs maps supplied params onto the declared parameter list, producing
// invocation arguments in declared order. Positional params are applied
// as-is; named params are matched by name with defaults filled in and
// unknown keys ignored.
func bindArgs(supplied *suppliedParams, decl []Param, required int, max int) ([]interface{}, *Error) {
	count := supplied.count()
	if count < required {
		return nil, NewError(CodeInvalidParams, "too few arguments")
	}
	if count > max {
		return nil, NewError(CodeInvalidParams, "too many arguments")
	}

	if supplied.named == nil {
		return supplied.positional, nil
	}

	args := make([]interface{}, 0, len(decl))
	for _, param := range decl {
		if val, ok := supplied.named[param.Name]; ok {
			args = append(args, val)
			continue
		}
		if param.HasDefault {
			args = append(args, param.Default)
			continue
		}
		return nil, NewError(CodeInvalidParams, fmt.Sprintf("missing argument: %s", param.Name))
	}

	return args, nil
}
