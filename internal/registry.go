package internal

import (
	"context"
	"fmt"
	"math/rand"
	"github.com/cyking/JsonRPC/pkg/jsonrpc"
)

// DefaultRegistry builds the procedure table the daemon ships with. It is
// deliberately small; real deployments embed the packages and register their
// own handlers.
func DefaultRegistry() *jsonrpc.Registry {
	reg := jsonrpc.NewRegistry()

	reg.Register("addition", jsonrpc.NewHandler(
		func(ctx context.Context, args []interface{}) (interface{}, error) {
			a, err := asNumber(args[0])
			if err != nil {
				return nil, err
			}
			b, err := asNumber(args[1])
			if err != nil {
				return nil, err
			}
			return a + b, nil
		},
		jsonrpc.RequiredParam("a"),
		jsonrpc.RequiredParam("b"),
	))

	reg.Register("subtract", jsonrpc.NewHandler(
		func(ctx context.Context, args []interface{}) (interface{}, error) {
			a, err := asNumber(args[0])
			if err != nil {
				return nil, err
			}
			b, err := asNumber(args[1])
			if err != nil {
				return nil, err
			}
			return a - b, nil
		},
		jsonrpc.RequiredParam("minuend"),
		jsonrpc.RequiredParam("subtrahend"),
	))

	util := jsonrpc.MethodMap{
		"echo": jsonrpc.NewHandler(
			func(ctx context.Context, args []interface{}) (interface{}, error) {
				return args[0], nil
			},
			jsonrpc.RequiredParam("message"),
		),
		"random": jsonrpc.NewHandler(
			func(ctx context.Context, args []interface{}) (interface{}, error) {
				start, err := asNumber(args[0])
				if err != nil {
					return nil, err
				}
				end, err := asNumber(args[1])
				if err != nil {
					return nil, err
				}
				if end <= start {
					return nil, jsonrpc.NewAppError(jsonrpc.CodeApplicationError, "end must be greater than start", nil)
				}
				return int(start) + rand.Intn(int(end-start)), nil
			},
			jsonrpc.RequiredParam("start"),
			jsonrpc.RequiredParam("end"),
		),
	}
	reg.Attach(util)

	return reg
}

func asNumber(arg interface{}) (float64, error) {
	switch val := arg.(type) {
	case float64:
		return val, nil
	case int:
		return float64(val), nil
	default:
		return 0, fmt.Errorf("expected a number, got %T", arg)
	}
}
