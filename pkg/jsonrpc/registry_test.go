package jsonrpc

import (
	"context"
	"testing"
	"github.com/stretchr/testify/require"
)

func constHandler(out interface{}) *Handler {
	return NewHandler(func(ctx context.Context, args []interface{}) (interface{}, error) {
		return out, nil
	})
}

func callHandler(t *testing.T, h *Handler) interface{} {
	out, err := h.Fn(context.Background(), nil)
	require.NoError(t, err)
	return out
}

func TestRegistryRegisterLastWriteWins(t *testing.T) {
	reg := NewRegistry()
	reg.Register("proc", constHandler("first"))
	reg.Register("proc", constHandler("second"))

	h, rpcErr := reg.Resolve("proc")
	require.Nil(t, rpcErr)
	require.Equal(t, "second", callHandler(t, h))
}

func TestRegistryResolveOrder(t *testing.T) {
	reg := NewRegistry()
	reg.Register("proc", constHandler("registered"))
	reg.Bind("proc", InstanceRef(MethodMap{"proc": constHandler("bound")}))
	reg.Attach(MethodMap{"proc": constHandler("attached")})

	h, rpcErr := reg.Resolve("proc")
	require.Nil(t, rpcErr)
	require.Equal(t, "registered", callHandler(t, h))
}

func TestRegistryBind(t *testing.T) {
	reg := NewRegistry()
	reg.Bind("proc", InstanceRef(MethodMap{"proc": constHandler("bound")}))

	h, rpcErr := reg.Resolve("proc")
	require.Nil(t, rpcErr)
	require.Equal(t, "bound", callHandler(t, h))
}

func TestRegistryBindMethodName(t *testing.T) {
	reg := NewRegistry()
	reg.Bind("alias", InstanceRef(MethodMap{"real": constHandler("renamed")}), "real")

	h, rpcErr := reg.Resolve("alias")
	require.Nil(t, rpcErr)
	require.Equal(t, "renamed", callHandler(t, h))
}

type countingReceiver struct {
	calls int
}

func (c *countingReceiver) RPCHandler(method string) (*Handler, bool) {
	if method != "count" {
		return nil, false
	}

	c.calls++
	calls := c.calls
	return constHandler(calls), true
}

func TestRegistryFactoryRefBuildsFreshReceiver(t *testing.T) {
	reg := NewRegistry()
	built := 0
	reg.Bind("count", FactoryRef(func() Receiver {
		built++
		return &countingReceiver{}
	}))

	for i := 0; i < 3; i++ {
		h, rpcErr := reg.Resolve("count")
		require.Nil(t, rpcErr)
		// each resolution sees a fresh instance
		require.Equal(t, 1, callHandler(t, h))
	}
	require.Equal(t, 3, built)
}

func TestRegistryInstanceRefShared(t *testing.T) {
	reg := NewRegistry()
	shared := &countingReceiver{}
	reg.Bind("count", InstanceRef(shared))

	h, rpcErr := reg.Resolve("count")
	require.Nil(t, rpcErr)
	require.Equal(t, 1, callHandler(t, h))

	h, rpcErr = reg.Resolve("count")
	require.Nil(t, rpcErr)
	require.Equal(t, 2, callHandler(t, h))
}

func TestRegistryAttachOrder(t *testing.T) {
	reg := NewRegistry()
	reg.Attach(MethodMap{"proc": constHandler("first")})
	reg.Attach(MethodMap{"proc": constHandler("second")})

	h, rpcErr := reg.Resolve("proc")
	require.Nil(t, rpcErr)
	require.Equal(t, "first", callHandler(t, h))
}

func TestRegistryResolveMiss(t *testing.T) {
	reg := NewRegistry()
	_, rpcErr := reg.Resolve("nope")
	require.NotNil(t, rpcErr)
	require.Equal(t, CodeMethodNotFound, rpcErr.Code)
}
