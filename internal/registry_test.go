package internal

import (
	"context"
	"testing"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"github.com/cyking/JsonRPC/pkg/jsonrpc"
)

func TestDefaultRegistry(t *testing.T) {
	d := jsonrpc.NewDispatcher(DefaultRegistry(), false, 1)

	out := d.Dispatch(context.Background(), []byte(`{"jsonrpc":"2.0","method":"addition","params":[3,5],"id":1}`))
	require.Equal(t, `{"jsonrpc":"2.0","id":1,"result":8}`, out)

	out = d.Dispatch(context.Background(), []byte(`{"jsonrpc":"2.0","method":"subtract","params":{"subtrahend":3,"minuend":10},"id":2}`))
	require.Equal(t, float64(7), gjson.Get(out, "result").Float())

	out = d.Dispatch(context.Background(), []byte(`{"jsonrpc":"2.0","method":"echo","params":["hi"],"id":3}`))
	require.Equal(t, "hi", gjson.Get(out, "result").String())

	out = d.Dispatch(context.Background(), []byte(`{"jsonrpc":"2.0","method":"random","params":{"start":1,"end":10},"id":4}`))
	result := gjson.Get(out, "result").Int()
	require.GreaterOrEqual(t, result, int64(1))
	require.Less(t, result, int64(10))
}

func TestDefaultRegistryRandomBadRange(t *testing.T) {
	d := jsonrpc.NewDispatcher(DefaultRegistry(), false, 1)

	out := d.Dispatch(context.Background(), []byte(`{"jsonrpc":"2.0","method":"random","params":[10,1],"id":5}`))
	require.Equal(t, int64(jsonrpc.CodeApplicationError), gjson.Get(out, "error.code").Int())
	require.Equal(t, "null", gjson.Get(out, "id").Raw)
}

func TestDefaultRegistryBadArgumentType(t *testing.T) {
	d := jsonrpc.NewDispatcher(DefaultRegistry(), false, 1)

	out := d.Dispatch(context.Background(), []byte(`{"jsonrpc":"2.0","method":"addition","params":["a","b"],"id":6}`))
	require.Equal(t, int64(jsonrpc.CodeServerError), gjson.Get(out, "error.code").Int())
}
