package jsonrpc

import (
	"testing"
	"github.com/stretchr/testify/require"
)

func TestNormalizeMap(t *testing.T) {
	errObj := Normalize(map[string]interface{}{
		"code":    float64(-32099),
		"message": "boom",
		"data":    "details",
	})
	require.Equal(t, -32099, errObj.Code)
	require.Equal(t, "boom", errObj.Message)
	require.Equal(t, "details", errObj.Data)
}

func TestNormalizeDefaults(t *testing.T) {
	errObj := Normalize(map[string]interface{}{})
	require.Equal(t, CodeApplicationError, errObj.Code)
	require.Equal(t, DefaultErrorMessage, errObj.Message)
	require.Nil(t, errObj.Data)
}

func TestNormalizeCodeCoercion(t *testing.T) {
	errObj := Normalize(map[string]interface{}{"code": "-32001"})
	require.Equal(t, -32001, errObj.Code)

	errObj = Normalize(map[string]interface{}{"code": "not a number"})
	require.Equal(t, CodeApplicationError, errObj.Code)
}

func TestNormalizeError(t *testing.T) {
	errObj := Normalize(&Error{Message: "kaboom"})
	require.Equal(t, CodeApplicationError, errObj.Code)
	require.Equal(t, "kaboom", errObj.Message)

	errObj = Normalize(&Error{Code: -32050})
	require.Equal(t, -32050, errObj.Code)
	require.Equal(t, DefaultErrorMessage, errObj.Message)
}

func TestNormalizeScalar(t *testing.T) {
	errObj := Normalize("something broke")
	require.Equal(t, CodeApplicationError, errObj.Code)
	require.Equal(t, DefaultErrorMessage, errObj.Message)
	require.Equal(t, "something broke", errObj.Data)
}
