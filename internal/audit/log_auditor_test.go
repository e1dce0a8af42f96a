package audit

import (
	"io/ioutil"
	"net/http/httptest"
	"os"
	"path"
	"strings"
	"testing"
	"github.com/stretchr/testify/require"
	"github.com/cyking/JsonRPC/pkg/config"
)

func newTestAuditor(t *testing.T) (Auditor, string) {
	dir, err := ioutil.TempDir("", "jsonrpcd-audit")
	require.NoError(t, err)
	t.Cleanup(func() {
		os.RemoveAll(dir)
	})

	logFile := path.Join(dir, "audit.log")
	auditor, err := NewLogAuditor(&config.LogAuditorConfig{
		LogFile: logFile,
	})
	require.NoError(t, err)
	return auditor, logFile
}

func TestNewLogAuditorRequiresConfig(t *testing.T) {
	_, err := NewLogAuditor(nil)
	require.Error(t, err)
}

func TestLogAuditorRecordsSingle(t *testing.T) {
	auditor, logFile := newTestAuditor(t)

	req := httptest.NewRequest("POST", "/rpc", nil)
	req.Header.Set("x-real-ip", "10.1.2.3")
	body := []byte(`{"jsonrpc":"2.0","method":"addition","params":[3,5],"id":1}`)
	require.NoError(t, auditor.RecordRequest(req, body))

	contents, err := ioutil.ReadFile(logFile)
	require.NoError(t, err)
	require.Contains(t, string(contents), "rpc_method=addition")
	require.Contains(t, string(contents), "10.1.2.3")
}

func TestLogAuditorRecordsBatch(t *testing.T) {
	auditor, logFile := newTestAuditor(t)

	req := httptest.NewRequest("POST", "/rpc", nil)
	body := []byte(`[{"jsonrpc":"2.0","method":"a","params":[],"id":1},{"jsonrpc":"2.0","method":"b","params":[]}]`)
	require.NoError(t, auditor.RecordRequest(req, body))

	contents, err := ioutil.ReadFile(logFile)
	require.NoError(t, err)
	require.Equal(t, 2, strings.Count(string(contents), "batch element"))
}

func TestLogAuditorInvalidBody(t *testing.T) {
	auditor, logFile := newTestAuditor(t)

	req := httptest.NewRequest("POST", "/rpc", nil)
	require.NoError(t, auditor.RecordRequest(req, []byte("{nope")))

	contents, err := ioutil.ReadFile(logFile)
	require.NoError(t, err)
	require.Contains(t, string(contents), "invalid JSON body")
}

func TestRemoteAddr(t *testing.T) {
	req := httptest.NewRequest("POST", "/rpc", nil)
	req.RemoteAddr = "127.0.0.1:5000"
	require.Equal(t, "127.0.0.1:5000", RemoteAddr(req))

	req.Header.Set("x-real-ip", "10.1.2.3")
	require.Equal(t, "10.1.2.3", RemoteAddr(req))
}
