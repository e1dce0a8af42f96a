package audit

import (
	"github.com/inconshreveable/log15"
	"github.com/cyking/JsonRPC/pkg/config"
	"encoding/json"
	"bytes"
	"github.com/pkg/errors"
	"net/http"
	"github.com/cyking/JsonRPC/pkg/jsonrpc"
	"github.com/cyking/JsonRPC/pkg/log"
)

// LogAuditor writes one logfmt line per inbound RPC payload to a dedicated
// audit file.
type LogAuditor struct {
	logger log15.Logger
}

func NewLogAuditor(cfg *config.LogAuditorConfig) (Auditor, error) {
	if cfg == nil {
		return nil, errors.New("no log auditor config defined")
	}

	logger := log15.New()
	hdlr, err := log15.FileHandler(cfg.LogFile, log15.LogfmtFormat())
	if err != nil {
		return nil, err
	}
	logger.SetHandler(hdlr)

	return &LogAuditor{
		logger: logger,
	}, nil
}

func (l *LogAuditor) RecordRequest(req *http.Request, body []byte) error {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		return l.recordBatch(req, trimmed)
	}

	return l.recordSingle(req, trimmed)
}

func (l *LogAuditor) recordSingle(req *http.Request, body []byte) error {
	var rpcReq jsonrpc.Request
	err := json.Unmarshal(body, &rpcReq)
	if err != nil {
		l.logger.Error(
			"received request with invalid JSON body",
			mergeLogKeys(req)...,
		)
		return nil
	}

	l.logger.Info(
		"received JSON-RPC request",
		mergeLogKeys(req, "rpc_method", rpcReq.Method, "rpc_params", string(rpcReq.Params), "notification", rpcReq.IsNotification())...,
	)
	return nil
}

func (l *LogAuditor) recordBatch(req *http.Request, body []byte) error {
	var rpcReqs []jsonrpc.Request
	err := json.Unmarshal(body, &rpcReqs)
	if err != nil {
		l.logger.Error(
			"received batch with invalid JSON body",
			mergeLogKeys(req)...,
		)
		return nil
	}

	for _, rpcReq := range rpcReqs {
		l.logger.Info(
			"received JSON-RPC batch element",
			mergeLogKeys(req, "rpc_method", rpcReq.Method, "rpc_params", string(rpcReq.Params), "batch_size", len(rpcReqs))...,
		)
	}
	return nil
}

func mergeLogKeys(req *http.Request, keys ... interface{}) []interface{} {
	defaults := []interface{}{
		"remote_addr",
		RemoteAddr(req),
		"user_agent",
		req.Header.Get("user-agent"),
	}

	return log.WithRequestID(req.Context(), append(defaults, keys...)...)
}

// RemoteAddr prefers the x-real-ip header set by fronting proxies over the
// socket address.
func RemoteAddr(req *http.Request) string {
	realIp := req.Header.Get("x-real-ip")
	if realIp != "" {
		return realIp
	}

	return req.RemoteAddr
}
