package server

import (
	"github.com/cyking/JsonRPC/pkg/log"
	"github.com/cyking/JsonRPC/pkg/config"
	"github.com/cyking/JsonRPC/pkg/jsonrpc"
	"net/http"
	"fmt"
	"context"
	"strconv"
	"strings"
	"time"
	"io/ioutil"
	"encoding/json"
	"github.com/cyking/JsonRPC/internal/audit"
	"github.com/cyking/JsonRPC/internal/cache"
	"github.com/cyking/JsonRPC/internal/gate"
	"github.com/satori/go.uuid"
	"github.com/tidwall/gjson"
)

var logger = log.NewLog("server")

// Server is the HTTP transport collaborator: it owns the listener, the gate
// chain and content negotiation, and hands validated payloads to the
// dispatcher.
type Server struct {
	config     *config.Config
	dispatcher *jsonrpc.Dispatcher
	gatekeeper *gate.Gatekeeper
	auditor    audit.Auditor
	store      *cache.ResultStore
	quitChan   chan bool
	errChan    chan error
}

func NewServer(dispatcher *jsonrpc.Dispatcher, gatekeeper *gate.Gatekeeper, auditor audit.Auditor, store *cache.ResultStore, cfg *config.Config) *Server {
	return &Server{
		config:     cfg,
		dispatcher: dispatcher,
		gatekeeper: gatekeeper,
		auditor:    auditor,
		store:      store,
		quitChan:   make(chan bool),
		errChan:    make(chan error),
	}
}

// Handler exposes the RPC mux, mainly so tests can drive the server through
// httptest without binding a port.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(fmt.Sprintf("/%s", s.config.RPCPath), s.handleRPC)
	return mux
}

func (s *Server) Start() error {
	srv := new(http.Server)
	srv.Addr = fmt.Sprintf(":%d", s.config.RPCPort)
	srv.Handler = s.Handler()

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("rpc server error", "port", s.config.RPCPort, "err", err)
		}
	}()

	go func() {
		<-s.quitChan
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.errChan <- srv.Shutdown(ctx)
	}()

	logger.Info("started", "port", s.config.RPCPort, "path", s.config.RPCPath)
	return nil
}

func (s *Server) Stop() error {
	s.quitChan <- true
	return <-s.errChan
}

func (s *Server) handleRPC(res http.ResponseWriter, req *http.Request) {
	ctx := context.WithValue(req.Context(), log.RequestIDKey, uuid.NewV4().String())
	req = req.WithContext(ctx)
	start := time.Now()

	if req.Method != "POST" {
		logger.Info("rejected non-POST request", log.WithRequestID(ctx)...)
		rejectedTotal.WithLabelValues(strconv.Itoa(http.StatusMethodNotAllowed)).Inc()
		res.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	contentType := req.Header.Get("Content-Type")
	if contentType != "" && !strings.HasPrefix(contentType, "application/json") {
		logger.Info("rejected request with bad content type", log.WithRequestID(ctx, "content_type", contentType)...)
		rejectedTotal.WithLabelValues(strconv.Itoa(http.StatusUnsupportedMediaType)).Inc()
		res.WriteHeader(http.StatusUnsupportedMediaType)
		return
	}

	if status := s.gatekeeper.Check(req); status != 0 {
		rejectedTotal.WithLabelValues(strconv.Itoa(status)).Inc()
		res.WriteHeader(status)
		return
	}

	defer req.Body.Close()
	body, err := ioutil.ReadAll(req.Body)
	if err != nil {
		logger.Error("failed to read request body", log.WithRequestID(ctx, "err", err)...)
		res.WriteHeader(http.StatusInternalServerError)
		return
	}

	if err := s.auditor.RecordRequest(req, body); err != nil {
		logger.Error("failed to record audit log for request", log.WithRequestID(ctx, "err", err)...)
	}

	method := methodLabel(body)
	requestsTotal.WithLabelValues(method).Inc()

	if s.serveCached(ctx, res, body, method) {
		logger.Info("served request from result cache", log.WithRequestID(ctx, "method", method, "elapsed", time.Since(start))...)
		return
	}

	out := s.dispatcher.Dispatch(ctx, body)
	s.storeResult(ctx, body, method, out)
	s.writeResponse(res, method, out)
	logger.Info("finished handling JSON-RPC request", log.WithRequestID(ctx, "method", method, "elapsed", time.Since(start))...)
}

// serveCached answers single cacheable calls straight from the result store.
// The cached result is re-enveloped under the caller's id.
func (s *Server) serveCached(ctx context.Context, res http.ResponseWriter, body []byte, method string) bool {
	if s.store == nil || method == "batch" || !s.store.Cacheable(method) {
		return false
	}

	var rpcReq jsonrpc.Request
	if err := json.Unmarshal(body, &rpcReq); err != nil || rpcReq.IsNotification() {
		return false
	}

	cached, err := s.store.Lookup(rpcReq.Method, rpcReq.Params)
	if err != nil {
		logger.Error("result cache lookup failed", log.WithRequestID(ctx, "method", method, "err", err)...)
		return false
	}
	if cached == nil {
		return false
	}

	envelope, err := jsonrpc.ResultBody(rpcReq.Id, cached)
	if err != nil {
		return false
	}

	s.writeResponse(res, method, string(envelope))
	return true
}

func (s *Server) storeResult(ctx context.Context, body []byte, method string, out string) {
	if s.store == nil || out == "" || method == "batch" || !s.store.Cacheable(method) {
		return
	}

	var rpcReq jsonrpc.Request
	if err := json.Unmarshal(body, &rpcReq); err != nil {
		return
	}

	if err := s.store.Store(rpcReq.Method, rpcReq.Params, []byte(out)); err != nil {
		logger.Error("failed to store result in cache", log.WithRequestID(ctx, "method", method, "err", err)...)
	}
}

func (s *Server) writeResponse(res http.ResponseWriter, method string, out string) {
	if out == "" {
		responsesTotal.WithLabelValues(method, "empty").Inc()
		res.WriteHeader(http.StatusNoContent)
		return
	}

	outcome := "success"
	if out[0] == '[' {
		outcome = "batch"
	} else if gjson.Get(out, "error").Exists() {
		outcome = "error"
	}
	responsesTotal.WithLabelValues(method, outcome).Inc()

	res.Header().Set("Content-Type", "application/json")
	res.Write([]byte(out))
}

func methodLabel(body []byte) string {
	parsed := gjson.ParseBytes(body)
	if parsed.IsArray() {
		return "batch"
	}

	method := parsed.Get("method").String()
	if method == "" {
		return "unknown"
	}

	return method
}
