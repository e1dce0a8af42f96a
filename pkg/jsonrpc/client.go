package jsonrpc

import (
	"net/http"
	"net"
	"time"
	"encoding/json"
	"bytes"
	"fmt"
	"io/ioutil"
	"github.com/pkg/errors"
	"github.com/satori/go.uuid"
	)

// Typed client failures. Use errors.Cause to test for them.
var ErrProcedureNotFound = errors.New("procedure not found")
var ErrInvalidArguments = errors.New("invalid arguments")

// ProtocolError is any other error object returned by the server.
type ProtocolError struct {
	Code    int
	Message string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("protocol error %d: %s", e.Code, e.Message)
}

var sharedTransport = &http.Transport{
	Proxy: http.ProxyFromEnvironment,
	DialContext: (&net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}).DialContext,
	MaxIdleConns:          100,
	MaxIdleConnsPerHost:   100,
	IdleConnTimeout:       90 * time.Second,
	TLSHandshakeTimeout:   10 * time.Second,
	ExpectContinueTimeout: 1 * time.Second,
}

// wireResponse is the read-side envelope: unlike the write-side structs it
// carries both result and error so either reply shape parses.
type wireResponse struct {
	Jsonrpc string          `json:"jsonrpc"`
	Id      json.RawMessage `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *Error          `json:"error"`
}

type Client struct {
	url      string
	client   *http.Client
	username string
	password string
}

func NewClient(url string, timeout time.Duration) *Client {
	return &Client{
		url: url,
		client: &http.Client{
			Timeout:   timeout,
			Transport: sharedTransport,
		},
	}
}

// SetBasicAuth attaches credentials to every outbound request, for servers
// gated behind HTTP Basic auth.
func (c *Client) SetBasicAuth(username string, password string) {
	c.username = username
	c.password = password
}

// Call invokes a procedure with positional arguments and returns its raw
// result.
func (c *Client) Call(method string, args ...interface{}) (json.RawMessage, error) {
	if args == nil {
		args = []interface{}{}
	}

	return c.Execute(method, args)
}

// Execute invokes a procedure with an arbitrary params value (a slice for
// positional form, a map or struct for named form).
func (c *Client) Execute(method string, params interface{}) (json.RawMessage, error) {
	req, err := newRequest(method, params, true)
	if err != nil {
		return nil, err
	}

	body, err := c.post(req)
	if err != nil {
		return nil, err
	}

	var rpcRes wireResponse
	if err := json.Unmarshal(body, &rpcRes); err != nil {
		return nil, errors.Wrap(err, "failed to parse response envelope")
	}

	if rpcRes.Error != nil {
		return nil, typedError(rpcRes.Error)
	}

	return rpcRes.Result, nil
}

// Notify sends a request without an id. The server must not reply with a
// body.
func (c *Client) Notify(method string, params interface{}) error {
	req, err := newRequest(method, params, false)
	if err != nil {
		return err
	}

	_, err = c.post(req)
	return err
}

func (c *Client) post(payload interface{}) ([]byte, error) {
	serialized, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequest("POST", c.url, bytes.NewReader(serialized))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.username != "" {
		httpReq.SetBasicAuth(c.username, c.password)
	}

	res, err := c.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK && res.StatusCode != http.StatusNoContent {
		return nil, errors.New(fmt.Sprintf("unexpected status code: %d", res.StatusCode))
	}

	return ioutil.ReadAll(res.Body)
}

func newRequest(method string, params interface{}, withID bool) (*Request, error) {
	if params == nil {
		params = []interface{}{}
	}

	serParams, err := json.Marshal(params)
	if err != nil {
		return nil, err
	}

	req := &Request{
		Jsonrpc: Version,
		Method:  method,
		Params:  serParams,
	}
	if withID {
		id, err := json.Marshal(uuid.NewV4().String())
		if err != nil {
			return nil, err
		}
		rawID := json.RawMessage(id)
		req.Id = &rawID
	}

	return req, nil
}

func typedError(errObj *Error) error {
	switch errObj.Code {
	case CodeMethodNotFound:
		return errors.WithMessage(ErrProcedureNotFound, errObj.Message)
	case CodeInvalidParams:
		return errors.WithMessage(ErrInvalidArguments, errObj.Message)
	default:
		return &ProtocolError{Code: errObj.Code, Message: errObj.Message}
	}
}

// BatchResult is one entry of a batch reply, in the order the calls were
// queued.
type BatchResult struct {
	Result json.RawMessage
	Err    error
}

// Batch aggregates calls into a single array payload. Results come back in
// queue order regardless of the order the server answered in.
type Batch struct {
	client *Client
	ids    []string
	reqs   []*Request
}

func (c *Client) Batch() *Batch {
	return &Batch{client: c}
}

func (b *Batch) Call(method string, args ...interface{}) error {
	if args == nil {
		args = []interface{}{}
	}

	req, err := newRequest(method, args, true)
	if err != nil {
		return err
	}

	var id string
	if err := json.Unmarshal(*req.Id, &id); err != nil {
		return err
	}

	b.ids = append(b.ids, id)
	b.reqs = append(b.reqs, req)
	return nil
}

func (b *Batch) Send() ([]BatchResult, error) {
	if len(b.reqs) == 0 {
		return nil, errors.New("empty batch")
	}

	body, err := b.client.post(b.reqs)
	if err != nil {
		return nil, err
	}

	var rpcReses []wireResponse
	if err := json.Unmarshal(body, &rpcReses); err != nil {
		return nil, errors.Wrap(err, "failed to parse batch response")
	}

	byID := make(map[string]*wireResponse, len(rpcReses))
	for i := range rpcReses {
		var id string
		if err := json.Unmarshal(rpcReses[i].Id, &id); err != nil {
			continue
		}
		byID[id] = &rpcReses[i]
	}

	out := make([]BatchResult, len(b.ids))
	for i, id := range b.ids {
		res, ok := byID[id]
		if !ok {
			out[i] = BatchResult{Err: errors.New("no response for call")}
			continue
		}
		if res.Error != nil {
			out[i] = BatchResult{Err: typedError(res.Error)}
			continue
		}
		out[i] = BatchResult{Result: res.Result}
	}

	return out, nil
}
