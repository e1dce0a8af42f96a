package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"
	"github.com/inconshreveable/log15"
	"github.com/tidwall/gjson"
	"github.com/cyking/JsonRPC/pkg/log"
	"github.com/cyking/JsonRPC/pkg/sets"
)

// ResultStore caches successful results for procedures the operator has
// declared idempotent. Keys are method plus a digest of the raw params, so
// equal calls share an entry while the response id stays per-request.
type ResultStore struct {
	cacher  Cacher
	methods *sets.StringSet
	ttl     time.Duration
	logger  log15.Logger
}

func NewResultStore(cacher Cacher, methods []string, ttl time.Duration) *ResultStore {
	return &ResultStore{
		cacher:  cacher,
		methods: sets.NewStringSet(methods),
		ttl:     ttl,
		logger:  log.NewLog("result_store"),
	}
}

func (s *ResultStore) Cacheable(method string) bool {
	return s.methods.Contains(method)
}

// Lookup returns the cached raw result for a call, or nil on a miss.
func (s *ResultStore) Lookup(method string, params json.RawMessage) (json.RawMessage, error) {
	return s.cacher.Get(resultCacheKey(method, params))
}

// Store extracts the result out of a serialized response envelope and caches
// it. Error responses are never cached.
func (s *ResultStore) Store(method string, params json.RawMessage, response []byte) error {
	if gjson.GetBytes(response, "error").Exists() {
		s.logger.Debug("skipping cache store for error response", "method", method)
		return nil
	}

	result := gjson.GetBytes(response, "result")
	if !result.Exists() {
		return nil
	}

	key := resultCacheKey(method, params)
	if err := s.cacher.SetEx(key, []byte(result.Raw), s.ttl); err != nil {
		return err
	}
	s.logger.Debug("stored result", "method", method, "cache_key", key)
	return nil
}

func resultCacheKey(method string, params json.RawMessage) string {
	digest := sha256.Sum256(params)
	return fmt.Sprintf("result:%s:%s", method, hex.EncodeToString(digest[:]))
}
