package gate

import (
	"crypto/sha256"
	"crypto/subtle"
	"net"
	"net/http"
	"github.com/inconshreveable/log15"
	"github.com/cyking/JsonRPC/internal/audit"
	"github.com/cyking/JsonRPC/pkg/log"
	"github.com/cyking/JsonRPC/pkg/sets"
)

// Gatekeeper runs the transport-level checks ahead of the dispatcher: a
// host/IP allow-list and HTTP Basic auth. Rejected requests never reach the
// dispatcher.
type Gatekeeper struct {
	allowedHosts *sets.StringSet
	users        map[string]string
	logger       log15.Logger
}

func NewGatekeeper(allowedHosts []string, users map[string]string) *Gatekeeper {
	return &Gatekeeper{
		allowedHosts: sets.NewStringSet(allowedHosts),
		users:        users,
		logger:       log.NewLog("gate"),
	}
}

// Check returns zero when the request may proceed, otherwise the HTTP status
// to reject it with.
func (g *Gatekeeper) Check(req *http.Request) int {
	if g.allowedHosts.Len() > 0 {
		host := remoteHost(req)
		if !g.allowedHosts.Contains(host) {
			g.logger.Info("rejected request from disallowed host", log.WithRequestID(req.Context(), "host", host)...)
			return http.StatusForbidden
		}
	}

	if len(g.users) > 0 {
		user, pass, ok := req.BasicAuth()
		if !ok || !g.checkCredentials(user, pass) {
			g.logger.Info("rejected request with bad credentials", log.WithRequestID(req.Context(), "user", user)...)
			return http.StatusUnauthorized
		}
	}

	return 0
}

func (g *Gatekeeper) checkCredentials(user string, pass string) bool {
	expected, ok := g.users[user]
	if !ok {
		return false
	}

	// hash both sides so the comparison is constant-time regardless of
	// password length
	givenSum := sha256.Sum256([]byte(pass))
	expectedSum := sha256.Sum256([]byte(expected))
	return subtle.ConstantTimeCompare(givenSum[:], expectedSum[:]) == 1
}

func remoteHost(req *http.Request) string {
	addr := audit.RemoteAddr(req)
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}

	return host
}
