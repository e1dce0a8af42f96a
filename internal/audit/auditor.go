package audit

import (
	"net/http"
)

type Auditor interface {
	RecordRequest(req *http.Request, body []byte) error
}

type nopAuditor struct{}

// NewNopAuditor returns an auditor that records nothing, for deployments
// without an audit log configured.
func NewNopAuditor() Auditor {
	return nopAuditor{}
}

func (nopAuditor) RecordRequest(req *http.Request, body []byte) error {
	return nil
}
