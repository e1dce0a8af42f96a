package server

import (
	"github.com/prometheus/client_golang/prometheus"
)

var requestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
	Name: "jsonrpcd_requests_total",
	Help: "Inbound JSON-RPC payloads by method. Batches count once as \"batch\".",
}, []string{"method"})

var responsesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
	Name: "jsonrpcd_responses_total",
	Help: "Dispatch outcomes: success, error or empty (notifications).",
}, []string{"method", "outcome"})

var rejectedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
	Name: "jsonrpcd_rejected_total",
	Help: "Requests rejected before dispatch, by HTTP status.",
}, []string{"status"})

func init() {
	prometheus.MustRegister(requestsTotal, responsesTotal, rejectedTotal)
}
