// Package httpserver provides the optional HTTP side-car of kvdis.
//
// It exposes GET /health, GET /metrics in the Prometheus exposition format
// and GET /debug/dump, an HTML table of every stored entry. Every route runs
// behind the RequestID and Recover middlewares.
package httpserver
