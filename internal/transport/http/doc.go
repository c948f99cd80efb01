// Package http implements the HTTP surface of the pipeline service.
// Handlers stay thin: they parse the request, call the pipeline manager or
// the run history, and render JSON. Errors are answered with RFC 7807
// problem documents.
//
// # Routes
//
//	POST /api/pipeline/runs        run the pipeline synchronously
//	GET  /api/pipeline/runs        list recent runs (?limit=n)
//	GET  /api/pipeline/runs/{id}   one run, active or recorded
//	GET  /healthz                  liveness
//	GET  /metrics                  Prometheus exposition
//
// At most one run executes at a time; a second POST while one is active is
// answered 409. POSTs are also rate limited and answered 429 beyond the
// configured budget.
package http
