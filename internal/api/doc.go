// Package api hosts the HTTP server, middleware, and REST handlers.
// Notable routes:
//   - POST /extract fetches one page and returns its extracted content.
//   - POST /report generates an HTML consultant report for a URL.
//   - GET /report/sample returns a canned sample report.
//   - GET /healthz / readyz for Kubernetes probes.
//   - GET /metrics for Prometheus scraping.
package api
