// Package api provides the HTTP JSON API for the kanon wizard.
//
// Endpoints:
//
//	GET  /health                   liveness probe
//	GET  /ready                    readiness probe (DB ping when configured)
//	GET  /api/similar-cases        top similar precedent cases
//	POST /api/upload-case          rank cases against uploaded case text
//	POST /api/generate-strategies  synthesize defense strategies
//	GET  /api/twins                digital-twin profile catalog
//	GET  /api/wizard/{key}         read one wizard-state slot
//	PUT  /api/wizard/{key}         write one wizard-state slot
//	POST /api/run-simulations      run simulations, streamed as SSE
//	POST /api/export               export report summary and memorandum
//	GET  /ws                       live simulation progress (WebSocket)
//
// File structure:
//   - server.go: route wiring and HTTP server lifecycle
//   - middleware.go: recovery, logging, CORS, session provisioning
//   - ratelimit.go: per-IP token bucket
//   - response.go: JSON response helpers
//   - health.go: health and readiness probes
//   - ws.go: WebSocket progress hub
//   - remaining files: one handler group each
package api
