// Package httpserver exposes the settlement engine over HTTP.
//
// BaseServer provides the shared server shell: chi routing, request logging,
// liveness/readiness/drain endpoints, optional pprof and an optional
// standalone metrics listener. Handler registers the auction and account
// routes under /api, and the websocket price feed streams an auction's
// decaying price until it settles or expires.
package httpserver
