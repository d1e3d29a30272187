// Package api serves causal queries over HTTP.
//
// # Routes
//
//	GET  /healthz                 build information
//	GET  /metrics                 Prometheus metrics (when enabled)
//	POST /v1/models               store a model document, returns its id
//	GET  /v1/models/{id}          graph of a stored model as JSON
//	POST /v1/impact               P(on | do(doing), knowing)
//	POST /v1/identify             do-calculus expression only
//	POST /v1/counterfactual       twin-network counterfactual
//	POST /v1/doors                minimal backdoor and frontdoor sets
//	POST /v1/dsep                 d-separation test
//	POST /v1/render               diagram as DOT, SVG, PNG or PDF
//
// Every query names its model in one of three ways: "model" holds the model
// document inline (JSON), "model_id" refers to a document stored through
// /v1/models, and "model_name" picks a file from the server's models
// directory.
//
//	curl -s localhost:8080/v1/impact -d '{
//	    "model_name": "smoking",
//	    "on": ["cancer"],
//	    "doing": ["smoking"]
//	}'
//
// Answers are cached per model hash. The X-Cache response header reports
// HIT or MISS; "refresh": true recomputes. Requests carrying an X-Tenant-ID
// header use a cache namespace of their own.
//
// Failures are JSON bodies as described in pkg/httputil, tagged with the
// X-Request-ID of the request.
package api
