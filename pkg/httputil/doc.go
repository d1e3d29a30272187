// Package httputil provides the JSON plumbing of the HTTP API.
//
// # Overview
//
//   - [DecodeJSON]: bounded, strict request decoding plus struct validation
//   - [WriteJSON]: response encoding
//   - [WriteError]: coded errors rendered as JSON with a matching status
//
// # Status codes
//
// [StatusFor] maps error codes from pkg/errors to HTTP statuses:
//
//   - NOT_FOUND, FILE_NOT_FOUND: 404
//   - INVALID_*: 400
//   - HEDGE, UNIDENTIFIABLE: 422
//   - an oversized request body: 413
//   - anything else: 500
//
// Error bodies have the shape
//
//	{"error": {"code": "NOT_FOUND", "message": "unknown variable \"q\"", "request_id": "..."}}
package httputil
