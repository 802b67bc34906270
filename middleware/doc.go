// Package middleware exposes the HTTP request-gating adapter built on top
// of fixauth.Engine authorization.
//
// # Guards
//
//   - [Guard] — bearer-token check plus role requirement, principal
//     injection into the request context.
//
// # Architecture boundaries
//
// This package translates HTTP semantics into Engine calls. It does NOT
// implement authentication logic itself — all decisions are delegated to
// Engine.Authorize.
//
// # What this package must NOT do
//
//   - Parse or create JWTs directly (delegates to Engine).
//   - Touch the credential store (Engine handles I/O).
//   - Make authorization decisions beyond pass/reject from Engine.Authorize.
package middleware
