// Package httpapi exposes the authentication engine over HTTP. Route
// handlers are thin: decode, call the engine, encode the {data, message}
// envelope. All policy lives in the engine.
package httpapi
