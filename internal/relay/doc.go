// Package relay implements the danmaku broadcast engine: session lifecycle,
// room membership, message dispatch, and keepalive supervision.
//
// The implementation is organized into specialized files for sessions, the
// room registry, broadcasting, dispatching, and HTTP wiring to keep the
// codebase maintainable and testable as the project grows.
package relay
