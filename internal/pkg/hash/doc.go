// Package hash provides helpers for hashing and signing secrets.
//
// Typical usage is for message authentication: sign a payload with a shared
// secret, then verify incoming payloads by comparing signatures.
// Implementations (like HMAC-SHA256) live in this package behind a small
// interface.
package hash
