// Package jwt is helpers for working with JSON Web Tokens (JWT).
//
// Tokens are issued elsewhere; this package only verifies them. It includes:
//   - A typed Claims wrapper (registered claims + strongly-typed payload).
//   - A symmetric HS512 verifier.
//   - Context helpers for storing and retrieving authenticated claims.
package jwt
