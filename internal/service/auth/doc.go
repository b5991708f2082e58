// Package auth issues and validates bearer tokens, verifies passwords and
// manages one-time login codes.
package auth
