// Package auth issues and validates the JWT bearer tokens that guard
// the admin API.
//
// Tokens are HS256-signed with the configured secret and validated by
// signature and expiry only; there is no user store. Operators mint a
// token with the gridstat-token command and present it on every
// request.
package auth
