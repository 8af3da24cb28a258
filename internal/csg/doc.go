// Package csg talks to the China Southern Power Grid online service
// (95598) on behalf of a stored session token.
//
// The integration consumes the Client interface only: session
// verification, logout, and month-usage fetches for the sensor
// coordinator. Authentication flows (SMS codes, password login, token
// refresh) are out of scope; sessions are established elsewhere and
// arrive here as an auth token inside Credentials.
//
// HTTPClient is the production implementation; tests substitute fakes.
package csg
