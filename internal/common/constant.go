// Package common contains shared constants and sentinel errors used across
// the ventas service and its admin tooling.
package common

// APIKeyHeaderName is the request header carrying the shared secret that
// guards the sales listing endpoint.
const APIKeyHeaderName = "x-api-key"
