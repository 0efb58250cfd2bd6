// Package http implements the REST transport of the blob server.
//
// It exposes the flat blob API the sync clients talk to, together with the
// middleware chain wrapped around it: request tracing, access logging,
// bearer token authentication and compression of JSON responses.
package http
