// Package daemon hosts the long-running HTTP server: single-instance
// locking, listener lifecycle, and the REST plus SSE surface over the api
// service.
package daemon
