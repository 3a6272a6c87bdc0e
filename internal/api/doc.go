// Package api exposes the core operations consumed by the HTTP server and
// the CLI: ingestion of identity and style documents, batch generation,
// project lookup, and streaming generation.
package api
