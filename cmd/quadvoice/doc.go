// Command quadvoice is the CLI and server entry point: ingest identity and
// style documents, run the drafting pipeline, inspect stored projects, and
// host the HTTP API.
package main
