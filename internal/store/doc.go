// Package store owns the durable records of quadvoice: identity documents,
// platform styles, and project results. It keeps authoritative in-memory
// caches in front of a SQLite database and treats the database as a
// best-effort collaborator: persistence failures are logged and swallowed,
// never surfaced to callers, and an unusable database degrades the store to
// memory-only operation.
package store
