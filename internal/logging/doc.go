// Package logging constructs the slog loggers used across quadvoice and
// provides shared attribute helpers and field names.
package logging
