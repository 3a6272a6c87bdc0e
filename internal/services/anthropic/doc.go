// Package anthropic wraps the Anthropic messages API used to draft platform
// articles. The client reports ErrUnavailable when no API key is configured
// so callers can select their local fallback.
package anthropic
