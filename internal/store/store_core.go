package store

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"quadvoice/internal/config"
	"quadvoice/internal/logging"
)

// Store manages identity documents, platform styles, and project results.
// The in-memory caches are authoritative; SQLite persistence is best-effort.
type Store struct {
	mu       sync.RWMutex
	docs     []IdentityDoc
	styles   map[Platform]PlatformStyle
	projects map[string]*ProjectResult

	db     *sql.DB
	path   string
	logger *slog.Logger
}

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

// Open constructs the store and attempts to attach and hydrate its SQLite
// backing. Database problems degrade to memory-only operation with a logged
// warning; Open itself never fails for them.
func Open(cfg *config.Config, logger *slog.Logger) *Store {
	s := &Store{
		styles:   make(map[Platform]PlatformStyle),
		projects: make(map[string]*ProjectResult),
		logger:   logging.NewComponentLogger(logger, "store"),
	}

	dbPath := ""
	if cfg != nil {
		dbPath = cfg.DatabasePath()
	}
	if dbPath == "" {
		s.logger.Warn("no data directory configured; running memory-only")
		return s
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		s.logger.Warn("open sqlite database failed; running memory-only",
			logging.String("path", dbPath), logging.Error(err))
		return s
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			s.logger.Warn("apply pragma failed; running memory-only",
				logging.String("pragma", pragma), logging.Error(execErr))
			_ = db.Close()
			return s
		}
	}

	s.db = db
	s.path = dbPath
	if err := s.initSchema(context.Background()); err != nil {
		s.logger.Warn("initialize schema failed; running memory-only",
			logging.String("path", dbPath), logging.Error(err))
		_ = db.Close()
		s.db = nil
		s.path = ""
		return s
	}

	s.hydrate(context.Background())
	return s
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Persistent reports whether a durable backing is attached.
func (s *Store) Persistent() bool {
	return s != nil && s.db != nil
}

func ensureContext(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return context.Background()
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}

func (s *Store) execWithRetry(ctx context.Context, query string, args ...any) error {
	ctx = ensureContext(ctx)
	return retryOnBusy(ctx, func() error {
		_, err := s.db.ExecContext(ctx, query, args...)
		return err
	})
}

// persistWarn logs a swallowed persistence failure.
func (s *Store) persistWarn(operation string, err error) {
	if err == nil {
		return
	}
	s.logger.Warn("best-effort persistence failed",
		logging.String("operation", operation), logging.Error(err))
}

func timestamp() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}
