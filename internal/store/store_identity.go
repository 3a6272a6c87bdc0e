package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"quadvoice/internal/logging"
)

// SaveIdentity stores a new identity document in memory and attempts a
// durable upsert. The returned doc carries its allocated id.
func (s *Store) SaveIdentity(ctx context.Context, docType IdentityDocType, content string, embedding []float64, userID string) IdentityDoc {
	doc := IdentityDoc{
		ID:        NewID(),
		Type:      docType,
		Content:   content,
		Embedding: embedding,
		UserID:    userID,
	}

	s.mu.Lock()
	s.docs = append(s.docs, doc)
	s.mu.Unlock()

	s.upsertIdentity(ctx, doc)
	return doc
}

// ListIdentityContents returns the raw content of every cached identity
// document in insertion/hydration order.
func (s *Store) ListIdentityContents() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	contents := make([]string, len(s.docs))
	for i, doc := range s.docs {
		contents[i] = doc.Content
	}
	return contents
}

// IdentityCount returns the number of cached identity documents.
func (s *Store) IdentityCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}

func (s *Store) upsertIdentity(ctx context.Context, doc IdentityDoc) {
	if s.db == nil {
		return
	}
	embeddingJSON, err := json.Marshal(doc.Embedding)
	if err != nil {
		s.persistWarn("upsert identity doc", fmt.Errorf("marshal embedding: %w", err))
		return
	}
	err = s.execWithRetry(
		ctx,
		`INSERT INTO identity_docs (id, user_id, type, content, embedding, created_at)
         VALUES (?, ?, ?, ?, ?, ?)
         ON CONFLICT(id) DO UPDATE SET
             user_id = excluded.user_id,
             type = excluded.type,
             content = excluded.content,
             embedding = excluded.embedding`,
		doc.ID,
		nullableString(doc.UserID),
		string(doc.Type),
		doc.Content,
		string(embeddingJSON),
		timestamp(),
	)
	s.persistWarn("upsert identity doc", err)
}

// hydrate loads persisted identity documents and platform styles into the
// caches. Failures leave the caches empty rather than failing construction.
// Projects are not bulk-loaded; they are fetched lazily on first lookup.
func (s *Store) hydrate(ctx context.Context) {
	if s.db == nil {
		return
	}
	docs, err := s.loadIdentityDocs(ctx)
	if err != nil {
		s.logger.Warn("hydrate identity docs failed", logging.Error(err))
	} else {
		s.mu.Lock()
		s.docs = docs
		s.mu.Unlock()
	}

	styles, err := s.loadStyles(ctx)
	if err != nil {
		s.logger.Warn("hydrate platform styles failed", logging.Error(err))
	} else {
		s.mu.Lock()
		s.styles = styles
		s.mu.Unlock()
	}
}

func (s *Store) loadIdentityDocs(ctx context.Context) ([]IdentityDoc, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, type, content, embedding FROM identity_docs ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("query identity docs: %w", err)
	}
	defer rows.Close()

	var docs []IdentityDoc
	for rows.Next() {
		var (
			doc           IdentityDoc
			userID        sql.NullString
			docType       string
			embeddingJSON string
		)
		if err := rows.Scan(&doc.ID, &userID, &docType, &doc.Content, &embeddingJSON); err != nil {
			return nil, fmt.Errorf("scan identity doc: %w", err)
		}
		doc.UserID = userID.String
		if parsed, ok := ParseIdentityDocType(docType); ok {
			doc.Type = parsed
		} else {
			doc.Type = DocTypeSkill
		}
		if err := json.Unmarshal([]byte(embeddingJSON), &doc.Embedding); err != nil {
			return nil, fmt.Errorf("decode embedding for %s: %w", doc.ID, err)
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
