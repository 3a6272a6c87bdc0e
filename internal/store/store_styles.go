package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
)

// SaveStyle records style rules for a platform, replacing any prior entry
// and bumping the version (first save is version 1).
func (s *Store) SaveStyle(ctx context.Context, platform Platform, rules map[string]string, userID string) PlatformStyle {
	s.mu.Lock()
	currentVersion := 0
	if existing, ok := s.styles[platform]; ok {
		currentVersion = existing.Version
	}
	style := PlatformStyle{
		ID:       NewID(),
		Platform: platform,
		Rules:    copyRules(rules),
		Version:  currentVersion + 1,
		UserID:   userID,
	}
	s.styles[platform] = style
	s.mu.Unlock()

	s.upsertStyle(ctx, style)
	return style
}

// GetStyle returns the current style record for a platform.
func (s *Store) GetStyle(platform Platform) (PlatformStyle, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	style, ok := s.styles[platform]
	if !ok {
		return PlatformStyle{}, false
	}
	style.Rules = copyRules(style.Rules)
	return style, true
}

// StyleRules returns the current rules for every platform that has a style.
// The draft stage feeds these to the generation collaborator.
func (s *Store) StyleRules() map[Platform]map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rules := make(map[Platform]map[string]string, len(s.styles))
	for platform, style := range s.styles {
		rules[platform] = copyRules(style.Rules)
	}
	return rules
}

func (s *Store) upsertStyle(ctx context.Context, style PlatformStyle) {
	if s.db == nil {
		return
	}
	rulesJSON, err := json.Marshal(style.Rules)
	if err != nil {
		s.persistWarn("upsert platform style", fmt.Errorf("marshal rules: %w", err))
		return
	}
	err = s.execWithRetry(
		ctx,
		`INSERT INTO platform_styles (id, user_id, platform, rules, version, updated_at)
         VALUES (?, ?, ?, ?, ?, ?)
         ON CONFLICT(platform) DO UPDATE SET
             id = excluded.id,
             user_id = excluded.user_id,
             rules = excluded.rules,
             version = excluded.version,
             updated_at = excluded.updated_at`,
		style.ID,
		nullableString(style.UserID),
		string(style.Platform),
		string(rulesJSON),
		style.Version,
		timestamp(),
	)
	s.persistWarn("upsert platform style", err)
}

func (s *Store) loadStyles(ctx context.Context) (map[Platform]PlatformStyle, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, platform, rules, version FROM platform_styles`)
	if err != nil {
		return nil, fmt.Errorf("query platform styles: %w", err)
	}
	defer rows.Close()

	styles := make(map[Platform]PlatformStyle)
	for rows.Next() {
		var (
			style     PlatformStyle
			userID    sql.NullString
			platform  string
			rulesJSON string
		)
		if err := rows.Scan(&style.ID, &userID, &platform, &rulesJSON, &style.Version); err != nil {
			return nil, fmt.Errorf("scan platform style: %w", err)
		}
		style.UserID = userID.String
		parsed, ok := ParsePlatform(platform)
		if !ok {
			continue
		}
		style.Platform = parsed
		if err := json.Unmarshal([]byte(rulesJSON), &style.Rules); err != nil {
			return nil, fmt.Errorf("decode rules for %s: %w", platform, err)
		}
		if style.Version < 1 {
			style.Version = 1
		}
		styles[parsed] = style
	}
	return styles, rows.Err()
}

func copyRules(rules map[string]string) map[string]string {
	if rules == nil {
		return nil
	}
	cp := make(map[string]string, len(rules))
	for key, value := range rules {
		cp[key] = value
	}
	return cp
}
