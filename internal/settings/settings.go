// Package settings stores small key/value JSON settings in the database.
package settings

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

const (
	keySync    = "sync"
	keyRenames = "format_renames"
)

// SyncSettings tunes the compile-and-import pipeline.
type SyncSettings struct {
	// LanguageFormatScore overrides the score given to synthesized language
	// formats. Nil keeps the compiled-in default.
	LanguageFormatScore *int `json:"languageFormatScore,omitempty"`
}

// RenameSettings lists format names marked "include in renaming".
type RenameSettings struct {
	Formats []string `json:"formats"`
}

// Service reads and writes settings rows.
type Service struct {
	db     *sql.DB
	logger zerolog.Logger
}

// NewService creates a settings service.
func NewService(db *sql.DB, logger zerolog.Logger) *Service {
	return &Service{
		db:     db,
		logger: logger.With().Str("component", "settings").Logger(),
	}
}

func (s *Service) get(ctx context.Context, key string, out any) (bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to load setting %q: %w", key, err)
	}
	if err := json.Unmarshal([]byte(value), out); err != nil {
		s.logger.Warn().Str("key", key).Err(err).Msg("ignoring malformed setting")
		return false, nil
	}
	return true, nil
}

func (s *Service) set(ctx context.Context, key string, in any) error {
	data, err := json.Marshal(in)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, string(data), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to save setting %q: %w", key, err)
	}
	return nil
}

// GetSyncSettings loads the pipeline settings, defaulting when absent.
func (s *Service) GetSyncSettings(ctx context.Context) (SyncSettings, error) {
	var out SyncSettings
	if _, err := s.get(ctx, keySync, &out); err != nil {
		return SyncSettings{}, err
	}
	return out, nil
}

// SaveSyncSettings stores the pipeline settings.
func (s *Service) SaveSyncSettings(ctx context.Context, in SyncSettings) error {
	return s.set(ctx, keySync, in)
}

// GetRenameSettings loads the include-in-renaming format list.
func (s *Service) GetRenameSettings(ctx context.Context) (RenameSettings, error) {
	var out RenameSettings
	if _, err := s.get(ctx, keyRenames, &out); err != nil {
		return RenameSettings{}, err
	}
	return out, nil
}

// SaveRenameSettings stores the include-in-renaming format list.
func (s *Service) SaveRenameSettings(ctx context.Context, in RenameSettings) error {
	return s.set(ctx, keyRenames, in)
}

// IncludeInRename returns a lookup over the rename settings for one compile
// pass.
func (s *Service) IncludeInRename(ctx context.Context) (func(name string) bool, error) {
	cfg, err := s.GetRenameSettings(ctx)
	if err != nil {
		return nil, err
	}
	set := make(map[string]bool, len(cfg.Formats))
	for _, name := range cfg.Formats {
		set[name] = true
	}
	return func(name string) bool { return set[name] }, nil
}
