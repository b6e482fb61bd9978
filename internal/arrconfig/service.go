// Package arrconfig persists target server configurations and their sync
// state.
package arrconfig

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/profilarr/profilarr/internal/mappings"
)

// ErrNotFound is returned when no configuration has the requested id.
var (
	ErrNotFound     = errors.New("arr config not found")
	ErrInvalidInput = errors.New("invalid arr config")
)

// Service provides CRUD over arr configurations.
type Service struct {
	db     *sql.DB
	logger zerolog.Logger
}

// NewService creates a new arr config service.
func NewService(db *sql.DB, logger zerolog.Logger) *Service {
	return &Service{
		db:     db,
		logger: logger.With().Str("component", "arrconfig").Logger(),
	}
}

const configColumns = `id, name, type, arr_server, api_key, import_as_unique,
	sync_method, sync_interval_minutes, data_to_sync, last_sync_time,
	sync_percentage, created_at, updated_at`

func scanConfig(row interface{ Scan(...any) error }) (*Config, error) {
	var (
		cfg      Config
		data     string
		lastSync sql.NullTime
	)
	err := row.Scan(
		&cfg.ID, &cfg.Name, &cfg.Type, &cfg.ArrServer, &cfg.APIKey,
		&cfg.ImportAsUnique, &cfg.SyncMethod, &cfg.SyncIntervalMinutes,
		&data, &lastSync, &cfg.SyncPercentage, &cfg.CreatedAt, &cfg.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if lastSync.Valid {
		t := lastSync.Time
		cfg.LastSyncTime = &t
	}
	if data != "" {
		if err := json.Unmarshal([]byte(data), &cfg.DataToSync); err != nil {
			return nil, fmt.Errorf("invalid data_to_sync for config %d: %w", cfg.ID, err)
		}
	}
	return &cfg, nil
}

func validateInput(input *CreateInput) error {
	if input.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if !input.Type.Valid() {
		return fmt.Errorf("%w: type must be %q or %q", ErrInvalidInput, mappings.TargetRadarr, mappings.TargetSonarr)
	}
	if input.ArrServer == "" {
		return fmt.Errorf("%w: arr server URL is required", ErrInvalidInput)
	}
	if input.SyncMethod == "" {
		input.SyncMethod = SyncManual
	}
	if !input.SyncMethod.Valid() {
		return fmt.Errorf("%w: unknown sync method %q", ErrInvalidInput, input.SyncMethod)
	}
	if input.SyncMethod == SyncSchedule && input.SyncIntervalMinutes < 1 {
		return fmt.Errorf("%w: sync interval must be at least one minute", ErrInvalidInput)
	}
	return nil
}

// Create stores a new configuration.
func (s *Service) Create(ctx context.Context, input *CreateInput) (*Config, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	data, err := json.Marshal(input.DataToSync)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO arr_configs (name, type, arr_server, api_key, import_as_unique,
			sync_method, sync_interval_minutes, data_to_sync, sync_percentage,
			created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, 0, ?, ?)`,
		input.Name, input.Type, input.ArrServer, input.APIKey, input.ImportAsUnique,
		input.SyncMethod, input.SyncIntervalMinutes, string(data), now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create arr config: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	s.logger.Info().Int64("id", id).Str("name", input.Name).Str("type", string(input.Type)).Msg("arr config created")
	return s.GetByID(ctx, id)
}

// List returns every configuration ordered by name.
func (s *Service) List(ctx context.Context) ([]*Config, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+configColumns+` FROM arr_configs ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list arr configs: %w", err)
	}
	defer rows.Close()

	var configs []*Config
	for rows.Next() {
		cfg, err := scanConfig(rows)
		if err != nil {
			return nil, err
		}
		configs = append(configs, cfg)
	}
	return configs, rows.Err()
}

// GetByID returns one configuration.
func (s *Service) GetByID(ctx context.Context, id int64) (*Config, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+configColumns+` FROM arr_configs WHERE id = ?`, id)
	cfg, err := scanConfig(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load arr config %d: %w", id, err)
	}
	return cfg, nil
}

// Update replaces a configuration's editable fields.
func (s *Service) Update(ctx context.Context, id int64, input *CreateInput) (*Config, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	data, err := json.Marshal(input.DataToSync)
	if err != nil {
		return nil, err
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE arr_configs
		SET name = ?, type = ?, arr_server = ?, api_key = ?, import_as_unique = ?,
			sync_method = ?, sync_interval_minutes = ?, data_to_sync = ?, updated_at = ?
		WHERE id = ?`,
		input.Name, input.Type, input.ArrServer, input.APIKey, input.ImportAsUnique,
		input.SyncMethod, input.SyncIntervalMinutes, string(data), time.Now().UTC(), id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update arr config %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}
	return s.GetByID(ctx, id)
}

// Delete removes a configuration.
func (s *Service) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM arr_configs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete arr config %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	s.logger.Info().Int64("id", id).Msg("arr config deleted")
	return nil
}

// UpdateSyncStatus writes back the outcome of a sync run.
func (s *Service) UpdateSyncStatus(ctx context.Context, id int64, syncTime time.Time, percentage int) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE arr_configs SET last_sync_time = ?, sync_percentage = ?, updated_at = ? WHERE id = ?`,
		syncTime.UTC(), percentage, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to record sync status for config %d: %w", id, err)
	}
	return nil
}
