package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// SavePreset inserts or replaces a preset
func (s *SQLiteStorage) SavePreset(ctx context.Context, preset *Preset) error {
	if preset.Name == "" {
		return errors.New("preset name must not be empty")
	}
	data, err := json.Marshal(preset.Config)
	if err != nil {
		return fmt.Errorf("failed to encode preset %s: %w", preset.Name, err)
	}

	query := `
        INSERT OR REPLACE INTO presets (name, config, updated_at)
        VALUES (?, ?, CURRENT_TIMESTAMP)`
	_, err = s.db.ExecContext(ctx, query, preset.Name, string(data))
	return err
}

// GetPreset retrieves a single preset by name
func (s *SQLiteStorage) GetPreset(ctx context.Context, name string) (*Preset, error) {
	query := `SELECT name, config, updated_at FROM presets WHERE name = ?`

	row := s.db.QueryRowContext(ctx, query, name)
	p, err := scanPreset(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrPresetNotFound, name)
	}
	return p, err
}

// ListPresets returns every preset ordered by name
func (s *SQLiteStorage) ListPresets(ctx context.Context) ([]*Preset, error) {
	query := `SELECT name, config, updated_at FROM presets ORDER BY name`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var presets []*Preset
	for rows.Next() {
		p, err := scanPreset(rows)
		if err != nil {
			return nil, err
		}
		presets = append(presets, p)
	}
	return presets, rows.Err()
}

// DeletePreset removes a preset by name
func (s *SQLiteStorage) DeletePreset(ctx context.Context, name string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM presets WHERE name = ?`, name)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrPresetNotFound, name)
	}
	return nil
}

// Helper function to scan a preset from a row
func scanPreset(row interface{ Scan(...interface{}) error }) (*Preset, error) {
	p := &Preset{}
	var data string
	if err := row.Scan(&p.Name, &data, &p.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(data), &p.Config); err != nil {
		return nil, fmt.Errorf("failed to decode preset %s: %w", p.Name, err)
	}
	return p, nil
}
