package storage

func (s *SQLiteStorage) migrate() error {
	schema := `
    CREATE TABLE IF NOT EXISTS presets (
        name TEXT PRIMARY KEY,
        config JSON NOT NULL,
        updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
    );
    `

	_, err := s.db.Exec(schema)
	return err
}
