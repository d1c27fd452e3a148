package store

import (
	"fmt"

	"gestion-notas/internal/config"
	"gestion-notas/internal/db"
)

// New builds the store the datasource config names. The returned cleanup
// releases whatever the backend holds open and is safe to call on every
// path.
func New(cfg *config.Config) (Store, func(), error) {
	switch cfg.DataSource.Backend {
	case "memory":
		s, err := NewMemoryStore(cfg.DataSource.SnapshotPath)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to init memory store: %w", err)
		}
		return s, func() {}, nil

	case "mysql":
		conn, err := db.NewConnection(cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		return NewMySQLStore(conn), func() { conn.Close() }, nil

	case "rest":
		return NewRESTStore(cfg), func() {}, nil

	default:
		return nil, nil, fmt.Errorf("unknown datasource backend: %s", cfg.DataSource.Backend)
	}
}
