package store

import (
	"fmt"

	"github.com/chazuruo/sweep/internal/config"
)

// Open builds the backend selected by cfg.Backend. Callers release it with Close.
func Open(cfg config.StoreConfig) (Store, error) {
	switch Backend(cfg.Backend) {
	case BackendOsascript:
		return NewOsascript(cfg.Osascript.Binary, cfg.Osascript.ScriptDir), nil
	case BackendHTTP:
		return NewHTTP(cfg.HTTP.BaseURL, cfg.HTTP.Timeout()), nil
	case BackendFile:
		return OpenFile(cfg.File.Path)
	case BackendSQLite:
		return OpenSQLite(cfg.SQLite.Path)
	}
	return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
}
