package cli

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/sparckit/sparc/internal/db"
	"github.com/sparckit/sparc/internal/store"
)

// openDB opens (and migrates) the event database. Pass "" for the default
// path under ~/.sparc.
func openDB(path string) (*db.DB, func(), error) {
	if path == "" {
		p, err := db.DefaultDBPath()
		if err != nil {
			return nil, nil, err
		}
		path = p
	}
	d, err := db.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open db at %s: %w", path, err)
	}
	if err := d.Migrate(); err != nil {
		d.Close()
		return nil, nil, err
	}
	return d, func() { d.Close() }, nil
}

// openStore returns the run store at stateDir, or the default store for "".
func openStore(stateDir string) (*store.Store, error) {
	if stateDir == "" {
		return store.DefaultStore()
	}
	return store.NewStore(stateDir), nil
}

// buildLogger returns a production logger, or a human-readable development
// logger when verbose is set.
func buildLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.DisableStacktrace = true
	return cfg.Build()
}
