package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/vinicius-lino-figueiredo/jsongo"
	"github.com/vinicius-lino-figueiredo/jsongo/adapter/persistence"
	"github.com/vinicius-lino-figueiredo/jsongo/adapter/sqlite"
	"go.uber.org/zap"
)

var errViolations = errors.New("integrity violations found")

// app holds what every command needs once flags are parsed.
type app struct {
	cfg    Config
	logger *zap.Logger
	db     jsongo.Database
	closer io.Closer

	// newLogger builds the logger from the config. Replaced in tests.
	newLogger func(Config) (*zap.Logger, error)
}

func defaultLogger(cfg Config) (*zap.Logger, error) {
	if cfg.Verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func (a *app) open(cmd *cobra.Command) error {
	cfg, err := configFromFlags(cmd)
	if err != nil {
		return err
	}
	a.cfg = cfg

	if a.logger, err = a.newLogger(cfg); err != nil {
		return fmt.Errorf("building logger: %w", err)
	}

	backend, err := a.backend(cmd.Context())
	if err != nil {
		return err
	}
	a.db = jsongo.NewDB(jsongo.WithBackend(backend), jsongo.WithLogger(a.logger))
	return nil
}

func (a *app) backend(ctx context.Context) (jsongo.Backend, error) {
	if a.cfg.SQLite != "" {
		store, err := sqlite.Open(ctx, a.cfg.SQLite,
			sqlite.WithDirMode(os.FileMode(a.cfg.DirMode)),
			sqlite.WithLogger(a.logger),
		)
		if err != nil {
			return nil, err
		}
		a.closer = store
		a.logger.Debug("using sqlite backend", zap.String("path", a.cfg.SQLite))
		return store, nil
	}

	a.logger.Debug("using directory backend", zap.String("dir", a.cfg.Directory))
	return persistence.NewDirectory(a.cfg.Directory,
		persistence.WithFileMode(os.FileMode(a.cfg.FileMode)),
		persistence.WithDirMode(os.FileMode(a.cfg.DirMode)),
		persistence.WithLogger(a.logger),
	), nil
}

func (a *app) close() error {
	var err error
	if a.closer != nil {
		err = a.closer.Close()
	}
	if a.logger != nil {
		// stderr cannot always be synced
		_ = a.logger.Sync()
	}
	return err
}

func (a *app) collection(name string) (jsongo.Collection, error) {
	return a.db.Collection(name)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// parseDocuments reads one JSON object or an array of objects.
func parseDocuments(s string) ([]any, error) {
	var docs []jsongo.M
	if err := json.Unmarshal([]byte(s), &docs); err == nil {
		res := make([]any, len(docs))
		for i, doc := range docs {
			res[i] = doc
		}
		return res, nil
	}

	var doc jsongo.M
	if err := json.Unmarshal([]byte(s), &doc); err != nil {
		return nil, fmt.Errorf("expected a JSON object or a list of objects: %w", err)
	}
	return []any{doc}, nil
}

// parseCriteria reads the optional criteria argument at position i.
func parseCriteria(args []string, i int) (any, error) {
	if len(args) <= i {
		return nil, nil
	}
	var criteria jsongo.M
	if err := json.Unmarshal([]byte(args[i]), &criteria); err != nil {
		return nil, fmt.Errorf("invalid criteria: %w", err)
	}
	return criteria, nil
}
