// Package connector owns the lifecycle of the backend connection and the
// transactional unit-of-work scopes the versioned store writes through.
package connector

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/wifor-platform/statstore/pkg/apperrors"
	"github.com/wifor-platform/statstore/pkg/backend"
	"github.com/wifor-platform/statstore/pkg/config"
	"github.com/wifor-platform/statstore/pkg/schema"
	"github.com/wifor-platform/statstore/pkg/store"
)

// Connector holds the open backend connection, the schema registry and the
// versioned store for one run.
type Connector struct {
	cfg     *config.Config
	logger  *zap.Logger
	db      *sql.DB
	dialect backend.Dialect

	registry *schema.Registry
	store    *store.Store
}

// New connects to the configured backend. Sinks are passed through to the
// versioned store.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger, sinks ...store.EventSink) (*Connector, error) {
	db, dialect, err := backend.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	logger = logger.Named("connector")
	logger.Info("backend connected", zap.String("backend", cfg.Backend))

	return &Connector{
		cfg:      cfg,
		logger:   logger,
		db:       db,
		dialect:  dialect,
		registry: schema.NewRegistry(),
		store:    store.New(dialect, logger, sinks...),
	}, nil
}

// Close releases the backend connection.
func (c *Connector) Close() error {
	c.logger.Info("backend connection closed")
	return c.db.Close()
}

// OpenEntityType materializes the entity type for a descriptor and ensures
// its backing table exists, creating it (and the current-version index where
// the engine supports one) if absent. Idempotent.
func (c *Connector) OpenEntityType(ctx context.Context, desc *schema.Descriptor) (*schema.EntityType, error) {
	et, err := c.registry.Define(desc)
	if err != nil {
		return nil, err
	}

	exists, err := backend.TableExists(ctx, c.db, c.dialect, et.Table)
	if err != nil {
		return nil, err
	}
	if exists {
		return et, nil
	}

	ddl, err := backend.CreateTableSQL(c.dialect, et)
	if err != nil {
		return nil, err
	}
	if _, err := c.db.ExecContext(ctx, ddl); err != nil {
		return nil, fmt.Errorf("%w: create table %q: %v", apperrors.ErrBackend, et.Table, err)
	}
	if indexDDL := c.dialect.CurrentVersionIndexSQL(et.Table, et.Identifier); indexDDL != "" {
		if _, err := c.db.ExecContext(ctx, indexDDL); err != nil {
			return nil, fmt.Errorf("%w: create current-version index on %q: %v", apperrors.ErrBackend, et.Table, err)
		}
	}

	c.logger.Info("table created", zap.String("table", et.Table))
	return et, nil
}

// UnitOfWork is one transactional scope. All Apply calls through it commit
// or roll back together.
type UnitOfWork struct {
	c    *Connector
	tx   *sql.Tx
	done bool
}

// Begin opens a unit-of-work against the backend.
func (c *Connector) Begin(ctx context.Context) (*UnitOfWork, error) {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: begin transaction: %v", apperrors.ErrBackend, err)
	}
	return &UnitOfWork{c: c, tx: tx}, nil
}

// Apply delegates the batch to the versioned store inside this scope.
func (u *UnitOfWork) Apply(ctx context.Context, candidates []*schema.Record) error {
	return u.c.store.Apply(ctx, u.tx, candidates)
}

// Commit makes the scope's mutations visible.
func (u *UnitOfWork) Commit() error {
	u.done = true
	if err := u.tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %v", apperrors.ErrBackend, err)
	}
	return nil
}

// Rollback discards the scope's mutations.
func (u *UnitOfWork) Rollback() error {
	u.done = true
	if err := u.tx.Rollback(); err != nil && err != sql.ErrTxDone {
		return fmt.Errorf("%w: rollback: %v", apperrors.ErrBackend, err)
	}
	return nil
}

// Close rolls the scope back unless it was committed. Safe to defer.
func (u *UnitOfWork) Close() error {
	if u.done {
		return nil
	}
	return u.Rollback()
}

// Run executes fn inside a fresh unit-of-work: commit on nil error, rollback
// and propagate otherwise. The scope is released on every exit path.
func (c *Connector) Run(ctx context.Context, fn func(*UnitOfWork) error) error {
	uow, err := c.Begin(ctx)
	if err != nil {
		return err
	}
	defer uow.Close()

	if err := fn(uow); err != nil {
		if rbErr := uow.Rollback(); rbErr != nil {
			c.logger.Error("rollback failed", zap.Error(rbErr))
		}
		return err
	}
	return uow.Commit()
}
