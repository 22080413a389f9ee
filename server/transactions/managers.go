package transactions

import (
	"context"
	"database/sql"

	"modelmove/logger"
	"modelmove/server/state"
)

type DbTransactionManager interface {
	BeginTransaction(ctx context.Context) (DbTransaction, error)
}

type PgDbTransactionManager struct {
	db *sql.DB
}

func (tm *PgDbTransactionManager) BeginTransaction(ctx context.Context) (DbTransaction, error) {
	if tx, err := tm.db.BeginTx(ctx, nil); err != nil {
		return nil, NewTransactionError(ErrBeginFailed, err.Error())
	} else {
		return tx, nil
	}
}

func NewPgDbTransactionManager(db *sql.DB) *PgDbTransactionManager {
	return &PgDbTransactionManager{db: db}
}

//Keeps the database and the stored logical state in step: the state is saved only once the database has committed.
type GlobalTransactionManager struct {
	syncer               state.Syncer
	dbTransactionManager DbTransactionManager
}

func (g *GlobalTransactionManager) BeginTransaction(ctx context.Context) (*GlobalTransaction, error) {
	initialState, err := g.syncer.Get(ctx)
	if err != nil {
		return nil, err
	}
	dbTransaction, err := g.dbTransactionManager.BeginTransaction(ctx)
	if err != nil {
		return nil, err
	}
	return &GlobalTransaction{DbTransaction: dbTransaction, StateTransaction: NewStateTransaction(initialState)}, nil
}

func (g *GlobalTransactionManager) CommitTransaction(ctx context.Context, transaction *GlobalTransaction) error {
	if transaction.StateTransaction.State() != Pending {
		return NewTransactionError(ErrNotPending, "state transaction is not in pending state")
	}
	if err := transaction.DbTransaction.Commit(); err != nil {
		return NewTransactionError(ErrCommitFailed, err.Error())
	}
	staged, err := transaction.StateTransaction.Syncer().Get(ctx)
	if err != nil {
		return err
	}
	if err := g.syncer.Save(ctx, staged); err != nil {
		logger.Error("Database changes committed but the state could not be saved: %s", err.Error())
		return err
	}
	transaction.StateTransaction.SetState(Committed)
	return nil
}

//Stored state is left untouched; staged changes are dropped.
func (g *GlobalTransactionManager) RollbackTransaction(transaction *GlobalTransaction) error {
	if transaction.StateTransaction.State() != Pending {
		return NewTransactionError(ErrNotPending, "state transaction is not in pending state")
	}
	transaction.StateTransaction.SetState(RolledBack)
	if err := transaction.DbTransaction.Rollback(); err != nil {
		return NewTransactionError(ErrRollbackFailed, err.Error())
	}
	return nil
}

func NewGlobalTransactionManager(syncer state.Syncer, dbTransactionManager DbTransactionManager) *GlobalTransactionManager {
	return &GlobalTransactionManager{syncer: syncer, dbTransactionManager: dbTransactionManager}
}
