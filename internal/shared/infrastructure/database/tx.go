package database

import (
	"context"
	"errors"
)

type txKey struct{}

type txInfo struct {
	tx    Transaction
	owned bool
}

// ErrNoTransaction is returned by Commit and Rollback without a prior Begin.
var ErrNoTransaction = errors.New("no transaction in context")

// ExecutorFromContext returns the transaction stored in ctx, or conn.
// Repositories use it so they join a unit of work transparently.
func ExecutorFromContext(ctx context.Context, conn Connection) Executor {
	if info, ok := ctx.Value(txKey{}).(txInfo); ok && info.tx != nil {
		return info.tx
	}
	return conn
}

// UnitOfWork runs several repository calls in one transaction.
type UnitOfWork struct {
	conn Connection
}

// NewUnitOfWork creates a unit of work on conn.
func NewUnitOfWork(conn Connection) *UnitOfWork {
	return &UnitOfWork{conn: conn}
}

// Begin starts a transaction, or joins the one already in ctx.
func (u *UnitOfWork) Begin(ctx context.Context) (context.Context, error) {
	if info, ok := ctx.Value(txKey{}).(txInfo); ok && info.tx != nil {
		return context.WithValue(ctx, txKey{}, txInfo{tx: info.tx}), nil
	}
	tx, err := u.conn.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	return context.WithValue(ctx, txKey{}, txInfo{tx: tx, owned: true}), nil
}

// Commit commits a transaction started by this Begin. Joined transactions are left alone.
func (u *UnitOfWork) Commit(ctx context.Context) error {
	info, ok := ctx.Value(txKey{}).(txInfo)
	if !ok || info.tx == nil {
		return ErrNoTransaction
	}
	if !info.owned {
		return nil
	}
	return info.tx.Commit(ctx)
}

// Rollback rolls back a transaction started by this Begin.
func (u *UnitOfWork) Rollback(ctx context.Context) error {
	info, ok := ctx.Value(txKey{}).(txInfo)
	if !ok || info.tx == nil {
		return ErrNoTransaction
	}
	if !info.owned {
		return nil
	}
	return info.tx.Rollback(ctx)
}
