package uow

import (
	"context"
	"errors"
)

var ErrUnitOfWorkMissing = errors.New("uow: unit of work missing from context")

type ctxKey struct{}

// ContextWithUnitOfWork stores the provided unit of work in context.
func ContextWithUnitOfWork(ctx context.Context, unit UnitOfWork) context.Context {
	return context.WithValue(ctx, ctxKey{}, unit)
}

// FromContext retrieves a unit of work from context if present.
func FromContext(ctx context.Context) (UnitOfWork, bool) {
	val := ctx.Value(ctxKey{})
	if val == nil {
		return nil, false
	}
	unit, ok := val.(UnitOfWork)
	return unit, ok
}

// ContextInjector is implemented by units whose repositories read session
// state from the context.
type ContextInjector interface {
	InjectContext(ctx context.Context) context.Context
}

// Run executes fn inside the unit of work already carried by ctx, or inside a
// new one begun from factory. Units begun here are committed when fn succeeds
// and rolled back otherwise.
func Run(ctx context.Context, factory UoWFactory, opts TxOptions, fn func(ctx context.Context, unit UnitOfWork) error) error {
	if unit, ok := FromContext(ctx); ok {
		return fn(ctx, unit)
	}
	if factory == nil {
		return ErrUnitOfWorkMissing
	}
	unit, err := factory.Begin(ctx, opts)
	if err != nil {
		return err
	}
	if injector, ok := unit.(ContextInjector); ok {
		ctx = injector.InjectContext(ctx)
	}
	ctx = ContextWithUnitOfWork(ctx, unit)
	if err := fn(ctx, unit); err != nil {
		_ = unit.Rollback(ctx)
		return err
	}
	if opts.ReadOnly {
		return unit.Rollback(ctx)
	}
	return unit.Commit(ctx)
}
