package support

import (
	"context"

	"tourhub/internal/app/uow"
)

// BeginReadOnlyUnit reuses the unit already in ctx or opens a read-only one.
// cleanup is nil when the unit was not opened here.
func BeginReadOnlyUnit(ctx context.Context, factory uow.UoWFactory) (uow.UnitOfWork, context.Context, func(), error) {
	unit, ok := uow.FromContext(ctx)
	if ok {
		return unit, ctx, nil, nil
	}
	if factory == nil {
		return nil, ctx, nil, uow.ErrUnitOfWorkMissing
	}
	newUnit, err := factory.Begin(ctx, uow.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, ctx, nil, err
	}
	execCtx := uow.ContextWithUnitOfWork(ctx, newUnit)
	cleanup := func() {
		_ = newUnit.Rollback(execCtx)
	}
	return newUnit, execCtx, cleanup, nil
}

// WriteUnit is a unit opened for a command outside the Transaction middleware.
type WriteUnit struct {
	uow.UnitOfWork
	managed   bool
	committed bool
}

// BeginWriteUnit reuses the unit already in ctx or opens one that the caller
// must finish with Commit and Close.
func BeginWriteUnit(ctx context.Context, factory uow.UoWFactory) (*WriteUnit, context.Context, error) {
	if unit, ok := uow.FromContext(ctx); ok {
		return &WriteUnit{UnitOfWork: unit}, ctx, nil
	}
	if factory == nil {
		return nil, ctx, uow.ErrUnitOfWorkMissing
	}
	unit, err := factory.Begin(ctx, uow.TxOptions{})
	if err != nil {
		return nil, ctx, err
	}
	return &WriteUnit{UnitOfWork: unit, managed: true}, uow.ContextWithUnitOfWork(ctx, unit), nil
}

// Commit commits only units opened by BeginWriteUnit.
func (w *WriteUnit) Commit(ctx context.Context) error {
	if !w.managed {
		return nil
	}
	if err := w.UnitOfWork.Commit(ctx); err != nil {
		return err
	}
	w.committed = true
	return nil
}

// Close rolls back a managed unit that was never committed.
func (w *WriteUnit) Close(ctx context.Context) {
	if w.managed && !w.committed {
		_ = w.UnitOfWork.Rollback(ctx)
	}
}
