package middleware

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tourhub/internal/app/commands"
	"tourhub/internal/app/outbox"
	"tourhub/internal/app/uow"
)

type pingCommand struct{ fail bool }

func (pingCommand) Key() string { return "test.ping" }

type fakeUnit struct {
	uow.UnitOfWork
	committed  bool
	rolledBack bool
}

func (u *fakeUnit) Commit(context.Context) error   { u.committed = true; return nil }
func (u *fakeUnit) Rollback(context.Context) error { u.rolledBack = true; return nil }

type fakeFactory struct{ units []*fakeUnit }

func (f *fakeFactory) Begin(context.Context, uow.TxOptions) (uow.UnitOfWork, error) {
	u := &fakeUnit{}
	f.units = append(f.units, u)
	return u, nil
}

type countingOutbox struct{ flushes int }

func (o *countingOutbox) Add(context.Context, outbox.EventRecord) error { return nil }
func (o *countingOutbox) Flush(context.Context) error                  { o.flushes++; return nil }

func setup() (commands.Bus, *fakeFactory, *countingOutbox) {
	bus := commands.NewInMemoryBus()
	commands.RegisterHandler[pingCommand, string](bus, "test.ping", commands.HandlerFunc[pingCommand, string](
		func(ctx context.Context, cmd pingCommand) (string, error) {
			if _, ok := uow.FromContext(ctx); !ok {
				return "", uow.ErrUnitOfWorkMissing
			}
			if cmd.fail {
				return "", errors.New("boom")
			}
			return "pong", nil
		}))
	factory := &fakeFactory{}
	box := &countingOutbox{}
	return ChainCommands(bus, OutboxFlush(box), Transaction(factory), Logging(nil)), factory, box
}

func TestPipelineCommitsAndFlushesOnSuccess(t *testing.T) {
	bus, factory, box := setup()

	res, err := commands.Dispatch[pingCommand, string](context.Background(), bus, pingCommand{})
	require.NoError(t, err)
	assert.Equal(t, "pong", res)
	require.Len(t, factory.units, 1)
	assert.True(t, factory.units[0].committed)
	assert.False(t, factory.units[0].rolledBack)
	assert.Equal(t, 1, box.flushes)
}

func TestPipelineRollsBackOnFailure(t *testing.T) {
	bus, factory, box := setup()

	_, err := commands.Dispatch[pingCommand, string](context.Background(), bus, pingCommand{fail: true})
	require.Error(t, err)
	assert.False(t, factory.units[0].committed)
	assert.True(t, factory.units[0].rolledBack)
	assert.Zero(t, box.flushes)
}

type scopedOutbox struct {
	countingOutbox
	added     []*outbox.Scope
	discarded []*outbox.Scope
}

func (o *scopedOutbox) Add(ctx context.Context, _ outbox.EventRecord) error {
	o.added = append(o.added, outbox.ScopeOf(ctx))
	return nil
}

func (o *scopedOutbox) Discard(ctx context.Context) {
	o.discarded = append(o.discarded, outbox.ScopeOf(ctx))
}

func TestOutboxFlushScopesEachDispatch(t *testing.T) {
	bus := commands.NewInMemoryBus()
	box := &scopedOutbox{}
	commands.RegisterHandler[pingCommand, string](bus, "test.ping", commands.HandlerFunc[pingCommand, string](
		func(ctx context.Context, cmd pingCommand) (string, error) {
			require.NoError(t, box.Add(ctx, outbox.EventRecord{ID: "e"}))
			if cmd.fail {
				return "", errors.New("boom")
			}
			return "pong", nil
		}))
	chained := ChainCommands(bus, OutboxFlush(box))

	_, err := commands.Dispatch[pingCommand, string](context.Background(), chained, pingCommand{})
	require.NoError(t, err)
	_, err = commands.Dispatch[pingCommand, string](context.Background(), chained, pingCommand{fail: true})
	require.Error(t, err)

	require.Len(t, box.added, 2)
	require.NotNil(t, box.added[0])
	assert.NotSame(t, box.added[0], box.added[1])
	assert.Equal(t, 1, box.flushes)
	require.Len(t, box.discarded, 1)
	assert.Same(t, box.added[1], box.discarded[0])
}
