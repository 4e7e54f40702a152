package memory

import (
	"context"
	"errors"
	"sync"
	"testing"

	"shelter-operations/internal/domain/animals"
	"shelter-operations/internal/domain/catalog"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnimalsRepo_ServiceRoundTrip(t *testing.T) {
	repo := NewAnimalsRepo()
	svc := animals.NewService(repo)
	ctx := context.Background()

	a, err := svc.Register(ctx, animals.RegisterInput{Name: "Milo", Species: "dog", ActorID: "staff-1"})
	require.NoError(t, err)

	st := catalog.StatusAdopted
	_, err = svc.UpdateLifecycle(ctx, a.ID, animals.UpdateRequest{Status: &st})
	require.NoError(t, err)

	back := catalog.StatusInCare
	res, err := svc.UpdateLifecycle(ctx, a.ID, animals.UpdateRequest{Status: &back})
	require.NoError(t, err)
	_, isConfirm := res.(animals.ConfirmationRequired)
	require.True(t, isConfirm)

	got, err := repo.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, catalog.StatusAdopted, got.Status)

	items, total, err := repo.ListHistory(ctx, a.ID, animals.Page{Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, items, 2)
	assert.Nil(t, items[0].OldValue)
	assert.Less(t, items[0].Seq, items[1].Seq)
}

func TestAnimalsRepo_RollbackOnError(t *testing.T) {
	repo := NewAnimalsRepo()
	ctx := context.Background()
	boom := errors.New("boom")

	err := repo.WithinTx(ctx, func(tx animals.Tx) error {
		if err := tx.Create(ctx, animals.Animal{ID: "a-1", Status: catalog.StatusQuarantine}); err != nil {
			return err
		}
		if _, err := tx.AppendHistory(ctx, animals.ChangeRecord{AnimalID: "a-1", Field: animals.FieldStatus}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = repo.GetByID(ctx, "a-1")
	assert.ErrorIs(t, err, animals.ErrNotFound)

	_, total, err := repo.ListHistory(ctx, "a-1", animals.Page{Limit: 10})
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestAnimalsRepo_NotFoundAndValidation(t *testing.T) {
	repo := NewAnimalsRepo()
	ctx := context.Background()

	err := repo.WithinTx(ctx, func(tx animals.Tx) error {
		_, err := tx.GetForUpdate(ctx, "missing")
		return err
	})
	assert.ErrorIs(t, err, animals.ErrNotFound)

	err = repo.WithinTx(ctx, func(tx animals.Tx) error {
		return tx.Create(ctx, animals.Animal{})
	})
	assert.Error(t, err)

	err = repo.WithinTx(ctx, func(tx animals.Tx) error {
		_, err := tx.AppendHistory(ctx, animals.ChangeRecord{AnimalID: "ghost"})
		return err
	})
	assert.Error(t, err)
}

func TestAnimalsRepo_ListFilterAndPaging(t *testing.T) {
	repo := NewAnimalsRepo()
	svc := animals.NewService(repo)
	ctx := context.Background()

	for _, st := range []catalog.Status{catalog.StatusQuarantine, catalog.StatusInCare, catalog.StatusTrial, catalog.StatusAdopted} {
		_, err := svc.Register(ctx, animals.RegisterInput{Name: string(st), Status: st})
		require.NoError(t, err)
	}

	items, err := repo.List(ctx, animals.ListFilter{Statuses: catalog.AdoptableStatuses(), Limit: 10})
	require.NoError(t, err)
	assert.Len(t, items, 2)

	items, err = repo.List(ctx, animals.ListFilter{Limit: 2, Offset: 3})
	require.NoError(t, err)
	assert.Len(t, items, 1)

	counts, err := repo.CountByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, counts[catalog.StatusAdopted])
}

func TestAnimalsRepo_ConcurrentUpdatesKeepHistoryConsistent(t *testing.T) {
	repo := NewAnimalsRepo()
	svc := animals.NewService(repo)
	ctx := context.Background()

	a, err := svc.Register(ctx, animals.RegisterInput{Name: "Milo"})
	require.NoError(t, err)

	targets := []catalog.Status{catalog.StatusInCare, catalog.StatusTrial}
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(st catalog.Status) {
			defer wg.Done()
			_, _ = svc.UpdateLifecycle(ctx, a.ID, animals.UpdateRequest{Status: &st})
		}(targets[i%2])
	}
	wg.Wait()

	items, _, err := repo.ListHistory(ctx, a.ID, animals.Page{Limit: animals.MaxPageLimit})
	require.NoError(t, err)

	// Cada fila arranca donde terminó la anterior: sin escrituras perdidas.
	for i := 1; i < len(items); i++ {
		require.NotNil(t, items[i].OldValue)
		assert.Equal(t, *items[i-1].NewValue, *items[i].OldValue)
	}

	final, err := repo.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, string(final.Status), *items[len(items)-1].NewValue)
}
