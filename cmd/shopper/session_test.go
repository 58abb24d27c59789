package main

import (
	"context"
	"os"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"philcali.me/groceries/internal/shopping"
	"philcali.me/groceries/internal/snapshot"
)

func TestSessionKeepsUnreadableSnapshot(t *testing.T) {
	ctx := context.Background()
	slot := snapshot.NewFileSlot(t.TempDir())
	truncated := []byte(`{"budget":50,"purchaseHistory":[{"id":"a"`)
	require.NoError(t, os.WriteFile(slot.Path, truncated, 0o600))

	s := &session{
		log:   logrus.New(),
		store: shopping.NewStore(nil),
		slot:  slot,
	}
	assert.False(t, s.loadSnapshot(ctx))
	require.NoError(t, s.close(ctx))

	raw, err := os.ReadFile(slot.Path)
	require.NoError(t, err)
	assert.Equal(t, truncated, raw)
}

func TestSessionSavesReadableSnapshot(t *testing.T) {
	ctx := context.Background()
	slot := snapshot.NewFileSlot(t.TempDir())

	s := &session{
		log:   logrus.New(),
		store: shopping.NewStore(nil),
		slot:  slot,
	}
	assert.True(t, s.loadSnapshot(ctx))
	s.store.SetBudget(40)
	require.NoError(t, s.close(ctx))

	state, ok, err := slot.Load(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 40.0, state.Budget)
}
