package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NissesSenap/gridplane/internal/plane"
)

func setupTestStorage(t *testing.T) Store {
	store, err := NewSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSaveAndGetPreset(t *testing.T) {
	store := setupTestStorage(t)
	ctx := context.Background()

	cfg := plane.DefaultConfig()
	cfg.Title = "Linear functions"
	cfg.PointRules.MaximumPoints = 3

	err := store.SavePreset(ctx, &Preset{Name: "linear", Config: cfg})
	require.NoError(t, err)

	preset, err := store.GetPreset(ctx, "linear")
	require.NoError(t, err)
	assert.Equal(t, "linear", preset.Name)
	assert.Equal(t, cfg, preset.Config)
	assert.False(t, preset.UpdatedAt.IsZero())
}

func TestGetPreset_NotFound(t *testing.T) {
	store := setupTestStorage(t)

	_, err := store.GetPreset(context.Background(), "missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPresetNotFound)
}

func TestSavePreset_EmptyName(t *testing.T) {
	store := setupTestStorage(t)

	err := store.SavePreset(context.Background(), &Preset{Config: plane.DefaultConfig()})
	assert.Error(t, err)
}

func TestUpsertPreset(t *testing.T) {
	store := setupTestStorage(t)
	ctx := context.Background()

	cfg := plane.DefaultConfig()
	require.NoError(t, store.SavePreset(ctx, &Preset{Name: "quadrant", Config: cfg}))

	cfg.GridType = plane.GridOneQuadrant
	require.NoError(t, store.SavePreset(ctx, &Preset{Name: "quadrant", Config: cfg}))

	presets, err := store.ListPresets(ctx)
	require.NoError(t, err)
	require.Len(t, presets, 1)
	assert.Equal(t, plane.GridOneQuadrant, presets[0].Config.GridType)
}

func TestListPresets_Ordered(t *testing.T) {
	store := setupTestStorage(t)
	ctx := context.Background()

	for _, name := range []string{"zeta", "alpha", "mid"} {
		require.NoError(t, store.SavePreset(ctx, &Preset{Name: name, Config: plane.DefaultConfig()}))
	}

	presets, err := store.ListPresets(ctx)
	require.NoError(t, err)
	require.Len(t, presets, 3)
	assert.Equal(t, "alpha", presets[0].Name)
	assert.Equal(t, "mid", presets[1].Name)
	assert.Equal(t, "zeta", presets[2].Name)
}

func TestDeletePreset(t *testing.T) {
	store := setupTestStorage(t)
	ctx := context.Background()

	require.NoError(t, store.SavePreset(ctx, &Preset{Name: "gone", Config: plane.DefaultConfig()}))
	require.NoError(t, store.DeletePreset(ctx, "gone"))

	_, err := store.GetPreset(ctx, "gone")
	assert.ErrorIs(t, err, ErrPresetNotFound)

	err = store.DeletePreset(ctx, "gone")
	assert.ErrorIs(t, err, ErrPresetNotFound)
}

func TestNewSQLite_FileCreatesDirectory(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "presets.db")

	store, err := NewSQLite(dbPath)
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	require.NoError(t, store.SavePreset(ctx, &Preset{Name: "disk", Config: plane.DefaultConfig()}))

	preset, err := store.GetPreset(ctx, "disk")
	require.NoError(t, err)
	assert.Equal(t, "disk", preset.Name)
}
