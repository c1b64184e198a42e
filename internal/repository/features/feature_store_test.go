package features

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/swipestyle/go-backend/internal/cfg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Infof(format string, args ...any)             {}
func (nopLogger) Warnf(format string, args ...any)             {}
func (nopLogger) Errorf(err error, format string, args ...any) {}

func newLocalStore(t *testing.T, artifact string) *FeatureStore {
	t.Helper()

	path := filepath.Join(t.TempDir(), "image_features.json")
	require.NoError(t, os.WriteFile(path, []byte(artifact), 0o644))

	return NewFeatureStore(&cfg.FeaturesCfg{LocalPath: path}, nil, nil, nopLogger{})
}

func TestGetLoadsArtifact(t *testing.T) {
	store := newLocalStore(t, `{"dresses/a": [0.1, 0.2, 0.3], "hats/b": [1, 0, 0]}`)
	ctx := context.Background()

	vector, ok := store.Get(ctx, "dresses/a")
	require.True(t, ok)
	assert.Len(t, vector, 3)
	assert.InDelta(t, 0.2, vector[1], 1e-6)

	assert.False(t, store.Empty(ctx))
	assert.Len(t, store.All(ctx), 2)
}

func TestGetUnknownItem(t *testing.T) {
	store := newLocalStore(t, `{"dresses/a": [0.1]}`)

	_, ok := store.Get(context.Background(), "dresses/missing")
	assert.False(t, ok)
}

func TestMissingArtifactDegrades(t *testing.T) {
	store := NewFeatureStore(
		&cfg.FeaturesCfg{LocalPath: filepath.Join(t.TempDir(), "nope.json")},
		nil, nil, nopLogger{},
	)
	ctx := context.Background()

	assert.True(t, store.Empty(ctx))
	_, ok := store.Get(ctx, "dresses/a")
	assert.False(t, ok)
}

func TestMalformedArtifactDegrades(t *testing.T) {
	store := newLocalStore(t, `{"dresses/a": "not a vector"`)

	assert.True(t, store.Empty(context.Background()))
}

func TestArtifactLoadedOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "image_features.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"dresses/a": [1]}`), 0o644))

	store := NewFeatureStore(&cfg.FeaturesCfg{LocalPath: path}, nil, nil, nopLogger{})
	ctx := context.Background()

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, ok := store.Get(ctx, "dresses/a")
			assert.True(t, ok)
		}()
	}
	wg.Wait()

	// Подмена файла после первой загрузки не влияет на содержимое
	require.NoError(t, os.WriteFile(path, []byte(`{}`), 0o644))
	assert.False(t, store.Empty(ctx))
}
