package features

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"sync"

	"github.com/swipestyle/go-backend/internal/cfg"
	"github.com/swipestyle/go-backend/internal/domain"
	"github.com/swipestyle/go-backend/pkg/e"
	"github.com/swipestyle/go-backend/pkg/logger"
	"github.com/jimlawless/whereami"
	"github.com/minio/minio-go/v7"
)

// FeatureStore хранит в памяти векторы признаков изображений,
// загруженные из артефакта image_features.json (MinIO или локальный файл).
// Артефакт грузится лениво и ровно один раз. Отсутствие артефакта
// не является ошибкой: хранилище остаётся пустым, сервис деградирует
// до случайной выдачи.
type FeatureStore struct {
	cfg      *cfg.FeaturesCfg
	minioCfg *cfg.MinIOCfg
	mc       *minio.Client
	logger   logger.Logger

	once    sync.Once
	vectors map[string]domain.FeatureVector
}

func NewFeatureStore(cfg *cfg.FeaturesCfg, minioCfg *cfg.MinIOCfg, mc *minio.Client, logger logger.Logger) *FeatureStore {
	return &FeatureStore{
		cfg:      cfg,
		minioCfg: minioCfg,
		mc:       mc,
		logger:   logger,
	}
}

// Get возвращает вектор признаков вещи по её идентификатору.
func (f *FeatureStore) Get(ctx context.Context, itemID string) (domain.FeatureVector, bool) {
	f.once.Do(func() { f.load(ctx) })

	vector, ok := f.vectors[itemID]
	return vector, ok
}

// Empty сообщает, пустое ли хранилище векторов.
func (f *FeatureStore) Empty(ctx context.Context) bool {
	f.once.Do(func() { f.load(ctx) })

	return len(f.vectors) == 0
}

// All возвращает все загруженные векторы. Используется при синхронизации в Qdrant.
func (f *FeatureStore) All(ctx context.Context) map[string]domain.FeatureVector {
	f.once.Do(func() { f.load(ctx) })

	return f.vectors
}

func (f *FeatureStore) load(ctx context.Context) {
	const op = "FeatureStore.load"

	f.vectors = make(map[string]domain.FeatureVector)

	data, err := f.readArtifact(ctx)
	if err != nil {
		f.logger.Warnf("Features artifact unavailable, running degraded: %v", e.Wrap(op, err))
		return
	}

	var parsed map[string]domain.FeatureVector
	if err := json.Unmarshal(data, &parsed); err != nil {
		f.logger.Errorf(err, "Features artifact is malformed, running degraded")
		return
	}

	f.vectors = parsed
	f.logger.Infof("Loaded %d feature vectors", len(parsed))
}

// readArtifact читает артефакт из MinIO или с локального диска.
func (f *FeatureStore) readArtifact(ctx context.Context) ([]byte, error) {
	if f.cfg.UseMinio && f.mc != nil {
		obj, err := f.mc.GetObject(ctx, f.minioCfg.BucketName, f.minioCfg.FeaturesObjectKey, minio.GetObjectOptions{})
		if err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}
		defer obj.Close()

		data, err := io.ReadAll(obj)
		if err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}

		return data, nil
	}

	data, err := os.ReadFile(f.cfg.LocalPath)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return data, nil
}
