package usecase

import (
	"context"

	"github.com/swipestyle/go-backend/internal/domain"
)

type ItemRepository interface {
	Upsert(ctx context.Context, item *domain.Item) (*domain.Item, error)
	GetItemsInfo(ctx context.Context, ids []string) ([]ItemInfo, error)
	GetByIDs(ctx context.Context, ids []string) ([]domain.Item, error)
	GetByCategory(ctx context.Context, category string) ([]domain.Item, error)
	// GetCatalog возвращает все вещи каталога, сгруппированные по категориям.
	GetCatalog(ctx context.Context) (map[string][]domain.Item, error)
}

type CategoryRepository interface {
	Create(ctx context.Context, category *domain.Category) (*domain.Category, error)
}

// PreferenceRepository — хранилище накопленных реакций пользователя.
// Add/Remove выполняются в транзакции вызывающего кода.
type PreferenceRepository interface {
	GetLiked(ctx context.Context, userID string) ([]domain.Item, error)
	GetRejected(ctx context.Context, userID string) ([]domain.Item, error)
	GetSwiped(ctx context.Context, userID string) (map[string]struct{}, error)
	Add(ctx context.Context, userID string, itemID string, kinds ...domain.PreferenceKind) error
	Remove(ctx context.Context, userID string, itemID string, kinds ...domain.PreferenceKind) error
}

type CacheRepository interface {
	GetItems(ctx context.Context, ids []string) (map[string]ItemInfo, error)
	SetItems(ctx context.Context, items []ItemInfo) error
	DeleteItems(ctx context.Context, ids []string) error
}

// FeatureProvider — доступ к векторам признаков изображений.
// Отсутствие артефакта — штатный деградированный режим, а не ошибка:
// Empty возвращает true, Get всегда промахивается.
type FeatureProvider interface {
	Get(ctx context.Context, itemID string) (domain.FeatureVector, bool)
	Empty(ctx context.Context) bool
}

// VectorSearchRepository — ANN-поиск похожих векторов (Qdrant).
type VectorSearchRepository interface {
	Upsert(ctx context.Context, vectors []domain.Embedding) error
	SearchSimilar(ctx context.Context, vector domain.FeatureVector, limit uint64, excludeItemID string) ([]SimilarItem, error)
}
