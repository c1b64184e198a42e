package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/swipestyle/go-backend/internal/domain"
	"github.com/swipestyle/go-backend/pkg/e"
	"github.com/swipestyle/go-backend/pkg/logger"
	transaction "github.com/avito-tech/go-transaction-manager/drivers/pgxv5/v2"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const defaultSimilarLimit = 10

// ItemUseCase реализует бизнес-логику управления каталогом вещей.
type ItemUseCase struct {
	itemRepo     ItemRepository
	categoryRepo CategoryRepository
	dbPool       transaction.Transactional
	features     FeatureProvider
	vectorSearch VectorSearchRepository
	logger       logger.Logger
	cacheRepo    CacheRepository
}

func NewItemUC(
	itemRepo ItemRepository,
	categoryRepo CategoryRepository,
	dbPool transaction.Transactional,
	features FeatureProvider,
	vectorSearch VectorSearchRepository,
	logger logger.Logger,
	cacheRepo CacheRepository,
) *ItemUseCase {
	return &ItemUseCase{
		itemRepo:     itemRepo,
		categoryRepo: categoryRepo,
		dbPool:       dbPool,
		features:     features,
		vectorSearch: vectorSearch,
		logger:       logger,
		cacheRepo:    cacheRepo,
	}
}

// RegisterItem добавляет вещь в каталог: идемпотентно создаёт категорию и вещь в одной транзакции.
func (i *ItemUseCase) RegisterItem(ctx context.Context, req *RegisterItemReq) (*domain.Item, error) {
	const op = "ItemUseCase.RegisterItem"

	// Валидация данных
	var err error
	err = i.validateItem(req)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	itemID := req.ID
	if itemID == "" {
		itemID = fmt.Sprintf("%s/%s", req.Category, uuid.NewString())
	}

	ctx, tx, err := transaction.NewTransaction(ctx, pgx.TxOptions{}, i.dbPool)
	if err != nil {
		return nil, e.Wrap(op, err)
	}
	defer func() {
		if err != nil && tx.IsActive() {
			tx.Rollback(ctx)
		}
	}()
	ctx = context.WithValue(ctx, "tx", tx.Transaction())

	// идемпотентное создание категории
	_, err = i.categoryRepo.Create(ctx, domain.NewCategory(req.Category))
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	// идемпотентное создание вещи
	item, err := i.itemRepo.Upsert(ctx, domain.NewItem(itemID, req.Category, req.Name, req.Brand, req.Price))
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	// Коммит изменений в бд
	err = tx.Commit(ctx)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	// Удаление из кэша старых данных вещи
	if err := i.cacheRepo.DeleteItems(ctx, []string{item.ID}); err != nil {
		i.logger.Warnf("Failed to invalidate item cache: %v", e.Wrap(op, err))
	}

	return item, nil
}

// GetItemsInfo возвращает информацию о вещах по их идентификаторам.
func (i *ItemUseCase) GetItemsInfo(ctx context.Context, req *GetItemsReq) (*GetItemsRes, error) {
	const op = "ItemUseCase.GetItemsInfo"

	// Валидация
	if len(req.IDs) == 0 {
		return nil, e.Wrap(op, e.ErrItemIDRequired)
	}

	// Поиск вещей в хэше
	cacheItemsMap, err := i.cacheRepo.GetItems(ctx, req.IDs)
	var nonCacheable []string
	if err != nil {
		nonCacheable = append(nonCacheable, req.IDs...)
		cacheItemsMap = nil
	} else {
		for _, itemID := range req.IDs {
			if _, ok := cacheItemsMap[itemID]; !ok {
				nonCacheable = append(nonCacheable, itemID)
			}
		}
	}

	// Получение вещей из БД
	var itemsInfoFromDB []ItemInfo
	if len(nonCacheable) > 0 {
		itemsInfoFromDB, err = i.itemRepo.GetItemsInfo(ctx, nonCacheable)
		if err != nil {
			return nil, e.Wrap(op, err)
		}

		// Фоновое добавление вещей в хэш
		go func() {
			bgCtx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
			defer cancel()

			if err := i.cacheRepo.SetItems(bgCtx, itemsInfoFromDB); err != nil {
				i.logger.Warnf("Failed to cache items in background: %v", e.Wrap(op, err))
			}
		}()
	}

	dbItemsMap := make(map[string]ItemInfo, len(itemsInfoFromDB))
	for _, itemInfo := range itemsInfoFromDB {
		dbItemsMap[itemInfo.ID] = itemInfo
	}

	// Формирование результата
	result := make([]ItemInfo, 0, len(req.IDs))
	notFoundItems := make([]string, 0)
	for _, id := range req.IDs {
		if item, ok := cacheItemsMap[id]; ok {
			result = append(result, item)
		} else if item, ok := dbItemsMap[id]; ok {
			result = append(result, item)
		} else {
			notFoundItems = append(notFoundItems, id)
		}
	}

	return NewGetItemsRes(result, notFoundItems), nil
}

// GetSimilarItems ищет визуально похожие вещи через ANN-поиск по вектору признаков.
func (i *ItemUseCase) GetSimilarItems(ctx context.Context, itemID string, limit uint64) ([]SimilarItem, error) {
	const op = "ItemUseCase.GetSimilarItems"

	if itemID == "" {
		return nil, e.Wrap(op, e.ErrItemIDRequired)
	}
	if i.vectorSearch == nil {
		return nil, e.Wrap(op, e.ErrVectorSearchDisabled)
	}
	if limit == 0 {
		limit = defaultSimilarLimit
	}

	vector, ok := i.features.Get(ctx, itemID)
	if !ok {
		return nil, e.Wrap(op, e.ErrEmptyVector)
	}

	similar, err := i.vectorSearch.SearchSimilar(ctx, vector, limit, itemID)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return similar, nil
}

// validateItem проверяет корректность входных данных запроса на добавление вещи.
func (i *ItemUseCase) validateItem(req *RegisterItemReq) error {
	if req == nil {
		return e.ErrMissingFields
	}
	if strings.TrimSpace(req.Name) == "" {
		return e.ErrItemNameRequired
	}
	if strings.TrimSpace(req.Category) == "" {
		return e.ErrCategoryRequired
	}
	if req.Price < 0 {
		return e.ErrInvalidPrice
	}

	return nil
}
