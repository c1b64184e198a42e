package pgdb

import (
	"context"

	"github.com/swipestyle/go-backend/internal/domain"
	"github.com/swipestyle/go-backend/internal/repository/pgdb/converter"
	"github.com/swipestyle/go-backend/internal/usecase"
	"github.com/swipestyle/go-backend/pkg/e"
	"github.com/swipestyle/go-backend/pkg/tr"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimlawless/whereami"
)

// ItemRepo реализует репозиторий вещей поверх PostgreSQL.
type ItemRepo struct {
	pool *pgxpool.Pool
	conv converter.ItemConverter
}

func NewItemRepo(pool *pgxpool.Pool, conv converter.ItemConverter) *ItemRepo {
	return &ItemRepo{
		pool: pool,
		conv: conv,
	}
}

const itemColumns = `
	it.id, cat.name, it.name, it.brand, it.price,
	it.created_at, it.updated_at, it.is_archived
`

// Upsert идемпотентно создаёт или обновляет вещь по идентификатору.
// Запись обновляется только при изменении названия, бренда или цены.
func (i *ItemRepo) Upsert(ctx context.Context, item *domain.Item) (*domain.Item, error) {
	tx, err := tr.TxFromCtx(ctx)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	// VALUES ($1, $2, $3, $4, $5) id, category_name, name, brand, price
	query := `
		INSERT INTO items (id, category_id, name, brand, price)
		SELECT $1, cat.id, $3, $4, $5
		FROM categories cat
		WHERE cat.name = $2
		ON CONFLICT (id)
		DO UPDATE SET
			name = EXCLUDED.name,
			brand = EXCLUDED.brand,
			price = EXCLUDED.price,
			updated_at = NOW()
		WHERE
			items.name IS DISTINCT FROM EXCLUDED.name OR
			items.brand IS DISTINCT FROM EXCLUDED.brand OR
			items.price IS DISTINCT FROM EXCLUDED.price
		RETURNING id, name, brand, price, created_at, updated_at, is_archived;
	`

	var model converter.ItemModel
	model.Category = item.Category
	err = tx.QueryRow(ctx, query, item.ID, item.Category, item.Name, item.Brand, item.Price).
		Scan(
			&model.ID, &model.Name, &model.Brand, &model.Price,
			&model.CreatedAt, &model.UpdatedAt, &model.IsArchived,
		)
	if err == pgx.ErrNoRows {
		// Конфликт без изменений: возвращаем текущую запись.
		return i.getByID(ctx, tx, item.ID)
	}
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return i.conv.ToEntity(&model), nil
}

// GetItemsInfo возвращает информацию о вещах по их идентификаторам, включая название категории.
func (i *ItemRepo) GetItemsInfo(ctx context.Context, ids []string) ([]usecase.ItemInfo, error) {
	query := `
		SELECT it.id, it.name, it.brand, cat.name, it.price
		FROM items it
		JOIN categories cat ON it.category_id = cat.id
		WHERE it.id = ANY($1) AND NOT it.is_archived
	`

	rows, err := i.pool.Query(ctx, query, ids)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	defer rows.Close()

	result := make([]usecase.ItemInfo, 0)
	for rows.Next() {
		var item usecase.ItemInfo
		if err := rows.Scan(&item.ID, &item.Name, &item.Brand, &item.Category, &item.Price); err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}

		result = append(result, item)
	}

	return result, rows.Err()
}

// GetByIDs возвращает вещи по их идентификаторам.
func (i *ItemRepo) GetByIDs(ctx context.Context, ids []string) ([]domain.Item, error) {
	query := `
		SELECT ` + itemColumns + `
		FROM items it
		JOIN categories cat ON it.category_id = cat.id
		WHERE it.id = ANY($1) AND NOT it.is_archived
	`

	rows, err := i.pool.Query(ctx, query, ids)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	defer rows.Close()

	return i.scanItems(rows)
}

// GetByCategory возвращает вещи указанной категории в порядке добавления.
func (i *ItemRepo) GetByCategory(ctx context.Context, category string) ([]domain.Item, error) {
	query := `
		SELECT ` + itemColumns + `
		FROM items it
		JOIN categories cat ON it.category_id = cat.id
		WHERE cat.name = $1 AND NOT it.is_archived
		ORDER BY it.created_at, it.id
	`

	rows, err := i.pool.Query(ctx, query, category)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	defer rows.Close()

	return i.scanItems(rows)
}

// GetCatalog возвращает все вещи каталога, сгруппированные по названию категории.
func (i *ItemRepo) GetCatalog(ctx context.Context) (map[string][]domain.Item, error) {
	query := `
		SELECT ` + itemColumns + `
		FROM items it
		JOIN categories cat ON it.category_id = cat.id
		WHERE NOT it.is_archived
		ORDER BY cat.name, it.created_at, it.id
	`

	rows, err := i.pool.Query(ctx, query)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	defer rows.Close()

	items, err := i.scanItems(rows)
	if err != nil {
		return nil, err
	}

	catalog := make(map[string][]domain.Item)
	for _, item := range items {
		catalog[item.Category] = append(catalog[item.Category], item)
	}

	return catalog, nil
}

func (i *ItemRepo) getByID(ctx context.Context, tx pgx.Tx, id string) (*domain.Item, error) {
	query := `
		SELECT ` + itemColumns + `
		FROM items it
		JOIN categories cat ON it.category_id = cat.id
		WHERE it.id = $1
	`

	var model converter.ItemModel
	err := tx.QueryRow(ctx, query, id).
		Scan(
			&model.ID, &model.Category, &model.Name, &model.Brand, &model.Price,
			&model.CreatedAt, &model.UpdatedAt, &model.IsArchived,
		)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return i.conv.ToEntity(&model), nil
}

func (i *ItemRepo) scanItems(rows pgx.Rows) ([]domain.Item, error) {
	result := make([]domain.Item, 0)
	for rows.Next() {
		var model converter.ItemModel
		if err := rows.Scan(
			&model.ID, &model.Category, &model.Name, &model.Brand, &model.Price,
			&model.CreatedAt, &model.UpdatedAt, &model.IsArchived,
		); err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}

		result = append(result, *i.conv.ToEntity(&model))
	}

	return result, rows.Err()
}
