package pgdb

import (
	"context"

	"github.com/swipestyle/go-backend/internal/domain"
	"github.com/swipestyle/go-backend/internal/repository/pgdb/converter"
	"github.com/swipestyle/go-backend/pkg/e"
	"github.com/swipestyle/go-backend/pkg/tr"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimlawless/whereami"
)

// PreferenceRepo хранит реакции пользователей на вещи поверх PostgreSQL.
type PreferenceRepo struct {
	pool *pgxpool.Pool
	conv converter.ItemConverter
}

func NewPreferenceRepo(pool *pgxpool.Pool, conv converter.ItemConverter) *PreferenceRepo {
	return &PreferenceRepo{
		pool: pool,
		conv: conv,
	}
}

// GetLiked возвращает лайкнутые пользователем вещи в порядке лайков.
func (p *PreferenceRepo) GetLiked(ctx context.Context, userID string) ([]domain.Item, error) {
	return p.getByKind(ctx, userID, domain.PreferenceLiked)
}

// GetRejected возвращает отклонённые пользователем вещи.
func (p *PreferenceRepo) GetRejected(ctx context.Context, userID string) ([]domain.Item, error) {
	return p.getByKind(ctx, userID, domain.PreferenceRejected)
}

// GetSwiped возвращает идентификаторы всех уже показанных пользователю вещей.
func (p *PreferenceRepo) GetSwiped(ctx context.Context, userID string) (map[string]struct{}, error) {
	query := `
		SELECT item_id FROM user_preferences
		WHERE user_id = $1 AND kind = $2
	`

	rows, err := p.pool.Query(ctx, query, userID, string(domain.PreferenceSwiped))
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	defer rows.Close()

	swiped := make(map[string]struct{})
	for rows.Next() {
		var itemID string
		if err := rows.Scan(&itemID); err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}
		swiped[itemID] = struct{}{}
	}

	return swiped, rows.Err()
}

// Add идемпотентно фиксирует реакции пользователя на вещь.
// Вызывается в транзакции вызывающего кода.
func (p *PreferenceRepo) Add(ctx context.Context, userID string, itemID string, kinds ...domain.PreferenceKind) error {
	tx, err := tr.TxFromCtx(ctx)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	query := `
		INSERT INTO user_preferences(user_id, item_id, kind)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, item_id, kind) DO NOTHING;
	`

	for _, kind := range kinds {
		if _, err := tx.Exec(ctx, query, userID, itemID, string(kind)); err != nil {
			return e.Wrap(whereami.WhereAmI(), err)
		}
	}

	return nil
}

// Remove удаляет реакции пользователя на вещь. Используется при отмене свайпа.
func (p *PreferenceRepo) Remove(ctx context.Context, userID string, itemID string, kinds ...domain.PreferenceKind) error {
	tx, err := tr.TxFromCtx(ctx)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	query := `
		DELETE FROM user_preferences
		WHERE user_id = $1 AND item_id = $2 AND kind = ANY($3);
	`

	kindStrs := make([]string, 0, len(kinds))
	for _, kind := range kinds {
		kindStrs = append(kindStrs, string(kind))
	}

	if _, err := tx.Exec(ctx, query, userID, itemID, kindStrs); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

func (p *PreferenceRepo) getByKind(ctx context.Context, userID string, kind domain.PreferenceKind) ([]domain.Item, error) {
	query := `
		SELECT ` + itemColumns + `
		FROM user_preferences up
		JOIN items it ON up.item_id = it.id
		JOIN categories cat ON it.category_id = cat.id
		WHERE up.user_id = $1 AND up.kind = $2 AND NOT it.is_archived
		ORDER BY up.created_at, up.item_id
	`

	rows, err := p.pool.Query(ctx, query, userID, string(kind))
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	defer rows.Close()

	result := make([]domain.Item, 0)
	for rows.Next() {
		var model converter.ItemModel
		if err := rows.Scan(
			&model.ID, &model.Category, &model.Name, &model.Brand, &model.Price,
			&model.CreatedAt, &model.UpdatedAt, &model.IsArchived,
		); err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}

		result = append(result, *p.conv.ToEntity(&model))
	}

	return result, rows.Err()
}
