package converter

import "time"

// ItemModel представляет запись таблицы items в PostgreSQL.
type ItemModel struct {
	ID         string     `db:"id"`
	CategoryID int64      `db:"category_id"`
	Category   string     `db:"category"` // имя категории из JOIN с categories
	Name       string     `db:"name"`
	Brand      string     `db:"brand"`
	Price      int64      `db:"price"`
	CreatedAt  time.Time  `db:"created_at"`
	UpdatedAt  *time.Time `db:"updated_at"`
	IsArchived bool       `db:"is_archived"`
}

// CategoryModel представляет запись таблицы categories в PostgreSQL.
type CategoryModel struct {
	ID        int64      `db:"id"`
	Name      string     `db:"name"`
	CreatedAt time.Time  `db:"created_at"`
	UpdatedAt *time.Time `db:"updated_at"`
	IsActive  bool       `db:"is_active"`
}
