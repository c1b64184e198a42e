package domain

import "time"

// Item описывает вещь каталога.
// ID имеет формат "category/uuid" и совпадает с ключом вектора признаков.
type Item struct {
	ID         string
	Category   string
	Name       string
	Brand      string
	Price      int64 // Цена хранится в копейках
	Meta       map[string]any
	CreatedAt  time.Time
	UpdatedAt  *time.Time
	IsArchived bool
}

func NewItem(id string, category string, name string, brand string, price int64) *Item {
	return &Item{
		ID:       id,
		Category: category,
		Name:     name,
		Brand:    brand,
		Price:    price,
	}
}
