package converter

import (
	"github.com/swipestyle/go-backend/internal/domain"
)

// ItemConverter преобразует сущности Item между domain и моделью PostgreSQL.
type ItemConverter struct{}

func (ItemConverter) ToEntity(model *ItemModel) *domain.Item {
	return &domain.Item{
		ID:         model.ID,
		Category:   model.Category,
		Name:       model.Name,
		Brand:      model.Brand,
		Price:      model.Price,
		CreatedAt:  model.CreatedAt,
		UpdatedAt:  model.UpdatedAt,
		IsArchived: model.IsArchived,
	}
}

// CategoryConverter преобразует сущности Category между domain и моделью PostgreSQL.
type CategoryConverter struct{}

func (CategoryConverter) ToEntity(model *CategoryModel) *domain.Category {
	return &domain.Category{
		ID:        model.ID,
		Name:      model.Name,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
		IsActive:  model.IsActive,
	}
}
