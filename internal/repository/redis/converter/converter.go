package converter

import "github.com/swipestyle/go-backend/internal/usecase"

// ItemInfoConverter преобразует информацию о вещи между usecase и Redis-моделью.
type ItemInfoConverter struct{}

func (ItemInfoConverter) ToRedisModel(entity *usecase.ItemInfo) *ItemInfoRedisModel {
	return &ItemInfoRedisModel{
		ID:       entity.ID,
		Name:     entity.Name,
		Brand:    entity.Brand,
		Category: entity.Category,
		Price:    entity.Price,
	}
}

func (ItemInfoConverter) ToUseCase(model *ItemInfoRedisModel) *usecase.ItemInfo {
	return &usecase.ItemInfo{
		ID:       model.ID,
		Name:     model.Name,
		Brand:    model.Brand,
		Category: model.Category,
		Price:    model.Price,
	}
}

func (c ItemInfoConverter) ToArrRedisModel(entities []usecase.ItemInfo) []ItemInfoRedisModel {
	models := make([]ItemInfoRedisModel, 0, len(entities))
	for i := range entities {
		models = append(models, *c.ToRedisModel(&entities[i]))
	}
	return models
}
