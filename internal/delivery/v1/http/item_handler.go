package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/swipestyle/go-backend/internal/usecase"
	"github.com/swipestyle/go-backend/pkg/e"
	"github.com/swipestyle/go-backend/pkg/logger"
)

type ItemHandler struct {
	itemUsecase usecase.ItemUC
	logger      logger.Logger
}

func NewItemHandler(itemUsecase usecase.ItemUC, logger logger.Logger) *ItemHandler {
	return &ItemHandler{itemUsecase: itemUsecase, logger: logger}
}

type registerItemRequest struct {
	ID       string `json:"id,omitempty"`
	Name     string `json:"name"`
	Brand    string `json:"brand,omitempty"`
	Category string `json:"category"`
	Price    string `json:"price"`
}

// registerItem
//
//	@Summary		Регистрация вещи
//	@Description	Добавляет вещь в каталог, идемпотентно создавая категорию
//	@Tags			items
//	@Accept			json
//	@Produce		json
//	@Param			body	body		registerItemRequest	true	"Данные вещи"
//	@Success		201		{object}	map[string]interface{}	"Успешное создание"
//	@Failure		400		{object}	ErrorResponse	"Ошибка валидации"
//	@Router			/items [post]
func (i *ItemHandler) registerItem(w http.ResponseWriter, r *http.Request) {
	var req registerItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		i.logger.Warnf("%d %s: %s", http.StatusBadRequest, e.ErrStatusBadRequest.Error(), err.Error())
		WriteError(w, e.ErrStatusBadRequest)
		return
	}

	priceCents, err := parsePriceToCents(req.Price)
	if err != nil {
		i.logger.Warnf("%d %s: %s", http.StatusBadRequest, e.ErrStatusBadRequest.Error(), err.Error())
		WriteError(w, err)
		return
	}

	item, err := i.itemUsecase.RegisterItem(r.Context(),
		usecase.NewRegisterItemReq(req.ID, req.Name, req.Brand, req.Category, priceCents))
	if err != nil {
		i.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusCreated, map[string]interface{}{
		"id": item.ID,
	})
}

// getItems
//
//	@Summary		Информация о вещах
//	@Description	Возвращает данные вещей по списку идентификаторов
//	@Tags			items
//	@Produce		json
//	@Param			ids	query		string	true	"Идентификаторы через запятую"
//	@Success		200	{object}	usecase.GetItemsRes
//	@Failure		400	{object}	ErrorResponse
//	@Router			/items [get]
func (i *ItemHandler) getItems(w http.ResponseWriter, r *http.Request) {
	rawIDs := strings.Split(r.URL.Query().Get("ids"), ",")
	ids := make([]string, 0, len(rawIDs))
	for _, id := range rawIDs {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}

	res, err := i.itemUsecase.GetItemsInfo(r.Context(), usecase.NewGetItemsReq(ids))
	if err != nil {
		i.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, res)
}

// similarItems
//
//	@Summary		Похожие вещи
//	@Description	Возвращает визуально похожие вещи по ANN-поиску
//	@Tags			items
//	@Produce		json
//	@Param			id		query		string	true	"Идентификатор вещи (формат category/uuid)"
//	@Param			limit	query		int		false	"Максимум результатов"
//	@Success		200		{array}		usecase.SimilarItem
//	@Failure		404		{object}	ErrorResponse	"У вещи нет вектора признаков"
//	@Router			/items/similar [get]
func (i *ItemHandler) similarItems(w http.ResponseWriter, r *http.Request) {
	// Идентификаторы вещей содержат слэш, поэтому id передаётся query-параметром
	itemID := strings.TrimSpace(r.URL.Query().Get("id"))
	if itemID == "" {
		WriteError(w, e.ErrItemIDRequired)
		return
	}

	var limit uint64
	if rawLimit := r.URL.Query().Get("limit"); rawLimit != "" {
		parsed, err := strconv.ParseUint(rawLimit, 10, 64)
		if err != nil {
			WriteError(w, e.ErrStatusBadRequest)
			return
		}
		limit = parsed
	}

	res, err := i.itemUsecase.GetSimilarItems(r.Context(), itemID, limit)
	if err != nil {
		i.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, res)
}
