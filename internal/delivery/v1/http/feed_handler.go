package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/swipestyle/go-backend/internal/usecase"
	"github.com/swipestyle/go-backend/pkg/e"
	"github.com/swipestyle/go-backend/pkg/logger"
)

type FeedHandler struct {
	feedUsecase usecase.FeedUC
	logger      logger.Logger
}

func NewFeedHandler(feedUsecase usecase.FeedUC, logger logger.Logger) *FeedHandler {
	return &FeedHandler{feedUsecase: feedUsecase, logger: logger}
}

type swipeRequest struct {
	ItemID string `json:"item_id"`
}

// nextItem
//
//	@Summary		Следующая карточка
//	@Description	Возвращает следующую вещь активной категории для свайпа
//	@Tags			feed
//	@Produce		json
//	@Param			X-User-ID	header		string	true	"Идентификатор пользователя"
//	@Success		200			{object}	usecase.FeedCard
//	@Failure		404			{object}	ErrorResponse	"Вещи закончились"
//	@Router			/feed/next [get]
func (f *FeedHandler) nextItem(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromRequest(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	card, err := f.feedUsecase.NextItem(r.Context(), userID)
	if err != nil {
		f.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, card)
}

// like
//
//	@Summary		Лайк вещи
//	@Description	Фиксирует лайк, добавляет вещь в вишлист и продвигает сессию
//	@Tags			feed
//	@Accept			json
//	@Produce		json
//	@Param			X-User-ID	header		string			true	"Идентификатор пользователя"
//	@Param			body		body		swipeRequest	true	"Идентификатор вещи"
//	@Success		200			{object}	usecase.SwipeRes
//	@Failure		400			{object}	ErrorResponse
//	@Router			/feed/like [post]
func (f *FeedHandler) like(w http.ResponseWriter, r *http.Request) {
	f.handleSwipe(w, r, f.feedUsecase.Like)
}

// dislike
//
//	@Summary		Дизлайк вещи
//	@Description	Фиксирует отказ и продвигает сессию
//	@Tags			feed
//	@Accept			json
//	@Produce		json
//	@Param			X-User-ID	header		string			true	"Идентификатор пользователя"
//	@Param			body		body		swipeRequest	true	"Идентификатор вещи"
//	@Success		200			{object}	usecase.SwipeRes
//	@Failure		400			{object}	ErrorResponse
//	@Router			/feed/dislike [post]
func (f *FeedHandler) dislike(w http.ResponseWriter, r *http.Request) {
	f.handleSwipe(w, r, f.feedUsecase.Dislike)
}

// undo
//
//	@Summary		Отмена последнего свайпа
//	@Description	Возвращает последнюю свайпнутую вещь в начало очереди
//	@Tags			feed
//	@Produce		json
//	@Param			X-User-ID	header		string	true	"Идентификатор пользователя"
//	@Success		204			"Свайп отменён"
//	@Failure		400			{object}	ErrorResponse	"Отменять нечего"
//	@Router			/feed/undo [post]
func (f *FeedHandler) undo(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromRequest(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	if err := f.feedUsecase.Undo(r.Context(), userID); err != nil {
		f.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// recommendations
//
//	@Summary		Рекомендации по категории
//	@Description	Возвращает отранжированные по визуальной похожести вещи категории
//	@Tags			feed
//	@Produce		json
//	@Param			X-User-ID	header		string	true	"Идентификатор пользователя"
//	@Param			category	query		string	true	"Название категории"
//	@Success		200			{object}	usecase.ScoreRes
//	@Failure		400			{object}	ErrorResponse
//	@Router			/recommendations [get]
func (f *FeedHandler) recommendations(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromRequest(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	category := strings.TrimSpace(r.URL.Query().Get("category"))
	if category == "" {
		WriteError(w, e.ErrCategoryRequired)
		return
	}

	res, err := f.feedUsecase.Recommendations(r.Context(), userID, category)
	if err != nil {
		f.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, res)
}

// wishlist
//
//	@Summary		Вишлист пользователя
//	@Description	Возвращает лайкнутые вещи в порядке лайков
//	@Tags			feed
//	@Produce		json
//	@Param			X-User-ID	header		string	true	"Идентификатор пользователя"
//	@Success		200			{array}		usecase.ItemInfo
//	@Failure		400			{object}	ErrorResponse
//	@Router			/wishlist [get]
func (f *FeedHandler) wishlist(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromRequest(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	items, err := f.feedUsecase.Wishlist(r.Context(), userID)
	if err != nil {
		f.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, items)
}

func (f *FeedHandler) handleSwipe(
	w http.ResponseWriter,
	r *http.Request,
	swipe func(ctx context.Context, userID string, itemID string) (*usecase.SwipeRes, error),
) {
	userID, err := userIDFromRequest(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	var req swipeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, e.ErrStatusBadRequest)
		return
	}
	if strings.TrimSpace(req.ItemID) == "" {
		WriteError(w, e.ErrItemIDRequired)
		return
	}

	res, err := swipe(r.Context(), userID, req.ItemID)
	if err != nil {
		f.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, res)
}
