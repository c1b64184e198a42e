package http

import (
	"net/http"

	"github.com/swipestyle/go-backend/internal/usecase"
	"github.com/swipestyle/go-backend/pkg/logger"
)

type OutfitHandler struct {
	outfitUsecase usecase.OutfitUC
	logger        logger.Logger
}

func NewOutfitHandler(outfitUsecase usecase.OutfitUC, logger logger.Logger) *OutfitHandler {
	return &OutfitHandler{outfitUsecase: outfitUsecase, logger: logger}
}

// compose
//
//	@Summary		Сборка образа
//	@Description	Собирает цельный образ из лайкнутых вещей пользователя
//	@Tags			outfit
//	@Produce		json
//	@Param			X-User-ID	header		string	true	"Идентификатор пользователя"
//	@Success		200			{object}	usecase.OutfitRes
//	@Failure		400			{object}	ErrorResponse	"Недостаточно лайкнутых вещей"
//	@Router			/outfit [get]
func (o *OutfitHandler) compose(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromRequest(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	res, err := o.outfitUsecase.Compose(r.Context(), userID)
	if err != nil {
		o.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, res)
}
