package http

import (
	_ "github.com/swipestyle/go-backend/docs" // Импорт сгенерированных файлов
	"github.com/swipestyle/go-backend/internal/usecase"
	"github.com/swipestyle/go-backend/pkg/logger"
	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

type Router struct {
	router *chi.Mux
	logger logger.Logger
}

func NewRouter(router *chi.Mux, logger logger.Logger) *Router {
	return &Router{router: router, logger: logger}
}

func (r *Router) Init(feedUC usecase.FeedUC, outfitUC usecase.OutfitUC, itemUC usecase.ItemUC) {
	r.router.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("http://localhost:8080/swagger/doc.json"), // ссылка на JSON
	))

	r.router.Route("/api/v1", func(v1 chi.Router) {
		registerFeedRoutes(v1, NewFeedHandler(feedUC, r.logger))
		registerOutfitRoutes(v1, NewOutfitHandler(outfitUC, r.logger))
		registerItemRoutes(v1, NewItemHandler(itemUC, r.logger))
	})
}

func registerFeedRoutes(router chi.Router, handler *FeedHandler) {
	router.Route("/feed", func(feed chi.Router) {
		feed.Get("/next", handler.nextItem)
		feed.Post("/like", handler.like)
		feed.Post("/dislike", handler.dislike)
		feed.Post("/undo", handler.undo)
	})

	router.Get("/recommendations", handler.recommendations)
	router.Get("/wishlist", handler.wishlist)
}

func registerOutfitRoutes(router chi.Router, handler *OutfitHandler) {
	router.Get("/outfit", handler.compose)
}

func registerItemRoutes(router chi.Router, handler *ItemHandler) {
	router.Route("/items", func(items chi.Router) {
		items.Post("/", handler.registerItem)
		items.Get("/", handler.getItems)
		items.Get("/similar", handler.similarItems)
	})
}
