package usecase

import (
	"context"

	"github.com/swipestyle/go-backend/internal/domain"
)

type FeedUC interface {
	NextItem(ctx context.Context, userID string) (*FeedCard, error)
	Like(ctx context.Context, userID string, itemID string) (*SwipeRes, error)
	Dislike(ctx context.Context, userID string, itemID string) (*SwipeRes, error)
	Undo(ctx context.Context, userID string) error
	Recommendations(ctx context.Context, userID string, category string) (*ScoreRes, error)
	Wishlist(ctx context.Context, userID string) ([]ItemInfo, error)
}

type OutfitUC interface {
	Compose(ctx context.Context, userID string) (*OutfitRes, error)
}

type ItemUC interface {
	RegisterItem(ctx context.Context, req *RegisterItemReq) (*domain.Item, error)
	GetItemsInfo(ctx context.Context, req *GetItemsReq) (*GetItemsRes, error)
	GetSimilarItems(ctx context.Context, itemID string, limit uint64) ([]SimilarItem, error)
}
