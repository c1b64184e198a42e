package usecase

import "github.com/swipestyle/go-backend/internal/domain"

// Метод, которым был получен результат скоринга или подбора образа.
// Позволяет вызывающему коду (и тестам) отличать штатный режим от деградированного.
const (
	MethodVisualSimilarity = "visual-similarity"
	MethodRandom           = "random"
	MethodFallback         = "fallback"
	MethodLlm              = "llm"
)

// RECOMMENDATION USECASE

// ScoredCandidate — кандидат с баллом похожести.
// Диапазон балла: (0,1] — осмысленная похожесть, -1 — нет данных о предпочтениях,
// -2 — у вещи нет вектора признаков.
type ScoredCandidate struct {
	ItemID string
	Score  float64
}

// ScoreReq — запрос на скоринг кандидатов.
type ScoreReq struct {
	Candidates []domain.Item
	Liked      []domain.Item
	Rejected   []domain.Item
	Exclude    map[string]struct{}
}

// ScoreRes — отсортированный по убыванию балла список кандидатов.
type ScoreRes struct {
	Candidates []ScoredCandidate
	Method     string
}

// FEED USECASE

// FeedCard — карточка для показа в сессии свайпов.
type FeedCard struct {
	Item     ItemInfo
	Category string
	Score    float64
	Method   string
}

// SwipeRes — результат обработки свайпа.
type SwipeRes struct {
	AutoRejected    []string // вещи, отклонённые автоматически по порогу
	CategoryChanged bool
	NoMoreItems     bool
}

// SwipeEvent — событие свайпа для потока дообучения.
type SwipeEvent struct {
	EventID   string `json:"event_id"`
	UserID    string `json:"user_id"`
	ItemID    string `json:"item_id"`
	Action    string `json:"action"` // like | dislike | undo | auto_reject
	Timestamp int64  `json:"timestamp"`
}

// OUTFIT USECASE

// OutfitRes — собранный образ из лайкнутых вещей.
type OutfitRes struct {
	Outfit    []ItemInfo
	Reasoning string
	Method    string
}

// ITEM USECASE

// RegisterItemReq — запрос на добавление вещи в каталог.
// ID может быть пустым: тогда идентификатор формата "category/uuid" генерируется.
type RegisterItemReq struct {
	ID       string
	Name     string
	Brand    string
	Category string
	Price    int64
}

// ItemInfo — DTO с информацией о вещи для внешнего использования.
type ItemInfo struct {
	ID       string
	Name     string
	Brand    string
	Category string
	Price    int64
}

// GetItemsReq запрос информации о вещах по их идентификаторам.
type GetItemsReq struct {
	IDs []string
}

// GetItemsRes — ответ с данными запрошенных вещей.
type GetItemsRes struct {
	Items         []ItemInfo
	NotFoundItems []string
}

// SimilarItem — результат поиска визуально похожих вещей.
type SimilarItem struct {
	ItemID string
	Score  float32
}

// INFRASTRUCTURE

// LlmCompletionReq — запрос к внешнему сервису генерации текста.
type LlmCompletionReq struct {
	System string
	User   string
}

// MAPPERS

func NewScoredCandidate(itemID string, score float64) ScoredCandidate {
	return ScoredCandidate{
		ItemID: itemID,
		Score:  score,
	}
}

func NewScoreReq(candidates, liked, rejected []domain.Item, exclude map[string]struct{}) *ScoreReq {
	return &ScoreReq{
		Candidates: candidates,
		Liked:      liked,
		Rejected:   rejected,
		Exclude:    exclude,
	}
}

func NewScoreRes(candidates []ScoredCandidate, method string) *ScoreRes {
	return &ScoreRes{
		Candidates: candidates,
		Method:     method,
	}
}

func NewItemInfo(id string, name string, brand string, category string, price int64) ItemInfo {
	return ItemInfo{
		ID:       id,
		Name:     name,
		Brand:    brand,
		Category: category,
		Price:    price,
	}
}

func NewRegisterItemReq(id string, name string, brand string, category string, price int64) *RegisterItemReq {
	return &RegisterItemReq{
		ID:       id,
		Name:     name,
		Brand:    brand,
		Category: category,
		Price:    price,
	}
}

func NewGetItemsReq(ids []string) *GetItemsReq {
	return &GetItemsReq{ids}
}

func NewGetItemsRes(items []ItemInfo, notFoundItems []string) *GetItemsRes {
	return &GetItemsRes{
		Items:         items,
		NotFoundItems: notFoundItems,
	}
}

func NewOutfitRes(outfit []ItemInfo, reasoning string, method string) *OutfitRes {
	return &OutfitRes{
		Outfit:    outfit,
		Reasoning: reasoning,
		Method:    method,
	}
}

func NewLlmCompletionReq(system string, user string) *LlmCompletionReq {
	return &LlmCompletionReq{
		System: system,
		User:   user,
	}
}

func itemToInfo(item *domain.Item) ItemInfo {
	return NewItemInfo(item.ID, item.Name, item.Brand, item.Category, item.Price)
}
