package usecase

import "context"

// LlmInfra — внешний сервис генерации текста.
// Возвращает сырой текст ответа; разбор и валидация — на стороне use case.
type LlmInfra interface {
	Complete(ctx context.Context, req *LlmCompletionReq) (string, error)
}

// EventsInfra — публикация событий свайпов для офлайн-дообучения.
type EventsInfra interface {
	PublishSwipe(ctx context.Context, event *SwipeEvent) error
}
