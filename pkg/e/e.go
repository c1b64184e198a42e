package e

import "fmt"

var (
	// Внутренние ошибки с транзакциями
	ErrTransactionNotFound = fmt.Errorf("transaction not found")

	// Внутренние ошибки рекомендательного ядра
	ErrInvalidInput       = fmt.Errorf("invalid input")
	ErrNoCandidates       = fmt.Errorf("no candidates provided")
	ErrEmptyVector        = fmt.Errorf("feature vector is empty")
	ErrVectorSizeMismatch = fmt.Errorf("feature vector size mismatch")
	ErrSessionNotFound    = fmt.Errorf("swipe session not found")
	ErrNoMoreItems        = fmt.Errorf("no more items to swipe")
	ErrNothingToUndo      = fmt.Errorf("nothing to undo")
	ErrAlreadySwiped      = fmt.Errorf("item already swiped")

	// Ошибки взаимодействия с LLM (поглощаются fallback-ом, наружу не выходят)
	ErrLlmUnavailable    = fmt.Errorf("llm service unavailable")
	ErrMalformedLlmReply = fmt.Errorf("malformed llm reply")

	// 503 Service Unavailable
	ErrVectorSearchDisabled = fmt.Errorf("vector search is not configured")

	// 400 Bad Request
	ErrStatusBadRequest       = fmt.Errorf("bad request")
	ErrMissingFields          = fmt.Errorf("missing required fields")
	ErrMissingUserID          = fmt.Errorf("user id is required")
	ErrItemNameRequired       = fmt.Errorf("item name is required")
	ErrItemIDRequired         = fmt.Errorf("item id is required")
	ErrCategoryRequired       = fmt.Errorf("category is required")
	ErrInvalidPrice           = fmt.Errorf("invalid price")
	ErrPricePrecision         = fmt.Errorf("price must have at most 2 decimal places")
	ErrInsufficientLikedItems = fmt.Errorf("at least 2 liked items are required")
	ErrUnknownItem            = fmt.Errorf("unknown item")

	// 500 Internal Server Error
	ErrInternalServerError = fmt.Errorf("internal server error")
)

// Wrap оборачивает ошибку
func Wrap(msg string, err error) error {
	return fmt.Errorf("%s: %w", msg, err)
}
