package usecase

import (
	"context"
	"sync"
	"time"

	transaction "github.com/avito-tech/go-transaction-manager/drivers/pgxv5/v2"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/swipestyle/go-backend/internal/cfg"
	"github.com/swipestyle/go-backend/internal/domain"
	"github.com/swipestyle/go-backend/pkg/e"
	"github.com/swipestyle/go-backend/pkg/logger"
)

// sessionEntry — сессия свайпов пользователя с собственной блокировкой
// и кэшем баллов последнего рескоринга.
type sessionEntry struct {
	mu     sync.Mutex
	cycler *SessionCycler
	scores map[string]float64
	method string
}

// FeedUseCase реализует ленту свайпов: выдачу карточек, обработку реакций,
// авто-отклонение по порогу и ротацию категорий.
type FeedUseCase struct {
	itemRepo    ItemRepository
	prefRepo    PreferenceRepository
	recommendUC *RecommendUseCase
	events      EventsInfra
	dbPool      transaction.Transactional
	recsCfg     *cfg.RecsCfg
	logger      logger.Logger

	mu       sync.Mutex
	sessions map[string]*sessionEntry
}

func NewFeedUC(
	itemRepo ItemRepository,
	prefRepo PreferenceRepository,
	recommendUC *RecommendUseCase,
	events EventsInfra,
	dbPool transaction.Transactional,
	recsCfg *cfg.RecsCfg,
	logger logger.Logger,
) *FeedUseCase {
	return &FeedUseCase{
		itemRepo:    itemRepo,
		prefRepo:    prefRepo,
		recommendUC: recommendUC,
		events:      events,
		dbPool:      dbPool,
		recsCfg:     recsCfg,
		logger:      logger,
		sessions:    make(map[string]*sessionEntry),
	}
}

// NextItem возвращает следующую карточку сессии свайпов пользователя.
func (f *FeedUseCase) NextItem(ctx context.Context, userID string) (*FeedCard, error) {
	const op = "FeedUseCase.NextItem"

	entry, err := f.ensureSession(ctx, userID)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	item, ok := entry.cycler.Peek()
	if !ok {
		return nil, e.Wrap(op, e.ErrNoMoreItems)
	}

	return &FeedCard{
		Item:     itemToInfo(&item),
		Category: item.Category,
		Score:    entry.scores[item.ID],
		Method:   entry.method,
	}, nil
}

// Like фиксирует лайк: вещь попадает в вишлист, сессия продвигается,
// текущая категория рескорится с учётом нового предпочтения.
func (f *FeedUseCase) Like(ctx context.Context, userID string, itemID string) (*SwipeRes, error) {
	const op = "FeedUseCase.Like"

	res, err := f.swipe(ctx, userID, itemID, domain.PreferenceLiked, "like")
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return res, nil
}

// Dislike фиксирует отклонение вещи.
func (f *FeedUseCase) Dislike(ctx context.Context, userID string, itemID string) (*SwipeRes, error) {
	const op = "FeedUseCase.Dislike"

	res, err := f.swipe(ctx, userID, itemID, domain.PreferenceRejected, "dislike")
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return res, nil
}

// Undo откатывает последний свайп в активной категории.
func (f *FeedUseCase) Undo(ctx context.Context, userID string) error {
	const op = "FeedUseCase.Undo"

	entry, err := f.ensureSession(ctx, userID)
	if err != nil {
		return e.Wrap(op, err)
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	itemID, ok := entry.cycler.Undo()
	if !ok {
		return e.Wrap(op, e.ErrNothingToUndo)
	}

	err = f.inTx(ctx, func(txCtx context.Context) error {
		return f.prefRepo.Remove(txCtx, userID, itemID,
			domain.PreferenceLiked, domain.PreferenceRejected, domain.PreferenceSwiped)
	})
	if err != nil {
		return e.Wrap(op, err)
	}

	f.publishEvent(ctx, userID, itemID, "undo")

	// Откат меняет референсные наборы — текущая категория рескорится
	if _, err := f.rescoreActive(ctx, userID, entry); err != nil {
		return e.Wrap(op, err)
	}

	return nil
}

// Recommendations возвращает скоринг всех несвайпнутых вещей категории
// по текущим предпочтениям пользователя.
func (f *FeedUseCase) Recommendations(ctx context.Context, userID string, category string) (*ScoreRes, error) {
	const op = "FeedUseCase.Recommendations"

	candidates, err := f.itemRepo.GetByCategory(ctx, category)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	snapshot, err := f.preferences(ctx, userID)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	res, err := f.recommendUC.Score(ctx, NewScoreReq(candidates, snapshot.Liked, snapshot.Rejected, snapshot.Swiped))
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return res, nil
}

// Wishlist возвращает лайкнутые вещи пользователя.
func (f *FeedUseCase) Wishlist(ctx context.Context, userID string) ([]ItemInfo, error) {
	const op = "FeedUseCase.Wishlist"

	liked, err := f.prefRepo.GetLiked(ctx, userID)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	infos := make([]ItemInfo, 0, len(liked))
	for i := range liked {
		infos = append(infos, itemToInfo(&liked[i]))
	}

	return infos, nil
}

// swipe — общий путь обработки лайка и отклонения.
func (f *FeedUseCase) swipe(ctx context.Context, userID string, itemID string, kind domain.PreferenceKind, action string) (*SwipeRes, error) {
	entry, err := f.ensureSession(ctx, userID)
	if err != nil {
		return nil, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	if entry.cycler.Terminal() {
		return nil, e.ErrNoMoreItems
	}

	if !entry.cycler.InQueue(itemID) {
		return nil, e.ErrUnknownItem
	}

	err = f.inTx(ctx, func(txCtx context.Context) error {
		return f.prefRepo.Add(txCtx, userID, itemID, kind, domain.PreferenceSwiped)
	})
	if err != nil {
		return nil, err
	}

	f.publishEvent(ctx, userID, itemID, action)

	rotated := entry.cycler.RecordSwipe(itemID)

	// Размер референсного набора изменился — активная категория рескорится
	autoRejected, err := f.rescoreActive(ctx, userID, entry)
	if err != nil {
		return nil, err
	}

	return &SwipeRes{
		AutoRejected:    autoRejected,
		CategoryChanged: rotated,
		NoMoreItems:     entry.cycler.Terminal(),
	}, nil
}

// ensureSession возвращает сессию пользователя, восстанавливая её из каталога
// и снимка предпочтений при первом обращении.
func (f *FeedUseCase) ensureSession(ctx context.Context, userID string) (*sessionEntry, error) {
	if userID == "" {
		return nil, e.ErrMissingUserID
	}

	f.mu.Lock()
	entry, ok := f.sessions[userID]
	f.mu.Unlock()
	if ok {
		return entry, nil
	}

	catalog, err := f.itemRepo.GetCatalog(ctx)
	if err != nil {
		return nil, err
	}

	swiped, err := f.prefRepo.GetSwiped(ctx, userID)
	if err != nil {
		return nil, err
	}

	entry = &sessionEntry{
		cycler: DeriveSessionState(catalog, swiped, f.recsCfg.RotationLimit),
		scores: make(map[string]float64),
	}

	entry.mu.Lock()
	if _, err := f.rescoreActive(ctx, userID, entry); err != nil {
		entry.mu.Unlock()
		return nil, err
	}
	entry.mu.Unlock()

	f.mu.Lock()
	if existing, ok := f.sessions[userID]; ok {
		// параллельный запрос успел первым
		entry = existing
	} else {
		f.sessions[userID] = entry
	}
	f.mu.Unlock()

	return entry, nil
}

// rescoreActive пересчитывает очередь активной категории и применяет политику
// авто-отклонения: кандидаты ниже порога записываются в отклонённые и убираются
// из очереди без показа. Если очередь опустела — ротация и рескоринг следующей
// категории. Вызывается под блокировкой сессии.
func (f *FeedUseCase) rescoreActive(ctx context.Context, userID string, entry *sessionEntry) ([]string, error) {
	var autoRejected []string

	for {
		candidates := entry.cycler.ActiveCandidates()
		if len(candidates) == 0 {
			return autoRejected, nil
		}

		snapshot, err := f.preferences(ctx, userID)
		if err != nil {
			return nil, err
		}

		// очередь уже не содержит свайпнутые вещи, исключать повторно нечего
		res, err := f.recommendUC.Score(ctx, NewScoreReq(candidates, snapshot.Liked, snapshot.Rejected, nil))
		if err != nil {
			return nil, err
		}

		orderedIDs := make([]string, 0, len(res.Candidates))
		for _, candidate := range res.Candidates {
			orderedIDs = append(orderedIDs, candidate.ItemID)
			entry.scores[candidate.ItemID] = candidate.Score
		}
		entry.method = res.Method
		entry.cycler.SetQueue(orderedIDs)

		rejectedIDs := f.recommendUC.AutoRejected(res)
		if len(rejectedIDs) == 0 {
			return autoRejected, nil
		}

		if err := f.persistAutoRejected(ctx, userID, rejectedIDs); err != nil {
			return nil, err
		}
		autoRejected = append(autoRejected, rejectedIDs...)

		if rotated := entry.cycler.MarkAutoRejected(rejectedIDs); !rotated {
			return autoRejected, nil
		}
		// категория сменилась — скорим следующую
	}
}

// persistAutoRejected записывает авто-отклонённые вещи одной транзакцией.
func (f *FeedUseCase) persistAutoRejected(ctx context.Context, userID string, itemIDs []string) error {
	err := f.inTx(ctx, func(txCtx context.Context) error {
		for _, itemID := range itemIDs {
			if err := f.prefRepo.Add(txCtx, userID, itemID,
				domain.PreferenceRejected, domain.PreferenceSwiped); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	for _, itemID := range itemIDs {
		f.publishEvent(ctx, userID, itemID, "auto_reject")
	}

	return nil
}

// preferences собирает снимок предпочтений пользователя для скоринга.
func (f *FeedUseCase) preferences(ctx context.Context, userID string) (*domain.PreferenceSnapshot, error) {
	liked, err := f.prefRepo.GetLiked(ctx, userID)
	if err != nil {
		return nil, err
	}

	rejected, err := f.prefRepo.GetRejected(ctx, userID)
	if err != nil {
		return nil, err
	}

	swiped, err := f.prefRepo.GetSwiped(ctx, userID)
	if err != nil {
		return nil, err
	}

	return domain.NewPreferenceSnapshot(liked, rejected, swiped), nil
}

// inTx выполняет fn в транзакции PostgreSQL.
func (f *FeedUseCase) inTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	ctx, tx, err := transaction.NewTransaction(ctx, pgx.TxOptions{}, f.dbPool)
	if err != nil {
		return err
	}

	defer func() {
		if err != nil && tx.IsActive() {
			tx.Rollback(ctx)
		}
	}()

	txCtx := context.WithValue(ctx, "tx", tx.Transaction())
	if err = fn(txCtx); err != nil {
		return err
	}

	err = tx.Commit(ctx)
	return err
}

// publishEvent отправляет событие свайпа в поток дообучения.
// Ошибки публикации логируются и не влияют на результат операции.
func (f *FeedUseCase) publishEvent(ctx context.Context, userID string, itemID string, action string) {
	if f.events == nil {
		return
	}

	event := &SwipeEvent{
		EventID:   uuid.NewString(),
		UserID:    userID,
		ItemID:    itemID,
		Action:    action,
		Timestamp: time.Now().UnixNano(),
	}

	if err := f.events.PublishSwipe(ctx, event); err != nil {
		f.logger.Warnf("Failed to publish swipe event (user: %s, item: %s): %v", userID, itemID, err)
	}
}
