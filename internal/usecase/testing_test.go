package usecase

import (
	"context"
	"sync"

	"github.com/swipestyle/go-backend/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// nopLogger — заглушка логгера для тестов.
type nopLogger struct{}

func (nopLogger) Infof(format string, args ...any)             {}
func (nopLogger) Warnf(format string, args ...any)             {}
func (nopLogger) Errorf(err error, format string, args ...any) {}

// fakeFeatures — провайдер векторов поверх карты.
type fakeFeatures struct {
	vectors map[string]domain.FeatureVector
}

func (f *fakeFeatures) Get(ctx context.Context, itemID string) (domain.FeatureVector, bool) {
	v, ok := f.vectors[itemID]
	return v, ok
}

func (f *fakeFeatures) Empty(ctx context.Context) bool {
	return len(f.vectors) == 0
}

// fakeItemRepo отдаёт фиксированный каталог.
type fakeItemRepo struct {
	catalog map[string][]domain.Item
}

func (f *fakeItemRepo) Upsert(ctx context.Context, item *domain.Item) (*domain.Item, error) {
	return item, nil
}

func (f *fakeItemRepo) GetItemsInfo(ctx context.Context, ids []string) ([]ItemInfo, error) {
	return nil, nil
}

func (f *fakeItemRepo) GetByIDs(ctx context.Context, ids []string) ([]domain.Item, error) {
	var items []domain.Item
	for _, id := range ids {
		for _, categoryItems := range f.catalog {
			for _, item := range categoryItems {
				if item.ID == id {
					items = append(items, item)
				}
			}
		}
	}
	return items, nil
}

func (f *fakeItemRepo) GetByCategory(ctx context.Context, category string) ([]domain.Item, error) {
	return f.catalog[category], nil
}

func (f *fakeItemRepo) GetCatalog(ctx context.Context) (map[string][]domain.Item, error) {
	return f.catalog, nil
}

// fakePrefRepo хранит предпочтения в памяти.
type fakePrefRepo struct {
	mu    sync.Mutex
	items map[string]domain.Item // известные вещи для выдачи по kind
	prefs map[string]map[domain.PreferenceKind]map[string]struct{}
	order map[string][]string // порядок лайков по пользователям
}

func newFakePrefRepo(items map[string]domain.Item) *fakePrefRepo {
	return &fakePrefRepo{
		items: items,
		prefs: make(map[string]map[domain.PreferenceKind]map[string]struct{}),
		order: make(map[string][]string),
	}
}

func (f *fakePrefRepo) kindSet(userID string, kind domain.PreferenceKind) map[string]struct{} {
	if f.prefs[userID] == nil {
		f.prefs[userID] = make(map[domain.PreferenceKind]map[string]struct{})
	}
	if f.prefs[userID][kind] == nil {
		f.prefs[userID][kind] = make(map[string]struct{})
	}
	return f.prefs[userID][kind]
}

func (f *fakePrefRepo) getByKind(userID string, kind domain.PreferenceKind) []domain.Item {
	f.mu.Lock()
	defer f.mu.Unlock()

	set := f.kindSet(userID, kind)
	items := make([]domain.Item, 0, len(set))
	for _, id := range f.order[userID] {
		if _, ok := set[id]; !ok {
			continue
		}
		if item, known := f.items[id]; known {
			items = append(items, item)
		}
	}
	return items
}

func (f *fakePrefRepo) GetLiked(ctx context.Context, userID string) ([]domain.Item, error) {
	return f.getByKind(userID, domain.PreferenceLiked), nil
}

func (f *fakePrefRepo) GetRejected(ctx context.Context, userID string) ([]domain.Item, error) {
	return f.getByKind(userID, domain.PreferenceRejected), nil
}

func (f *fakePrefRepo) GetSwiped(ctx context.Context, userID string) (map[string]struct{}, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	set := f.kindSet(userID, domain.PreferenceSwiped)
	swiped := make(map[string]struct{}, len(set))
	for id := range set {
		swiped[id] = struct{}{}
	}
	return swiped, nil
}

func (f *fakePrefRepo) Add(ctx context.Context, userID string, itemID string, kinds ...domain.PreferenceKind) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	seen := false
	for _, id := range f.order[userID] {
		if id == itemID {
			seen = true
			break
		}
	}
	if !seen {
		f.order[userID] = append(f.order[userID], itemID)
	}

	for _, kind := range kinds {
		f.kindSet(userID, kind)[itemID] = struct{}{}
	}
	return nil
}

func (f *fakePrefRepo) Remove(ctx context.Context, userID string, itemID string, kinds ...domain.PreferenceKind) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, kind := range kinds {
		delete(f.kindSet(userID, kind), itemID)
	}
	return nil
}

// fakeEvents записывает опубликованные события.
type fakeEvents struct {
	mu     sync.Mutex
	events []SwipeEvent
}

func (f *fakeEvents) PublishSwipe(ctx context.Context, event *SwipeEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, *event)
	return nil
}

func (f *fakeEvents) actions() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	actions := make([]string, 0, len(f.events))
	for _, event := range f.events {
		actions = append(actions, event.Action)
	}
	return actions
}

// fakeDB выдаёт транзакции-заглушки: репозитории в тестах не ходят в базу.
type fakeDB struct{}

func (fakeDB) Begin(ctx context.Context) (pgx.Tx, error) {
	return fakeTx{}, nil
}

func (fakeDB) BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error) {
	return fakeTx{}, nil
}

type fakeTx struct{}

func (fakeTx) Begin(ctx context.Context) (pgx.Tx, error) { return fakeTx{}, nil }
func (fakeTx) Commit(ctx context.Context) error          { return nil }
func (fakeTx) Rollback(ctx context.Context) error        { return nil }
func (fakeTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (fakeTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (fakeTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (fakeTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (fakeTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}
func (fakeTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (fakeTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row { return nil }
func (fakeTx) Conn() *pgx.Conn                                               { return nil }
