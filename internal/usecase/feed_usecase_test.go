package usecase

import (
	"context"
	"testing"

	"github.com/swipestyle/go-backend/internal/domain"
	"github.com/swipestyle/go-backend/pkg/e"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFeedUC(catalog map[string][]domain.Item, vectors map[string]domain.FeatureVector) (*FeedUseCase, *fakePrefRepo, *fakeEvents) {
	itemsByID := make(map[string]domain.Item)
	for _, categoryItems := range catalog {
		for _, item := range categoryItems {
			itemsByID[item.ID] = item
		}
	}

	itemRepo := &fakeItemRepo{catalog: catalog}
	prefRepo := newFakePrefRepo(itemsByID)
	events := &fakeEvents{}

	uc := NewFeedUC(
		itemRepo,
		prefRepo,
		newTestRecommendUC(vectors),
		events,
		fakeDB{},
		testRecsCfg(),
		nopLogger{},
	)
	return uc, prefRepo, events
}

func feedCatalog() map[string][]domain.Item {
	return map[string][]domain.Item{
		"dresses": {
			{ID: "dresses/seed", Category: "dresses", Name: "Платье базовое"},
			{ID: "dresses/near", Category: "dresses", Name: "Платье похожее"},
			{ID: "dresses/weak", Category: "dresses", Name: "Платье спорное"},
		},
		"hats": {
			{ID: "hats/0", Category: "hats", Name: "Шляпа"},
		},
	}
}

func TestNextItemMissingUserID(t *testing.T) {
	uc, _, _ := newTestFeedUC(feedCatalog(), nil)

	_, err := uc.NextItem(context.Background(), "")
	assert.ErrorIs(t, err, e.ErrMissingUserID)
}

func TestNextItemRandomOnEmptyStore(t *testing.T) {
	uc, _, _ := newTestFeedUC(feedCatalog(), nil)

	card, err := uc.NextItem(context.Background(), "u1")
	require.NoError(t, err)

	// Категории обходятся в лексикографическом порядке
	assert.Equal(t, "dresses", card.Category)
	assert.Equal(t, MethodRandom, card.Method)
	assert.NotEmpty(t, card.Item.ID)
}

func TestLikeRecordsPreferenceAndAdvances(t *testing.T) {
	ctx := context.Background()
	uc, prefRepo, events := newTestFeedUC(feedCatalog(), nil)

	card, err := uc.NextItem(ctx, "u1")
	require.NoError(t, err)

	res, err := uc.Like(ctx, "u1", card.Item.ID)
	require.NoError(t, err)
	assert.False(t, res.NoMoreItems)

	liked, err := prefRepo.GetLiked(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, liked, 1)
	assert.Equal(t, card.Item.ID, liked[0].ID)

	swiped, err := prefRepo.GetSwiped(ctx, "u1")
	require.NoError(t, err)
	assert.Contains(t, swiped, card.Item.ID)

	assert.Equal(t, []string{"like"}, events.actions())

	next, err := uc.NextItem(ctx, "u1")
	require.NoError(t, err)
	assert.NotEqual(t, card.Item.ID, next.Item.ID)
}

func TestDislikeRecordsRejection(t *testing.T) {
	ctx := context.Background()
	uc, prefRepo, events := newTestFeedUC(feedCatalog(), nil)

	card, err := uc.NextItem(ctx, "u1")
	require.NoError(t, err)

	_, err = uc.Dislike(ctx, "u1", card.Item.ID)
	require.NoError(t, err)

	rejected, err := prefRepo.GetRejected(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, rejected, 1)
	assert.Equal(t, card.Item.ID, rejected[0].ID)

	assert.Equal(t, []string{"dislike"}, events.actions())
}

func TestSwipeUnknownItem(t *testing.T) {
	ctx := context.Background()
	uc, _, _ := newTestFeedUC(feedCatalog(), nil)

	// Активная категория dresses, вещь из hats в очереди отсутствует
	_, err := uc.Like(ctx, "u1", "hats/0")
	assert.ErrorIs(t, err, e.ErrUnknownItem)
}

func TestSwipeAfterLastItem(t *testing.T) {
	ctx := context.Background()
	catalog := map[string][]domain.Item{
		"dresses": {{ID: "dresses/only", Category: "dresses"}},
	}
	uc, _, _ := newTestFeedUC(catalog, nil)

	res, err := uc.Like(ctx, "u1", "dresses/only")
	require.NoError(t, err)
	assert.True(t, res.NoMoreItems)

	_, err = uc.NextItem(ctx, "u1")
	assert.ErrorIs(t, err, e.ErrNoMoreItems)

	_, err = uc.Like(ctx, "u1", "dresses/only")
	assert.ErrorIs(t, err, e.ErrNoMoreItems)
}

func TestUndoWithoutSwipes(t *testing.T) {
	uc, _, _ := newTestFeedUC(feedCatalog(), nil)

	err := uc.Undo(context.Background(), "u1")
	assert.ErrorIs(t, err, e.ErrNothingToUndo)
}

func TestUndoRevertsPreferences(t *testing.T) {
	ctx := context.Background()
	uc, prefRepo, events := newTestFeedUC(feedCatalog(), nil)

	card, err := uc.NextItem(ctx, "u1")
	require.NoError(t, err)

	_, err = uc.Like(ctx, "u1", card.Item.ID)
	require.NoError(t, err)

	require.NoError(t, uc.Undo(ctx, "u1"))

	liked, err := prefRepo.GetLiked(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, liked)

	swiped, err := prefRepo.GetSwiped(ctx, "u1")
	require.NoError(t, err)
	assert.NotContains(t, swiped, card.Item.ID)

	assert.Equal(t, []string{"like", "undo"}, events.actions())

	// Вещь снова в очереди и её можно свайпнуть
	_, err = uc.Like(ctx, "u1", card.Item.ID)
	assert.NoError(t, err)
}

func TestLikeTriggersAutoReject(t *testing.T) {
	ctx := context.Background()
	vectors := map[string]domain.FeatureVector{
		"dresses/seed": {1, 0},
		"dresses/near": {1, 0.1}, // близко к лайкнутой, балл ~0.995
		"dresses/weak": {0.2, 1}, // балл ~0.196, ниже порога 0.3
	}
	uc, prefRepo, events := newTestFeedUC(feedCatalog(), vectors)

	res, err := uc.Like(ctx, "u1", "dresses/seed")
	require.NoError(t, err)

	assert.Equal(t, []string{"dresses/weak"}, res.AutoRejected)
	assert.False(t, res.NoMoreItems)

	rejected, err := prefRepo.GetRejected(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, rejected, 1)
	assert.Equal(t, "dresses/weak", rejected[0].ID)

	swiped, err := prefRepo.GetSwiped(ctx, "u1")
	require.NoError(t, err)
	assert.Contains(t, swiped, "dresses/weak")

	assert.Equal(t, []string{"like", "auto_reject"}, events.actions())

	// Авто-отклонённая вещь не показывается, остаётся похожая
	card, err := uc.NextItem(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "dresses/near", card.Item.ID)
	assert.Equal(t, MethodVisualSimilarity, card.Method)
	assert.Greater(t, card.Score, 0.9)
}

func TestWishlistReturnsLikedInOrder(t *testing.T) {
	ctx := context.Background()
	uc, _, _ := newTestFeedUC(feedCatalog(), nil)

	first, err := uc.NextItem(ctx, "u1")
	require.NoError(t, err)
	_, err = uc.Like(ctx, "u1", first.Item.ID)
	require.NoError(t, err)

	second, err := uc.NextItem(ctx, "u1")
	require.NoError(t, err)
	_, err = uc.Like(ctx, "u1", second.Item.ID)
	require.NoError(t, err)

	wishlist, err := uc.Wishlist(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, wishlist, 2)
	assert.Equal(t, first.Item.ID, wishlist[0].ID)
	assert.Equal(t, second.Item.ID, wishlist[1].ID)
}

func TestRecommendationsExcludeSwiped(t *testing.T) {
	ctx := context.Background()
	uc, _, _ := newTestFeedUC(feedCatalog(), nil)

	card, err := uc.NextItem(ctx, "u1")
	require.NoError(t, err)
	_, err = uc.Like(ctx, "u1", card.Item.ID)
	require.NoError(t, err)

	res, err := uc.Recommendations(ctx, "u1", "dresses")
	require.NoError(t, err)
	require.Len(t, res.Candidates, 2)
	for _, candidate := range res.Candidates {
		assert.NotEqual(t, card.Item.ID, candidate.ItemID)
	}
}

func TestSessionsAreIsolatedByUser(t *testing.T) {
	ctx := context.Background()
	uc, _, _ := newTestFeedUC(feedCatalog(), nil)

	card, err := uc.NextItem(ctx, "u1")
	require.NoError(t, err)
	_, err = uc.Like(ctx, "u1", card.Item.ID)
	require.NoError(t, err)

	other, err := uc.NextItem(ctx, "u2")
	require.NoError(t, err)

	// Свайп первого пользователя не сдвигает сессию второго
	wishlist, err := uc.Wishlist(ctx, "u2")
	require.NoError(t, err)
	assert.Empty(t, wishlist)
	assert.Equal(t, "dresses", other.Category)
}
