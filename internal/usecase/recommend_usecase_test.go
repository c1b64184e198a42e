package usecase

import (
	"context"
	"testing"

	"github.com/swipestyle/go-backend/internal/cfg"
	"github.com/swipestyle/go-backend/internal/domain"
	"github.com/swipestyle/go-backend/pkg/e"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRecsCfg() *cfg.RecsCfg {
	return &cfg.RecsCfg{
		PenaltyWeight:       0.5,
		AutoRejectThreshold: 0.3,
		RotationLimit:       5,
	}
}

func newTestRecommendUC(vectors map[string]domain.FeatureVector) *RecommendUseCase {
	return NewRecommendUC(&fakeFeatures{vectors: vectors}, testRecsCfg(), nopLogger{})
}

func items(ids ...string) []domain.Item {
	result := make([]domain.Item, 0, len(ids))
	for _, id := range ids {
		result = append(result, domain.Item{ID: id, Category: "dresses"})
	}
	return result
}

func candidateIDs(res *ScoreRes) []string {
	ids := make([]string, 0, len(res.Candidates))
	for _, candidate := range res.Candidates {
		ids = append(ids, candidate.ItemID)
	}
	return ids
}

func TestScoreInvalidInput(t *testing.T) {
	uc := newTestRecommendUC(nil)

	_, err := uc.Score(context.Background(), nil)
	assert.ErrorIs(t, err, e.ErrInvalidInput)

	_, err = uc.Score(context.Background(), &ScoreReq{})
	assert.ErrorIs(t, err, e.ErrInvalidInput)
}

func TestScoreEmptyStoreFallsBackToRandom(t *testing.T) {
	uc := newTestRecommendUC(nil)

	res, err := uc.Score(context.Background(), NewScoreReq(items("a", "b", "c"), nil, nil, nil))
	require.NoError(t, err)

	assert.Equal(t, MethodRandom, res.Method)
	assert.ElementsMatch(t, []string{"a", "b", "c"}, candidateIDs(res))

	// Синтетические баллы строго убывают
	for i := 1; i < len(res.Candidates); i++ {
		assert.Less(t, res.Candidates[i].Score, res.Candidates[i-1].Score)
	}
}

func TestScoreNoLikedFallsBackToSentinels(t *testing.T) {
	uc := newTestRecommendUC(map[string]domain.FeatureVector{
		"a": {1, 0},
		"c": {0, 1},
	})

	res, err := uc.Score(context.Background(), NewScoreReq(items("a", "b", "c"), nil, nil, nil))
	require.NoError(t, err)

	assert.Equal(t, MethodFallback, res.Method)
	require.Len(t, res.Candidates, 3)

	// Вещи с векторами идут раньше вещей без них
	assert.Equal(t, scoreNoPreference, res.Candidates[0].Score)
	assert.Equal(t, scoreNoPreference, res.Candidates[1].Score)
	assert.Equal(t, "b", res.Candidates[2].ItemID)
	assert.Equal(t, scoreNoEmbedding, res.Candidates[2].Score)
}

func TestScoreVisualSimilarity(t *testing.T) {
	uc := newTestRecommendUC(map[string]domain.FeatureVector{
		"liked":  {1, 0},
		"close":  {0.9, 0.1},
		"orthog": {0, 1},
	})

	liked := items("liked")
	res, err := uc.Score(context.Background(),
		NewScoreReq(items("close", "orthog"), liked, nil, nil))
	require.NoError(t, err)

	assert.Equal(t, MethodVisualSimilarity, res.Method)
	// Ортогональный кандидат получает 0 и отфильтровывается при наличии положительных
	require.Len(t, res.Candidates, 1)
	assert.Equal(t, "close", res.Candidates[0].ItemID)
	assert.Greater(t, res.Candidates[0].Score, 0.9)
}

func TestScoreLikedCandidateStaysOnTop(t *testing.T) {
	uc := newTestRecommendUC(map[string]domain.FeatureVector{
		"liked": {1, 0},
		"close": {0.9, 0.1},
	})

	res, err := uc.Score(context.Background(),
		NewScoreReq(items("close", "liked"), items("liked"), nil, nil))
	require.NoError(t, err)

	require.NotEmpty(t, res.Candidates)
	assert.Equal(t, "liked", res.Candidates[0].ItemID)
	assert.Equal(t, 1.0, res.Candidates[0].Score)
}

func TestScoreRejectedPenalty(t *testing.T) {
	uc := newTestRecommendUC(map[string]domain.FeatureVector{
		"liked":    {1, 0},
		"rejected": {1, 0},
		"close":    {1, 0},
	})

	res, err := uc.Score(context.Background(),
		NewScoreReq(items("close"), items("liked"), items("rejected"), nil))
	require.NoError(t, err)

	require.Len(t, res.Candidates, 1)
	// 1 - 0.5*1 = 0.5
	assert.InDelta(t, 0.5, res.Candidates[0].Score, 1e-9)
}

func TestScoreExcludesSwiped(t *testing.T) {
	uc := newTestRecommendUC(map[string]domain.FeatureVector{
		"liked": {1, 0},
		"a":     {0.9, 0.1},
		"b":     {0.8, 0.2},
	})

	exclude := map[string]struct{}{"a": {}}
	res, err := uc.Score(context.Background(),
		NewScoreReq(items("a", "b"), items("liked"), nil, exclude))
	require.NoError(t, err)

	assert.Equal(t, []string{"b"}, candidateIDs(res))
}

func TestScoreNeverEmptyOnNonEmptyInput(t *testing.T) {
	// У единственного кандидата нет вектора: оба фильтра пусты, выдача полная
	uc := newTestRecommendUC(map[string]domain.FeatureVector{
		"liked": {1, 0},
	})

	res, err := uc.Score(context.Background(),
		NewScoreReq(items("novector"), items("liked"), nil, nil))
	require.NoError(t, err)

	require.Len(t, res.Candidates, 1)
	assert.Equal(t, scoreNoEmbedding, res.Candidates[0].Score)
}

func TestScoreDeterministicForSameInput(t *testing.T) {
	uc := newTestRecommendUC(map[string]domain.FeatureVector{
		"liked": {1, 0},
		"a":     {0.9, 0.1},
		"b":     {0.7, 0.3},
		"c":     {0.5, 0.5},
	})

	req := NewScoreReq(items("a", "b", "c"), items("liked"), nil, nil)

	first, err := uc.Score(context.Background(), req)
	require.NoError(t, err)
	second, err := uc.Score(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestAutoRejected(t *testing.T) {
	uc := newTestRecommendUC(nil)

	res := NewScoreRes([]ScoredCandidate{
		{ItemID: "a", Score: 0.8},
		{ItemID: "b", Score: 0.2},
		{ItemID: "c", Score: 0.05},
	}, MethodVisualSimilarity)

	assert.Equal(t, []string{"b", "c"}, uc.AutoRejected(res))

	// В деградированных режимах авто-отклонения нет
	res.Method = MethodRandom
	assert.Nil(t, uc.AutoRejected(res))

	res.Method = MethodFallback
	assert.Nil(t, uc.AutoRejected(res))

	assert.Nil(t, uc.AutoRejected(nil))
}
