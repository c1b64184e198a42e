package usecase

import (
	"context"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/swipestyle/go-backend/internal/cfg"
	"github.com/swipestyle/go-backend/internal/domain"
	"github.com/swipestyle/go-backend/pkg/e"
	"github.com/swipestyle/go-backend/pkg/logger"
)

// Сентинельные баллы: вне диапазона осмысленной похожести (0,1].
const (
	scoreNoPreference = -1.0 // нет данных о предпочтениях, но вектор у вещи есть
	scoreNoEmbedding  = -2.0 // у вещи нет вектора признаков
)

// RecommendUseCase реализует скоринг кандидатов по визуальной похожести
// на накопленные предпочтения пользователя.
type RecommendUseCase struct {
	features FeatureProvider
	recsCfg  *cfg.RecsCfg
	logger   logger.Logger

	randMu sync.Mutex
	rnd    *rand.Rand
}

func NewRecommendUC(features FeatureProvider, recsCfg *cfg.RecsCfg, logger logger.Logger) *RecommendUseCase {
	return &RecommendUseCase{
		features: features,
		recsCfg:  recsCfg,
		logger:   logger,
		rnd:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Score возвращает кандидатов, отсортированных по убыванию балла.
// Деградированные режимы (пустой артефакт признаков, пустой вишлист) разрешаются
// через определённые fallback-и и помечаются полем Method, ошибкой является
// только некорректный вход.
func (r *RecommendUseCase) Score(ctx context.Context, req *ScoreReq) (*ScoreRes, error) {
	const op = "RecommendUseCase.Score"

	if req == nil || req.Candidates == nil {
		return nil, e.Wrap(op, e.ErrInvalidInput)
	}

	candidates := excludeItems(req.Candidates, req.Exclude)

	// Артефакт признаков отсутствует: перемешанная выдача с синтетическими баллами
	if r.features.Empty(ctx) {
		return NewScoreRes(r.randomOrder(candidates), MethodRandom), nil
	}

	likedRefs := r.resolveRefs(ctx, req.Liked)
	rejectedRefs := r.resolveRefs(ctx, req.Rejected)

	// Нет ни одного лайка с вектором: сентинельная выдача,
	// вещи с векторами поднимаются выше вещей без них
	if len(likedRefs) == 0 {
		return NewScoreRes(r.sentinelOrder(ctx, candidates), MethodFallback), nil
	}

	scored := make([]ScoredCandidate, 0, len(candidates))
	for _, candidate := range candidates {
		vector, ok := r.features.Get(ctx, candidate.ID)
		if !ok {
			scored = append(scored, NewScoredCandidate(candidate.ID, scoreNoEmbedding))
			continue
		}

		score := aggregateScore(candidate.ID, vector, likedRefs, rejectedRefs, r.recsCfg.PenaltyWeight)
		scored = append(scored, NewScoredCandidate(candidate.ID, score))
	}

	sortByScoreDesc(scored)

	return NewScoreRes(filterScored(scored), MethodVisualSimilarity), nil
}

// AutoRejected возвращает кандидатов ниже порога авто-отклонения.
// Авто-отклонение требует осмысленного сигнала: в деградированных режимах
// (random, fallback) все баллы сентинельные и отклонять по ним нельзя.
func (r *RecommendUseCase) AutoRejected(res *ScoreRes) []string {
	if res == nil || res.Method != MethodVisualSimilarity {
		return nil
	}

	var rejected []string
	for _, candidate := range res.Candidates {
		if candidate.Score < r.recsCfg.AutoRejectThreshold {
			rejected = append(rejected, candidate.ItemID)
		}
	}

	return rejected
}

// resolveRefs сопоставляет вещам их векторы признаков.
// Вещи без вектора молча выпадают из референсного набора.
func (r *RecommendUseCase) resolveRefs(ctx context.Context, items []domain.Item) []refPair {
	refs := make([]refPair, 0, len(items))
	for _, item := range items {
		vector, ok := r.features.Get(ctx, item.ID)
		if !ok {
			continue
		}
		refs = append(refs, refPair{item: item, vector: vector})
	}

	return refs
}

// randomOrder перемешивает кандидатов и присваивает синтетические
// строго убывающие баллы в порядке показа.
func (r *RecommendUseCase) randomOrder(candidates []domain.Item) []ScoredCandidate {
	shuffled := make([]domain.Item, len(candidates))
	copy(shuffled, candidates)

	r.randMu.Lock()
	r.rnd.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	r.randMu.Unlock()

	scored := make([]ScoredCandidate, 0, len(shuffled))
	for i, candidate := range shuffled {
		score := float64(len(shuffled)-i) / float64(len(shuffled)+1)
		scored = append(scored, NewScoredCandidate(candidate.ID, score))
	}

	return scored
}

// sentinelOrder присваивает сентинельные баллы: -1 вещам с вектором, -2 без.
// Порядок существует только для того, чтобы вещи с векторами шли раньше.
func (r *RecommendUseCase) sentinelOrder(ctx context.Context, candidates []domain.Item) []ScoredCandidate {
	scored := make([]ScoredCandidate, 0, len(candidates))
	for _, candidate := range candidates {
		score := scoreNoEmbedding
		if _, ok := r.features.Get(ctx, candidate.ID); ok {
			score = scoreNoPreference
		}
		scored = append(scored, NewScoredCandidate(candidate.ID, score))
	}

	sortByScoreDesc(scored)
	return scored
}

// filterScored предпочитает кандидатов с положительным баллом; если таких нет —
// всех выше сентинеля -1; в крайнем случае возвращает весь список,
// чтобы вызывающий код никогда не получил пустую выдачу при непустом входе.
func filterScored(scored []ScoredCandidate) []ScoredCandidate {
	positive := filterAbove(scored, 0)
	if len(positive) > 0 {
		return positive
	}

	meaningful := filterAbove(scored, scoreNoPreference)
	if len(meaningful) > 0 {
		return meaningful
	}

	return scored
}

func filterAbove(scored []ScoredCandidate, threshold float64) []ScoredCandidate {
	filtered := make([]ScoredCandidate, 0, len(scored))
	for _, candidate := range scored {
		if candidate.Score > threshold {
			filtered = append(filtered, candidate)
		}
	}

	return filtered
}

// sortByScoreDesc сортирует по убыванию балла, при равенстве сохраняя исходный порядок.
func sortByScoreDesc(scored []ScoredCandidate) {
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
}

func excludeItems(candidates []domain.Item, exclude map[string]struct{}) []domain.Item {
	if len(exclude) == 0 {
		return candidates
	}

	filtered := make([]domain.Item, 0, len(candidates))
	for _, candidate := range candidates {
		if _, ok := exclude[candidate.ID]; ok {
			continue
		}
		filtered = append(filtered, candidate)
	}

	return filtered
}
