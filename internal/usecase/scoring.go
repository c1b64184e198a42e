package usecase

import (
	"math"

	"github.com/swipestyle/go-backend/internal/domain"
)

// selfSimilarity — похожесть вещи на саму себя.
// Совпадение идентификаторов даёт ровно 1.0 без пересчёта.
const selfSimilarity = 1.0

// refPair — референсная пара «вещь + вектор признаков».
type refPair struct {
	item   domain.Item
	vector domain.FeatureVector
}

// cosineSimilarity считает косинусную похожесть двух векторов признаков.
// При несовпадении длин и при нулевой L2-норме любого из векторов возвращает 0.
func cosineSimilarity(a, b domain.FeatureVector) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// similarityToRef возвращает похожесть кандидата на референсную вещь.
// Лайкнутая вещь среди кандидатов сохраняет похожесть 1.0 на саму себя
// и потому никогда не проваливается вниз выдачи (решение зафиксировано в DESIGN.md).
func similarityToRef(candidateID string, candidate domain.FeatureVector, ref refPair) float64 {
	if candidateID == ref.item.ID {
		return selfSimilarity
	}
	return cosineSimilarity(candidate, ref.vector)
}

// aggregateScore считает итоговый балл кандидата: среднее похожести на лайкнутые
// вещи минус взвешенный штраф — среднее похожести на отклонённые.
// Усреднение не даёт одному лайку доминировать; штраф с весом penaltyWeight
// ощутимо приглушает кандидата, не обнуляя его полностью.
func aggregateScore(candidateID string, candidate domain.FeatureVector, likedRefs, rejectedRefs []refPair, penaltyWeight float64) float64 {
	if len(likedRefs) == 0 {
		return scoreNoPreference
	}

	var sum float64
	for _, ref := range likedRefs {
		sum += similarityToRef(candidateID, candidate, ref)
	}
	avgSimilarity := sum / float64(len(likedRefs))

	var penalty float64
	if len(rejectedRefs) > 0 {
		var rejectedSum float64
		for _, ref := range rejectedRefs {
			rejectedSum += similarityToRef(candidateID, candidate, ref)
		}
		penalty = rejectedSum / float64(len(rejectedRefs))
	}

	return avgSimilarity - penalty*penaltyWeight
}
