package domain

import "time"

// FeatureVector — вектор признаков изображения фиксированной длины.
type FeatureVector []float32

// Payload описывает дополнительную информацию вектора
type Payload map[string]any

// Embedding представляет вектор признаков одной вещи для записи в Qdrant
type Embedding struct {
	ID      string
	Vector  FeatureVector
	Payload Payload
}

func NewEmbedding(id string, vector FeatureVector, payload Payload) *Embedding {
	return &Embedding{
		ID:      id,
		Vector:  vector,
		Payload: payload,
	}
}

func NewPayload(itemID string, category string) Payload {
	return Payload{
		"item_id":    itemID,
		"category":   category,
		"created_at": time.Now().UTC().UnixNano(),
	}
}
