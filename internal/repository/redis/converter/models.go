package converter

// ItemInfoRedisModel — JSON-представление вещи в кэше.
type ItemInfoRedisModel struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Brand    string `json:"brand"`
	Category string `json:"category"`
	Price    int64  `json:"price"`
}
