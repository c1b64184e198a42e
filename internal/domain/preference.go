package domain

// PreferenceKind — тип реакции пользователя на вещь.
type PreferenceKind string

const (
	PreferenceLiked    PreferenceKind = "liked"
	PreferenceRejected PreferenceKind = "rejected"
	PreferenceSwiped   PreferenceKind = "swiped"
)

// PreferenceSnapshot — снимок накопленных предпочтений пользователя.
// Ядро получает снимок на вход и никогда не изменяет его напрямую:
// решения (например, авто-отклонение) возвращаются вызывающему коду.
type PreferenceSnapshot struct {
	Liked    []Item
	Rejected []Item
	Swiped   map[string]struct{}
}

func NewPreferenceSnapshot(liked []Item, rejected []Item, swiped map[string]struct{}) *PreferenceSnapshot {
	if swiped == nil {
		swiped = make(map[string]struct{})
	}
	return &PreferenceSnapshot{
		Liked:    liked,
		Rejected: rejected,
		Swiped:   swiped,
	}
}

// IsSwiped сообщает, была ли вещь уже показана пользователю.
func (p *PreferenceSnapshot) IsSwiped(itemID string) bool {
	_, ok := p.Swiped[itemID]
	return ok
}
